package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJournal_AppendAndReplay(t *testing.T) {
	j, err := OpenJournal(t.TempDir())
	require.NoError(t, err)
	defer j.Close()

	product := DeriveID([]byte("product"))
	payment := DeriveID([]byte("payment"))

	require.NoError(t, j.Append("create_product", product))
	require.NoError(t, j.Append("add_payment", product, payment))

	entries, err := j.Entries()
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, "create_product", entries[0].Name)
	assert.Equal(t, []string{product.String()}, entries[0].Records)
	assert.Equal(t, "add_payment", entries[1].Name)
	assert.Equal(t, []string{product.String(), payment.String()}, entries[1].Records)

	assert.NotEmpty(t, entries[0].OpID)
	assert.NotEqual(t, entries[0].OpID, entries[1].OpID)
	assert.NotZero(t, entries[0].AtUnix)
}

func TestJournal_ClosedAppend(t *testing.T) {
	j, err := OpenJournal(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, j.Close())

	assert.ErrorIs(t, j.Append("noop"), ErrJournalClosed)
	_, err = j.Entries()
	assert.ErrorIs(t, err, ErrJournalClosed)
}
