package snapshot

import (
	"bytes"
	"encoding/gob"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBalanceRecord_GobSparse(t *testing.T) {
	rec := &BalanceRecord{Observations: make([]*uint64, 5)}
	require.NoError(t, rec.Observe(1, 100))
	require.NoError(t, rec.Observe(3, 40))

	var buf bytes.Buffer
	require.NoError(t, gob.NewEncoder(&buf).Encode(rec))

	var got BalanceRecord
	require.NoError(t, gob.NewDecoder(&buf).Decode(&got))

	require.Len(t, got.Observations, 5)
	assert.False(t, got.Observed(0))
	assert.True(t, got.Observed(1))
	assert.False(t, got.Observed(2))
	assert.True(t, got.Observed(3))
	assert.False(t, got.Observed(4))

	// Backward fill survives the roundtrip.
	b, err := got.BalanceAt(4)
	require.NoError(t, err)
	assert.Equal(t, uint64(40), b)
	b, err = got.BalanceAt(2)
	require.NoError(t, err)
	assert.Equal(t, uint64(100), b)
}
