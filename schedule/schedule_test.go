package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brcfi/libbrc-go/ledger"
)

func testAuthority(t *testing.T) ledger.Key {
	t.Helper()
	kp, err := ledger.NewKeypair()
	require.NoError(t, err)
	return kp.Key()
}

func TestNew_InvalidCapacity(t *testing.T) {
	_, err := New(testAuthority(t), 0)
	assert.ErrorIs(t, err, ErrInvalidCapacity)
	_, err = New(testAuthority(t), -3)
	assert.ErrorIs(t, err, ErrInvalidCapacity)
}

func TestDefine_Ordering(t *testing.T) {
	s, err := New(testAuthority(t), 4)
	require.NoError(t, err)

	require.NoError(t, s.Define(100))
	require.NoError(t, s.Define(200))

	tests := []struct {
		name    string
		offset  int64
		wantErr error
	}{
		{"equal to last", 200, ErrNonIncreasingOffset},
		{"before last", 150, ErrNonIncreasingOffset},
		{"zero", 0, ErrNonPositiveOffset},
		{"negative", -5, ErrNonPositiveOffset},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, s.Define(tt.offset), tt.wantErr)
		})
	}

	require.NoError(t, s.Define(300))
	assert.Equal(t, 3, s.Len())
	assert.Equal(t, int64(300), s.Last())
}

func TestDefine_CapacityExhausted(t *testing.T) {
	s, err := New(testAuthority(t), 2)
	require.NoError(t, err)

	require.NoError(t, s.Define(10))
	require.NoError(t, s.Define(20))
	assert.ErrorIs(t, s.Define(30), ErrScheduleFull)
}

func TestActivate(t *testing.T) {
	s, err := New(testAuthority(t), 2)
	require.NoError(t, err)

	// Empty schedule cannot activate.
	assert.ErrorIs(t, s.Activate(1000), ErrNoSnapshots)

	require.NoError(t, s.Define(100))
	require.NoError(t, s.Activate(1000))
	assert.True(t, s.Active())

	// No define after activation, no double activation.
	assert.ErrorIs(t, s.Define(200), ErrAlreadyActive)
	assert.ErrorIs(t, s.Activate(2000), ErrAlreadyActive)
}

func TestCurrentIndex(t *testing.T) {
	s, err := New(testAuthority(t), 3)
	require.NoError(t, err)
	require.NoError(t, s.Define(100))
	require.NoError(t, s.Define(200))
	require.NoError(t, s.Define(300))

	// Not active yet.
	_, err = s.CurrentIndex(5000)
	assert.ErrorIs(t, err, ErrNotActive)

	require.NoError(t, s.Activate(1000))

	tests := []struct {
		name    string
		now     int64
		want    int
		wantErr error
	}{
		{"before first boundary", 1099, -1, ErrNoActiveSnapshot},
		{"exactly first boundary", 1100, 0, nil},
		{"between first and second", 1150, 0, nil},
		{"exactly second boundary", 1200, 1, nil},
		{"after last boundary", 9999, 2, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			idx, err := s.CurrentIndex(tt.now)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, idx)
		})
	}
}

func TestSnapshotTime(t *testing.T) {
	s, err := New(testAuthority(t), 2)
	require.NoError(t, err)
	require.NoError(t, s.Define(100))

	_, err = s.SnapshotTime(0)
	assert.ErrorIs(t, err, ErrNotActive)

	require.NoError(t, s.Activate(1000))

	ts, err := s.SnapshotTime(0)
	require.NoError(t, err)
	assert.Equal(t, int64(1100), ts)

	_, err = s.SnapshotTime(1)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
	_, err = s.SnapshotTime(-1)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
}

func TestFindIndex(t *testing.T) {
	s, err := New(testAuthority(t), 3)
	require.NoError(t, err)
	require.NoError(t, s.Define(100))
	require.NoError(t, s.Define(200))

	idx, err := s.FindIndex(200)
	require.NoError(t, err)
	assert.Equal(t, 1, idx)

	_, err = s.FindIndex(250)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
}
