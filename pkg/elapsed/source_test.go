package elapsed

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSource(t *testing.T) {
	tests := []struct {
		in      string
		want    Source
		wantErr bool
	}{
		{"monotonic", Monotonic, false},
		{"MONO", Monotonic, false},
		{" wall ", Wall, false},
		{"wallclock", Wall, false},
		{"cputime", CPUTime, false},
		{"cpu", CPUTime, false},
		{"tsc", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseSource(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnknownSource)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSourceStringRoundTrip(t *testing.T) {
	for _, src := range Sources() {
		got, err := ParseSource(src.String())
		require.NoError(t, err)
		assert.Equal(t, src, got)
	}
	assert.Equal(t, "source(9)", Source(9).String())
}

func TestReadMonotonic(t *testing.T) {
	a, err := Read(Monotonic)
	require.NoError(t, err)
	b, err := Read(Monotonic)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, b, a)
}

func TestReadWall(t *testing.T) {
	v, err := Read(Wall)
	require.NoError(t, err)
	// after 2020-01-01
	assert.Greater(t, v, 1577836800.0)
}

func TestReadCPUTime(t *testing.T) {
	if !CPUTime.Available() {
		t.Skip("process CPU time not readable here")
	}

	a, err := Read(CPUTime)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, a, 0.0)

	// burn a little CPU
	x := 0
	for i := 0; i < 5_000_000; i++ {
		x += i % 7
	}
	_ = x

	b, err := Read(CPUTime)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, b, a)
}

func TestReadUnknownSource(t *testing.T) {
	_, err := Read(Source(42))
	assert.ErrorIs(t, err, ErrUnknownSource)
	assert.False(t, Source(42).Available())
}
