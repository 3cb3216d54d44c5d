package overlay

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestBackoffDoublesUpToCap(t *testing.T) {
	b := newBackoff(500*time.Millisecond, 2, 30*time.Second)

	require.Equal(t, 1*time.Second, b.next())
	require.Equal(t, 2*time.Second, b.next())
	require.Equal(t, 4*time.Second, b.next())
	require.Equal(t, 8*time.Second, b.next())
}

func TestBackoffCapsAtMax(t *testing.T) {
	b := newBackoff(10*time.Second, 2, 30*time.Second)

	require.Equal(t, 20*time.Second, b.next())
	require.Equal(t, 30*time.Second, b.next())
	require.Equal(t, 30*time.Second, b.next())
}

func TestBackoffResetReturnsToFirstDelay(t *testing.T) {
	b := newBackoff(500*time.Millisecond, 2, 30*time.Second)
	b.next()
	b.next()
	b.reset()
	require.Equal(t, 1*time.Second, b.next())
}
