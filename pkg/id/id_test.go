package id

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewIsSorted(t *testing.T) {
	t.Parallel()

	prev := New()
	for i := 0; i < 100; i++ {
		next := New()
		assert.Len(t, next, 26)
		assert.Less(t, prev, next)
		prev = next
	}
}

func TestNewAtRoundTrip(t *testing.T) {
	t.Parallel()

	at := time.Date(2024, 3, 15, 10, 30, 45, 123000000, time.UTC)
	got, err := Time(NewAt(at))
	require.NoError(t, err)
	assert.True(t, at.Equal(got))
}

func TestTimeInvalid(t *testing.T) {
	t.Parallel()

	_, err := Time("not-a-ulid")
	assert.Error(t, err)
}
