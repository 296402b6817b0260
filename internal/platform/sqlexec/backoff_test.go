package sqlexec

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBackoffDelay_GrowsExponentiallyThenCaps(t *testing.T) {
	assert.Equal(t, 100*time.Millisecond, backoffDelay(1))
	assert.Equal(t, 200*time.Millisecond, backoffDelay(2))
	assert.Equal(t, 400*time.Millisecond, backoffDelay(3))
	assert.Equal(t, 800*time.Millisecond, backoffDelay(4))

	// By the time 2^(n-1) * 100ms exceeds the 10s ceiling, it stays capped.
	assert.Equal(t, 10*time.Second, backoffDelay(20))
}
