package circuitbreaker

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

var errBackend = errors.New("backend down")

func failing(_ context.Context) error { return errBackend }
func succeed(_ context.Context) error { return nil }

func TestExecute_OpensAfterConsecutiveFailures(t *testing.T) {
	cb := New("test", WithFailureThreshold(3))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		assert.ErrorIs(t, cb.Execute(ctx, failing), errBackend)
	}

	assert.True(t, cb.IsOpen())
	assert.ErrorIs(t, cb.Execute(ctx, succeed), ErrCircuitOpen)
}

func TestExecute_SuccessResetsConsecutiveFailures(t *testing.T) {
	cb := New("test", WithFailureThreshold(3))
	ctx := context.Background()

	assert.Error(t, cb.Execute(ctx, failing))
	assert.Error(t, cb.Execute(ctx, failing))
	assert.NoError(t, cb.Execute(ctx, succeed))
	assert.Error(t, cb.Execute(ctx, failing))
	assert.Error(t, cb.Execute(ctx, failing))

	assert.True(t, cb.IsClosed())
}

func TestCacheBreaker_Preset(t *testing.T) {
	cb := CacheBreaker()
	ctx := context.Background()

	assert.Equal(t, "redis-cache", cb.Name())
	assert.True(t, cb.IsClosed())

	// Preset threshold: five consecutive failures open the circuit.
	for i := 0; i < 5; i++ {
		assert.ErrorIs(t, cb.Execute(ctx, failing), errBackend)
	}
	assert.True(t, cb.IsOpen())
}

func TestCacheBreaker_ExtraOptionsOverridePreset(t *testing.T) {
	miss := errors.New("key not found")

	// A cache adapter passes its own failure predicate so misses never
	// trip the breaker.
	cb := CacheBreaker(WithIsFailure(func(err error) bool {
		return !errors.Is(err, miss)
	}))
	ctx := context.Background()

	for i := 0; i < 20; i++ {
		assert.ErrorIs(t, cb.Execute(ctx, func(context.Context) error { return miss }), miss)
	}

	assert.True(t, cb.IsClosed())
	assert.Equal(t, 0, cb.Counts().TotalFailures)
}
