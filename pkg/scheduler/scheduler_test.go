package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRegisterAddsEntries(t *testing.T) {
	s := New(zap.NewNop())
	s.Register("dispatch", "* * * * *", func(ctx context.Context) {})
	s.Register("enforce", "* * * * *", func(ctx context.Context) {})
	s.Register("generate", "0 0 * * *", func(ctx context.Context) {})
	assert.Equal(t, 3, s.Entries())
}

func TestRegisterInvalidSpecSkipped(t *testing.T) {
	s := New(zap.NewNop())
	s.Register("broken", "not a cron spec", func(ctx context.Context) {})
	assert.Equal(t, 0, s.Entries())
}

func TestStopCancelsJobContext(t *testing.T) {
	s := New(zap.NewNop())
	var cancelled atomic.Bool

	s.Register("watch", "@every 1h", func(ctx context.Context) {})
	go func() {
		<-s.ctx.Done()
		cancelled.Store(true)
	}()

	s.Start()
	s.Stop()

	require.Eventually(t, cancelled.Load, time.Second, 10*time.Millisecond)
}
