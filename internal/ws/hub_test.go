package ws

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestHub_StopsOnContextCancel(t *testing.T) {
	defer goleak.VerifyNone(t)

	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())

	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()

	userID := uuid.New()
	assert.False(t, hub.IsOnline(userID))
	require.NoError(t, hub.Push(userID, "payment_released", map[string]string{"id": "1"}))

	cancel()
	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("hub did not stop")
	}

	assert.Error(t, hub.Push(userID, "payment_released", nil))
}
