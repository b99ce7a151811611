package websocket

import (
	"path/filepath"
	"testing"
	"time"

	"ai-ops-copilot-be/internal/pkg/logger"
	"ai-ops-copilot-be/pkg/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHub(t *testing.T) *Hub {
	t.Helper()
	log := logger.NewIsolatedLogger(filepath.Join(t.TempDir(), "hub.log"))
	h := NewHub(nil, log)
	go h.Run()
	return h
}

// registerClient hands a client to the hub's run loop and waits until the
// loop has added it to the client map.
func registerClient(t *testing.T, h *Hub, operatorID string, buffer int) *Client {
	t.Helper()
	c := &Client{Hub: h, OperatorID: operatorID, Send: make(chan []byte, buffer)}
	h.register <- c

	require.Eventually(t, func() bool {
		h.mu.RLock()
		defer h.mu.RUnlock()
		return len(h.clients[operatorID]) > 0
	}, 2*time.Second, 5*time.Millisecond)
	return c
}

func TestBroadcastReachesConnectedOperators(t *testing.T) {
	h := newTestHub(t)
	c := registerClient(t, h, "op-1", 8)

	h.Broadcast(events.NewWorkflowCompleted("T-100", 1200))

	select {
	case data := <-c.Send:
		assert.Contains(t, string(data), events.TypeWorkflowCompleted)
		assert.Contains(t, string(data), "T-100")
	case <-time.After(2 * time.Second):
		t.Fatal("broadcast never reached the client")
	}
}

func TestBroadcastDropsSlowClients(t *testing.T) {
	h := newTestHub(t)

	healthy := registerClient(t, h, "op-1", 8)
	slow1 := registerClient(t, h, "op-2", 1)
	slow2 := registerClient(t, h, "op-3", 1)

	// Fill both slow buffers so the next push has nowhere to go.
	slow1.Send <- []byte("stale")
	slow2.Send <- []byte("stale")

	done := make(chan struct{})
	go func() {
		h.Broadcast(events.NewWorkflowCompleted("T-200", 900))
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("broadcast blocked on slow clients")
	}

	// The healthy client still gets the event.
	select {
	case data := <-healthy.Send:
		assert.Contains(t, string(data), "T-200")
	case <-time.After(2 * time.Second):
		t.Fatal("healthy client never received the broadcast")
	}

	// The run loop closes each slow client's channel exactly once.
	for _, c := range []*Client{slow1, slow2} {
		require.Equal(t, []byte("stale"), <-c.Send)
		select {
		case _, open := <-c.Send:
			assert.False(t, open)
		case <-time.After(2 * time.Second):
			t.Fatal("slow client channel was never closed")
		}
	}
}

func TestSendTargetsSingleOperator(t *testing.T) {
	h := newTestHub(t)

	target := registerClient(t, h, "op-1", 8)
	other := registerClient(t, h, "op-2", 8)

	h.Send("op-1", events.NewReviewRequired("T-300", "auto_respond", 0.52, []string{"low_triage_confidence"}))

	select {
	case data := <-target.Send:
		assert.Contains(t, string(data), "T-300")
	case <-time.After(2 * time.Second):
		t.Fatal("targeted operator never received the event")
	}

	select {
	case <-other.Send:
		t.Fatal("event leaked to an unrelated operator")
	case <-time.After(100 * time.Millisecond):
	}
}
