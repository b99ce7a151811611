package service

import (
	"context"
	"path/filepath"
	"testing"

	"ai-ops-copilot-be/internal/pkg/logger"
	"ai-ops-copilot-be/pkg/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDelivery struct {
	broadcasts []events.Event
}

func (f *fakeDelivery) Broadcast(event events.Event) {
	f.broadcasts = append(f.broadcasts, event)
}

func newTestLogger(t *testing.T) logger.ILogger {
	t.Helper()
	return logger.NewIsolatedLogger(filepath.Join(t.TempDir(), "service.log"))
}

func TestNotificationServiceRelaysEventsToConsole(t *testing.T) {
	delivery := &fakeDelivery{}
	svc := NewNotificationService(nil, delivery, newTestLogger(t)).(*notificationService)

	event := events.NewReviewRequired("T-42", "escalate", 0.61, []string{"high_severity_ticket"})
	require.NoError(t, svc.handleEvent(context.Background(), event))

	require.Len(t, delivery.broadcasts, 1)
	assert.Equal(t, events.TypeReviewRequired, delivery.broadcasts[0].EventType())
	assert.Equal(t, "T-42", delivery.broadcasts[0].Payload()["ticket_id"])
}

func TestNotificationServiceListenWithoutBus(t *testing.T) {
	delivery := &fakeDelivery{}
	svc := NewNotificationService(nil, delivery, newTestLogger(t))

	// No subscriber means local-only delivery, not a startup failure.
	assert.NoError(t, svc.Listen())
}

func TestNotificationServiceHandleEventWithoutDelivery(t *testing.T) {
	svc := NewNotificationService(nil, nil, newTestLogger(t)).(*notificationService)

	event := events.NewWorkflowCompleted("T-7", 300)
	assert.NoError(t, svc.handleEvent(context.Background(), event))
}

func TestWorkflowNotifierFallsBackToDirectDelivery(t *testing.T) {
	delivery := &fakeDelivery{}
	notifier := NewWorkflowNotifier(nil, delivery, newTestLogger(t))

	notifier.emit(events.NewWorkflowCancelled("T-9", "op-1"))

	require.Len(t, delivery.broadcasts, 1)
	assert.Equal(t, events.TypeWorkflowCancelled, delivery.broadcasts[0].EventType())
}
