package eventbus

import "fmt"

// NotificationRouter maps domain events to user-facing notifications.
type NotificationRouter struct {
	bus *EventBus
}

// NewNotificationRouter constructs a router for event-to-notification mappings.
func NewNotificationRouter(bus *EventBus) *NotificationRouter {
	return &NotificationRouter{bus: bus}
}

// Register subscribes all supported event mappings.
func (r *NotificationRouter) Register() {
	if r == nil || r.bus == nil {
		return
	}

	r.bus.SubscribeVersionActivated(func(p VersionActivatedPayload) {
		r.notifyf(LevelInfo, "now testing %s", p.Version.Version)
	})

	r.bus.SubscribeVersionActivationError(func(p VersionActivationErrorPayload) {
		r.notifyf(LevelError, "failed to activate %s: %v", p.Version.Version, p.Err)
	})

	r.bus.SubscribeBisectCompleted(func(p BisectCompletedPayload) {
		if p.Result.Inconclusive {
			r.notifyf(LevelWarning, "bisect inconclusive: %s is already bad", p.Result.Bad.Version)
			return
		}
		r.notifyf(LevelInfo, "regression introduced between %s and %s", p.Result.Good.Version, p.Result.Bad.Version)
	})

	r.bus.SubscribeBisectCancelled(func(BisectCancelledPayload) {
		r.notifyf(LevelInfo, "bisect cancelled")
	})
}

func (r *NotificationRouter) notifyf(level Level, format string, args ...any) {
	r.bus.PublishNotificationPublished(NotificationPublishedPayload{
		Level:   level,
		Message: fmt.Sprintf(format, args...),
	})
}
