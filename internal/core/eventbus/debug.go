package eventbus

import (
	"fmt"

	"github.com/rs/zerolog"
)

// RegisterDebugLogger logs bus activity: publishes at debug with the
// payload's identifying fields, subscriptions at trace, drops at warn and
// subscriber panics at error.
func RegisterDebugLogger(bus *EventBus, logger zerolog.Logger) {
	bus.OnPublish(func(event Event, payload any) {
		payloadFields(logger.Debug().Str("event", string(event)), payload).Msg("event published")
	})

	bus.OnSubscribe(func(event Event) {
		logger.Trace().Str("event", string(event)).Msg("subscriber registered")
	})

	bus.OnDrop(func(event Event, payload any) {
		payloadFields(logger.Warn().Str("event", string(event)), payload).Msg("event dropped, subscriber buffer full")
	})

	bus.OnPanic(func(event Event, _ any, recovered any) {
		logger.Error().
			Str("event", string(event)).
			Str("panic", fmt.Sprint(recovered)).
			Msg("subscriber panicked")
	})
}

func payloadFields(e *zerolog.Event, payload any) *zerolog.Event {
	switch p := payload.(type) {
	case VersionActivatedPayload:
		e.Str("version", p.Version.Version)
	case VersionActivationErrorPayload:
		e.Str("version", p.Version.Version).AnErr("cause", p.Err)
	case BisectStartedPayload:
		e.Str("session_id", p.SessionID).
			Str("good", p.Good.Version).
			Str("bad", p.Bad.Version).
			Int("size", p.Size)
	case BisectSteppedPayload:
		e.Str("session_id", p.SessionID).
			Str("tested", p.Verdict.Version.Version).
			Bool("good", p.Verdict.Good).
			Str("next", p.Next.Version).
			Int("remaining", p.Remaining)
	case BisectCompletedPayload:
		e.Str("session_id", p.SessionID).
			Str("last_good", p.Result.Good.Version).
			Str("first_bad", p.Result.Bad.Version).
			Bool("inconclusive", p.Result.Inconclusive)
	case BisectCancelledPayload:
		e.Str("session_id", p.SessionID)
	case CatalogRefreshedPayload:
		e.Int("count", p.Count).Str("origin", p.Origin)
	case NotificationPublishedPayload:
		e.Str("level", string(p.Level)).Str("notice", p.Message)
	case DialogToggledPayload:
		e.Bool("visible", p.Visible)
	}
	return e
}
