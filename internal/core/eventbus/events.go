// Package eventbus provides a typed publish/subscribe event bus for
// cross-component communication within vbisect.
package eventbus

import (
	"github.com/colonyops/vbisect/internal/core/bisect"
	"github.com/colonyops/vbisect/internal/core/version"
)

// Event names a published event type.
type Event string

// Keep list sorted A-Z.
const (
	EventBisectCancelled        Event = "bisect.cancelled"
	EventBisectCompleted        Event = "bisect.completed"
	EventBisectStarted          Event = "bisect.started"
	EventBisectStepped          Event = "bisect.stepped"
	EventCatalogRefreshed       Event = "catalog.refreshed"
	EventDialogToggled          Event = "dialog.toggled"
	EventNotificationPublished  Event = "notification.published"
	EventTuiStarted             Event = "tui.started"
	EventTuiStopped             Event = "tui.stopped"
	EventVersionActivated       Event = "version.activated"
	EventVersionActivationError Event = "version.activation-failed"
)

// VersionActivatedPayload is emitted after a version becomes active.
type VersionActivatedPayload struct {
	Version version.Version
}

// VersionActivationErrorPayload is emitted when the activate hook fails.
type VersionActivationErrorPayload struct {
	Version version.Version
	Err     error
}

// BisectStartedPayload is emitted when a session is stored.
type BisectStartedPayload struct {
	SessionID string
	Good      version.Version
	Bad       version.Version
	Size      int
}

// BisectSteppedPayload is emitted after each verdict that does not finish the session.
type BisectSteppedPayload struct {
	SessionID string
	Verdict   bisect.Verdict
	Next      version.Version
	Remaining int
}

// BisectCompletedPayload is emitted when a session produces a result.
type BisectCompletedPayload struct {
	SessionID string
	Result    bisect.Result
}

// BisectCancelledPayload is emitted when a running session is abandoned.
type BisectCancelledPayload struct {
	SessionID string
}

// DialogToggledPayload is emitted when the bisect dialog opens or closes.
type DialogToggledPayload struct {
	Visible bool
}

// CatalogRefreshedPayload is emitted after the version catalog is loaded.
type CatalogRefreshedPayload struct {
	Count  int
	Origin string // network, cache, stale-cache or snapshot
}

// Level is the severity of a user-facing notification.
type Level string

const (
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// NotificationPublishedPayload carries a user-facing message.
type NotificationPublishedPayload struct {
	Level   Level
	Message string
}

// TUIStartedPayload is emitted when the TUI starts.
type TUIStartedPayload struct{}

// TUIStoppedPayload is emitted when the TUI stops.
type TUIStoppedPayload struct{}
