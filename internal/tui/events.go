package tui

import (
	tea "charm.land/bubbletea/v2"

	"github.com/colonyops/vbisect/internal/core/eventbus"
)

const eventBuffer = 32

// notificationMsg carries a bus notification into the update loop.
type notificationMsg eventbus.NotificationPublishedPayload

// catalogRefreshedMsg is sent when the catalog reloads outside the TUI.
type catalogRefreshedMsg eventbus.CatalogRefreshedPayload

// subscribeBus forwards bus events the model renders into a channel drained
// by waitForEvent. Sends never block the bus dispatcher; events are dropped
// when the model falls behind.
func subscribeBus(bus *eventbus.EventBus) <-chan tea.Msg {
	ch := make(chan tea.Msg, eventBuffer)
	if bus == nil {
		return ch
	}

	forward := func(msg tea.Msg) {
		select {
		case ch <- msg:
		default:
		}
	}

	bus.SubscribeNotificationPublished(func(p eventbus.NotificationPublishedPayload) {
		forward(notificationMsg(p))
	})
	bus.SubscribeCatalogRefreshed(func(p eventbus.CatalogRefreshedPayload) {
		forward(catalogRefreshedMsg(p))
	})
	return ch
}

func waitForEvent(ch <-chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		return <-ch
	}
}
