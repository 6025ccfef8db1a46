package eventbus

// Typed publish/subscribe pairs, one per event. Keep sorted by event name.

func (bus *EventBus) PublishBisectCancelled(p BisectCancelledPayload) {
	bus.send(EventBisectCancelled, p)
}

func (bus *EventBus) SubscribeBisectCancelled(fn func(BisectCancelledPayload)) {
	subscribe(bus, EventBisectCancelled, fn)
}

func (bus *EventBus) PublishBisectCompleted(p BisectCompletedPayload) {
	bus.send(EventBisectCompleted, p)
}

func (bus *EventBus) SubscribeBisectCompleted(fn func(BisectCompletedPayload)) {
	subscribe(bus, EventBisectCompleted, fn)
}

func (bus *EventBus) PublishBisectStarted(p BisectStartedPayload) {
	bus.send(EventBisectStarted, p)
}

func (bus *EventBus) SubscribeBisectStarted(fn func(BisectStartedPayload)) {
	subscribe(bus, EventBisectStarted, fn)
}

func (bus *EventBus) PublishBisectStepped(p BisectSteppedPayload) {
	bus.send(EventBisectStepped, p)
}

func (bus *EventBus) SubscribeBisectStepped(fn func(BisectSteppedPayload)) {
	subscribe(bus, EventBisectStepped, fn)
}

func (bus *EventBus) PublishCatalogRefreshed(p CatalogRefreshedPayload) {
	bus.send(EventCatalogRefreshed, p)
}

func (bus *EventBus) SubscribeCatalogRefreshed(fn func(CatalogRefreshedPayload)) {
	subscribe(bus, EventCatalogRefreshed, fn)
}

func (bus *EventBus) PublishDialogToggled(p DialogToggledPayload) {
	bus.send(EventDialogToggled, p)
}

func (bus *EventBus) SubscribeDialogToggled(fn func(DialogToggledPayload)) {
	subscribe(bus, EventDialogToggled, fn)
}

func (bus *EventBus) PublishNotificationPublished(p NotificationPublishedPayload) {
	bus.send(EventNotificationPublished, p)
}

func (bus *EventBus) SubscribeNotificationPublished(fn func(NotificationPublishedPayload)) {
	subscribe(bus, EventNotificationPublished, fn)
}

func (bus *EventBus) PublishTuiStarted(p TUIStartedPayload) {
	bus.send(EventTuiStarted, p)
}

func (bus *EventBus) SubscribeTuiStarted(fn func(TUIStartedPayload)) {
	subscribe(bus, EventTuiStarted, fn)
}

func (bus *EventBus) PublishTuiStopped(p TUIStoppedPayload) {
	bus.send(EventTuiStopped, p)
}

func (bus *EventBus) SubscribeTuiStopped(fn func(TUIStoppedPayload)) {
	subscribe(bus, EventTuiStopped, fn)
}

func (bus *EventBus) PublishVersionActivated(p VersionActivatedPayload) {
	bus.send(EventVersionActivated, p)
}

func (bus *EventBus) SubscribeVersionActivated(fn func(VersionActivatedPayload)) {
	subscribe(bus, EventVersionActivated, fn)
}

func (bus *EventBus) PublishVersionActivationError(p VersionActivationErrorPayload) {
	bus.send(EventVersionActivationError, p)
}

func (bus *EventBus) SubscribeVersionActivationError(fn func(VersionActivationErrorPayload)) {
	subscribe(bus, EventVersionActivationError, fn)
}
