package mykafka

import (
	"context"
	"fmt"

	"github.com/Skotchmaster/markethub/internal/logging"
	"github.com/Skotchmaster/markethub/internal/notify"
)

// Emitter publishes domain events keyed by user id. Failures are logged and
// never returned to the caller.
type Emitter struct {
	Pub Publisher
}

func NewEmitter(pub Publisher) *Emitter {
	if pub == nil {
		pub = Nop{}
	}
	return &Emitter{Pub: pub}
}

func (e *Emitter) Emit(ctx context.Context, topic string, userID uint, event map[string]any) {
	if e == nil || e.Pub == nil {
		return
	}
	if err := e.Pub.PublishEvent(context.WithoutCancel(ctx), topic, fmt.Sprint(userID), event); err != nil {
		logging.FromContext(ctx).Error("kafka_publish_error", "topic", topic, "type", event["type"], "error", err)
	}
}

// Notify mirrors user notifications onto the notification topic so other
// consumers can deliver them through their own channels.
func (e *Emitter) Notify(ctx context.Context, userID uint, msg notify.Message) {
	e.Emit(ctx, TopicNotificationEvents, userID, map[string]any{
		"type":         "notification",
		"userID":       userID,
		"notification": msg,
	})
}

var _ notify.Notifier = (*Emitter)(nil)
