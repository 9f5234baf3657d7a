package producer

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/radieske/surebet-ledger/pkg/contracts/events"
)

// NotifyPublisher publica pedidos manuais de notificação de surebet.
// O settlement nunca chama isso sozinho; só o operador dispara.
type NotifyPublisher struct {
	Writer *kafka.Writer
	Topic  string
}

// NewNotifyPublisher instancia o publisher de notificações
func NewNotifyPublisher(w *kafka.Writer, topic string) *NotifyPublisher {
	return &NotifyPublisher{Writer: w, Topic: topic}
}

// PublishSurebetNotify envia o evento com a surebet e o lado a avisar
func (p *NotifyPublisher) PublishSurebetNotify(ctx context.Context, e events.SurebetNotify) error {
	e.Ts = time.Now().UTC()
	b, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return p.Writer.WriteMessages(ctx, kafka.Message{Key: []byte(e.SurebetID), Value: b})
}
