package notification

import (
	"context"
	"fmt"

	"github.com/magabrotheeeer/task-tracker/internal/models"
)

// Publisher публикует сообщение в брокер.
type Publisher interface {
	Publish(ctx context.Context, message any) error
}

// QueueDeliverer передаёт письма во внешнюю очередь, откуда их забирает
// отдельный процесс отправки.
type QueueDeliverer struct {
	publisher Publisher
}

// NewQueueDeliverer создаёт QueueDeliverer.
func NewQueueDeliverer(publisher Publisher) *QueueDeliverer {
	return &QueueDeliverer{publisher: publisher}
}

// Deliver публикует сообщение.
func (q *QueueDeliverer) Deliver(ctx context.Context, msg models.CredentialsMessage) error {
	if err := q.publisher.Publish(ctx, msg); err != nil {
		return fmt.Errorf("notification.QueueDeliverer.Deliver: %w", err)
	}
	return nil
}
