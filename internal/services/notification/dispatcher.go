// Package notification асинхронно доставляет письма с учётными данными.
//
// Dispatcher принимает сообщения в ограниченную очередь и отдаёт их пулу
// воркеров. Вызывающий никогда не ждёт доставки: при переполнении очереди
// сообщение отбрасывается с записью в лог.
package notification

import (
	"context"
	"log/slog"
	"sync"

	"github.com/magabrotheeeer/task-tracker/internal/lib/sl"
	"github.com/magabrotheeeer/task-tracker/internal/metrics"
	"github.com/magabrotheeeer/task-tracker/internal/models"
)

// Deliverer доставляет одно сообщение.
type Deliverer interface {
	Deliver(ctx context.Context, msg models.CredentialsMessage) error
}

// Dispatcher очередь сообщений с пулом воркеров.
type Dispatcher struct {
	log       *slog.Logger
	deliverer Deliverer
	metrics   *metrics.Metrics
	workers   int

	mu     sync.RWMutex
	closed bool
	queue  chan models.CredentialsMessage
	wg     sync.WaitGroup
}

// NewDispatcher создаёт Dispatcher. m может быть nil.
func NewDispatcher(log *slog.Logger, deliverer Deliverer, m *metrics.Metrics, workers, queueSize int) *Dispatcher {
	if workers < 1 {
		workers = 1
	}
	if queueSize < 1 {
		queueSize = 1
	}
	return &Dispatcher{
		log:       log,
		deliverer: deliverer,
		metrics:   m,
		workers:   workers,
		queue:     make(chan models.CredentialsMessage, queueSize),
	}
}

// Start запускает воркеры. ctx передаётся в каждую доставку.
func (d *Dispatcher) Start(ctx context.Context) {
	for i := range d.workers {
		d.wg.Add(1)
		go d.work(ctx, i)
	}
}

// Dispatch ставит сообщение в очередь без ожидания. Возвращает false,
// если очередь заполнена или Dispatcher остановлен.
func (d *Dispatcher) Dispatch(msg models.CredentialsMessage) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		d.log.Warn("dispatcher stopped, notification dropped", slog.String("to", msg.Email))
		d.metrics.Notification(metrics.NotificationDropped)
		return false
	}

	select {
	case d.queue <- msg:
		return true
	default:
		d.log.Warn("notification queue is full, notification dropped", slog.String("to", msg.Email))
		d.metrics.Notification(metrics.NotificationDropped)
		return false
	}
}

// Stop закрывает очередь и ждёт, пока воркеры доставят оставшиеся сообщения.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()
	d.wg.Wait()
}

func (d *Dispatcher) work(ctx context.Context, id int) {
	defer d.wg.Done()
	log := d.log.With(slog.Int("worker", id))

	for msg := range d.queue {
		if err := d.deliverer.Deliver(ctx, msg); err != nil {
			log.Error("failed to deliver notification", slog.String("to", msg.Email), sl.Err(err))
			d.metrics.Notification(metrics.NotificationFailed)
			continue
		}
		d.metrics.Notification(metrics.NotificationSent)
	}
}
