package notification

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/task-tracker/internal/metrics"
	"github.com/magabrotheeeer/task-tracker/internal/models"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// recordingDeliverer запоминает доставленные сообщения.
type recordingDeliverer struct {
	mu        sync.Mutex
	delivered []string
	fail      map[string]bool
	block     chan struct{}
}

func (r *recordingDeliverer) Deliver(_ context.Context, msg models.CredentialsMessage) error {
	if r.block != nil {
		<-r.block
	}
	if r.fail[msg.Email] {
		return errors.New("smtp down")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.delivered = append(r.delivered, msg.Email)
	return nil
}

func (r *recordingDeliverer) emails() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.delivered...)
}

func TestDispatcher_DeliversAll(t *testing.T) {
	d := &recordingDeliverer{fail: map[string]bool{"bad@example.com": true}}
	disp := NewDispatcher(discardLogger(), d, metrics.New(prometheus.NewRegistry()), 3, 10)
	disp.Start(context.Background())

	for _, email := range []string{"a@example.com", "bad@example.com", "b@example.com"} {
		require.True(t, disp.Dispatch(models.CredentialsMessage{Email: email}))
	}
	disp.Stop()

	assert.ElementsMatch(t, []string{"a@example.com", "b@example.com"}, d.emails())
}

func TestDispatcher_DropsWhenFull(t *testing.T) {
	d := &recordingDeliverer{block: make(chan struct{})}
	disp := NewDispatcher(discardLogger(), d, nil, 1, 1)

	// Воркеры не запущены: первое сообщение занимает очередь, второе отбрасывается.
	assert.True(t, disp.Dispatch(models.CredentialsMessage{Email: "first@example.com"}))
	assert.False(t, disp.Dispatch(models.CredentialsMessage{Email: "second@example.com"}))

	close(d.block)
	disp.Start(context.Background())
	disp.Stop()
	assert.Equal(t, []string{"first@example.com"}, d.emails())
}

func TestDispatcher_AfterStop(t *testing.T) {
	disp := NewDispatcher(discardLogger(), &recordingDeliverer{}, nil, 1, 1)
	disp.Start(context.Background())
	disp.Stop()
	disp.Stop()

	assert.False(t, disp.Dispatch(models.CredentialsMessage{Email: "late@example.com"}))
}

type PublisherMock struct {
	mock.Mock
}

func (m *PublisherMock) Publish(ctx context.Context, message any) error {
	args := m.Called(ctx, message)
	return args.Error(0)
}

func TestQueueDeliverer(t *testing.T) {
	msg := models.CredentialsMessage{Email: "a@example.com", Password: "p"}

	p := new(PublisherMock)
	p.On("Publish", mock.Anything, msg).Return(nil).Once()
	require.NoError(t, NewQueueDeliverer(p).Deliver(context.Background(), msg))

	p.On("Publish", mock.Anything, msg).Return(errors.New("channel closed")).Once()
	err := NewQueueDeliverer(p).Deliver(context.Background(), msg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "channel closed")
	p.AssertExpectations(t)
}
