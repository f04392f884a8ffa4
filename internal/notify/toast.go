package notify

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dashwatch/internal/metrics"
	"github.com/dashwatch/internal/models"
)

const DefaultToastCapacity = 10

// Toast is one visible notification.
type Toast struct {
	ID        string       `json:"id"`
	Alert     models.Alert `json:"alert"`
	CreatedAt time.Time    `json:"created_at"`
}

// ToastQueue holds the most recent alerts for display. When full, the oldest
// toast is dropped.
type ToastQueue struct {
	mu       sync.Mutex
	capacity int
	toasts   []Toast
	now      func() time.Time
}

func NewToastQueue(capacity int) *ToastQueue {
	if capacity <= 0 {
		capacity = DefaultToastCapacity
	}
	return &ToastQueue{
		capacity: capacity,
		toasts:   make([]Toast, 0, capacity),
		now:      time.Now,
	}
}

func (q *ToastQueue) Display(ctx context.Context, alert models.Alert) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.toasts) == q.capacity {
		copy(q.toasts, q.toasts[1:])
		q.toasts = q.toasts[:len(q.toasts)-1]
	}
	q.toasts = append(q.toasts, Toast{
		ID:        uuid.NewString(),
		Alert:     alert,
		CreatedAt: q.now().UTC(),
	})
	metrics.ToastQueueSize.Set(float64(len(q.toasts)))
	metrics.NotificationsSentTotal.WithLabelValues("toast").Inc()
}

// List returns the visible toasts, oldest first.
func (q *ToastQueue) List() []Toast {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := make([]Toast, len(q.toasts))
	copy(out, q.toasts)
	return out
}

// Dismiss removes a toast and reports whether it was present.
func (q *ToastQueue) Dismiss(id string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	for i, t := range q.toasts {
		if t.ID == id {
			q.toasts = append(q.toasts[:i], q.toasts[i+1:]...)
			metrics.ToastQueueSize.Set(float64(len(q.toasts)))
			return true
		}
	}
	return false
}

func (q *ToastQueue) Clear() {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.toasts = q.toasts[:0]
	metrics.ToastQueueSize.Set(0)
}
