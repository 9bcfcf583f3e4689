package progress

import (
	"sync"
	"time"
)

// EventKind what changed in a progress record
type EventKind string

// event kinds
const (
	EventLessonViewed    EventKind = "lesson_viewed"
	EventLessonCompleted EventKind = "lesson_completed"
	EventQuizScored      EventKind = "quiz_scored"
)

// Event emitted after a progress record was written successfully
type Event struct {
	Kind     EventKind `json:"kind"`
	UserID   string    `json:"userId"`
	CourseID string    `json:"courseId"`
	LessonID string    `json:"lessonId"`
	Score    *int      `json:"score,omitempty"`
	Progress int       `json:"progress"`
	At       time.Time `json:"at"`
}

// Listener receives events synchronously, it must not block
type Listener func(Event)

// Notifier explicit subscription hub for progress changes.
// Listeners run on the publishing goroutine in subscription order.
type Notifier struct {
	mu        sync.RWMutex
	seq       int
	listeners map[int]Listener
	order     []int
}

func NewNotifier() *Notifier {
	return &Notifier{listeners: make(map[int]Listener)}
}

// Subscribe register fn, calling the returned func removes it
func (n *Notifier) Subscribe(fn Listener) (unsubscribe func()) {
	n.mu.Lock()
	id := n.seq
	n.seq++
	n.listeners[id] = fn
	n.order = append(n.order, id)
	n.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			n.mu.Lock()
			defer n.mu.Unlock()
			delete(n.listeners, id)
			for i, v := range n.order {
				if v == id {
					n.order = append(n.order[:i], n.order[i+1:]...)
					break
				}
			}
		})
	}
}

// Publish deliver e to every current listener
func (n *Notifier) Publish(e Event) {
	n.mu.RLock()
	snapshot := make([]Listener, 0, len(n.order))
	for _, id := range n.order {
		snapshot = append(snapshot, n.listeners[id])
	}
	n.mu.RUnlock()

	for _, fn := range snapshot {
		fn(e)
	}
}

// Len number of listeners
func (n *Notifier) Len() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.order)
}
