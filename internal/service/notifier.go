package service

import (
	"sync"
	"time"
)

// Change event actions.
const (
	ChangeActionSaved    = "course.saved"
	ChangeActionDeleted  = "course.deleted"
	ChangeActionImported = "courses.imported"
)

// ChangeEvent describes a mutation of the course collection. Consumers use
// it to refresh derived displays without polling.
type ChangeEvent struct {
	Action       string    `json:"action"`
	CourseID     string    `json:"course_id,omitempty"`
	AcademicYear string    `json:"academic_year,omitempty"`
	Semester     int       `json:"semester,omitempty"`
	At           time.Time `json:"at"`
}

// ChangeNotifier fans course-collection mutations out to subscribers.
type ChangeNotifier interface {
	Publish(event ChangeEvent)
	Subscribe() (<-chan ChangeEvent, func())
}

type changeNotifier struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]chan ChangeEvent
}

// NewChangeNotifier builds an in-process notifier.
func NewChangeNotifier() ChangeNotifier {
	return &changeNotifier{subs: map[int]chan ChangeEvent{}}
}

// Publish delivers the event to every subscriber. Slow subscribers drop
// events rather than blocking the write path.
func (n *changeNotifier) Publish(event ChangeEvent) {
	if event.At.IsZero() {
		event.At = time.Now()
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	for _, ch := range n.subs {
		select {
		case ch <- event:
		default:
		}
	}
}

// Subscribe registers a listener and returns its channel plus a cancel
// function that must be called when the listener goes away.
func (n *changeNotifier) Subscribe() (<-chan ChangeEvent, func()) {
	n.mu.Lock()
	defer n.mu.Unlock()

	id := n.nextID
	n.nextID++
	ch := make(chan ChangeEvent, 16)
	n.subs[id] = ch

	cancel := func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		if existing, ok := n.subs[id]; ok {
			delete(n.subs, id)
			close(existing)
		}
	}

	return ch, cancel
}
