package eventlog

import (
	"sync"
	"time"

	"github.com/ruapotato/Flick-sub004/compositor"
	"github.com/ruapotato/Flick-sub004/utils"
	"github.com/sirupsen/logrus"
)

const (
	recorderQueueSize = 1024
	flushInterval     = 500 * time.Millisecond
	maxBatch          = 128
)

// Recorder writes notifications to a Store off the event loop. Notifications
// arriving while the queue is full are dropped and counted.
type Recorder struct {
	store *Store
	log   logrus.FieldLogger

	entries chan Entry
	done    chan struct{}

	mu      sync.Mutex
	dropped int
	closed  bool
}

func NewRecorder(store *Store) *Recorder {
	r := &Recorder{
		store:   store,
		log:     utils.Logger().WithField("component", "eventlog"),
		entries: make(chan Entry, recorderQueueSize),
		done:    make(chan struct{}),
	}
	go r.run()
	return r
}

// Notify is a compositor subscriber; it never blocks
func (r *Recorder) Notify(n compositor.Notification) {
	e, ok := FromNotification(n)
	if !ok {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}

	select {
	case r.entries <- e:
	default:
		r.dropped++
		if r.dropped == 1 || r.dropped%100 == 0 {
			r.log.WithField("dropped", r.dropped).Warn("event log queue full, dropping entries")
		}
	}
}

// Dropped is the number of entries lost to a full queue
func (r *Recorder) Dropped() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.dropped
}

func (r *Recorder) run() {
	defer close(r.done)

	ticker := time.NewTicker(flushInterval)
	defer ticker.Stop()

	batch := make([]Entry, 0, maxBatch)
	flush := func() {
		if len(batch) == 0 {
			return
		}
		if err := r.store.Insert(batch...); err != nil {
			r.log.WithError(err).WithField("entries", len(batch)).Error("failed to write event log")
		}
		batch = batch[:0]
	}

	for {
		select {
		case e, ok := <-r.entries:
			if !ok {
				flush()
				return
			}
			batch = append(batch, e)
			if len(batch) >= maxBatch {
				flush()
			}
		case <-ticker.C:
			flush()
		}
	}
}

// Close writes the queued entries and stops the recorder. The store stays open.
func (r *Recorder) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		<-r.done
		return
	}
	r.closed = true
	close(r.entries)
	r.mu.Unlock()

	<-r.done
}
