package jobs

import (
	"context"
	"log"
	"time"

	"github.com/mindcove/mindex/internal/domain"
)

// HistoryStore persists search history records.
type HistoryStore interface {
	CreateSearchHistory(ctx context.Context, entry domain.SearchHistory) error
}

const (
	defaultRecorderBuffer = 256
	defaultPersistTimeout = 5 * time.Second
)

// HistoryRecorder persists search history off the request path. Entries are
// handed over through a buffered channel; a full buffer drops the entry
// rather than blocking a search. Persistence errors are logged and swallowed.
type HistoryRecorder struct {
	store          HistoryStore
	entries        chan domain.SearchHistory
	stopChan       chan struct{}
	doneChan       chan struct{}
	persistTimeout time.Duration
}

// NewHistoryRecorder creates a new HistoryRecorder instance
func NewHistoryRecorder(store HistoryStore) *HistoryRecorder {
	return &HistoryRecorder{
		store:          store,
		entries:        make(chan domain.SearchHistory, defaultRecorderBuffer),
		stopChan:       make(chan struct{}),
		doneChan:       make(chan struct{}),
		persistTimeout: defaultPersistTimeout,
	}
}

// Record queues an entry for persistence without blocking the caller.
func (r *HistoryRecorder) Record(entry domain.SearchHistory) {
	select {
	case r.entries <- entry:
	default:
		log.Printf("history recorder: buffer full, dropping record for user %s", entry.UserID)
	}
}

// Start begins the recorder's persistence loop
func (r *HistoryRecorder) Start(ctx context.Context) {
	defer close(r.doneChan)

	log.Println("history recorder started")

	for {
		select {
		case <-ctx.Done():
			log.Println("history recorder stopped: context cancelled")
			return
		case <-r.stopChan:
			r.drain()
			log.Println("history recorder stopped: stop signal received")
			return
		case entry := <-r.entries:
			r.persist(entry)
		}
	}
}

// Stop gracefully stops the recorder, draining any queued entries first.
func (r *HistoryRecorder) Stop() {
	close(r.stopChan)
	<-r.doneChan
	log.Println("history recorder shutdown complete")
}

func (r *HistoryRecorder) drain() {
	for {
		select {
		case entry := <-r.entries:
			r.persist(entry)
		default:
			return
		}
	}
}

func (r *HistoryRecorder) persist(entry domain.SearchHistory) {
	ctx, cancel := context.WithTimeout(context.Background(), r.persistTimeout)
	defer cancel()

	if err := r.store.CreateSearchHistory(ctx, entry); err != nil {
		log.Printf("history recorder: failed to persist search for user %s: %v", entry.UserID, err)
	}
}
