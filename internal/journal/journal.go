package journal

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/lukemcneil/shields-up-engineering-client/internal/action"
	"github.com/lukemcneil/shields-up-engineering-client/internal/game"
	"github.com/lukemcneil/shields-up-engineering-client/internal/logger"
)

type Direction string

const (
	DirOut Direction = "out"
	DirIn  Direction = "in"
)

const (
	KindRejected = "Rejected"
	KindAccepted = "Accepted"
)

// Entry is one row of the action log.
type Entry struct {
	ID        uint      `gorm:"primaryKey"`
	Session   string    `gorm:"size:64;index"`
	Game      string    `gorm:"size:128;index"`
	Player    string    `gorm:"size:16"`
	Direction Direction `gorm:"size:8"`
	Kind      string    `gorm:"size:64"`
	Payload   string    `gorm:"type:text"`
	CreatedAt time.Time `gorm:"index"`
}

func (Entry) TableName() string { return "journal_entries" }

// Sent records an action the client put on the wire.
func Sent(session, gameName string, p game.PlayerID, ua action.UserAction) Entry {
	payload, _ := json.Marshal(ua)
	return Entry{
		Session:   session,
		Game:      gameName,
		Player:    string(p),
		Direction: DirOut,
		Kind:      action.Name(ua),
		Payload:   string(payload),
		CreatedAt: time.Now(),
	}
}

// Acked records the engine's reply; msg is empty for Ok.
func Acked(session, gameName string, p game.PlayerID, msg string) Entry {
	kind := KindAccepted
	if msg != "" {
		kind = KindRejected
	}
	return Entry{
		Session:   session,
		Game:      gameName,
		Player:    string(p),
		Direction: DirIn,
		Kind:      kind,
		Payload:   msg,
		CreatedAt: time.Now(),
	}
}

type Store interface {
	Append(ctx context.Context, entries []Entry) error
	Close() error
}

// Nop discards everything; it is used when no DSN is configured.
type Nop struct{}

func (Nop) Append(context.Context, []Entry) error { return nil }
func (Nop) Close() error                          { return nil }

const (
	queueSize    = 256
	batchSize    = 32
	writeTimeout = 5 * time.Second
)

// Recorder writes entries through a Store off the caller's goroutine.
// Record never blocks; entries are dropped when the queue is full.
type Recorder struct {
	store Store
	log   *zap.Logger

	mu     sync.Mutex
	closed bool
	in     chan Entry
	done   chan struct{}

	// written only by loop
	errs error
}

func NewRecorder(store Store, log *zap.Logger) *Recorder {
	r := &Recorder{
		store: store,
		log:   logger.OrNop(log),
		in:    make(chan Entry, queueSize),
		done:  make(chan struct{}),
	}
	go r.loop()
	return r
}

func (r *Recorder) Record(e Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	select {
	case r.in <- e:
	default:
		r.log.Warn("journal queue full, dropping entry", zap.String("kind", e.Kind))
	}
}

func (r *Recorder) loop() {
	defer close(r.done)
	batch := make([]Entry, 0, batchSize)
	for e := range r.in {
		batch = append(batch[:0], e)
	drain:
		for len(batch) < batchSize {
			select {
			case more, ok := <-r.in:
				if !ok {
					break drain
				}
				batch = append(batch, more)
			default:
				break drain
			}
		}
		r.flush(batch)
	}
}

func (r *Recorder) flush(batch []Entry) {
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()
	if err := r.store.Append(ctx, batch); err != nil {
		r.log.Warn("journal write failed", zap.Int("entries", len(batch)), zap.Error(err))
		r.errs = multierr.Append(r.errs, err)
	}
}

// Close flushes queued entries and closes the store. The result combines
// every failed write with the close error.
func (r *Recorder) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	close(r.in)
	r.mu.Unlock()

	<-r.done
	return multierr.Append(r.errs, r.store.Close())
}
