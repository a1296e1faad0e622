package documents

import (
	"context"
	"errors"
	"sync"
	"time"

	"pethotel/internal/domain"
	"pethotel/internal/logging"
	"pethotel/internal/metrics"
	"pethotel/internal/models"
	"pethotel/internal/worker"

	"github.com/rs/zerolog"
)

var ErrClosed = errors.New("document writer closed")

// Pending is shared by every write coalesced into the same persisted value.
type Pending struct {
	done chan struct{}
	err  error
}

func newPending() *Pending {
	return &Pending{done: make(chan struct{})}
}

func (p *Pending) finish(err error) {
	p.err = err
	close(p.done)
}

// Done is closed once the value has been persisted or has failed for good.
func (p *Pending) Done() <-chan struct{} {
	return p.done
}

// Wait blocks until the write completes and returns its error.
func (p *Pending) Wait(ctx context.Context) error {
	select {
	case <-p.done:
		return p.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

type batch struct {
	key     models.DocumentKey
	data    []byte
	due     time.Time
	writes  int
	forced  bool
	blocked bool
	pending *Pending
}

type WriterOptions struct {
	Debounce     time.Duration
	WriteTimeout time.Duration
	Retry        worker.RetryPolicy
}

// Writer debounces document writes per key. Writes to a key within the
// quiet period collapse into one store write carrying the last value, and a
// key never has more than one store write in flight.
type Writer struct {
	store   domain.DocumentStore
	opts    WriterOptions
	logger  *zerolog.Logger
	wg      sync.WaitGroup
	mu      sync.Mutex
	closed  bool
	pending map[models.DocumentKey]*batch
	// inflight marks keys with a store write running
	inflight map[models.DocumentKey]bool
}

func NewWriter(store domain.DocumentStore, opts WriterOptions, logger *zerolog.Logger) *Writer {
	if opts.Debounce <= 0 {
		opts.Debounce = models.DefaultDebounceMS * time.Millisecond
	}
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = 5 * time.Second
	}
	return &Writer{
		store:    store,
		opts:     opts,
		logger:   logging.Component(logger, "document_writer"),
		pending:  make(map[models.DocumentKey]*batch),
		inflight: make(map[models.DocumentKey]bool),
	}
}

// Write schedules data to be stored under key after the quiet period.
func (w *Writer) Write(key models.DocumentKey, data []byte) (*Pending, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil, ErrClosed
	}

	b, ok := w.pending[key]
	if !ok {
		b = &batch{key: key, pending: newPending()}
		w.pending[key] = b
		w.wg.Add(1)
		time.AfterFunc(w.opts.Debounce, func() { w.fire(b) })
	} else {
		metrics.IncDocumentCoalesced(key.Collection)
	}
	b.data = append([]byte(nil), data...)
	b.due = time.Now().Add(w.opts.Debounce)
	b.writes++
	return b.pending, nil
}

// Busy reports whether key has a write waiting or running.
func (w *Writer) Busy(key models.DocumentKey) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	_, waiting := w.pending[key]
	return waiting || w.inflight[key]
}

// fire persists b once it is due and then chains into the next batch of
// the same key if that one was held back by the running write.
func (w *Writer) fire(b *batch) {
	for b != nil {
		w.mu.Lock()
		if w.pending[b.key] != b {
			w.mu.Unlock()
			return
		}
		if remaining := time.Until(b.due); remaining > 0 && !b.forced {
			next := b
			time.AfterFunc(remaining, func() { w.fire(next) })
			w.mu.Unlock()
			return
		}
		if w.inflight[b.key] {
			b.blocked = true
			w.mu.Unlock()
			return
		}
		delete(w.pending, b.key)
		w.inflight[b.key] = true
		w.mu.Unlock()

		w.persist(b)

		w.mu.Lock()
		delete(w.inflight, b.key)
		next := w.pending[b.key]
		if next != nil && next.blocked {
			next.blocked = false
		} else {
			next = nil
		}
		w.mu.Unlock()
		b = next
	}
}

func (w *Writer) persist(b *batch) {
	defer w.wg.Done()

	err := w.opts.Retry.Do(context.Background(), func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, w.opts.WriteTimeout)
		defer cancel()
		return w.store.SetDocument(ctx, b.key, b.data)
	}, func(attempt int, err error, delay time.Duration) {
		w.logger.Warn().Err(err).
			Str("document", b.key.String()).
			Int("attempt", attempt).
			Dur("retry_in", delay).
			Msg("Document write failed, retrying")
	})

	if err != nil {
		metrics.IncDocumentWrite(b.key.Collection, "error")
		w.logger.Error().Err(err).Str("document", b.key.String()).Msg("Failed to persist document")
	} else {
		metrics.IncDocumentWrite(b.key.Collection, "ok")
		w.logger.Debug().Str("document", b.key.String()).Int("coalesced", b.writes).Msg("Document persisted")
	}
	b.pending.finish(err)
}

// Flush persists every waiting write now and waits for them.
func (w *Writer) Flush(ctx context.Context) error {
	w.mu.Lock()
	batches := make([]*batch, 0, len(w.pending))
	for _, b := range w.pending {
		b.forced = true
		batches = append(batches, b)
	}
	w.mu.Unlock()

	for _, b := range batches {
		go w.fire(b)
	}

	var errs []error
	for _, b := range batches {
		if err := b.pending.Wait(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close rejects new writes, flushes waiting ones and waits for running ones.
func (w *Writer) Close(ctx context.Context) error {
	w.mu.Lock()
	w.closed = true
	w.mu.Unlock()

	err := w.Flush(ctx)

	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		return errors.Join(err, ctx.Err())
	}
	return err
}
