package repository

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"pethotel/internal/domain"
	"pethotel/internal/models"

	"github.com/rs/zerolog"
)

const recoveryInterval = time.Minute

// FailoverDocumentStore serves from primary and switches to fallback when
// primary errors, retrying primary once per recoveryInterval.
//
// Every successful primary write is copied to fallback, so fallback always
// holds the newest value. Keys written while primary is down are replayed
// into primary before it is used again.
type FailoverDocumentStore struct {
	primary   domain.DocumentStore
	fallback  domain.DocumentStore
	logger    *zerolog.Logger
	isDown    atomic.Bool
	lastCheck atomic.Int64
	now       func() time.Time
	// watchRetry is how often a failed primary watch is retried
	watchRetry time.Duration

	// mu orders outage writes against the replay on recovery
	mu    sync.Mutex
	dirty map[models.DocumentKey]struct{}
}

func NewFailoverDocumentStore(primary, fallback domain.DocumentStore, logger *zerolog.Logger) *FailoverDocumentStore {
	return &FailoverDocumentStore{
		primary:    primary,
		fallback:   fallback,
		logger:     logger,
		now:        time.Now,
		watchRetry: recoveryInterval,
		dirty:      make(map[models.DocumentKey]struct{}),
	}
}

func (r *FailoverDocumentStore) markDown(err error) {
	r.logger.Error().Err(err).Msg("Primary document store failed, falling back")
	r.isDown.Store(true)
	r.lastCheck.Store(r.now().UnixNano())
}

// shouldRetryPrimary reports whether a down primary is due for a recovery attempt.
func (r *FailoverDocumentStore) shouldRetryPrimary() bool {
	return r.isDown.Load() && r.now().Sub(time.Unix(0, r.lastCheck.Load())) > recoveryInterval
}

// recover replays the outage writes into primary and switches back to it.
// On failure primary stays down and the recovery clock restarts.
func (r *FailoverDocumentStore) recover(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for key := range r.dirty {
		data, err := r.fallback.GetDocument(ctx, key)
		if err == nil && data != nil {
			err = r.primary.SetDocument(ctx, key, data)
		}
		if err != nil {
			r.lastCheck.Store(r.now().UnixNano())
			r.logger.Warn().Err(err).Str("document", key.String()).Msg("Primary document store still unavailable")
			return err
		}
		delete(r.dirty, key)
	}

	r.isDown.Store(false)
	r.logger.Info().Msg("Primary document store recovered")
	return nil
}

// getPrimary reads from primary. A key primary does not know is looked up
// in fallback and copied back, which covers a primary that lost its data.
func (r *FailoverDocumentStore) getPrimary(ctx context.Context, key models.DocumentKey) ([]byte, error) {
	data, err := r.primary.GetDocument(ctx, key)
	if err != nil || data != nil {
		return data, err
	}

	data, err = r.fallback.GetDocument(ctx, key)
	if err != nil || data == nil {
		if err != nil {
			r.logger.Warn().Err(err).Str("document", key.String()).Msg("Fallback lookup failed")
		}
		return nil, nil
	}
	r.logger.Warn().Str("document", key.String()).Msg("Document missing from primary, restoring from fallback")
	if err := r.primary.SetDocument(ctx, key, data); err != nil {
		return nil, err
	}
	return data, nil
}

func (r *FailoverDocumentStore) GetDocument(ctx context.Context, key models.DocumentKey) ([]byte, error) {
	if !r.isDown.Load() || (r.shouldRetryPrimary() && r.recover(ctx) == nil) {
		data, err := r.getPrimary(ctx, key)
		if err == nil {
			return data, nil
		}
		r.markDown(err)
	}

	return r.fallback.GetDocument(ctx, key)
}

func (r *FailoverDocumentStore) SetDocument(ctx context.Context, key models.DocumentKey, data []byte) error {
	if !r.isDown.Load() || (r.shouldRetryPrimary() && r.recover(ctx) == nil) {
		err := r.primary.SetDocument(ctx, key, data)
		if err == nil {
			if err := r.fallback.SetDocument(ctx, key, data); err != nil {
				r.logger.Warn().Err(err).Str("document", key.String()).Msg("Fallback write-through failed")
			}
			return nil
		}
		r.markDown(err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.fallback.SetDocument(ctx, key, data); err != nil {
		return err
	}
	r.dirty[key] = struct{}{}
	return nil
}

// WatchDocument watches primary when it can. If that fails, fallback is
// watched meanwhile and the primary watch is retried every watchRetry until
// it succeeds or the watch is cancelled.
func (r *FailoverDocumentStore) WatchDocument(ctx context.Context, key models.DocumentKey, fn func([]byte)) (func(), error) {
	pw, primaryWatches := r.primary.(domain.DocumentWatcher)
	if primaryWatches {
		cancel, err := pw.WatchDocument(ctx, key, fn)
		if err == nil {
			return cancel, nil
		}
		r.logger.Warn().Err(err).Str("document", key.String()).Msg("Primary watch failed, retrying in background")
	}

	cancelFallback := func() {}
	if fw, ok := r.fallback.(domain.DocumentWatcher); ok {
		cancel, err := fw.WatchDocument(ctx, key, fn)
		switch {
		case err == nil:
			cancelFallback = cancel
		case !primaryWatches:
			return nil, err
		}
	} else if !primaryWatches {
		return nil, fmt.Errorf("no document store can watch %s", key)
	}
	if !primaryWatches {
		return cancelFallback, nil
	}

	watchCtx, stop := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		if cancelPrimary := r.rewatchPrimary(watchCtx, pw, key, fn); cancelPrimary != nil {
			<-watchCtx.Done()
			cancelPrimary()
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			stop()
			<-done
			cancelFallback()
		})
	}, nil
}

func (r *FailoverDocumentStore) rewatchPrimary(ctx context.Context, pw domain.DocumentWatcher, key models.DocumentKey, fn func([]byte)) func() {
	ticker := time.NewTicker(r.watchRetry)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
		cancel, err := pw.WatchDocument(ctx, key, fn)
		if err == nil {
			r.logger.Info().Str("document", key.String()).Msg("Primary watch restored")
			return cancel
		}
		r.logger.Debug().Err(err).Str("document", key.String()).Msg("Primary watch still failing")
	}
}
