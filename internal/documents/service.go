package documents

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"pethotel/internal/domain"
	"pethotel/internal/logging"
	"pethotel/internal/models"

	"github.com/rs/zerolog"
)

var (
	ErrInvalidKey      = errors.New("invalid document key")
	ErrInvalidDocument = errors.New("document is not a JSON object")
)

// Service is the read/write surface for documents. Sets are visible to Get
// and to subscribers at once; the store write happens through the Writer.
type Service struct {
	store  domain.DocumentStore
	writer *Writer
	logger *zerolog.Logger

	mu       sync.RWMutex
	cache    map[models.DocumentKey][]byte
	subs     map[models.DocumentKey]map[int]func([]byte)
	nextID   int
	watching map[models.DocumentKey]func()
	checks   map[models.DocumentKey]func([]byte) error
}

func NewService(store domain.DocumentStore, writer *Writer, logger *zerolog.Logger) *Service {
	return &Service{
		store:    store,
		writer:   writer,
		logger:   logging.Component(logger, "documents"),
		cache:    make(map[models.DocumentKey][]byte),
		subs:     make(map[models.DocumentKey]map[int]func([]byte)),
		watching: make(map[models.DocumentKey]func()),
		checks:   make(map[models.DocumentKey]func([]byte) error),
	}
}

// SetValidator makes Set reject values of key that check refuses, and keeps
// refused remote changes out of the cache. check's error is returned as is.
func (s *Service) SetValidator(key models.DocumentKey, check func([]byte) error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if check == nil {
		delete(s.checks, key)
		return
	}
	s.checks[key] = check
}

func (s *Service) check(key models.DocumentKey, data []byte) error {
	s.mu.RLock()
	check := s.checks[key]
	s.mu.RUnlock()
	if check == nil {
		return nil
	}
	return check(data)
}

// ValidateKey rejects empty segments and path separators.
func ValidateKey(key models.DocumentKey) error {
	for _, part := range []string{key.Collection, key.ID} {
		if strings.TrimSpace(part) == "" || strings.Contains(part, "/") {
			return fmt.Errorf("%w: %q", ErrInvalidKey, key.String())
		}
	}
	return nil
}

// Get returns the current value of key or nil when it does not exist.
func (s *Service) Get(ctx context.Context, key models.DocumentKey) ([]byte, error) {
	if err := ValidateKey(key); err != nil {
		return nil, err
	}

	s.mu.RLock()
	data, ok := s.cache[key]
	s.mu.RUnlock()
	if ok {
		return clone(data), nil
	}

	data, err := s.store.GetDocument(ctx, key)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, nil
	}

	s.mu.Lock()
	// a Set may have raced the load
	if cached, ok := s.cache[key]; ok {
		data = cached
	} else {
		s.cache[key] = data
	}
	s.mu.Unlock()
	return clone(data), nil
}

// Set replaces the document. The returned Pending reports the outcome of
// the store write the value ends up in.
func (s *Service) Set(ctx context.Context, key models.DocumentKey, data []byte) (*Pending, error) {
	if err := ValidateKey(key); err != nil {
		return nil, err
	}
	if !isJSONObject(data) {
		return nil, ErrInvalidDocument
	}
	if err := s.check(key, data); err != nil {
		return nil, err
	}

	data = clone(data)

	s.mu.Lock()
	pending, err := s.writer.Write(key, data)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	s.cache[key] = data
	fns := s.subscribersLocked(key)
	s.mu.Unlock()

	for _, fn := range fns {
		fn(clone(data))
	}
	return pending, nil
}

// Subscribe calls fn with every new value of key, local or remote. Remote
// changes are only seen when the store implements domain.DocumentWatcher.
func (s *Service) Subscribe(ctx context.Context, key models.DocumentKey, fn func([]byte)) (func(), error) {
	if err := ValidateKey(key); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.nextID++
	id := s.nextID
	if s.subs[key] == nil {
		s.subs[key] = make(map[int]func([]byte))
	}
	s.subs[key][id] = fn
	_, watching := s.watching[key]
	if !watching {
		// reserve the slot so concurrent subscribers do not watch twice
		s.watching[key] = func() {}
	}
	s.mu.Unlock()

	if !watching {
		if err := s.watch(ctx, key); err != nil {
			s.logger.Warn().Err(err).Str("document", key.String()).Msg("Remote changes will not be seen")
		}
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs[key], id)
			s.mu.Unlock()
		})
	}, nil
}

func (s *Service) watch(ctx context.Context, key models.DocumentKey) error {
	watcher, ok := s.store.(domain.DocumentWatcher)
	if !ok {
		return nil
	}
	// the watch lives until Close, not until the subscriber's request ends
	cancel, err := watcher.WatchDocument(context.WithoutCancel(ctx), key, func(data []byte) {
		s.applyRemote(key, data)
	})
	if err != nil {
		s.mu.Lock()
		delete(s.watching, key)
		s.mu.Unlock()
		return err
	}
	s.mu.Lock()
	s.watching[key] = cancel
	s.mu.Unlock()
	return nil
}

func (s *Service) applyRemote(key models.DocumentKey, data []byte) {
	if err := s.check(key, data); err != nil {
		s.logger.Warn().Err(err).Str("document", key.String()).Msg("Ignoring invalid remote document")
		return
	}

	// Set holds s.mu while it queues, so Busy is read under the same lock;
	// our own pending value wins over whatever the store reports meanwhile
	s.mu.Lock()
	if s.writer.Busy(key) || bytes.Equal(s.cache[key], data) {
		s.mu.Unlock()
		return
	}
	s.cache[key] = clone(data)
	fns := s.subscribersLocked(key)
	s.mu.Unlock()

	s.logger.Debug().Str("document", key.String()).Msg("Document changed remotely")
	for _, fn := range fns {
		fn(clone(data))
	}
}

func (s *Service) subscribersLocked(key models.DocumentKey) []func([]byte) {
	fns := make([]func([]byte), 0, len(s.subs[key]))
	for _, fn := range s.subs[key] {
		fns = append(fns, fn)
	}
	return fns
}

// Flush forces every waiting write to the store.
func (s *Service) Flush(ctx context.Context) error {
	return s.writer.Flush(ctx)
}

// Close stops remote watches and drains the writer.
func (s *Service) Close(ctx context.Context) error {
	s.mu.Lock()
	cancels := make([]func(), 0, len(s.watching))
	for key, cancel := range s.watching {
		cancels = append(cancels, cancel)
		delete(s.watching, key)
	}
	s.mu.Unlock()

	for _, cancel := range cancels {
		cancel()
	}
	return s.writer.Close(ctx)
}

func isJSONObject(data []byte) bool {
	var obj map[string]json.RawMessage
	return json.Unmarshal(data, &obj) == nil && obj != nil
}

func clone(b []byte) []byte {
	if b == nil {
		return nil
	}
	return append([]byte(nil), b...)
}
