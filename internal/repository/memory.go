package repository

import (
	"context"
	"sync"

	"pethotel/internal/models"
)

// MemoryDocumentStore keeps documents in process. Watchers are notified
// synchronously after every write.
type MemoryDocumentStore struct {
	docs sync.Map

	mu       sync.Mutex
	nextID   int
	watchers map[models.DocumentKey]map[int]func([]byte)
}

func NewMemoryDocumentStore() *MemoryDocumentStore {
	return &MemoryDocumentStore{
		watchers: make(map[models.DocumentKey]map[int]func([]byte)),
	}
}

func (r *MemoryDocumentStore) GetDocument(ctx context.Context, key models.DocumentKey) ([]byte, error) {
	val, ok := r.docs.Load(key)
	if !ok {
		return nil, nil
	}
	return clone(val.([]byte)), nil
}

func (r *MemoryDocumentStore) SetDocument(ctx context.Context, key models.DocumentKey, data []byte) error {
	r.docs.Store(key, clone(data))

	r.mu.Lock()
	fns := make([]func([]byte), 0, len(r.watchers[key]))
	for _, fn := range r.watchers[key] {
		fns = append(fns, fn)
	}
	r.mu.Unlock()

	for _, fn := range fns {
		fn(clone(data))
	}
	return nil
}

func (r *MemoryDocumentStore) WatchDocument(ctx context.Context, key models.DocumentKey, fn func([]byte)) (func(), error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	id := r.nextID
	if r.watchers[key] == nil {
		r.watchers[key] = make(map[int]func([]byte))
	}
	r.watchers[key][id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			r.mu.Lock()
			delete(r.watchers[key], id)
			r.mu.Unlock()
		})
	}, nil
}

func clone(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
