package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"pethotel/internal/documents"
	"pethotel/internal/models"

	"github.com/rs/zerolog"
)

// configDocument keeps the decoded value of one document in memory and
// follows changes made through the document service, local or remote.
type configDocument[T any] struct {
	key      models.DocumentKey
	docs     *documents.Service
	decode   func([]byte) (T, error)
	logger   *zerolog.Logger
	onChange func(T)

	mu     sync.RWMutex
	value  T
	loaded bool
	cancel func()
}

func newConfigDocument[T any](key models.DocumentKey, docs *documents.Service, decode func([]byte) (T, error), logger *zerolog.Logger) *configDocument[T] {
	c := &configDocument[T]{key: key, docs: docs, decode: decode, logger: logger}
	// every writer of the key, including the generic document endpoint, goes
	// through the same checks as Update
	docs.SetValidator(key, c.validate)
	return c
}

// validate reports why data cannot become the value, as a *ValidationError.
func (c *configDocument[T]) validate(data []byte) error {
	_, err := c.decode(data)
	if err == nil {
		return nil
	}
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr
	}
	return NewValidationError("document", err.Error())
}

// load reads the document, seeding it with defaults when it does not exist,
// and subscribes to later changes.
func (c *configDocument[T]) load(ctx context.Context, defaults T) error {
	data, err := c.docs.Get(ctx, c.key)
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", c.key, err)
	}

	if data == nil {
		c.logger.Info().Str("document", c.key.String()).Msg("Document missing, seeding defaults")
		if _, err := c.store(ctx, defaults); err != nil {
			return err
		}
	} else {
		value, err := c.decode(data)
		if err != nil {
			return fmt.Errorf("stored %s is invalid: %w", c.key, err)
		}
		c.set(value)
	}

	cancel, err := c.docs.Subscribe(ctx, c.key, c.apply)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.cancel = cancel
	c.mu.Unlock()
	return nil
}

func (c *configDocument[T]) apply(data []byte) {
	value, err := c.decode(data)
	if err != nil {
		c.logger.Warn().Err(err).Str("document", c.key.String()).Msg("Ignoring invalid document change")
		return
	}
	c.set(value)
}

func (c *configDocument[T]) set(value T) {
	c.mu.Lock()
	c.value = value
	c.loaded = true
	c.mu.Unlock()
	if c.onChange != nil {
		c.onChange(value)
	}
}

// get returns the current value and whether one was ever loaded.
func (c *configDocument[T]) get() (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.value, c.loaded
}

// store applies value in memory right away and schedules the write.
func (c *configDocument[T]) store(ctx context.Context, value T) (*documents.Pending, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	pending, err := c.docs.Set(ctx, c.key, data)
	if err != nil {
		return nil, err
	}
	c.set(value)
	return pending, nil
}

func (c *configDocument[T]) close() {
	c.mu.Lock()
	cancel := c.cancel
	c.cancel = nil
	c.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}
