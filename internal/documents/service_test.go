package documents

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"pethotel/internal/models"
	"pethotel/internal/repository"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(store *repository.MemoryDocumentStore, debounce time.Duration) *Service {
	logger := zerolog.Nop()
	w := NewWriter(store, WriterOptions{Debounce: debounce}, &logger)
	return NewService(store, w, &logger)
}

func TestService_SetIsVisibleImmediately(t *testing.T) {
	store := repository.NewMemoryDocumentStore()
	svc := newTestService(store, time.Hour)
	ctx := context.Background()

	got, err := svc.Get(ctx, models.PricingDocument)
	require.NoError(t, err)
	assert.Nil(t, got)

	p, err := svc.Set(ctx, models.PricingDocument, []byte(`{"iva":21}`))
	require.NoError(t, err)

	got, err = svc.Get(ctx, models.PricingDocument)
	require.NoError(t, err)
	assert.JSONEq(t, `{"iva":21}`, string(got))

	stored, err := store.GetDocument(ctx, models.PricingDocument)
	require.NoError(t, err)
	assert.Nil(t, stored, "not persisted before the quiet period")

	require.NoError(t, svc.Flush(ctx))
	require.NoError(t, p.Wait(ctx))
	stored, err = store.GetDocument(ctx, models.PricingDocument)
	require.NoError(t, err)
	assert.JSONEq(t, `{"iva":21}`, string(stored))
}

func TestService_GetLoadsFromStore(t *testing.T) {
	store := repository.NewMemoryDocumentStore()
	ctx := context.Background()
	require.NoError(t, store.SetDocument(ctx, models.GlobalConfigDocument, []byte(`{"phoneNumber":"+34600000000"}`)))

	svc := newTestService(store, time.Hour)
	got, err := svc.Get(ctx, models.GlobalConfigDocument)
	require.NoError(t, err)
	assert.JSONEq(t, `{"phoneNumber":"+34600000000"}`, string(got))
}

func TestService_Validation(t *testing.T) {
	svc := newTestService(repository.NewMemoryDocumentStore(), time.Hour)
	ctx := context.Background()

	_, err := svc.Get(ctx, models.DocumentKey{Collection: "configs"})
	assert.ErrorIs(t, err, ErrInvalidKey)
	_, err = svc.Set(ctx, models.DocumentKey{Collection: "a/b", ID: "c"}, []byte(`{}`))
	assert.ErrorIs(t, err, ErrInvalidKey)

	for _, bad := range []string{``, `null`, `[1]`, `"x"`, `{`} {
		_, err := svc.Set(ctx, models.PricingDocument, []byte(bad))
		assert.ErrorIs(t, err, ErrInvalidDocument, bad)
	}
}

func TestService_SubscribeLocal(t *testing.T) {
	svc := newTestService(repository.NewMemoryDocumentStore(), time.Hour)
	ctx := context.Background()

	var seen []string
	cancel, err := svc.Subscribe(ctx, models.PricingDocument, func(b []byte) { seen = append(seen, string(b)) })
	require.NoError(t, err)

	_, err = svc.Set(ctx, models.PricingDocument, []byte(`{"v":1}`))
	require.NoError(t, err)
	_, err = svc.Set(ctx, models.GlobalConfigDocument, []byte(`{"v":9}`))
	require.NoError(t, err)
	cancel()
	_, err = svc.Set(ctx, models.PricingDocument, []byte(`{"v":2}`))
	require.NoError(t, err)

	assert.Equal(t, []string{`{"v":1}`}, seen)
	require.NoError(t, svc.Close(ctx))
}

func TestService_RemoteChanges(t *testing.T) {
	store := repository.NewMemoryDocumentStore()
	writerSvc := newTestService(store, 10*time.Millisecond)
	readerSvc := newTestService(store, 10*time.Millisecond)
	ctx := context.Background()

	var mu sync.Mutex
	var seen []string
	_, err := readerSvc.Subscribe(ctx, models.PricingDocument, func(b []byte) {
		mu.Lock()
		seen = append(seen, string(b))
		mu.Unlock()
	})
	require.NoError(t, err)

	p, err := writerSvc.Set(ctx, models.PricingDocument, []byte(`{"iva":10}`))
	require.NoError(t, err)
	require.NoError(t, p.Wait(ctx))

	mu.Lock()
	assert.Equal(t, []string{`{"iva":10}`}, seen)
	mu.Unlock()

	got, err := readerSvc.Get(ctx, models.PricingDocument)
	require.NoError(t, err)
	assert.JSONEq(t, `{"iva":10}`, string(got))

	require.NoError(t, readerSvc.Close(ctx))
	require.NoError(t, writerSvc.Close(ctx))
}

func TestService_PendingLocalValueWinsOverRemote(t *testing.T) {
	store := repository.NewMemoryDocumentStore()
	local := newTestService(store, time.Hour)
	remote := newTestService(store, time.Millisecond)
	ctx := context.Background()

	var mu sync.Mutex
	var seen []string
	_, err := local.Subscribe(ctx, models.PricingDocument, func(b []byte) {
		mu.Lock()
		seen = append(seen, string(b))
		mu.Unlock()
	})
	require.NoError(t, err)

	_, err = local.Set(ctx, models.PricingDocument, []byte(`{"v":"local"}`))
	require.NoError(t, err)

	p, err := remote.Set(ctx, models.PricingDocument, []byte(`{"v":"remote"}`))
	require.NoError(t, err)
	require.NoError(t, p.Wait(ctx))

	got, err := local.Get(ctx, models.PricingDocument)
	require.NoError(t, err)
	assert.JSONEq(t, `{"v":"local"}`, string(got))
	mu.Lock()
	assert.Equal(t, []string{`{"v":"local"}`}, seen)
	mu.Unlock()

	require.NoError(t, local.Flush(ctx))
	stored, err := store.GetDocument(ctx, models.PricingDocument)
	require.NoError(t, err)
	assert.JSONEq(t, `{"v":"local"}`, string(stored), "the pending write lands last")

	require.NoError(t, remote.Close(ctx))
	require.NoError(t, local.Close(ctx))
}

func TestService_Validator(t *testing.T) {
	store := repository.NewMemoryDocumentStore()
	guarded := newTestService(store, time.Millisecond)
	other := newTestService(store, time.Millisecond)
	ctx := context.Background()

	errTooBig := errors.New("too big")
	guarded.SetValidator(models.PricingDocument, func(b []byte) error {
		if strings.Contains(string(b), "500") {
			return errTooBig
		}
		return nil
	})

	_, err := guarded.Set(ctx, models.PricingDocument, []byte(`{"iva":500}`))
	assert.ErrorIs(t, err, errTooBig)
	got, err := guarded.Get(ctx, models.PricingDocument)
	require.NoError(t, err)
	assert.Nil(t, got)

	_, err = guarded.Set(ctx, models.GlobalConfigDocument, []byte(`{"iva":500}`))
	assert.NoError(t, err, "other keys are unaffected")

	p, err := guarded.Set(ctx, models.PricingDocument, []byte(`{"iva":21}`))
	require.NoError(t, err)
	require.NoError(t, p.Wait(ctx))
	_, err = guarded.Subscribe(ctx, models.PricingDocument, func([]byte) {})
	require.NoError(t, err)

	// a refused remote change stays out of the cache
	p, err = other.Set(ctx, models.PricingDocument, []byte(`{"iva":500}`))
	require.NoError(t, err)
	require.NoError(t, p.Wait(ctx))
	got, err = guarded.Get(ctx, models.PricingDocument)
	require.NoError(t, err)
	assert.JSONEq(t, `{"iva":21}`, string(got))

	guarded.SetValidator(models.PricingDocument, nil)
	_, err = guarded.Set(ctx, models.PricingDocument, []byte(`{"iva":500}`))
	assert.NoError(t, err)

	require.NoError(t, other.Close(ctx))
	require.NoError(t, guarded.Close(ctx))
}
