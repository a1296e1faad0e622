package api

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"pethotel/internal/availability"
	"pethotel/internal/config"
	"pethotel/internal/database"
	"pethotel/internal/documents"
	"pethotel/internal/events"
	"pethotel/internal/export"
	"pethotel/internal/geo"
	"pethotel/internal/repository"
	"pethotel/internal/service"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	db     *database.DB
	store  *repository.MemoryDocumentStore
	docs   *documents.Service
	server *HTTPServer
	ts     *httptest.Server
}

func newTestEnv(t *testing.T, cfg config.APIConfig) *testEnv {
	t.Helper()
	logger := zerolog.Nop()
	ctx := context.Background()

	db, err := database.NewDB(":memory:", &logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	store := repository.NewMemoryDocumentStore()
	writer := documents.NewWriter(store, documents.WriterOptions{Debounce: 10 * time.Millisecond}, &logger)
	docs := documents.NewService(store, writer, &logger)
	t.Cleanup(func() { _ = docs.Close(context.Background()) })

	cal, err := availability.NewCalendar([]string{"2024-12-25"}, nil)
	require.NoError(t, err)
	hotel, err := availability.NewHotel(21, 25, 40)
	require.NoError(t, err)

	bus := events.NewEventBus()
	prices := service.NewPricingService(docs, cal, bus, &logger)
	require.NoError(t, prices.Load(ctx))
	t.Cleanup(prices.Close)
	settings := service.NewSettingsService(docs, bus, &logger)
	require.NoError(t, settings.Load(ctx))
	t.Cleanup(settings.Close)

	reservations := service.NewReservationService(db, availability.NewGrooming(cal, 0), hotel, prices, bus, &logger)

	srv := NewHTTPServer(cfg, Services{
		Reservations: reservations,
		Pricing:      prices,
		Settings:     settings,
		Products:     service.NewProductService(db, bus, &logger),
		Documents:    docs,
		Exporter:     export.NewExporter(reservations, t.TempDir(), &logger),
		Geo:          geo.NewClient(config.GeoConfig{}, &logger),
	}, &logger)
	srv.now = func() time.Time { return time.Date(2024, 12, 2, 10, 0, 0, 0, time.UTC) }

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	return &testEnv{db: db, store: store, docs: docs, server: srv, ts: ts}
}

func (e *testEnv) do(t *testing.T, method, path, body string, headers ...string) (*http.Response, string) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, e.ts.URL+path, reader)
	require.NoError(t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(data)
}
