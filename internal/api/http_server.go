package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"pethotel/internal/config"
	"pethotel/internal/documents"
	"pethotel/internal/export"
	"pethotel/internal/geo"
	"pethotel/internal/logging"
	"pethotel/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// Services are the collaborators behind the HTTP API.
type Services struct {
	Reservations *service.ReservationService
	Pricing      *service.PricingService
	Settings     *service.SettingsService
	Products     *service.ProductService
	Documents    *documents.Service
	Exporter     *export.Exporter
	Geo          *geo.Client
}

// HTTPServer exposes the back-office API.
type HTTPServer struct {
	cfg    config.APIConfig
	svc    Services
	auth   *HTTPAuth
	server *http.Server
	logger *zerolog.Logger
	now    func() time.Time
}

func NewHTTPServer(cfg config.APIConfig, svc Services, logger *zerolog.Logger) *HTTPServer {
	srv := &HTTPServer{
		cfg:    cfg,
		svc:    svc,
		auth:   NewHTTPAuth(cfg),
		logger: logging.Component(logger, "http"),
		now:    time.Now,
	}

	srv.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:           srv.routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return srv
}

// Handler is the root handler, exposed for tests and embedding.
func (s *HTTPServer) Handler() http.Handler {
	return s.server.Handler
}

func (s *HTTPServer) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(s.auth.Wrap)

		r.Get("/example", s.handleExample)
		r.Get("/geo/locality", s.handleLocality)

		r.Route("/reservations", func(r chi.Router) {
			r.Post("/", s.handleAddReservation)
			r.Get("/", s.handleListReservations)
			r.Get("/active", s.dateView(s.svc.Reservations.Active))
			r.Get("/check-ins", s.dateView(s.svc.Reservations.CheckIns))
			r.Get("/check-outs", s.dateView(s.svc.Reservations.CheckOuts))
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetReservation)
				r.Patch("/status", s.handleUpdateStatus)
				r.Put("/services", s.handleUpdateServices)
				r.Put("/grooming-result", s.handleGroomingResult)
				r.Get("/quote", s.handleQuoteReservation)
			})
		})
		r.Post("/quotes", s.handleQuoteDraft)

		r.Route("/availability", func(r chi.Router) {
			r.Get("/grooming", s.handleGroomingAvailability)
			r.Get("/grooming/{date}", s.handleGroomingDay)
			r.Get("/hotel", s.handleHotelAvailability)
		})

		r.Route("/documents/{collection}/{docID}", func(r chi.Router) {
			r.Get("/", s.handleGetDocument)
			r.Put("/", s.handleSetDocument)
			r.Get("/events", s.handleDocumentEvents)
		})
		r.Get("/pricing", s.handleGetPricing)
		r.Put("/pricing", s.handleUpdatePricing)
		r.Get("/settings", s.handleGetSettings)
		r.Put("/settings", s.handleUpdateSettings)

		r.Get("/daily-needs", s.handleDailyNeeds)

		r.Get("/categories", s.handleListCategories)
		r.Post("/categories", s.handleCreateCategory)
		r.Get("/products", s.handleListProducts)
		r.Post("/products", s.handleCreateProduct)
		r.Get("/products/{id}", s.handleGetProduct)
		r.Get("/sales", s.handleListSales)
		r.Post("/sales", s.handleRecordSale)
	})

	return r
}

func (s *HTTPServer) Start() error {
	if s.server == nil {
		return fmt.Errorf("http server is not initialized")
	}
	s.logger.Info().Str("addr", s.server.Addr).Msg("HTTP API listening")
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *HTTPServer) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *HTTPServer) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
