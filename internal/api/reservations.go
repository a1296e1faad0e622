package api

import (
	"context"
	"net/http"
	"strings"

	"pethotel/internal/models"
	"pethotel/internal/service"

	"github.com/go-chi/chi/v5"
)

func (s *HTTPServer) today() string {
	return models.DateKey(s.now())
}

func (s *HTTPServer) handleAddReservation(w http.ResponseWriter, r *http.Request) {
	var body models.Reservation
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	// ids are always assigned by the server
	body.ID = ""

	created, err := s.svc.Reservations.Add(r.Context(), &body)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *HTTPServer) handleListReservations(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := service.Filter{
		Date:   strings.TrimSpace(q.Get("date")),
		Status: models.Status(strings.TrimSpace(q.Get("status"))),
		Type:   models.ReservationType(strings.TrimSpace(q.Get("type"))),
	}
	if f.Date != "" {
		if _, err := models.ParseDate(f.Date); err != nil {
			writeError(w, http.StatusBadRequest, "invalid date format; expected YYYY-MM-DD")
			return
		}
	}

	var err error
	if f.RoomMin, err = queryInt(r, "room_min"); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if f.RoomMax, err = queryInt(r, "room_max"); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if f.Hotel, err = queryInt(r, "hotel"); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	rs, err := s.svc.Reservations.List(r.Context(), f)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"reservations": rs})
}

// dateView serves a reservation view of ?date, today when absent.
func (s *HTTPServer) dateView(view func(ctx context.Context, date string) (models.Reservations, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		date := strings.TrimSpace(r.URL.Query().Get("date"))
		if date == "" {
			date = s.today()
		}
		if _, err := models.ParseDate(date); err != nil {
			writeError(w, http.StatusBadRequest, "invalid date format; expected YYYY-MM-DD")
			return
		}
		rs, err := view(r.Context(), date)
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"date": date, "reservations": rs})
	}
}

func (s *HTTPServer) handleGetReservation(w http.ResponseWriter, r *http.Request) {
	res, err := s.svc.Reservations.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type statusRequest struct {
	Version int64         `json:"version"`
	Status  models.Status `json:"status"`
}

func (s *HTTPServer) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	var body statusRequest
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	res, err := s.svc.Reservations.UpdateStatus(r.Context(), chi.URLParam(r, "id"), body.Version, body.Status)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type servicesRequest struct {
	Version  int64                     `json:"version"`
	Services models.AdditionalServices `json:"services"`
}

func (s *HTTPServer) handleUpdateServices(w http.ResponseWriter, r *http.Request) {
	var body servicesRequest
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	res, err := s.svc.Reservations.UpdateServices(r.Context(), chi.URLParam(r, "id"), body.Version, body.Services)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type groomingResultRequest struct {
	Version     int64    `json:"version"`
	FinalPrice  *float64 `json:"finalPrice"`
	BeforePhoto string   `json:"beforePhoto"`
	AfterPhoto  string   `json:"afterPhoto"`
}

func (s *HTTPServer) handleGroomingResult(w http.ResponseWriter, r *http.Request) {
	var body groomingResultRequest
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	res, err := s.svc.Reservations.SetGroomingResult(r.Context(), chi.URLParam(r, "id"),
		body.Version, body.FinalPrice, body.BeforePhoto, body.AfterPhoto)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *HTTPServer) handleQuoteReservation(w http.ResponseWriter, r *http.Request) {
	q, err := s.svc.Reservations.Quote(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, q)
}

func (s *HTTPServer) handleQuoteDraft(w http.ResponseWriter, r *http.Request) {
	var body models.Reservation
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	q, err := s.svc.Reservations.QuoteDraft(&body)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, q)
}

const maxAvailabilityDays = 90

func (s *HTTPServer) handleGroomingAvailability(w http.ResponseWriter, r *http.Request) {
	from := strings.TrimSpace(r.URL.Query().Get("from"))
	if from == "" {
		from = s.today()
	}
	days, err := queryInt(r, "days")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if days <= 0 {
		days = 30
	}
	if days > maxAvailabilityDays {
		days = maxAvailabilityDays
	}

	out, err := s.svc.Reservations.GroomingAvailability(r.Context(), from, days)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"days": out})
}

func (s *HTTPServer) handleGroomingDay(w http.ResponseWriter, r *http.Request) {
	day, err := s.svc.Reservations.GroomingDay(r.Context(), chi.URLParam(r, "date"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, day)
}

func (s *HTTPServer) handleHotelAvailability(w http.ResponseWriter, r *http.Request) {
	hotel, err := queryInt(r, "hotel")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if hotel == 0 {
		hotel = 1
	}
	q := r.URL.Query()
	out, err := s.svc.Reservations.HotelAvailability(r.Context(), hotel,
		strings.TrimSpace(q.Get("check_in")), strings.TrimSpace(q.Get("check_out")))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}
