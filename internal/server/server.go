package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc"

	"github.com/Kawamoto24e1058/momoyama-tech-hp/internal/icsexport"
	"github.com/Kawamoto24e1058/momoyama-tech-hp/internal/schedule"
)

// ScheduleSource is satisfied by *schedule.Service.
type ScheduleSource interface {
	FutureSchedule(ctx context.Context) schedule.FutureSchedule
	PastEventsByMonth(ctx context.Context) []schedule.MonthGroup
}

type handler struct {
	source ScheduleSource
	logger zerolog.Logger
	now    func() time.Time
}

// NewRouter serves the schedule as JSON and as an iCalendar feed.
func NewRouter(source ScheduleSource, logger zerolog.Logger) *mux.Router {
	h := &handler{
		source: source,
		logger: logger.With().Str("component", "http").Logger(),
		now:    time.Now,
	}

	r := mux.NewRouter()
	r.Use(h.logRequests)

	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)
	r.HandleFunc("/schedule/future", h.future).Methods(http.MethodGet)
	r.HandleFunc("/schedule/past", h.past).Methods(http.MethodGet)
	r.HandleFunc("/schedule.ics", h.calendar).Methods(http.MethodGet)
	return r
}

func (h *handler) future(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.source.FutureSchedule(r.Context()))
}

func (h *handler) past(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.source.PastEventsByMonth(r.Context()))
}

func (h *handler) calendar(w http.ResponseWriter, r *http.Request) {
	var (
		future schedule.FutureSchedule
		past   []schedule.MonthGroup
		wg     conc.WaitGroup
	)
	wg.Go(func() { future = h.source.FutureSchedule(r.Context()) })
	wg.Go(func() { past = h.source.PastEventsByMonth(r.Context()) })
	wg.Wait()

	events := append(future.Events(), schedule.Flatten(past)...)

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	if err := icsexport.Write(w, events, "Schedule", h.now()); err != nil {
		h.logger.Error().Err(err).Msg("write ics response failed")
	}
}

func (h *handler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		h.logger.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("elapsed", time.Since(start)).
			Msg("request")
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(v)
}
