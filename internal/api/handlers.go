package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"NetSentra/internal/alert"
	"NetSentra/internal/model"

	"github.com/gorilla/mux"
)

const defaultAlertLimit = 10

// statusResponse is the live view of the detector's health.
type statusResponse struct {
	State         string `json:"state"`
	TotalPackets  uint64 `json:"total_packets"`
	RecordErrors  uint64 `json:"record_errors"`
	ActiveSources int    `json:"active_sources"`
	TotalAlerts   uint64 `json:"total_alerts"`
}

// statisticsResponse merges the pipeline, tracker, and store views into the
// aggregate statistics snapshot.
type statisticsResponse struct {
	Traffic       model.TrafficStatistics `json:"traffic"`
	ActiveSources int                     `json:"active_sources"`
	Alerts        model.AlertStatistics   `json:"alerts"`
}

func (s *Server) statusHandler(w http.ResponseWriter, r *http.Request) {
	traffic := s.pipeline.Statistics()
	writeJSON(w, http.StatusOK, statusResponse{
		State:         s.pipeline.State().String(),
		TotalPackets:  traffic.TotalPackets,
		RecordErrors:  traffic.MalformedRecords,
		ActiveSources: s.tracker.ActiveSources(),
		TotalAlerts:   s.store.Statistics().TotalAlerts,
	})
}

func (s *Server) statisticsHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, statisticsResponse{
		Traffic:       s.pipeline.Statistics(),
		ActiveSources: s.tracker.ActiveSources(),
		Alerts:        s.store.Statistics(),
	})
}

func (s *Server) alertsHandler(w http.ResponseWriter, r *http.Request) {
	limit := defaultAlertLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			http.Error(w, "invalid limit parameter", http.StatusBadRequest)
			return
		}
		limit = parsed
	}
	writeJSON(w, http.StatusOK, s.store.Recent(limit))
}

func (s *Server) ackAlertHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := s.store.UpdateStatus(id, model.StatusAcknowledged); err != nil {
		if errors.Is(err, alert.ErrNotFound) {
			http.Error(w, "alert not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"alert_id": id, "status": string(model.StatusAcknowledged)})
}

func (s *Server) startPipelineHandler(w http.ResponseWriter, r *http.Request) {
	if err := s.pipeline.Start(); err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"state": s.pipeline.State().String()})
}

func (s *Server) stopPipelineHandler(w http.ResponseWriter, r *http.Request) {
	if err := s.pipeline.Stop(); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"state": s.pipeline.State().String()})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// Headers are already out; nothing useful left to do.
		return
	}
}
