package api

import (
	"net/http"

	"NetSentra/internal/alert"
	"NetSentra/internal/config"
	"NetSentra/internal/pipeline"
	"NetSentra/internal/tracker"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server exposes the detector's status, statistics, and alert log over HTTP,
// plus a WebSocket stream of live alerts.
type Server struct {
	pipeline *pipeline.Pipeline
	tracker  *tracker.Tracker
	store    *alert.Store
	hub      *Hub
}

// NewServer wires the handlers and returns an http.Server ready to listen.
func NewServer(cfg config.APIConfig, p *pipeline.Pipeline, t *tracker.Tracker, s *alert.Store, hub *Hub) *http.Server {
	srv := &Server{pipeline: p, tracker: t, store: s, hub: hub}

	r := mux.NewRouter()
	r.HandleFunc("/api/v1/status", srv.statusHandler).Methods("GET")
	r.HandleFunc("/api/v1/statistics", srv.statisticsHandler).Methods("GET")
	r.HandleFunc("/api/v1/alerts", srv.alertsHandler).Methods("GET")
	r.HandleFunc("/api/v1/alerts/{id}/ack", srv.ackAlertHandler).Methods("POST")
	r.HandleFunc("/api/v1/pipeline/start", srv.startPipelineHandler).Methods("POST")
	r.HandleFunc("/api/v1/pipeline/stop", srv.stopPipelineHandler).Methods("POST")
	r.HandleFunc("/ws", srv.hub.HandleWS)
	r.Handle("/metrics", promhttp.Handler())

	return &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: r,
	}
}
