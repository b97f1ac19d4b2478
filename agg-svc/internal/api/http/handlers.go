package httpapi

import (
	"encoding/json"
	"io"
	"log"
	"net/http"

	aggdomain "friendlyeats/agg-svc/internal/domain"
	"friendlyeats/agg-svc/internal/service"

	"github.com/gorilla/mux"
)

const maxEventBytes = 1 << 20

// Handler is the push variant of the change feed, for platforms that
// deliver document triggers over HTTP instead of Kafka.
type Handler struct {
	Dispatcher service.ChangeDispatcher
}

func NewHandler(dispatcher service.ChangeDispatcher) *Handler {
	return &Handler{Dispatcher: dispatcher}
}

func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}).Methods("GET")
	r.HandleFunc("/api/events", h.postEvent).Methods("POST")
}

func (h *Handler) postEvent(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxEventBytes))
	if err != nil {
		http.Error(w, "Failed to read body", http.StatusBadRequest)
		return
	}
	change, err := aggdomain.ParseChange(body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := h.Dispatcher.Dispatch(r.Context(), change); err != nil {
		log.Printf("Error handling change %s: %v", change.Ref(), err)
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
		return
	}
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
