package httpapi

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"friendlyeats/analytics-svc/internal/service"

	"github.com/gorilla/mux"
)

type Handler struct {
	Analytics service.AnalyticsInterface
}

func NewHandler(svc service.AnalyticsInterface) *Handler {
	return &Handler{Analytics: svc}
}

func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}).Methods("GET")
	r.HandleFunc("/api/analytics/top-rated", h.getTopRated).Methods("GET")
	r.HandleFunc("/api/analytics/rating-distribution", h.getGlobalRatingDistribution).Methods("GET")
	r.HandleFunc("/api/restaurants/{restaurantId}/stats", h.getStats).Methods("GET")
	r.HandleFunc("/api/restaurants/{restaurantId}/analytics/rating-distribution", h.getRatingDistribution).Methods("GET")
	r.HandleFunc("/api/restaurants/{restaurantId}/analytics/audit", h.getAudit).Methods("GET")
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	if errors.Is(err, service.ErrRestaurantNotFound) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	log.Printf("Error serving analytics: %v", err)
	http.Error(w, "analytics unavailable", http.StatusInternalServerError)
}

func (h *Handler) getStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Analytics.Stats(r.Context(), mux.Vars(r)["restaurantId"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, stats)
}

func (h *Handler) getTopRated(w http.ResponseWriter, r *http.Request) {
	limit := service.DefaultTopRatedLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			http.Error(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = n
	}
	ranked, err := h.Analytics.TopRated(r.Context(), limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, ranked)
}

func (h *Handler) getRatingDistribution(w http.ResponseWriter, r *http.Request) {
	dist, err := h.Analytics.RatingDistribution(r.Context(), mux.Vars(r)["restaurantId"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, dist)
}

func (h *Handler) getGlobalRatingDistribution(w http.ResponseWriter, r *http.Request) {
	dist, err := h.Analytics.GlobalRatingDistribution(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, dist)
}

func (h *Handler) getAudit(w http.ResponseWriter, r *http.Request) {
	report, err := h.Analytics.Audit(r.Context(), mux.Vars(r)["restaurantId"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, report)
}
