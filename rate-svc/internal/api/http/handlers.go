package httpapi

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"friendlyeats/internal/domain"
	ratedomain "friendlyeats/rate-svc/internal/domain"
	"friendlyeats/rate-svc/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
)

type Handler struct {
	Restaurants service.RestaurantServiceInterface
	Reviews     service.ReviewServiceInterface
	QR          service.QRGenerator
}

func NewHandler(restaurants service.RestaurantServiceInterface, reviews service.ReviewServiceInterface, qr service.QRGenerator) *Handler {
	return &Handler{Restaurants: restaurants, Reviews: reviews, QR: qr}
}

func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}).Methods("GET")
	r.HandleFunc("/api/restaurants", h.createRestaurant).Methods("POST")
	r.HandleFunc("/api/restaurants/{restaurantId}", h.getRestaurant).Methods("GET")
	r.HandleFunc("/api/restaurants/{restaurantId}", h.updateRestaurant).Methods("PUT")
	r.HandleFunc("/api/restaurants/{restaurantId}/reviews", h.createReview).Methods("POST")
	r.HandleFunc("/api/restaurants/{restaurantId}/reviews", h.listReviews).Methods("GET")
	r.HandleFunc("/api/restaurants/{restaurantId}/qrcode", h.getQRCode).Methods("GET")
	r.HandleFunc("/api/reviews/{reviewId}", h.updateReview).Methods("PUT")
	r.HandleFunc("/api/reviews/{reviewId}", h.deleteReview).Methods("DELETE")
	r.HandleFunc("/api/reviews/{reviewId}/yums", h.requestYum).Methods("POST")
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	var validationErrs validator.ValidationErrors
	var decodeErr *domain.DecodeError
	switch {
	case errors.As(err, &validationErrs):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, service.ErrRestaurantNotFound), errors.Is(err, service.ErrReviewNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.As(err, &decodeErr):
		log.Printf("Error reading stored document: %v", err)
		http.Error(w, "stored document is malformed", http.StatusInternalServerError)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) createRestaurant(w http.ResponseWriter, r *http.Request) {
	var req ratedomain.RestaurantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	restaurant, err := h.Restaurants.Create(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, restaurant)
}

func (h *Handler) getRestaurant(w http.ResponseWriter, r *http.Request) {
	restaurant, err := h.Restaurants.Get(r.Context(), mux.Vars(r)["restaurantId"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, restaurant)
}

func (h *Handler) updateRestaurant(w http.ResponseWriter, r *http.Request) {
	var req ratedomain.RestaurantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	restaurant, err := h.Restaurants.Update(r.Context(), mux.Vars(r)["restaurantId"], req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, restaurant)
}

func (h *Handler) createReview(w http.ResponseWriter, r *http.Request) {
	var req ratedomain.CreateReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	review, err := h.Reviews.Create(r.Context(), mux.Vars(r)["restaurantId"], req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, review)
}

func (h *Handler) listReviews(w http.ResponseWriter, r *http.Request) {
	reviews, err := h.Reviews.ListForRestaurant(r.Context(), mux.Vars(r)["restaurantId"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reviews)
}

func (h *Handler) updateReview(w http.ResponseWriter, r *http.Request) {
	var req ratedomain.UpdateReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	review, err := h.Reviews.Update(r.Context(), mux.Vars(r)["reviewId"], req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, review)
}

func (h *Handler) deleteReview(w http.ResponseWriter, r *http.Request) {
	if err := h.Reviews.Delete(r.Context(), mux.Vars(r)["reviewId"]); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) requestYum(w http.ResponseWriter, r *http.Request) {
	var req ratedomain.YumRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	pending, err := h.Reviews.RequestYum(r.Context(), mux.Vars(r)["reviewId"], req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, pending)
}

func (h *Handler) getQRCode(w http.ResponseWriter, r *http.Request) {
	restaurantID := mux.Vars(r)["restaurantId"]
	if _, err := h.Restaurants.Get(r.Context(), restaurantID); err != nil {
		writeError(w, err)
		return
	}
	png, err := h.QR.Generate(restaurantID)
	if err != nil {
		log.Printf("Error generating QR code for restaurant %s: %v", restaurantID, err)
		http.Error(w, "Failed to generate QR code", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Write(png)
}
