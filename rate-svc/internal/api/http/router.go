package httpapi

import (
	"log"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

func NewRouter(handler *Handler) http.Handler {
	r := mux.NewRouter()
	handler.RegisterRoutes(r)
	return cors.New(cors.Options{
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
	}).Handler(r)
}

func StartServer(addr string, handler http.Handler) {
	log.Printf("Rate Service starting on %s", addr)
	log.Fatal(http.ListenAndServe(addr, handler))
}
