package main

import (
	"log"
	"net/http"
	"time"

	"friendlyeats/api-gateway/internal/gateway"
	"friendlyeats/config"

	"github.com/rs/cors"
)

func main() {
	cfg := config.Load()

	gw := gateway.NewGateway(gateway.Config{
		RateSvcURL:      cfg.RateSvcURL,
		AnalyticsSvcURL: cfg.AnalyticsSvcURL,
	}, &http.Client{Timeout: 30 * time.Second})

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})
	handler := c.Handler(gw.SetupRoutes())

	log.Printf("API Gateway starting on %s", cfg.HTTPAddr)
	log.Fatal(http.ListenAndServe(cfg.HTTPAddr, handler))
}
