package main

import (
	"friendlyeats/config"
	"friendlyeats/internal/docstore"
	httpapi "friendlyeats/rate-svc/internal/api/http"
	"friendlyeats/rate-svc/internal/service"
)

func main() {
	cfg := config.Load()

	writer := config.NewKafkaWriter(cfg, cfg.ChangesTopic)
	defer writer.Close()

	store, closeStore := config.MustInitDocStore(cfg, docstore.NewKafkaChangeSink(writer))
	defer closeStore()

	handler := httpapi.NewHandler(
		service.NewRestaurantService(store),
		service.NewReviewService(store),
		service.DefaultQRGenerator{BaseURL: cfg.ReviewBaseURL},
	)

	httpapi.StartServer(cfg.HTTPAddr, httpapi.NewRouter(handler))
}
