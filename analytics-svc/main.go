package main

import (
	httpapi "friendlyeats/analytics-svc/internal/api/http"
	"friendlyeats/analytics-svc/internal/service"
	"friendlyeats/config"
)

func main() {
	cfg := config.Load()

	// Read-only: nothing written here needs to reach agg-svc.
	store, closeStore := config.MustInitDocStore(cfg, nil)
	defer closeStore()

	rdb := config.MustInitRedis(cfg)
	defer rdb.Close()

	handler := httpapi.NewHandler(service.NewAnalyticsService(store, rdb))
	httpapi.StartServer(cfg.HTTPAddr, httpapi.NewRouter(handler))
}
