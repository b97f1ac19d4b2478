package gateway

import (
	"encoding/json"
	"io"
	"log"
	"net"
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/mux"
)

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

type Config struct {
	RateSvcURL      string
	AnalyticsSvcURL string
}

type Gateway struct {
	config Config
	client HTTPClient
}

func NewGateway(config Config, client HTTPClient) *Gateway {
	return &Gateway{
		config: config,
		client: client,
	}
}

func (g *Gateway) HealthCheck(w http.ResponseWriter, r *http.Request) {
	response := map[string]string{
		"status":  "healthy",
		"service": "api-gateway",
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// Headers that describe a single connection and must not be forwarded.
var hopHeaders = []string{
	"Connection",
	"Keep-Alive",
	"Proxy-Authenticate",
	"Proxy-Authorization",
	"Te",
	"Trailer",
	"Transfer-Encoding",
	"Upgrade",
}

// ProxyRequest forwards r to the same path and query on targetURL and
// streams the upstream response back.
func (g *Gateway) ProxyRequest(w http.ResponseWriter, r *http.Request, targetURL string) {
	upstream, err := url.Parse(targetURL)
	if err != nil {
		log.Printf("ERROR: Bad upstream URL %q: %v", targetURL, err)
		http.Error(w, "gateway misconfigured", http.StatusInternalServerError)
		return
	}
	upstream.Path = strings.TrimRight(upstream.Path, "/") + r.URL.Path
	upstream.RawQuery = r.URL.RawQuery
	log.Printf("PROXY: %s %s -> %s", r.Method, r.URL.Path, upstream.Host)

	req, err := http.NewRequestWithContext(r.Context(), r.Method, upstream.String(), r.Body)
	if err != nil {
		log.Printf("ERROR: Failed to create request: %v", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	req.ContentLength = r.ContentLength
	req.Header = r.Header.Clone()
	removeHopHeaders(req.Header)
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		if prior := req.Header.Get("X-Forwarded-For"); prior != "" {
			host = prior + ", " + host
		}
		req.Header.Set("X-Forwarded-For", host)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		log.Printf("ERROR: Failed to proxy to %s: %v", upstream.Host, err)
		http.Error(w, "upstream unavailable", http.StatusBadGateway)
		return
	}
	defer resp.Body.Close()

	removeHopHeaders(resp.Header)
	for k, v := range resp.Header {
		w.Header()[k] = v
	}
	w.WriteHeader(resp.StatusCode)

	if _, err := io.Copy(w, resp.Body); err != nil {
		log.Printf("ERROR: Failed to copy response: %v", err)
	}
}

func removeHopHeaders(h http.Header) {
	for _, key := range hopHeaders {
		h.Del(key)
	}
}

// Target picks the upstream for an /api path. Restaurant stats and analytics
// live in analytics-svc; every other API resource belongs to rate-svc.
func (g *Gateway) Target(path string) (string, bool) {
	if !strings.HasPrefix(path, "/api/") {
		return "", false
	}
	if strings.HasPrefix(path, "/api/analytics/") {
		return g.config.AnalyticsSvcURL, true
	}
	if rest, ok := strings.CutPrefix(path, "/api/restaurants/"); ok {
		parts := strings.Split(rest, "/")
		if len(parts) >= 2 && parts[0] != "" {
			if (len(parts) == 2 && parts[1] == "stats") || (len(parts) > 2 && parts[1] == "analytics") {
				return g.config.AnalyticsSvcURL, true
			}
		}
	}
	return g.config.RateSvcURL, true
}

func (g *Gateway) RouteHandler(w http.ResponseWriter, r *http.Request) {
	target, ok := g.Target(r.URL.Path)
	if !ok {
		http.NotFound(w, r)
		return
	}
	g.ProxyRequest(w, r, target)
}

func (g *Gateway) SetupRoutes() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/health", g.HealthCheck).Methods("GET")
	r.PathPrefix("/api/").HandlerFunc(g.RouteHandler)
	return r
}
