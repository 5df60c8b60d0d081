package httpserver

import "net/http"

// Routes groups handlers.
type Routes struct {
	Compute       http.HandlerFunc
	LatestRun     http.HandlerFunc
	StationUptime http.HandlerFunc
	LiveUptime    http.HandlerFunc
	ReportsWS     http.HandlerFunc
	Health        http.HandlerFunc

	// Auth wraps the /v1 API routes when non-nil. Health and the charger
	// websocket stay open.
	Auth func(http.Handler) http.Handler
}

// NewRouter registers endpoints.
func NewRouter(routes Routes) http.Handler {
	mux := http.NewServeMux()
	if routes.Compute != nil {
		mux.Handle("/v1/uptime/compute", routes.protect(method(http.MethodPost, routes.Compute)))
	}
	if routes.LatestRun != nil {
		mux.Handle("/v1/uptime/latest", routes.protect(method(http.MethodGet, routes.LatestRun)))
	}
	if routes.StationUptime != nil {
		mux.Handle("/v1/stations/uptime", routes.protect(method(http.MethodGet, routes.StationUptime)))
	}
	if routes.LiveUptime != nil {
		mux.Handle("/v1/uptime/live", routes.protect(method(http.MethodGet, routes.LiveUptime)))
	}
	if routes.ReportsWS != nil {
		mux.Handle("/ws/reports", method(http.MethodGet, routes.ReportsWS))
	}
	if routes.Health != nil {
		mux.Handle("/health", method(http.MethodGet, routes.Health))
	}
	return mux
}

func (r Routes) protect(handler http.Handler) http.Handler {
	if r.Auth == nil {
		return handler
	}
	return r.Auth(handler)
}

func method(expected string, handler http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != expected {
			w.Header().Set("Allow", expected)
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		handler(w, r)
	}
}
