// Route wiring for the relay's small HTTP surface.
package server

import "net/http"

// SetupRoutes returns the ServeMux with the health check, the websocket
// endpoint, and the browser test page.
func SetupRoutes(ws http.HandlerFunc) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/", HealthHandler)
	mux.HandleFunc("/ws", ws)
	mux.HandleFunc("/test", TestPageHandler)
	return mux
}
