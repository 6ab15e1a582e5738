package http

import (
	"net/http"

	"dental-opd-service/internal/delivery/http/handler"
	"dental-opd-service/internal/delivery/http/middleware"

	"github.com/gorilla/mux"
)

type Router struct {
	router         *mux.Router
	opdHandler     *handler.OPDHandler
	authMiddleware *middleware.AuthMiddleware
	corsMiddleware *middleware.CORSMiddleware
}

func NewRouter(
	opdHandler *handler.OPDHandler,
	authMiddleware *middleware.AuthMiddleware,
	corsMiddleware *middleware.CORSMiddleware,
) *Router {
	return &Router{
		router:         mux.NewRouter(),
		opdHandler:     opdHandler,
		authMiddleware: authMiddleware,
		corsMiddleware: corsMiddleware,
	}
}

func (r *Router) Setup() *mux.Router {
	// API versioning
	api := r.router.PathPrefix("/api/v1").Subrouter()

	// Health check
	api.HandleFunc("/health", r.healthCheck).Methods(http.MethodGet)

	// OPD walk-in queue (all routes require authentication; role rules are
	// enforced inside the usecase)
	opd := api.PathPrefix("/opd").Subrouter()
	opd.Use(r.authMiddleware.Authenticate)
	opd.HandleFunc("/check-in", r.opdHandler.CheckIn).Methods(http.MethodPost)
	opd.HandleFunc("/queue", r.opdHandler.GetQueue).Methods(http.MethodGet)
	opd.HandleFunc("/queue/{id}/status", r.opdHandler.UpdateStatus).Methods(http.MethodPatch)

	// Add CORS middleware
	r.router.Use(r.corsMiddleware.Handle)

	return r.router
}

func (r *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status": "ok"}`))
}
