package rest

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/swaggo/swag"
	"go.uber.org/zap"

	"github.com/wonderless/Test-autoestima-sub000/internal/catalog"
	"github.com/wonderless/Test-autoestima-sub000/internal/config"
	_ "github.com/wonderless/Test-autoestima-sub000/internal/docs"
	"github.com/wonderless/Test-autoestima-sub000/internal/model"
	"github.com/wonderless/Test-autoestima-sub000/internal/service"
	"github.com/wonderless/Test-autoestima-sub000/internal/transport/rest/handler"
	"github.com/wonderless/Test-autoestima-sub000/internal/transport/rest/middleware"
	"github.com/wonderless/Test-autoestima-sub000/internal/transport/ws"
)

// Container holds all dependencies for the router
type Container struct {
	Config         *config.Config
	Catalog        *catalog.Catalog
	AuthService    *service.AuthService
	TestService    *service.TestService
	ResultsService *service.ResultsService
	AdminService   *service.AdminService
	WSHub          *ws.Hub
	RateLimiter    *middleware.RateLimiter
	Gatherer       prometheus.Gatherer
	Logger         *zap.Logger
}

// NewRouter creates the API router with all endpoints
func NewRouter(c *Container) http.Handler {
	r := mux.NewRouter()

	// Initialize handlers
	testHandler := handler.NewTestHandler(c.Catalog, c.TestService, c.Logger)
	resultsHandler := handler.NewResultsHandler(c.ResultsService, c.Logger)
	adminHandler := handler.NewAdminHandler(c.AdminService, c.Logger)
	wsHandler := ws.NewHandler(c.WSHub, c.AuthService, c.Config.CORS.AllowedOrigins, c.Logger)

	// Initialize middleware
	authMW := middleware.NewAuthMiddleware(c.AuthService)

	r.Use(middleware.RequestID)
	r.Use(middleware.Logging(c.Logger))
	r.Use(middleware.Metrics)

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	gatherer := c.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})).Methods("GET")

	// API v1 routes
	v1 := r.PathPrefix("/v1").Subrouter()
	if c.RateLimiter != nil {
		v1.Use(c.RateLimiter.Middleware)
	}

	// Public routes
	v1.HandleFunc("/questions", testHandler.Questions).Methods("GET")
	v1.HandleFunc("/openapi.json", func(w http.ResponseWriter, r *http.Request) {
		doc, err := swag.ReadDoc()
		if err != nil {
			http.Error(w, `{"error":"api description unavailable"}`, http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(doc))
	}).Methods("GET")

	// WebSocket routes (token in query param)
	v1.HandleFunc("/ws/admin", wsHandler.AdminWS).Methods("GET")

	if c.Config.IsDebug() {
		authHandler := handler.NewAuthHandler(c.AuthService, c.Logger)
		v1.HandleFunc("/dev/token", authHandler.DevToken).Methods("POST")
	}

	// Student routes (any authenticated role)
	me := v1.PathPrefix("/me").Subrouter()
	me.Use(authMW.RequireAuth)

	me.HandleFunc("/test/start", testHandler.Start).Methods("POST")
	me.HandleFunc("/test/answers", testHandler.Submit).Methods("POST")
	me.HandleFunc("/test/reset", testHandler.Reset).Methods("POST")
	me.HandleFunc("/results", resultsHandler.Get).Methods("GET")
	me.HandleFunc("/categories/{category}/toggle", resultsHandler.Toggle).Methods("POST")
	me.HandleFunc("/categories/{category}/advance", resultsHandler.Advance).Methods("POST")
	me.HandleFunc("/categories/{category}/recommendations/{recId}/activities", resultsHandler.CompleteActivity).Methods("POST")
	me.HandleFunc("/categories/{category}/recommendations/{recId}/reset", resultsHandler.ResetRecommendation).Methods("POST")
	me.HandleFunc("/recommendations/{recId}/feedback/open", resultsHandler.OpenFeedback).Methods("POST")
	me.HandleFunc("/recommendations/{recId}/feedback", resultsHandler.SubmitFeedback).Methods("POST")
	me.HandleFunc("/feedback/dismiss", resultsHandler.DismissFeedback).Methods("POST")

	// Admin routes
	admin := v1.PathPrefix("/admin").Subrouter()
	admin.Use(authMW.RequireAuth, middleware.RequireRole(model.RoleAdmin))

	admin.HandleFunc("/dashboard", adminHandler.Dashboard).Methods("GET")
	admin.HandleFunc("/export.csv", adminHandler.Export).Methods("GET")

	// Superadmin routes
	super := v1.PathPrefix("/superadmin").Subrouter()
	super.Use(authMW.RequireAuth, middleware.RequireRole(model.RoleSuperAdmin))

	super.HandleFunc("/feedback", adminHandler.Feedback).Methods("GET")

	// CORS wraps the router so preflight requests never reach route matching
	return middleware.CORS(c.Config.CORS.AllowedOrigins)(r)
}
