package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/emergencyai/dispatch-api/api"
	"github.com/emergencyai/dispatch-api/api/scheduler"
	"github.com/emergencyai/dispatch-api/config"
	"github.com/emergencyai/dispatch-api/models"
	"github.com/emergencyai/dispatch-api/storage"
)

// App stores the router, record store and config, so it can be reused
type App struct {
	Router    *mux.Router
	Store     storage.Store
	Config    config.Config
	Events    *EventHub
	Scheduler *scheduler.Scheduler

	snapshots *storage.FileStore
}

// New creates a new mux router and all the routes
func (a *App) New() *mux.Router {
	api.SetupGoGuardian(&a.Config)
	api.RegisterMetrics()

	r := mux.NewRouter()
	r.Use(api.MetricsMiddleware)

	authH := NewAuth(a.Config)
	d := Dashboard{DB: a.Store, Snapshot: a.snapshots.Snapshot, Mock: a.Config.MockStats}
	i := Incident{DB: a.Store, Events: a.Events}
	h := Hospital{DB: a.Store, Events: a.Events}

	// healthchex
	r.HandleFunc("/health", healthCheckHandler)
	r.Handle("/metrics", promhttp.Handler())
	r.HandleFunc("/", welcomeHandler).Methods("GET")

	apiCreate := r.PathPrefix("/api").Subrouter()

	apiCreate.Handle("/auth/login", http.HandlerFunc(authH.LoginHandler)).Methods("POST")
	apiCreate.Handle("/auth/logout", api.Middleware(http.HandlerFunc(authH.LogoutHandler))).Methods("POST")
	apiCreate.Handle("/auth/verify", api.Middleware(http.HandlerFunc(authH.VerifyHandler))).Methods("GET")

	apiCreate.Handle("/dashboard", api.Middleware(http.HandlerFunc(d.DashboardHandler))).Methods("GET")
	apiCreate.Handle("/dashboard/stats", api.Middleware(http.HandlerFunc(d.StatsHandler))).Methods("GET")

	apiCreate.Handle("/incidents", api.Middleware(http.HandlerFunc(i.IncidentHandler))).Methods("GET")
	apiCreate.Handle("/incidents", api.Middleware(http.HandlerFunc(i.CreateIncidentHandler))).Methods("POST")
	apiCreate.Handle("/incidents/{incident_id}", api.Middleware(http.HandlerFunc(i.IncidentByIDHandler))).Methods("GET")
	apiCreate.Handle("/incidents/{incident_id}", api.Middleware(http.HandlerFunc(i.UpdateIncidentByIDHandler))).Methods("PATCH")
	apiCreate.Handle("/incidents/{incident_id}", api.Middleware(http.HandlerFunc(i.DeleteIncidentByIDHandler))).Methods("DELETE")

	// the available filter must register ahead of the id matcher
	apiCreate.Handle("/hospitals", api.Middleware(http.HandlerFunc(h.HospitalHandler))).Methods("GET")
	apiCreate.Handle("/hospitals/available", api.Middleware(http.HandlerFunc(h.AvailableHospitalsHandler))).Methods("GET")
	apiCreate.Handle("/hospitals/{hospital_id}", api.Middleware(http.HandlerFunc(h.HospitalByIDHandler))).Methods("GET")
	apiCreate.Handle("/hospitals/{hospital_id}", api.Middleware(http.HandlerFunc(h.UpdateHospitalByIDHandler))).Methods("PATCH")

	apiCreate.Handle("/events", api.Middleware(http.HandlerFunc(a.Events.ServeWS))).Methods("GET")

	r.NotFoundHandler = http.HandlerFunc(routeNotFoundHandler)
	return r
}

// Initialize is invoked by main to pick the store backend and create a router
func (a *App) Initialize() error {
	a.snapshots = storage.NewFileStore(a.Config.DataDir)

	if a.Config.DBURI != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		store, err := storage.NewMongoStore(ctx, a.Config.DBURI, a.Config.DBName)
		if err != nil {
			// if we fail to connect to the database, then kill the pod
			zap.S().With(err).Error("failed to connect to database")
			return err
		}
		a.Store = store
		zap.S().Info("dispatch-api has connected to the database")
	} else {
		a.Store = a.snapshots
		zap.S().Infow("dispatch-api is using file-backed storage", "dir", a.Config.DataDir)
	}

	a.Events = NewEventHub()
	a.Scheduler = scheduler.NewScheduler(api.Revocations())
	a.Scheduler.Start()

	a.initializeRoutes()
	return nil
}

func (a *App) initializeRoutes() {
	a.Router = a.New()
}

func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	config.WriteJSON(w, http.StatusOK, models.HealthCheckResponse{
		Success:   true,
		Message:   "Emergency Dispatch API is running",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

func welcomeHandler(w http.ResponseWriter, r *http.Request) {
	config.WriteJSON(w, http.StatusOK, models.Response{
		Success: true,
		Message: "Welcome to the Emergency Dispatch API",
		Data: map[string]interface{}{
			"version": "1.0.0",
			"endpoints": map[string]string{
				"auth":      "/api/auth",
				"dashboard": "/api/dashboard",
				"incidents": "/api/incidents",
				"hospitals": "/api/hospitals",
			},
		},
	})
}

func routeNotFoundHandler(w http.ResponseWriter, r *http.Request) {
	config.WriteJSON(w, http.StatusNotFound, models.ErrorResponse{
		Success: false,
		Message: "Route not found",
	})
}
