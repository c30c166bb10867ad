package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/GoodbyePlanet/vimark/internal/db"
	"github.com/GoodbyePlanet/vimark/internal/prefs"
	"github.com/GoodbyePlanet/vimark/internal/render"
	"github.com/GoodbyePlanet/vimark/internal/theme"
)

// Config holds server configuration.
type Config struct {
	Port     int
	AllowAll bool // allow all CORS origins (dev mode)

	DefaultDocument string
	MaxTokenLength  int
	AckDelay        time.Duration
	ProjectURL      string

	Markdown   render.Options
	LightStyle string
	DarkStyle  string
}

// Server is the local vimark host: it serves the editor page and runs one
// editing session per WebSocket connection.
type Server struct {
	cfg         Config
	db          *db.DB
	prefs       *prefs.Store
	renderer    *render.Pipeline
	stylesheets map[theme.Mode]string
	router      chi.Router
	httpServer  *http.Server
}

// New creates a server backed by database for preferences.
func New(cfg Config, database *db.DB) (*Server, error) {
	s := &Server{
		cfg:         cfg,
		db:          database,
		prefs:       prefs.NewStore(database, ""),
		renderer:    render.NewPipeline(nil, cfg.Markdown),
		stylesheets: make(map[theme.Mode]string),
	}

	for mode, style := range map[theme.Mode]string{theme.Light: cfg.LightStyle, theme.Dark: cfg.DarkStyle} {
		css, err := render.Stylesheet(style)
		if err != nil {
			return nil, err
		}
		s.stylesheets[mode] = css
	}

	s.router = s.buildRouter()
	return s, nil
}

// buildRouter creates and configures the chi router with all routes.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS
	corsOpts := cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "http://127.0.0.1:*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}
	if s.cfg.AllowAll {
		corsOpts.AllowedOrigins = []string{"*"}
	}
	r.Use(cors.Handler(corsOpts))

	// Health check
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	// The session socket is long-lived; only plain requests get a timeout.
	r.Get("/ws/session", s.handleSession)
	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(60 * time.Second))
		s.RegisterRoutes(r)
	})

	return r
}

// Router returns the chi router for registering additional routes.
func (s *Server) Router() chi.Router { return s.router }

// Database returns the database connection.
func (s *Server) Database() *db.DB { return s.db }

// ServerConfig returns the server configuration.
func (s *Server) ServerConfig() Config { return s.cfg }

// Start begins listening on the configured port.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.cfg.Port)
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("vimark listening on %s", addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}
