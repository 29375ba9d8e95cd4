package server

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/kartoza/lottery-analyst/internal/analysis"
	"github.com/kartoza/lottery-analyst/internal/api"
	"github.com/kartoza/lottery-analyst/internal/config"
	"github.com/kartoza/lottery-analyst/internal/history"
	"github.com/kartoza/lottery-analyst/internal/llm"
	"github.com/kartoza/lottery-analyst/internal/metrics"
	"github.com/kartoza/lottery-analyst/internal/reports"
	log "github.com/sirupsen/logrus"
)

//go:embed static/*
var staticFS embed.FS

// Server holds all the components for the web application
type Server struct {
	cfg          config.Config
	httpServer   *http.Server
	router       *mux.Router
	historyStore *history.Store
	importer     *history.Importer
	watcher      *history.Watcher
	reportStore  *reports.Store
	predictor    *llm.GeminiClient
	analysis     *analysis.Service
}

// New creates a new Server with all components initialized
func New(cfg config.Config) (*Server, error) {
	s := &Server{
		cfg:    cfg,
		router: mux.NewRouter(),
	}

	// History store is required: every view depends on it
	historyStore, err := history.NewStore(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open history store: %w", err)
	}
	s.historyStore = historyStore
	s.importer = history.NewImporter(historyStore)

	s.loadHistory()

	// Initialize reports store
	reportStore, err := reports.NewStore(cfg.ReportsDir)
	if err != nil {
		log.Printf("Warning: Reports store not available: %v", err)
	} else {
		s.reportStore = reportStore
	}

	s.predictor = llm.NewGeminiClient(cfg.Prediction)
	if !s.predictor.IsAvailable() {
		log.Warn("No prediction API key configured; set GEMINI_API_KEY to enable analysis")
	}

	var saver analysis.ReportSaver
	if s.reportStore != nil {
		saver = s.reportStore
	}
	s.analysis = analysis.NewService(s.predictor, historyStore, saver, analysis.Options{
		SampleSize: cfg.SampleSize,
		RunTimeout: cfg.RunTimeout,
	})

	s.setupRoutes()

	return s, nil
}

// loadHistory seeds empty games and imports the history directory and
// any installed history pack, then starts watching the history directory
func (s *Server) loadHistory() {
	ctx := context.Background()

	if s.cfg.HistoryDir != "" {
		if err := os.MkdirAll(s.cfg.HistoryDir, 0o755); err != nil {
			log.Printf("Warning: could not create history directory: %v", err)
		} else if imported, err := s.importer.ImportDir(ctx, s.cfg.HistoryDir); err != nil {
			log.Printf("Warning: could not import history directory: %v", err)
		} else {
			recordImports(imported)
		}
	}

	if settings, err := s.loadSettings(); err == nil && settings.HistoryPackPath != "" {
		if imported, err := s.importer.ImportDir(ctx, history.PackHistoryDir(settings.HistoryPackPath)); err != nil {
			log.Printf("Warning: saved history pack could not be imported: %v", err)
		} else {
			recordImports(imported)
		}
	}

	seeded, err := s.importer.SeedSamples(ctx)
	if err != nil {
		log.Printf("Warning: could not seed sample history: %v", err)
	}
	recordImports(seeded)

	if s.cfg.HistoryDir == "" {
		return
	}
	watcher, err := history.NewWatcher(s.importer, s.cfg.HistoryDir, 0, func(rec history.ImportRecord) {
		metrics.RecordImport(string(rec.Game), rec.RecordCount)
	})
	if err != nil {
		log.Printf("Warning: history watcher not available: %v", err)
		return
	}
	s.watcher = watcher
	s.watcher.Start()
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	s.router.Use(metrics.Middleware)

	s.router.Handle("/metrics", metrics.Handler()).Methods("GET")

	// History pack management routes
	s.router.HandleFunc("/api/history/pack", s.handleHistoryPackStatus).Methods("GET")
	s.router.HandleFunc("/api/history/import", s.handleHistoryImport).Methods("POST")

	// API routes
	apiRouter := s.router.PathPrefix("/api").Subrouter()
	apiHandler := api.NewHandler(s.historyStore, s.reportStore, s.analysis, s.predictor, s.cfg)
	apiHandler.RegisterRoutes(apiRouter)

	// Static frontend files (embedded)
	staticContent, err := fs.Sub(staticFS, "static")
	if err != nil {
		log.Printf("Warning: Could not load embedded static files: %v", err)
		return
	}

	// SPA fallback: serve index.html for any non-API route
	fileServer := http.FileServer(http.FS(staticContent))
	s.router.PathPrefix("/").Handler(spaHandler{staticContent: staticContent, fileServer: fileServer})
}

// Handler returns the root HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start begins listening for HTTP connections
func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.cfg.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	log.Printf("Server listening on http://localhost:%d", s.cfg.Port)
	return s.httpServer.ListenAndServe()
}

// Stop gracefully shuts down the server
func (s *Server) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var err error
	if s.httpServer != nil {
		err = s.httpServer.Shutdown(ctx)
	}

	// Close components in reverse order of creation
	s.analysis.Close()
	if s.watcher != nil {
		if werr := s.watcher.Close(); werr != nil {
			log.Printf("Error closing history watcher: %v", werr)
		}
	}
	s.historyStore.Close()

	return err
}

func recordImports(imported []history.ImportRecord) {
	for _, rec := range imported {
		metrics.RecordImport(string(rec.Game), rec.RecordCount)
	}
}

// spaHandler serves the SPA, falling back to index.html for client-side routing
type spaHandler struct {
	staticContent fs.FS
	fileServer    http.Handler
}

func (h spaHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path
	if path == "/" {
		path = "index.html"
	}

	// fs.FS paths must not have a leading slash
	cleanPath := strings.TrimPrefix(path, "/")

	if _, err := fs.Stat(h.staticContent, cleanPath); err != nil {
		// File not found, serve index.html for SPA routing
		r.URL.Path = "/"
	}

	h.fileServer.ServeHTTP(w, r)
}
