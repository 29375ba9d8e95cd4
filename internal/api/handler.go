package api

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/kartoza/lottery-analyst/internal/analysis"
	"github.com/kartoza/lottery-analyst/internal/charts"
	"github.com/kartoza/lottery-analyst/internal/config"
	"github.com/kartoza/lottery-analyst/internal/history"
	"github.com/kartoza/lottery-analyst/internal/httputil"
	"github.com/kartoza/lottery-analyst/internal/lottery"
	"github.com/kartoza/lottery-analyst/internal/metrics"
	"github.com/kartoza/lottery-analyst/internal/models"
	"github.com/kartoza/lottery-analyst/internal/prediction"
	"github.com/kartoza/lottery-analyst/internal/reports"
	"github.com/kartoza/lottery-analyst/internal/stats"
	log "github.com/sirupsen/logrus"
)

// ModelInfo describes the configured prediction service
type ModelInfo interface {
	IsAvailable() bool
	GetModelInfo() map[string]interface{}
}

// Handler provides HTTP API endpoints
type Handler struct {
	history  *history.Store
	reports  *reports.Store
	analysis *analysis.Service
	model    ModelInfo
	cfg      config.Config
}

// NewHandler creates a new API handler. Any component may be nil.
func NewHandler(
	historyStore *history.Store,
	reportStore *reports.Store,
	analysisService *analysis.Service,
	model ModelInfo,
	cfg config.Config,
) *Handler {
	return &Handler{
		history:  historyStore,
		reports:  reportStore,
		analysis: analysisService,
		model:    model,
		cfg:      cfg,
	}
}

// RegisterRoutes sets up all API routes
func (h *Handler) RegisterRoutes(r *mux.Router) {
	// Health and info
	r.HandleFunc("/health", h.handleHealth).Methods("GET")
	r.HandleFunc("/info", h.handleInfo).Methods("GET")

	// Games and their history
	r.HandleFunc("/games", h.handleListGames).Methods("GET")
	r.HandleFunc("/games/{game}/history", h.handleHistory).Methods("GET")
	r.HandleFunc("/games/{game}/statistics", h.handleStatistics).Methods("GET")
	r.HandleFunc("/games/{game}/charts/{chart}", h.handleChart).Methods("GET")
	r.HandleFunc("/history/imports", h.handleListImports).Methods("GET")

	// Analysis runs
	r.HandleFunc("/games/{game}/analysis", h.handleStartAnalysis).Methods("POST")
	r.HandleFunc("/games/{game}/analysis", h.handleAnalysisStatus).Methods("GET")

	// Saved reports
	r.HandleFunc("/reports", h.handleListReports).Methods("GET")
	r.HandleFunc("/reports/{id}", h.handleGetReport).Methods("GET")
	r.HandleFunc("/reports/{id}", h.handleUpdateReport).Methods("PUT")
	r.HandleFunc("/reports/{id}", h.handleDeleteReport).Methods("DELETE")
}

// handleHealth returns server health status
func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleInfo returns server information
func (h *Handler) handleInfo(w http.ResponseWriter, r *http.Request) {
	info := map[string]interface{}{
		"version":        h.cfg.Version,
		"history_loaded": h.history != nil,
		"reports_loaded": h.reports != nil,
		"default_game":   h.cfg.DefaultGame,
		"sample_size":    h.cfg.SampleSize,
	}
	if h.model != nil {
		info["prediction"] = h.model.GetModelInfo()
	}
	httputil.RespondJSON(w, http.StatusOK, info)
}

// handleListGames returns the supported games and their stored draw counts
func (h *Handler) handleListGames(w http.ResponseWriter, r *http.Request) {
	games := lottery.Games()
	out := make([]models.GameSummary, 0, len(games))
	for _, g := range games {
		summary := models.GameSummary{Game: g}
		if h.history != nil {
			n, err := h.history.Count(r.Context(), g.Type)
			if err != nil {
				httputil.RespondError(w, http.StatusInternalServerError, err.Error())
				return
			}
			summary.Draws = n
		}
		out = append(out, summary)
	}
	httputil.RespondJSON(w, http.StatusOK, out)
}

// handleHistory returns stored draws, newest first
func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	game, ok := h.gameFromRequest(w, r)
	if !ok {
		return
	}
	limit, ok := intQuery(w, r, "limit")
	if !ok {
		return
	}

	records, err := h.history.List(r.Context(), game.Type, limit)
	if err != nil {
		httputil.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	total, err := h.history.Count(r.Context(), game.Type)
	if err != nil {
		httputil.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	httputil.RespondJSON(w, http.StatusOK, models.HistoryResponse{
		Game:  game.Type,
		Total: total,
		Draws: records,
	})
}

// handleStatistics computes frequency statistics over the full history.
// The top query parameter truncates the frequency tables for display.
func (h *Handler) handleStatistics(w http.ResponseWriter, r *http.Request) {
	game, ok := h.gameFromRequest(w, r)
	if !ok {
		return
	}
	top, ok := intQuery(w, r, "top")
	if !ok {
		return
	}

	records, st, ok := h.computeStatistics(w, r, game)
	if !ok {
		return
	}
	if top > 0 {
		st.PrimaryFrequency = st.TopPrimary(top)
		st.SecondaryFrequency = st.TopSecondary(top)
	}

	httputil.RespondJSON(w, http.StatusOK, models.StatisticsResponse{
		Game:       game.Type,
		Draws:      len(records),
		Statistics: st,
	})
}

// handleChart renders a statistics chart as HTML
func (h *Handler) handleChart(w http.ResponseWriter, r *http.Request) {
	game, ok := h.gameFromRequest(w, r)
	if !ok {
		return
	}
	kind, err := charts.ParseKind(mux.Vars(r)["chart"])
	if err != nil {
		httputil.RespondError(w, http.StatusNotFound, err.Error())
		return
	}

	_, st, ok := h.computeStatistics(w, r, game)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := charts.Render(&buf, kind, game, st, charts.DefaultChartConfig()); err != nil {
		if errors.Is(err, charts.ErrNoSecondary) {
			httputil.RespondError(w, http.StatusNotFound, err.Error())
			return
		}
		httputil.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		log.Printf("Error writing chart: %v", err)
	}
}

// handleListImports returns the most recent history imports
func (h *Handler) handleListImports(w http.ResponseWriter, r *http.Request) {
	if h.history == nil {
		httputil.RespondJSON(w, http.StatusOK, []history.ImportRecord{})
		return
	}
	limit, ok := intQuery(w, r, "limit")
	if !ok {
		return
	}
	imports, err := h.history.Imports(r.Context(), limit)
	if err != nil {
		httputil.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	httputil.RespondJSON(w, http.StatusOK, imports)
}

// handleStartAnalysis starts a prediction run. An empty body uses the
// default parameters; fields left out keep their defaults.
func (h *Handler) handleStartAnalysis(w http.ResponseWriter, r *http.Request) {
	game, ok := h.gameFromRequest(w, r)
	if !ok {
		return
	}
	if h.analysis == nil {
		httputil.RespondError(w, http.StatusServiceUnavailable, "analysis is not available")
		return
	}

	params := prediction.DefaultModelParameters()
	if err := httputil.DecodeJSON(r, &params); err != nil && !errors.Is(err, io.EOF) {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	run, err := h.analysis.Start(r.Context(), game.Type, params)
	switch {
	case err == nil:
		httputil.RespondJSON(w, http.StatusAccepted, run)
	case errors.Is(err, analysis.ErrRunInProgress):
		httputil.RespondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, prediction.ErrInvalidParameters):
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, analysis.ErrNoHistory):
		httputil.RespondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, analysis.ErrClosed):
		httputil.RespondError(w, http.StatusServiceUnavailable, err.Error())
	default:
		httputil.RespondError(w, http.StatusInternalServerError, err.Error())
	}
}

// handleAnalysisStatus returns the latest run of a game
func (h *Handler) handleAnalysisStatus(w http.ResponseWriter, r *http.Request) {
	game, ok := h.gameFromRequest(w, r)
	if !ok {
		return
	}
	if h.analysis == nil {
		httputil.RespondError(w, http.StatusServiceUnavailable, "analysis is not available")
		return
	}
	httputil.RespondJSON(w, http.StatusOK, h.analysis.Status(game.Type))
}

// handleListReports returns saved reports, optionally filtered by game
func (h *Handler) handleListReports(w http.ResponseWriter, r *http.Request) {
	if h.reports == nil {
		httputil.RespondJSON(w, http.StatusOK, []reports.Summary{})
		return
	}

	var game lottery.GameType
	if q := r.URL.Query().Get("game"); q != "" {
		parsed, err := lottery.ParseGameType(q)
		if err != nil {
			httputil.RespondError(w, http.StatusBadRequest, err.Error())
			return
		}
		game = parsed
	}

	list, err := h.reports.List(game)
	if err != nil {
		httputil.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	httputil.RespondJSON(w, http.StatusOK, list)
}

// handleGetReport returns one saved report
func (h *Handler) handleGetReport(w http.ResponseWriter, r *http.Request) {
	if !h.reportsAvailable(w) {
		return
	}
	report, err := h.reports.Get(mux.Vars(r)["id"])
	if err != nil {
		respondReportError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, report)
}

// handleUpdateReport changes the title and notes of a report
func (h *Handler) handleUpdateReport(w http.ResponseWriter, r *http.Request) {
	if !h.reportsAvailable(w) {
		return
	}
	var req models.ReportUpdateRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	report, err := h.reports.Update(mux.Vars(r)["id"], &reports.Report{Title: req.Title, Notes: req.Notes})
	if err != nil {
		respondReportError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, report)
}

// handleDeleteReport removes a saved report
func (h *Handler) handleDeleteReport(w http.ResponseWriter, r *http.Request) {
	if !h.reportsAvailable(w) {
		return
	}
	if err := h.reports.Delete(mux.Vars(r)["id"]); err != nil {
		respondReportError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *Handler) reportsAvailable(w http.ResponseWriter) bool {
	if h.reports == nil {
		httputil.RespondError(w, http.StatusServiceUnavailable, "report store not available")
		return false
	}
	return true
}

func respondReportError(w http.ResponseWriter, err error) {
	if errors.Is(err, reports.ErrNotFound) {
		httputil.RespondError(w, http.StatusNotFound, err.Error())
		return
	}
	httputil.RespondError(w, http.StatusInternalServerError, err.Error())
}

// gameFromRequest resolves the {game} route variable and checks that
// history is available
func (h *Handler) gameFromRequest(w http.ResponseWriter, r *http.Request) (lottery.Game, bool) {
	t, err := lottery.ParseGameType(mux.Vars(r)["game"])
	if err != nil {
		httputil.RespondError(w, http.StatusNotFound, err.Error())
		return lottery.Game{}, false
	}
	game, _ := lottery.Lookup(t)
	if h.history == nil {
		httputil.RespondError(w, http.StatusServiceUnavailable, "history store not available")
		return lottery.Game{}, false
	}
	return game, true
}

func (h *Handler) computeStatistics(w http.ResponseWriter, r *http.Request, game lottery.Game) ([]lottery.DrawRecord, stats.Statistics, bool) {
	records, err := h.history.List(r.Context(), game.Type, 0)
	if err != nil {
		httputil.RespondError(w, http.StatusInternalServerError, err.Error())
		return nil, stats.Statistics{}, false
	}
	metrics.RecordStatistics(string(game.Type))
	return records, stats.ComputeStatistics(records), true
}

// intQuery reads an optional non-negative integer query parameter
func intQuery(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		httputil.RespondError(w, http.StatusBadRequest, name+" must be a non-negative integer")
		return 0, false
	}
	return n, true
}
