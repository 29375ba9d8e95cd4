package server

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/kartoza/lottery-analyst/internal/config"
	"github.com/kartoza/lottery-analyst/internal/history"
	"github.com/kartoza/lottery-analyst/internal/httputil"
	"github.com/kartoza/lottery-analyst/internal/models"
	log "github.com/sirupsen/logrus"
)

// loadSettings reads the settings file of the configured data directory
func (s *Server) loadSettings() (*config.Settings, error) {
	if s.cfg.SettingsPath == "" {
		return config.LoadSettings()
	}
	return config.LoadSettingsFrom(s.cfg.SettingsPath)
}

func (s *Server) saveSettings(settings *config.Settings) error {
	if s.cfg.SettingsPath == "" {
		return config.SaveSettings(settings)
	}
	return config.SaveSettingsTo(s.cfg.SettingsPath, settings)
}

// handleHistoryPackStatus returns the installed history pack, if any
func (s *Server) handleHistoryPackStatus(w http.ResponseWriter, r *http.Request) {
	settings, err := s.loadSettings()
	if err != nil {
		httputil.RespondJSON(w, http.StatusOK, map[string]interface{}{
			"installed": false,
			"error":     err.Error(),
		})
		return
	}

	if settings.HistoryPackPath == "" {
		httputil.RespondJSON(w, http.StatusOK, map[string]interface{}{
			"installed": false,
		})
		return
	}

	// Check if path still exists
	if _, err := os.Stat(settings.HistoryPackPath); err != nil {
		httputil.RespondJSON(w, http.StatusOK, map[string]interface{}{
			"installed": false,
			"error":     "history pack path no longer exists",
		})
		return
	}

	var manifest history.PackManifest
	if m, err := history.ReadManifest(settings.HistoryPackPath); err == nil {
		manifest = *m
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"installed":   true,
		"path":        settings.HistoryPackPath,
		"version":     manifest.Version,
		"description": manifest.Description,
	})
}

// handleHistoryImport imports a single JSON history file, or extracts a
// history pack zip, imports its histories and registers it in settings
func (s *Server) handleHistoryImport(w http.ResponseWriter, r *http.Request) {
	var req models.ImportRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Path == "" {
		httputil.RespondError(w, http.StatusBadRequest, "path is required")
		return
	}
	if _, err := os.Stat(req.Path); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, fmt.Sprintf("file not found: %s", req.Path))
		return
	}

	switch strings.ToLower(filepath.Ext(req.Path)) {
	case ".json":
		rec, err := s.importer.ImportFile(r.Context(), req.Path)
		if err != nil {
			httputil.RespondError(w, http.StatusBadRequest, fmt.Sprintf("import failed: %v", err))
			return
		}
		recordImports([]history.ImportRecord{*rec})
		httputil.RespondJSON(w, http.StatusOK, models.ImportResponse{
			Imported: []history.ImportRecord{*rec},
			Message:  fmt.Sprintf("Imported %d draws", rec.RecordCount),
		})
	case ".zip":
		s.installHistoryPack(w, r, req.Path)
	default:
		httputil.RespondError(w, http.StatusBadRequest, "file must be a .json history or a .zip history pack")
	}
}

func (s *Server) installHistoryPack(w http.ResponseWriter, r *http.Request, zipPath string) {
	extractDir := filepath.Join(s.cfg.DataDir, "packs")
	if err := os.MkdirAll(extractDir, 0o755); err != nil {
		httputil.RespondError(w, http.StatusInternalServerError, fmt.Sprintf("could not create directory: %v", err))
		return
	}

	packDir, err := history.ExtractPack(zipPath, extractDir)
	if err != nil {
		httputil.RespondError(w, http.StatusInternalServerError, fmt.Sprintf("extraction failed: %v", err))
		return
	}

	imported, err := s.importer.ImportDir(r.Context(), history.PackHistoryDir(packDir))
	if err != nil {
		httputil.RespondError(w, http.StatusInternalServerError, fmt.Sprintf("import failed: %v", err))
		return
	}
	if len(imported) == 0 {
		httputil.RespondError(w, http.StatusBadRequest, "invalid history pack: no importable history files")
		return
	}
	recordImports(imported)

	settings, err := s.loadSettings()
	if err != nil {
		settings = config.DefaultSettings()
	}
	settings.HistoryPackPath = packDir
	if err := s.saveSettings(settings); err != nil {
		httputil.RespondError(w, http.StatusInternalServerError, fmt.Sprintf("could not save settings: %v", err))
		return
	}

	log.Printf("History pack installed: %s", packDir)
	httputil.RespondJSON(w, http.StatusOK, models.ImportResponse{
		Imported: imported,
		PackPath: packDir,
		Message:  fmt.Sprintf("History pack installed, %d games imported", len(imported)),
	})
}
