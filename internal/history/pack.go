package history

import (
	"archive/zip"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// PackManifest describes the contents of a history pack zip
type PackManifest struct {
	Format      string `json:"format"`
	Version     string `json:"version"`
	Description string `json:"description"`
	Created     string `json:"created"`
}

// ReadManifest reads manifest.json from an extracted pack, if present
func ReadManifest(packDir string) (*PackManifest, error) {
	data, err := os.ReadFile(filepath.Join(packDir, "manifest.json"))
	if err != nil {
		return nil, err
	}
	var m PackManifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}
	return &m, nil
}

// ExtractPack unzips a history pack archive into targetDir.
// Returns the path to the extracted pack root directory.
func ExtractPack(zipPath, targetDir string) (string, error) {
	r, err := zip.OpenReader(zipPath)
	if err != nil {
		return "", fmt.Errorf("could not open zip: %w", err)
	}
	defer r.Close()

	if len(r.File) == 0 {
		return "", fmt.Errorf("empty zip archive")
	}

	// Packs either have a single root directory or keep files at the top level
	rootDir := ""
	if parts := strings.SplitN(r.File[0].Name, "/", 2); len(parts) == 2 {
		rootDir = parts[0]
		for _, f := range r.File {
			if !strings.HasPrefix(f.Name, rootDir+"/") {
				rootDir = ""
				break
			}
		}
	}

	extractRoot := targetDir
	if rootDir == "" {
		extractRoot = filepath.Join(targetDir, strings.TrimSuffix(filepath.Base(zipPath), filepath.Ext(zipPath)))
	}
	packDir := filepath.Join(extractRoot, rootDir)

	// Sanitize every path before touching the disk to prevent zip slip
	cleanRoot := filepath.Clean(extractRoot) + string(os.PathSeparator)
	for _, f := range r.File {
		if !strings.HasPrefix(filepath.Join(extractRoot, f.Name), cleanRoot) {
			return "", fmt.Errorf("illegal file path in zip: %s", f.Name)
		}
	}

	// Remove existing extraction if present
	os.RemoveAll(packDir)

	for _, f := range r.File {
		destPath := filepath.Join(extractRoot, f.Name)
		if f.FileInfo().IsDir() {
			os.MkdirAll(destPath, 0o755)
			continue
		}

		if err := extractFile(f, destPath); err != nil {
			return "", err
		}
	}

	return packDir, nil
}

func extractFile(f *zip.File, destPath string) error {
	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return fmt.Errorf("could not create directory: %w", err)
	}

	outFile, err := os.OpenFile(destPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("could not create file: %w", err)
	}
	defer outFile.Close()

	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("could not open zip entry: %w", err)
	}
	defer rc.Close()

	if _, err := io.Copy(outFile, rc); err != nil {
		return fmt.Errorf("could not extract file: %w", err)
	}
	return nil
}

// PackHistoryDir returns the directory holding the JSON histories of an
// extracted pack: "<pack>/history" when present, otherwise the pack root
func PackHistoryDir(packDir string) string {
	dir := filepath.Join(packDir, "history")
	if info, err := os.Stat(dir); err == nil && info.IsDir() {
		return dir
	}
	return packDir
}
