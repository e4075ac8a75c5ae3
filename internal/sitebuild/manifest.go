package sitebuild

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const manifestFile = "manifest.json"

// Manifest records what a build produced.
type Manifest struct {
	BuildID     string         `json:"build_id"`
	GeneratedAt time.Time      `json:"generated_at"`
	DryRun      bool           `json:"dry_run,omitempty"`
	Pages       []ManifestPage `json:"pages"`
}

// ManifestPage is one generated page.
type ManifestPage struct {
	Path   string `json:"path"`
	Kind   string `json:"kind"`
	Digest string `json:"digest"`
	Bytes  int    `json:"bytes"`
	Status string `json:"status"`
}

// Counts returns how many pages were written and how many were left as they
// were.
func (m Manifest) Counts() (written, unchanged int) {
	for _, p := range m.Pages {
		switch p.Status {
		case StatusWritten:
			written++
		case StatusUnchanged:
			unchanged++
		}
	}
	return written, unchanged
}

// ReadManifest loads a manifest written by a previous build.
func ReadManifest(outputDir string) (Manifest, error) {
	data, err := os.ReadFile(filepath.Join(outputDir, manifestFile))
	if err != nil {
		return Manifest{}, err
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return Manifest{}, fmt.Errorf("sitebuild: decode manifest: %w", err)
	}
	return m, nil
}

func writeManifest(path string, m Manifest) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}
