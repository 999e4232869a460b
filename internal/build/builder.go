// Package build orchestrates one full site build: ingest the workbook,
// emit the JSON data artifacts, assemble the output tree, and render the
// pages. Diagnostics never fail a build; only I/O and the workbook open
// error do.
package build

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/healthai/sitegen/internal/config"
	"github.com/healthai/sitegen/internal/ingest"
	"github.com/healthai/sitegen/internal/models"
	"github.com/healthai/sitegen/internal/render"
)

// Report summarizes one completed build.
type Report struct {
	BuildID      string    `json:"buildId"`
	Workbook     string    `json:"workbook"`
	OutputDir    string    `json:"outputDir"`
	Researchers  int       `json:"researchers"`
	Projects     int       `json:"projects"`
	Publications int       `json:"publications"`
	Diagnostics  int       `json:"diagnostics"`
	Artifacts    int       `json:"artifacts"`
	DurationMS   int64     `json:"durationMs"`
	CompletedAt  time.Time `json:"completedAt"`
}

// Builder runs builds for one configuration.
type Builder struct {
	cfg    *config.Config
	logger *zap.Logger
}

// New returns a builder. logger may be nil.
func New(cfg *config.Config, logger *zap.Logger) *Builder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Builder{cfg: cfg, logger: logger}
}

// Run executes one build and returns its report together with the dataset
// it produced.
func (b *Builder) Run() (*Report, *models.Dataset, error) {
	start := time.Now()

	ds, err := ingest.New(b.cfg.Root, b.logger).Run(b.cfg.Workbook)
	if err != nil {
		return nil, nil, err
	}
	for _, d := range ds.Diagnostics {
		b.logger.Warn("diagnostic",
			zap.String("type", d.Type),
			zap.String("sheet", d.Sheet),
			zap.String("id", d.ID),
			zap.String("message", d.Message))
	}

	if err := b.writeData(ds); err != nil {
		return nil, nil, err
	}
	if err := b.assembleOutput(ds); err != nil {
		return nil, nil, err
	}

	report := &Report{
		BuildID:      uuid.NewString(),
		Workbook:     b.cfg.Workbook,
		OutputDir:    b.cfg.Site.OutputDir,
		Researchers:  len(ds.Researchers),
		Projects:     len(ds.Projects),
		Publications: len(ds.Publications),
		Diagnostics:  len(ds.Diagnostics),
		Artifacts:    len(ds.Artifacts),
		DurationMS:   time.Since(start).Milliseconds(),
		CompletedAt:  time.Now().UTC(),
	}
	b.logger.Info("build complete",
		zap.String("build_id", report.BuildID),
		zap.String("output", report.OutputDir),
		zap.Int("diagnostics", report.Diagnostics),
		zap.Int64("duration_ms", report.DurationMS))
	return report, ds, nil
}

// writeData writes the per-collection JSON files and the diagnostic report
// into the data directory.
func (b *Builder) writeData(ds *models.Dataset) error {
	dir := b.cfg.Site.DataDir
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}
	for _, kind := range models.Kinds() {
		if err := writeJSON(filepath.Join(dir, string(kind)+".json"), ds.Collection(kind)); err != nil {
			return err
		}
	}
	diags := ds.Diagnostics
	if diags == nil {
		diags = []models.Diagnostic{}
	}
	return writeJSON(filepath.Join(dir, "errors.json"), diags)
}

// assembleOutput rebuilds the output tree from scratch: static assets,
// recovered image artifacts, rendered pages, and a copy of the data files.
func (b *Builder) assembleOutput(ds *models.Dataset) error {
	out := b.cfg.Site.OutputDir
	if err := os.RemoveAll(out); err != nil {
		return fmt.Errorf("clean output directory: %w", err)
	}
	if err := os.MkdirAll(out, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	if info, err := os.Stat(b.cfg.Site.AssetsDir); err == nil && info.IsDir() {
		if err := copyTree(b.cfg.Site.AssetsDir, filepath.Join(out, "assets")); err != nil {
			return fmt.Errorf("copy assets: %w", err)
		}
	}

	// Artifacts land before rendering so every generated image path
	// already resolves when the pages go out.
	for _, a := range ds.Artifacts {
		dst := filepath.Join(out, filepath.FromSlash(a.Path))
		if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
			return fmt.Errorf("create artifact directory: %w", err)
		}
		if err := os.WriteFile(dst, a.Data, 0o644); err != nil {
			return fmt.Errorf("write artifact %s: %w", a.Path, err)
		}
	}

	renderer, err := render.New(b.cfg.Site.TemplatesDir, b.cfg.Site.Title, b.cfg.BaseURL)
	if err != nil {
		return err
	}
	if err := renderer.Site(ds, out); err != nil {
		return err
	}

	return copyTree(b.cfg.Site.DataDir, filepath.Join(out, "data"))
}

// writeJSON marshals v with two-space indentation, matching the data files
// the site has always shipped.
func writeJSON(path string, v interface{}) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return nil
}

func copyTree(src, dst string) error {
	return filepath.WalkDir(src, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		return copyFile(path, target)
	})
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()
	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}
