// Package ingest runs the full ingestion batch: workbook in, validated
// cross-referenced dataset out. The only error it can return is a failure
// to open the workbook container; every other finding accumulates as a
// diagnostic on the dataset.
package ingest

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/healthai/sitegen/internal/extract"
	"github.com/healthai/sitegen/internal/images"
	"github.com/healthai/sitegen/internal/models"
	"github.com/healthai/sitegen/internal/validate"
	"github.com/healthai/sitegen/internal/xlsx"
	"github.com/healthai/sitegen/pkg/slug"
)

// Pipeline ingests workbooks against one project root. The root anchors
// relative image existence checks.
type Pipeline struct {
	root   string
	logger *zap.Logger
}

// New returns a pipeline. logger may be nil for silent operation.
func New(projectRoot string, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{root: projectRoot, logger: logger}
}

// Run ingests the workbook at path.
func (p *Pipeline) Run(workbookPath string) (*models.Dataset, error) {
	wb, err := xlsx.OpenWorkbook(workbookPath)
	if err != nil {
		return nil, fmt.Errorf("ingest: %w", err)
	}
	defer wb.Close()
	return p.run(wb), nil
}

// RunBytes ingests an in-memory workbook.
func (p *Pipeline) RunBytes(data []byte) (*models.Dataset, error) {
	wb, err := xlsx.OpenWorkbookBytes(data)
	if err != nil {
		return nil, fmt.Errorf("ingest: %w", err)
	}
	defer wb.Close()
	return p.run(wb), nil
}

func (p *Pipeline) run(wb *xlsx.Workbook) *models.Dataset {
	ds := &models.Dataset{}
	locator := images.NewLocator(wb)

	extracted := make(map[models.Kind][]*models.Entity)
	for _, spec := range extract.Specs() {
		res := extract.Sheet(wb, spec)
		ds.Diagnostics = append(ds.Diagnostics, res.Diagnostics...)

		loc := locator.Locate(spec.Sheet, spec.Kind, res.Records, res.ImageColumn)
		ds.Diagnostics = append(ds.Diagnostics, loc.Diagnostics...)
		ds.Artifacts = append(ds.Artifacts, loc.Artifacts...)

		extracted[spec.Kind] = res.Records
		p.logger.Debug("sheet extracted",
			zap.String("sheet", spec.Sheet),
			zap.Int("records", len(res.Records)),
			zap.Int("artifacts", len(loc.Artifacts)))
	}

	for _, kind := range models.Kinds() {
		kept, diags := validate.Collection(kind, extracted[kind])
		ds.Diagnostics = append(ds.Diagnostics, diags...)
		setCollection(ds, kind, kept)
	}

	assignMeta(ds)
	buildIndexes(ds)

	ds.Diagnostics = append(ds.Diagnostics, validate.References(ds)...)
	ds.Diagnostics = append(ds.Diagnostics, validate.Pillar(ds.Projects)...)
	ds.Diagnostics = append(ds.Diagnostics, validate.Images(ds, p.root, validate.GeneratedSet(ds.Artifacts))...)

	p.logger.Info("ingestion complete",
		zap.Int("researchers", len(ds.Researchers)),
		zap.Int("projects", len(ds.Projects)),
		zap.Int("publications", len(ds.Publications)),
		zap.Int("artifacts", len(ds.Artifacts)),
		zap.Int("diagnostics", len(ds.Diagnostics)),
		zap.Strings("diagnostic_types", validate.SummarizeTypes(ds.Diagnostics)))
	return ds
}

func setCollection(ds *models.Dataset, kind models.Kind, records []*models.Entity) {
	switch kind {
	case models.KindResearchers:
		ds.Researchers = records
	case models.KindProjects:
		ds.Projects = records
	case models.KindPublications:
		ds.Publications = records
	}
}

// assignMeta computes each surviving record's slug and path. Both are
// immutable from here on; reference resolution and rendering rely on them.
func assignMeta(ds *models.Dataset) {
	for _, kind := range models.Kinds() {
		for _, rec := range ds.Collection(kind) {
			s := slug.From(rec.DisplayName())
			if s == "" {
				s = "item"
			}
			rec.Slug = s
			rec.Path = fmt.Sprintf("%s/%s-%s.html", kind, rec.ID, s)
		}
	}
}

// buildIndexes fills the id indexes. Collections are already deduplicated,
// so each id maps to its single surviving record.
func buildIndexes(ds *models.Dataset) {
	ds.ResearcherIndex = indexByID(ds.Researchers)
	ds.ProjectIndex = indexByID(ds.Projects)
	ds.PublicationIndex = indexByID(ds.Publications)
}

func indexByID(records []*models.Entity) map[string]*models.Entity {
	out := make(map[string]*models.Entity, len(records))
	for _, rec := range records {
		if _, ok := out[rec.ID]; ok {
			continue
		}
		out[rec.ID] = rec
	}
	return out
}
