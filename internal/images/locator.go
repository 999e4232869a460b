// Package images recovers the workbook's cell-anchored images through the
// two producer mechanisms: drawing anchors and rich-value cell metadata.
// The mechanisms share no structure or code path; Locate composes them
// under one idempotency rule — a record whose image field is already
// non-empty is done.
package images

import (
	"fmt"
	"path"
	"strings"

	"github.com/healthai/sitegen/internal/models"
	"github.com/healthai/sitegen/internal/xlsx"
	"github.com/healthai/sitegen/pkg/slug"
)

// imageDir is the root of generated image paths inside the output tree.
const imageDir = "assets/images"

// Result is one sheet's recovered artifacts and diagnostics, in encounter
// order.
type Result struct {
	Artifacts   []models.Artifact
	Diagnostics []models.Diagnostic
}

// Locator runs both recovery paths against one workbook. Emitted artifact
// paths are tracked across calls, so one media file referenced by several
// rows is written out once.
type Locator struct {
	wb      *xlsx.Workbook
	emitted map[string]struct{}
}

// NewLocator returns a locator for the workbook.
func NewLocator(wb *xlsx.Workbook) *Locator {
	return &Locator{wb: wb, emitted: map[string]struct{}{}}
}

// Locate recovers images for one sheet and assigns generated paths onto the
// owning records. records are the sheet's extracted rows; imageColumn is
// the extractor's sideband, -1 when unknown (anchors in any column are
// then accepted). Every failure mode is a diagnostic, never an error.
func (l *Locator) Locate(sheetName string, kind models.Kind, records []*models.Entity, imageColumn int) Result {
	var res Result
	sheet, ok := l.wb.Sheet(sheetName)
	if !ok {
		res.Diagnostics = append(res.Diagnostics, models.Diagnostic{
			Type:    models.DiagMissingSheet,
			Sheet:   sheetName,
			Message: fmt.Sprintf("Sheet '%s' not found when locating images", sheetName),
		})
		return res
	}

	byRow := make(map[int]*models.Entity, len(records))
	for _, rec := range records {
		byRow[rec.Row] = rec
	}

	l.fromAnchors(sheet, kind, byRow, imageColumn, &res)
	l.fromRichValues(sheet, kind, byRow, imageColumn, &res)
	return res
}

// fromAnchors walks the sheet's drawing part. Absence of the drawing
// relationship, the drawing part, or its relationship table means no
// anchored images, not an error.
func (l *Locator) fromAnchors(sheet *xlsx.Sheet, kind models.Kind, byRow map[int]*models.Entity, imageColumn int, res *Result) {
	if sheet.DrawingRelID == "" {
		return
	}
	c := l.wb.Container()
	rel, ok := xlsx.RelsFor(c, sheet.Part)[sheet.DrawingRelID]
	if !ok || rel.External() {
		return
	}
	drawingPart := xlsx.ResolveTarget(sheet.Part, rel.Target)
	drawingRels := xlsx.RelsFor(c, drawingPart)

	for _, anchor := range c.DrawingAnchors(drawingPart) {
		if imageColumn >= 0 && anchor.Col != imageColumn {
			continue
		}
		// Anchors are zero-indexed; records carry 1-based worksheet rows.
		row := anchor.Row + 1
		rec, ok := byRow[row]
		if !ok {
			res.Diagnostics = append(res.Diagnostics, models.Diagnostic{
				Type:    models.DiagImageWithoutRow,
				Sheet:   kind.Label(),
				Row:     row,
				Message: fmt.Sprintf("Image anchored at row %d of %s has no matching data row", row, kind.Label()),
			})
			continue
		}
		if rec.Image != "" {
			continue
		}
		mediaRel, ok := drawingRels[anchor.EmbedID]
		if !ok || mediaRel.External() {
			res.Diagnostics = append(res.Diagnostics, models.Diagnostic{
				Type:    models.DiagMissingEmbeddedMedia,
				Sheet:   kind.Label(),
				ID:      rec.ID,
				Row:     row,
				Message: fmt.Sprintf("Anchored image for %s row %d has no media relationship", kind.Label(), row),
			})
			continue
		}
		l.attach(rec, kind, row, xlsx.ResolveTarget(drawingPart, mediaRel.Target), res)
	}
}

// fromRichValues walks cells that declare a value-metadata index and chains
// the workbook's rich-value tables to a media part. The declared index is
// 1-based and converted with -1; out-of-bounds indices (including a
// declared 0) are diagnosed, never clamped.
func (l *Locator) fromRichValues(sheet *xlsx.Sheet, kind models.Kind, byRow map[int]*models.Entity, imageColumn int, res *Result) {
	table := l.wb.RichValues()
	for _, row := range sheet.Rows {
		for _, cell := range row.Cells {
			if cell.ValueMeta < 0 {
				continue
			}
			if imageColumn >= 0 && cell.Col != imageColumn {
				continue
			}
			rec, ok := byRow[cell.Row]
			if !ok {
				res.Diagnostics = append(res.Diagnostics, models.Diagnostic{
					Type:    models.DiagImageWithoutRow,
					Sheet:   kind.Label(),
					Row:     cell.Row,
					Message: fmt.Sprintf("Rich-value image at cell %s of %s has no matching data row", cell.Ref, kind.Label()),
				})
				continue
			}
			if rec.Image != "" {
				continue
			}
			slot := cell.ValueMeta - 1
			if slot < 0 || slot >= table.SlotCount() {
				res.Diagnostics = append(res.Diagnostics, models.Diagnostic{
					Type:    models.DiagRichValueOutOfBounds,
					Sheet:   kind.Label(),
					ID:      rec.ID,
					Row:     cell.Row,
					Message: fmt.Sprintf("Cell %s declares value metadata index %d outside the table of %d entries", cell.Ref, cell.ValueMeta, table.SlotCount()),
				})
				continue
			}
			mediaPart, ok := table.Resolve(slot)
			if !ok {
				res.Diagnostics = append(res.Diagnostics, models.Diagnostic{
					Type:    models.DiagRichValueLookupFailed,
					Sheet:   kind.Label(),
					ID:      rec.ID,
					Row:     cell.Row,
					Message: fmt.Sprintf("Rich value behind cell %s resolves to no media part", cell.Ref),
				})
				continue
			}
			l.attach(rec, kind, cell.Row, mediaPart, res)
		}
	}
}

// attach reads the media bytes, assigns the generated path onto the record,
// and queues the artifact. Paths already emitted this run are not queued
// again.
func (l *Locator) attach(rec *models.Entity, kind models.Kind, row int, mediaPart string, res *Result) {
	data, ok := l.wb.Container().ReadPart(mediaPart)
	if !ok {
		res.Diagnostics = append(res.Diagnostics, models.Diagnostic{
			Type:    models.DiagMissingEmbeddedMedia,
			Sheet:   kind.Label(),
			ID:      rec.ID,
			Row:     row,
			Image:   mediaPart,
			Message: fmt.Sprintf("Embedded media %s is missing from the workbook (%s row %d)", mediaPart, kind.Label(), row),
		})
		return
	}
	target := artifactPath(kind, rec, row, mediaPart)
	rec.Image = target
	if _, dup := l.emitted[target]; dup {
		return
	}
	l.emitted[target] = struct{}{}
	res.Artifacts = append(res.Artifacts, models.Artifact{Path: target, Data: data})
}

// artifactPath synthesizes the deterministic output path for a recovered
// image: the slugified record id, or the row number when the id yields
// nothing, with the media file's extension (default png).
func artifactPath(kind models.Kind, rec *models.Entity, row int, mediaPart string) string {
	base := slug.From(rec.ID)
	if base == "" {
		base = fmt.Sprintf("row-%d", row)
	}
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(mediaPart), "."))
	if ext == "" {
		ext = "png"
	}
	return path.Join(imageDir, string(kind), base+"."+ext)
}
