package extract

import (
	"fmt"

	"github.com/healthai/sitegen/internal/models"
	"github.com/healthai/sitegen/internal/xlsx"
)

// SheetResult carries one extracted sheet: its records in row order, any
// diagnostics, and the sideband the image locator needs — which column (if
// any) held the image field.
type SheetResult struct {
	Records []*models.Entity
	// ImageColumn is the zero-based image column, -1 when the header row
	// declares none. With duplicate image headers the rightmost wins,
	// consistent with later columns overwriting earlier values.
	ImageColumn int
	Diagnostics []models.Diagnostic
}

// Sheet extracts one sheet into entity records. A missing sheet fails soft:
// one missing_sheet diagnostic and an empty result, so ingestion of the
// other sheets continues.
func Sheet(wb *xlsx.Workbook, spec SheetSpec) *SheetResult {
	res := &SheetResult{ImageColumn: -1}
	sheet, ok := wb.Sheet(spec.Sheet)
	if !ok {
		res.Diagnostics = append(res.Diagnostics, models.Diagnostic{
			Type:    models.DiagMissingSheet,
			Sheet:   spec.Sheet,
			Message: fmt.Sprintf("Sheet '%s' not found in workbook", spec.Sheet),
		})
		return res
	}

	columns := map[int]string{}
	for _, row := range sheet.Rows {
		if row.Num != 1 {
			continue
		}
		for _, cell := range row.Cells {
			field, mapped := spec.Headers[NormalizeHeader(cell.Value)]
			if !mapped {
				// Unrecognized headers are ignored, never an error.
				continue
			}
			columns[cell.Col] = field
			if field == "image" {
				res.ImageColumn = cell.Col
			}
		}
		break
	}

	for _, row := range sheet.Rows {
		if row.Num == 1 {
			continue
		}
		if rowEmpty(row) {
			continue
		}
		rec := newRecord(spec.Kind, row.Num)
		for _, cell := range row.Cells {
			field, mapped := columns[cell.Col]
			if !mapped {
				continue
			}
			switch {
			case models.IsListField(field):
				rec.SetListField(field, ParseIDList(cell.Value))
			case field == "image":
				rec.SetField(field, NormalizeImage(cell.Value))
			default:
				rec.SetField(field, cell.Value)
			}
		}
		res.Records = append(res.Records, rec)
	}
	return res
}

// rowEmpty reports whether every cell of the row is empty, mapped or not.
// Such rows are skipped entirely: not counted, not diagnosed.
func rowEmpty(row xlsx.Row) bool {
	for _, cell := range row.Cells {
		if cell.Value != "" {
			return false
		}
	}
	return true
}

// newRecord starts a record with every declared list field present as an
// empty, non-nil slice, so downstream code never branches on absence.
func newRecord(kind models.Kind, row int) *models.Entity {
	e := &models.Entity{Kind: kind, Row: row}
	for _, f := range kind.Fields() {
		if models.IsListField(f) {
			e.SetListField(f, []string{})
		}
	}
	return e
}
