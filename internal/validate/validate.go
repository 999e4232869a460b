// Package validate enforces the dataset's integrity rules after
// extraction: identity, required fields, referential integrity, the
// pillar vocabulary, and on-disk image existence. Every finding is a
// diagnostic; no check aborts another.
package validate

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/healthai/sitegen/internal/extract"
	"github.com/healthai/sitegen/internal/models"
)

// Pillars is the closed vocabulary for the project pillar field, matched
// case-insensitively.
var Pillars = []string{"PREDICT", "PREVENT", "PERSONALIZE"}

// Collection runs identity and required-field checks over one extracted
// collection in row order. It returns the surviving records: those with an
// id, first record per id. Id-less records are diagnosed and dropped;
// duplicates are diagnosed, checked for required fields, and dropped.
func Collection(kind models.Kind, records []*models.Entity) ([]*models.Entity, []models.Diagnostic) {
	var diags []models.Diagnostic
	kept := make([]*models.Entity, 0, len(records))
	seen := make(map[string]struct{}, len(records))
	for _, rec := range records {
		if rec.ID == "" {
			diags = append(diags, models.Diagnostic{
				Type:    models.DiagMissingID,
				Sheet:   kind.Label(),
				Message: fmt.Sprintf("%s row %d has no id", kind.Singular(), rec.Row),
			})
			continue
		}
		_, dup := seen[rec.ID]
		if dup {
			diags = append(diags, models.Diagnostic{
				Type:    models.DiagDuplicateID,
				Sheet:   kind.Label(),
				ID:      rec.ID,
				Message: fmt.Sprintf("Duplicate id '%s' in %s (first occurrence kept)", rec.ID, kind.Label()),
			})
		}
		if missing := missingRequired(rec); len(missing) > 0 {
			diags = append(diags, models.Diagnostic{
				Type:    models.DiagMissingRequired,
				Sheet:   kind.Label(),
				ID:      rec.ID,
				Fields:  missing,
				Message: fmt.Sprintf("%s '%s' is missing required fields: %s", kind.Singular(), rec.ID, strings.Join(missing, ", ")),
			})
		}
		if dup {
			continue
		}
		seen[rec.ID] = struct{}{}
		kept = append(kept, rec)
	}
	return kept, diags
}

func missingRequired(rec *models.Entity) []string {
	var missing []string
	for _, f := range models.RequiredFields {
		if rec.Field(f) == "" {
			missing = append(missing, f)
		}
	}
	return missing
}

// referenceTargets maps each reference field to the kind it points at.
var referenceTargets = map[string]models.Kind{
	"researcherIds":  models.KindResearchers,
	"projectIds":     models.KindProjects,
	"publicationIds": models.KindPublications,
}

// References runs the six directed reference checks: every id in every
// reference field must exist in the target collection's index. Dangling ids
// are diagnosed and left in place on the record.
func References(ds *models.Dataset) []models.Diagnostic {
	var diags []models.Diagnostic
	for _, kind := range models.Kinds() {
		for _, rec := range ds.Collection(kind) {
			for _, field := range kind.Fields() {
				target, ok := referenceTargets[field]
				if !ok {
					continue
				}
				index := ds.Index(target)
				for _, id := range rec.ListField(field) {
					if _, ok := index[id]; ok {
						continue
					}
					diags = append(diags, models.Diagnostic{
						Type:      models.DiagMissingReference,
						Sheet:     kind.Label(),
						ID:        rec.ID,
						Field:     field,
						MissingID: id,
						Message:   fmt.Sprintf("%s '%s' references missing %s '%s' in %s", kind.Singular(), rec.ID, target.Singular(), id, field),
					})
				}
			}
		}
	}
	return diags
}

// Pillar checks each project's pillar against the closed vocabulary.
// Matching is case-insensitive; valid values are canonicalized to upper
// case on the record, invalid values are diagnosed and left unchanged.
// Empty is allowed.
func Pillar(projects []*models.Entity) []models.Diagnostic {
	var diags []models.Diagnostic
	for _, rec := range projects {
		if rec.Pillar == "" {
			continue
		}
		upper := strings.ToUpper(strings.TrimSpace(rec.Pillar))
		valid := false
		for _, p := range Pillars {
			if upper == p {
				valid = true
				break
			}
		}
		if valid {
			rec.Pillar = upper
			continue
		}
		diags = append(diags, models.Diagnostic{
			Type:    models.DiagInvalidPillar,
			Sheet:   models.KindProjects.Label(),
			ID:      rec.ID,
			Field:   "pillar",
			Value:   rec.Pillar,
			Message: fmt.Sprintf("Project '%s' has pillar '%s', expected one of %s", rec.ID, rec.Pillar, strings.Join(Pillars, ", ")),
		})
	}
	return diags
}

// Images checks that every non-URL image path exists on disk under root.
// Paths in generated were produced by the image locator this run; they only
// exist in the output tree after the build step and are exempt.
func Images(ds *models.Dataset, root string, generated map[string]struct{}) []models.Diagnostic {
	var diags []models.Diagnostic
	for _, kind := range models.Kinds() {
		for _, rec := range ds.Collection(kind) {
			img := rec.Image
			if img == "" || extract.IsImageURL(img) {
				continue
			}
			if _, ok := generated[img]; ok {
				continue
			}
			if _, err := os.Stat(filepath.Join(root, filepath.FromSlash(img))); err == nil {
				continue
			}
			diags = append(diags, models.Diagnostic{
				Type:    models.DiagMissingImage,
				Sheet:   kind.Label(),
				ID:      rec.ID,
				Image:   img,
				Message: fmt.Sprintf("%s '%s' image '%s' not found under project root", kind.Singular(), rec.ID, img),
			})
		}
	}
	return diags
}

// GeneratedSet builds the exemption set for Images from the run's
// artifacts, sorted input not required.
func GeneratedSet(artifacts []models.Artifact) map[string]struct{} {
	out := make(map[string]struct{}, len(artifacts))
	for _, a := range artifacts {
		out[a.Path] = struct{}{}
	}
	return out
}

// SummarizeTypes counts diagnostics per type, for log output. Keys come
// back sorted.
func SummarizeTypes(diags []models.Diagnostic) []string {
	counts := make(map[string]int)
	for _, d := range diags {
		counts[d.Type]++
	}
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = fmt.Sprintf("%s=%d", k, counts[k])
	}
	return out
}
