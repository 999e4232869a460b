package models

// Diagnostic types. Every extraction or validation finding is one of these;
// none of them abort the run.
const (
	DiagMissingSheet          = "missing_sheet"
	DiagMissingID             = "missing_id"
	DiagDuplicateID           = "duplicate_id"
	DiagMissingRequired       = "missing_required_fields"
	DiagMissingReference      = "missing_reference"
	DiagInvalidPillar         = "invalid_pillar"
	DiagMissingImage          = "missing_image"
	DiagImageWithoutRow       = "image_without_row"
	DiagMissingEmbeddedMedia  = "missing_embedded_media"
	DiagRichValueOutOfBounds  = "richvalue_index_out_of_bounds"
	DiagRichValueLookupFailed = "richvalue_lookup_failed"
)

// Diagnostic is one structured finding. The pipeline accumulates diagnostics
// in encounter order; they are data, never errors.
type Diagnostic struct {
	Type      string   `json:"type"`
	Sheet     string   `json:"sheet,omitempty"`
	ID        string   `json:"id,omitempty"`
	Field     string   `json:"field,omitempty"`
	MissingID string   `json:"missingId,omitempty"`
	Image     string   `json:"image,omitempty"`
	Value     string   `json:"value,omitempty"`
	Fields    []string `json:"fields,omitempty"`
	Row       int      `json:"row,omitempty"`
	Message   string   `json:"message,omitempty"`
}
