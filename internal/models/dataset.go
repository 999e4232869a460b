package models

// Artifact is an image recovered from the workbook: the site-relative path
// the owning record's image field points at, plus the raw media bytes. The
// build stage writes artifacts under the output tree before rendering.
type Artifact struct {
	Path string
	Data []byte
}

// Dataset is the assembled result of one ingestion run: the three validated
// collections, their id indexes, the ordered diagnostic list, and any
// recovered image artifacts.
type Dataset struct {
	Researchers  []*Entity
	Projects     []*Entity
	Publications []*Entity

	ResearcherIndex  map[string]*Entity
	ProjectIndex     map[string]*Entity
	PublicationIndex map[string]*Entity

	Diagnostics []Diagnostic
	Artifacts   []Artifact
}

// Collection returns the records of the given kind.
func (d *Dataset) Collection(kind Kind) []*Entity {
	switch kind {
	case KindResearchers:
		return d.Researchers
	case KindProjects:
		return d.Projects
	case KindPublications:
		return d.Publications
	}
	return nil
}

// Index returns the id index of the given kind.
func (d *Dataset) Index(kind Kind) map[string]*Entity {
	switch kind {
	case KindResearchers:
		return d.ResearcherIndex
	case KindProjects:
		return d.ProjectIndex
	case KindPublications:
		return d.PublicationIndex
	}
	return nil
}

// All returns every record across the three collections in pipeline order.
func (d *Dataset) All() []*Entity {
	out := make([]*Entity, 0, len(d.Researchers)+len(d.Projects)+len(d.Publications))
	out = append(out, d.Researchers...)
	out = append(out, d.Projects...)
	out = append(out, d.Publications...)
	return out
}

// Related resolves ids against an index, keeping only those that exist and
// preserving input order.
func Related(index map[string]*Entity, ids []string) []*Entity {
	var out []*Entity
	for _, id := range ids {
		if e, ok := index[id]; ok {
			out = append(out, e)
		}
	}
	return out
}
