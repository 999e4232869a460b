// Package models defines the entity, diagnostic, and dataset types shared
// across the ingestion pipeline.
package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Kind identifies one of the three entity collections. Its string value is
// the section directory used in generated paths.
type Kind string

const (
	KindResearchers  Kind = "researchers"
	KindProjects     Kind = "projects"
	KindPublications Kind = "publications"
)

// Kinds returns the three kinds in pipeline order.
func Kinds() []Kind {
	return []Kind{KindResearchers, KindProjects, KindPublications}
}

// Label returns the sheet-style label used in diagnostics ("Researchers").
func (k Kind) Label() string {
	switch k {
	case KindResearchers:
		return "Researchers"
	case KindProjects:
		return "Projects"
	case KindPublications:
		return "Publications"
	}
	return string(k)
}

// Singular returns the label for one entity of the kind ("Researcher"),
// used in reference diagnostics.
func (k Kind) Singular() string {
	switch k {
	case KindResearchers:
		return "Researcher"
	case KindProjects:
		return "Project"
	case KindPublications:
		return "Publication"
	}
	return string(k)
}

// Fields returns the declared fields of the kind in output order, excluding
// the computed slug and path.
func (k Kind) Fields() []string {
	switch k {
	case KindResearchers:
		return []string{"id", "name", "title", "about", "image", "projectIds", "publicationIds"}
	case KindProjects:
		return []string{"id", "name", "title", "about", "pillar", "image", "researcherIds", "publicationIds"}
	case KindPublications:
		return []string{"id", "name", "journal", "abstract", "publicationUrl", "image", "researcherIds", "projectIds"}
	}
	return nil
}

// IsListField reports whether field holds an ordered id list.
func IsListField(field string) bool {
	switch field {
	case "projectIds", "publicationIds", "researcherIds":
		return true
	}
	return false
}

// RequiredFields is the set of fields every record must fill.
var RequiredFields = []string{"id", "name"}

// Entity is one extracted sheet row: a researcher, project, or publication.
// Fields a variant does not declare stay at their zero value and are not
// marshaled.
type Entity struct {
	Kind Kind
	// Row is the 1-based worksheet row the record came from (the header
	// occupies row 1).
	Row int

	ID             string
	Name           string
	Title          string
	About          string
	Journal        string
	Abstract       string
	PublicationURL string
	Pillar         string
	Image          string

	ProjectIDs     []string
	PublicationIDs []string
	ResearcherIDs  []string

	// Slug and Path are assigned once id filtering completes and are
	// immutable afterward.
	Slug string
	Path string
}

// DisplayName returns the label used for slugs and page titles: name, then
// title, then id, falling back to "item".
func (e *Entity) DisplayName() string {
	if e.Name != "" {
		return e.Name
	}
	if e.Title != "" {
		return e.Title
	}
	if e.ID != "" {
		return e.ID
	}
	return "item"
}

// Field returns the named scalar field.
func (e *Entity) Field(name string) string {
	switch name {
	case "id":
		return e.ID
	case "name":
		return e.Name
	case "title":
		return e.Title
	case "about":
		return e.About
	case "journal":
		return e.Journal
	case "abstract":
		return e.Abstract
	case "publicationUrl":
		return e.PublicationURL
	case "pillar":
		return e.Pillar
	case "image":
		return e.Image
	case "slug":
		return e.Slug
	case "path":
		return e.Path
	}
	return ""
}

// SetField assigns the named scalar field. Unknown names are ignored.
func (e *Entity) SetField(name, value string) {
	switch name {
	case "id":
		e.ID = value
	case "name":
		e.Name = value
	case "title":
		e.Title = value
	case "about":
		e.About = value
	case "journal":
		e.Journal = value
	case "abstract":
		e.Abstract = value
	case "publicationUrl":
		e.PublicationURL = value
	case "pillar":
		e.Pillar = value
	case "image":
		e.Image = value
	}
}

// ListField returns the named id-list field.
func (e *Entity) ListField(name string) []string {
	switch name {
	case "projectIds":
		return e.ProjectIDs
	case "publicationIds":
		return e.PublicationIDs
	case "researcherIds":
		return e.ResearcherIDs
	}
	return nil
}

// SetListField assigns the named id-list field. Unknown names are ignored.
func (e *Entity) SetListField(name string, values []string) {
	switch name {
	case "projectIds":
		e.ProjectIDs = values
	case "publicationIds":
		e.PublicationIDs = values
	case "researcherIds":
		e.ResearcherIDs = values
	}
}

// MarshalJSON writes only the variant's declared fields, in declared order,
// followed by slug and path. Every declared field is present even when
// empty, list fields as [] rather than null.
func (e *Entity) MarshalJSON() ([]byte, error) {
	fields := append(e.Kind.Fields(), "slug", "path")
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		var val []byte
		if IsListField(name) {
			list := e.ListField(name)
			if list == nil {
				list = []string{}
			}
			val, err = json.Marshal(list)
		} else {
			val, err = json.Marshal(e.Field(name))
		}
		if err != nil {
			return nil, fmt.Errorf("marshal field %s: %w", name, err)
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
