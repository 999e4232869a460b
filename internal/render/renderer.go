// Package render turns an ingested dataset into the static HTML site. The
// built-in templates are embedded; a template directory in the config
// overrides them.
package render

import (
	"embed"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"strings"

	"github.com/healthai/sitegen/internal/extract"
	"github.com/healthai/sitegen/internal/models"
)

//go:embed templates/*.tmpl
var builtin embed.FS

// Renderer renders pages for one site configuration.
type Renderer struct {
	tmpl    *template.Template
	title   string
	baseURL string
}

// New builds a renderer. templatesDir overrides the embedded templates when
// non-empty; baseURL, when set, prefixes every generated link (root-relative
// links are used otherwise).
func New(templatesDir, siteTitle, baseURL string) (*Renderer, error) {
	funcs := template.FuncMap{
		"image": imageSrc,
	}
	var (
		tmpl *template.Template
		err  error
	)
	if templatesDir != "" {
		tmpl, err = template.New("").Funcs(funcs).ParseGlob(filepath.Join(templatesDir, "*.tmpl"))
	} else {
		tmpl, err = template.New("").Funcs(funcs).ParseFS(builtin, "templates/*.tmpl")
	}
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &Renderer{tmpl: tmpl, title: siteTitle, baseURL: baseURL}, nil
}

// imageSrc resolves an entity image for a page at the given prefix.
// Absolute URLs are never prefixed.
func imageSrc(prefix, img string) string {
	if img == "" {
		return ""
	}
	if extract.IsImageURL(img) {
		return img
	}
	return prefix + img
}

// prefix returns the link prefix for a page depth levels below the site
// root: the configured base URL when set, "../" steps otherwise.
func (r *Renderer) prefix(depth int) string {
	if r.baseURL != "" {
		return r.baseURL
	}
	return strings.Repeat("../", depth)
}

type section struct {
	Label string
	Href  string
	Count int
}

type indexPage struct {
	Title    string
	Prefix   string
	Sections []section
}

type listPage struct {
	Title    string
	Site     string
	Prefix   string
	Kind     string
	Entities []*models.Entity
}

type relatedSection struct {
	Label string
	Items []*models.Entity
}

type detailPage struct {
	Title   string
	Site    string
	Prefix  string
	Kind    string
	Entity  *models.Entity
	Related []relatedSection
}

// Site writes the whole site under outDir: the index page, one list page
// per collection, and one detail page per entity at its precomputed path.
func (r *Renderer) Site(ds *models.Dataset, outDir string) error {
	idx := indexPage{Title: r.title, Prefix: r.prefix(0)}
	for _, kind := range models.Kinds() {
		idx.Sections = append(idx.Sections, section{
			Label: kind.Label(),
			Href:  string(kind) + "/index.html",
			Count: len(ds.Collection(kind)),
		})
	}
	if err := r.writePage(filepath.Join(outDir, "index.html"), "index.tmpl", idx); err != nil {
		return err
	}

	for _, kind := range models.Kinds() {
		list := listPage{
			Title:    kind.Label(),
			Site:     r.title,
			Prefix:   r.prefix(1),
			Kind:     kind.Label(),
			Entities: ds.Collection(kind),
		}
		if err := r.writePage(filepath.Join(outDir, string(kind), "index.html"), "list.tmpl", list); err != nil {
			return err
		}
		for _, e := range ds.Collection(kind) {
			detail := detailPage{
				Title:   e.DisplayName(),
				Site:    r.title,
				Prefix:  r.prefix(1),
				Kind:    kind.Label(),
				Entity:  e,
				Related: related(ds, e),
			}
			out := filepath.Join(outDir, filepath.FromSlash(e.Path))
			if err := r.writePage(out, "detail.tmpl", detail); err != nil {
				return err
			}
		}
	}
	return nil
}

// related resolves the entity's reference fields against the dataset
// indexes. Dangling ids contribute nothing here; they are already reported
// as diagnostics.
func related(ds *models.Dataset, e *models.Entity) []relatedSection {
	var out []relatedSection
	add := func(label string, index map[string]*models.Entity, ids []string) {
		items := models.Related(index, ids)
		if len(items) == 0 {
			return
		}
		out = append(out, relatedSection{Label: label, Items: items})
	}
	add("Researchers", ds.ResearcherIndex, e.ResearcherIDs)
	add("Projects", ds.ProjectIndex, e.ProjectIDs)
	add("Publications", ds.PublicationIndex, e.PublicationIDs)
	return out
}

func (r *Renderer) writePage(path, name string, data interface{}) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create page directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create page %s: %w", path, err)
	}
	defer f.Close()
	if err := r.tmpl.ExecuteTemplate(f, name, data); err != nil {
		return fmt.Errorf("render %s: %w", name, err)
	}
	return nil
}
