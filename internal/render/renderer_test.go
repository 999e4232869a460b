package render

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/healthai/sitegen/internal/models"
)

func testDataset() *models.Dataset {
	jane := &models.Entity{
		Kind: models.KindResearchers, ID: "R1", Name: "Jane Doe",
		Title: "Professor", Image: "assets/images/jane.png",
		ProjectIDs: []string{"P1", "P404"},
		Slug:       "jane-doe", Path: "researchers/R1-jane-doe.html",
	}
	lab := &models.Entity{
		Kind: models.KindProjects, ID: "P1", Name: "Prediction Lab",
		Pillar: "PREDICT", ResearcherIDs: []string{"R1"},
		Slug: "prediction-lab", Path: "projects/P1-prediction-lab.html",
	}
	pub := &models.Entity{
		Kind: models.KindPublications, ID: "PUB1", Name: "A Landmark Study",
		Journal: "Nature", Image: "https://cdn.example.org/fig.png",
		Slug: "a-landmark-study", Path: "publications/PUB1-a-landmark-study.html",
	}
	return &models.Dataset{
		Researchers:      []*models.Entity{jane},
		Projects:         []*models.Entity{lab},
		Publications:     []*models.Entity{pub},
		ResearcherIndex:  map[string]*models.Entity{"R1": jane},
		ProjectIndex:     map[string]*models.Entity{"P1": lab},
		PublicationIndex: map[string]*models.Entity{"PUB1": pub},
	}
}

func readPage(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(data)
}

func TestSiteRendersAllPages(t *testing.T) {
	out := t.TempDir()
	r, err := New("", "Division of Health AI", "")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := r.Site(testDataset(), out); err != nil {
		t.Fatalf("Site: %v", err)
	}

	index := readPage(t, filepath.Join(out, "index.html"))
	for _, want := range []string{"Division of Health AI", "researchers/index.html", "projects/index.html", "publications/index.html"} {
		if !strings.Contains(index, want) {
			t.Errorf("index missing %q", want)
		}
	}

	list := readPage(t, filepath.Join(out, "researchers", "index.html"))
	if !strings.Contains(list, "../researchers/R1-jane-doe.html") {
		t.Errorf("list page should link details with ../ prefix:\n%s", list)
	}
	if !strings.Contains(list, "../assets/images/jane.png") {
		t.Errorf("list page should prefix local images:\n%s", list)
	}

	detail := readPage(t, filepath.Join(out, "researchers", "R1-jane-doe.html"))
	if !strings.Contains(detail, "Jane Doe") || !strings.Contains(detail, "Professor") {
		t.Errorf("detail page content:\n%s", detail)
	}
	// P1 resolves; the dangling P404 renders nothing.
	if !strings.Contains(detail, "Prediction Lab") {
		t.Errorf("detail page should list related projects:\n%s", detail)
	}
	if strings.Contains(detail, "P404") {
		t.Errorf("dangling reference should not render:\n%s", detail)
	}

	pub := readPage(t, filepath.Join(out, "publications", "PUB1-a-landmark-study.html"))
	if !strings.Contains(pub, `src="https://cdn.example.org/fig.png"`) {
		t.Errorf("absolute image URL must not be prefixed:\n%s", pub)
	}
}

func TestSiteBaseURL(t *testing.T) {
	out := t.TempDir()
	r, err := New("", "Site", "/health-ai/")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := r.Site(testDataset(), out); err != nil {
		t.Fatalf("Site: %v", err)
	}
	list := readPage(t, filepath.Join(out, "researchers", "index.html"))
	if !strings.Contains(list, "/health-ai/researchers/R1-jane-doe.html") {
		t.Errorf("base URL should prefix links:\n%s", list)
	}
	if strings.Contains(list, "../") {
		t.Errorf("no ../ prefixes when base URL is set:\n%s", list)
	}
}

func TestTemplateDirOverride(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"index.tmpl", "list.tmpl", "detail.tmpl"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("custom "+name), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	out := t.TempDir()
	r, err := New(dir, "Site", "")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := r.Site(testDataset(), out); err != nil {
		t.Fatalf("Site: %v", err)
	}
	if got := readPage(t, filepath.Join(out, "index.html")); got != "custom index.tmpl" {
		t.Errorf("override not used: %q", got)
	}
}

func TestImageSrc(t *testing.T) {
	tests := []struct{ prefix, img, want string }{
		{"../", "", ""},
		{"../", "assets/images/a.png", "../assets/images/a.png"},
		{"/base/", "assets/images/a.png", "/base/assets/images/a.png"},
		{"../", "https://x/y.png", "https://x/y.png"},
		{"../", "data:image/png;base64,xyz", "data:image/png;base64,xyz"},
	}
	for _, tt := range tests {
		if got := imageSrc(tt.prefix, tt.img); got != tt.want {
			t.Errorf("imageSrc(%q, %q) = %q, want %q", tt.prefix, tt.img, got, tt.want)
		}
	}
}
