package deploy

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"

	"github.com/healthai/sitegen/internal/config"
)

type fakeUploader struct {
	keys  []string
	types map[string]string
	body  map[string]string
}

func (f *fakeUploader) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.types == nil {
		f.types = map[string]string{}
		f.body = map[string]string{}
	}
	f.keys = append(f.keys, *in.Key)
	f.types[*in.Key] = *in.ContentType
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.body[*in.Key] = string(data)
	return &s3.PutObjectOutput{}, nil
}

func TestSync(t *testing.T) {
	dist := t.TempDir()
	files := map[string]string{
		"index.html":                   "<h1>home</h1>",
		"researchers/index.html":       "<h1>list</h1>",
		"assets/images/r/r1-jane.jpeg": "jpegdata",
		"data/researchers.json":        "[]",
	}
	for name, content := range files {
		p := filepath.Join(dist, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	fake := &fakeUploader{}
	d := &Deployer{
		cfg:    &config.DeployConfig{Bucket: "site", Prefix: "prod"},
		client: fake,
		logger: zap.NewNop(),
	}
	n, err := d.Sync(context.Background(), dist)
	if err != nil {
		t.Fatal(err)
	}
	if n != len(files) {
		t.Errorf("uploaded = %d, want %d", n, len(files))
	}

	sort.Strings(fake.keys)
	want := []string{
		"prod/assets/images/r/r1-jane.jpeg",
		"prod/data/researchers.json",
		"prod/index.html",
		"prod/researchers/index.html",
	}
	if len(fake.keys) != len(want) {
		t.Fatalf("keys = %v", fake.keys)
	}
	for i := range want {
		if fake.keys[i] != want[i] {
			t.Errorf("key[%d] = %s, want %s", i, fake.keys[i], want[i])
		}
	}
	if fake.types["prod/index.html"] != "text/html; charset=utf-8" {
		t.Errorf("html content type = %s", fake.types["prod/index.html"])
	}
	if fake.body["prod/data/researchers.json"] != "[]" {
		t.Errorf("json body = %q", fake.body["prod/data/researchers.json"])
	}
}

func TestNewDeployerRequiresBucket(t *testing.T) {
	_, err := NewDeployer(context.Background(), &config.DeployConfig{}, nil)
	if err == nil {
		t.Fatal("expected error for missing bucket")
	}
}

func TestObjectKey(t *testing.T) {
	tests := []struct {
		prefix, rel, want string
	}{
		{"", "index.html", "index.html"},
		{"prod", "index.html", "prod/index.html"},
		{"/prod/", "a/b.css", "prod/a/b.css"},
		{"v2/site", filepath.Join("data", "projects.json"), "v2/site/data/projects.json"},
	}
	for _, tt := range tests {
		if got := ObjectKey(tt.prefix, tt.rel); got != tt.want {
			t.Errorf("ObjectKey(%q, %q) = %q, want %q", tt.prefix, tt.rel, got, tt.want)
		}
	}
}

func TestContentType(t *testing.T) {
	tests := []struct {
		name, want string
	}{
		{"index.html", "text/html; charset=utf-8"},
		{"style.CSS", "text/css; charset=utf-8"},
		{"photo.jpeg", "image/jpeg"},
		{"report.json", "application/json"},
		{"archive.bin", "application/octet-stream"},
	}
	for _, tt := range tests {
		if got := ContentType(tt.name); got != tt.want {
			t.Errorf("ContentType(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}
