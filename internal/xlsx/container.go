// Package xlsx reads the spreadsheet container format directly: a ZIP
// archive of XML parts wired together by per-part relationship tables. It
// covers exactly what ingestion needs (sheets, shared strings, drawing
// anchors, rich-value image metadata) without a spreadsheet dependency.
package xlsx

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"path"
	"strings"
)

// Container is an open spreadsheet archive with part lookup by normalized
// virtual path. It is read-only for the duration of a run.
type Container struct {
	parts  map[string]*zip.File
	closer io.Closer
}

// Open opens the archive at filename. Failing here is the pipeline's only
// unrecoverable error; every later absence or malformation degrades to a
// diagnostic instead.
func Open(filename string) (*Container, error) {
	zr, err := zip.OpenReader(filename)
	if err != nil {
		return nil, fmt.Errorf("open workbook container %s: %w", filename, err)
	}
	c := newContainer(&zr.Reader)
	c.closer = zr
	return c, nil
}

// FromBytes opens an in-memory archive.
func FromBytes(data []byte) (*Container, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open workbook container: %w", err)
	}
	return newContainer(zr), nil
}

func newContainer(zr *zip.Reader) *Container {
	c := &Container{parts: make(map[string]*zip.File, len(zr.File))}
	for _, f := range zr.File {
		c.parts[normalizeName(f.Name)] = f
	}
	return c
}

// Close releases the underlying archive handle, if any.
func (c *Container) Close() error {
	if c.closer == nil {
		return nil
	}
	return c.closer.Close()
}

// HasPart reports whether the named part exists.
func (c *Container) HasPart(name string) bool {
	_, ok := c.parts[normalizeName(name)]
	return ok
}

// ReadPart returns the named part's bytes. Absence is a condition, not an
// error: callers treat a missing part as "capability unavailable". An
// unreadable entry counts as absent.
func (c *Container) ReadPart(name string) ([]byte, bool) {
	f, ok := c.parts[normalizeName(name)]
	if !ok {
		return nil, false
	}
	rc, err := f.Open()
	if err != nil {
		return nil, false
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, false
	}
	return data, true
}

// DecodePart XML-decodes the named part into v. The bool reports part
// presence; the error reports malformed XML.
func (c *Container) DecodePart(name string, v interface{}) (bool, error) {
	data, ok := c.ReadPart(name)
	if !ok {
		return false, nil
	}
	if err := xml.Unmarshal(data, v); err != nil {
		return true, fmt.Errorf("decode part %s: %w", name, err)
	}
	return true, nil
}

// normalizeName maps a raw entry name to canonical part form: forward
// slashes, no leading slash, no dot segments.
func normalizeName(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = strings.TrimPrefix(name, "/")
	return path.Clean(name)
}
