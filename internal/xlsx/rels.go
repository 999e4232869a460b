package xlsx

import (
	"encoding/xml"
	"path"
	"strings"
)

// Relationship is one entry of a part's relationship table.
type Relationship struct {
	ID         string `xml:"Id,attr"`
	Type       string `xml:"Type,attr"`
	Target     string `xml:"Target,attr"`
	TargetMode string `xml:"TargetMode,attr"`
}

// External reports whether the relationship points outside the container
// (a URL rather than a part).
func (r Relationship) External() bool {
	return strings.EqualFold(r.TargetMode, "External")
}

type relationshipsDoc struct {
	XMLName xml.Name       `xml:"Relationships"`
	Rels    []Relationship `xml:"Relationship"`
}

// relsPartFor returns the relationship-table part belonging to partPath.
// The package root's table lives at _rels/.rels.
func relsPartFor(partPath string) string {
	if partPath == "" {
		return "_rels/.rels"
	}
	dir, base := path.Split(partPath)
	return dir + "_rels/" + base + ".rels"
}

// RelsFor loads partPath's relationship table keyed by id. A missing or
// malformed table yields an empty map: relationships are an optional
// capability of each part, never a requirement.
func RelsFor(c *Container, partPath string) map[string]Relationship {
	var doc relationshipsDoc
	ok, err := c.DecodePart(relsPartFor(partPath), &doc)
	if !ok || err != nil {
		return map[string]Relationship{}
	}
	out := make(map[string]Relationship, len(doc.Rels))
	for _, r := range doc.Rels {
		out[r.ID] = r
	}
	return out
}

// ResolveTarget resolves a relationship target against the part that
// declared it. Targets are relative to the referencing part's directory,
// never the archive root; a leading slash makes them package-absolute. The
// result is lexically normalized (no . or .. segments), so resolving the
// same relationship twice yields the same path.
func ResolveTarget(basePart, target string) string {
	target = strings.ReplaceAll(target, "\\", "/")
	if strings.HasPrefix(target, "/") {
		return path.Clean(strings.TrimPrefix(target, "/"))
	}
	dir := path.Dir(basePart)
	if dir == "." {
		dir = ""
	}
	return path.Clean(path.Join(dir, target))
}
