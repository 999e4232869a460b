package xlsx

import "testing"

func TestResolveTarget(t *testing.T) {
	tests := []struct {
		name     string
		basePart string
		target   string
		expected string
	}{
		{"root relationship", "", "xl/workbook.xml", "xl/workbook.xml"},
		{"sibling", "xl/workbook.xml", "worksheets/sheet1.xml", "xl/worksheets/sheet1.xml"},
		{"parent traversal", "xl/drawings/drawing1.xml", "../media/image1.png", "xl/media/image1.png"},
		{"package absolute", "xl/worksheets/sheet1.xml", "/xl/media/image2.png", "xl/media/image2.png"},
		{"dot segments collapse", "xl/workbook.xml", "./worksheets/./sheet1.xml", "xl/worksheets/sheet1.xml"},
		{"backslashes", "xl/workbook.xml", "worksheets\\sheet1.xml", "xl/worksheets/sheet1.xml"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ResolveTarget(tt.basePart, tt.target); got != tt.expected {
				t.Errorf("ResolveTarget(%q, %q) = %q, want %q", tt.basePart, tt.target, got, tt.expected)
			}
		})
	}
}

func TestResolveTargetStable(t *testing.T) {
	first := ResolveTarget("xl/drawings/drawing1.xml", "../media/image1.png")
	second := ResolveTarget("xl/drawings/drawing1.xml", "../media/image1.png")
	if first != second {
		t.Errorf("resolution not stable: %q vs %q", first, second)
	}
}

func TestRelsFor(t *testing.T) {
	data := buildArchive(t, map[string]string{
		"xl/_rels/workbook.xml.rels": `<?xml version="1.0"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
  <Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/worksheet" Target="worksheets/sheet1.xml"/>
  <Relationship Id="rId2" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/hyperlink" Target="https://example.com" TargetMode="External"/>
</Relationships>`,
	})
	c, err := FromBytes(data)
	if err != nil {
		t.Fatalf("FromBytes: %v", err)
	}
	defer c.Close()

	rels := RelsFor(c, "xl/workbook.xml")
	if len(rels) != 2 {
		t.Fatalf("got %d relationships, want 2", len(rels))
	}
	if rels["rId1"].Target != "worksheets/sheet1.xml" {
		t.Errorf("rId1 target = %q", rels["rId1"].Target)
	}
	if !rels["rId2"].External() {
		t.Error("rId2 should be external")
	}
	if rels["rId1"].External() {
		t.Error("rId1 should not be external")
	}

	if got := RelsFor(c, "xl/worksheets/sheet1.xml"); len(got) != 0 {
		t.Errorf("missing rels table should be empty, got %d entries", len(got))
	}
}

func TestRelsPartFor(t *testing.T) {
	tests := []struct {
		part     string
		expected string
	}{
		{"", "_rels/.rels"},
		{"xl/workbook.xml", "xl/_rels/workbook.xml.rels"},
		{"workbook.xml", "_rels/workbook.xml.rels"},
		{"xl/richData/richValueRel.xml", "xl/richData/_rels/richValueRel.xml.rels"},
	}
	for _, tt := range tests {
		if got := relsPartFor(tt.part); got != tt.expected {
			t.Errorf("relsPartFor(%q) = %q, want %q", tt.part, got, tt.expected)
		}
	}
}
