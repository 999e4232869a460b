package xlsx

import "testing"

const testMetadataXML = `<?xml version="1.0"?>
<metadata xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main" xmlns:xlrd="http://schemas.microsoft.com/office/spreadsheetml/2017/richdata">
  <metadataTypes count="1">
    <metadataType name="XLRICHVALUE" minSupportedVersion="120000"/>
  </metadataTypes>
  <futureMetadata name="XLRICHVALUE" count="2">
    <bk><extLst><ext uri="{3e2802c4-a4d2-4cc1-8d83-0b7b97e25cf1}"><xlrd:rvb i="0"/></ext></extLst></bk>
    <bk><extLst><ext uri="{3e2802c4-a4d2-4cc1-8d83-0b7b97e25cf1}"><xlrd:rvb i="1"/></ext></extLst></bk>
  </futureMetadata>
  <valueMetadata count="2">
    <bk><rc t="1" v="0"/></bk>
    <bk><rc t="1" v="1"/></bk>
  </valueMetadata>
</metadata>`

const testRichValueXML = `<?xml version="1.0"?>
<rvData xmlns="http://schemas.microsoft.com/office/spreadsheetml/2017/richdata" count="2">
  <rv s="0"><v>0</v><v>5</v></rv>
  <rv s="0"><v>7</v><v>5</v></rv>
</rvData>`

const testRichValueStructureXML = `<?xml version="1.0"?>
<rvStructures xmlns="http://schemas.microsoft.com/office/spreadsheetml/2017/richdata" count="1">
  <s t="_localImage">
    <k n="_rvRel:LocalImageIdentifier" t="i"/>
    <k n="CalcOrigin" t="i"/>
  </s>
</rvStructures>`

const testRichValueRelXML = `<?xml version="1.0"?>
<richValueRels xmlns="http://schemas.microsoft.com/office/spreadsheetml/2022/richvaluerel" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships">
  <rel r:id="rId1"/>
</richValueRels>`

const testRichValueRelRels = `<?xml version="1.0"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
  <Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/image" Target="../media/image1.png"/>
</Relationships>`

func testRichWorkbook(t *testing.T) *Workbook {
	t.Helper()
	data := buildArchive(t, map[string]string{
		"_rels/.rels":                testRootRels,
		"xl/workbook.xml":            testWorkbookXML,
		"xl/_rels/workbook.xml.rels": testWorkbookRels,
		"xl/worksheets/sheet1.xml":   testSheetXML,
		"xl/metadata.xml":            testMetadataXML,
		"xl/richData/rdrichvalue.xml":          testRichValueXML,
		"xl/richData/rdrichvaluestructure.xml": testRichValueStructureXML,
		"xl/richData/richValueRel.xml":         testRichValueRelXML,
		"xl/richData/_rels/richValueRel.xml.rels": testRichValueRelRels,
		"xl/media/image1.png": "png-bytes",
	})
	wb, err := OpenWorkbookBytes(data)
	if err != nil {
		t.Fatalf("OpenWorkbookBytes: %v", err)
	}
	return wb
}

func TestRichValueResolution(t *testing.T) {
	wb := testRichWorkbook(t)
	defer wb.Close()

	table := wb.RichValues()
	if table.SlotCount() != 2 {
		t.Fatalf("SlotCount = %d, want 2", table.SlotCount())
	}

	// Slot 0: rich value 0, whose local image identifier 0 resolves through
	// rId1 to the media part.
	part, ok := table.Resolve(0)
	if !ok {
		t.Fatal("Resolve(0) failed")
	}
	if part != "xl/media/image1.png" {
		t.Errorf("Resolve(0) = %q, want xl/media/image1.png", part)
	}

	// Slot 1: rich value 1 declares identifier 7, beyond the single rel.
	if _, ok := table.Resolve(1); ok {
		t.Error("Resolve(1) should fail: identifier outside relationship list")
	}

	// Out-of-range slots resolve to nothing.
	if _, ok := table.Resolve(-1); ok {
		t.Error("Resolve(-1) should fail")
	}
	if _, ok := table.Resolve(2); ok {
		t.Error("Resolve(2) should fail")
	}
}

func TestRichValuesAbsent(t *testing.T) {
	wb := testWorkbook(t)
	defer wb.Close()

	table := wb.RichValues()
	if table.SlotCount() != 0 {
		t.Errorf("workbook without rich data: SlotCount = %d, want 0", table.SlotCount())
	}
	if _, ok := table.Resolve(0); ok {
		t.Error("Resolve on empty table should fail")
	}
}
