package xlsx

import (
	"encoding/xml"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Workbook wraps an open container with the workbook-level lookups every
// sheet shares: the sheet name → part table and the shared-string table.
type Workbook struct {
	c    *Container
	part string

	rels   map[string]Relationship
	sheets []SheetRef
	shared []string

	rich *RichValueTable
}

// SheetRef names one sheet and the part that holds it.
type SheetRef struct {
	Name string
	Part string
}

type xlsxWorkbook struct {
	XMLName xml.Name `xml:"workbook"`
	Sheets  struct {
		Entries []xlsxSheetEntry `xml:"sheet"`
	} `xml:"sheets"`
}

type xlsxSheetEntry struct {
	Name  string `xml:"name,attr"`
	RelID string `xml:"http://schemas.openxmlformats.org/officeDocument/2006/relationships id,attr"`
}

type xlsxSST struct {
	XMLName xml.Name         `xml:"sst"`
	Items   []xlsxStringItem `xml:"si"`
}

// xlsxStringItem covers shared-string entries and inline strings alike:
// either a plain <t> or a sequence of rich <r><t> runs.
type xlsxStringItem struct {
	T    string        `xml:"t"`
	Runs []xlsxRichRun `xml:"r"`
}

type xlsxRichRun struct {
	T string `xml:"t"`
}

func (si xlsxStringItem) text() string {
	if len(si.Runs) == 0 {
		return si.T
	}
	var b strings.Builder
	for _, r := range si.Runs {
		b.WriteString(r.T)
	}
	return b.String()
}

// OpenWorkbook opens the workbook at filename. The returned Workbook owns
// the archive handle; Close releases it.
func OpenWorkbook(filename string) (*Workbook, error) {
	c, err := Open(filename)
	if err != nil {
		return nil, err
	}
	wb, err := newWorkbook(c)
	if err != nil {
		c.Close()
		return nil, err
	}
	return wb, nil
}

// OpenWorkbookBytes opens an in-memory workbook.
func OpenWorkbookBytes(data []byte) (*Workbook, error) {
	c, err := FromBytes(data)
	if err != nil {
		return nil, err
	}
	return newWorkbook(c)
}

func newWorkbook(c *Container) (*Workbook, error) {
	part := "xl/workbook.xml"
	for _, rel := range RelsFor(c, "") {
		if rel.External() {
			continue
		}
		if strings.HasSuffix(rel.Type, "/officeDocument") {
			part = ResolveTarget("", rel.Target)
			break
		}
	}

	var doc xlsxWorkbook
	ok, err := c.DecodePart(part, &doc)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("workbook part %s not found in container", part)
	}

	wb := &Workbook{c: c, part: part, rels: RelsFor(c, part)}
	for _, entry := range doc.Sheets.Entries {
		rel, ok := wb.rels[entry.RelID]
		if !ok || rel.External() {
			continue
		}
		wb.sheets = append(wb.sheets, SheetRef{
			Name: entry.Name,
			Part: ResolveTarget(part, rel.Target),
		})
	}
	wb.loadSharedStrings()
	return wb, nil
}

func (w *Workbook) loadSharedStrings() {
	part := w.partByTypeSuffix("/sharedStrings", "xl/sharedStrings.xml")
	var sst xlsxSST
	ok, err := w.c.DecodePart(part, &sst)
	if !ok || err != nil {
		return
	}
	w.shared = make([]string, len(sst.Items))
	for i, si := range sst.Items {
		w.shared[i] = si.text()
	}
}

// partByTypeSuffix finds the workbook relationship whose type ends in
// suffix and resolves its target; fallback names the conventional location
// for producers that omit the relationship.
func (w *Workbook) partByTypeSuffix(suffix, fallback string) string {
	for _, rel := range w.rels {
		if rel.External() {
			continue
		}
		if strings.HasSuffix(rel.Type, suffix) {
			return ResolveTarget(w.part, rel.Target)
		}
	}
	return fallback
}

// Close releases the underlying archive.
func (w *Workbook) Close() error {
	return w.c.Close()
}

// Container exposes the underlying archive for part-level reads.
func (w *Workbook) Container() *Container {
	return w.c
}

// SheetNames returns the sheet names in workbook order.
func (w *Workbook) SheetNames() []string {
	names := make([]string, len(w.sheets))
	for i, s := range w.sheets {
		names[i] = s.Name
	}
	return names
}

// HasSheet reports whether the workbook declares the named sheet.
func (w *Workbook) HasSheet(name string) bool {
	for _, s := range w.sheets {
		if s.Name == name {
			return true
		}
	}
	return false
}

// Sheet parses the named sheet on demand. The bool reports sheet presence;
// a declared sheet whose part is missing or malformed counts as absent.
func (w *Workbook) Sheet(name string) (*Sheet, bool) {
	var part string
	for _, s := range w.sheets {
		if s.Name == name {
			part = s.Part
			break
		}
	}
	if part == "" {
		return nil, false
	}
	var doc xlsxWorksheet
	ok, err := w.c.DecodePart(part, &doc)
	if !ok || err != nil {
		return nil, false
	}
	return w.buildSheet(name, part, &doc), true
}

// Sheet is one parsed worksheet: decoded rows in ascending row order plus
// the sheet's drawing relationship, when it declares one.
type Sheet struct {
	Name         string
	Part         string
	DrawingRelID string
	Rows         []Row
}

// Row is one worksheet row. Num is the 1-based worksheet row number; rows
// absent from the part simply do not appear.
type Row struct {
	Num   int
	Cells []Cell
}

// Cell is one decoded cell. Value carries the final string form (shared
// strings resolved, numbers and booleans formatted). ValueMeta is the
// cell's declared value-metadata index, kept verbatim (including zero);
// -1 means the cell declares none.
type Cell struct {
	Ref       string
	Col       int
	Row       int
	Type      string
	Value     string
	ValueMeta int
}

type xlsxWorksheet struct {
	XMLName   xml.Name `xml:"worksheet"`
	SheetData struct {
		Rows []xlsxRow `xml:"row"`
	} `xml:"sheetData"`
	Drawing struct {
		RelID string `xml:"http://schemas.openxmlformats.org/officeDocument/2006/relationships id,attr"`
	} `xml:"drawing"`
}

type xlsxRow struct {
	R     int        `xml:"r,attr"`
	Cells []xlsxCell `xml:"c"`
}

type xlsxCell struct {
	R  string          `xml:"r,attr"`
	T  string          `xml:"t,attr"`
	VM string          `xml:"vm,attr"`
	V  string          `xml:"v"`
	IS *xlsxStringItem `xml:"is"`
}

func (w *Workbook) buildSheet(name, part string, doc *xlsxWorksheet) *Sheet {
	sheet := &Sheet{Name: name, Part: part, DrawingRelID: doc.Drawing.RelID}
	lastRow := 0
	for _, xr := range doc.SheetData.Rows {
		num := xr.R
		if num <= 0 {
			num = lastRow + 1
		}
		lastRow = num

		row := Row{Num: num}
		lastCol := -1
		for _, xc := range xr.Cells {
			col, cellRow := lastCol+1, num
			if xc.R != "" {
				if pc, pr, err := ParseRef(xc.R); err == nil {
					col, cellRow = pc, pr
				}
			}
			lastCol = col
			row.Cells = append(row.Cells, Cell{
				Ref:       xc.R,
				Col:       col,
				Row:       cellRow,
				Type:      xc.T,
				Value:     w.decodeCell(xc),
				ValueMeta: parseValueMeta(xc.VM),
			})
		}
		sort.SliceStable(row.Cells, func(i, j int) bool { return row.Cells[i].Col < row.Cells[j].Col })
		sheet.Rows = append(sheet.Rows, row)
	}
	sort.SliceStable(sheet.Rows, func(i, j int) bool { return sheet.Rows[i].Num < sheet.Rows[j].Num })
	return sheet
}

// decodeCell turns a raw cell into its string value. Error-typed cells
// decode to empty: their placeholder text (the literal a rich-value image
// cell carries) is never entity data.
func (w *Workbook) decodeCell(c xlsxCell) string {
	switch c.T {
	case "s":
		idx, err := strconv.Atoi(strings.TrimSpace(c.V))
		if err != nil || idx < 0 || idx >= len(w.shared) {
			return ""
		}
		return strings.TrimSpace(w.shared[idx])
	case "inlineStr":
		if c.IS == nil {
			return ""
		}
		return strings.TrimSpace(c.IS.text())
	case "str":
		return strings.TrimSpace(c.V)
	case "b":
		switch strings.TrimSpace(c.V) {
		case "":
			return ""
		case "1":
			return "TRUE"
		default:
			return "FALSE"
		}
	case "e":
		return ""
	default:
		return formatNumeric(c.V)
	}
}

// formatNumeric renders a numeric cell with shortest round-trip formatting;
// integral floats collapse to plain integers ("3.0" becomes "3").
// Non-numeric text passes through trimmed.
func formatNumeric(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return raw
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func parseValueMeta(raw string) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return -1
	}
	vm, err := strconv.Atoi(raw)
	if err != nil {
		return -1
	}
	return vm
}
