package xlsx

import (
	"encoding/xml"
	"strconv"
)

// localImageKey is the structure key whose position in a rich value holds
// the index into the rich-value relationship list.
const localImageKey = "_rvRel:LocalImageIdentifier"

// RichValueTable resolves rich-value image cells. It chains the workbook's
// three lookup tables: the value-metadata slot table (cell vm index, after
// the caller's -1 conversion, to rich-value index), the rich-value list
// (rich value to relationship-list position), and the rich-value
// relationship part (position to media part path). Each table is optional;
// a break anywhere in the chain resolves to nothing rather than an error.
type RichValueTable struct {
	slots []int    // vm slot -> rich value index, -1 when unresolvable
	media []string // rich value index -> media part path, "" when unresolved
}

type xlsxMetadata struct {
	XMLName xml.Name `xml:"metadata"`
	Types   struct {
		Entries []struct {
			Name string `xml:"name,attr"`
		} `xml:"metadataType"`
	} `xml:"metadataTypes"`
	Future []xlsxFutureMetadata `xml:"futureMetadata"`
	Value  struct {
		Bks []struct {
			Rcs []struct {
				T int `xml:"t,attr"`
				V int `xml:"v,attr"`
			} `xml:"rc"`
		} `xml:"bk"`
	} `xml:"valueMetadata"`
}

type xlsxFutureMetadata struct {
	Name string `xml:"name,attr"`
	Bks  []struct {
		ExtLst struct {
			Exts []struct {
				URI string `xml:"uri,attr"`
				Rvb struct {
					I string `xml:"i,attr"`
				} `xml:"rvb"`
			} `xml:"ext"`
		} `xml:"extLst"`
	} `xml:"bk"`
}

type xlsxRvData struct {
	XMLName xml.Name `xml:"rvData"`
	Rvs     []struct {
		S  string   `xml:"s,attr"`
		Vs []string `xml:"v"`
	} `xml:"rv"`
}

type xlsxRvStructures struct {
	XMLName xml.Name `xml:"rvStructures"`
	Ss      []struct {
		T  string `xml:"t,attr"`
		Ks []struct {
			N string `xml:"n,attr"`
		} `xml:"k"`
	} `xml:"s"`
}

type xlsxRichValueRels struct {
	XMLName xml.Name `xml:"richValueRels"`
	Rels    []struct {
		ID string `xml:"http://schemas.openxmlformats.org/officeDocument/2006/relationships id,attr"`
	} `xml:"rel"`
}

// RichValues loads the workbook's rich-value tables once and caches them.
// Workbooks without rich values yield an empty table.
func (w *Workbook) RichValues() *RichValueTable {
	if w.rich != nil {
		return w.rich
	}
	t := &RichValueTable{}
	t.loadSlots(w)
	t.loadMedia(w)
	w.rich = t
	return t
}

// SlotCount is the number of value-metadata slots. A cell's vm index must
// land inside [1, SlotCount] before its -1 conversion.
func (t *RichValueTable) SlotCount() int {
	return len(t.slots)
}

// Resolve maps a zero-based value-metadata slot to the media part backing
// its rich value. ok is false when the chain breaks before reaching a
// media path.
func (t *RichValueTable) Resolve(slot int) (string, bool) {
	if slot < 0 || slot >= len(t.slots) {
		return "", false
	}
	rv := t.slots[slot]
	if rv < 0 || rv >= len(t.media) || t.media[rv] == "" {
		return "", false
	}
	return t.media[rv], true
}

func (t *RichValueTable) loadSlots(w *Workbook) {
	part := w.partByTypeSuffix("/sheetMetadata", "xl/metadata.xml")
	var meta xlsxMetadata
	ok, err := w.c.DecodePart(part, &meta)
	if !ok || err != nil {
		return
	}

	// rc entries are typed; only the XLRICHVALUE type points into the
	// rich-value future metadata. Type indices are 1-based.
	richType := 0
	for i, mt := range meta.Types.Entries {
		if mt.Name == "XLRICHVALUE" {
			richType = i + 1
			break
		}
	}
	var future *xlsxFutureMetadata
	for i := range meta.Future {
		if meta.Future[i].Name == "XLRICHVALUE" {
			future = &meta.Future[i]
			break
		}
	}

	for _, bk := range meta.Value.Bks {
		slot := -1
		for _, rc := range bk.Rcs {
			if richType != 0 && rc.T != richType {
				continue
			}
			slot = futureRichValueIndex(future, rc.V)
			break
		}
		t.slots = append(t.slots, slot)
	}
}

// futureRichValueIndex follows a valueMetadata record into the
// futureMetadata block it names and returns the rich-value index stored
// there, or -1 when any hop is missing.
func futureRichValueIndex(future *xlsxFutureMetadata, idx int) int {
	if future == nil || idx < 0 || idx >= len(future.Bks) {
		return -1
	}
	for _, ext := range future.Bks[idx].ExtLst.Exts {
		if ext.Rvb.I == "" {
			continue
		}
		if i, err := strconv.Atoi(ext.Rvb.I); err == nil {
			return i
		}
	}
	return -1
}

func (t *RichValueTable) loadMedia(w *Workbook) {
	rvPart := w.partByTypeSuffix("/rdRichValue", "xl/richData/rdrichvalue.xml")
	var rvDoc xlsxRvData
	ok, err := w.c.DecodePart(rvPart, &rvDoc)
	if !ok || err != nil {
		return
	}

	structPart := w.partByTypeSuffix("/rdRichValueStructure", "xl/richData/rdrichvaluestructure.xml")
	var structures xlsxRvStructures
	if ok, err := w.c.DecodePart(structPart, &structures); !ok || err != nil {
		structures.Ss = nil
	}

	relPart := w.partByTypeSuffix("/richValueRel", "xl/richData/richValueRel.xml")
	var relDoc xlsxRichValueRels
	if ok, err := w.c.DecodePart(relPart, &relDoc); !ok || err != nil {
		relDoc.Rels = nil
	}
	relTable := RelsFor(w.c, relPart)

	for _, rv := range rvDoc.Rvs {
		pos := localImagePosition(&structures, rv.S)
		if pos < 0 || pos >= len(rv.Vs) {
			t.media = append(t.media, "")
			continue
		}
		relIdx, err := strconv.Atoi(rv.Vs[pos])
		if err != nil || relIdx < 0 || relIdx >= len(relDoc.Rels) {
			t.media = append(t.media, "")
			continue
		}
		rel, ok := relTable[relDoc.Rels[relIdx].ID]
		if !ok || rel.External() {
			t.media = append(t.media, "")
			continue
		}
		t.media = append(t.media, ResolveTarget(relPart, rel.Target))
	}
}

// localImagePosition finds which value position of a rich value holds the
// relationship-list index, per the value's declared structure. Position 0
// when the structure table cannot answer.
func localImagePosition(structures *xlsxRvStructures, structIdx string) int {
	idx, err := strconv.Atoi(structIdx)
	if err != nil || idx < 0 || idx >= len(structures.Ss) {
		return 0
	}
	for i, k := range structures.Ss[idx].Ks {
		if k.N == localImageKey {
			return i
		}
	}
	return 0
}
