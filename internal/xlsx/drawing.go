package xlsx

import "encoding/xml"

// Anchor is one drawing object's origin cell plus the relationship id of
// its embedded image. Both coordinates are zero-based, as declared in the
// drawing part.
type Anchor struct {
	Col     int
	Row     int
	EmbedID string
}

type xlsxDrawing struct {
	XMLName xml.Name     `xml:"wsDr"`
	TwoCell []xlsxAnchor `xml:"twoCellAnchor"`
	OneCell []xlsxAnchor `xml:"oneCellAnchor"`
}

type xlsxAnchor struct {
	From struct {
		Col int `xml:"col"`
		Row int `xml:"row"`
	} `xml:"from"`
	Pic struct {
		BlipFill struct {
			Blip struct {
				Embed string `xml:"http://schemas.openxmlformats.org/officeDocument/2006/relationships embed,attr"`
			} `xml:"blip"`
		} `xml:"blipFill"`
	} `xml:"pic"`
}

// DrawingAnchors parses a drawing part and returns its picture anchors:
// two-cell anchors first, then one-cell anchors, each set in document
// order. Anchors without an embedded image, and absent or malformed parts,
// contribute nothing.
func (c *Container) DrawingAnchors(part string) []Anchor {
	var doc xlsxDrawing
	ok, err := c.DecodePart(part, &doc)
	if !ok || err != nil {
		return nil
	}
	var out []Anchor
	for _, set := range [][]xlsxAnchor{doc.TwoCell, doc.OneCell} {
		for _, a := range set {
			embed := a.Pic.BlipFill.Blip.Embed
			if embed == "" {
				continue
			}
			out = append(out, Anchor{Col: a.From.Col, Row: a.From.Row, EmbedID: embed})
		}
	}
	return out
}
