package document

import (
	"fmt"
	"strings"

	"github.com/mesh-intelligence/tiledoc/pkg/types"
)

// DebugDescribe renders the row structure one row per line, e.g.
//
//	row1: [Text: t1] [Table: t2]
//	row2: (section intro)
//
// followed by the rows of every container tile.
func (d *Content) DebugDescribe() string {
	var b strings.Builder
	d.describeRows(&b, d.rows, "")
	for _, cid := range d.containerIDs() {
		fmt.Fprintf(&b, "Contents of embedded row list %s:\n", cid)
		d.describeRows(&b, d.rowList(cid), "  ")
	}
	return b.String()
}

func (d *Content) describeRows(b *strings.Builder, rl *types.RowList, indent string) {
	for _, row := range rl.Rows() {
		fmt.Fprintf(b, "%s%s:", indent, row.ID)
		if row.IsSectionHeader {
			fmt.Fprintf(b, " (section %s)", row.SectionID)
		}
		for _, l := range row.Tiles {
			fmt.Fprintf(b, " [%s: %s]", d.tiles[l.TileID].Type(), l.TileID)
		}
		b.WriteString("\n")
	}
}
