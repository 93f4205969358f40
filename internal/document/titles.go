package document

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var titleSuffix = regexp.MustCompile(`^(.*?)\s+(\d+)$`)

// splitTitle splits "Table 3" into ("Table", 3). A title without a numeric
// suffix has suffix 0.
func splitTitle(title string) (string, int) {
	m := titleSuffix.FindStringSubmatch(strings.TrimSpace(title))
	if m == nil {
		return strings.TrimSpace(title), 0
	}
	n, err := strconv.Atoi(m[2])
	if err != nil {
		return strings.TrimSpace(title), 0
	}
	return m[1], n
}

// uniqueAmong returns candidate, or "base max+1" when candidate's suffix does
// not exceed the largest suffix of an existing name with the same base.
func uniqueAmong(candidate string, existing []string) string {
	base, suffix := splitTitle(candidate)
	highest, found := 0, false
	for _, name := range existing {
		b, n := splitTitle(name)
		if b != base {
			continue
		}
		if !found || n > highest {
			highest = n
		}
		found = true
	}
	if !found || suffix > highest {
		return candidate
	}
	return fmt.Sprintf("%s %d", base, highest+1)
}

// UniqueTitle returns title, renumbered if needed so that no tile title
// shares its base with a higher or equal number.
func (d *Content) UniqueTitle(title string) string {
	return uniqueAmong(title, d.tileTitles())
}

// UniqueTitleForType returns a fresh title for a new tile of typ built from
// the type's title base, starting at 1.
func (d *Content) UniqueTitleForType(typ string) string {
	info := d.contentInfo(typ)
	base := info.TitleBase
	if base == "" {
		base = typ
	}
	return uniqueAmong(base+" 1", d.tileTitles())
}

// UniqueSharedModelName does for shared-model names what UniqueTitle does
// for tile titles.
func (d *Content) UniqueSharedModelName(name string) string {
	var names []string
	for _, id := range d.modelOrder {
		if n := d.models[id].Model.Name; n != "" {
			names = append(names, n)
		}
	}
	return uniqueAmong(name, names)
}

func (d *Content) tileTitles() []string {
	titles := make([]string, 0, len(d.tiles))
	for _, t := range d.tiles {
		if t.Title != "" {
			titles = append(titles, t.Title)
		}
	}
	return titles
}
