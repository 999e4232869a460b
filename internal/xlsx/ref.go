package xlsx

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseRef decodes an A1-style cell reference into a zero-based column and
// a 1-based row: "B3" yields (1, 3). Column letters are a base-26 encoding
// with A=1, so "AA" is column 26.
func ParseRef(ref string) (int, int, error) {
	ref = strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(ref), "$", ""))
	col := 0
	i := 0
	for i < len(ref) && ref[i] >= 'A' && ref[i] <= 'Z' {
		col = col*26 + int(ref[i]-'A') + 1
		i++
	}
	if i == 0 || i == len(ref) {
		return 0, 0, fmt.Errorf("malformed cell reference %q", ref)
	}
	row, err := strconv.Atoi(ref[i:])
	if err != nil || row <= 0 {
		return 0, 0, fmt.Errorf("malformed cell reference %q", ref)
	}
	return col - 1, row, nil
}
