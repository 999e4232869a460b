package xlsx

import "testing"

func TestParseRef(t *testing.T) {
	tests := []struct {
		ref     string
		col     int
		row     int
		wantErr bool
	}{
		{"A1", 0, 1, false},
		{"B3", 1, 3, false},
		{"Z9", 25, 9, false},
		{"AA10", 26, 10, false},
		{"AB2", 27, 2, false},
		{"ba7", 52, 7, false},
		{"$C$4", 2, 4, false},
		{"", 0, 0, true},
		{"12", 0, 0, true},
		{"ABC", 0, 0, true},
		{"A0", 0, 0, true},
		{"A-3", 0, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			col, row, err := ParseRef(tt.ref)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseRef(%q) error = %v, wantErr %v", tt.ref, err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if col != tt.col || row != tt.row {
				t.Errorf("ParseRef(%q) = (%d, %d), want (%d, %d)", tt.ref, col, row, tt.col, tt.row)
			}
		})
	}
}
