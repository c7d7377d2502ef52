package pagination

import "testing"

func TestNewClampsPageNumber(t *testing.T) {
	tests := []struct {
		name       string
		totalItems int64
		number     int
		wantNumber int
		wantPages  int
	}{
		{"first page", 25, 1, 1, 3},
		{"middle page", 25, 2, 2, 3},
		{"last page", 25, 3, 3, 3},
		{"past the end clamps to last", 25, 99, 3, 3},
		{"zero clamps to first", 25, 0, 1, 3},
		{"negative clamps to first", 25, -5, 1, 3},
		{"empty set still has one page", 0, 1, 1, 1},
		{"empty set past the end", 0, 42, 1, 1},
		{"exact multiple", 20, 2, 2, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := New(tt.totalItems, tt.number, 10)
			if p.Number != tt.wantNumber {
				t.Errorf("Number = %d, want %d", p.Number, tt.wantNumber)
			}
			if p.TotalPages != tt.wantPages {
				t.Errorf("TotalPages = %d, want %d", p.TotalPages, tt.wantPages)
			}
		})
	}
}

func TestOffsetSlicesPagesOfTen(t *testing.T) {
	// 25 items at 10 per page must split 10/10/5.
	sizes := []int{10, 10, 5}
	for i, want := range sizes {
		p := New(25, i+1, 10)
		if p.Offset() != i*10 {
			t.Errorf("page %d: Offset = %d, want %d", i+1, p.Offset(), i*10)
		}
		remaining := 25 - p.Offset()
		got := remaining
		if got > p.PerPage {
			got = p.PerPage
		}
		if got != want {
			t.Errorf("page %d: size = %d, want %d", i+1, got, want)
		}
	}
}

func TestParsePageNumber(t *testing.T) {
	tests := []struct {
		raw  string
		want int
	}{
		{"", 1},
		{"abc", 1},
		{"0", 1},
		{"-3", 1},
		{"1", 1},
		{"7", 7},
		{"2.5", 1},
	}
	for _, tt := range tests {
		if got := ParsePageNumber(tt.raw); got != tt.want {
			t.Errorf("ParsePageNumber(%q) = %d, want %d", tt.raw, got, tt.want)
		}
	}
}

func TestURLFragments(t *testing.T) {
	// Previous exists exactly when page > 1; next exactly when page < last.
	p := New(25, 1, 10)
	if PreviousURL(p) != "" {
		t.Errorf("first page PreviousURL = %q, want empty", PreviousURL(p))
	}
	if NextURL(p) != "?page=2" {
		t.Errorf("first page NextURL = %q, want ?page=2", NextURL(p))
	}

	p = New(25, 2, 10)
	if PreviousURL(p) != "?page=1" {
		t.Errorf("middle page PreviousURL = %q, want ?page=1", PreviousURL(p))
	}
	if NextURL(p) != "?page=3" {
		t.Errorf("middle page NextURL = %q, want ?page=3", NextURL(p))
	}

	p = New(25, 3, 10)
	if PreviousURL(p) != "?page=2" {
		t.Errorf("last page PreviousURL = %q, want ?page=2", PreviousURL(p))
	}
	if NextURL(p) != "" {
		t.Errorf("last page NextURL = %q, want empty", NextURL(p))
	}

	// A single page has neither neighbour.
	p = New(4, 1, 10)
	if PreviousURL(p) != "" || NextURL(p) != "" {
		t.Error("single page should have no previous or next URL")
	}
}
