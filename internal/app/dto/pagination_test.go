package dto

import "testing"

func TestNewPage(t *testing.T) {
	cases := []struct {
		name      string
		total     int64
		page      int
		limit     int
		wantPages int64
	}{
		{"even split", 20, 1, 10, 2},
		{"remainder adds a page", 21, 1, 10, 3},
		{"single partial page", 3, 1, 10, 1},
		{"empty", 0, 1, 10, 0},
		{"zero limit does not divide by zero", 5, 1, 0, 5},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			page := NewPage([]string{}, tc.total, tc.page, tc.limit)
			if page.TotalPages != tc.wantPages {
				t.Errorf("TotalPages = %d, want %d", page.TotalPages, tc.wantPages)
			}
			if page.Total != tc.total || page.CurrentPage != tc.page {
				t.Errorf("meta not carried: %+v", page)
			}
		})
	}
}
