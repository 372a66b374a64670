package pagination

import "testing"

func TestNormalize(t *testing.T) {
	cases := []struct {
		name     string
		in       Params
		wantPage int
		wantSize int
	}{
		{"defaults", Params{}, 1, DefaultPageSize},
		{"negative page", Params{Page: -3, PageSize: 10}, 1, 10},
		{"capped size", Params{Page: 2, PageSize: 500}, 2, MaxPageSize},
		{"passthrough", Params{Page: 4, PageSize: 12}, 4, 12},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := tc.in.Normalize()
			if got.Page != tc.wantPage || got.PageSize != tc.wantSize {
				t.Fatalf("got page=%d size=%d, want page=%d size=%d", got.Page, got.PageSize, tc.wantPage, tc.wantSize)
			}
		})
	}
}

func TestOffset(t *testing.T) {
	if got := (Params{Page: 3, PageSize: 20}).Offset(); got != 40 {
		t.Fatalf("expected offset 40, got %d", got)
	}
	if got := (Params{}).Offset(); got != 0 {
		t.Fatalf("expected offset 0 for defaults, got %d", got)
	}
}
