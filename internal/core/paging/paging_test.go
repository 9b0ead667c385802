package paging

import (
	"testing"

	perr "comicvault/internal/platform/errors"
)

func TestComputeWindow(t *testing.T) {
	cases := []struct {
		name                      string
		total, page, per, window  int
		pages, start, end, offset int
	}{
		{"first page", 237, 1, 20, 8, 12, 1, 8, 0},
		{"middle", 237, 6, 20, 8, 12, 4, 11, 100},
		{"last page", 237, 12, 20, 8, 12, 10, 12, 220},
		{"exact multiple", 200, 10, 20, 8, 10, 8, 10, 180},
		{"default window", 1000, 20, 10, 0, 100, 18, 25, 190},
		{"empty set", 0, 1, 20, 8, 0, 1, 0, 0},
	}
	for _, c := range cases {
		w, err := Compute(c.total, c.page, c.per, c.window)
		if err != nil {
			t.Fatalf("%s: Compute err = %v", c.name, err)
		}
		if w.TotalPages != c.pages || w.StartPage != c.start || w.EndPage != c.end || w.Offset() != c.offset {
			t.Fatalf("%s: got %+v offset=%d", c.name, w, w.Offset())
		}
	}
}

func TestOutOfRange(t *testing.T) {
	for _, page := range []int{13, 0, -1} {
		_, err := Compute(237, page, 20, 8)
		if !perr.IsCode(err, perr.ErrorCodeOutOfRange) {
			t.Fatalf("page %d: err = %v, want out of range", page, err)
		}
	}
	if _, err := Compute(0, 2, 20, 8); !perr.IsCode(err, perr.ErrorCodeOutOfRange) {
		t.Fatalf("empty page 2: err = %v", err)
	}
	if _, err := Compute(10, 1, 0, 8); !perr.IsCode(err, perr.ErrorCodeInvalidArgument) {
		t.Fatalf("perPage 0: err = %v", err)
	}
}

func TestSliceLastPage(t *testing.T) {
	items := make([]int, 237)
	for i := range items {
		items[i] = i
	}
	w, err := Compute(len(items), 12, 20, 8)
	if err != nil {
		t.Fatal(err)
	}
	got := Slice(items, w)
	if len(got) != 17 || got[0] != 220 || got[16] != 236 {
		t.Fatalf("last page = len %d first %d", len(got), got[0])
	}
}
