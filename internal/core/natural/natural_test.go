package natural

import (
	"reflect"
	"testing"
)

func TestCompare(t *testing.T) {
	cases := []struct {
		a, b string
		want int
	}{
		{"Avengers 2", "Avengers 10", -1},
		{"avengers 10", "Avengers 2", 1},
		{"Hulk", "hulk", 0},
		{"X-Men (1991) #1", "X-Men (1991) #1", 0},
		{"Thor 007", "Thor 7", 1},
		{"Thor 7", "Thor 07", -1},
		{"  Iron Man", "Iron Man", 0},
		{"Iron", "Iron Man", -1},
		{"", "a", -1},
		{"Spider-Man 2099", "Spider-Man 99", 1},
		{"Élan", "élan", 0},
		{"a\xff", "a\xff", 0},
		{"a\xff", "a\xffb", -1},
		{"Thor \xff2", "Thor \xff10", -1},
	}
	for _, c := range cases {
		if got := Compare(c.a, c.b); got != c.want {
			t.Fatalf("Compare(%q, %q) = %d, want %d", c.a, c.b, got, c.want)
		}
	}
}

func TestSortIsNaturalAndStable(t *testing.T) {
	type item struct {
		title string
		id    int
	}
	in := []item{
		{"Avengers 10", 1},
		{"avengers 2", 2},
		{"Avengers 1", 3},
		{"AVENGERS 2", 4},
		{"Alpha Flight", 5},
	}
	Sort(in, func(i item) string { return i.title })

	var ids []int
	for _, i := range in {
		ids = append(ids, i.id)
	}
	if want := []int{5, 3, 2, 4, 1}; !reflect.DeepEqual(ids, want) {
		t.Fatalf("order = %v, want %v", ids, want)
	}
	if !Less("Avengers 9", "Avengers 10") {
		t.Fatalf("Less(9, 10) = false")
	}
}
