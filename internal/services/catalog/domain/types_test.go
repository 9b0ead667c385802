package domain

import (
	"reflect"
	"testing"

	perr "comicvault/internal/platform/errors"
)

func TestParseTypes(t *testing.T) {
	got, err := ParseTypes([]string{"Comics", " series ", "comics"})
	if err != nil {
		t.Fatalf("ParseTypes err = %v", err)
	}
	if want := []EntityType{Comics, Series}; !reflect.DeepEqual(got, want) {
		t.Fatalf("ParseTypes = %v, want %v", got, want)
	}
	if all, _ := ParseTypes(nil); len(all) != 4 {
		t.Fatalf("ParseTypes(nil) = %v", all)
	}
	if _, err := ParseTypes([]string{"events"}); !perr.IsCode(err, perr.ErrorCodeInvalidArgument) {
		t.Fatalf("events err = %v", err)
	}
}

func TestSearchableAndPlaceholder(t *testing.T) {
	if Creators.IsSearchable() || !Comics.IsSearchable() {
		t.Fatalf("searchable flags wrong")
	}
	if got := PlaceholderName(1009610); got != "Unknown 1009610" {
		t.Fatalf("PlaceholderName = %q", got)
	}
}
