package marvel

import (
	"encoding/json"

	perr "comicvault/internal/platform/errors"
)

// Image is an upstream thumbnail reference
type Image struct {
	Path      string `json:"path"`
	Extension string `json:"extension"`
}

// Summary references another resource by URI
type Summary struct {
	ResourceURI string `json:"resourceURI"`
	Name        string `json:"name"`
	Role        string `json:"role,omitempty"`
}

// List is a capped collection of summaries
type List struct {
	Available int       `json:"available"`
	Items     []Summary `json:"items"`
}

// Date is a typed date entry on a comic
type Date struct {
	Type string `json:"type"`
	Date string `json:"date"`
}

// RawCharacter is a character as the upstream sends it
type RawCharacter struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Modified    string `json:"modified"`
	Thumbnail   Image  `json:"thumbnail"`
}

// RawComic is a comic as the upstream sends it
type RawComic struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	PageCount   int       `json:"pageCount"`
	Thumbnail   Image     `json:"thumbnail"`
	Dates       []Date    `json:"dates"`
	Variants    []Summary `json:"variants"`
	Creators    List      `json:"creators"`
	Characters  List      `json:"characters"`
	Series      Summary   `json:"series"`
}

// RawCreator is a creator as the upstream sends it
type RawCreator struct {
	ID        int64  `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	FullName  string `json:"fullName"`
	Thumbnail Image  `json:"thumbnail"`
}

// RawSerie is a serie as the upstream sends it
type RawSerie struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Description *string `json:"description"`
	StartYear   int     `json:"startYear"`
	EndYear     int     `json:"endYear"`
	Thumbnail   Image   `json:"thumbnail"`
	Creators    List    `json:"creators"`
	Characters  List    `json:"characters"`
}

// Decode unmarshals every raw record into T; the first failure is a decoding error
func Decode[T any](raws []json.RawMessage) ([]T, error) {
	out := make([]T, 0, len(raws))
	for i, r := range raws {
		var v T
		if err := json.Unmarshal(r, &v); err != nil {
			return nil, perr.Decodingf(err, "marvel: decode record %d", i)
		}
		out = append(out, v)
	}
	return out, nil
}
