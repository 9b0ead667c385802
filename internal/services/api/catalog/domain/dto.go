// Package domain holds DTOs for the catalog query API
package domain

import (
	"time"

	"comicvault/internal/core/paging"
)

// Item is one row of a listing or search page
type Item struct {
	ExternalID int64      `json:"id" example:"82967"`
	Title      string     `json:"title" example:"Amazing Spider-Man (2022) #1"`
	Thumbnail  string     `json:"thumbnail" example:"http://i.annihil.us/u/prod/marvel/i/mg/c/e0/5f6e3d5d8d3c0.jpg"`
	Date       *time.Time `json:"date,omitempty" example:"2022-04-27T00:00:00Z"`
}

// Result is one page of items with its window
type Result struct {
	TotalItems int           `json:"totalItems" example:"237"`
	Items      []Item        `json:"items"`
	Paging     paging.Window `json:"paging"`
}

// ListInput is bound from the query string of list endpoints. PerPage 0
// means the configured default
type ListInput struct {
	Page    int `query:"page" default:"1" validate:"min=1" example:"1"`
	PerPage int `query:"per_page" validate:"omitempty,min=1,max=100" example:"20"`
}

// SearchInput is bound from the query string of search endpoints
type SearchInput struct {
	Q       string `query:"q" validate:"max=200" example:"spider"`
	Page    int    `query:"page" default:"1" validate:"min=1" example:"1"`
	PerPage int    `query:"per_page" validate:"omitempty,min=1,max=100" example:"20"`
}

// RecentInput bounds the newest-comics shelf
type RecentInput struct {
	Limit int `query:"limit" default:"30" validate:"min=1,max=100" example:"30"`
}

// Credit is a creator credited with a role
type Credit struct {
	ExternalID int64  `json:"id" example:"30"`
	FullName   string `json:"fullName" example:"Stan Lee"`
	Role       string `json:"role" example:"writer"`
	Thumbnail  string `json:"thumbnail,omitempty"`
}

// SerieSummary is the serie a comic belongs to
type SerieSummary struct {
	ExternalID int64  `json:"id" example:"1945"`
	Title      string `json:"title" example:"Avengers (1963 - 1996)"`
	Thumbnail  string `json:"thumbnail,omitempty"`
}

// ComicDetails is one comic with its resolved relations
type ComicDetails struct {
	ExternalID  int64         `json:"id" example:"82967"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	PageCount   int           `json:"pageCount"`
	Thumbnail   string        `json:"thumbnail"`
	ReleaseDate *time.Time    `json:"releaseDate,omitempty"`
	Slug        string        `json:"slug" example:"amazing-spider-man-2022-1"`
	Serie       *SerieSummary `json:"serie,omitempty"`
	Characters  []Item        `json:"characters"`
	Creators    []Credit      `json:"creators"`
	Variants    []Item        `json:"variants"`
}

// CharacterDetails is one character with where it appears
type CharacterDetails struct {
	ExternalID  int64  `json:"id" example:"1009610"`
	Name        string `json:"name" example:"Spider-Man (Peter Parker)"`
	Description string `json:"description"`
	Thumbnail   string `json:"thumbnail"`
	Comics      []Item `json:"comics"`
	Series      []Item `json:"series"`
}

// CreatorDetails is one creator with the series they worked on
type CreatorDetails struct {
	ExternalID int64  `json:"id" example:"30"`
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	FullName   string `json:"fullName" example:"Stan Lee"`
	Thumbnail  string `json:"thumbnail"`
	Series     []Item `json:"series"`
}

// SerieDetails is one serie with its issues, cast and credits
type SerieDetails struct {
	ExternalID  int64    `json:"id" example:"1945"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	StartYear   int      `json:"startYear,omitempty" example:"1963"`
	EndYear     int      `json:"endYear,omitempty" example:"1996"`
	Thumbnail   string   `json:"thumbnail"`
	Comics      []Item   `json:"comics"`
	Characters  []Item   `json:"characters"`
	Creators    []Credit `json:"creators"`
}
