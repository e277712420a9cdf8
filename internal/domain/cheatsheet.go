// Package domain holds the catalog and contribution types shared across layers.
package domain

import (
	"strings"
	"time"
)

// Category groups cheatsheets on the home page.
type Category string

const (
	CategoryLanguages Category = "languages"
	CategoryFrontend  Category = "frontend"
	CategoryBackend   Category = "backend"
	CategoryTools     Category = "tools"
	CategoryDatabases Category = "databases"
)

// Categories returns every category in display order.
func Categories() []Category {
	return []Category{CategoryLanguages, CategoryFrontend, CategoryBackend, CategoryTools, CategoryDatabases}
}

// ParseCategory normalises raw and reports whether it names a known category.
func ParseCategory(raw string) (Category, bool) {
	c := Category(strings.ToLower(strings.TrimSpace(raw)))
	switch c {
	case CategoryLanguages, CategoryFrontend, CategoryBackend, CategoryTools, CategoryDatabases:
		return c, true
	}
	return "", false
}

// SortKey selects an ordering for a summary list.
type SortKey string

const (
	SortRelevance  SortKey = "relevance"
	SortPopularity SortKey = "popularity"
	SortNewest     SortKey = "newest"
)

// ParseSortKey accepts the three sort keys case-insensitively. Empty input means relevance.
func ParseSortKey(raw string) (SortKey, bool) {
	switch k := SortKey(strings.ToLower(strings.TrimSpace(raw))); k {
	case "":
		return SortRelevance, true
	case SortRelevance, SortPopularity, SortNewest:
		return k, true
	}
	return "", false
}

// CatalogEntry is what a content source reports for one cheatsheet. A zero Popularity means the
// source has no opinion.
type CatalogEntry struct {
	Name       string     `json:"name"`
	Category   string     `json:"category"`
	Popularity int        `json:"popularity,omitempty"`
	UpdatedAt  *time.Time `json:"updatedAt,omitempty"`
}

// CheatsheetSummary is the listing view of a cheatsheet.
type CheatsheetSummary struct {
	Name        string     `json:"name"`
	DisplayName string     `json:"displayName"`
	Category    Category   `json:"category"`
	Popularity  int        `json:"popularity"`
	Path        string     `json:"path"`
	UpdatedAt   *time.Time `json:"updatedAt,omitempty"`
}

// Item is one code snippet with its description.
type Item struct {
	Code        string `json:"code" yaml:"code"`
	Description string `json:"description" yaml:"description"`
}

// Section is a titled group of items.
type Section struct {
	Title string `json:"title" yaml:"title"`
	Items []Item `json:"items" yaml:"items"`
}

// CheatsheetDetail is the full page for one cheatsheet.
type CheatsheetDetail struct {
	Name     string    `json:"name"`
	Title    string    `json:"title"`
	Sections []Section `json:"sections"`
	HTML     string    `json:"html"`
}
