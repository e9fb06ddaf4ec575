package domain

import (
	"fmt"
	"time"
)

// Category partitions all pipeline state by news source.
type Category string

const (
	CategoryTech     Category = "tech"
	CategoryScience  Category = "science"
	CategoryBusiness Category = "business"
	CategoryWorld    Category = "world"
)

// Categories returns the closed set of known categories.
func Categories() []Category {
	return []Category{CategoryTech, CategoryScience, CategoryBusiness, CategoryWorld}
}

// ParseCategory validates a raw string against the closed category set.
func ParseCategory(raw string) (Category, error) {
	for _, c := range Categories() {
		if string(c) == raw {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown category %q", raw)
}

// Article is a synthesized article tied to the source publication entry it
// was generated from. ReferenceURL is the natural identity, unique across
// the whole store.
type Article struct {
	ReferenceURL         string
	ReferenceName        string
	ReferencePublishedAt time.Time
	Header               string
	Subheader            string
	Summary              string
	Body                 string
	Category             Category
}
