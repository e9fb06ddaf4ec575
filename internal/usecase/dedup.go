package usecase

import (
	"NewsForge/internal/domain"
	"NewsForge/internal/urlx"
)

// Dedupe returns the articles whose normalized reference URL is not in the
// known set. Pure function; the known set comes from the store at the start
// of a run.
func Dedupe(items []domain.Article, known map[string]struct{}) []domain.Article {
	fresh := make([]domain.Article, 0, len(items))
	for _, item := range items {
		key, err := urlx.NormalizeAbsolute(item.ReferenceURL)
		if err != nil {
			key = item.ReferenceURL
		}
		if _, ok := known[key]; ok {
			continue
		}
		fresh = append(fresh, item)
	}
	return fresh
}
