package catalog

import (
	"sort"
	"strings"

	"cinebrowse/models"
)

// FilterAndRank drops items the display layer cannot render (no poster) and,
// for search results, applies the exact-prefix boost: titles starting with
// the query text rank before the rest, ordered by descending popularity
// within each group. The sort is stable, so items equal on both keys keep
// the upstream order. Discover results keep the upstream order untouched
// since the gateway already sorted them.
func FilterAndRank(items []models.ContentItem, mode QueryMode, query string) []models.ContentItem {
	out := make([]models.ContentItem, 0, len(items))
	for _, item := range items {
		if strings.TrimSpace(item.PosterPath) == "" {
			continue
		}
		out = append(out, item)
	}

	q := strings.ToLower(strings.TrimSpace(query))
	if mode != ModeSearch || q == "" {
		return out
	}

	sort.SliceStable(out, func(i, j int) bool {
		pi := strings.HasPrefix(strings.ToLower(out[i].DisplayTitle()), q)
		pj := strings.HasPrefix(strings.ToLower(out[j].DisplayTitle()), q)
		if pi != pj {
			return pi
		}
		return out[i].Popularity > out[j].Popularity
	})
	return out
}
