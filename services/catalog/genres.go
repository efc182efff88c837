package catalog

import (
	"sync"

	"cinebrowse/models"
)

// genreCache memoizes the genre taxonomy per content type for the process
// lifetime. Genre lists are effectively static upstream, so there is no TTL
// and no invalidation; failed lookups are not cached so the next call
// retries.
type genreCache struct {
	mu     sync.Mutex
	byType map[ContentType][]models.Genre
}

func newGenreCache() *genreCache {
	return &genreCache{byType: make(map[ContentType][]models.Genre)}
}

func (g *genreCache) get(ct ContentType) ([]models.Genre, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	genres, ok := g.byType[ct]
	return genres, ok
}

func (g *genreCache) put(ct ContentType, genres []models.Genre) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.byType[ct] = genres
}
