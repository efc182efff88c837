package catalog

import (
	"context"
	"log"
	"net/http"
	"sync"

	"github.com/sourcegraph/conc/pool"

	"cinebrowse/models"
)

// Service wires the query builder, the TMDB gateway and the result
// post-processor together. Upstream failures degrade to empty results and
// absent optionals; the only hard error a caller can see is ErrInvalidFilter,
// raised before any I/O.
type Service struct {
	tmdb    *tmdbClient
	builder QueryBuilder
	genres  *genreCache

	similarLimit int
	castLimit    int
}

// Options tunes the service. Zero values fall back to the reference policy
// (en-US locale, vote-count floors 50/20, 10 similar titles, 10 cast
// members).
type Options struct {
	Language       string
	VoteCountBase  int
	VoteCountRated int
	SimilarLimit   int
	CastLimit      int
	HTTPClient     *http.Client
}

const (
	defaultSimilarLimit = 10
	defaultCastLimit    = 10
)

func NewService(apiKey string, opts Options) *Service {
	builder := NewQueryBuilder()
	builder.Locale = normalizeLanguage(opts.Language)
	if opts.VoteCountBase > 0 {
		builder.VoteCountBase = opts.VoteCountBase
	}
	if opts.VoteCountRated > 0 {
		builder.VoteCountRated = opts.VoteCountRated
	}
	similarLimit := opts.SimilarLimit
	if similarLimit <= 0 {
		similarLimit = defaultSimilarLimit
	}
	castLimit := opts.CastLimit
	if castLimit <= 0 {
		castLimit = defaultCastLimit
	}
	return &Service{
		tmdb:         newTMDBClient(apiKey, opts.Language, opts.HTTPClient),
		builder:      builder,
		genres:       newGenreCache(),
		similarLimit: similarLimit,
		castLimit:    castLimit,
	}
}

// BrowseResult is one page of discover or search results after client-side
// filtering and ranking.
type BrowseResult struct {
	Mode         QueryMode            `json:"mode"`
	Items        []models.ContentItem `json:"items"`
	Page         int                  `json:"page"`
	TotalPages   int                  `json:"totalPages"`
	TotalResults int                  `json:"totalResults"`
}

// Browse resolves a FilterState to one result page. Invalid filters fail
// before any network call; gateway faults are logged and degrade to an empty
// page.
func (s *Service) Browse(ctx context.Context, f FilterState) (BrowseResult, error) {
	mode, params, err := s.builder.Build(f)
	if err != nil {
		return BrowseResult{}, err
	}

	ct := contentTypeOrDefault(f.ContentType)
	var page contentPage
	var fetchErr error
	switch mode {
	case ModeSearch:
		page, fetchErr = s.tmdb.search(ctx, ct, params)
	default:
		page, fetchErr = s.tmdb.discover(ctx, ct, params)
	}
	if fetchErr != nil {
		log.Printf("[catalog] %s %s failed: %v", mode, ct, fetchErr)
		requested := f.Page
		if requested < 1 {
			requested = 1
		}
		return BrowseResult{Mode: mode, Items: []models.ContentItem{}, Page: requested}, nil
	}

	items := FilterAndRank(page.Results, mode, f.Query)
	return BrowseResult{
		Mode:         mode,
		Items:        items,
		Page:         page.Page,
		TotalPages:   page.TotalPages,
		TotalResults: page.TotalResults,
	}, nil
}

// Genres returns the genre taxonomy for a content type, memoized for the
// process lifetime after the first successful fetch.
func (s *Service) Genres(ctx context.Context, ct ContentType) []models.Genre {
	ct = contentTypeOrDefault(ct)
	if genres, ok := s.genres.get(ct); ok {
		return genres
	}
	genres, err := s.tmdb.genres(ctx, ct)
	if err != nil {
		log.Printf("[catalog] genre list %s failed: %v", ct, err)
		return []models.Genre{}
	}
	if genres == nil {
		genres = []models.Genre{}
	}
	s.genres.put(ct, genres)
	return genres
}

// Trailer fetches the video list for a title and applies the trailer
// selection policy. nil means no trailer is available, whether because the
// title has none or because the gateway was unreachable.
func (s *Service) Trailer(ctx context.Context, ct ContentType, id int64) *models.Video {
	ct = contentTypeOrDefault(ct)
	videos, err := s.tmdb.videos(ctx, ct, id)
	if err != nil {
		log.Printf("[catalog] videos %s/%d failed: %v", ct, id, err)
		return nil
	}
	return SelectTrailer(videos)
}

// Similar returns poster-bearing similar titles, capped for the detail view.
func (s *Service) Similar(ctx context.Context, ct ContentType, id int64) []models.ContentItem {
	ct = contentTypeOrDefault(ct)
	page, err := s.tmdb.similar(ctx, ct, id)
	if err != nil {
		log.Printf("[catalog] similar %s/%d failed: %v", ct, id, err)
		return []models.ContentItem{}
	}
	items := FilterAndRank(page.Results, ModeDiscover, "")
	if len(items) > s.similarLimit {
		items = items[:s.similarLimit]
	}
	return items
}

// Details fetches the full record for a title. Cast is limited to credited
// members with profile photos, capped at the configured limit, matching what
// the detail view renders. nil means the title could not be fetched.
func (s *Service) Details(ctx context.Context, ct ContentType, id int64) *models.Details {
	ct = contentTypeOrDefault(ct)
	detail, err := s.tmdb.details(ctx, ct, id)
	if err != nil {
		log.Printf("[catalog] details %s/%d failed: %v", ct, id, err)
		return nil
	}

	title := detail.Title
	releaseDate := detail.ReleaseDate
	if ct == ContentTypeTV {
		title = detail.Name
		releaseDate = detail.FirstAirDate
	}

	cast := make([]models.CastMember, 0, s.castLimit)
	for _, member := range detail.Credits.Cast {
		if member.ProfilePath == "" {
			continue
		}
		cast = append(cast, models.CastMember{
			ID:         member.ID,
			Name:       member.Name,
			Character:  member.Character,
			ProfileURL: imageURL(member.ProfilePath, tmdbProfileSize),
		})
		if len(cast) == s.castLimit {
			break
		}
	}

	out := &models.Details{
		ID:               detail.ID,
		MediaType:        string(ct),
		Title:            title,
		Tagline:          detail.Tagline,
		Overview:         detail.Overview,
		PosterURL:        imageURL(detail.PosterPath, tmdbPosterSize),
		BackdropURL:      imageURL(detail.BackdropPath, tmdbPosterSize),
		ReleaseDate:      releaseDate,
		Year:             parseTMDBYear(detail.ReleaseDate, detail.FirstAirDate),
		RuntimeMinutes:   detail.Runtime,
		NumberOfSeasons:  detail.NumberOfSeasons,
		NumberOfEpisodes: detail.NumberOfEpisodes,
		Genres:           detail.Genres,
		VoteAverage:      detail.VoteAverage,
		Cast:             cast,
		IMDBID:           detail.IMDBID,
	}

	// TV detail responses carry similar titles inline; movies use the
	// dedicated similar endpoint.
	if ct == ContentTypeTV {
		similar := FilterAndRank(detail.Similar.Results, ModeDiscover, "")
		if len(similar) > s.similarLimit {
			similar = similar[:s.similarLimit]
		}
		out.Similar = similar
	} else {
		out.Similar = s.Similar(ctx, ct, id)
	}
	return out
}

// IMDBID resolves a TMDB title to its IMDb id for the ratings gateway,
// empty when unknown or when the lookup failed.
func (s *Service) IMDBID(ctx context.Context, ct ContentType, id int64) string {
	ct = contentTypeOrDefault(ct)
	imdbID, err := s.tmdb.externalIDs(ctx, ct, id)
	if err != nil {
		log.Printf("[catalog] external ids %s/%d failed: %v", ct, id, err)
		return ""
	}
	return imdbID
}

// WatchProviders returns US streaming availability, nil when the region has
// no listings or the lookup failed.
func (s *Service) WatchProviders(ctx context.Context, ct ContentType, id int64) *models.WatchProviders {
	ct = contentTypeOrDefault(ct)
	providers, err := s.tmdb.watchProviders(ctx, ct, id)
	if err != nil {
		log.Printf("[catalog] watch providers %s/%d failed: %v", ct, id, err)
		return nil
	}
	return providers
}

// DetailsBundle assembles everything the detail view needs in one call.
// The legs fan out concurrently and degrade independently; the core
// selection logic stays pure and sequential inside each leg.
func (s *Service) DetailsBundle(ctx context.Context, ct ContentType, id int64) models.DetailsBundle {
	var (
		mu     sync.Mutex
		bundle models.DetailsBundle
	)
	p := pool.New().WithMaxGoroutines(3)
	p.Go(func() {
		details := s.Details(ctx, ct, id)
		mu.Lock()
		bundle.Details = details
		mu.Unlock()
	})
	p.Go(func() {
		trailer := s.Trailer(ctx, ct, id)
		mu.Lock()
		bundle.Trailer = trailer
		mu.Unlock()
	})
	p.Go(func() {
		providers := s.WatchProviders(ctx, ct, id)
		mu.Lock()
		bundle.Providers = providers
		mu.Unlock()
	})
	p.Wait()
	return bundle
}

func contentTypeOrDefault(ct ContentType) ContentType {
	if ct == ContentTypeTV {
		return ContentTypeTV
	}
	return ContentTypeMovie
}
