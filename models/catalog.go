package models

import "encoding/json"

// Genre is one entry of the TMDB genre taxonomy for a content type.
type Genre struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// ContentItem is a single row of a discover/search/similar response page.
// It is constructed fresh per response page and never mutated. The full
// upstream JSON is retained so fields the display layer consumes but this
// service does not interpret survive the round trip.
type ContentItem struct {
	ID               int64   `json:"id"`
	Title            string  `json:"title,omitempty"`
	Name             string  `json:"name,omitempty"`
	Overview         string  `json:"overview,omitempty"`
	PosterPath       string  `json:"poster_path,omitempty"`
	BackdropPath     string  `json:"backdrop_path,omitempty"`
	ReleaseDate      string  `json:"release_date,omitempty"`
	FirstAirDate     string  `json:"first_air_date,omitempty"`
	VoteAverage      float64 `json:"vote_average,omitempty"`
	VoteCount        int64   `json:"vote_count,omitempty"`
	Popularity       float64 `json:"popularity,omitempty"`
	GenreIDs         []int64 `json:"genre_ids,omitempty"`
	OriginalLanguage string  `json:"original_language,omitempty"`

	raw json.RawMessage
}

func (c *ContentItem) UnmarshalJSON(data []byte) error {
	type plain ContentItem
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*c = ContentItem(p)
	c.raw = append(json.RawMessage(nil), data...)
	return nil
}

// MarshalJSON re-emits the original upstream document when one was decoded,
// so opaque fields pass through to the display layer untouched.
func (c ContentItem) MarshalJSON() ([]byte, error) {
	if len(c.raw) > 0 {
		return c.raw, nil
	}
	type plain ContentItem
	return json.Marshal(plain(c))
}

// DisplayTitle returns the movie title or, for TV entries, the show name.
func (c ContentItem) DisplayTitle() string {
	if c.Title != "" {
		return c.Title
	}
	return c.Name
}

// ReleaseOrAirDate returns the release date (movies) or first-air date (TV),
// empty when upstream has neither.
func (c ContentItem) ReleaseOrAirDate() string {
	if c.ReleaseDate != "" {
		return c.ReleaseDate
	}
	return c.FirstAirDate
}

// Video is one record of a TMDB videos response.
type Video struct {
	ID          string `json:"id,omitempty"`
	Key         string `json:"key"`
	Name        string `json:"name"`
	Site        string `json:"site"`
	Type        string `json:"type"`
	Official    bool   `json:"official,omitempty"`
	PublishedAt string `json:"published_at,omitempty"`
}

// EmbedURL returns the YouTube embed URL for the video key.
func (v Video) EmbedURL() string {
	return "https://www.youtube.com/embed/" + v.Key
}

// CastMember is a credited cast entry with an optional profile image URL.
type CastMember struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	Character  string `json:"character,omitempty"`
	ProfileURL string `json:"profileUrl,omitempty"`
}

// Details is the full record for a selected title, assembled from the TMDB
// detail endpoint with appended credits (and, for TV, videos and similar).
type Details struct {
	ID               int64         `json:"id"`
	MediaType        string        `json:"mediaType"`
	Title            string        `json:"title"`
	Tagline          string        `json:"tagline,omitempty"`
	Overview         string        `json:"overview,omitempty"`
	PosterURL        string        `json:"posterUrl,omitempty"`
	BackdropURL      string        `json:"backdropUrl,omitempty"`
	ReleaseDate      string        `json:"releaseDate,omitempty"`
	Year             int           `json:"year,omitempty"`
	RuntimeMinutes   int           `json:"runtimeMinutes,omitempty"`
	NumberOfSeasons  int           `json:"numberOfSeasons,omitempty"`
	NumberOfEpisodes int           `json:"numberOfEpisodes,omitempty"`
	Genres           []Genre       `json:"genres,omitempty"`
	VoteAverage      float64       `json:"voteAverage,omitempty"`
	Cast             []CastMember  `json:"cast,omitempty"`
	Similar          []ContentItem `json:"similar,omitempty"`
	IMDBID           string        `json:"imdbId,omitempty"`
}

// Provider is one streaming/rent/buy option from the watch-providers endpoint.
type Provider struct {
	ProviderID   int64  `json:"provider_id"`
	ProviderName string `json:"provider_name"`
	LogoPath     string `json:"logo_path,omitempty"`
}

// WatchProviders groups the US availability buckets for a title.
type WatchProviders struct {
	Stream []Provider `json:"stream"`
	Rent   []Provider `json:"rent"`
	Buy    []Provider `json:"buy"`
}

// ExternalRatings holds third-party rating strings as OMDb reports them,
// e.g. "8.4/10" and "94%".
type ExternalRatings struct {
	IMDB           string `json:"imdb,omitempty"`
	RottenTomatoes string `json:"rottenTomatoes,omitempty"`
}

// DetailsBundle aggregates everything the detail view renders in one payload.
// Any leg may be nil when the corresponding upstream lookup failed or the
// data simply does not exist; absence is not an error.
type DetailsBundle struct {
	Details   *Details         `json:"details"`
	Trailer   *Video           `json:"trailer,omitempty"`
	Providers *WatchProviders  `json:"providers,omitempty"`
	Ratings   *ExternalRatings `json:"ratings,omitempty"`
}
