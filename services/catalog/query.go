package catalog

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// ContentType selects between the movie and TV catalogs.
type ContentType string

const (
	ContentTypeMovie ContentType = "movie"
	ContentTypeTV    ContentType = "tv"
)

// QueryMode is the remote query shape a FilterState maps to.
type QueryMode string

const (
	ModeDiscover QueryMode = "discover"
	ModeSearch   QueryMode = "search"
)

// SortKey names the upstream sort orders exposed to the display layer.
type SortKey string

const (
	SortPopularity      SortKey = "popularity"
	SortRatingDesc      SortKey = "rating"
	SortReleaseDateDesc SortKey = "release_date"
	SortRevenueDesc     SortKey = "revenue"
)

// ErrInvalidFilter marks a FilterState that is rejected before any network
// call is attempted.
var ErrInvalidFilter = errors.New("invalid filter")

// FilterState is the user-selected browse criteria. Zero values mean
// "unrestricted": an empty Query selects discover mode, a zero year range
// adds no date bounds, a zero MinRating adds no rating floor.
type FilterState struct {
	ContentType ContentType
	GenreID     string
	YearFrom    int
	YearTo      int
	Language    string
	MinRating   float64
	SortKey     SortKey
	Query       string
	Page        int
}

// QueryBuilder translates a FilterState into the parameter set for one of
// the remote query shapes. It is pure: the same FilterState always yields
// the same parameters, and the API key is injected later at the gateway
// boundary. Vote-count thresholds are configurable because the upstream
// defaults are a policy choice, not an API constant.
type QueryBuilder struct {
	// Locale is the fixed display locale sent with every request.
	Locale string
	// VoteCountBase is the sample-size floor applied in discover mode when
	// no rating filter narrows the results.
	VoteCountBase int
	// VoteCountRated is the relaxed floor applied whenever a minimum-rating
	// filter is active.
	VoteCountRated int
}

const (
	defaultLocale         = "en-US"
	defaultVoteCountBase  = 50
	defaultVoteCountRated = 20
)

// NewQueryBuilder returns a builder with the reference policy values.
func NewQueryBuilder() QueryBuilder {
	return QueryBuilder{
		Locale:         defaultLocale,
		VoteCountBase:  defaultVoteCountBase,
		VoteCountRated: defaultVoteCountRated,
	}
}

// Build validates the filter set and produces the query mode plus the flat
// parameter map for the catalog gateway.
func (b QueryBuilder) Build(f FilterState) (QueryMode, url.Values, error) {
	if err := validateFilters(f); err != nil {
		return "", nil, err
	}

	locale := b.Locale
	if locale == "" {
		locale = defaultLocale
	}
	voteBase := b.VoteCountBase
	if voteBase <= 0 {
		voteBase = defaultVoteCountBase
	}
	voteRated := b.VoteCountRated
	if voteRated <= 0 {
		voteRated = defaultVoteCountRated
	}

	page := f.Page
	if page < 1 {
		page = 1
	}

	params := url.Values{}
	params.Set("language", locale)
	params.Set("include_adult", "false")
	params.Set("page", strconv.Itoa(page))

	q := strings.TrimSpace(f.Query)
	if q != "" {
		params.Set("query", q)
		params.Set("sort_by", "popularity.desc")
		if f.MinRating > 0 {
			params.Set("vote_average.gte", formatRating(f.MinRating))
			params.Set("vote_count.gte", strconv.Itoa(voteRated))
		}
		return ModeSearch, params, nil
	}

	params.Set("sort_by", sortToken(f.SortKey, f.ContentType))
	if f.MinRating > 0 {
		params.Set("vote_average.gte", formatRating(f.MinRating))
		params.Set("vote_count.gte", strconv.Itoa(voteRated))
	} else {
		params.Set("vote_count.gte", strconv.Itoa(voteBase))
	}
	if f.YearFrom > 0 && f.YearTo > 0 {
		field := dateField(f.ContentType)
		params.Set(field+".gte", fmt.Sprintf("%04d-01-01", f.YearFrom))
		params.Set(field+".lte", fmt.Sprintf("%04d-12-31", f.YearTo))
	}
	if lang := strings.TrimSpace(f.Language); lang != "" {
		params.Set("with_original_language", lang)
	}
	if genre := strings.TrimSpace(f.GenreID); genre != "" {
		params.Set("with_genres", genre)
	}
	return ModeDiscover, params, nil
}

func validateFilters(f FilterState) error {
	if f.YearFrom > 0 && f.YearTo > 0 && f.YearFrom > f.YearTo {
		return fmt.Errorf("%w: year range %d-%d is inverted", ErrInvalidFilter, f.YearFrom, f.YearTo)
	}
	if f.MinRating < 0 || f.MinRating > 10 {
		return fmt.Errorf("%w: minimum rating %.1f outside [0,10]", ErrInvalidFilter, f.MinRating)
	}
	return nil
}

// sortToken maps a SortKey to the upstream sort parameter. Release-date
// ordering uses the content type's date field.
func sortToken(key SortKey, ct ContentType) string {
	switch key {
	case SortRatingDesc:
		return "vote_average.desc"
	case SortReleaseDateDesc:
		return dateField(ct) + ".desc"
	case SortRevenueDesc:
		return "revenue.desc"
	default:
		return "popularity.desc"
	}
}

func dateField(ct ContentType) string {
	if ct == ContentTypeTV {
		return "first_air_date"
	}
	return "primary_release_date"
}

func formatRating(r float64) string {
	return strconv.FormatFloat(r, 'f', 1, 64)
}
