package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/avast/retry-go/v4"

	"cinebrowse/models"
)

// Minimal TMDB v3 client covering the discover/search/detail endpoints the
// catalog service needs. The API key is attached here and nowhere else.

const (
	defaultTMDBBaseURL = "https://api.themoviedb.org/3"
	tmdbImageBaseURL   = "https://image.tmdb.org/t/p/"

	tmdbPosterSize  = "w500"
	tmdbProfileSize = "w185"
)

type tmdbClient struct {
	apiKey   string
	language string
	baseURL  string
	httpc    *http.Client

	throttleMu  sync.Mutex
	lastRequest time.Time
	minInterval time.Duration
}

func newTMDBClient(apiKey, language string, httpc *http.Client) *tmdbClient {
	if httpc == nil {
		httpc = &http.Client{Timeout: 15 * time.Second}
	}
	return &tmdbClient{
		apiKey:      apiKey,
		language:    normalizeLanguage(language),
		baseURL:     defaultTMDBBaseURL,
		httpc:       httpc,
		minInterval: 20 * time.Millisecond,
	}
}

func (c *tmdbClient) isConfigured() bool {
	return strings.TrimSpace(c.apiKey) != ""
}

// normalizeLanguage converts loose language inputs to the ll-CC form TMDB
// expects: "" and "en" become "en-US", "pt-br" becomes "pt-BR".
func normalizeLanguage(lang string) string {
	lang = strings.TrimSpace(strings.ReplaceAll(lang, "_", "-"))
	if lang == "" {
		return "en-US"
	}
	parts := strings.SplitN(lang, "-", 2)
	code := strings.ToLower(parts[0])
	if len(parts) == 1 || parts[1] == "" {
		return code + "-US"
	}
	return code + "-" + strings.ToUpper(parts[1])
}

// imageURL joins a TMDB image path with the CDN base for the given size.
// Empty paths map to an empty URL so the caller can treat the asset as absent.
func imageURL(path, size string) string {
	if strings.TrimSpace(path) == "" {
		return ""
	}
	return tmdbImageBaseURL + size + path
}

func (c *tmdbClient) throttle() {
	c.throttleMu.Lock()
	defer c.throttleMu.Unlock()
	if since := time.Since(c.lastRequest); since < c.minInterval {
		time.Sleep(c.minInterval - since)
	}
	c.lastRequest = time.Now()
}

// doGET issues an authenticated GET with bounded retries. 429 and 5xx are
// retried with backoff; other non-success statuses and decode failures are
// returned immediately.
func (c *tmdbClient) doGET(ctx context.Context, path string, q url.Values, v any) error {
	if !c.isConfigured() {
		return fmt.Errorf("tmdb client not configured")
	}
	if q == nil {
		q = url.Values{}
	}
	q.Set("api_key", c.apiKey)
	u := c.baseURL + path + "?" + q.Encode()

	return retry.Do(
		func() error {
			c.throttle()
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
			if err != nil {
				return retry.Unrecoverable(err)
			}
			resp, err := c.httpc.Do(req)
			if err != nil {
				return fmt.Errorf("tmdb get %s: %w", path, err)
			}
			defer resp.Body.Close()
			if resp.StatusCode >= 300 {
				body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
				reqErr := fmt.Errorf("tmdb get %s failed: %s: %s", path, resp.Status, strings.TrimSpace(string(body)))
				if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
					return reqErr
				}
				return retry.Unrecoverable(reqErr)
			}
			if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
				return retry.Unrecoverable(fmt.Errorf("tmdb decode %s: %w", path, err))
			}
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(3),
		retry.Delay(300*time.Millisecond),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(attempt uint, err error) {
			log.Printf("[tmdb] retrying GET %s (attempt %d): %v", path, attempt+1, err)
		}),
	)
}

// contentPage is the common envelope of discover, search and similar
// responses.
type contentPage struct {
	Page         int                  `json:"page"`
	Results      []models.ContentItem `json:"results"`
	TotalPages   int                  `json:"total_pages"`
	TotalResults int                  `json:"total_results"`
}

func (c *tmdbClient) discover(ctx context.Context, ct ContentType, params url.Values) (contentPage, error) {
	var page contentPage
	if err := c.doGET(ctx, "/discover/"+string(ct), params, &page); err != nil {
		return contentPage{}, err
	}
	return page, nil
}

func (c *tmdbClient) search(ctx context.Context, ct ContentType, params url.Values) (contentPage, error) {
	var page contentPage
	if err := c.doGET(ctx, "/search/"+string(ct), params, &page); err != nil {
		return contentPage{}, err
	}
	return page, nil
}

func (c *tmdbClient) similar(ctx context.Context, ct ContentType, id int64) (contentPage, error) {
	params := url.Values{}
	params.Set("language", c.language)
	params.Set("page", "1")
	var page contentPage
	if err := c.doGET(ctx, fmt.Sprintf("/%s/%d/similar", ct, id), params, &page); err != nil {
		return contentPage{}, err
	}
	return page, nil
}

func (c *tmdbClient) videos(ctx context.Context, ct ContentType, id int64) ([]models.Video, error) {
	params := url.Values{}
	params.Set("language", c.language)
	var resp struct {
		Results []models.Video `json:"results"`
	}
	if err := c.doGET(ctx, fmt.Sprintf("/%s/%d/videos", ct, id), params, &resp); err != nil {
		return nil, err
	}
	return resp.Results, nil
}

func (c *tmdbClient) genres(ctx context.Context, ct ContentType) ([]models.Genre, error) {
	params := url.Values{}
	params.Set("language", c.language)
	var resp struct {
		Genres []models.Genre `json:"genres"`
	}
	if err := c.doGET(ctx, "/genre/"+string(ct)+"/list", params, &resp); err != nil {
		return nil, err
	}
	return resp.Genres, nil
}

type tmdbCastMember struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Character   string `json:"character"`
	ProfilePath string `json:"profile_path"`
}

// tmdbDetail covers movie and TV detail documents plus the appended
// sub-responses; the two shapes share this struct with type-specific fields
// left zero.
type tmdbDetail struct {
	ID               int64          `json:"id"`
	Title            string         `json:"title"`
	Name             string         `json:"name"`
	Tagline          string         `json:"tagline"`
	Overview         string         `json:"overview"`
	PosterPath       string         `json:"poster_path"`
	BackdropPath     string         `json:"backdrop_path"`
	ReleaseDate      string         `json:"release_date"`
	FirstAirDate     string         `json:"first_air_date"`
	Runtime          int            `json:"runtime"`
	NumberOfSeasons  int            `json:"number_of_seasons"`
	NumberOfEpisodes int            `json:"number_of_episodes"`
	Genres           []models.Genre `json:"genres"`
	VoteAverage      float64        `json:"vote_average"`
	IMDBID           string         `json:"imdb_id"`
	Credits          struct {
		Cast []tmdbCastMember `json:"cast"`
	} `json:"credits"`
	Videos struct {
		Results []models.Video `json:"results"`
	} `json:"videos"`
	Similar contentPage `json:"similar"`
}

// details fetches the full record for a title. Movies append credits; TV
// additionally appends videos and similar, which the detail view consumes
// in one round trip.
func (c *tmdbClient) details(ctx context.Context, ct ContentType, id int64) (tmdbDetail, error) {
	params := url.Values{}
	params.Set("language", c.language)
	if ct == ContentTypeTV {
		params.Set("append_to_response", "credits,videos,similar")
	} else {
		params.Set("append_to_response", "credits")
	}
	var detail tmdbDetail
	if err := c.doGET(ctx, fmt.Sprintf("/%s/%d", ct, id), params, &detail); err != nil {
		return tmdbDetail{}, err
	}
	return detail, nil
}

func (c *tmdbClient) externalIDs(ctx context.Context, ct ContentType, id int64) (string, error) {
	var resp struct {
		IMDBID string `json:"imdb_id"`
	}
	if err := c.doGET(ctx, fmt.Sprintf("/%s/%d/external_ids", ct, id), nil, &resp); err != nil {
		return "", err
	}
	return strings.TrimSpace(resp.IMDBID), nil
}

// watchProviders returns the US availability buckets for a title.
func (c *tmdbClient) watchProviders(ctx context.Context, ct ContentType, id int64) (*models.WatchProviders, error) {
	var resp struct {
		Results map[string]struct {
			Flatrate []models.Provider `json:"flatrate"`
			Rent     []models.Provider `json:"rent"`
			Buy      []models.Provider `json:"buy"`
		} `json:"results"`
	}
	if err := c.doGET(ctx, fmt.Sprintf("/%s/%d/watch/providers", ct, id), nil, &resp); err != nil {
		return nil, err
	}
	region, ok := resp.Results["US"]
	if !ok {
		return nil, nil
	}
	return &models.WatchProviders{
		Stream: region.Flatrate,
		Rent:   region.Rent,
		Buy:    region.Buy,
	}, nil
}

func parseTMDBYear(dates ...string) int {
	for _, d := range dates {
		if len(d) < 4 {
			continue
		}
		if year, err := strconv.Atoi(d[:4]); err == nil && year > 0 {
			return year
		}
	}
	return 0
}
