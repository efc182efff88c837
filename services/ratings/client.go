package ratings

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"cinebrowse/models"
)

// Client queries OMDb for third-party ratings (IMDb, Rotten Tomatoes).
// Ratings are decoration for the detail view, so every failure path returns
// nil instead of an error and the view simply omits the ratings row.

const defaultOMDBBaseURL = "https://www.omdbapi.com/"

type Client struct {
	apiKey  string
	baseURL string
	httpc   *http.Client
}

func NewClient(apiKey string, httpc *http.Client) *Client {
	if httpc == nil {
		httpc = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{apiKey: apiKey, baseURL: defaultOMDBBaseURL, httpc: httpc}
}

func (c *Client) isConfigured() bool {
	return strings.TrimSpace(c.apiKey) != ""
}

// ByIMDBID looks up ratings for an IMDb id.
func (c *Client) ByIMDBID(ctx context.Context, imdbID string) *models.ExternalRatings {
	imdbID = strings.TrimSpace(imdbID)
	if imdbID == "" {
		return nil
	}
	params := url.Values{}
	params.Set("i", imdbID)
	return c.fetch(ctx, params)
}

// ByTitle looks up ratings by title, optionally narrowed by release year.
func (c *Client) ByTitle(ctx context.Context, title string, year int) *models.ExternalRatings {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil
	}
	params := url.Values{}
	params.Set("t", title)
	if year > 0 {
		params.Set("y", strconv.Itoa(year))
	}
	return c.fetch(ctx, params)
}

type omdbResponse struct {
	Response string `json:"Response"`
	Error    string `json:"Error"`
	Ratings  []struct {
		Source string `json:"Source"`
		Value  string `json:"Value"`
	} `json:"Ratings"`
}

func (c *Client) fetch(ctx context.Context, params url.Values) *models.ExternalRatings {
	if !c.isConfigured() {
		return nil
	}
	params.Set("apikey", c.apiKey)
	u := c.baseURL + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil
	}
	resp, err := c.httpc.Do(req)
	if err != nil {
		log.Printf("[omdb] lookup failed: %v", err)
		return nil
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		log.Printf("[omdb] lookup failed: %s", resp.Status)
		return nil
	}

	var body omdbResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		log.Printf("[omdb] decode failed: %v", err)
		return nil
	}
	// OMDb reports misses with HTTP 200 and Response:"False".
	if strings.EqualFold(body.Response, "False") {
		return nil
	}

	out := &models.ExternalRatings{}
	for _, rating := range body.Ratings {
		switch rating.Source {
		case "Internet Movie Database":
			out.IMDB = rating.Value
		case "Rotten Tomatoes":
			out.RottenTomatoes = rating.Value
		}
	}
	if out.IMDB == "" && out.RottenTomatoes == "" {
		return nil
	}
	return out
}
