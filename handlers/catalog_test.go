package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"

	"cinebrowse/models"
	"cinebrowse/services/catalog"
)

type fakeCatalog struct {
	browseFn  func(catalog.FilterState) (catalog.BrowseResult, error)
	genresFn  func(catalog.ContentType) []models.Genre
	trailerFn func(catalog.ContentType, int64) *models.Video
	similarFn func(catalog.ContentType, int64) []models.ContentItem
	bundleFn  func(catalog.ContentType, int64) models.DetailsBundle
	imdbFn    func(catalog.ContentType, int64) string
}

func (f *fakeCatalog) Browse(_ context.Context, fs catalog.FilterState) (catalog.BrowseResult, error) {
	if f.browseFn != nil {
		return f.browseFn(fs)
	}
	return catalog.BrowseResult{Items: []models.ContentItem{}}, nil
}

func (f *fakeCatalog) Genres(_ context.Context, ct catalog.ContentType) []models.Genre {
	if f.genresFn != nil {
		return f.genresFn(ct)
	}
	return []models.Genre{}
}

func (f *fakeCatalog) Trailer(_ context.Context, ct catalog.ContentType, id int64) *models.Video {
	if f.trailerFn != nil {
		return f.trailerFn(ct, id)
	}
	return nil
}

func (f *fakeCatalog) Similar(_ context.Context, ct catalog.ContentType, id int64) []models.ContentItem {
	if f.similarFn != nil {
		return f.similarFn(ct, id)
	}
	return nil
}

func (f *fakeCatalog) DetailsBundle(_ context.Context, ct catalog.ContentType, id int64) models.DetailsBundle {
	if f.bundleFn != nil {
		return f.bundleFn(ct, id)
	}
	return models.DetailsBundle{}
}

func (f *fakeCatalog) IMDBID(_ context.Context, ct catalog.ContentType, id int64) string {
	if f.imdbFn != nil {
		return f.imdbFn(ct, id)
	}
	return ""
}

type fakeRatings struct {
	byIMDBID func(string) *models.ExternalRatings
}

func (f *fakeRatings) ByIMDBID(_ context.Context, imdbID string) *models.ExternalRatings {
	if f.byIMDBID != nil {
		return f.byIMDBID(imdbID)
	}
	return nil
}

func serve(h *CatalogHandler, target string) *httptest.ResponseRecorder {
	r := mux.NewRouter()
	h.Register(r)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.NewDecoder(rec.Body).Decode(&out); err != nil {
		t.Fatalf("decoding response body: %v", err)
	}
	return out
}

func TestBrowsePassesFilters(t *testing.T) {
	var got catalog.FilterState
	h := NewCatalogHandler(&fakeCatalog{
		browseFn: func(fs catalog.FilterState) (catalog.BrowseResult, error) {
			got = fs
			return catalog.BrowseResult{Mode: catalog.ModeDiscover, Items: []models.ContentItem{}, Page: fs.Page}, nil
		},
	}, nil)

	rec := serve(h, "/browse?type=tv&genreId=18&yearFrom=2010&yearTo=2020&minRating=7.5&sort=rating&language=ko&page=2")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if got.ContentType != catalog.ContentTypeTV || got.GenreID != "18" ||
		got.YearFrom != 2010 || got.YearTo != 2020 || got.MinRating != 7.5 ||
		got.SortKey != catalog.SortRatingDesc || got.Language != "ko" || got.Page != 2 {
		t.Fatalf("filters not passed through: %+v", got)
	}
}

func TestBrowseInvalidType(t *testing.T) {
	h := NewCatalogHandler(&fakeCatalog{}, nil)
	if rec := serve(h, "/browse?type=podcast"); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestBrowseInvalidMinRating(t *testing.T) {
	h := NewCatalogHandler(&fakeCatalog{}, nil)
	if rec := serve(h, "/browse?minRating=abc"); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestBrowseInvalidFilterFromService(t *testing.T) {
	h := NewCatalogHandler(&fakeCatalog{
		browseFn: func(catalog.FilterState) (catalog.BrowseResult, error) {
			return catalog.BrowseResult{}, fmt.Errorf("year range inverted: %w", catalog.ErrInvalidFilter)
		},
	}, nil)
	if rec := serve(h, "/browse?yearFrom=2020&yearTo=2010"); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestBrowseUnexpectedServiceError(t *testing.T) {
	h := NewCatalogHandler(&fakeCatalog{
		browseFn: func(catalog.FilterState) (catalog.BrowseResult, error) {
			return catalog.BrowseResult{}, errors.New("boom")
		},
	}, nil)
	if rec := serve(h, "/browse"); rec.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", rec.Code)
	}
}

func TestGenres(t *testing.T) {
	h := NewCatalogHandler(&fakeCatalog{
		genresFn: func(ct catalog.ContentType) []models.Genre {
			if ct != catalog.ContentTypeMovie {
				t.Errorf("expected movie default, got %q", ct)
			}
			return []models.Genre{{ID: 28, Name: "Action"}}
		},
	}, nil)

	rec := serve(h, "/genres")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := decodeBody[map[string][]models.Genre](t, rec)
	if len(body["genres"]) != 1 || body["genres"][0].Name != "Action" {
		t.Fatalf("unexpected body: %v", body)
	}
}

func TestDetailsWithRatings(t *testing.T) {
	h := NewCatalogHandler(&fakeCatalog{
		bundleFn: func(ct catalog.ContentType, id int64) models.DetailsBundle {
			return models.DetailsBundle{
				Details: &models.Details{ID: id, Title: "Fight Club", IMDBID: "tt0137523"},
			}
		},
	}, &fakeRatings{
		byIMDBID: func(imdbID string) *models.ExternalRatings {
			if imdbID != "tt0137523" {
				t.Errorf("unexpected imdb id %q", imdbID)
			}
			return &models.ExternalRatings{IMDB: "8.8/10", RottenTomatoes: "79%"}
		},
	})

	rec := serve(h, "/details?type=movie&id=550")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	bundle := decodeBody[models.DetailsBundle](t, rec)
	if bundle.Details == nil || bundle.Details.Title != "Fight Club" {
		t.Fatalf("unexpected details: %+v", bundle.Details)
	}
	if bundle.Ratings == nil || bundle.Ratings.IMDB != "8.8/10" {
		t.Fatalf("expected ratings attached, got %+v", bundle.Ratings)
	}
}

func TestDetailsResolvesMissingIMDBID(t *testing.T) {
	var lookedUp bool
	h := NewCatalogHandler(&fakeCatalog{
		bundleFn: func(ct catalog.ContentType, id int64) models.DetailsBundle {
			return models.DetailsBundle{Details: &models.Details{ID: id, Title: "Show"}}
		},
		imdbFn: func(catalog.ContentType, int64) string {
			lookedUp = true
			return "tt1234567"
		},
	}, &fakeRatings{
		byIMDBID: func(string) *models.ExternalRatings {
			return &models.ExternalRatings{IMDB: "7.0/10"}
		},
	})

	rec := serve(h, "/details?type=tv&id=1399")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !lookedUp {
		t.Fatal("expected external id fallback lookup")
	}
}

func TestDetailsNotFound(t *testing.T) {
	h := NewCatalogHandler(&fakeCatalog{}, nil)
	if rec := serve(h, "/details?id=999"); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestDetailsInvalidID(t *testing.T) {
	h := NewCatalogHandler(&fakeCatalog{}, nil)
	for _, target := range []string{"/details", "/details?id=0", "/details?id=abc", "/details?id=-5"} {
		if rec := serve(h, target); rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", target, rec.Code)
		}
	}
}

func TestTrailerNullWhenAbsent(t *testing.T) {
	h := NewCatalogHandler(&fakeCatalog{}, nil)
	rec := serve(h, "/trailer?id=550")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := decodeBody[map[string]*models.Video](t, rec)
	if trailer, ok := body["trailer"]; !ok || trailer != nil {
		t.Fatalf("expected explicit null trailer, got %v", body)
	}
}

func TestTrailerFound(t *testing.T) {
	h := NewCatalogHandler(&fakeCatalog{
		trailerFn: func(catalog.ContentType, int64) *models.Video {
			return &models.Video{Key: "abc123", Name: "Official Trailer", Site: "YouTube", Type: "Trailer"}
		},
	}, nil)
	rec := serve(h, "/trailer?type=movie&id=550")
	body := decodeBody[map[string]*models.Video](t, rec)
	if body["trailer"] == nil || body["trailer"].Key != "abc123" {
		t.Fatalf("unexpected trailer: %+v", body["trailer"])
	}
}

func TestSimilarEmptyIsArray(t *testing.T) {
	h := NewCatalogHandler(&fakeCatalog{}, nil)
	rec := serve(h, "/similar?id=550")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body map[string]json.RawMessage
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if string(body["items"]) != "[]" {
		t.Fatalf("expected empty array, got %s", body["items"])
	}
}

func TestExternalRatingsRequiresID(t *testing.T) {
	h := NewCatalogHandler(&fakeCatalog{}, &fakeRatings{})
	if rec := serve(h, "/ratings"); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestExternalRatingsUnavailable(t *testing.T) {
	h := NewCatalogHandler(&fakeCatalog{}, &fakeRatings{})
	rec := serve(h, "/ratings?imdbId=tt0137523")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := decodeBody[models.ExternalRatings](t, rec)
	if body.IMDB != "" || body.RottenTomatoes != "" {
		t.Fatalf("expected empty ratings object, got %+v", body)
	}
}
