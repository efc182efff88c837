package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"cinebrowse/models"
	"cinebrowse/services/catalog"
)

type catalogService interface {
	Browse(context.Context, catalog.FilterState) (catalog.BrowseResult, error)
	Genres(context.Context, catalog.ContentType) []models.Genre
	Trailer(context.Context, catalog.ContentType, int64) *models.Video
	Similar(context.Context, catalog.ContentType, int64) []models.ContentItem
	DetailsBundle(context.Context, catalog.ContentType, int64) models.DetailsBundle
	IMDBID(context.Context, catalog.ContentType, int64) string
}

var _ catalogService = (*catalog.Service)(nil)

// ratingsProvider supplies third-party ratings for the detail view.
type ratingsProvider interface {
	ByIMDBID(context.Context, string) *models.ExternalRatings
}

type CatalogHandler struct {
	Service catalogService
	Ratings ratingsProvider
}

func NewCatalogHandler(service catalogService, ratings ratingsProvider) *CatalogHandler {
	return &CatalogHandler{Service: service, Ratings: ratings}
}

// Register mounts the catalog routes on the given router.
func (h *CatalogHandler) Register(r *mux.Router) {
	r.HandleFunc("/browse", h.Browse).Methods(http.MethodGet)
	r.HandleFunc("/genres", h.Genres).Methods(http.MethodGet)
	r.HandleFunc("/details", h.Details).Methods(http.MethodGet)
	r.HandleFunc("/trailer", h.Trailer).Methods(http.MethodGet)
	r.HandleFunc("/similar", h.Similar).Methods(http.MethodGet)
	r.HandleFunc("/ratings", h.ExternalRatings).Methods(http.MethodGet)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// parseContentType maps loose type values to a catalog content type.
// Empty input defaults to movies, matching the original UI default.
func parseContentType(value string) (catalog.ContentType, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "movie", "movies", "film", "films":
		return catalog.ContentTypeMovie, true
	case "tv", "show", "shows", "series":
		return catalog.ContentTypeTV, true
	default:
		return "", false
	}
}

func parseSortKey(value string) catalog.SortKey {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "rating":
		return catalog.SortRatingDesc
	case "release_date", "latest":
		return catalog.SortReleaseDateDesc
	case "revenue":
		return catalog.SortRevenueDesc
	default:
		return catalog.SortPopularity
	}
}

func parseID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(r.URL.Query().Get("id")), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// Browse serves one page of discover or search results.
func (h *CatalogHandler) Browse(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	ct, ok := parseContentType(q.Get("type"))
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid type")
		return
	}

	filters := catalog.FilterState{
		ContentType: ct,
		GenreID:     strings.TrimSpace(q.Get("genreId")),
		Language:    strings.TrimSpace(q.Get("language")),
		SortKey:     parseSortKey(q.Get("sort")),
		Query:       strings.TrimSpace(q.Get("q")),
	}
	if v := strings.TrimSpace(q.Get("yearFrom")); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			filters.YearFrom = parsed
		}
	}
	if v := strings.TrimSpace(q.Get("yearTo")); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			filters.YearTo = parsed
		}
	}
	if v := strings.TrimSpace(q.Get("minRating")); v != "" {
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid minRating")
			return
		}
		filters.MinRating = parsed
	}
	if v := strings.TrimSpace(q.Get("page")); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			filters.Page = parsed
		}
	}

	result, err := h.Service.Browse(r.Context(), filters)
	if err != nil {
		if errors.Is(err, catalog.ErrInvalidFilter) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// Genres serves the memoized genre taxonomy for a content type.
func (h *CatalogHandler) Genres(w http.ResponseWriter, r *http.Request) {
	ct, ok := parseContentType(r.URL.Query().Get("type"))
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid type")
		return
	}
	genres := h.Service.Genres(r.Context(), ct)
	writeJSON(w, http.StatusOK, map[string][]models.Genre{"genres": genres})
}

// Details serves the aggregated detail bundle for one title, including
// OMDb ratings when an IMDb id resolves.
func (h *CatalogHandler) Details(w http.ResponseWriter, r *http.Request) {
	ct, ok := parseContentType(r.URL.Query().Get("type"))
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid type")
		return
	}
	id, ok := parseID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	bundle := h.Service.DetailsBundle(r.Context(), ct, id)
	if bundle.Details == nil {
		writeError(w, http.StatusNotFound, "title not found")
		return
	}

	if h.Ratings != nil {
		imdbID := bundle.Details.IMDBID
		if imdbID == "" {
			imdbID = h.Service.IMDBID(r.Context(), ct, id)
		}
		if imdbID != "" {
			bundle.Ratings = h.Ratings.ByIMDBID(r.Context(), imdbID)
		}
	}
	writeJSON(w, http.StatusOK, bundle)
}

// Trailer serves the selected trailer for a title, null when none exists.
func (h *CatalogHandler) Trailer(w http.ResponseWriter, r *http.Request) {
	ct, ok := parseContentType(r.URL.Query().Get("type"))
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid type")
		return
	}
	id, ok := parseID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	trailer := h.Service.Trailer(r.Context(), ct, id)
	writeJSON(w, http.StatusOK, map[string]*models.Video{"trailer": trailer})
}

// Similar serves poster-bearing similar titles.
func (h *CatalogHandler) Similar(w http.ResponseWriter, r *http.Request) {
	ct, ok := parseContentType(r.URL.Query().Get("type"))
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid type")
		return
	}
	id, ok := parseID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	items := h.Service.Similar(r.Context(), ct, id)
	if items == nil {
		items = []models.ContentItem{}
	}
	writeJSON(w, http.StatusOK, map[string][]models.ContentItem{"items": items})
}

// ExternalRatings serves OMDb ratings for an IMDb id; an empty object means
// no ratings are available.
func (h *CatalogHandler) ExternalRatings(w http.ResponseWriter, r *http.Request) {
	imdbID := strings.TrimSpace(r.URL.Query().Get("imdbId"))
	if imdbID == "" {
		writeError(w, http.StatusBadRequest, "imdbId is required")
		return
	}
	if h.Ratings == nil {
		writeJSON(w, http.StatusOK, models.ExternalRatings{})
		return
	}
	ratings := h.Ratings.ByIMDBID(r.Context(), imdbID)
	if ratings == nil {
		writeJSON(w, http.StatusOK, models.ExternalRatings{})
		return
	}
	writeJSON(w, http.StatusOK, ratings)
}
