package catalog

import (
	"strings"

	"cinebrowse/models"
)

// SelectTrailer picks the single best video for a title using a three-tier
// fallback: an official YouTube trailer, then any YouTube trailer, then a
// YouTube teaser. Within a tier the first record in upstream order wins;
// upstream puts the most relevant video first, so no secondary ranking is
// applied. Returns nil when no tier matches, which callers treat as "no
// trailer available" rather than a fault.
func SelectTrailer(videos []models.Video) *models.Video {
	pick := func(match func(models.Video) bool) *models.Video {
		for i := range videos {
			if !strings.EqualFold(videos[i].Site, "YouTube") {
				continue
			}
			if match(videos[i]) {
				v := videos[i]
				return &v
			}
		}
		return nil
	}

	if v := pick(func(v models.Video) bool {
		return v.Type == "Trailer" && strings.Contains(strings.ToLower(v.Name), "official")
	}); v != nil {
		return v
	}
	if v := pick(func(v models.Video) bool { return v.Type == "Trailer" }); v != nil {
		return v
	}
	return pick(func(v models.Video) bool { return v.Type == "Teaser" })
}
