// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package ingest

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/ManuGH/vidshare/internal/domain/video"
)

type categoryRule struct {
	category video.Category
	keywords []string
}

// categoryRules are evaluated in order; the first rule with a keyword hit wins.
var categoryRules = []categoryRule{
	{video.CategorySport, []string{"football", "sport", "goal", "match"}},
	{video.CategoryLive, []string{"live", "stream"}},
	{video.CategoryMovies, []string{"movie", "film", "trailer"}},
}

var lower = cases.Lower(language.Und)

// InferCategory guesses a category from title keywords, defaulting to music.
func InferCategory(title string) video.Category {
	t := lower.String(title)
	for _, rule := range categoryRules {
		for _, kw := range rule.keywords {
			if strings.Contains(t, kw) {
				return rule.category
			}
		}
	}
	return video.CategoryMusic
}
