package usecase

import (
	"sort"

	"github.com/montanaflynn/stats"
	"github.com/naka-gawa/portfolio-feed/internal/domain"
)

// LanguageCount is the number of repositories using one primary language.
type LanguageCount struct {
	Language string `json:"language"`
	Count    int    `json:"count"`
}

// FeedSummary holds aggregate figures over a fetched feed.
type FeedSummary struct {
	Repositories int             `json:"repositories"`
	TotalStars   int             `json:"total_stars"`
	MeanStars    float64         `json:"mean_stars"`
	MedianStars  float64         `json:"median_stars"`
	Languages    []LanguageCount `json:"languages"`
}

// SummarizeFeed aggregates star counts and languages. Repositories without a
// language are counted under UnknownLanguage. Languages are sorted by count,
// then by name, for consistent output.
func SummarizeFeed(repos []domain.RepositorySummary) FeedSummary {
	summary := FeedSummary{Repositories: len(repos), Languages: []LanguageCount{}}
	if len(repos) == 0 {
		return summary
	}

	stars := make(stats.Float64Data, 0, len(repos))
	byLanguage := make(map[string]int)
	for _, repo := range repos {
		stars = append(stars, float64(repo.StargazersCount))
		summary.TotalStars += repo.StargazersCount
		lang := repo.Language
		if lang == "" {
			lang = UnknownLanguage
		}
		byLanguage[lang]++
	}

	// Errors only occur on empty input, which is handled above.
	summary.MeanStars, _ = stats.Mean(stars)
	summary.MedianStars, _ = stats.Median(stars)

	for lang, count := range byLanguage {
		summary.Languages = append(summary.Languages, LanguageCount{Language: lang, Count: count})
	}
	sort.Slice(summary.Languages, func(i, j int) bool {
		if summary.Languages[i].Count != summary.Languages[j].Count {
			return summary.Languages[i].Count > summary.Languages[j].Count
		}
		return summary.Languages[i].Language < summary.Languages[j].Language
	})
	return summary
}
