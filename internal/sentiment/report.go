package sentiment

import (
	"strings"

	"github.com/spacesedan/consia/internal/models"
	"github.com/spacesedan/consia/internal/utils"
)

// Aggregate classifies every non-blank text and tallies the report. Blank
// texts are left out of the counts and the percentages. The method tag is the
// one that labelled the majority of texts.
func (c *Classifier) Aggregate(texts []string) models.SentimentReport {
	var report models.SentimentReport
	methods := make(map[string]int, 2)

	total := 0
	for _, text := range texts {
		if strings.TrimSpace(text) == "" {
			continue
		}
		total++

		label := c.Classify(text)
		methods[label.Method]++

		switch label.Label {
		case models.SentimentPositive:
			report.PositiveCount++
		case models.SentimentNegative:
			report.NegativeCount++
		default:
			report.NeutralCount++
		}
	}

	if total == 0 {
		return models.SentimentReport{Method: models.METHOD_NONE}
	}

	report.TotalReviews = total
	report.PositivePercent = utils.Percent(report.PositiveCount, total)
	report.NegativePercent = utils.Percent(report.NegativeCount, total)
	report.NeutralPercent = utils.Percent(report.NeutralCount, total)

	report.Method = models.METHOD_LEXICAL
	if methods[models.METHOD_ML_MODEL] > methods[models.METHOD_LEXICAL] {
		report.Method = models.METHOD_ML_MODEL
	}

	return report
}
