package decision

import (
	"testing"

	"github.com/spacesedan/consia/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestDecide(t *testing.T) {
	cases := []struct {
		name  string
		in    Inputs
		label string
		tier  models.ConfidenceTier
	}{
		{
			name:  "strong",
			in:    Inputs{PositivePercent: 65, FakePercent: 10, ValueScore: 50, ReviewCount: 20},
			label: models.RECOMMENDATION_WORTH_BUYING,
			tier:  models.ConfidenceHigh,
		},
		{
			name:  "moderate",
			in:    Inputs{PositivePercent: 55, FakePercent: 28, ValueScore: 36, ReviewCount: 20},
			label: models.RECOMMENDATION_WORTH_BUYING,
			tier:  models.ConfidenceModerate,
		},
		{
			name:  "mixed",
			in:    Inputs{PositivePercent: 45, NeutralPercent: 35, FakePercent: 20, ValueScore: 20, ReviewCount: 20},
			label: models.RECOMMENDATION_CONSIDER,
			tier:  models.ConfidenceLow,
		},
		{
			name:  "poor",
			in:    Inputs{PositivePercent: 20, NeutralPercent: 10, FakePercent: 5, ValueScore: 10, ReviewCount: 20},
			label: models.RECOMMENDATION_NOT_RECOMMENDED,
			tier:  models.ConfidenceLow,
		},
		{
			name:  "fake override beats worth buying",
			in:    Inputs{PositivePercent: 90, FakePercent: 45, ValueScore: 80, ReviewCount: 20},
			label: models.RECOMMENDATION_HIGH_FAKE,
			tier:  models.ConfidenceHigh,
		},
		{
			name:  "limited reviews override",
			in:    Inputs{PositivePercent: 80, FakePercent: 5, ValueScore: 70, ReviewCount: 3},
			label: models.RECOMMENDATION_LIMITED_REVIEWS,
			tier:  models.ConfidenceLow,
		},
		{
			name:  "fake override wins over limited reviews",
			in:    Inputs{PositivePercent: 80, FakePercent: 50, ValueScore: 70, ReviewCount: 2},
			label: models.RECOMMENDATION_HIGH_FAKE,
			tier:  models.ConfidenceHigh,
		},
		{
			name:  "fake exactly at override threshold",
			in:    Inputs{PositivePercent: 65, FakePercent: 40, ValueScore: 50, ReviewCount: 20},
			label: models.RECOMMENDATION_NOT_RECOMMENDED,
			tier:  models.ConfidenceLow,
		},
		{
			name:  "five reviews is enough",
			in:    Inputs{PositivePercent: 65, FakePercent: 10, ValueScore: 50, ReviewCount: 5},
			label: models.RECOMMENDATION_WORTH_BUYING,
			tier:  models.ConfidenceHigh,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			label, tier := Decide(tc.in)
			assert.Equal(t, tc.label, label)
			assert.Equal(t, tc.tier, tier)
		})
	}
}
