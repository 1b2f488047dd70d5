package bootstrap

import (
	"context"
	"testing"

	"github.com/spacesedan/consia/config"
	"github.com/spacesedan/consia/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithoutOptionalDependencies(t *testing.T) {
	app := New(context.Background(), config.Config{ModelDir: t.TempDir()}, "test")
	defer app.Close()

	require.NotNil(t, app.Service)
	assert.Equal(t, CACHE_DISABLED, app.CacheStatus())
	assert.False(t, app.Models.Sentiment.Available())
	assert.False(t, app.Models.FakeReview.Available())

	v := app.Service.Analyze(context.Background(), models.ProductReviews{Title: "Kettle"})
	assert.Equal(t, models.RECOMMENDATION_NOT_ENOUGH_DATA, v.Recommendation)
}
