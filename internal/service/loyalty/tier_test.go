package loyalty

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/beeloyalty/engine/internal/domain/models"
)

func TestTierFor(t *testing.T) {
	tests := []struct {
		spending float64
		want     models.Tier
	}{
		{0, models.TierBuddy},
		{1999.99, models.TierBuddy},
		{2000, models.TierFan},
		{2100, models.TierFan},
		{4999.99, models.TierFan},
		{5000, models.TierElite},
		{12500, models.TierElite},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, TierFor(tt.spending), "spending %.2f", tt.spending)
	}
}
