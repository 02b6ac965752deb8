package loyalty

import "github.com/beeloyalty/engine/internal/domain/models"

// Annual-spending thresholds for tier qualification, in pesos.
const (
	fanThreshold   = 2000
	eliteThreshold = 5000
)

// TierFor maps cumulative annual spending to a loyalty tier. It is evaluated
// fresh on every transaction against post-transaction spend; tiers are never
// cached or assigned independently.
func TierFor(annualSpending float64) models.Tier {
	switch {
	case annualSpending >= eliteThreshold:
		return models.TierElite
	case annualSpending >= fanThreshold:
		return models.TierFan
	default:
		return models.TierBuddy
	}
}
