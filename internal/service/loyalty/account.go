package loyalty

import (
	"fmt"
	"time"

	"github.com/beeloyalty/engine/internal/domain/models"
	"github.com/beeloyalty/engine/pkg/apierror"
)

// ApplyOrder applies one completed order's earn-path deltas to the account
// in memory and reports whether the tier changed. The tier is recomputed
// from the new cumulative annual spending, never carried over.
func ApplyOrder(acct *models.CustomerAccount, orderTotal float64, pointsEarned int, now time.Time) bool {
	profile := &acct.LoyaltyProfile
	priorTier := profile.Tier

	profile.TotalPoints += pointsEarned
	profile.PointsEarnedYTD += pointsEarned
	profile.AnnualSpending += orderTotal
	profile.Tier = TierFor(profile.AnnualSpending)
	profile.LastActivity = now
	acct.PurchaseBehavior.TotalOrders++

	return profile.Tier != priorTier
}

// ApplyRedemption applies the redeem-path deltas. A redemption that would
// drive the balance negative is rejected before any field changes.
func ApplyRedemption(acct *models.CustomerAccount, points int, now time.Time) error {
	profile := &acct.LoyaltyProfile

	if points > profile.TotalPoints {
		return apierror.Conflict(fmt.Sprintf(
			"Insufficient points. Current: %d, Required: %d", profile.TotalPoints, points))
	}

	profile.TotalPoints -= points
	profile.PointsRedeemedYTD += points
	profile.LastActivity = now

	return nil
}
