package loyalty

import "github.com/beeloyalty/engine/internal/domain/models"

// OrderTotal sums price x quantity across all order lines, with no rounding.
func OrderTotal(items []models.OrderItem) float64 {
	var total float64
	for _, item := range items {
		total += item.Price * float64(item.Quantity)
	}
	return total
}

// CalculatePoints computes BeePoints earned for an order. The base rate is
// 10 points per ₱100 for dine-in and 15 per ₱100 for app and delivery,
// floored per ₱100 bracket, then scaled by the tier multiplier and floored
// again. Unknown channels earn nothing.
func CalculatePoints(orderTotal float64, channel models.Channel, tier models.Tier) int {
	var base int
	switch channel {
	case models.ChannelDineIn:
		base = int(orderTotal/100) * 10
	case models.ChannelApp, models.ChannelDelivery:
		base = int(orderTotal/100) * 15
	}

	return int(float64(base) * tierMultiplier(tier))
}

func tierMultiplier(tier models.Tier) float64 {
	switch tier {
	case models.TierFan:
		return 1.2
	case models.TierElite:
		return 1.5
	default:
		return 1.0
	}
}
