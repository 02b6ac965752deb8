package loyalty

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/beeloyalty/engine/internal/domain/models"
)

func TestOrderTotal(t *testing.T) {
	items := []models.OrderItem{
		{Name: "1 Pc Chickenjoy Solo", Price: 82, Quantity: 2},
		{Name: "Jolly Spaghetti Solo", Price: 60, Quantity: 1},
		{Name: "Regular Fries", Price: 50, Quantity: 3},
	}

	assert.Equal(t, 374.0, OrderTotal(items))
}

func TestOrderTotalIndependentOfItemOrder(t *testing.T) {
	items := []models.OrderItem{
		{Name: "a", Price: 82, Quantity: 1},
		{Name: "b", Price: 449, Quantity: 2},
		{Name: "c", Price: 48, Quantity: 1},
	}
	reversed := []models.OrderItem{items[2], items[1], items[0]}

	assert.Equal(t, OrderTotal(items), OrderTotal(reversed))
}

func TestOrderTotalEmpty(t *testing.T) {
	assert.Zero(t, OrderTotal(nil))
}

func TestCalculatePoints(t *testing.T) {
	tests := []struct {
		name    string
		total   float64
		channel models.Channel
		tier    models.Tier
		want    int
	}{
		{"dine-in buddy 450", 450, models.ChannelDineIn, models.TierBuddy, 40},
		{"dine-in below one bracket", 99.99, models.ChannelDineIn, models.TierBuddy, 0},
		{"dine-in exactly one bracket", 100, models.ChannelDineIn, models.TierBuddy, 10},
		{"app buddy 450", 450, models.ChannelApp, models.TierBuddy, 60},
		{"delivery buddy 450", 450, models.ChannelDelivery, models.TierBuddy, 60},
		{"dine-in fan 450", 450, models.ChannelDineIn, models.TierFan, 48},
		{"dine-in elite 450", 450, models.ChannelDineIn, models.TierElite, 60},
		{"fan multiplier floors", 110, models.ChannelDineIn, models.TierFan, 12},
		{"unknown channel earns nothing", 450, models.Channel("kiosk"), models.TierElite, 0},
		{"unknown tier uses base rate", 450, models.ChannelDineIn, models.Tier("BeeLegend"), 40},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CalculatePoints(tt.total, tt.channel, tt.tier))
		})
	}
}
