package handlers

import (
	"math/rand"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/beeloyalty/engine/internal/domain/models"
)

// scenarioItem is a menu item with a selection weight.
type scenarioItem struct {
	Name   string
	Price  float64
	Weight int
}

// scenario describes one synthetic order wave.
type scenario struct {
	Name        string
	Description string
	Orders      int
	Items       []scenarioItem
	Channels    []models.Channel
}

var scenarios = map[string]scenario{
	"lunch_rush": {
		Name:        "Lunch Rush (12:00-13:00)",
		Description: "High-volume lunch period with popular items",
		Orders:      25,
		Items: []scenarioItem{
			{Name: "1 Pc Chickenjoy Solo", Price: 82, Weight: 30},
			{Name: "Jolly Spaghetti Solo", Price: 60, Weight: 25},
			{Name: "Yumburger Solo", Price: 40, Weight: 20},
			{Name: "6 Pc Chickenjoy Bucket Solo", Price: 449, Weight: 10},
			{Name: "Regular Fries", Price: 50, Weight: 15},
		},
		Channels: []models.Channel{models.ChannelDineIn, models.ChannelApp},
	},
	"family_dinner": {
		Name:        "Family Dinner Rush (18:00-20:00)",
		Description: "Family-focused orders with larger portions",
		Orders:      15,
		Items: []scenarioItem{
			{Name: "6 Pc Chickenjoy Bucket Solo", Price: 449, Weight: 40},
			{Name: "8 Pc Chickenjoy Bucket Solo", Price: 549, Weight: 20},
			{Name: "Jolly Spaghetti Solo", Price: 60, Weight: 25},
			{Name: "Peach Mango Pie", Price: 48, Weight: 15},
		},
		Channels: []models.Channel{models.ChannelDineIn, models.ChannelDelivery},
	},
	"weekend_special": {
		Name:        "Weekend Special Promotion",
		Description: "High-volume weekend promotion impact",
		Orders:      35,
		Items: []scenarioItem{
			{Name: "Cheesy Yumburger Solo", Price: 69, Weight: 30},
			{Name: "Iced Coffee Regular", Price: 64, Weight: 25},
			{Name: "1 Pc Chickenjoy Solo", Price: 82, Weight: 20},
			{Name: "6 Pc Chickenjoy Bucket Solo", Price: 449, Weight: 15},
			{Name: "Peach Mango Pie", Price: 48, Weight: 10},
		},
		Channels: []models.Channel{models.ChannelApp, models.ChannelDelivery, models.ChannelDineIn},
	},
}

var demoCustomers = []string{"mike001", "zander001", "john001", "melvin001", "carms001"}

// SimulateBulkOrders generates a named scenario's synthetic orders and runs
// them through the bulk orchestrator.
func (h *LoyaltyHandler) SimulateBulkOrders(c *gin.Context) {
	var req struct {
		Scenario string `json:"scenario"`
		StoreID  string `json:"store_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid request body"})
		return
	}
	if req.Scenario == "" {
		req.Scenario = "lunch_rush"
	}
	if req.StoreID == "" {
		req.StoreID = "store_001"
	}

	sc, ok := scenarios[req.Scenario]
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid scenario"})
		return
	}

	requests, itemsSold := buildScenarioRequests(sc, req.StoreID)

	result, err := h.svc.CreateBulk(c.Request.Context(), requests)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":        true,
		"scenario":       sc.Name,
		"description":    sc.Description,
		"orders_created": result.TransactionsCreated,
		"total_revenue":  result.TotalRevenue,
		"items_sold":     itemsSold,
		"store_id":       req.StoreID,
	})
}

// buildScenarioRequests rolls the scenario's weighted items into concrete
// single-line order requests over the demo customers.
func buildScenarioRequests(sc scenario, storeID string) ([]models.OrderRequest, map[string]int) {
	requests := make([]models.OrderRequest, 0, sc.Orders)
	itemsSold := make(map[string]int)

	for i := 0; i < sc.Orders; i++ {
		item := pickWeighted(sc.Items)

		quantity := 1
		if rand.Intn(100) < 20 {
			quantity = 2
		}

		requests = append(requests, models.OrderRequest{
			CustomerID:    demoCustomers[rand.Intn(len(demoCustomers))],
			Items:         []models.OrderItem{{Name: item.Name, Price: item.Price, Quantity: quantity}},
			Channel:       sc.Channels[rand.Intn(len(sc.Channels))],
			Store:         models.StoreInfo{StoreID: storeID, StoreName: "Demo Store"},
			PaymentMethod: "gcash",
		})
		itemsSold[item.Name] += quantity
	}

	return requests, itemsSold
}

func pickWeighted(items []scenarioItem) scenarioItem {
	total := 0
	for _, item := range items {
		total += item.Weight
	}

	roll := rand.Intn(total)
	for _, item := range items {
		roll -= item.Weight
		if roll < 0 {
			return item
		}
	}
	return items[len(items)-1]
}
