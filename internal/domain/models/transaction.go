package models

import "time"

// Channel is the order placement method; it affects the point-earning rate.
type Channel string

const (
	ChannelDineIn   Channel = "dine-in"
	ChannelApp      Channel = "app"
	ChannelDelivery Channel = "delivery"
)

// OrderItem is one line of an order.
type OrderItem struct {
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

// StoreInfo identifies the store an order was placed at.
type StoreInfo struct {
	StoreID   string `json:"store_id"`
	StoreName string `json:"store_name,omitempty"`
}

// Transaction is the append-only ledger record written once per completed
// order and never mutated afterwards.
type Transaction struct {
	TransactionID  string      `json:"transaction_id"`
	CustomerID     string      `json:"customer_id"`
	StoreID        string      `json:"store_id"`
	Timestamp      time.Time   `json:"timestamp"`
	Channel        Channel     `json:"channel"`
	Location       StoreInfo   `json:"location"`
	Items          []OrderItem `json:"items"`
	OrderTotal     float64     `json:"order_total"`
	PointsEarned   int         `json:"points_earned"`
	PointsRedeemed int         `json:"points_redeemed"`
	PaymentMethod  string      `json:"payment_method"`
	OrderType      Channel     `json:"order_type"`
	HourOfDay      int         `json:"hour_of_day"`
	DayOfWeek      string      `json:"day_of_week"`
	IsWeekend      bool        `json:"is_weekend"`
}
