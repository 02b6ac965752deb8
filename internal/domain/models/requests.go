package models

// OrderRequest is one customer order submitted for processing.
type OrderRequest struct {
	CustomerID    string      `json:"customer_id"`
	Items         []OrderItem `json:"items"`
	Channel       Channel     `json:"channel"`
	Store         StoreInfo   `json:"store_info"`
	PaymentMethod string      `json:"payment_method"`
}

// RedeemRequest asks to exchange points for an item.
type RedeemRequest struct {
	PointsToRedeem int    `json:"points_to_redeem"`
	ItemName       string `json:"item_name"`
}

// TransactionResult reports the computed totals of one completed order.
type TransactionResult struct {
	TransactionID string  `json:"transaction_id"`
	OrderTotal    float64 `json:"order_total"`
	PointsEarned  int     `json:"points_earned"`
	TierUpgraded  bool    `json:"tier_upgraded"`
	NewTier       Tier    `json:"new_tier"`
}

// RedeemResult reports the balance after a successful redemption.
type RedeemResult struct {
	NewBalance int `json:"new_balance"`
}

// BulkResult summarizes a bulk simulation run.
type BulkResult struct {
	TransactionsCreated int     `json:"transactions_created"`
	TotalRevenue        float64 `json:"total_revenue"`
}
