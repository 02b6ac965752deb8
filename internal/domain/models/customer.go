package models

import (
	"fmt"
	"time"
)

// Tier is a customer's loyalty rank, derived from cumulative annual spending.
type Tier string

const (
	TierBuddy Tier = "BeeBuddy"
	TierFan   Tier = "BeeFan"
	TierElite Tier = "BeeElite"
)

// CustomerAccount is a loyalty program member as stored in the customers index.
type CustomerAccount struct {
	CustomerID       string           `json:"customer_id"`
	PersonalInfo     PersonalInfo     `json:"personal_info"`
	LoyaltyProfile   LoyaltyProfile   `json:"loyalty_profile"`
	PurchaseBehavior PurchaseBehavior `json:"purchase_behavior"`
	Preferences      Preferences      `json:"preferences"`
}

// PersonalInfo carries identifying customer details.
type PersonalInfo struct {
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	City  string `json:"city,omitempty"`
}

// LoyaltyProfile is the points and tier state mutated by transactions.
type LoyaltyProfile struct {
	Tier              Tier      `json:"tier"`
	TotalPoints       int       `json:"total_points"`
	PointsEarnedYTD   int       `json:"points_earned_ytd"`
	PointsRedeemedYTD int       `json:"points_redeemed_ytd"`
	AnnualSpending    float64   `json:"annual_spending"`
	LastActivity      time.Time `json:"last_activity"`
}

// PurchaseBehavior aggregates ordering activity.
type PurchaseBehavior struct {
	TotalOrders int `json:"total_orders"`
}

// Preferences seeds menu recommendations; not transaction-critical.
type Preferences struct {
	FavoriteItems []string `json:"favorite_items,omitempty"`
}

// Validate checks the account invariants after loading from the store.
func (c *CustomerAccount) Validate() error {
	if c.CustomerID == "" {
		return fmt.Errorf("customer account missing customer_id")
	}
	if c.LoyaltyProfile.TotalPoints < 0 {
		return fmt.Errorf("customer %s: negative points balance %d", c.CustomerID, c.LoyaltyProfile.TotalPoints)
	}
	if c.LoyaltyProfile.AnnualSpending < 0 {
		return fmt.Errorf("customer %s: negative annual spending", c.CustomerID)
	}
	return nil
}
