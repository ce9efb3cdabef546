// Package game implements a restaurant-service simulation on top of
// generated menus: customers with dietary restrictions place orders,
// and serving the wrong items triggers generated consequences.
package game

import (
	"time"

	"github.com/willzeng274/HaystackDiet/internal/menu"
)

// PersonalityTrait shapes how a customer reacts to service.
type PersonalityTrait string

// Recognized personality traits.
const (
	TraitPatient         PersonalityTrait = "PATIENT"
	TraitImpatient       PersonalityTrait = "IMPATIENT"
	TraitPicky           PersonalityTrait = "PICKY"
	TraitGenerous        PersonalityTrait = "GENEROUS"
	TraitInfluencer      PersonalityTrait = "INFLUENCER"
	TraitKaren           PersonalityTrait = "KAREN"
	TraitRegular         PersonalityTrait = "REGULAR"
	TraitFoodie          PersonalityTrait = "FOODIE"
	TraitHealthConscious PersonalityTrait = "HEALTH_CONSCIOUS"
)

var knownTraits = map[PersonalityTrait]struct{}{
	TraitPatient:         {},
	TraitImpatient:       {},
	TraitPicky:           {},
	TraitGenerous:        {},
	TraitInfluencer:      {},
	TraitKaren:           {},
	TraitRegular:         {},
	TraitFoodie:          {},
	TraitHealthConscious: {},
}

// ParseTrait maps a string onto the closed trait enumeration.
func ParseTrait(s string) (PersonalityTrait, bool) {
	t := PersonalityTrait(s)
	_, ok := knownTraits[t]
	return t, ok
}

// Mood is the customer's current disposition.
type Mood string

// Mood values.
const (
	MoodHappy   Mood = "HAPPY"
	MoodNeutral Mood = "NEUTRAL"
	MoodAnnoyed Mood = "ANNOYED"
	MoodAngry   Mood = "ANGRY"
)

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

// Order status values.
const (
	OrderPending OrderStatus = "PENDING"
	OrderServed  OrderStatus = "SERVED"
	OrderFailed  OrderStatus = "FAILED"
)

// Customer is a generated patron with restrictions and temperament.
type Customer struct {
	ID                  string             `json:"id"`
	Name                string             `json:"name"`
	Traits              []PersonalityTrait `json:"personality_traits"`
	Mood                Mood               `json:"current_mood"`
	Restrictions        []menu.Restriction `json:"dietary_restrictions"`
	PatienceThreshold   int                `json:"patience_threshold"`
	TipTendency         float64            `json:"tip_tendency"`
	FavoriteItems       []string           `json:"favorite_items"`
	DislikedItems       []string           `json:"disliked_items"`
	TotalSpent          float64            `json:"total_spent"`
	SatisfactionHistory []float64          `json:"satisfaction_history"`
}

// HasTrait reports whether the customer carries the given trait.
func (c *Customer) HasTrait(t PersonalityTrait) bool {
	for _, got := range c.Traits {
		if got == t {
			return true
		}
	}
	return false
}

// GeneratedItem is one AI-generated dish offered to a customer.
type GeneratedItem struct {
	Name            string             `json:"name"`
	Description     string             `json:"description"`
	Price           float64            `json:"price"`
	Restrictions    []menu.Restriction `json:"restrictions"`
	PreparationTime int                `json:"preparation_time"`
}

// Order is one customer's pending request.
type Order struct {
	ID           string             `json:"id"`
	CustomerID   string             `json:"customer_id"`
	Restrictions []menu.Restriction `json:"restrictions"`
	ItemsOrdered []string           `json:"items_ordered"`
	Status       OrderStatus        `json:"status"`
	CreatedAt    time.Time          `json:"created_at"`
	WaitTime     int                `json:"wait_time"`
	TotalPrice   float64            `json:"total_price"`
}

// Consequence is the penalty applied when a dietary restriction is violated.
type Consequence struct {
	Description      string  `json:"description"`
	VisualEffect     string  `json:"visual_effect"`
	SoundEffect      string  `json:"sound_effect"`
	MoneyImpact      float64 `json:"money_impact"`
	ScoreImpact      int     `json:"score_impact"`
	ReputationImpact float64 `json:"reputation_impact"`
}

// Mistake records one failed order for the game history.
type Mistake struct {
	OrderID     string    `json:"order_id"`
	Violation   string    `json:"violation"`
	Consequence string    `json:"consequence"`
	Timestamp   time.Time `json:"timestamp"`
}

// State is the mutable per-player game state.
type State struct {
	PlayerID             string               `json:"player_id"`
	Score                int                  `json:"score"`
	Money                float64              `json:"money"`
	Reputation           float64              `json:"reputation"`
	ActiveOrders         []*Order             `json:"active_orders"`
	CompletedOrders      int                  `json:"completed_orders"`
	Mistakes             []Mistake            `json:"mistakes"`
	Customers            map[string]*Customer `json:"customers"`
	DailyCustomersServed int                  `json:"daily_customers_served"`
	TotalCustomersServed int                  `json:"total_customers_served"`
}

// Starting balances for a fresh game.
const (
	startingMoney      = 1000.0
	startingReputation = 50.0
)

// OrderResponse bundles everything the client needs to present an order.
type OrderResponse struct {
	Order    *Order          `json:"order"`
	Items    []GeneratedItem `json:"menu_items"`
	Customer *Customer       `json:"customer"`
}

// Reward describes the payout of a successfully served order.
type Reward struct {
	Money   float64 `json:"money"`
	Tip     float64 `json:"tip"`
	Score   int     `json:"score"`
	Message string  `json:"message"`
}

// StateSummary is the compact game-state echo attached to serve results.
type StateSummary struct {
	Score           int     `json:"score"`
	Money           float64 `json:"money"`
	Reputation      float64 `json:"reputation"`
	Mistakes        int     `json:"mistakes"`
	CompletedOrders int     `json:"completed_orders"`
	ActiveOrders    int     `json:"active_orders"`
}

// ServeResult is the outcome of serving an order.
type ServeResult struct {
	Success      bool         `json:"success"`
	Reward       *Reward      `json:"reward,omitempty"`
	Consequence  *Consequence `json:"consequence,omitempty"`
	Satisfaction float64      `json:"customer_satisfaction"`
	Mood         Mood         `json:"customer_mood"`
	GameState    StateSummary `json:"game_state"`
}
