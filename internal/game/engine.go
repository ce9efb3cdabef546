package game

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/willzeng274/HaystackDiet/internal/llm"
	"github.com/willzeng274/HaystackDiet/internal/menu"
)

// Lookup failures surfaced to the transport layer.
var (
	ErrGameNotFound     = errors.New("game not found")
	ErrOrderNotFound    = errors.New("order not found")
	ErrCustomerNotFound = errors.New("customer not found")
)

// Engine runs game sessions. Menu and consequence lookups go through
// injected caches so repeated restriction combinations reuse completions.
type Engine struct {
	completer    llm.Completer
	menus        menu.Cache
	consequences menu.Cache
	ids          menu.IDGenerator
	clock        menu.Clock
	logger       *zap.Logger

	mu    sync.Mutex
	games map[string]*State
}

// NewEngine constructs an Engine.
func NewEngine(
	completer llm.Completer,
	menus menu.Cache,
	consequences menu.Cache,
	ids menu.IDGenerator,
	clock menu.Clock,
	logger *zap.Logger,
) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		completer:    completer,
		menus:        menus,
		consequences: consequences,
		ids:          ids,
		clock:        clock,
		logger:       logger,
		games:        make(map[string]*State),
	}
}

// newID generates an identifier, falling back to a clock-derived one when
// the generator fails.
func (e *Engine) newID() string {
	id, err := e.ids.NewID()
	if err != nil {
		e.logger.Warn("id generation failed", zap.Error(err))
		return fmt.Sprintf("fallback-%d", e.clock.Now().UnixNano())
	}
	return id
}

// StartGame creates a fresh session and returns its ID.
func (e *Engine) StartGame() string {
	id := e.newID()
	e.mu.Lock()
	defer e.mu.Unlock()
	e.games[id] = &State{
		PlayerID:   id,
		Money:      startingMoney,
		Reputation: startingReputation,
		Customers:  make(map[string]*Customer),
	}
	return id
}

// GenerateOrder creates a customer, builds a restriction-safe menu for them
// and opens a pending order covering every offered item.
func (e *Engine) GenerateOrder(ctx context.Context, gameID string) (OrderResponse, error) {
	e.mu.Lock()
	state, ok := e.games[gameID]
	e.mu.Unlock()
	if !ok {
		return OrderResponse{}, ErrGameNotFound
	}

	customer := e.generateCustomer(ctx)
	items := e.cachedItems(ctx, customer.Restrictions)

	names := make([]string, 0, len(items))
	total := 0.0
	for _, item := range items {
		names = append(names, item.Name)
		total += item.Price
	}

	order := &Order{
		ID:           e.newID(),
		CustomerID:   customer.ID,
		Restrictions: customer.Restrictions,
		ItemsOrdered: names,
		Status:       OrderPending,
		CreatedAt:    e.clock.Now(),
		TotalPrice:   total,
	}

	e.mu.Lock()
	state.Customers[customer.ID] = customer
	state.ActiveOrders = append(state.ActiveOrders, order)
	e.mu.Unlock()

	e.logger.Info("order generated",
		zap.String("game_id", gameID),
		zap.String("order_id", order.ID),
		zap.Strings("restrictions", restrictionStrings(customer.Restrictions)),
	)
	return OrderResponse{Order: order, Items: items, Customer: customer}, nil
}

// cachedItems returns the generated menu for a restriction combination,
// generating and caching it on first use.
func (e *Engine) cachedItems(ctx context.Context, restrictions []menu.Restriction) []GeneratedItem {
	key := menuKey(restrictions)
	if cached, ok := e.menus.Get(key); ok {
		if items, ok := cached.([]GeneratedItem); ok {
			return items
		}
	}
	items := e.generateItems(ctx, restrictions)
	e.menus.Set(key, items)
	return items
}

// ServeOrder resolves a pending order against the items actually served.
// Serving an item the customer did not order counts as a dietary violation;
// there is no other source of violations.
func (e *Engine) ServeOrder(ctx context.Context, gameID, orderID string, itemsServed []string) (ServeResult, error) {
	e.mu.Lock()
	state, ok := e.games[gameID]
	if !ok {
		e.mu.Unlock()
		return ServeResult{}, ErrGameNotFound
	}
	order := findOrder(state, orderID)
	if order == nil {
		e.mu.Unlock()
		return ServeResult{}, ErrOrderNotFound
	}
	customer, ok := state.Customers[order.CustomerID]
	if !ok {
		e.mu.Unlock()
		return ServeResult{}, ErrCustomerNotFound
	}

	order.WaitTime = int(e.clock.Now().Sub(order.CreatedAt).Minutes())

	violations := detectViolations(order, customer, itemsServed)
	if len(violations) == 0 {
		defer e.mu.Unlock()
		return e.completeOrder(state, order, customer, itemsServed), nil
	}
	e.mu.Unlock()

	// Consequence generation may hit the provider. Run it without the
	// engine lock so other sessions keep moving; the cache has its own.
	consequence := e.cachedConsequence(ctx, violations[0])

	e.mu.Lock()
	defer e.mu.Unlock()
	if findOrder(state, order.ID) == nil {
		return ServeResult{}, ErrOrderNotFound
	}
	return e.failOrder(state, order, customer, violations, consequence), nil
}

// detectViolations flags each served item absent from the order as a
// violation of the customer's restrictions.
func detectViolations(order *Order, customer *Customer, itemsServed []string) []menu.Restriction {
	ordered := make(map[string]struct{}, len(order.ItemsOrdered))
	for _, name := range order.ItemsOrdered {
		ordered[name] = struct{}{}
	}

	violated := menu.RestrictionGluten
	if len(customer.Restrictions) > 0 {
		violated = customer.Restrictions[0]
	}

	var violations []menu.Restriction
	for _, name := range itemsServed {
		if _, ok := ordered[name]; !ok {
			violations = append(violations, violated)
		}
	}
	return violations
}

func (e *Engine) failOrder(
	state *State,
	order *Order,
	customer *Customer,
	violations []menu.Restriction,
	consequence Consequence,
) ServeResult {
	violation := violations[0]

	satisfaction := clampFloat(50-float64(len(violations))*20, 0, 100)
	customer.SatisfactionHistory = append(customer.SatisfactionHistory, satisfaction)
	customer.Mood = moodAfterFailure(satisfaction)

	state.Score = maxInt(0, state.Score+consequence.ScoreImpact)
	state.Money = maxFloat(0, state.Money+consequence.MoneyImpact)
	state.Reputation = clampFloat(state.Reputation+consequence.ReputationImpact, 0, 100)
	state.Mistakes = append(state.Mistakes, Mistake{
		OrderID:     order.ID,
		Violation:   string(violation),
		Consequence: consequence.Description,
		Timestamp:   e.clock.Now(),
	})

	order.Status = OrderFailed
	removeOrder(state, order.ID)

	e.logger.Info("order failed",
		zap.String("order_id", order.ID),
		zap.String("violation", string(violation)),
	)
	return ServeResult{
		Success:      false,
		Consequence:  &consequence,
		Satisfaction: satisfaction,
		Mood:         customer.Mood,
		GameState:    summarize(state),
	}
}

func (e *Engine) completeOrder(
	state *State,
	order *Order,
	customer *Customer,
	itemsServed []string,
) ServeResult {
	satisfaction := 80 - float64(order.WaitTime)*2
	if customer.HasTrait(TraitImpatient) {
		satisfaction -= float64(order.WaitTime) * 3
	}
	if customer.HasTrait(TraitFoodie) {
		satisfaction += 10
	}
	if customer.HasTrait(TraitPatient) {
		satisfaction += 5
	}
	satisfaction = clampFloat(satisfaction, 0, 100)

	customer.Mood = moodAfterSuccess(satisfaction)

	tipMultiplier := satisfaction / 100
	if customer.HasTrait(TraitGenerous) {
		tipMultiplier *= 1.5
	}
	if customer.HasTrait(TraitKaren) {
		tipMultiplier *= 0.5
	}
	tip := order.TotalPrice * customer.TipTendency * tipMultiplier

	customer.SatisfactionHistory = append(customer.SatisfactionHistory, satisfaction)
	customer.TotalSpent += order.TotalPrice + tip
	if satisfaction > 80 {
		customer.FavoriteItems = appendMissing(customer.FavoriteItems, itemsServed)
	} else if satisfaction < 40 {
		customer.DislikedItems = appendMissing(customer.DislikedItems, itemsServed)
	}

	score := 100 + int(satisfaction/2)
	state.Score += score
	state.Money += order.TotalPrice + tip
	state.CompletedOrders++
	state.Reputation = minFloat(100, state.Reputation+(satisfaction-50)/20)
	state.DailyCustomersServed++
	state.TotalCustomersServed++

	order.Status = OrderServed
	removeOrder(state, order.ID)

	e.logger.Info("order served",
		zap.String("order_id", order.ID),
		zap.Float64("satisfaction", satisfaction),
	)
	return ServeResult{
		Success: true,
		Reward: &Reward{
			Money:   order.TotalPrice + tip,
			Tip:     tip,
			Score:   score,
			Message: fmt.Sprintf("Order served successfully! Customer satisfaction: %.0f%%", satisfaction),
		},
		Satisfaction: satisfaction,
		Mood:         customer.Mood,
		GameState:    summarize(state),
	}
}

// cachedConsequence returns the consequence for a violation, generating and
// caching it on first use.
func (e *Engine) cachedConsequence(ctx context.Context, violation menu.Restriction) Consequence {
	key := string(violation)
	if cached, ok := e.consequences.Get(key); ok {
		if consequence, ok := cached.(Consequence); ok {
			return consequence
		}
	}
	consequence := e.generateConsequence(ctx, violation)
	e.consequences.Set(key, consequence)
	return consequence
}

// State returns a copy of the session state.
func (e *Engine) State(gameID string) (State, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	state, ok := e.games[gameID]
	if !ok {
		return State{}, ErrGameNotFound
	}
	return *state, nil
}

// Leaderboard returns up to n sessions ordered by descending score.
func (e *Engine) Leaderboard(n int) []State {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]State, 0, len(e.games))
	for _, state := range e.games {
		out = append(out, *state)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if len(out) > n {
		out = out[:n]
	}
	return out
}

func findOrder(state *State, orderID string) *Order {
	for _, order := range state.ActiveOrders {
		if order.ID == orderID {
			return order
		}
	}
	return nil
}

func removeOrder(state *State, orderID string) {
	kept := state.ActiveOrders[:0]
	for _, order := range state.ActiveOrders {
		if order.ID != orderID {
			kept = append(kept, order)
		}
	}
	state.ActiveOrders = kept
}

func summarize(state *State) StateSummary {
	return StateSummary{
		Score:           state.Score,
		Money:           state.Money,
		Reputation:      state.Reputation,
		Mistakes:        len(state.Mistakes),
		CompletedOrders: state.CompletedOrders,
		ActiveOrders:    len(state.ActiveOrders),
	}
}

func moodAfterFailure(satisfaction float64) Mood {
	switch {
	case satisfaction < 30:
		return MoodAngry
	case satisfaction < 50:
		return MoodAnnoyed
	case satisfaction < 70:
		return MoodNeutral
	default:
		return MoodHappy
	}
}

func moodAfterSuccess(satisfaction float64) Mood {
	switch {
	case satisfaction > 80:
		return MoodHappy
	case satisfaction > 60:
		return MoodNeutral
	default:
		return MoodAnnoyed
	}
}

// menuKey builds the cache key for a restriction combination: sorted
// member names joined with commas.
func menuKey(restrictions []menu.Restriction) string {
	names := restrictionStrings(restrictions)
	sort.Strings(names)
	return strings.Join(names, ",")
}

func restrictionStrings(restrictions []menu.Restriction) []string {
	names := make([]string, 0, len(restrictions))
	for _, r := range restrictions {
		names = append(names, string(r))
	}
	return names
}

func appendMissing(dst []string, items []string) []string {
	for _, item := range items {
		found := false
		for _, got := range dst {
			if got == item {
				found = true
				break
			}
		}
		if !found {
			dst = append(dst, item)
		}
	}
	return dst
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
