package game

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/willzeng274/HaystackDiet/internal/llm"
	"github.com/willzeng274/HaystackDiet/internal/menu"
)

const (
	profileMaxTokens     = 300
	menuMaxTokens        = 1000
	consequenceMaxTokens = 500
)

const profileSystemPrompt = "You are creating customer profiles for a restaurant game. Return only valid JSON."

const profileUserPrompt = `Generate a customer profile with:
{
    "personality_traits": ["PATIENT", "FOODIE"],
    "dietary_restrictions": ["GLUTEN"],
    "patience_level": 7,
    "tip_tendency": 0.15
}
Only use valid personality traits and restrictions from the enums.`

const menuSystemPrompt = "You are a creative chef who specializes in dietary restrictions. You only respond with valid JSON."

const consequenceSystemPrompt = "You are a creative game designer specializing in humorous consequences. You only respond with valid JSON."

type profilePayload struct {
	PersonalityTraits   []string `json:"personality_traits"`
	DietaryRestrictions []string `json:"dietary_restrictions"`
	PatienceLevel       int      `json:"patience_level"`
	TipTendency         float64  `json:"tip_tendency"`
}

type menuPayload struct {
	Items []struct {
		Name            string  `json:"name"`
		Description     string  `json:"description"`
		Price           float64 `json:"price"`
		PreparationTime int     `json:"preparation_time"`
	} `json:"items"`
}

type consequencePayload struct {
	Consequence Consequence `json:"consequence"`
}

// generateCustomer asks the model for a profile and falls back to a plain
// regular customer when the response is unusable.
func (e *Engine) generateCustomer(ctx context.Context) *Customer {
	id := e.newID()
	customer := &Customer{
		ID:                id,
		Name:              fmt.Sprintf("Customer_%s", shortID(id)),
		Traits:            []PersonalityTrait{TraitRegular},
		Mood:              MoodNeutral,
		Restrictions:      []menu.Restriction{menu.RestrictionGluten},
		PatienceThreshold: 5,
		TipTendency:       0.15,
	}

	content, err := e.completer.Complete(ctx, llm.Prompt{
		System:    profileSystemPrompt,
		User:      profileUserPrompt,
		MaxTokens: profileMaxTokens,
	})
	if err != nil {
		e.logger.Warn("customer profile completion failed", zap.Error(err))
		return customer
	}

	raw, ok := llm.RecoverObject(content)
	if !ok {
		e.logger.Warn("customer profile response had no object", zap.String("content", truncateForLog(content)))
		return customer
	}
	var payload profilePayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		e.logger.Warn("customer profile decode failed", zap.Error(err))
		return customer
	}

	var traits []PersonalityTrait
	for _, name := range payload.PersonalityTraits {
		if t, ok := ParseTrait(name); ok {
			traits = append(traits, t)
		}
	}
	var restrictions []menu.Restriction
	for _, name := range payload.DietaryRestrictions {
		if r, ok := menu.ParseRestriction(name); ok && r != menu.RestrictionNone {
			restrictions = append(restrictions, r)
		}
	}
	if len(traits) > 0 {
		customer.Traits = traits
	}
	if len(restrictions) > 0 {
		customer.Restrictions = restrictions
	}
	customer.PatienceThreshold = clampInt(payload.PatienceLevel, 1, 10)
	customer.TipTendency = clampFloat(payload.TipTendency, 0, 0.5)
	return customer
}

// generateItems asks the model for dishes safe under the given restrictions.
// The fallback is a single safe default dish.
func (e *Engine) generateItems(ctx context.Context, restrictions []menu.Restriction) []GeneratedItem {
	fallback := []GeneratedItem{{
		Name:            "Safe Default Item",
		Description:     "A simple item that meets all dietary restrictions",
		Price:           9.99,
		Restrictions:    restrictions,
		PreparationTime: 10,
	}}

	prompt := fmt.Sprintf(`Generate 3 creative food items that would be safe for someone with these dietary restrictions: %s.
For each item, provide:
1. A creative name
2. A brief description
3. A reasonable price
4. Preparation time in minutes

Return ONLY a valid JSON array in this exact format:
{
    "items": [
        {
            "name": "item name",
            "description": "brief description",
            "price": 0.00,
            "preparation_time": 0
        }
    ]
}`, restrictionNames(restrictions))

	content, err := e.completer.Complete(ctx, llm.Prompt{
		System:    menuSystemPrompt,
		User:      prompt,
		MaxTokens: menuMaxTokens,
	})
	if err != nil {
		e.logger.Warn("menu generation failed", zap.Error(err))
		return fallback
	}

	raw, ok := llm.RecoverObject(content)
	if !ok {
		e.logger.Warn("menu generation response had no object", zap.String("content", truncateForLog(content)))
		return fallback
	}
	var payload menuPayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil || len(payload.Items) == 0 {
		e.logger.Warn("menu generation decode failed", zap.Error(err))
		return fallback
	}

	items := make([]GeneratedItem, 0, len(payload.Items))
	for _, item := range payload.Items {
		items = append(items, GeneratedItem{
			Name:            item.Name,
			Description:     item.Description,
			Price:           item.Price,
			Restrictions:    restrictions,
			PreparationTime: item.PreparationTime,
		})
	}
	return items
}

// generateConsequence asks the model for the penalty applied for violating
// the given restriction. The fallback is a flat complaint.
func (e *Engine) generateConsequence(ctx context.Context, violation menu.Restriction) Consequence {
	fallback := Consequence{
		Description:      fmt.Sprintf("Customer is unhappy about the %s violation", violation),
		VisualEffect:     "angry_customer",
		SoundEffect:      "complaint",
		MoneyImpact:      -50,
		ScoreImpact:      -100,
		ReputationImpact: -5,
	}

	prompt := fmt.Sprintf(`Generate a creative and humorous consequence for serving food that violates a %s dietary restriction.
Include:
1. A funny description of what happens
2. A visual effect for the game
3. A sound effect suggestion
4. A monetary penalty
5. A score impact

Return ONLY a valid JSON object in this exact format do not include `+"```"+` or any other characters:
{
    "consequence": {
        "description": "funny description here",
        "visual_effect": "effect name",
        "sound_effect": "sound name",
        "money_impact": -50,
        "score_impact": -100,
        "reputation_impact": -5
    }
}`, violation)

	content, err := e.completer.Complete(ctx, llm.Prompt{
		System:    consequenceSystemPrompt,
		User:      prompt,
		MaxTokens: consequenceMaxTokens,
	})
	if err != nil {
		e.logger.Warn("consequence generation failed", zap.Error(err))
		return fallback
	}

	raw, ok := llm.RecoverObject(content)
	if !ok {
		e.logger.Warn("consequence response had no object", zap.String("content", truncateForLog(content)))
		return fallback
	}
	var payload consequencePayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil || payload.Consequence.Description == "" {
		e.logger.Warn("consequence decode failed", zap.Error(err))
		return fallback
	}
	return payload.Consequence
}

func restrictionNames(restrictions []menu.Restriction) string {
	names := make([]string, 0, len(restrictions))
	for _, r := range restrictions {
		names = append(names, string(r))
	}
	return strings.Join(names, ", ")
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func truncateForLog(s string) string {
	if len(s) > 200 {
		return s[:200]
	}
	return s
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
