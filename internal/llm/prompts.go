package llm

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const extractSystemPrompt = `You are an expert at identifying menu items from restaurant websites.
Extract clear menu items with detailed information.`

const synthesizeSystemPrompt = `You are a menu generation expert. Generate a realistic menu with diverse dietary options.
Include items that meet various dietary restrictions:
- GLUTEN: Gluten-free options
- LACTOSE: Dairy-free options
- VEGAN: No animal products
- VEGETARIAN: No meat products
- HALAL: Follows Islamic dietary laws
- KOSHER: Follows Jewish dietary laws
- NUT: Contains nuts (mark for allergy awareness)
- NONE: No special dietary considerations

IMPORTANT: Response must be ONLY a JSON array with detailed menu items.`

const classifySystemPrompt = `You are an expert at identifying dietary restrictions in food items.
For each menu item, carefully analyze ingredients and preparation methods to determine ALL applicable dietary restrictions.
Consider:
- GLUTEN: Items that are gluten-free
- LACTOSE: Items that are dairy-free
- VEGAN: No animal products
- VEGETARIAN: No meat products
- HALAL: Follows Islamic dietary laws
- KOSHER: Follows Jewish dietary laws
- NUT: Contains nuts or nut products
- NONE: No special dietary considerations

Return ONLY a JSON array of applicable restrictions.`

// maxExtractChars bounds how much condensed page text reaches the provider.
const maxExtractChars = 4000

func buildExtractPrompt(text, restaurantName string) string {
	text = truncateRunes(text, maxExtractChars)
	return fmt.Sprintf(`Extract menu items from this %s website text.
Format as a JSON array with:
- name: Item name
- description: Description
- price: Number (0 if unknown)
- category: Category name
- dietary_info: Array of dietary notes

Text: %s`, restaurantName, text)
}

// truncateRunes cuts text to at most max bytes without splitting a rune.
func truncateRunes(text string, max int) string {
	if len(text) <= max {
		return text
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut]
}

func buildSynthesizePrompt(restaurantName, priceRange string, band priceBand) string {
	return fmt.Sprintf(`Create a diverse menu for '%s' (%s).
Include items for different dietary needs and preferences.
Return a JSON array where each item has:
{
    "name": "item name",
    "description": "detailed description with specific ingredients",
    "price": number,
    "category": "category name",
    "dietary_info": ["DIETARY_RESTRICTION1", "DIETARY_RESTRICTION2", etc]
}

Guidelines:
1. Include 8-10 items across different categories
2. Price ranges for %s:
- Appetizers: $%d-$%d
- Mains: $%d-$%d
- Desserts: $%d-$%d
- Drinks: $%d-$%d
3. Include:
- At least 2 vegetarian options
- At least 1 vegan option
- At least 1 gluten-free option
- Clear ingredient listings for allergen identification

RESPOND WITH ONLY THE JSON ARRAY, NO OTHER TEXT.`,
		restaurantName, priceRange, priceRange,
		band.Appetizer, band.Appetizer+4,
		band.Main, band.Main+15,
		band.Dessert, band.Dessert+4,
		band.Drink, band.Drink+4,
	)
}

func buildClassifyPrompt(name, description string, dietaryInfo []string) string {
	notes := "None"
	if len(dietaryInfo) > 0 {
		notes = strings.Join(dietaryInfo, ", ")
	}
	return fmt.Sprintf(`Analyze this menu item and return ALL applicable dietary restrictions:
Name: %s
Description: %s
Dietary Info: %s

Consider all ingredients and preparation methods carefully.
If multiple restrictions apply (e.g. an item is both vegan and gluten-free), include all of them.
Only return ["NONE"] if no restrictions apply.

Return ONLY a JSON array, for example:
["VEGAN", "GLUTEN"] or ["VEGETARIAN", "NUT"] or ["NONE"]`, name, description, notes)
}
