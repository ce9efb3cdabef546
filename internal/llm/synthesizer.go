package llm

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/willzeng274/HaystackDiet/internal/menu"
	"github.com/willzeng274/HaystackDiet/internal/metrics"
	"github.com/willzeng274/HaystackDiet/internal/pool"
)

const (
	classifyConcurrency = 10
	synthesizeRetries   = 3

	extractMaxTokens    = 2000
	synthesizeMaxTokens = 2000
	classifyMaxTokens   = 100
)

// priceBand holds per-category base prices for one price tier.
type priceBand struct {
	Appetizer int
	Main      int
	Dessert   int
	Drink     int
}

var priceBands = map[string]priceBand{
	"low-cost":  {Appetizer: 8, Main: 15, Dessert: 6, Drink: 4},
	"mid-range": {Appetizer: 12, Main: 25, Dessert: 10, Drink: 8},
	"high-end":  {Appetizer: 18, Main: 40, Dessert: 15, Drink: 12},
}

func priceRangeFor(priceLevel int) string {
	switch {
	case priceLevel <= 1:
		return "low-cost"
	case priceLevel == 2:
		return "mid-range"
	default:
		return "high-end"
	}
}

// Synthesizer implements menu.Synthesizer on top of a Completer. Every
// contract degrades internally; callers never see an error.
type Synthesizer struct {
	completer  Completer
	logger     *zap.Logger
	retryPause time.Duration
}

// SynthesizerOption customizes a Synthesizer.
type SynthesizerOption func(*Synthesizer)

// WithRetryPause overrides the pause between synthesis retries.
func WithRetryPause(d time.Duration) SynthesizerOption {
	return func(s *Synthesizer) { s.retryPause = d }
}

// NewSynthesizer builds a Synthesizer.
func NewSynthesizer(completer Completer, logger *zap.Logger, opts ...SynthesizerOption) *Synthesizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Synthesizer{
		completer:  completer,
		logger:     logger,
		retryPause: time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// rawItem is the strict shape a provider response item must decode into.
// Anything that does not fit is rejected at this boundary.
type rawItem struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       float64  `json:"price"`
	Category    string   `json:"category"`
	DietaryInfo []string `json:"dietary_info"`
}

func (r rawItem) toMenuItem() menu.MenuItem {
	category := r.Category
	if category == "" {
		category = menu.DefaultCategory
	}
	return menu.MenuItem{
		Name:        r.Name,
		Description: r.Description,
		Price:       r.Price,
		Category:    category,
		DietaryInfo: r.DietaryInfo,
	}
}

// ExtractItems asks the provider to pull structured menu items out of
// condensed page text. Empty text or any failure yields an empty slice.
func (s *Synthesizer) ExtractItems(ctx context.Context, text, restaurantName string) []menu.MenuItem {
	if text == "" {
		return nil
	}

	items, err := s.completeItems(ctx, Prompt{
		System:    extractSystemPrompt,
		User:      buildExtractPrompt(text, restaurantName),
		MaxTokens: extractMaxTokens,
	})
	if err != nil {
		metrics.ObserveCompletion("extract", false)
		s.logger.Warn("menu extraction completion failed",
			zap.String("restaurant", restaurantName),
			zap.Error(err),
		)
		return nil
	}
	metrics.ObserveCompletion("extract", true)
	return items
}

// SynthesizeMenu asks the provider to invent a plausible menu for the
// restaurant's price tier. After all retries fail it returns a
// deterministic fallback menu so the pipeline never stalls here.
func (s *Synthesizer) SynthesizeMenu(ctx context.Context, restaurantName string, priceLevel int) []menu.MenuItem {
	priceRange := priceRangeFor(priceLevel)
	band := priceBands[priceRange]
	prompt := Prompt{
		System:    synthesizeSystemPrompt,
		User:      buildSynthesizePrompt(restaurantName, priceRange, band),
		MaxTokens: synthesizeMaxTokens,
	}

	for attempt := 1; attempt <= synthesizeRetries; attempt++ {
		items, err := s.completeItems(ctx, prompt)
		if err == nil && len(items) > 0 {
			metrics.ObserveCompletion("synthesize", true)
			return s.TagItems(ctx, items)
		}
		metrics.ObserveCompletion("synthesize", false)
		s.logger.Warn("menu synthesis attempt failed",
			zap.String("restaurant", restaurantName),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
		if attempt < synthesizeRetries {
			select {
			case <-time.After(s.retryPause):
			case <-ctx.Done():
				return s.fallbackMenu(restaurantName, band)
			}
		}
	}

	s.logger.Warn("falling back to default menu", zap.String("restaurant", restaurantName))
	return s.fallbackMenu(restaurantName, band)
}

// TagItems classifies dietary restrictions for every item that arrived
// without tags, with bounded concurrency. Items keep their input order.
func (s *Synthesizer) TagItems(ctx context.Context, items []menu.MenuItem) []menu.MenuItem {
	if len(items) == 0 {
		return items
	}

	indexes := make([]int, 0, len(items))
	tagged := make([]menu.MenuItem, len(items))
	copy(tagged, items)
	for i, item := range tagged {
		if len(item.Restrictions) == 0 {
			indexes = append(indexes, i)
		} else {
			tagged[i].Restrictions = item.Restrictions.Normalize()
		}
	}

	results := pool.Map(ctx, classifyConcurrency, indexes, func(ctx context.Context, i int) (classified, error) {
		set := s.classify(ctx, tagged[i])
		return classified{index: i, restrictions: set}, nil
	})
	for _, r := range results {
		tagged[r.index] = withRestrictions(tagged[r.index], r.restrictions)
	}
	return tagged
}

type classified struct {
	index        int
	restrictions menu.RestrictionSet
}

func withRestrictions(item menu.MenuItem, set menu.RestrictionSet) menu.MenuItem {
	item.Restrictions = set.Normalize()
	return item
}

func (s *Synthesizer) classify(ctx context.Context, item menu.MenuItem) menu.RestrictionSet {
	content, err := s.completer.Complete(ctx, Prompt{
		System:    classifySystemPrompt,
		User:      buildClassifyPrompt(item.Name, item.Description, item.DietaryInfo),
		MaxTokens: classifyMaxTokens,
	})
	if err != nil {
		metrics.ObserveCompletion("classify", false)
		s.logger.Warn("restriction classification failed",
			zap.String("item", item.Name),
			zap.Error(err),
		)
		return menu.NewRestrictionSet(menu.RestrictionNone)
	}

	raw, ok := RecoverArray(content)
	if !ok {
		metrics.ObserveCompletion("classify", false)
		s.logger.Warn("classification response had no JSON array", zap.String("item", item.Name))
		return menu.NewRestrictionSet(menu.RestrictionNone)
	}

	var names []string
	if err := json.Unmarshal([]byte(raw), &names); err != nil {
		metrics.ObserveCompletion("classify", false)
		s.logger.Warn("classification response unparseable",
			zap.String("item", item.Name),
			zap.Error(err),
		)
		return menu.NewRestrictionSet(menu.RestrictionNone)
	}

	set := menu.RestrictionSet{}
	for _, name := range names {
		if r, ok := menu.ParseRestriction(name); ok {
			set.Add(r)
		}
	}
	metrics.ObserveCompletion("classify", true)
	return set.Normalize()
}

func (s *Synthesizer) completeItems(ctx context.Context, prompt Prompt) ([]menu.MenuItem, error) {
	content, err := s.completer.Complete(ctx, prompt)
	if err != nil {
		return nil, err
	}

	raw, ok := RecoverArray(content)
	if !ok {
		return nil, errNoArray
	}

	var parsed []rawItem
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return nil, err
	}

	items := make([]menu.MenuItem, 0, len(parsed))
	for _, r := range parsed {
		items = append(items, r.toMenuItem())
	}
	return items, nil
}

func (s *Synthesizer) fallbackMenu(restaurantName string, band priceBand) []menu.MenuItem {
	return []menu.MenuItem{
		{
			Name:         restaurantName + " House Special",
			Description:  "Our signature dish prepared with fresh ingredients. Please ask server for dietary information.",
			Price:        float64(band.Main),
			Category:     "House Specials",
			DietaryInfo:  []string{"Please ask server for details"},
			Restrictions: menu.NewRestrictionSet(menu.RestrictionNone),
		},
		{
			Name:         "Vegetarian Garden Plate",
			Description:  "Fresh seasonal vegetables with house-made sauce. Vegetarian friendly.",
			Price:        float64(band.Main - 5),
			Category:     "Mains",
			DietaryInfo:  []string{"VEGETARIAN"},
			Restrictions: menu.NewRestrictionSet(menu.RestrictionVegetarian),
		},
	}
}

type synthesisError string

func (e synthesisError) Error() string { return string(e) }

const errNoArray = synthesisError("response contained no JSON array")
