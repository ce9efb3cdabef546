package llm

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/willzeng274/HaystackDiet/internal/menu"
)

// fakeCompleter routes prompts by contract: classification prompts get
// classifyResponse, everything else consumes itemResponses in order.
type fakeCompleter struct {
	mu               sync.Mutex
	itemResponses    []string
	itemErr          error
	classifyResponse string
	classifyErr      error
	calls            int
}

func (f *fakeCompleter) Complete(_ context.Context, prompt Prompt) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if strings.Contains(prompt.System, "identifying dietary restrictions") {
		return f.classifyResponse, f.classifyErr
	}
	if f.itemErr != nil {
		return "", f.itemErr
	}
	if len(f.itemResponses) == 0 {
		return "", errors.New("no scripted response")
	}
	resp := f.itemResponses[0]
	f.itemResponses = f.itemResponses[1:]
	return resp, nil
}

func TestExtractItemsParsesPrice(t *testing.T) {
	t.Parallel()

	fake := &fakeCompleter{
		itemResponses: []string{`[{"name":"Burger","description":"contains gluten","price":9.99,"category":"Mains","dietary_info":[]}]`},
	}
	s := NewSynthesizer(fake, zap.NewNop())

	items := s.ExtractItems(context.Background(), "Burger - $9.99 - contains gluten", "Joe's Diner")
	require.NotEmpty(t, items)
	require.Equal(t, 9.99, items[0].Price)
	require.Equal(t, "Burger", items[0].Name)
}

func TestExtractItemsEmptyTextSkipsProvider(t *testing.T) {
	t.Parallel()

	fake := &fakeCompleter{}
	s := NewSynthesizer(fake, zap.NewNop())

	require.Empty(t, s.ExtractItems(context.Background(), "", "Joe's Diner"))
	require.Zero(t, fake.calls)
}

func TestExtractItemsRecoversWrappedArray(t *testing.T) {
	t.Parallel()

	fake := &fakeCompleter{
		itemResponses: []string{"Here is the menu you asked for:\n```json\n[{\"name\":\"Pad Thai\",\"price\":12.5,\"category\":\"Mains\"}]\n```\nEnjoy!"},
	}
	s := NewSynthesizer(fake, zap.NewNop())

	items := s.ExtractItems(context.Background(), "some menu text", "Thai Garden")
	require.Len(t, items, 1)
	require.Equal(t, "Pad Thai", items[0].Name)
	require.Equal(t, 12.5, items[0].Price)
}

func TestExtractItemsMalformedResponse(t *testing.T) {
	t.Parallel()

	fake := &fakeCompleter{itemResponses: []string{"sorry, I could not find any menu"}}
	s := NewSynthesizer(fake, zap.NewNop())

	require.Empty(t, s.ExtractItems(context.Background(), "text", "Joe's Diner"))
}

func TestExtractItemsDefaultsCategory(t *testing.T) {
	t.Parallel()

	fake := &fakeCompleter{itemResponses: []string{`[{"name":"Soup","price":5.5}]`}}
	s := NewSynthesizer(fake, zap.NewNop())

	items := s.ExtractItems(context.Background(), "text", "Joe's Diner")
	require.Len(t, items, 1)
	require.Equal(t, menu.DefaultCategory, items[0].Category)
}

func TestSynthesizeMenuTagsGeneratedItems(t *testing.T) {
	t.Parallel()

	fake := &fakeCompleter{
		itemResponses:    []string{`[{"name":"Lentil Curry","description":"red lentils, coconut milk","price":14,"category":"Mains","dietary_info":["VEGAN"]}]`},
		classifyResponse: `["VEGAN", "GLUTEN"]`,
	}
	s := NewSynthesizer(fake, zap.NewNop(), WithRetryPause(time.Millisecond))

	items := s.SynthesizeMenu(context.Background(), "Curry House", 2)
	require.Len(t, items, 1)
	require.True(t, items[0].Restrictions.Has(menu.RestrictionVegan))
	require.True(t, items[0].Restrictions.Has(menu.RestrictionGluten))
}

func TestSynthesizeMenuFallsBackAfterRetries(t *testing.T) {
	t.Parallel()

	fake := &fakeCompleter{itemErr: errors.New("provider outage")}
	s := NewSynthesizer(fake, zap.NewNop(), WithRetryPause(time.Millisecond))

	items := s.SynthesizeMenu(context.Background(), "Joe's Diner", 2)
	require.Len(t, items, 2)
	require.Equal(t, "Joe's Diner House Special", items[0].Name)
	require.True(t, items[0].Restrictions.Has(menu.RestrictionNone))
	require.Equal(t, "Vegetarian Garden Plate", items[1].Name)
	require.True(t, items[1].Restrictions.Has(menu.RestrictionVegetarian))
	require.Equal(t, 3, fake.calls)
}

func TestSynthesizeMenuFallbackPricesFollowTier(t *testing.T) {
	t.Parallel()

	fake := &fakeCompleter{itemErr: errors.New("provider outage")}
	s := NewSynthesizer(fake, zap.NewNop(), WithRetryPause(time.Millisecond))

	lowCost := s.SynthesizeMenu(context.Background(), "Cheap Eats", 0)
	require.Equal(t, 15.0, lowCost[0].Price)
	require.Equal(t, 10.0, lowCost[1].Price)

	highEnd := s.SynthesizeMenu(context.Background(), "Fine Dining", 4)
	require.Equal(t, 40.0, highEnd[0].Price)
	require.Equal(t, 35.0, highEnd[1].Price)
}

func TestTagItemsClassifiesUntaggedOnly(t *testing.T) {
	t.Parallel()

	fake := &fakeCompleter{classifyResponse: `["VEGETARIAN"]`}
	s := NewSynthesizer(fake, zap.NewNop())

	items := s.TagItems(context.Background(), []menu.MenuItem{
		{Name: "Pre-tagged", Restrictions: menu.NewRestrictionSet(menu.RestrictionVegan)},
		{Name: "Untagged"},
	})
	require.Len(t, items, 2)
	require.True(t, items[0].Restrictions.Has(menu.RestrictionVegan))
	require.True(t, items[1].Restrictions.Has(menu.RestrictionVegetarian))
	require.Equal(t, 1, fake.calls)
}

func TestTagItemsNeverReturnsEmptySet(t *testing.T) {
	t.Parallel()

	cases := map[string]*fakeCompleter{
		"provider error":  {classifyErr: errors.New("boom")},
		"no array":        {classifyResponse: "I am not sure"},
		"invalid json":    {classifyResponse: `["VEGAN"`},
		"unknown members": {classifyResponse: `["PESCATARIAN"]`},
		"empty array":     {classifyResponse: `[]`},
	}
	for name, fake := range cases {
		s := NewSynthesizer(fake, zap.NewNop())
		items := s.TagItems(context.Background(), []menu.MenuItem{{Name: "Mystery Dish"}})
		require.Len(t, items, 1, name)
		require.True(t, items[0].Restrictions.Has(menu.RestrictionNone), name)
	}
}

func TestTagItemsPreservesOrder(t *testing.T) {
	t.Parallel()

	fake := &fakeCompleter{classifyResponse: `["NONE"]`}
	s := NewSynthesizer(fake, zap.NewNop())

	input := []menu.MenuItem{{Name: "a"}, {Name: "b"}, {Name: "c"}, {Name: "d"}}
	items := s.TagItems(context.Background(), input)
	require.Len(t, items, 4)
	for i, item := range items {
		require.Equal(t, input[i].Name, item.Name)
	}
}

func TestTruncateRunesKeepsValidUTF8(t *testing.T) {
	t.Parallel()

	text := "a" + strings.Repeat("é", 3000)
	got := truncateRunes(text, maxExtractChars)
	require.LessOrEqual(t, len(got), maxExtractChars)
	require.True(t, utf8.ValidString(got))
	require.Equal(t, maxExtractChars-1, len(got))

	require.Equal(t, "short", truncateRunes("short", maxExtractChars))

	prompt := buildExtractPrompt(text, "Chez Node")
	require.True(t, utf8.ValidString(prompt))
}
