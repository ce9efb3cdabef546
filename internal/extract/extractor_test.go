package extract

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExtract_MenuClassKeyword(t *testing.T) {
	t.Parallel()

	markup := `<html><body>
		<div class="food-menu"><p>Margherita Pizza with basil and mozzarella</p></div>
		<div class="sidebar">Follow us on social media for updates</div>
	</body></html>`

	got := New().Extract(markup)
	require.Contains(t, got, "Margherita Pizza with basil and mozzarella")
	require.NotContains(t, got, "social media")
}

func TestExtract_IDKeywordCaseInsensitive(t *testing.T) {
	t.Parallel()

	markup := `<html><body>
		<section id="Restaurant-Menu"><span>House-made pappardelle with short rib ragu</span></section>
	</body></html>`

	got := New().Extract(markup)
	require.Contains(t, got, "pappardelle with short rib ragu")
}

func TestExtract_StripsBoilerplateElements(t *testing.T) {
	t.Parallel()

	markup := `<html><body>
		<nav><div class="menu">Home About Contact Locations</div></nav>
		<header><div class="menu">Welcome header with menu word inside</div></header>
		<div class="dinner-menu">Seared salmon with lemon butter $24.00</div>
		<footer><div class="menu">Copyright and footer navigation links</div></footer>
		<script>var menu = "js should never leak into output";</script>
	</body></html>`

	got := New().Extract(markup)
	require.Contains(t, got, "Seared salmon with lemon butter")
	require.NotContains(t, got, "Copyright")
	require.NotContains(t, got, "js should never leak")
	require.NotContains(t, got, "Home About Contact")
}

func TestExtract_NoiseFilterDropsShortFragments(t *testing.T) {
	t.Parallel()

	markup := `<html><body>
		<div class="menu-item">Tiny</div>
		<div class="menu-item">Slow-roasted pork belly with apple slaw</div>
	</body></html>`

	got := New().Extract(markup)
	require.NotContains(t, got, "Tiny")
	require.Contains(t, got, "Slow-roasted pork belly")

	for _, fragment := range strings.Split(got, "\n") {
		require.Greater(t, len(fragment), 10)
	}
}

func TestExtract_PricePatternFallback(t *testing.T) {
	t.Parallel()

	markup := `<html><body>
		<div class="content-block"><p>Burger with fries $9.99 every day</p></div>
		<div class="content-block"><p>No prices mentioned anywhere here</p></div>
	</body></html>`

	got := New().Extract(markup)
	require.Contains(t, got, "Burger with fries $9.99")
	require.NotContains(t, got, "No prices mentioned")
}

func TestExtract_FallbackOnlyWhenKeywordPassEmpty(t *testing.T) {
	t.Parallel()

	markup := `<html><body>
		<div class="menu">Roasted half chicken with herbs</div>
		<p>Unrelated paragraph advertising a gift card for $50</p>
	</body></html>`

	got := New().Extract(markup)
	require.Contains(t, got, "Roasted half chicken")
	require.NotContains(t, got, "gift card")
}

func TestExtract_NoSignalReturnsEmpty(t *testing.T) {
	t.Parallel()

	markup := `<html><body><p>Just a page about our history and values</p></body></html>`
	require.Empty(t, New().Extract(markup))
}

func TestExtract_EmptyMarkup(t *testing.T) {
	t.Parallel()

	require.Empty(t, New().Extract(""))
	require.Empty(t, New().Extract("   \n\t"))
}

func TestExtract_ReportsProducingPass(t *testing.T) {
	t.Parallel()

	e := New()

	_, pass := e.extract(`<div class="menu">Margherita Pizza with basil and mozzarella</div>`)
	require.Equal(t, "keyword", pass)

	_, pass = e.extract(`<div>Daily special roasted beet salad $8.50</div>`)
	require.Equal(t, "price", pass)

	_, pass = e.extract(`<p>Just a page about our history and values</p>`)
	require.Equal(t, "none", pass)

	_, pass = e.extract("")
	require.Equal(t, "none", pass)
}
