// Package basket defines the CPI basket catalog: the static mapping of
// logical series names to FRED series IDs with category and weight metadata.
// Weights are BLS relative-importance percentages; subcategory weights are
// approximate and do not sum exactly to their parent category.
package basket

import (
	"github.com/rotisserie/eris"
)

// Item is a single series definition in the basket. Immutable after startup.
// Role is set only on headline indices and names the slot the series fills in
// the inflation summary.
type Item struct {
	Name            string  `yaml:"name"`
	SeriesID        string  `yaml:"series_id"`
	Weight          float64 `yaml:"weight"`
	Category        string  `yaml:"category"`
	Subcategory     string  `yaml:"subcategory,omitempty"`
	Description     string  `yaml:"description,omitempty"`
	UpdateFrequency string  `yaml:"update_frequency,omitempty"`
	Role            string  `yaml:"role,omitempty"`
}

// Headline roles used by the inflation summary.
const (
	RoleHeadline = "headline"
	RoleCore     = "core"
	RoleFood     = "food"
	RoleEnergy   = "energy"
)

var summaryRoles = []string{RoleHeadline, RoleCore, RoleFood, RoleEnergy}

// Catalog is an ordered, immutable set of basket items plus headline indices.
type Catalog struct {
	items      []Item
	headline   []Item
	bySeries   map[string]Item
	basketOnly map[string]Item
	byRole     map[string]Item
}

// Default returns the compiled-in catalog.
func Default() *Catalog {
	c, err := New(defaultItems(), defaultHeadline())
	if err != nil {
		// The compiled-in tables are covered by tests; failing here is a
		// programming error, not a runtime condition.
		panic(err)
	}
	return c
}

// New builds a catalog from explicit item tables and validates it.
func New(items, headline []Item) (*Catalog, error) {
	c := &Catalog{
		items:      items,
		headline:   headline,
		bySeries:   make(map[string]Item, len(items)+len(headline)),
		basketOnly: make(map[string]Item, len(items)),
		byRole:     make(map[string]Item, len(headline)),
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	for _, it := range items {
		c.bySeries[it.SeriesID] = it
		c.basketOnly[it.SeriesID] = it
	}
	for _, it := range headline {
		if _, ok := c.bySeries[it.SeriesID]; !ok {
			c.bySeries[it.SeriesID] = it
		}
		if it.Role != "" {
			c.byRole[it.Role] = it
		}
	}
	return c, nil
}

func (c *Catalog) validate() error {
	seen := make(map[string]string)
	for _, it := range append(append([]Item{}, c.items...), c.headline...) {
		if it.Name == "" || it.SeriesID == "" {
			return eris.Errorf("basket: item %q has empty name or series id", it.Name)
		}
		if it.Weight <= 0 {
			return eris.Errorf("basket: item %s (%s) has non-positive weight %.2f", it.Name, it.SeriesID, it.Weight)
		}
		if prev, dup := seen[it.SeriesID]; dup && prev != it.Name {
			return eris.Errorf("basket: series %s mapped to both %q and %q", it.SeriesID, prev, it.Name)
		}
		seen[it.SeriesID] = it.Name
	}
	roles := make(map[string]bool)
	for _, it := range c.headline {
		if it.Role != "" {
			if roles[it.Role] {
				return eris.Errorf("basket: duplicate headline role %s", it.Role)
			}
			roles[it.Role] = true
		}
	}
	for _, role := range summaryRoles {
		if !roles[role] {
			return eris.Errorf("basket: missing headline role %s", role)
		}
	}
	return nil
}

// All returns every basket item in declaration order, headline indices last.
func (c *Catalog) All() []Item {
	out := make([]Item, 0, len(c.items)+len(c.headline))
	out = append(out, c.items...)
	out = append(out, c.headline...)
	return out
}

// Headline returns the headline index items in declaration order.
func (c *Catalog) Headline() []Item {
	return append([]Item{}, c.headline...)
}

// ByCategory returns all basket items in the given category, in declaration order.
func (c *Catalog) ByCategory(category string) []Item {
	var out []Item
	for _, it := range c.items {
		if it.Category == category {
			out = append(out, it)
		}
	}
	return out
}

// ItemBySeries looks up an item by its FRED series ID, headline indices included.
func (c *Catalog) ItemBySeries(seriesID string) (Item, bool) {
	it, ok := c.bySeries[seriesID]
	return it, ok
}

// BasketItemBySeries looks up a basket item by series ID, excluding headline
// indices. The category breakdown uses this so headline composites are not
// aggregated as if they were a spending category.
func (c *Catalog) BasketItemBySeries(seriesID string) (Item, bool) {
	it, ok := c.basketOnly[seriesID]
	return it, ok
}

// Primary returns the curated subset used for routine refreshes: the summary
// headline roles, the leading item of each major category, and the main
// volatility drivers. Bounds external-call volume per run.
func (c *Catalog) Primary() []Item {
	var out []Item
	for _, role := range summaryRoles {
		if it, ok := c.byRole[role]; ok {
			out = append(out, it)
		}
	}
	seenCat := make(map[string]bool)
	for _, it := range c.items {
		if !seenCat[it.Category] {
			seenCat[it.Category] = true
			out = append(out, it)
		}
	}
	for _, id := range volatilityDrivers {
		if it, ok := c.bySeries[id]; ok {
			out = append(out, it)
		}
	}
	return out
}

// HeadlineMap returns role -> series ID for the inflation summary join.
func (c *Catalog) HeadlineMap() map[string]string {
	m := make(map[string]string, len(c.byRole))
	for role, it := range c.byRole {
		m[role] = it.SeriesID
	}
	return m
}

// CategoryWeights returns the leading item's weight per category, keyed by
// category name. The leading item is the broad index for its group.
func (c *Catalog) CategoryWeights() map[string]float64 {
	w := make(map[string]float64)
	for _, it := range c.items {
		if _, ok := w[it.Category]; !ok {
			w[it.Category] = it.Weight
		}
	}
	return w
}

// Categories returns the distinct category names in declaration order.
func (c *Catalog) Categories() []string {
	var out []string
	seen := make(map[string]bool)
	for _, it := range c.items {
		if !seen[it.Category] {
			seen[it.Category] = true
			out = append(out, it.Category)
		}
	}
	return out
}
