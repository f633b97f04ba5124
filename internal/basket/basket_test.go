package basket

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_Valid(t *testing.T) {
	c := Default()

	assert.NotEmpty(t, c.All())
	assert.NotEmpty(t, c.Headline())
	assert.Len(t, c.Categories(), 8)
}

func TestDefault_ShelterWeight(t *testing.T) {
	c := Default()

	it, ok := c.ItemBySeries("CUSR0000SAH1")
	require.True(t, ok)
	assert.Equal(t, "Shelter", it.Name)
	assert.Equal(t, "Housing", it.Category)
	assert.InDelta(t, 36.17, it.Weight, 1e-9)
}

func TestHeadlineMap_AllRolesPresent(t *testing.T) {
	m := Default().HeadlineMap()

	assert.Equal(t, "CPIAUCSL", m[RoleHeadline])
	assert.Equal(t, "CPILFESL", m[RoleCore])
	assert.Equal(t, "CPIUFDSL", m[RoleFood])
	assert.Equal(t, "CPIENGSL", m[RoleEnergy])
}

func TestPrimary_IncludesHeadlineRoles(t *testing.T) {
	c := Default()

	ids := map[string]bool{}
	for _, it := range c.Primary() {
		ids[it.SeriesID] = true
	}
	assert.True(t, ids["CPIAUCSL"])
	assert.True(t, ids["CPILFESL"])
	// One representative per category.
	assert.True(t, ids["CUSR0000SAH1"])
}

func TestBasketItemBySeries_ExcludesHeadline(t *testing.T) {
	c := Default()

	_, ok := c.BasketItemBySeries("CPIAUCSL")
	assert.False(t, ok)
	_, ok = c.BasketItemBySeries("CUSR0000SAH1")
	assert.True(t, ok)
}

func TestNew_RejectsDuplicateSeries(t *testing.T) {
	items := []Item{
		{Name: "A", SeriesID: "X1", Weight: 1, Category: "Cat"},
		{Name: "B", SeriesID: "X1", Weight: 2, Category: "Cat"},
	}
	_, err := New(items, validHeadline())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mapped to both")
}

func TestNew_RejectsNonPositiveWeight(t *testing.T) {
	items := []Item{
		{Name: "A", SeriesID: "X1", Weight: 0, Category: "Cat"},
	}
	_, err := New(items, validHeadline())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "weight")
}

func TestCategoryWeights_LeadingItemPerCategory(t *testing.T) {
	items := []Item{
		{Name: "A", SeriesID: "X1", Weight: 2.5, Category: "Cat"},
		{Name: "B", SeriesID: "X2", Weight: 1.5, Category: "Cat"},
		{Name: "C", SeriesID: "X3", Weight: 4.0, Category: "Other"},
	}
	c, err := New(items, validHeadline())
	require.NoError(t, err)

	w := c.CategoryWeights()
	assert.InDelta(t, 2.5, w["Cat"], 1e-9)
	assert.InDelta(t, 4.0, w["Other"], 1e-9)
}

func validHeadline() []Item {
	return []Item{
		{Name: "All Items", SeriesID: "H1", Weight: 100, Category: "Headline", Role: RoleHeadline},
		{Name: "Core", SeriesID: "H2", Weight: 79, Category: "Headline", Role: RoleCore},
		{Name: "Food", SeriesID: "H3", Weight: 13, Category: "Headline", Role: RoleFood},
		{Name: "Energy", SeriesID: "H4", Weight: 7, Category: "Headline", Role: RoleEnergy},
	}
}

func TestLoadFile_RoundTrip(t *testing.T) {
	yaml := `
items:
  - name: Shelter
    series_id: CUSR0000SAH1
    weight: 36.17
    category: Housing
headline:
  - name: All Items
    series_id: CPIAUCSL
    weight: 100
    category: Headline
    role: headline
  - name: Core
    series_id: CPILFESL
    weight: 79
    category: Headline
    role: core
  - name: Food
    series_id: CPIUFDSL
    weight: 13
    category: Headline
    role: food
  - name: Energy
    series_id: CPIENGSL
    weight: 7
    category: Headline
    role: energy
`
	path := filepath.Join(t.TempDir(), "basket.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	c, err := LoadFile(path)
	require.NoError(t, err)

	it, ok := c.ItemBySeries("CUSR0000SAH1")
	require.True(t, ok)
	assert.InDelta(t, 36.17, it.Weight, 1e-9)
	assert.Equal(t, "CPIAUCSL", c.HeadlineMap()[RoleHeadline])
}

func TestLoadFile_MalformedIsFatal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "basket.yaml")
	require.NoError(t, os.WriteFile(path, []byte("items: {not: [valid"), 0o644))

	_, err := LoadFile(path)
	require.Error(t, err)
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}
