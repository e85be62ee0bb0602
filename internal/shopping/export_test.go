package shopping

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/angelmondragon/pantryplan-backend/pkg/dates"
	"github.com/angelmondragon/pantryplan-backend/pkg/enums"
)

func TestCSVTwoLineShortfall(t *testing.T) {
	csv := CSV(scenarioShortfall())

	lines := strings.Split(csv, "\n")
	assert.Len(t, lines, 3)
	assert.Equal(t, `"Ingredient","Quantity","Unit"`, lines[0])
	assert.Equal(t, `"Egg","4","u"`, lines[1])
	assert.Equal(t, `"Flour","250","g"`, lines[2])
	assert.False(t, strings.HasSuffix(csv, "\n"))
}

func TestCSVEscapesQuotesAndRounds(t *testing.T) {
	csv := CSV([]ShortfallLine{
		{Key: NewKey(milkID, enums.UnitMilliliter), Name: `Milk "whole", fresh`, Quantity: qty("333.3333")},
	})
	assert.Equal(t, "\"Ingredient\",\"Quantity\",\"Unit\"\n\"Milk \"\"whole\"\", fresh\",\"333.33\",\"ml\"", csv)
}

func TestCSVEmptyShortfallIsHeaderOnly(t *testing.T) {
	assert.Equal(t, `"Ingredient","Quantity","Unit"`, CSV(nil))
}

func TestTextListExcludesCheckedKeys(t *testing.T) {
	rng := dates.Range{Start: dates.New(2024, 3, 4), End: dates.New(2024, 3, 10)}

	full := Text(rng, scenarioShortfall(), nil)
	assert.Equal(t, "Shopping list (2024-03-04 – 2024-03-10)\n• Egg: 4u\n• Flour: 250g", full)

	partial := Text(rng, scenarioShortfall(), map[Key]struct{}{NewKey(eggID, enums.UnitEach): {}})
	assert.Equal(t, "Shopping list (2024-03-04 – 2024-03-10)\n• Flour: 250g", partial)

	assert.Equal(t, "shopping-list_2024-03-04_2024-03-10.csv", CSVFilename(rng))
}

func TestKeyRoundTrip(t *testing.T) {
	key := NewKey(flourID, enums.UnitGram)
	parsed, err := ParseKey(key.String())
	assert.NoError(t, err)
	assert.Equal(t, key, parsed)

	for _, raw := range []string{"", "flour/g", flourID.String(), flourID.String() + "/"} {
		_, err := ParseKey(raw)
		assert.Errorf(t, err, "expected %q to fail", raw)
	}
}
