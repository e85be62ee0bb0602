package shopping

import (
	"fmt"
	"strings"

	"github.com/angelmondragon/pantryplan-backend/pkg/dates"
)

var csvHeader = []string{"Ingredient", "Quantity", "Unit"}

// CSV renders the shortfall with a header row. Every field is quoted with
// internal quotes doubled; rows are joined by "\n" with no trailing newline.
func CSV(lines []ShortfallLine) string {
	rows := make([]string, 0, len(lines)+1)
	rows = append(rows, csvRow(csvHeader))
	for _, line := range lines {
		rows = append(rows, csvRow([]string{line.Name, FormatQuantity(line.Quantity), string(line.Unit)}))
	}
	return strings.Join(rows, "\n")
}

func csvRow(fields []string) string {
	quoted := make([]string, len(fields))
	for i, field := range fields {
		quoted[i] = `"` + strings.ReplaceAll(field, `"`, `""`) + `"`
	}
	return strings.Join(quoted, ",")
}

// CSVFilename names the download for a range.
func CSVFilename(rng dates.Range) string {
	return fmt.Sprintf("shopping-list_%s_%s.csv", rng.Start, rng.End)
}

// Text renders a plain list for sharing. Lines whose key is in exclude
// (already bought) are left out.
func Text(rng dates.Range, lines []ShortfallLine, exclude map[Key]struct{}) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Shopping list (%s)", rng)
	for _, line := range lines {
		if _, skip := exclude[line.Key]; skip {
			continue
		}
		fmt.Fprintf(&b, "\n• %s: %s%s", line.Name, FormatQuantity(line.Quantity), line.Unit)
	}
	return b.String()
}
