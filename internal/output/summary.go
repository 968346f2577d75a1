package output

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"

	"gcpt/internal/assembler"
	"gcpt/internal/fields"
	"gcpt/internal/models"
	"gcpt/pkg/provenance"
)

// topCountryLimit caps the per-country breakdown in the report.
const topCountryLimit = 20

// RenderSummary builds the human-readable summary report, stamped with a
// provenance block.
func RenderSummary(summary assembler.Summary, generatedAt time.Time) string {
	var b strings.Builder

	b.WriteString("Global Coal Plant Tracker Data Summary\n")
	fmt.Fprintf(&b, "Generated on: %s\n", generatedAt.UTC().Format(time.RFC3339))
	b.WriteString(strings.Repeat("=", 50) + "\n\n")

	fmt.Fprintf(&b, "Total Records: %d\n\n", summary.TotalRecords)

	b.WriteString("Columns:\n")

	for _, name := range fields.Canonical {
		fmt.Fprintf(&b, "  %s %d/%d non-null values\n",
			pad(name+":", 20), summary.FieldCoverage[name], summary.TotalRecords)
	}

	b.WriteString("\nRecords by Country:\n")

	top := summary.TopCountries(topCountryLimit)
	for _, cc := range top {
		fmt.Fprintf(&b, "  %s %d\n", pad(cc.Country+":", 24), cc.Count)
	}

	if rest := len(summary.ByCountry) - len(top); rest > 0 {
		fmt.Fprintf(&b, "  ... and %d more countries\n", rest)
	}

	b.WriteString("\nRecords by Status:\n")

	for _, sc := range statusRows(summary) {
		fmt.Fprintf(&b, "  %s %d\n", pad(sc.status+":", 24), sc.count)
	}

	b.WriteString("\nCapacity Statistics (MW):\n")
	fmt.Fprintf(&b, "  %s %d\n", pad("count:", 8), summary.Capacity.Count)
	fmt.Fprintf(&b, "  %s %.2f\n", pad("total:", 8), summary.Capacity.TotalMW)
	fmt.Fprintf(&b, "  %s %.2f\n", pad("mean:", 8), summary.Capacity.MeanMW)
	fmt.Fprintf(&b, "  %s %.2f\n", pad("min:", 8), summary.Capacity.MinMW)
	fmt.Fprintf(&b, "  %s %.2f\n", pad("max:", 8), summary.Capacity.MaxMW)

	return provenance.Stamp(b.String(), summary.TotalRecords)
}

// WriteSummary renders the summary report and writes it to path.
func WriteSummary(path string, summary assembler.Summary, generatedAt time.Time) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	report := RenderSummary(summary, generatedAt)

	if err := os.WriteFile(path, []byte(report), 0644); err != nil {
		return fmt.Errorf("failed to write summary: %w", err)
	}

	return nil
}

// pad right-pads to a display width; country names are not all ASCII.
func pad(s string, width int) string {
	gap := width - runewidth.StringWidth(s)
	if gap <= 0 {
		return s
	}

	return s + strings.Repeat(" ", gap)
}

type statusCount struct {
	status string
	count  int
}

// statusRows orders the status breakdown with the known enumeration first,
// then any flagged pass-through statuses alphabetically.
func statusRows(summary assembler.Summary) []statusCount {
	known := []models.Status{
		models.StatusOperating,
		models.StatusConstruction,
		models.StatusPermitted,
		models.StatusPrePermit,
		models.StatusAnnounced,
		models.StatusShelved,
		models.StatusMothballed,
		models.StatusRetired,
		models.StatusCancelled,
	}

	var rows []statusCount

	seen := make(map[string]bool)

	for _, s := range known {
		if count, ok := summary.ByStatus[string(s)]; ok {
			rows = append(rows, statusCount{status: string(s), count: count})
			seen[string(s)] = true
		}
	}

	var rest []string

	for status := range summary.ByStatus {
		if !seen[status] {
			rest = append(rest, status)
		}
	}

	// Alphabetical for determinism.
	sort.Strings(rest)

	for _, status := range rest {
		rows = append(rows, statusCount{status: status, count: summary.ByStatus[status]})
	}

	return rows
}
