// Package assembler finalizes the cleaned record collection: dedupe, sort
// and derived summary statistics.
package assembler

import (
	"sort"
	"strings"

	"gcpt/internal/fields"
	"gcpt/internal/models"
)

// Assemble deduplicates and sorts cleaned records into the final ordered
// sequence handed to the output writers. Running it again on its own
// output, in any input order, yields the identical sequence.
func Assemble(records []*models.PlantRecord) []*models.PlantRecord {
	out := dedupe(records)

	sort.SliceStable(out, func(i, j int) bool {
		return less(out[i], out[j])
	})

	return out
}

// dedupe keeps the most complete record per (country_area,
// plant_unit_name) key; ties keep the first encountered.
func dedupe(records []*models.PlantRecord) []*models.PlantRecord {
	out := make([]*models.PlantRecord, 0, len(records))
	index := make(map[string]int)

	for _, rec := range records {
		key := strings.ToLower(rec.CountryArea) + "|" + strings.ToLower(rec.PlantUnitName)

		if i, ok := index[key]; ok {
			if rec.Completeness() > out[i].Completeness() {
				out[i] = rec
			}

			continue
		}

		out = append(out, rec)
		index[key] = len(out) - 1
	}

	return out
}

// less orders by country, then plant name (plant_unit_name when the plant
// name is absent), with unit name as the final tie-break so the order is
// total.
func less(a, b *models.PlantRecord) bool {
	if a.CountryArea != b.CountryArea {
		return a.CountryArea < b.CountryArea
	}

	an, bn := sortName(a), sortName(b)
	if an != bn {
		return an < bn
	}

	return a.UnitName < b.UnitName
}

func sortName(r *models.PlantRecord) string {
	if r.PlantName != "" {
		return r.PlantName
	}

	return r.PlantUnitName
}

// Summary is the read-only derived view over the finalized dataset.
type Summary struct {
	TotalRecords  int
	ByCountry     map[string]int
	ByStatus      map[string]int
	Capacity      CapacityStats
	FieldCoverage map[string]int
}

// CapacityStats describes the capacity_mw distribution.
type CapacityStats struct {
	Count   int
	TotalMW float64
	MinMW   float64
	MaxMW   float64
	MeanMW  float64
}

// Summarize computes summary statistics over the finalized dataset. The
// result is derived once and not mutated further.
func Summarize(records []*models.PlantRecord) Summary {
	summary := Summary{
		TotalRecords:  len(records),
		ByCountry:     make(map[string]int),
		ByStatus:      make(map[string]int),
		FieldCoverage: make(map[string]int),
	}

	for _, rec := range records {
		summary.ByCountry[rec.CountryArea]++

		if rec.Status != "" {
			summary.ByStatus[string(rec.Status)]++
		}

		for _, name := range fields.Canonical {
			if rec.Field(name) != "" {
				summary.FieldCoverage[name]++
			}
		}

		if rec.CapacityMW != nil {
			mw := *rec.CapacityMW

			if summary.Capacity.Count == 0 || mw < summary.Capacity.MinMW {
				summary.Capacity.MinMW = mw
			}

			if mw > summary.Capacity.MaxMW {
				summary.Capacity.MaxMW = mw
			}

			summary.Capacity.Count++
			summary.Capacity.TotalMW += mw
		}
	}

	if summary.Capacity.Count > 0 {
		summary.Capacity.MeanMW = summary.Capacity.TotalMW / float64(summary.Capacity.Count)
	}

	return summary
}

// TopCountries returns countries ordered by record count descending, with
// alphabetical order breaking ties.
func (s Summary) TopCountries(limit int) []CountryCount {
	counts := make([]CountryCount, 0, len(s.ByCountry))
	for country, count := range s.ByCountry {
		counts = append(counts, CountryCount{Country: country, Count: count})
	}

	sort.Slice(counts, func(i, j int) bool {
		if counts[i].Count != counts[j].Count {
			return counts[i].Count > counts[j].Count
		}

		return counts[i].Country < counts[j].Country
	})

	if limit > 0 && len(counts) > limit {
		counts = counts[:limit]
	}

	return counts
}

// CountryCount is one row of the per-country breakdown.
type CountryCount struct {
	Country string
	Count   int
}
