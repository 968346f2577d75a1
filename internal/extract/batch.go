package extract

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/kaptinlin/jsonrepair"

	"gcpt/internal/fields"
	"gcpt/internal/models"
)

// Batch decoding errors.
var (
	ErrNotPlantData    = errors.New("payload does not look like plant data")
	ErrNoRecordsInBody = errors.New("no records in payload")
)

// wrapperKeys are the envelope keys APIs commonly wrap record lists in.
var wrapperKeys = []string{"data", "results", "items", "plants", "records"}

// plantIndicators are key fragments that mark a payload as plant data.
var plantIndicators = []string{
	"plant", "unit", "capacity", "coal", "power", "mw", "status",
	"country", "region", "owner", "parent", "start", "retire",
}

// decodeBatch parses a JSON payload into raw records. Malformed JSON gets
// one repair pass before giving up; envelopes around the record list are
// unwrapped.
func decodeBatch(payload string) ([]models.RawRecord, error) {
	var data any

	if err := json.Unmarshal([]byte(payload), &data); err != nil {
		repaired, repairErr := jsonrepair.JSONRepair(payload)
		if repairErr != nil {
			return nil, err
		}

		if err := json.Unmarshal([]byte(repaired), &data); err != nil {
			return nil, err
		}
	}

	records := collectRecords(data)
	if len(records) == 0 {
		return nil, ErrNoRecordsInBody
	}

	if !looksLikePlantData(records[0]) {
		return nil, ErrNotPlantData
	}

	return records, nil
}

// collectRecords flattens a decoded payload into a list of raw records,
// unwrapping one envelope level when present.
func collectRecords(data any) []models.RawRecord {
	switch v := data.(type) {
	case []any:
		return itemsToRecords(v)
	case map[string]any:
		for _, key := range wrapperKeys {
			if inner, ok := v[key].([]any); ok {
				return itemsToRecords(inner)
			}
		}
		// Single record payload
		return []models.RawRecord{models.RawRecord(v)}
	}

	return nil
}

func itemsToRecords(items []any) []models.RawRecord {
	var records []models.RawRecord

	for _, item := range items {
		if m, ok := item.(map[string]any); ok {
			records = append(records, models.RawRecord(m))
		}
	}

	return records
}

// looksLikePlantData checks the first record's keys for plant-tracker
// vocabulary, filtering out unrelated JSON blobs found on the page.
func looksLikePlantData(record models.RawRecord) bool {
	var keys []string

	for key := range record {
		keys = append(keys, strings.ToLower(key))
	}

	joined := strings.Join(keys, " ")

	for _, indicator := range plantIndicators {
		if strings.Contains(joined, indicator) {
			return true
		}
	}

	return false
}

// identity extracts the normalized (plant, unit, country) triple used as
// the deduplication key. Values are folded for comparison only; the raw
// record is left untouched.
func identity(record models.RawRecord) (plant, unit, country string) {
	for key, value := range record {
		field, ok := fields.Normalize(key)
		if !ok {
			continue
		}

		str, ok := value.(string)
		if !ok && value != nil {
			str = strings.TrimSpace(strings.ToLower(stringifyRaw(value)))
		}

		folded := fields.Fold(str)

		switch field {
		case fields.PlantName:
			if plant == "" {
				plant = folded
			}
		case fields.UnitName:
			if unit == "" {
				unit = folded
			}
		case fields.CountryArea:
			if country == "" {
				country = folded
			}
		}
	}

	return plant, unit, country
}

// populated counts the record's recognized, non-empty fields; the fuller
// record wins a dedup conflict.
func populated(record models.RawRecord) int {
	count := 0

	for key, value := range record {
		if _, ok := fields.Normalize(key); !ok {
			continue
		}

		if emptyValue(value) {
			continue
		}

		count++
	}

	return count
}

func emptyValue(value any) bool {
	if value == nil {
		return true
	}

	if s, ok := value.(string); ok {
		return strings.TrimSpace(s) == ""
	}

	return false
}

// mergeRaw combines two records describing the same plant unit. Primary's
// values always win; secondary contributes only the canonical fields the
// primary lacks. Neither input is mutated.
func mergeRaw(primary, secondary models.RawRecord) models.RawRecord {
	merged := make(models.RawRecord, len(primary)+len(secondary))
	have := make(map[string]bool, len(primary))

	for key, value := range primary {
		merged[key] = value

		if field, ok := fields.Normalize(key); ok && !emptyValue(value) {
			have[field] = true
		}
	}

	for key, value := range secondary {
		field, ok := fields.Normalize(key)
		if !ok || have[field] || emptyValue(value) {
			continue
		}

		merged[key] = value
	}

	return merged
}

func stringifyRaw(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return ""
		}

		return string(b)
	}
}

// dedupeRaw merges raw records that describe the same plant unit. The key
// is plant + unit + country. A unit-less record and a unit-bearing record
// of the same plant+country collapse into one record that always retains
// the unit identity, whichever arrived first; two records of the same unit
// keep the more populated one.
func dedupeRaw(records []models.RawRecord) []models.RawRecord {
	out := make([]models.RawRecord, 0, len(records))
	byKey := make(map[string]int)
	byPlant := make(map[string][]int)

	for _, rec := range records {
		plant, unit, country := identity(rec)
		if plant == "" && country == "" {
			// No identity to collide on.
			out = append(out, rec)

			continue
		}

		plantKey := plant + "|" + country
		fullKey := plantKey + "|" + unit

		if i, ok := byKey[fullKey]; ok {
			if populated(rec) > populated(out[i]) {
				out[i] = rec
			}

			continue
		}

		if unit == "" {
			// Unit-less duplicate of an already-seen unit: contribute
			// missing fields, never displace the unit identity.
			if idxs := byPlant[plantKey]; len(idxs) > 0 {
				i := idxs[0]
				out[i] = mergeRaw(out[i], rec)

				continue
			}
		} else if i, ok := byKey[plantKey+"|"]; ok {
			// A unit-bearing record absorbs the unit-less placeholder.
			out[i] = mergeRaw(rec, out[i])

			delete(byKey, plantKey+"|")

			byKey[fullKey] = i

			continue
		}

		out = append(out, rec)
		byKey[fullKey] = len(out) - 1
		byPlant[plantKey] = append(byPlant[plantKey], len(out)-1)
	}

	return out
}
