// Package cleaner validates raw tracker records and coerces them into the
// canonical schema.
package cleaner

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"gcpt/internal/fields"
	"gcpt/internal/logger"
	"gcpt/internal/models"
	"gcpt/pkg/utils"
)

// Rejection errors. Records failing validation are rejected with one of
// these, never with a panic or a transport error.
var (
	ErrEmptyRecord          = errors.New("record has no recognized fields")
	ErrMissingRequiredField = errors.New("missing required field")
)

// minYear is the lower bound for plausible lifecycle years.
const minYear = 1900

// yearHorizon extends the upper bound past the current year for planned
// units.
const yearHorizon = 20

// numberPattern matches the first signed decimal number in a string once
// thousands separators are stripped, skipping units and currency symbols.
var numberPattern = regexp.MustCompile(`-?\d+(?:\.\d+)?`)

// Cleaner turns one RawRecord into a validated PlantRecord or a rejection.
type Cleaner struct {
	log     *logger.Logger
	maxYear int
}

// NewCleaner creates a cleaner that logs conflicts and flags through log.
func NewCleaner(log *logger.Logger) *Cleaner {
	return &Cleaner{
		log:     log,
		maxYear: time.Now().Year() + yearHorizon,
	}
}

// Clean maps the record's keys onto the canonical schema, coerces every
// value, derives plant_unit_name and validates required fields. The
// returned error is a rejection reason; it never wraps transport or parse
// panics.
func (c *Cleaner) Clean(raw models.RawRecord) (*models.PlantRecord, error) {
	mapped := c.mapKeys(raw)
	if len(mapped) == 0 {
		return nil, ErrEmptyRecord
	}

	rec := &models.PlantRecord{
		PlantName:         text(mapped[fields.PlantName]),
		UnitName:          text(mapped[fields.UnitName]),
		PlantUnitName:     text(mapped[fields.PlantUnitName]),
		Owner:             text(mapped[fields.Owner]),
		ParentCompany:     text(mapped[fields.ParentCompany]),
		CapacityMW:        capacity(mapped[fields.CapacityMW]),
		Region:            text(mapped[fields.Region]),
		CountryArea:       text(mapped[fields.CountryArea]),
		SubnationalUnit:   text(mapped[fields.SubnationalUnit]),
		Latitude:          coordinate(mapped[fields.Latitude], 90),
		Longitude:         coordinate(mapped[fields.Longitude], 180),
		Technology:        text(mapped[fields.Technology]),
		FuelType:          text(mapped[fields.FuelType]),
		StartYear:         c.year(mapped[fields.StartYear]),
		RetiredYear:       c.year(mapped[fields.RetiredYear]),
		AnnouncedYear:     c.year(mapped[fields.AnnouncedYear]),
		ConstructionStart: c.year(mapped[fields.ConstructionStart]),
		OperatingYear:     c.year(mapped[fields.OperatingYear]),
		MothballedYear:    c.year(mapped[fields.MothballedYear]),
		CancelledYear:     c.year(mapped[fields.CancelledYear]),
		WikiURL:           wikiURL(mapped[fields.WikiURL]),
	}

	rec.Status = c.status(mapped[fields.Status], rec)

	if rec.PlantUnitName == "" {
		rec.PlantUnitName = joinPlantUnit(rec.PlantName, rec.UnitName)
	}

	if rec.CapacityMW == nil {
		return nil, fmt.Errorf("%w: %s", ErrMissingRequiredField, fields.CapacityMW)
	}

	if rec.CountryArea == "" {
		return nil, fmt.Errorf("%w: %s", ErrMissingRequiredField, fields.CountryArea)
	}

	return rec, nil
}

// mapKeys resolves every raw key through the field normalizer. Unknown
// keys are dropped silently. On collision the first non-empty value wins
// and the conflict is logged; raw maps carry no iteration order, so keys
// are visited sorted to keep the outcome stable across runs.
func (c *Cleaner) mapKeys(raw models.RawRecord) map[string]string {
	mapped := make(map[string]string)

	keys := make([]string, 0, len(raw))
	for key := range raw {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	for _, key := range keys {
		value := raw[key]
		field, ok := fields.Normalize(key)
		if !ok {
			continue
		}

		str := stringify(value)
		if str == "" {
			continue
		}

		if prev, exists := mapped[field]; exists {
			if prev != str {
				c.log.Warn("field conflict, keeping first value",
					"field", field,
					"kept", utils.Truncate(prev, 60),
					"dropped", utils.Truncate(str, 60))
			}

			continue
		}

		mapped[field] = str
	}

	return mapped
}

// status normalizes the status value and flags it when it falls outside
// the known enumeration. Unrecognized values pass through unchanged.
func (c *Cleaner) status(value string, rec *models.PlantRecord) models.Status {
	s := models.Status(strings.ToLower(utils.CollapseWhitespace(value)))
	if s != "" && !s.Known() {
		c.log.Warn("unrecognized status",
			"status", string(s),
			"plant", rec.PlantName,
			"country", rec.CountryArea)
	}

	return s
}

// year parses a 4-digit year, rejecting values outside the plausible
// range. Invalid or out-of-range values become absent.
func (c *Cleaner) year(value string) *int {
	num := extractNumber(value)
	if num == nil {
		return nil
	}

	y := int(*num)
	if y < minYear || y > c.maxYear {
		return nil
	}

	return &y
}

// capacity parses a non-negative megawatt figure, tolerating decoration
// like "1,200 MW". Negative or unparseable values become absent.
func capacity(value string) *float64 {
	num := extractNumber(value)
	if num == nil || *num < 0 {
		return nil
	}

	return num
}

// coordinate parses a float bounded by ±bound. Out-of-range values become
// absent; they are never clamped or wrapped.
func coordinate(value string, bound float64) *float64 {
	num := extractNumber(value)
	if num == nil || *num < -bound || *num > bound {
		return nil
	}

	return num
}

// extractNumber strips thousands separators and non-numeric decoration,
// then parses the first number found.
func extractNumber(value string) *float64 {
	cleaned := strings.ReplaceAll(strings.TrimSpace(value), ",", "")

	match := numberPattern.FindString(cleaned)
	if match == "" {
		return nil
	}

	num, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return nil
	}

	return &num
}

func text(value string) string {
	return utils.CollapseWhitespace(value)
}

func wikiURL(value string) string {
	trimmed := strings.TrimSpace(value)
	if !utils.IsValidURL(trimmed) {
		return ""
	}

	return trimmed
}

// joinPlantUnit derives plant_unit_name when the upstream record did not
// supply one.
func joinPlantUnit(plant, unit string) string {
	switch {
	case plant != "" && unit != "":
		return plant + " " + unit
	case plant != "":
		return plant
	default:
		return unit
	}
}

// stringify renders a raw value for coercion. JSON numbers arrive as
// float64; integral values must not pick up a trailing ".0".
func stringify(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return strings.TrimSpace(fmt.Sprintf("%v", v))
	}
}
