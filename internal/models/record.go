// Package models defines the record types flowing through the extraction
// pipeline.
package models

import (
	"strconv"

	"gcpt/internal/fields"
)

// RawRecord is an unvalidated record as delivered by an extraction
// strategy. Keys are upstream-controlled and carry no guarantees.
type RawRecord map[string]any

// PlantRecord is a cleaned, validated record conforming to the fixed
// 22-field tracker schema. Optional numeric fields are nil when absent;
// optional text fields are empty. CapacityMW and CountryArea are always
// set on records emitted by the cleaner.
type PlantRecord struct {
	PlantName         string
	UnitName          string
	PlantUnitName     string
	Owner             string
	ParentCompany     string
	CapacityMW        *float64
	Status            Status
	StartYear         *int
	RetiredYear       *int
	Region            string
	CountryArea       string
	SubnationalUnit   string
	Latitude          *float64
	Longitude         *float64
	Technology        string
	FuelType          string
	AnnouncedYear     *int
	ConstructionStart *int
	OperatingYear     *int
	MothballedYear    *int
	CancelledYear     *int
	WikiURL           string
}

// Field returns the formatted value of a canonical field, or the empty
// string when the field is absent.
func (r *PlantRecord) Field(name string) string {
	switch name {
	case fields.PlantName:
		return r.PlantName
	case fields.UnitName:
		return r.UnitName
	case fields.PlantUnitName:
		return r.PlantUnitName
	case fields.Owner:
		return r.Owner
	case fields.ParentCompany:
		return r.ParentCompany
	case fields.CapacityMW:
		return formatFloat(r.CapacityMW)
	case fields.Status:
		return string(r.Status)
	case fields.StartYear:
		return formatInt(r.StartYear)
	case fields.RetiredYear:
		return formatInt(r.RetiredYear)
	case fields.Region:
		return r.Region
	case fields.CountryArea:
		return r.CountryArea
	case fields.SubnationalUnit:
		return r.SubnationalUnit
	case fields.Latitude:
		return formatFloat(r.Latitude)
	case fields.Longitude:
		return formatFloat(r.Longitude)
	case fields.Technology:
		return r.Technology
	case fields.FuelType:
		return r.FuelType
	case fields.AnnouncedYear:
		return formatInt(r.AnnouncedYear)
	case fields.ConstructionStart:
		return formatInt(r.ConstructionStart)
	case fields.OperatingYear:
		return formatInt(r.OperatingYear)
	case fields.MothballedYear:
		return formatInt(r.MothballedYear)
	case fields.CancelledYear:
		return formatInt(r.CancelledYear)
	case fields.WikiURL:
		return r.WikiURL
	}

	return ""
}

// Row returns the record's values in canonical column order.
func (r *PlantRecord) Row() []string {
	row := make([]string, 0, len(fields.Canonical))

	for _, name := range fields.Canonical {
		row = append(row, r.Field(name))
	}

	return row
}

// Completeness counts how many of the 22 canonical fields are populated.
// Used as the tie-break when deduplication finds conflicting records.
func (r *PlantRecord) Completeness() int {
	count := 0

	for _, name := range fields.Canonical {
		if r.Field(name) != "" {
			count++
		}
	}

	return count
}

func formatFloat(v *float64) string {
	if v == nil {
		return ""
	}

	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func formatInt(v *int) string {
	if v == nil {
		return ""
	}

	return strconv.Itoa(*v)
}
