// Package fields maps arbitrary upstream key names onto the canonical
// tracker schema.
package fields

import "strings"

// Canonical field names of the tracker schema.
const (
	PlantName         = "plant_name"
	UnitName          = "unit_name"
	PlantUnitName     = "plant_unit_name"
	Owner             = "owner"
	ParentCompany     = "parent_company"
	CapacityMW        = "capacity_mw"
	Status            = "status"
	StartYear         = "start_year"
	RetiredYear       = "retired_year"
	Region            = "region"
	CountryArea       = "country_area"
	SubnationalUnit   = "subnational_unit"
	Latitude          = "latitude"
	Longitude         = "longitude"
	Technology        = "technology"
	FuelType          = "fuel_type"
	AnnouncedYear     = "announced_year"
	ConstructionStart = "construction_start"
	OperatingYear     = "operating_year"
	MothballedYear    = "mothballed_year"
	CancelledYear     = "cancelled_year"
	WikiURL           = "wiki_url"
)

// Canonical lists every schema field in output column order.
var Canonical = []string{
	PlantName,
	UnitName,
	PlantUnitName,
	Owner,
	ParentCompany,
	CapacityMW,
	Status,
	StartYear,
	RetiredYear,
	Region,
	CountryArea,
	SubnationalUnit,
	Latitude,
	Longitude,
	Technology,
	FuelType,
	AnnouncedYear,
	ConstructionStart,
	OperatingYear,
	MothballedYear,
	CancelledYear,
	WikiURL,
}

// synonyms maps each canonical field to the raw key spellings observed
// across the tracker's API payloads, download files and embedded blobs.
// Matching is folded (case, whitespace and punctuation insensitive), so
// one entry covers "Capacity (MW)", "capacity_mw" and "capacityMW" alike.
var synonyms = map[string][]string{
	PlantName: {
		"plant_name", "plant", "name", "facility_name", "plant_id",
		"facility",
	},
	UnitName: {
		"unit_name", "unit", "unit_id",
	},
	PlantUnitName: {
		"plant_unit_name", "tracker_id", "id", "plant/unit name",
	},
	Owner: {
		"owner", "owner_company", "operating_company", "operator",
	},
	ParentCompany: {
		"parent_company", "parent", "ultimate_owner", "holding_company",
	},
	CapacityMW: {
		"capacity_mw", "capacity", "mw", "capacity (mw)", "power_mw",
		"rated_capacity", "nameplate_capacity",
	},
	Status: {
		"status", "plant_status", "current_status", "operational_status",
	},
	StartYear: {
		"start_year", "start", "online_year", "commercial_operation",
		"operation_start",
	},
	RetiredYear: {
		"retired_year", "retired", "retirement_year", "closure_year",
		"shutdown_year",
	},
	Region: {
		"region", "area", "geographic_region",
	},
	CountryArea: {
		"country_area", "country", "country/area", "nation", "country_name",
	},
	SubnationalUnit: {
		"subnational_unit", "state", "province", "state/province",
		"subnational unit", "administrative_unit", "locality",
	},
	Latitude: {
		"latitude", "lat", "y_coord",
	},
	Longitude: {
		"longitude", "lng", "lon", "x_coord",
	},
	Technology: {
		"technology", "tech", "plant_technology",
	},
	FuelType: {
		"fuel_type", "fuel", "primary_fuel",
	},
	AnnouncedYear: {
		"announced_year", "announced",
	},
	ConstructionStart: {
		"construction_start", "construction",
	},
	OperatingYear: {
		"operating_year", "operating",
	},
	MothballedYear: {
		"mothballed_year", "mothballed",
	},
	CancelledYear: {
		"cancelled_year", "cancelled",
	},
	WikiURL: {
		"wiki_url", "wiki", "wikipedia",
	},
}

// lookup is built once from the synonym table, keyed by folded alias.
var lookup = buildLookup()

func buildLookup() map[string]string {
	m := make(map[string]string)

	for field, aliases := range synonyms {
		// Every canonical name resolves to itself.
		m[Fold(field)] = field

		for _, alias := range aliases {
			m[Fold(alias)] = field
		}
	}

	return m
}

// Fold reduces a key to its comparison form: lowercase with everything
// except letters and digits removed.
func Fold(key string) string {
	var b strings.Builder

	for _, r := range strings.ToLower(key) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}

	return b.String()
}

// Normalize resolves a raw key to its canonical field name. The second
// return value is false for keys the schema does not recognize; callers
// drop those silently.
func Normalize(key string) (string, bool) {
	field, ok := lookup[Fold(key)]

	return field, ok
}

// IsCanonical reports whether name is one of the schema's field names.
func IsCanonical(name string) bool {
	_, ok := synonyms[name]

	return ok
}
