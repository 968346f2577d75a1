package models

// Status is a plant unit's lifecycle state as reported by the tracker.
type Status string

// Known tracker statuses.
const (
	StatusOperating    Status = "operating"
	StatusCancelled    Status = "cancelled"
	StatusRetired      Status = "retired"
	StatusConstruction Status = "construction"
	StatusPermitted    Status = "permitted"
	StatusPrePermit    Status = "pre-permit"
	StatusShelved      Status = "shelved"
	StatusAnnounced    Status = "announced"
	StatusMothballed   Status = "mothballed"
)

var knownStatuses = map[Status]bool{
	StatusOperating:    true,
	StatusCancelled:    true,
	StatusRetired:      true,
	StatusConstruction: true,
	StatusPermitted:    true,
	StatusPrePermit:    true,
	StatusShelved:      true,
	StatusAnnounced:    true,
	StatusMothballed:   true,
}

// Known reports whether the status is part of the tracker's enumeration.
// Unrecognized statuses still pass through the pipeline, flagged in logs.
func (s Status) Known() bool {
	return knownStatuses[s]
}
