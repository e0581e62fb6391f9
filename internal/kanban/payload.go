package kanban

import "github.com/justsurfingit/job-board/internal/models"

// Payload is what a drag source or drop target carries. It is either a
// JobPayload (a card) or a ColumnPayload (the empty area of a column).
type Payload interface {
	isPayload()
}

type JobPayload struct {
	ID string
}

type ColumnPayload struct {
	Status models.Status
}

func (JobPayload) isPayload()    {}
func (ColumnPayload) isPayload() {}

// Job is shorthand for a card payload.
func Job(id string) Payload { return JobPayload{ID: id} }

// Column is shorthand for a column payload.
func Column(s models.Status) Payload { return ColumnPayload{Status: s} }
