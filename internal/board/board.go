// Package board holds the partitioned, ordered view of a user's jobs.
//
// A Board is a value: every operation returns a new Board and leaves the
// receiver untouched, so a Board can be kept as a snapshot and restored later.
// Within each status partition the slice position is the job's order, and
// every Board handed out satisfies two invariants: orders in a partition are
// exactly 0..n-1, and a job id appears in exactly one partition.
//
// Index and status arguments are preconditions. Violating them is a bug in
// the caller and panics.
package board

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/samber/mo"

	"github.com/justsurfingit/job-board/internal/models"
)

// End as a target index appends to the destination partition.
const End = -1

var (
	ErrInvalidStatus = errors.New("board: invalid status")
	ErrDuplicateJob  = errors.New("board: duplicate job id")
	ErrBrokenOrder   = errors.New("board: partition order is not contiguous")
)

type Board struct {
	parts [models.NumStatuses][]models.Job
}

// Position locates a job on the board.
type Position struct {
	Status models.Status
	Index  int
}

// Placement is the persisted part of a job's position.
type Placement struct {
	ID     string
	Order  int
	Status models.Status
}

// New builds a board from a flat list. Jobs are grouped by status and sorted
// by their order, ties broken by id, then renumbered so gaps left by the
// server are closed.
func New(jobs []models.Job) (Board, error) {
	var b Board
	seen := make(map[string]struct{}, len(jobs))
	for _, j := range jobs {
		if !j.Status.Valid() {
			return Board{}, fmt.Errorf("%w: job %s has status %d", ErrInvalidStatus, j.ID, int(j.Status))
		}
		if _, ok := seen[j.ID]; ok {
			return Board{}, fmt.Errorf("%w: %s", ErrDuplicateJob, j.ID)
		}
		seen[j.ID] = struct{}{}
		b.parts[j.Status] = append(b.parts[j.Status], j)
	}
	for s := range b.parts {
		p := b.parts[s]
		sort.SliceStable(p, func(i, k int) bool {
			if p[i].Order != p[k].Order {
				return p[i].Order < p[k].Order
			}
			return p[i].ID < p[k].ID
		})
		renumber(p, models.Status(s))
	}
	return b, nil
}

// Partition returns a copy of the jobs in status, in order.
func (b Board) Partition(status models.Status) []models.Job {
	mustStatus(status)
	return append([]models.Job(nil), b.parts[status]...)
}

// Partitions returns a copy of every partition, indexed by status.
func (b Board) Partitions() [][]models.Job {
	out := make([][]models.Job, models.NumStatuses)
	for s := range b.parts {
		out[s] = append([]models.Job{}, b.parts[s]...)
	}
	return out
}

func (b Board) Len(status models.Status) int {
	mustStatus(status)
	return len(b.parts[status])
}

// Total is the number of jobs across all partitions.
func (b Board) Total() int {
	n := 0
	for _, p := range b.parts {
		n += len(p)
	}
	return n
}

func (b Board) Locate(id string) mo.Option[Position] {
	for s, p := range b.parts {
		for i := range p {
			if p[i].ID == id {
				return mo.Some(Position{Status: models.Status(s), Index: i})
			}
		}
	}
	return mo.None[Position]()
}

func (b Board) Job(id string) mo.Option[models.Job] {
	pos, ok := b.Locate(id).Get()
	if !ok {
		return mo.None[models.Job]()
	}
	return mo.Some(b.parts[pos.Status][pos.Index])
}

// MovedWithinPartition moves the job at from to index to inside one partition.
func (b Board) MovedWithinPartition(status models.Status, from, to int) Board {
	mustStatus(status)
	p := b.parts[status]
	mustIndex("from", from, len(p))
	mustIndex("to", to, len(p))
	if from == to {
		return b
	}

	moved := make([]models.Job, 0, len(p))
	moved = append(moved, p[:from]...)
	moved = append(moved, p[from+1:]...)
	moved = insert(moved, to, p[from])
	renumber(moved, status)

	b.parts[status] = moved
	return b
}

// MovedAcrossPartitions takes the job at from out of fromStatus and inserts it
// at to in toStatus (End appends). Both partitions are renumbered.
func (b Board) MovedAcrossPartitions(fromStatus models.Status, from int, toStatus models.Status, to int) Board {
	mustStatus(fromStatus)
	mustStatus(toStatus)
	if fromStatus == toStatus {
		panic(fmt.Sprintf("board: cross-partition move within %s", fromStatus))
	}
	src := b.parts[fromStatus]
	mustIndex("from", from, len(src))
	dst := b.parts[toStatus]
	if to == End {
		to = len(dst)
	}
	mustIndex("to", to, len(dst)+1)

	job := src[from]
	job.Status = toStatus

	rest := make([]models.Job, 0, len(src)-1)
	rest = append(rest, src[:from]...)
	rest = append(rest, src[from+1:]...)
	renumber(rest, fromStatus)

	grown := make([]models.Job, 0, len(dst)+1)
	grown = append(grown, dst...)
	grown = insert(grown, to, job)
	renumber(grown, toStatus)

	b.parts[fromStatus] = rest
	b.parts[toStatus] = grown
	return b
}

// AppendedToPartition adds a job that is not yet on the board to the end of
// status. Its order becomes the previous partition length.
func (b Board) AppendedToPartition(status models.Status, job models.Job) Board {
	mustStatus(status)
	if b.Locate(job.ID).IsPresent() {
		panic(fmt.Sprintf("board: job %s is already on the board", job.ID))
	}
	p := b.parts[status]
	job.Status = status
	job.Order = len(p)

	grown := make([]models.Job, 0, len(p)+1)
	grown = append(grown, p...)
	b.parts[status] = append(grown, job)
	return b
}

// Removed drops the job with id and renumbers its partition. Unknown ids
// return the board unchanged.
func (b Board) Removed(id string) Board {
	pos, ok := b.Locate(id).Get()
	if !ok {
		return b
	}
	p := b.parts[pos.Status]
	rest := make([]models.Job, 0, len(p)-1)
	rest = append(rest, p[:pos.Index]...)
	rest = append(rest, p[pos.Index+1:]...)
	renumber(rest, pos.Status)

	b.parts[pos.Status] = rest
	return b
}

// Replaced swaps in new field values for a job already on the board. Status
// and order are kept from the board.
func (b Board) Replaced(job models.Job) Board {
	pos, ok := b.Locate(job.ID).Get()
	if !ok {
		panic(fmt.Sprintf("board: job %s is not on the board", job.ID))
	}
	p := append([]models.Job(nil), b.parts[pos.Status]...)
	job.Status = pos.Status
	job.Order = pos.Index
	p[pos.Index] = job

	b.parts[pos.Status] = p
	return b
}

// Placements lists every job of the given partitions with its current order.
func (b Board) Placements(statuses ...models.Status) []Placement {
	var out []Placement
	seen := map[models.Status]bool{}
	for _, s := range statuses {
		mustStatus(s)
		if seen[s] {
			continue
		}
		seen[s] = true
		for _, j := range b.parts[s] {
			out = append(out, Placement{ID: j.ID, Order: j.Order, Status: j.Status})
		}
	}
	return out
}

// Filter returns, per status, the jobs whose position contains query
// (case-insensitive). It is a display view and does not keep orders
// contiguous, so it is not a Board.
func (b Board) Filter(query string) [][]models.Job {
	q := strings.ToLower(strings.TrimSpace(query))
	out := make([][]models.Job, models.NumStatuses)
	for s, p := range b.parts {
		out[s] = []models.Job{}
		for _, j := range p {
			if strings.Contains(strings.ToLower(j.Position), q) {
				out[s] = append(out[s], j)
			}
		}
	}
	return out
}

// Validate reports the first broken invariant.
func (b Board) Validate() error {
	seen := map[string]models.Status{}
	for s, p := range b.parts {
		for i, j := range p {
			if j.Status != models.Status(s) {
				return fmt.Errorf("%w: job %s in %s carries status %s", ErrInvalidStatus, j.ID, models.Status(s), j.Status)
			}
			if j.Order != i {
				return fmt.Errorf("%w: job %s at %d in %s has order %d", ErrBrokenOrder, j.ID, i, models.Status(s), j.Order)
			}
			if other, ok := seen[j.ID]; ok {
				return fmt.Errorf("%w: %s in %s and %s", ErrDuplicateJob, j.ID, other, models.Status(s))
			}
			seen[j.ID] = models.Status(s)
		}
	}
	return nil
}

func insert(p []models.Job, at int, job models.Job) []models.Job {
	p = append(p, models.Job{})
	copy(p[at+1:], p[at:])
	p[at] = job
	return p
}

func renumber(p []models.Job, status models.Status) {
	for i := range p {
		p[i].Order = i
		p[i].Status = status
	}
}

func mustStatus(s models.Status) {
	if !s.Valid() {
		panic(fmt.Sprintf("board: invalid status %d", int(s)))
	}
}

func mustIndex(name string, i, n int) {
	if i < 0 || i >= n {
		panic(fmt.Sprintf("board: %s index %d out of range [0,%d)", name, i, n))
	}
}
