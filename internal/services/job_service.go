package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/justsurfingit/job-board/internal/dtos"
	"github.com/justsurfingit/job-board/internal/models"
)

// JobService persists jobs per user. Every column keeps orders 0..n-1.
type JobService struct {
	DB     *gorm.DB
	logger *slog.Logger
}

func NewJobService(db *gorm.DB, logger *slog.Logger) *JobService {
	return &JobService{
		DB:     db,
		logger: logger,
	}
}

// ListJobs returns the user's jobs as one slice per status, each sorted by order.
func (s *JobService) ListJobs(ctx context.Context, userID string) ([][]models.Job, error) {
	var jobs []models.Job
	err := s.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("status ASC, order_index ASC, id ASC").
		Find(&jobs).Error
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}

	parts := make([][]models.Job, models.NumStatuses)
	for i := range parts {
		parts[i] = []models.Job{}
	}
	for _, j := range jobs {
		if !j.Status.Valid() {
			s.logger.Warn("skipping job with unknown status", slog.String("job", j.ID), slog.Int("status", int(j.Status)))
			continue
		}
		parts[j.Status] = append(parts[j.Status], j)
	}
	return parts, nil
}

func (s *JobService) GetJob(ctx context.Context, userID, id string) (*models.Job, error) {
	return findJob(s.DB.WithContext(ctx), userID, id)
}

// CreateJob stores a new job at the end of its column.
func (s *JobService) CreateJob(ctx context.Context, userID string, req *dtos.JobCreationRequest) (*models.Job, error) {
	if !req.Status.Valid() {
		return nil, fmt.Errorf("%w: status %d", ErrInvalidOrder, req.Status)
	}

	job := &models.Job{
		ID:            uuid.NewString(),
		UserID:        userID,
		Position:      req.Position,
		Company:       req.Company,
		CompanyLogo:   req.CompanyLogo,
		Location:      req.Location,
		Description:   req.Description,
		Salary:        req.Salary,
		Link:          req.Link,
		Status:        req.Status,
		InterviewDate: req.InterviewDate,
		ContractLink:  req.ContractLink,

		CustomResumeLink: req.CustomResumeLink,
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Job{}).
			Where("user_id = ? AND status = ?", userID, req.Status).
			Count(&count).Error; err != nil {
			return err
		}
		job.Order = int(count)
		return tx.Create(job).Error
	})
	if err != nil {
		return nil, fmt.Errorf("create job: %w", err)
	}

	s.logger.Info("job created", slog.String("job", job.ID), slog.String("status", job.Status.String()), slog.Int("order", job.Order))
	return job, nil
}

// EditJob writes the set fields of patch. Status and order are untouched.
func (s *JobService) EditJob(ctx context.Context, userID, id string, patch dtos.JobPatch) (*models.Job, error) {
	var job *models.Job
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if job, err = findJob(tx, userID, id); err != nil {
			return err
		}
		cols := patch.Columns()
		if len(cols) == 0 {
			return nil
		}
		if err := tx.Model(job).Updates(cols).Error; err != nil {
			return err
		}
		patch.Apply(job)
		return nil
	})
	if err != nil {
		return nil, wrapUnlessNotFound("edit job", err)
	}
	return job, nil
}

// DeleteJob soft-deletes the job and closes the gap it leaves in its column.
func (s *JobService) DeleteJob(ctx context.Context, userID, id string) error {
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		job, err := findJob(tx, userID, id)
		if err != nil {
			return err
		}
		if err := tx.Delete(job).Error; err != nil {
			return err
		}
		return renumberColumn(tx, userID, job.Status)
	})
	if err != nil {
		return wrapUnlessNotFound("delete job", err)
	}
	s.logger.Info("job deleted", slog.String("job", id))
	return nil
}

// UpdateOrder applies a batch of placements in one transaction. A status
// change is recorded as a JobEvent. The batch is rejected when any touched
// column ends up with orders other than 0..n-1.
func (s *JobService) UpdateOrder(ctx context.Context, userID string, changes []dtos.OrderChange) error {
	ids := make([]string, 0, len(changes))
	seen := make(map[string]struct{}, len(changes))
	for _, ch := range changes {
		if !ch.Changes.Status.Valid() {
			return fmt.Errorf("%w: job %s has status %d", ErrInvalidOrder, ch.ID, ch.Changes.Status)
		}
		if _, dup := seen[ch.ID]; dup {
			return fmt.Errorf("%w: job %s appears twice", ErrInvalidOrder, ch.ID)
		}
		seen[ch.ID] = struct{}{}
		ids = append(ids, ch.ID)
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current []models.Job
		if err := tx.Where("user_id = ? AND id IN ?", userID, ids).Find(&current).Error; err != nil {
			return err
		}
		if len(current) != len(ids) {
			return ErrJobNotFound
		}
		byID := make(map[string]models.Job, len(current))
		for _, j := range current {
			byID[j.ID] = j
		}

		touched := map[models.Status]struct{}{}
		for _, ch := range changes {
			old := byID[ch.ID]
			touched[old.Status] = struct{}{}
			touched[ch.Changes.Status] = struct{}{}

			if old.Status == ch.Changes.Status && old.Order == ch.Changes.Order {
				continue
			}
			if err := tx.Model(&models.Job{}).Where("id = ?", ch.ID).Updates(map[string]interface{}{
				"status":      ch.Changes.Status,
				"order_index": ch.Changes.Order,
			}).Error; err != nil {
				return err
			}
			if old.Status != ch.Changes.Status {
				event := models.JobEvent{
					JobID:     ch.ID,
					EventType: models.EventStatusChange,
					Details:   fmt.Sprintf("%s -> %s", old.Status, ch.Changes.Status),
				}
				if err := tx.Create(&event).Error; err != nil {
					return err
				}
			}
		}

		for _, status := range sortedStatuses(touched) {
			orders, err := columnOrders(tx, userID, status)
			if err != nil {
				return err
			}
			if !contiguous(orders) {
				return fmt.Errorf("%w: %s has orders %v", ErrInconsistentOrder, status, orders)
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrInconsistentOrder) {
			s.logger.Warn("order update rejected", slog.String("user", userID), slog.Any("error", err))
			return err
		}
		return wrapUnlessNotFound("update order", err)
	}

	s.logger.Info("order updated", slog.String("user", userID), slog.Int("jobs", len(changes)))
	return nil
}

// Events returns the status history of a job, oldest first.
func (s *JobService) Events(ctx context.Context, userID, id string) ([]models.JobEvent, error) {
	db := s.DB.WithContext(ctx)
	if _, err := findJob(db, userID, id); err != nil {
		return nil, err
	}
	var events []models.JobEvent
	if err := db.Where("job_id = ?", id).Order("created_at ASC, id ASC").Find(&events).Error; err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return events, nil
}

func findJob(db *gorm.DB, userID, id string) (*models.Job, error) {
	var job models.Job
	err := db.Where("user_id = ? AND id = ?", userID, id).First(&job).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrJobNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find job: %w", err)
	}
	return &job, nil
}

func columnOrders(tx *gorm.DB, userID string, status models.Status) ([]int, error) {
	var orders []int
	err := tx.Model(&models.Job{}).
		Where("user_id = ? AND status = ?", userID, status).
		Order("order_index ASC").
		Pluck("order_index", &orders).Error
	return orders, err
}

// renumberColumn rewrites the orders of a column to 0..n-1, keeping their
// relative sequence.
func renumberColumn(tx *gorm.DB, userID string, status models.Status) error {
	var jobs []models.Job
	if err := tx.Where("user_id = ? AND status = ?", userID, status).
		Order("order_index ASC, id ASC").
		Find(&jobs).Error; err != nil {
		return err
	}
	for i, j := range jobs {
		if j.Order == i {
			continue
		}
		if err := tx.Model(&models.Job{}).Where("id = ?", j.ID).Update("order_index", i).Error; err != nil {
			return err
		}
	}
	return nil
}

// contiguous reports whether sorted orders are exactly 0..n-1.
func contiguous(orders []int) bool {
	for i, o := range orders {
		if o != i {
			return false
		}
	}
	return true
}

func sortedStatuses(set map[models.Status]struct{}) []models.Status {
	out := make([]models.Status, 0, len(set))
	for s := range set {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func wrapUnlessNotFound(op string, err error) error {
	if errors.Is(err, ErrJobNotFound) {
		return err
	}
	return fmt.Errorf("%s: %w", op, err)
}
