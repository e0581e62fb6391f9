package models

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
)

// Status is the board column a job sits in. The numeric value is what goes on
// the wire and doubles as the column position on the board.
type Status int

const (
	StatusWishlist Status = iota
	StatusApplied
	StatusInterview
	StatusOffer
	StatusRejected
)

// NumStatuses is the number of board columns.
const NumStatuses = 5

var statusNames = [NumStatuses]string{"Wishlist", "Applied", "Interview", "Offer", "Rejected"}

// Statuses returns every status in board order.
func Statuses() []Status {
	return []Status{StatusWishlist, StatusApplied, StatusInterview, StatusOffer, StatusRejected}
}

func (s Status) Valid() bool {
	return s >= 0 && int(s) < NumStatuses
}

func (s Status) String() string {
	if !s.Valid() {
		return fmt.Sprintf("Status(%d)", int(s))
	}
	return statusNames[s]
}

// ParseStatus accepts a column name (case-insensitive) or its number.
func ParseStatus(raw string) (Status, error) {
	raw = strings.TrimSpace(raw)
	for i, name := range statusNames {
		if strings.EqualFold(raw, name) || raw == fmt.Sprint(i) {
			return Status(i), nil
		}
	}
	return 0, fmt.Errorf("unknown job status %q", raw)
}

type Job struct {
	ID        string         `gorm:"primaryKey;type:varchar(36)" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	UserID      string `gorm:"index;not null" json:"userId"`
	Position    string `gorm:"not null" json:"position"`
	Company     string `gorm:"not null" json:"company"`
	CompanyLogo string `json:"company_logo,omitempty"`
	Location    string `json:"location"`
	Description string `gorm:"type:text" json:"description"`
	Salary      string `json:"salary,omitempty"`
	Link        string `json:"link"`

	// Status and Order place the job on the board. Only reordering changes them.
	Status Status `gorm:"index;not null;default:0" json:"status"`
	Order  int    `gorm:"column:order_index;not null;default:0" json:"order"`

	CustomResumeLink string     `json:"custom_resume_link,omitempty"`
	InterviewDate    *time.Time `json:"interview_date,omitempty"`
	ContractLink     string     `json:"contract_link,omitempty"`
}

// JobEvent is the audit trail of a job's status changes.
type JobEvent struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	JobID     string    `gorm:"index;type:varchar(36)" json:"job_id"`
	EventType string    `json:"event_type"`
	Details   string    `gorm:"type:text" json:"details"`
}

const EventStatusChange = "STATUS_CHANGE"
