package dtos

import (
	"time"

	"github.com/justsurfingit/job-board/internal/models"
)

type JobExtractionRequest struct {
	RawHTML string `json:"raw_html" binding:"required"`
	URL     string `json:"url"`
}

// JobDraft is what the extractor pulls out of a posting. Every field may be
// empty when the posting does not mention it.
type JobDraft struct {
	Company     string   `json:"company_name"`
	Position    string   `json:"role_title"`
	Location    string   `json:"location"`
	Description string   `json:"description"`
	TechStack   []string `json:"tech_stack"`
	Salary      string   `json:"salary_range"`
	Link        string   `json:"link,omitempty"`
}

type JobCreationRequest struct {
	Position    string `json:"position" binding:"required,min=2"`
	Company     string `json:"company" binding:"required,min=2"`
	Location    string `json:"location" binding:"required,min=2"`
	Description string `json:"description" binding:"required,min=2"`
	Link        string `json:"link" binding:"required,url"`

	// Optional Fields
	CompanyLogo   string        `json:"company_logo"`
	Salary        string        `json:"salary"`
	Status        models.Status `json:"status" binding:"min=0,max=4"`
	InterviewDate *time.Time    `json:"interview_date"`
	ContractLink  string        `json:"contract_link" binding:"omitempty,url"`

	CustomResumeLink string `json:"custom_resume_link" binding:"omitempty,url"`
}

// JobPatch is a partial edit. Nil fields are left untouched. Status and order
// are not here: they only move through the order endpoint.
type JobPatch struct {
	Position         *string    `json:"position,omitempty"`
	Company          *string    `json:"company,omitempty"`
	CompanyLogo      *string    `json:"company_logo,omitempty"`
	Location         *string    `json:"location,omitempty"`
	Description      *string    `json:"description,omitempty"`
	Salary           *string    `json:"salary,omitempty"`
	Link             *string    `json:"link,omitempty"`
	CustomResumeLink *string    `json:"custom_resume_link,omitempty"`
	InterviewDate    *time.Time `json:"interview_date,omitempty"`
	ContractLink     *string    `json:"contract_link,omitempty"`
}

// Apply copies the set fields onto job.
func (p JobPatch) Apply(job *models.Job) {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	set(&job.Position, p.Position)
	set(&job.Company, p.Company)
	set(&job.CompanyLogo, p.CompanyLogo)
	set(&job.Location, p.Location)
	set(&job.Description, p.Description)
	set(&job.Salary, p.Salary)
	set(&job.Link, p.Link)
	set(&job.CustomResumeLink, p.CustomResumeLink)
	set(&job.ContractLink, p.ContractLink)
	if p.InterviewDate != nil {
		d := *p.InterviewDate
		job.InterviewDate = &d
	}
}

// Columns returns the set fields keyed by database column.
func (p JobPatch) Columns() map[string]interface{} {
	cols := map[string]interface{}{}
	add := func(name string, v *string) {
		if v != nil {
			cols[name] = *v
		}
	}
	add("position", p.Position)
	add("company", p.Company)
	add("company_logo", p.CompanyLogo)
	add("location", p.Location)
	add("description", p.Description)
	add("salary", p.Salary)
	add("link", p.Link)
	add("custom_resume_link", p.CustomResumeLink)
	add("contract_link", p.ContractLink)
	if p.InterviewDate != nil {
		cols["interview_date"] = *p.InterviewDate
	}
	return cols
}

// OrderChanges is the new placement of one job.
type OrderChanges struct {
	Order  int           `json:"order"`
	Status models.Status `json:"status"`
}

type OrderChange struct {
	ID      string       `json:"id" binding:"required"`
	Changes OrderChanges `json:"changes"`
}

// OrderUpdateRequest is the body of PATCH /job/order.
type OrderUpdateRequest struct {
	Jobs []OrderChange `json:"jobs" binding:"required,min=1,dive"`
}
