package models

import (
	"time"
)

// JobRecord is the canonical output unit handed to the persistence sinks.
// JSON keys follow the jobs table column names.
type JobRecord struct {
	JobID            string     `json:"jobId" db:"jobId"`
	SourceJobID      string     `json:"-" db:"-"`
	Title            string     `json:"title" db:"title"`
	Description      string     `json:"description" db:"description"`
	Location         string     `json:"location" db:"location"`
	Country          string     `json:"country" db:"country"`
	State            string     `json:"state" db:"state"`
	City             string     `json:"city" db:"city"`
	JobType          string     `json:"jobType" db:"jobType"`
	Salary           string     `json:"salary" db:"salary"`
	Currency         string     `json:"currency" db:"currency"`
	MinSalary        float64    `json:"minSalary" db:"minSalary"`
	MaxSalary        float64    `json:"maxSalary" db:"maxSalary"`
	ExperienceLevel  string     `json:"experienceLevel" db:"experienceLevel"`
	WorkSettings     string     `json:"workSettings" db:"workSettings"`
	Category         string     `json:"category" db:"category"`
	RoleCategory     string     `json:"roleCategory" db:"roleCategory"`
	Skills           StringList `json:"skills" db:"skills"`
	Benefits         StringList `json:"benefits" db:"benefits"`
	Responsibilities StringList `json:"responsibilities" db:"responsibilities"`
	Qualifications   StringList `json:"qualifications" db:"qualifications"`
	CompanyName      string     `json:"companyName" db:"companyName"`
	CompanyLogo      string     `json:"companyLogo" db:"companyLogo"`
	ApplicationURL   string     `json:"applicationUrl" db:"applicationUrl"`
	PostedDate       string     `json:"postedDate" db:"postedDate"`
	JobStatus        string     `json:"jobStatus" db:"jobStatus"`
	ApprovalStatus   string     `json:"approvalStatus" db:"approvalStatus"`
	BrokenLink       bool       `json:"brokenLink" db:"brokenLink"`
	IPBlocked        bool       `json:"ipBlocked" db:"ipBlocked"`
}

// FailureRecord is one entry of the append-only failure log.
type FailureRecord struct {
	Context string    `json:"context"`
	Error   string    `json:"error"`
	Site    string    `json:"site,omitempty"`
	Keyword string    `json:"keyword,omitempty"`
	At      time.Time `json:"at"`
}

// RunSummary is what a single harvesting run reports back.
type RunSummary struct {
	RunID      string          `json:"runId"`
	StartedAt  time.Time       `json:"startedAt"`
	FinishedAt time.Time       `json:"finishedAt"`
	Sites      int             `json:"sites"`
	Candidates int             `json:"candidates"`
	Succeeded  int             `json:"succeeded"`
	Skipped    int             `json:"skipped"`
	Saved      int             `json:"saved"`
	SaveError  string          `json:"saveError,omitempty"`
	Cancelled  bool            `json:"cancelled"`
	Failures   []FailureRecord `json:"failures"`
}
