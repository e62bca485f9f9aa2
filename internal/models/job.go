package models

// CandidateJob is a listing discovered during traversal, pending enrichment.
type CandidateJob struct {
	Title          string `json:"title,omitempty"`
	ApplicationURL string `json:"applicationUrl"`
	PostedDate     string `json:"postedDate,omitempty"`
	CompanyName    string `json:"companyName,omitempty"`
	SourceJobID    string `json:"jobId,omitempty"`
}

// ExtractedJob is the extractor's best-effort record. Every field may be
// missing; list fields accept either a JSON array or a delimited string.
type ExtractedJob struct {
	JobID            string     `json:"jobId"`
	Title            string     `json:"title"`
	Description      string     `json:"description"`
	Location         string     `json:"location"`
	Country          string     `json:"country"`
	State            string     `json:"state"`
	City             string     `json:"city"`
	JobType          string     `json:"jobType"`
	Salary           string     `json:"salary"`
	Skills           StringList `json:"skills"`
	ExperienceLevel  string     `json:"experienceLevel"`
	Currency         string     `json:"currency"`
	ApplicationURL   string     `json:"applicationUrl"`
	Benefits         StringList `json:"benefits"`
	ApprovalStatus   string     `json:"approvalStatus"`
	BrokenLink       bool       `json:"brokenLink"`
	JobStatus        string     `json:"jobStatus"`
	Responsibilities StringList `json:"responsibilities"`
	WorkSettings     string     `json:"workSettings"`
	RoleCategory     string     `json:"roleCategory"`
	Qualifications   StringList `json:"qualifications"`
	CompanyLogo      string     `json:"companyLogo"`
	CompanyName      string     `json:"companyName"`
	IPBlocked        bool       `json:"ipBlocked"`
	MinSalary        Amount     `json:"minSalary"`
	MaxSalary        Amount     `json:"maxSalary"`
	PostedDate       string     `json:"postedDate"`
	Category         string     `json:"category"`
}

// IsEmpty reports whether the extractor returned nothing usable.
func (e ExtractedJob) IsEmpty() bool {
	return e.Title == "" && e.Description == "" && e.ApplicationURL == "" && e.JobID == ""
}
