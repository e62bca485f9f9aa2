package models

// DefaultMaxPages caps listing traversal when a site row leaves max_pages empty.
const DefaultMaxPages = 50

// SiteConfig describes how to traverse one employer or job board.
// It is read-only once loaded.
type SiteConfig struct {
	CompanyName string `json:"companyName"`
	URL         string `json:"url"`
	WaitFor     string `json:"waitFor"`

	SearchURLTemplate string `json:"searchUrlTemplate,omitempty"`
	PaginationParam   string `json:"paginationParam,omitempty"`

	SearchInputSelector  string `json:"searchInputSelector,omitempty"`
	SearchSubmitSelector string `json:"searchSubmitSelector,omitempty"`
	SearchEnter          bool   `json:"searchEnter,omitempty"`

	ResultsContainerSelector string `json:"resultsContainerSelector,omitempty"`
	JobLinkSelector          string `json:"jobLinkSelector,omitempty"`
	JobCardSelector          string `json:"jobCardSelector,omitempty"`

	ModalSelector          string `json:"modalSelector,omitempty"`
	ModalApplyLinkSelector string `json:"modalApplyLinkSelector,omitempty"`
	ModalCloseSelector     string `json:"modalCloseSelector,omitempty"`

	PaginationNextSelector string `json:"paginationNextSelector,omitempty"`
	InfiniteScroll         bool   `json:"infiniteScroll,omitempty"`
	MaxPages               int    `json:"maxPages"`
}

// PageCeiling returns MaxPages or the default when unset.
func (s SiteConfig) PageCeiling() int {
	if s.MaxPages <= 0 {
		return DefaultMaxPages
	}
	return s.MaxPages
}
