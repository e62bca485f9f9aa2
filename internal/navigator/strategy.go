package navigator

import (
	"strings"

	"go-job-harvester/internal/models"
)

// Kind is how a site's listing pages are traversed.
type Kind string

const (
	KindStaticPaginated Kind = "static-paginated"
	KindQueryParam      Kind = "query-param"
	KindNextButton      Kind = "next-button"
	KindInfiniteScroll  Kind = "infinite-scroll"
	KindSinglePage      Kind = "single-page"
)

// Harvest is how candidates are read off one listing page.
type Harvest string

const (
	HarvestLinks     Harvest = "link-harvest"
	HarvestCards     Harvest = "card-modal-harvest"
	HarvestExtractor Harvest = "extractor-harvest"
)

// Strategy is chosen once per site and drives the whole traversal.
type Strategy struct {
	Kind    Kind
	Harvest Harvest
	// Advance lists the dynamic-mode advancement methods in priority order.
	Advance []Kind
}

// Select picks the traversal strategy for site.
// Static paginated mode needs both a search URL template and a page parameter;
// everything else runs in a browser.
func Select(site models.SiteConfig) Strategy {
	if site.SearchURLTemplate != "" && site.PaginationParam != "" {
		return Strategy{Kind: KindStaticPaginated, Harvest: HarvestExtractor}
	}

	s := Strategy{Kind: KindSinglePage}
	switch {
	case site.JobLinkSelector != "":
		s.Harvest = HarvestLinks
	case site.JobCardSelector != "":
		s.Harvest = HarvestCards
	default:
		s.Harvest = HarvestExtractor
	}

	if site.PaginationParam != "" {
		s.Advance = append(s.Advance, KindQueryParam)
	}
	if site.PaginationNextSelector != "" {
		s.Advance = append(s.Advance, KindNextButton)
	}
	if site.InfiniteScroll {
		s.Advance = append(s.Advance, KindInfiniteScroll)
	}
	if len(s.Advance) > 0 {
		s.Kind = s.Advance[0]
	}
	return s
}

// Dynamic reports whether the strategy needs a browser session.
func (s Strategy) Dynamic() bool {
	return s.Kind != KindStaticPaginated
}

func (s Strategy) String() string {
	if len(s.Advance) <= 1 {
		return string(s.Kind) + "/" + string(s.Harvest)
	}
	chain := make([]string, len(s.Advance))
	for i, k := range s.Advance {
		chain[i] = string(k)
	}
	return strings.Join(chain, ">") + "/" + string(s.Harvest)
}
