package config

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"strconv"
	"strings"

	"go-job-harvester/internal/logger"
	"go-job-harvester/internal/models"
)

// DefaultWaitFor is used when a site row has no readiness selector.
const DefaultWaitFor = "body"

// LoadSites reads site rows from a CSV file.
func LoadSites(path string, log logger.Logger) ([]models.SiteConfig, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open sites file: %w", err)
	}
	defer f.Close()
	return ParseSites(f, log)
}

// ParseSites reads site rows from CSV. Headers are trimmed and lower-cased,
// rows without a listing url are skipped.
func ParseSites(r io.Reader, log logger.Logger) ([]models.SiteConfig, error) {
	if log == nil {
		log = logger.NewNop()
	}
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("sites file is empty")
		}
		return nil, fmt.Errorf("read sites header: %w", err)
	}
	index := make(map[string]int, len(header))
	for i, h := range header {
		index[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	if _, ok := index["url"]; !ok {
		if _, ok := index["power_url"]; !ok {
			return nil, errors.New("sites file needs a url column")
		}
	}

	var sites []models.SiteConfig
	line := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("read sites line %d: %w", line, err)
		}

		get := func(names ...string) string {
			for _, n := range names {
				if i, ok := index[n]; ok && i < len(record) {
					if v := strings.TrimSpace(record[i]); v != "" {
						return v
					}
				}
			}
			return ""
		}

		site := models.SiteConfig{
			CompanyName:              get("company_name"),
			URL:                      get("url", "power_url"),
			WaitFor:                  get("wait_for"),
			SearchURLTemplate:        get("search_url_template"),
			PaginationParam:          get("pagination_param"),
			SearchInputSelector:      get("search_input_selector"),
			SearchSubmitSelector:     get("search_submit_selector"),
			SearchEnter:              parseBool(get("search_enter")),
			ResultsContainerSelector: get("results_container_selector"),
			JobLinkSelector:          get("job_link_selector"),
			JobCardSelector:          get("job_card_selector"),
			ModalSelector:            get("modal_selector"),
			ModalApplyLinkSelector:   get("modal_apply_link_selector"),
			ModalCloseSelector:       get("modal_close_selector"),
			PaginationNextSelector:   get("pagination_next_selector"),
			InfiniteScroll:           parseBool(get("infinite_scroll")),
			MaxPages:                 models.DefaultMaxPages,
		}
		if site.URL == "" {
			continue
		}
		if site.WaitFor == "" {
			site.WaitFor = DefaultWaitFor
		}
		if raw := get("max_pages"); raw != "" {
			if n, err := strconv.Atoi(raw); err == nil && n > 0 {
				site.MaxPages = n
			} else {
				log.Warn("⚠️ Invalid max_pages, using default",
					logger.Int("line", line),
					logger.String("value", raw),
					logger.Int("default", models.DefaultMaxPages),
				)
			}
		}
		if site.CompanyName == "" {
			site.CompanyName = hostOf(site.URL)
		}
		sites = append(sites, site)
	}
	return sites, nil
}

func parseBool(v string) bool {
	switch strings.ToLower(v) {
	case "true", "1", "yes", "y":
		return true
	}
	return false
}

func hostOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return raw
	}
	return strings.TrimPrefix(u.Hostname(), "www.")
}
