package extractor

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"go-job-harvester/internal/ai"
	"go-job-harvester/internal/models"
)

var errNotJSON = errors.New("response is not JSON")

// decodeJSON parses a model reply, tolerating markdown fences, prose around
// the payload and double-encoded JSON strings.
func decodeJSON(raw string) (any, error) {
	cleaned := ai.CleanMarkdownJSON(raw)
	if cleaned == "" {
		return nil, errNotJSON
	}

	var v any
	if err := json.Unmarshal([]byte(cleaned), &v); err != nil {
		start := strings.IndexAny(cleaned, "[{")
		end := strings.LastIndexAny(cleaned, "]}")
		if start < 0 || end <= start {
			return nil, fmt.Errorf("%w: %v", errNotJSON, err)
		}
		if err := json.Unmarshal([]byte(cleaned[start:end+1]), &v); err != nil {
			return nil, fmt.Errorf("%w: %v", errNotJSON, err)
		}
	}

	if s, ok := v.(string); ok {
		if err := json.Unmarshal([]byte(s), &v); err != nil {
			return nil, fmt.Errorf("%w: double-encoded payload: %v", errNotJSON, err)
		}
	}
	return v, nil
}

// parseList accepts {"jobs": [...], "numberOfPages": n}, a bare array of jobs,
// or a single job object.
func parseList(raw, pageURL string) (ListResult, error) {
	v, err := decodeJSON(raw)
	if err != nil {
		return ListResult{}, err
	}

	var res ListResult
	var items []any
	switch t := v.(type) {
	case map[string]any:
		res.TotalPages = intOf(t["numberOfPages"])
		switch jobs := t["jobs"].(type) {
		case []any:
			items = jobs
		case nil:
			if _, ok := t["applicationUrl"]; ok {
				items = []any{t}
			}
		default:
			return ListResult{}, fmt.Errorf("unexpected jobs type %T", jobs)
		}
	case []any:
		items = t
	default:
		return ListResult{}, fmt.Errorf("unexpected list payload %T", v)
	}

	base, _ := url.Parse(pageURL)
	for _, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		if n := intOf(m["numberOfPages"]); n > res.TotalPages {
			res.TotalPages = n
		}
		cand := models.CandidateJob{
			Title:          strOf(m["title"]),
			ApplicationURL: resolve(base, strOf(m["applicationUrl"])),
			PostedDate:     strOf(m["postedDate"]),
			CompanyName:    strOf(m["companyName"]),
			SourceJobID:    strOf(m["jobId"]),
		}
		if cand.ApplicationURL == "" && cand.Title == "" {
			continue
		}
		res.Jobs = append(res.Jobs, cand)
	}
	return res, nil
}

// parseDetail returns the last record when the model answered with a list.
func parseDetail(raw string) (models.ExtractedJob, error) {
	v, err := decodeJSON(raw)
	if err != nil {
		return models.ExtractedJob{}, err
	}

	if list, ok := v.([]any); ok {
		if len(list) == 0 {
			return models.ExtractedJob{}, nil
		}
		v = list[len(list)-1]
	}
	m, ok := v.(map[string]any)
	if !ok {
		return models.ExtractedJob{}, fmt.Errorf("unexpected detail payload %T", v)
	}

	coerceScalars(m)
	data, err := json.Marshal(m)
	if err != nil {
		return models.ExtractedJob{}, err
	}
	var job models.ExtractedJob
	if err := json.Unmarshal(data, &job); err != nil {
		return models.ExtractedJob{}, fmt.Errorf("decode job: %w", err)
	}
	return job, nil
}

var boolFields = map[string]bool{"brokenLink": true, "ipBlocked": true}

var passthroughFields = map[string]bool{
	"skills": true, "benefits": true, "responsibilities": true, "qualifications": true,
	"minSalary": true, "maxSalary": true,
}

// coerceScalars rewrites values whose JSON type does not match the record
// field, e.g. a numeric jobId or a "true" string for a flag.
func coerceScalars(m map[string]any) {
	for k, v := range m {
		if v == nil {
			delete(m, k)
			continue
		}
		if passthroughFields[k] {
			continue
		}
		if boolFields[k] {
			if s, ok := v.(string); ok {
				b, _ := strconv.ParseBool(strings.TrimSpace(s))
				m[k] = b
			}
			if _, ok := m[k].(bool); !ok {
				delete(m, k)
			}
			continue
		}
		switch t := v.(type) {
		case string:
		case float64, bool:
			m[k] = strOf(t)
		case []any:
			parts := make([]string, 0, len(t))
			for _, p := range t {
				if s := strOf(p); s != "" {
					parts = append(parts, s)
				}
			}
			m[k] = strings.Join(parts, ", ")
		default:
			delete(m, k)
		}
	}
}

func strOf(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}

func intOf(v any) int {
	switch t := v.(type) {
	case float64:
		return int(t)
	case string:
		n, _ := strconv.Atoi(strings.TrimSpace(t))
		return n
	default:
		return 0
	}
}

func resolve(base *url.URL, href string) string {
	if href == "" || base == nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}
