package filter

import (
	"testing"
	"time"

	"go-job-harvester/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestMatcher_Matches(t *testing.T) {
	m := NewMatcher(nil, 0)

	tests := []struct {
		name        string
		title       string
		description string
		expected    bool
	}{
		{"power platform title", "Senior Power Platform Developer", "", true},
		{"d365 in description", "Functional Consultant", "Implement D365 Finance modules", true},
		{"accents folded", "Consultor Dynamics 365 Línea", "", true},
		{"punctuation", "CRM/ERP Analyst", "", true},
		{"substring is not a word", "Interpreter", "enterprise support", false},
		{"unrelated", "Golang Backend Engineer", "Kubernetes, gRPC", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, m.Matches(tt.title, tt.description))
		})
	}
}

func TestMatcher_CustomKeywords(t *testing.T) {
	m := NewMatcher([]string{"Golang"}, 0)
	assert.True(t, m.Matches("Junior Golang Developer", ""))
	assert.Equal(t, []string{"golang"}, m.MatchedKeywords("golang golang"))
}

func TestMatcher_IsRelevant(t *testing.T) {
	now := time.Date(2025, time.July, 10, 12, 0, 0, 0, time.UTC)
	m := NewMatcher(nil, 15)
	m.now = func() time.Time { return now }

	fresh := models.JobRecord{Title: "Power Apps Developer", PostedDate: "2025-07-01 09:00:00"}
	stale := models.JobRecord{Title: "Power Apps Developer", PostedDate: "2025-05-01 09:00:00"}
	undated := models.JobRecord{Title: "Power Apps Developer"}
	offTopic := models.JobRecord{Title: "Chef", PostedDate: "2025-07-09 09:00:00"}

	assert.True(t, m.IsRelevant(fresh))
	assert.False(t, m.IsRelevant(stale))
	assert.True(t, m.IsRelevant(undated))
	assert.False(t, m.IsRelevant(offTopic))
}

func TestIsRecentJob(t *testing.T) {
	now := time.Date(2025, time.July, 10, 12, 0, 0, 0, time.UTC)
	window := 60 * 24 * time.Hour

	assert.True(t, IsRecentJob("", now, window))
	assert.True(t, IsRecentJob("2025-06-01", now, window))
	assert.False(t, IsRecentJob("2024-01-01", now, window))
	assert.True(t, IsRecentJob("15/06/2025", now, window))
	assert.False(t, IsRecentJob("2025-08-30", now, window))
	assert.True(t, IsRecentJob("Posted in 2025", now, window))
	assert.False(t, IsRecentJob("Posted in 2021", now, window))
}
