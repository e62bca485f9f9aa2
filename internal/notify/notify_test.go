package notify

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"go-job-harvester/internal/config"
	"go-job-harvester/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingNotifier struct {
	subjects []string
	err      error
}

func (r *recordingNotifier) Notify(_ context.Context, subject, _ string) error {
	r.subjects = append(r.subjects, subject)
	return r.err
}

func TestBuildSummary(t *testing.T) {
	body := BuildSummary(models.RunSummary{
		Succeeded: 4,
		Saved:     3,
		Failures: []models.FailureRecord{{
			Context: "crawl",
			Error:   "site failure",
			Site:    "https://contoso.test/careers",
			At:      time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		}},
	})
	assert.True(t, strings.HasPrefix(body, "The job scraping script has finished running.\n\nSuccessful jobs: 4\nSaved jobs: 3\nFailed jobs: 1\n"))
	assert.Contains(t, body, "Failed jobs details:\n[\n  {\n    \"context\": \"crawl\"")

	empty := BuildSummary(models.RunSummary{})
	assert.True(t, strings.HasSuffix(empty, "Failed jobs details:\n[]"))
}

func TestMulti_TriesEveryChannel(t *testing.T) {
	failing := &recordingNotifier{err: errors.New("smtp down")}
	ok := &recordingNotifier{}
	m := NewMulti(nil, failing, nil, ok)
	assert.Equal(t, 2, m.Len())

	err := m.Notify(context.Background(), SummarySubject, "body")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "smtp down")
	assert.Equal(t, []string{SummarySubject}, ok.subjects)
}

func TestSplitText(t *testing.T) {
	assert.Equal(t, []string{"short"}, splitText("short", 10))

	parts := splitText("line one\nline two\nline three", 12)
	require.Len(t, parts, 3)
	assert.Equal(t, "line one\n", parts[0])
	assert.Equal(t, "line three", parts[2])
	for _, p := range parts {
		assert.LessOrEqual(t, len([]rune(p)), 12)
	}
}

func TestTelegram_Notify(t *testing.T) {
	var mu sync.Mutex
	var texts []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case strings.HasSuffix(r.URL.Path, "/getMe"):
			_, _ = w.Write([]byte(`{"ok":true,"result":{"id":1,"is_bot":true,"first_name":"harvester","username":"harvester_bot"}}`))
		case strings.HasSuffix(r.URL.Path, "/sendMessage"):
			_ = r.ParseForm()
			mu.Lock()
			texts = append(texts, r.PostForm.Get("text"))
			mu.Unlock()
			_, _ = w.Write([]byte(`{"ok":true,"result":{"message_id":7,"date":0,"chat":{"id":42,"type":"private"}}}`))
		default:
			_, _ = w.Write([]byte(`{"ok":false,"error_code":404,"description":"Not Found"}`))
		}
	}))
	defer srv.Close()

	bot, err := tgbotapi.NewBotAPIWithClient("token", srv.URL+"/bot%s/%s", srv.Client())
	require.NoError(t, err)
	tg := newTelegram(bot, 42)

	require.NoError(t, tg.Notify(context.Background(), SummarySubject, "Saved jobs: 2 <ok>"))

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, texts, 1)
	assert.Contains(t, texts[0], "<b>Job Scraping Completed</b>")
	assert.Contains(t, texts[0], "<pre>Saved jobs: 2 &lt;ok&gt;</pre>")
}

func TestEmail_Message(t *testing.T) {
	_, err := NewEmail(config.MailConfig{Host: "smtp.test"})
	require.Error(t, err)

	e, err := NewEmail(config.MailConfig{
		Host:     "smtp.test",
		From:     "bot@contoso.test",
		FromName: "Harvester",
		To:       "a@contoso.test, b@contoso.test",
	})
	require.NoError(t, err)
	assert.Equal(t, "smtp.test:587", e.addr)
	assert.Nil(t, e.auth)

	msg := string(e.message(SummarySubject, "line1\nline2"))
	assert.Contains(t, msg, "From: Harvester <bot@contoso.test>\r\n")
	assert.Contains(t, msg, "To: a@contoso.test, b@contoso.test\r\n")
	assert.Contains(t, msg, "Subject: Job Scraping Completed\r\n")
	assert.True(t, strings.HasSuffix(msg, "\r\n\r\nline1\r\nline2"))
}
