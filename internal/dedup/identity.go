package dedup

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"go-job-harvester/internal/models"
)

// Key derives the jobId used for in-run dedup and as the sink's upsert key.
// A source-provided id gives "company_sourceId", otherwise the first 10 hex
// chars of sha256("company_title_location_url") stand in for it.
func Key(rec models.JobRecord, fallbackCompany string) string {
	company := rec.CompanyName
	if strings.TrimSpace(company) == "" {
		company = fallbackCompany
	}
	company = companySlug(company)

	if id := strings.TrimSpace(rec.SourceJobID); id != "" {
		return company + "_" + id
	}

	raw := fmt.Sprintf("%s_%s_%s_%s", company, rec.Title, rec.Location, rec.ApplicationURL)
	sum := sha256.Sum256([]byte(raw))
	return company + "_" + hex.EncodeToString(sum[:])[:10]
}

func companySlug(name string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(name), " ", "_"))
}
