// Package export writes a run's records to local files.
package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go-job-harvester/internal/models"

	"github.com/xuri/excelize/v2"
)

const sheetName = "Jobs"

// Columns of the spreadsheet, in order.
var Columns = []string{
	"jobId", "title", "companyName", "location", "country", "city", "jobType",
	"workSettings", "experienceLevel", "category", "salary", "currency",
	"minSalary", "maxSalary", "skills", "postedDate", "applicationUrl",
}

// FileName builds "<prefix>_<timestamp>.<ext>".
func FileName(prefix, ext string, at time.Time) string {
	return fmt.Sprintf("%s_%s.%s", prefix, at.Format("20060102_150405"), ext)
}

// WriteJSON writes records as an indented JSON array, creating dir if needed.
func WriteJSON(path string, records []models.JobRecord) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	if records == nil {
		records = []models.JobRecord{}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal records: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func row(rec models.JobRecord) []any {
	return []any{
		rec.JobID, rec.Title, rec.CompanyName, rec.Location, rec.Country, rec.City, rec.JobType,
		rec.WorkSettings, rec.ExperienceLevel, rec.Category, rec.Salary, rec.Currency,
		rec.MinSalary, rec.MaxSalary, strings.Join(rec.Skills, ", "), rec.PostedDate, rec.ApplicationURL,
	}
}

// WriteXLSX writes one sheet with a header row and one row per record.
func WriteXLSX(path string, records []models.JobRecord) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	// Rename Sheet1 to Jobs
	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return err
	}

	header := make([]any, len(Columns))
	for i, c := range Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return err
	}
	for i, rec := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := row(rec)
		if err := f.SetSheetRow(sheetName, cell, &values); err != nil {
			return err
		}
	}

	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err == nil {
		last, _ := excelize.CoordinatesToCellName(len(Columns), 1)
		_ = f.SetCellStyle(sheetName, "A1", last, style)
	}
	if err := f.SetPanes(sheetName, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
		return err
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}
