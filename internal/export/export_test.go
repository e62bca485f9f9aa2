package export

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go-job-harvester/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

var sample = []models.JobRecord{
	{JobID: "k1", Title: "Power Platform Developer", CompanyName: "Contoso", Skills: models.StringList{"Power Apps", "Dataverse"}, MinSalary: 60000},
	{JobID: "k2", Title: "D365 Consultant", CompanyName: "Fabrikam"},
}

func TestFileName(t *testing.T) {
	at := time.Date(2024, 3, 1, 9, 5, 7, 0, time.UTC)
	assert.Equal(t, "jobs_20240301_090507.json", FileName("jobs", "json", at))
}

func TestWriteJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "jobs.json")
	require.NoError(t, WriteJSON(path, sample))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var got []models.JobRecord
	require.NoError(t, json.Unmarshal(data, &got))
	require.Len(t, got, 2)
	assert.Equal(t, "k2", got[1].JobID)

	empty := filepath.Join(t.TempDir(), "empty.json")
	require.NoError(t, WriteJSON(empty, nil))
	data, err = os.ReadFile(empty)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))
}

func TestWriteXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jobs.xlsx")
	require.NoError(t, WriteXLSX(path, sample))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(sheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, Columns, rows[0])
	assert.Equal(t, "Power Platform Developer", rows[1][1])
	assert.Equal(t, "Power Apps, Dataverse", rows[1][14])
	assert.Equal(t, "60000", rows[1][12])
}
