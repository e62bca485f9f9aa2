package database

import (
	"context"
	"fmt"
	"strings"

	"go-job-harvester/internal/logger"
	"go-job-harvester/internal/models"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

const sqliteSchema = `CREATE TABLE IF NOT EXISTS %s (
	"jobId" TEXT PRIMARY KEY,
	"title" TEXT NOT NULL DEFAULT '',
	"description" TEXT DEFAULT '',
	"location" TEXT DEFAULT '',
	"country" TEXT DEFAULT '',
	"state" TEXT DEFAULT '',
	"city" TEXT DEFAULT '',
	"jobType" TEXT DEFAULT '',
	"salary" TEXT DEFAULT '',
	"currency" TEXT DEFAULT '',
	"minSalary" REAL DEFAULT 0,
	"maxSalary" REAL DEFAULT 0,
	"experienceLevel" TEXT DEFAULT '',
	"workSettings" TEXT DEFAULT '',
	"category" TEXT DEFAULT '',
	"roleCategory" TEXT DEFAULT '',
	"skills" TEXT DEFAULT '[]',
	"benefits" TEXT DEFAULT '[]',
	"responsibilities" TEXT DEFAULT '[]',
	"qualifications" TEXT DEFAULT '[]',
	"companyName" TEXT DEFAULT '',
	"companyLogo" TEXT DEFAULT '',
	"applicationUrl" TEXT DEFAULT '',
	"postedDate" TEXT DEFAULT '',
	"jobStatus" TEXT DEFAULT '',
	"approvalStatus" TEXT DEFAULT '',
	"brokenLink" INTEGER DEFAULT 0,
	"ipBlocked" INTEGER DEFAULT 0,
	"createdAt" TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	"updatedAt" TIMESTAMP DEFAULT CURRENT_TIMESTAMP
)`

var sqliteColumns = []string{
	"jobId", "title", "description", "location", "country", "state", "city",
	"jobType", "salary", "currency", "minSalary", "maxSalary", "experienceLevel",
	"workSettings", "category", "roleCategory", "skills", "benefits",
	"responsibilities", "qualifications", "companyName", "companyLogo",
	"applicationUrl", "postedDate", "jobStatus", "approvalStatus",
	"brokenLink", "ipBlocked",
}

func init() {
	sqlx.BindDriver("sqlite", sqlx.QUESTION)
}

// SQLiteStore is the local sink used when no Postgres URL is configured.
type SQLiteStore struct {
	db     *sqlx.DB
	table  string
	insert string
	log    logger.Logger
}

// OpenSQLite opens (or creates) the database file and ensures the jobs table.
func OpenSQLite(ctx context.Context, path, table string, log logger.Logger) (*SQLiteStore, error) {
	if table == "" {
		table = "jobs"
	}
	if log == nil {
		log = logger.NewNop()
	}
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", path)
	if path == ":memory:" {
		dsn = ":memory:"
	}
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	//single writer
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	quoted := `"` + strings.ReplaceAll(table, `"`, `""`) + `"`
	if _, err := db.ExecContext(ctx, fmt.Sprintf(sqliteSchema, quoted)); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create %s: %w", table, err)
	}

	cols := make([]string, len(sqliteColumns))
	binds := make([]string, len(sqliteColumns))
	for i, c := range sqliteColumns {
		cols[i] = `"` + c + `"`
		binds[i] = ":" + c
	}
	insert := fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s)
		ON CONFLICT("jobId") DO UPDATE SET title = excluded.title, "updatedAt" = CURRENT_TIMESTAMP`,
		quoted, strings.Join(cols, ", "), strings.Join(binds, ", "))

	return &SQLiteStore{db: db, table: quoted, insert: insert, log: log}, nil
}

// Upsert writes the batch in one transaction; rows failing individually are skipped.
func (s *SQLiteStore) Upsert(ctx context.Context, records []models.JobRecord) (int, error) {
	rows := PrepareRows(records)
	if len(rows) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	saved := 0
	for _, rec := range rows {
		if _, err := tx.NamedExecContext(ctx, s.insert, rec); err != nil {
			s.log.Warn("⚠️ Skipping row", logger.String("job_id", rec.JobID), logger.Error(err))
			continue
		}
		saved++
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	s.log.Info("💾 Upserted jobs", logger.Int("rows", saved), logger.String("table", s.table))
	return saved, nil
}

// Count returns the number of stored rows.
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.GetContext(ctx, &n, fmt.Sprintf(`SELECT COUNT(*) FROM %s`, s.table))
	return n, err
}

// Get loads one record by jobId.
func (s *SQLiteStore) Get(ctx context.Context, jobID string) (models.JobRecord, error) {
	cols := make([]string, len(sqliteColumns))
	for i, c := range sqliteColumns {
		cols[i] = `"` + c + `"`
	}
	var rec models.JobRecord
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE "jobId" = ?`, strings.Join(cols, ", "), s.table)
	if err := s.db.GetContext(ctx, &rec, query, jobID); err != nil {
		return models.JobRecord{}, err
	}
	return rec, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
