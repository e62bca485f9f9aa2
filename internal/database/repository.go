package database

import (
	"context"
	"fmt"
	"math"
	"time"

	"go-job-harvester/internal/logger"
	"go-job-harvester/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository is the Postgres sink.
type Repository struct {
	db    *pgxpool.Pool
	table string
	log   logger.Logger
}

func ConnectDB(ctx context.Context, connString, table string, log logger.Logger) (*Repository, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("unable to parse database url: %w", err)
	}

	config.MaxConns = 10
	config.MinConns = 2
	config.MaxConnLifetime = time.Hour

	// IMPORTANT: Supabase connection pooler (PgBouncer in Transaction mode)
	// does not support prepared statements easily. We MUST disable the statement cache.
	config.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeExec

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}

	// Ping to ensure connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("database unreachable: %w", err)
	}

	if table == "" {
		table = "jobs"
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Repository{db: pool, table: pgx.Identifier{table}.Sanitize(), log: log}, nil
}

func (r *Repository) Close() error {
	if r.db != nil {
		r.db.Close()
	}
	return nil
}

// EnsureSchema creates the jobs table and its jobId unique index when missing.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE EXTENSION IF NOT EXISTS pgcrypto`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			"id" UUID DEFAULT gen_random_uuid() PRIMARY KEY,
			"jobId" TEXT NOT NULL UNIQUE,
			"title" TEXT DEFAULT '',
			"description" TEXT DEFAULT '',
			"location" TEXT DEFAULT '',
			"country" TEXT DEFAULT '',
			"state" TEXT DEFAULT '',
			"city" TEXT DEFAULT '',
			"jobType" TEXT DEFAULT 'fullTime',
			"salary" TEXT DEFAULT '',
			"skills" TEXT[] DEFAULT '{}',
			"experienceLevel" TEXT DEFAULT 'experienced',
			"currency" TEXT DEFAULT '',
			"applicationUrl" TEXT DEFAULT '',
			"benefits" TEXT[] DEFAULT '{}',
			"approvalStatus" TEXT,
			"brokenLink" BOOLEAN DEFAULT FALSE,
			"jobStatus" TEXT DEFAULT 'active',
			"responsibilities" TEXT[] DEFAULT '{}',
			"workSettings" TEXT,
			"roleCategory" TEXT DEFAULT '',
			"qualifications" TEXT[] DEFAULT '{}',
			"companyLogo" TEXT DEFAULT '',
			"companyName" TEXT,
			"ipBlocked" BOOLEAN DEFAULT FALSE,
			"createdAt" TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			"updatedAt" TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			"minSalary" INTEGER DEFAULT 0,
			"maxSalary" INTEGER DEFAULT 0,
			"postedDate" TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			"category" TEXT
		)`, r.table),
	}
	for _, stmt := range stmts {
		if _, err := r.db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to ensure schema: %w", err)
		}
	}
	return nil
}

// Upsert writes the batch in one transaction. A failing row is rolled back to
// its savepoint, logged and skipped; on conflict only title and updatedAt change.
func (r *Repository) Upsert(ctx context.Context, records []models.JobRecord) (int, error) {
	rows := PrepareRows(records)
	if len(rows) == 0 {
		return 0, nil
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (
			"companyName", "companyLogo", "jobId", title, location, salary,
			description, "roleCategory", "jobType", responsibilities, skills,
			"applicationUrl", country, state, city, currency,
			"minSalary", "maxSalary", qualifications, "experienceLevel",
			benefits, "workSettings", "postedDate", category, "jobStatus",
			"approvalStatus", "brokenLink", "ipBlocked"
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16,
			$17, $18, $19, $20, $21, $22, COALESCE($23, CURRENT_TIMESTAMP), $24, $25, $26, $27, $28)
		ON CONFLICT ("jobId") DO UPDATE
		SET title = EXCLUDED.title, "updatedAt" = NOW()`, r.table)

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	saved := 0
	for _, rec := range rows {
		sp, err := tx.Begin(ctx)
		if err != nil {
			return 0, fmt.Errorf("failed to create savepoint: %w", err)
		}
		_, err = sp.Exec(ctx, query,
			rec.CompanyName, rec.CompanyLogo, rec.JobID, rec.Title, rec.Location, rec.Salary,
			rec.Description, rec.RoleCategory, rec.JobType, []string(rec.Responsibilities), []string(rec.Skills),
			rec.ApplicationURL, rec.Country, rec.State, rec.City, rec.Currency,
			int64(math.Round(rec.MinSalary)), int64(math.Round(rec.MaxSalary)), []string(rec.Qualifications), rec.ExperienceLevel,
			[]string(rec.Benefits), rec.WorkSettings, postedAt(rec.PostedDate), rec.Category, rec.JobStatus,
			rec.ApprovalStatus, rec.BrokenLink, rec.IPBlocked,
		)
		if err != nil {
			_ = sp.Rollback(ctx)
			r.log.Warn("⚠️ Skipping row", logger.String("job_id", rec.JobID), logger.Error(err))
			continue
		}
		if err := sp.Commit(ctx); err != nil {
			return 0, fmt.Errorf("failed to release savepoint: %w", err)
		}
		saved++
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit jobs: %w", err)
	}
	r.log.Info("💾 Upserted jobs", logger.Int("rows", saved), logger.String("table", r.table))
	return saved, nil
}
