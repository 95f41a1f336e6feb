package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/salus-health/benefits-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS insurance_plans (
	plan_id           TEXT PRIMARY KEY,
	provider          TEXT NOT NULL,
	plan_name         TEXT NOT NULL,
	coverage_rate     REAL NOT NULL DEFAULT 0,
	annual_max        REAL NOT NULL DEFAULT 0,
	deductible        REAL NOT NULL DEFAULT 0,
	covers_brand_name INTEGER NOT NULL DEFAULT 1,
	covers_generic    INTEGER NOT NULL DEFAULT 1
);

CREATE TABLE IF NOT EXISTS aid_programs (
	program_id    TEXT PRIMARY KEY,
	name          TEXT NOT NULL,
	description   TEXT NOT NULL DEFAULT '',
	region        TEXT NOT NULL,
	coverage_rate REAL NOT NULL DEFAULT 0,
	eligibility   TEXT NOT NULL DEFAULT '[]',
	max_copay     REAL NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS drug_formulary (
	din           TEXT PRIMARY KEY,
	drug_name     TEXT NOT NULL,
	brand_name    TEXT NOT NULL DEFAULT '',
	category      TEXT NOT NULL DEFAULT '',
	covered       INTEGER NOT NULL DEFAULT 0,
	coverage_rate REAL NOT NULL DEFAULT 0,
	typical_price REAL NOT NULL DEFAULT 0,
	limited_use   INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS analyses (
	id         TEXT PRIMARY KEY,
	policy_id  TEXT NOT NULL,
	region     TEXT NOT NULL,
	bill       TEXT NOT NULL,
	result     TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_insurance_plans_provider ON insurance_plans(provider);
CREATE INDEX IF NOT EXISTS idx_aid_programs_region ON aid_programs(region);
CREATE INDEX IF NOT EXISTS idx_drug_formulary_drug_name ON drug_formulary(drug_name);
CREATE INDEX IF NOT EXISTS idx_analyses_policy_id ON analyses(policy_id);
CREATE INDEX IF NOT EXISTS idx_analyses_created_at ON analyses(created_at);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

const sqlitePlanColumns = `plan_id, provider, plan_name, coverage_rate, annual_max, deductible, covers_brand_name, covers_generic`

func (s *SQLiteStore) FindPlan(ctx context.Context, provider string) (*model.PlanRecord, error) {
	plan, err := scanPlanRow(s.db.QueryRowContext(ctx,
		`SELECT `+sqlitePlanColumns+` FROM insurance_plans WHERE provider LIKE '%' || ? || '%' COLLATE NOCASE LIMIT 1`,
		provider,
	))
	if err == nil {
		return plan, nil
	}
	if err != sql.ErrNoRows {
		return nil, eris.Wrapf(err, "sqlite: find plan %s", provider)
	}

	// No provider match: fall back to the dataset's default plan.
	plan, err = scanPlanRow(s.db.QueryRowContext(ctx,
		`SELECT `+sqlitePlanColumns+` FROM insurance_plans WHERE plan_id = ?`,
		defaultPlanID,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: find default plan")
	}
	return plan, nil
}

func (s *SQLiteStore) FindProgram(ctx context.Context, region string) (*model.ProgramRecord, error) {
	var p model.ProgramRecord
	var eligibilityJSON string
	err := s.db.QueryRowContext(ctx,
		`SELECT program_id, name, description, region, coverage_rate, eligibility, max_copay FROM aid_programs WHERE region = ? ORDER BY (program_id = 'ODB') DESC, program_id LIMIT 1`,
		region,
	).Scan(&p.ProgramID, &p.Name, &p.Description, &p.Region, &p.CoverageRate, &eligibilityJSON, &p.MaxCopay)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: find program %s", region)
	}
	if eligibilityJSON != "" {
		if err := json.Unmarshal([]byte(eligibilityJSON), &p.Eligibility); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal eligibility")
		}
	}
	return &p, nil
}

func (s *SQLiteStore) FindDrug(ctx context.Context, name string) (*model.DrugRecord, error) {
	var d model.DrugRecord
	err := s.db.QueryRowContext(ctx,
		`SELECT din, drug_name, brand_name, category, covered, coverage_rate, typical_price, limited_use FROM drug_formulary WHERE drug_name LIKE '%' || ? || '%' COLLATE NOCASE OR brand_name LIKE '%' || ? || '%' COLLATE NOCASE LIMIT 1`,
		name, name,
	).Scan(&d.DIN, &d.DrugName, &d.BrandName, &d.Category, &d.Covered, &d.CoverageRate, &d.TypicalPrice, &d.LimitedUse)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: find drug %s", name)
	}
	return &d, nil
}

func (s *SQLiteStore) SaveAnalysis(ctx context.Context, a *model.Analysis) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}

	billJSON, err := json.Marshal(a.Bill)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal bill")
	}
	resultJSON, err := json.Marshal(a.Result)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal result")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO analyses (id, policy_id, region, bill, result, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		a.ID, a.PolicyID, a.Region, string(billJSON), string(resultJSON), a.CreatedAt,
	)
	return eris.Wrap(err, "sqlite: insert analysis")
}

func (s *SQLiteStore) ListAnalyses(ctx context.Context, policyID string, limit int) ([]model.Analysis, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, policy_id, region, bill, result, created_at FROM analyses WHERE (? = '' OR policy_id = ?) ORDER BY created_at DESC LIMIT ?`,
		policyID, policyID, limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list analyses")
	}
	defer rows.Close()

	var out []model.Analysis
	for rows.Next() {
		var a model.Analysis
		var billJSON, resultJSON string
		if err := rows.Scan(&a.ID, &a.PolicyID, &a.Region, &billJSON, &resultJSON, &a.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan analysis")
		}
		if err := json.Unmarshal([]byte(billJSON), &a.Bill); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal bill")
		}
		if err := json.Unmarshal([]byte(resultJSON), &a.Result); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal result")
		}
		out = append(out, a)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: iterate analyses")
}

func (s *SQLiteStore) SeedReference(ctx context.Context, data *SeedData) error {
	for _, p := range data.Plans {
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO insurance_plans (plan_id, provider, plan_name, coverage_rate, annual_max, deductible, covers_brand_name, covers_generic)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			 ON CONFLICT(plan_id) DO UPDATE SET provider = excluded.provider, plan_name = excluded.plan_name,
			   coverage_rate = excluded.coverage_rate, annual_max = excluded.annual_max, deductible = excluded.deductible,
			   covers_brand_name = excluded.covers_brand_name, covers_generic = excluded.covers_generic`,
			p.PlanID, p.Provider, p.PlanName, p.CoverageRate, p.AnnualMax, p.Deductible, p.CoversBrandName, p.CoversGeneric,
		)
		if err != nil {
			return eris.Wrapf(err, "sqlite: seed plan %s", p.PlanID)
		}
	}
	for _, pr := range data.Programs {
		eligibilityJSON, err := json.Marshal(pr.Eligibility)
		if err != nil {
			return eris.Wrapf(err, "sqlite: marshal eligibility %s", pr.ProgramID)
		}
		_, err = s.db.ExecContext(ctx,
			`INSERT INTO aid_programs (program_id, name, description, region, coverage_rate, eligibility, max_copay)
			 VALUES (?, ?, ?, ?, ?, ?, ?)
			 ON CONFLICT(program_id) DO UPDATE SET name = excluded.name, description = excluded.description,
			   region = excluded.region, coverage_rate = excluded.coverage_rate, eligibility = excluded.eligibility,
			   max_copay = excluded.max_copay`,
			pr.ProgramID, pr.Name, pr.Description, pr.Region, pr.CoverageRate, string(eligibilityJSON), pr.MaxCopay,
		)
		if err != nil {
			return eris.Wrapf(err, "sqlite: seed program %s", pr.ProgramID)
		}
	}
	for _, d := range data.Drugs {
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO drug_formulary (din, drug_name, brand_name, category, covered, coverage_rate, typical_price, limited_use)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			 ON CONFLICT(din) DO UPDATE SET drug_name = excluded.drug_name, brand_name = excluded.brand_name,
			   category = excluded.category, covered = excluded.covered, coverage_rate = excluded.coverage_rate,
			   typical_price = excluded.typical_price, limited_use = excluded.limited_use`,
			d.DIN, d.DrugName, d.BrandName, d.Category, d.Covered, d.CoverageRate, d.TypicalPrice, d.LimitedUse,
		)
		if err != nil {
			return eris.Wrapf(err, "sqlite: seed drug %s", d.DIN)
		}
	}
	return nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanPlanRow(row scannable) (*model.PlanRecord, error) {
	var p model.PlanRecord
	err := row.Scan(&p.PlanID, &p.Provider, &p.PlanName, &p.CoverageRate,
		&p.AnnualMax, &p.Deductible, &p.CoversBrandName, &p.CoversGeneric)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
