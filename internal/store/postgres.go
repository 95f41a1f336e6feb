package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/salus-health/benefits-cli/internal/model"
)

// defaultPlanID is returned by FindPlan when no provider matches, mirroring
// the dataset's default Sun Life Gold plan.
const defaultPlanID = "SLG80"

// pgxPool is the subset of pgxpool.Pool used by PostgresStore. pgxmock's
// pool satisfies it in tests.
type pgxPool interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Close()
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool pgxPool
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// preparedStatements lists queries to prepare on each new connection for
// faster execution of the most frequently used store operations.
var preparedStatements = map[string]string{
	"find_plan":       `SELECT plan_id, provider, plan_name, coverage_rate, annual_max, deductible, covers_brand_name, covers_generic FROM insurance_plans WHERE provider ILIKE '%' || $1 || '%' LIMIT 1`,
	"find_program":    `SELECT program_id, name, description, region, coverage_rate, eligibility, max_copay FROM aid_programs WHERE region = $1 ORDER BY (program_id = 'ODB') DESC, program_id LIMIT 1`,
	"find_drug":       `SELECT din, drug_name, brand_name, category, covered, coverage_rate, typical_price, limited_use FROM drug_formulary WHERE drug_name ILIKE '%' || $1 || '%' OR brand_name ILIKE '%' || $1 || '%' LIMIT 1`,
	"insert_analysis": `INSERT INTO analyses (id, policy_id, region, bill, result, created_at) VALUES ($1, $2, $3, $4, $5, $6)`,
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	// Apply pool sizing from config with sensible defaults.
	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	// Prepare frequently-used statements on each new connection.
	pgxCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		for name, sql := range preparedStatements {
			if _, err := conn.Prepare(ctx, name, sql); err != nil {
				return eris.Wrapf(err, "postgres: prepare %s", name)
			}
		}
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

const postgresSchema = `
CREATE TABLE IF NOT EXISTS insurance_plans (
	plan_id           TEXT PRIMARY KEY,
	provider          TEXT NOT NULL,
	plan_name         TEXT NOT NULL,
	coverage_rate     DOUBLE PRECISION NOT NULL,
	annual_max        DOUBLE PRECISION NOT NULL DEFAULT 0,
	deductible        DOUBLE PRECISION NOT NULL DEFAULT 0,
	covers_brand_name BOOLEAN NOT NULL DEFAULT TRUE,
	covers_generic    BOOLEAN NOT NULL DEFAULT TRUE
);

CREATE TABLE IF NOT EXISTS aid_programs (
	program_id    TEXT PRIMARY KEY,
	name          TEXT NOT NULL,
	description   TEXT NOT NULL DEFAULT '',
	region        TEXT NOT NULL,
	coverage_rate DOUBLE PRECISION NOT NULL,
	eligibility   JSONB NOT NULL DEFAULT '[]',
	max_copay     DOUBLE PRECISION NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS drug_formulary (
	din           TEXT PRIMARY KEY,
	drug_name     TEXT NOT NULL,
	brand_name    TEXT NOT NULL DEFAULT '',
	category      TEXT NOT NULL DEFAULT '',
	covered       BOOLEAN NOT NULL DEFAULT TRUE,
	coverage_rate DOUBLE PRECISION NOT NULL DEFAULT 1,
	typical_price DOUBLE PRECISION NOT NULL DEFAULT 0,
	limited_use   BOOLEAN NOT NULL DEFAULT FALSE
);

CREATE TABLE IF NOT EXISTS analyses (
	id         TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	policy_id  TEXT NOT NULL,
	region     TEXT NOT NULL,
	bill       JSONB NOT NULL,
	result     JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_insurance_plans_provider ON insurance_plans(provider);
CREATE INDEX IF NOT EXISTS idx_aid_programs_region ON aid_programs(region);
CREATE INDEX IF NOT EXISTS idx_drug_formulary_drug_name ON drug_formulary(drug_name);
CREATE INDEX IF NOT EXISTS idx_drug_formulary_brand_name ON drug_formulary(brand_name);
CREATE INDEX IF NOT EXISTS idx_analyses_policy_created ON analyses(policy_id, created_at DESC);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresSchema)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) FindPlan(ctx context.Context, provider string) (*model.PlanRecord, error) {
	plan, err := s.scanPlan(s.pool.QueryRow(ctx,
		`SELECT plan_id, provider, plan_name, coverage_rate, annual_max, deductible, covers_brand_name, covers_generic FROM insurance_plans WHERE provider ILIKE '%' || $1 || '%' LIMIT 1`,
		provider,
	))
	if err == nil {
		return plan, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, eris.Wrapf(err, "postgres: find plan %s", provider)
	}

	// No provider match: fall back to the dataset's default plan.
	plan, err = s.scanPlan(s.pool.QueryRow(ctx,
		`SELECT plan_id, provider, plan_name, coverage_rate, annual_max, deductible, covers_brand_name, covers_generic FROM insurance_plans WHERE plan_id = $1`,
		defaultPlanID,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: find default plan")
	}
	return plan, nil
}

func (s *PostgresStore) scanPlan(row pgx.Row) (*model.PlanRecord, error) {
	var p model.PlanRecord
	err := row.Scan(&p.PlanID, &p.Provider, &p.PlanName, &p.CoverageRate,
		&p.AnnualMax, &p.Deductible, &p.CoversBrandName, &p.CoversGeneric)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *PostgresStore) FindProgram(ctx context.Context, region string) (*model.ProgramRecord, error) {
	var p model.ProgramRecord
	var eligibility []byte
	err := s.pool.QueryRow(ctx,
		`SELECT program_id, name, description, region, coverage_rate, eligibility, max_copay FROM aid_programs WHERE region = $1 ORDER BY (program_id = 'ODB') DESC, program_id LIMIT 1`,
		region,
	).Scan(&p.ProgramID, &p.Name, &p.Description, &p.Region, &p.CoverageRate, &eligibility, &p.MaxCopay)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: find program %s", region)
	}
	if len(eligibility) > 0 {
		if err := json.Unmarshal(eligibility, &p.Eligibility); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal eligibility")
		}
	}
	return &p, nil
}

func (s *PostgresStore) FindDrug(ctx context.Context, name string) (*model.DrugRecord, error) {
	var d model.DrugRecord
	err := s.pool.QueryRow(ctx,
		`SELECT din, drug_name, brand_name, category, covered, coverage_rate, typical_price, limited_use FROM drug_formulary WHERE drug_name ILIKE '%' || $1 || '%' OR brand_name ILIKE '%' || $1 || '%' LIMIT 1`,
		name,
	).Scan(&d.DIN, &d.DrugName, &d.BrandName, &d.Category, &d.Covered, &d.CoverageRate, &d.TypicalPrice, &d.LimitedUse)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: find drug %s", name)
	}
	return &d, nil
}

func (s *PostgresStore) SaveAnalysis(ctx context.Context, a *model.Analysis) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}

	billJSON, err := json.Marshal(a.Bill)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal bill")
	}
	resultJSON, err := json.Marshal(a.Result)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal result")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO analyses (id, policy_id, region, bill, result, created_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		a.ID, a.PolicyID, a.Region, billJSON, resultJSON, a.CreatedAt,
	)
	return eris.Wrap(err, "postgres: insert analysis")
}

func (s *PostgresStore) ListAnalyses(ctx context.Context, policyID string, limit int) ([]model.Analysis, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	rows, err := s.pool.Query(ctx,
		`SELECT id, policy_id, region, bill, result, created_at FROM analyses WHERE ($1 = '' OR policy_id = $1) ORDER BY created_at DESC LIMIT $2`,
		policyID, limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list analyses")
	}
	defer rows.Close()

	var out []model.Analysis
	for rows.Next() {
		var a model.Analysis
		var billJSON, resultJSON []byte
		if err := rows.Scan(&a.ID, &a.PolicyID, &a.Region, &billJSON, &resultJSON, &a.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan analysis")
		}
		if err := json.Unmarshal(billJSON, &a.Bill); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal bill")
		}
		if err := json.Unmarshal(resultJSON, &a.Result); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal result")
		}
		out = append(out, a)
	}
	return out, eris.Wrap(rows.Err(), "postgres: iterate analyses")
}

func (s *PostgresStore) SeedReference(ctx context.Context, data *SeedData) error {
	for _, p := range data.Plans {
		_, err := s.pool.Exec(ctx,
			`INSERT INTO insurance_plans (plan_id, provider, plan_name, coverage_rate, annual_max, deductible, covers_brand_name, covers_generic)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			 ON CONFLICT (plan_id) DO UPDATE SET provider = EXCLUDED.provider, plan_name = EXCLUDED.plan_name, coverage_rate = EXCLUDED.coverage_rate, annual_max = EXCLUDED.annual_max, deductible = EXCLUDED.deductible, covers_brand_name = EXCLUDED.covers_brand_name, covers_generic = EXCLUDED.covers_generic`,
			p.PlanID, p.Provider, p.PlanName, p.CoverageRate, p.AnnualMax, p.Deductible, p.CoversBrandName, p.CoversGeneric,
		)
		if err != nil {
			return eris.Wrapf(err, "postgres: seed plan %s", p.PlanID)
		}
	}

	for _, pr := range data.Programs {
		eligibility, err := json.Marshal(pr.Eligibility)
		if err != nil {
			return eris.Wrap(err, "postgres: marshal eligibility")
		}
		_, err = s.pool.Exec(ctx,
			`INSERT INTO aid_programs (program_id, name, description, region, coverage_rate, eligibility, max_copay)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)
			 ON CONFLICT (program_id) DO UPDATE SET name = EXCLUDED.name, description = EXCLUDED.description, region = EXCLUDED.region, coverage_rate = EXCLUDED.coverage_rate, eligibility = EXCLUDED.eligibility, max_copay = EXCLUDED.max_copay`,
			pr.ProgramID, pr.Name, pr.Description, pr.Region, pr.CoverageRate, eligibility, pr.MaxCopay,
		)
		if err != nil {
			return eris.Wrapf(err, "postgres: seed program %s", pr.ProgramID)
		}
	}

	for _, d := range data.Drugs {
		_, err := s.pool.Exec(ctx,
			`INSERT INTO drug_formulary (din, drug_name, brand_name, category, covered, coverage_rate, typical_price, limited_use)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			 ON CONFLICT (din) DO UPDATE SET drug_name = EXCLUDED.drug_name, brand_name = EXCLUDED.brand_name, category = EXCLUDED.category, covered = EXCLUDED.covered, coverage_rate = EXCLUDED.coverage_rate, typical_price = EXCLUDED.typical_price, limited_use = EXCLUDED.limited_use`,
			d.DIN, d.DrugName, d.BrandName, d.Category, d.Covered, d.CoverageRate, d.TypicalPrice, d.LimitedUse,
		)
		if err != nil {
			return eris.Wrapf(err, "postgres: seed drug %s", d.DIN)
		}
	}

	return nil
}
