package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/okian/peerbench/internal/domain/model"
)

const (
	pgMaxConns          = 10
	pgHealthCheckPeriod = 30 * time.Second
)

// candidatesQuery returns one row per organization metric, ordered so rows
// of the same organization are adjacent.
const candidatesQuery = `
SELECT o.id,
       o.sector,
       o.size_class,
       o.geography,
       COALESCE(o.program_types, '{}') AS program_types,
       o.annual_budget,
       o.beneficiary_count,
       COALESCE(o.data_quality, 0)     AS data_quality,
       o.last_measurement,
       m.metric_key,
       m.score,
       m.previous_score
FROM organizations o
LEFT JOIN organization_metrics m ON m.organization_id = o.id
ORDER BY o.id, m.metric_key`

// poolRow is one row of candidatesQuery.
type poolRow struct {
	ID               string     `db:"id"`
	Sector           string     `db:"sector"`
	SizeClass        string     `db:"size_class"`
	Geography        string     `db:"geography"`
	ProgramTypes     []string   `db:"program_types"`
	AnnualBudget     *float64   `db:"annual_budget"`
	BeneficiaryCount *int       `db:"beneficiary_count"`
	DataQuality      float64    `db:"data_quality"`
	LastMeasurement  *time.Time `db:"last_measurement"`
	MetricKey        *string    `db:"metric_key"`
	Score            *float64   `db:"score"`
	PreviousScore    *float64   `db:"previous_score"`
}

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// PostgresPool reads the candidate pool from PostgreSQL.
type PostgresPool struct {
	db    querier
	close func()
}

var _ PoolSource = (*PostgresPool)(nil)

// ConnectPostgres opens a connection pool and verifies it with a ping.
func ConnectPostgres(ctx context.Context, url string) (*PostgresPool, error) {
	cfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPoolUnavailable, err)
	}
	cfg.MaxConns = pgMaxConns
	cfg.HealthCheckPeriod = pgHealthCheckPeriod
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPoolUnavailable, err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%w: %w", ErrPoolUnavailable, err)
	}
	return &PostgresPool{db: pool, close: pool.Close}, nil
}

// Close releases the connection pool.
func (p *PostgresPool) Close() {
	if p.close != nil {
		p.close()
	}
}

// Candidates implements PoolSource.
func (p *PostgresPool) Candidates(ctx context.Context) ([]model.Candidate, error) {
	rows, err := p.db.Query(ctx, candidatesQuery)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPoolUnavailable, err)
	}
	collected, err := pgx.CollectRows(rows, pgx.RowToStructByName[poolRow])
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPoolUnavailable, err)
	}
	return assemble(collected), nil
}

// assemble folds metric rows into one candidate per organization,
// preserving row order.
func assemble(rows []poolRow) []model.Candidate {
	out := make([]model.Candidate, 0)
	index := make(map[string]int)
	for _, r := range rows {
		i, ok := index[r.ID]
		if !ok {
			c := model.Candidate{
				Profile: model.OrganizationProfile{
					OrganizationID:   r.ID,
					Sector:           r.Sector,
					SizeClass:        r.SizeClass,
					Geography:        r.Geography,
					ProgramTypes:     append([]string{}, r.ProgramTypes...),
					AnnualBudget:     r.AnnualBudget,
					BeneficiaryCount: r.BeneficiaryCount,
				},
				Metrics: model.OrganizationMetrics{
					Scores:      map[string]float64{},
					DataQuality: r.DataQuality,
				},
			}
			if r.LastMeasurement != nil {
				c.Metrics.LastMeasurement = r.LastMeasurement.UTC()
			}
			i = len(out)
			index[r.ID] = i
			out = append(out, c)
		}
		if r.MetricKey == nil || r.Score == nil {
			continue
		}
		c := &out[i]
		c.Metrics.Scores[*r.MetricKey] = *r.Score
		if r.PreviousScore != nil {
			if c.Metrics.PreviousScores == nil {
				c.Metrics.PreviousScores = map[string]float64{}
			}
			c.Metrics.PreviousScores[*r.MetricKey] = *r.PreviousScore
		}
	}
	return out
}
