// Package store is the PostgreSQL record store for insights.
//
// Only Save surfaces failures to the caller. Every other operation logs the
// error and reports a zero count, an empty listing or false.
package store

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/m3rciful/insightbot/core/logger"
	"github.com/m3rciful/insightbot/insights/domain"
)

const component = "service.insights"

// Postgres implements the insight store on a sqlx handle.
type Postgres struct {
	db *sqlx.DB
}

// NewPostgres wraps an open connection pool.
func NewPostgres(db *sqlx.DB) *Postgres {
	return &Postgres{db: db}
}

type groupRow struct {
	Value string `db:"value"`
	Count int    `db:"count"`
}

// Save validates and inserts a draft owned by ownerID.
func (p *Postgres) Save(ctx context.Context, d domain.Draft, ownerID int64) (domain.Insight, error) {
	if err := d.Validate(); err != nil {
		return domain.Insight{}, err
	}
	start := time.Now()
	rec := d.Insight(ownerID)
	var out domain.Insight
	err := p.db.QueryRowxContext(ctx, insertQuery,
		rec.Theme, rec.Description, rec.MacroRegion, rec.Industry,
		rec.AttachmentRef, rec.AttachmentFilename, rec.OwnerID,
	).StructScan(&out)
	if err != nil {
		logger.Error(ctx, component, "insight.save",
			slog.String("status", "fail"),
			slog.String("err", err.Error()),
		)
		return domain.Insight{}, &domain.StoreError{Op: "save", Err: err}
	}
	logger.Info(ctx, component, "insight.save",
		slog.String("status", "ok"),
		slog.Int64("insight_id", out.ID),
		slog.String("region", out.MacroRegion),
		slog.String("industry", out.Industry),
		slog.Duration("duration", time.Since(start)),
	)
	return out, nil
}

// CountByField counts records where field equals value.
func (p *Postgres) CountByField(ctx context.Context, field Field, value any) int {
	q, args, err := countQuery(cond{field, value})
	return p.count(ctx, "count.field", q, args, err)
}

// CountByTwoFields counts records matching both equalities.
func (p *Postgres) CountByTwoFields(ctx context.Context, fieldA Field, valueA any, fieldB Field, valueB any) int {
	q, args, err := countQuery(cond{fieldA, valueA}, cond{fieldB, valueB})
	return p.count(ctx, "count.two_fields", q, args, err)
}

// Total counts every record.
func (p *Postgres) Total(ctx context.Context) int {
	q, args, err := countQuery()
	return p.count(ctx, "count.total", q, args, err)
}

func (p *Postgres) count(ctx context.Context, op, q string, args []any, err error) int {
	if err != nil {
		p.readFailed(ctx, op, err)
		return 0
	}
	var n int
	if err := p.db.GetContext(ctx, &n, q, args...); err != nil {
		p.readFailed(ctx, op, err)
		return 0
	}
	return n
}

// CountByRegion returns per-region counts in one grouped query.
// Regions without records are present with zero.
func (p *Postgres) CountByRegion(ctx context.Context) map[string]int {
	q, args, err := groupCountQuery(FieldRegion)
	return p.groupCount(ctx, "count.by_region", domain.Regions, q, args, err)
}

// CountByIndustry returns per-industry counts, scoped to region when it is set.
func (p *Postgres) CountByIndustry(ctx context.Context, region string) map[string]int {
	var conds []cond
	if region != "" {
		conds = append(conds, cond{FieldRegion, region})
	}
	q, args, err := groupCountQuery(FieldIndustry, conds...)
	return p.groupCount(ctx, "count.by_industry", domain.Industries, q, args, err)
}

func (p *Postgres) groupCount(ctx context.Context, op string, keys []string, q string, args []any, err error) map[string]int {
	out := make(map[string]int, len(keys))
	for _, k := range keys {
		out[k] = 0
	}
	if err != nil {
		p.readFailed(ctx, op, err)
		return out
	}
	var rows []groupRow
	if err := p.db.SelectContext(ctx, &rows, q, args...); err != nil {
		p.readFailed(ctx, op, err)
		return out
	}
	for _, r := range rows {
		out[r.Value] = r.Count
	}
	return out
}

// ListAll returns every record, newest first.
func (p *Postgres) ListAll(ctx context.Context) []domain.Insight {
	q, args, err := selectQuery()
	return p.list(ctx, "list.all", q, args, err)
}

// ListFiltered returns records matching every set filter field, newest first.
func (p *Postgres) ListFiltered(ctx context.Context, f domain.Filter) []domain.Insight {
	q, args, err := selectQuery(filterConds(f)...)
	return p.list(ctx, "list.filtered", q, args, err)
}

// ListByOwner returns the records created by ownerID, newest first.
func (p *Postgres) ListByOwner(ctx context.Context, ownerID int64) []domain.Insight {
	q, args, err := selectQuery(cond{FieldOwner, ownerID})
	return p.list(ctx, "list.owner", q, args, err)
}

func (p *Postgres) list(ctx context.Context, op, q string, args []any, err error) []domain.Insight {
	if err != nil {
		p.readFailed(ctx, op, err)
		return nil
	}
	start := time.Now()
	var out []domain.Insight
	if err := p.db.SelectContext(ctx, &out, q, args...); err != nil {
		p.readFailed(ctx, op, err)
		return nil
	}
	logger.Debug(ctx, component, "insight."+op,
		slog.String("status", "ok"),
		slog.Int("count", len(out)),
		slog.Duration("duration", time.Since(start)),
	)
	return out
}

// GetByID loads one record. The bool is false when it does not exist or the read failed.
func (p *Postgres) GetByID(ctx context.Context, id int64) (domain.Insight, bool) {
	var out domain.Insight
	q, args, err := selectQuery(cond{fieldID, id})
	if err == nil {
		err = p.db.GetContext(ctx, &out, q, args...)
	}
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Insight{}, false
	}
	if err != nil {
		p.readFailed(ctx, "get", err)
		return domain.Insight{}, false
	}
	return out, true
}

// DeleteOwned removes record id only when it belongs to ownerID.
// It reports whether a row was deleted; failures are logged and report false.
func (p *Postgres) DeleteOwned(ctx context.Context, id, ownerID int64) bool {
	q, args, err := deleteQuery(cond{fieldID, id}, cond{FieldOwner, ownerID})
	if err != nil {
		p.readFailed(ctx, "delete", err)
		return false
	}
	res, err := p.db.ExecContext(ctx, q, args...)
	if err != nil {
		p.readFailed(ctx, "delete", err)
		return false
	}
	n, err := res.RowsAffected()
	if err != nil {
		p.readFailed(ctx, "delete", err)
		return false
	}
	logger.Info(ctx, component, "insight.delete",
		slog.String("status", "ok"),
		slog.Int64("insight_id", id),
		slog.Bool("deleted", n > 0),
	)
	return n > 0
}

func (p *Postgres) readFailed(ctx context.Context, op string, err error) {
	logger.Warn(ctx, component, "insight."+op,
		slog.String("status", "fail"),
		slog.String("err", err.Error()),
	)
}
