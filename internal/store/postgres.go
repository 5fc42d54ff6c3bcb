package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/reportstack/consolidator/internal/core"
)

// seqColumn is a hidden column persisting row order; Postgres gives no
// ordering guarantee without it. It never appears in read results.
const seqColumn = "_row_seq"

// Postgres is a store backend over a PostgreSQL database. Semantics
// match SQLite's: one all-TEXT table per worksheet, replaced wholesale
// in a single transaction per Write.
type Postgres struct {
	pool       *pgxpool.Pool
	retryAfter time.Duration
}

// OpenPostgres connects to the database at url and verifies the
// connection.
func OpenPostgres(ctx context.Context, url string, retryAfter time.Duration) (*Postgres, error) {
	if retryAfter <= 0 {
		retryAfter = DefaultRetryAfter
	}
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &Postgres{pool: pool, retryAfter: retryAfter}, nil
}

// Close releases the connection pool.
func (p *Postgres) Close() { p.pool.Close() }

// Read returns the full contents of the worksheet's table. A missing
// table reads as an empty worksheet.
func (p *Postgres) Read(ctx context.Context, worksheet string) (core.Table, error) {
	columns, err := p.tableColumns(ctx, worksheet)
	if err != nil {
		return core.Table{}, unavailable("read", worksheet, p.retryAfter, err)
	}
	if len(columns) == 0 {
		return core.Table{}, nil
	}

	quoted := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = pgx.Identifier{c}.Sanitize()
	}
	query := fmt.Sprintf(`SELECT %s FROM %s ORDER BY %s`,
		strings.Join(quoted, ", "),
		pgx.Identifier{worksheet}.Sanitize(),
		pgx.Identifier{seqColumn}.Sanitize())

	rows, err := p.pool.Query(ctx, query)
	if err != nil {
		return core.Table{}, unavailable("read", worksheet, p.retryAfter, err)
	}
	defer rows.Close()

	t := core.Table{Columns: columns}
	for rows.Next() {
		cells := make([]*string, len(columns))
		dest := make([]any, len(columns))
		for i := range cells {
			dest[i] = &cells[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return core.Table{}, unavailable("read", worksheet, p.retryAfter, err)
		}
		row := make([]string, len(columns))
		for i, c := range cells {
			if c != nil {
				row[i] = *c
			}
		}
		t.Rows = append(t.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return core.Table{}, unavailable("read", worksheet, p.retryAfter, err)
	}
	return t, nil
}

// Write replaces the worksheet's table with t. Writing a table with no
// columns drops the worksheet entirely.
func (p *Postgres) Write(ctx context.Context, worksheet string, t core.Table) error {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return unavailable("write", worksheet, p.retryAfter, err)
	}
	defer tx.Rollback(ctx)

	ident := pgx.Identifier{worksheet}.Sanitize()
	if _, err := tx.Exec(ctx, fmt.Sprintf(`DROP TABLE IF EXISTS %s`, ident)); err != nil {
		return unavailable("write", worksheet, p.retryAfter, err)
	}

	if len(t.Columns) > 0 {
		defs := make([]string, 0, len(t.Columns)+1)
		defs = append(defs, pgx.Identifier{seqColumn}.Sanitize()+" BIGINT")
		for _, c := range t.Columns {
			defs = append(defs, pgx.Identifier{c}.Sanitize()+" TEXT")
		}
		create := fmt.Sprintf(`CREATE TABLE %s (%s)`, ident, strings.Join(defs, ", "))
		if _, err := tx.Exec(ctx, create); err != nil {
			return unavailable("write", worksheet, p.retryAfter, err)
		}

		placeholders := make([]string, len(t.Columns)+1)
		for i := range placeholders {
			placeholders[i] = fmt.Sprintf("$%d", i+1)
		}
		insert := fmt.Sprintf(`INSERT INTO %s VALUES (%s)`, ident, strings.Join(placeholders, ", "))
		for seq, row := range t.Rows {
			args := make([]any, len(t.Columns)+1)
			args[0] = int64(seq)
			for i := range t.Columns {
				if i < len(row) {
					args[i+1] = row[i]
				} else {
					args[i+1] = ""
				}
			}
			if _, err := tx.Exec(ctx, insert, args...); err != nil {
				return unavailable("write", worksheet, p.retryAfter, err)
			}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return unavailable("write", worksheet, p.retryAfter, err)
	}
	return nil
}

// tableColumns returns the worksheet's column names in creation order,
// excluding the hidden sequence column. A missing table yields nil.
func (p *Postgres) tableColumns(ctx context.Context, worksheet string) ([]string, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT column_name FROM information_schema.columns
		 WHERE table_schema = 'public' AND table_name = $1
		 ORDER BY ordinal_position`, worksheet)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var columns []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		if name == seqColumn {
			continue
		}
		columns = append(columns, name)
	}
	return columns, rows.Err()
}
