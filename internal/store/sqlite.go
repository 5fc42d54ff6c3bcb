package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/reportstack/consolidator/internal/core"
	_ "modernc.org/sqlite"
)

// SQLite is a store backend over a local SQLite database. Each worksheet
// is one SQL table with every column declared TEXT; Write drops and
// recreates the table inside a transaction, which is the closest SQLite
// gets to the replace-the-whole-worksheet contract.
type SQLite struct {
	db         *sql.DB
	retryAfter time.Duration
}

// OpenSQLite opens (creating if needed) the database at path.
func OpenSQLite(path string, retryAfter time.Duration) (*SQLite, error) {
	if retryAfter <= 0 {
		retryAfter = DefaultRetryAfter
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %q: %w", path, err)
	}
	// The whole-table write pattern is single-writer anyway.
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite %q: %w", path, err)
	}
	return &SQLite{db: db, retryAfter: retryAfter}, nil
}

// Close releases the underlying database handle.
func (s *SQLite) Close() error { return s.db.Close() }

// Read returns the full contents of the worksheet's table. A table that
// does not exist yet reads as an empty worksheet.
func (s *SQLite) Read(ctx context.Context, worksheet string) (core.Table, error) {
	var name string
	err := s.db.QueryRowContext(ctx,
		`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, worksheet).Scan(&name)
	if err == sql.ErrNoRows {
		return core.Table{}, nil
	}
	if err != nil {
		return core.Table{}, unavailable("read", worksheet, s.retryAfter, err)
	}

	columns, err := s.tableColumns(ctx, worksheet)
	if err != nil {
		return core.Table{}, unavailable("read", worksheet, s.retryAfter, err)
	}
	if len(columns) == 0 {
		return core.Table{}, nil
	}

	quoted := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = quoteIdent(c)
	}
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(
		`SELECT %s FROM %s ORDER BY rowid`, strings.Join(quoted, ", "), quoteIdent(worksheet)))
	if err != nil {
		return core.Table{}, unavailable("read", worksheet, s.retryAfter, err)
	}
	defer rows.Close()

	t := core.Table{Columns: columns}
	for rows.Next() {
		cells := make([]sql.NullString, len(columns))
		dest := make([]any, len(columns))
		for i := range cells {
			dest[i] = &cells[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return core.Table{}, unavailable("read", worksheet, s.retryAfter, err)
		}
		row := make([]string, len(columns))
		for i, c := range cells {
			if c.Valid {
				row[i] = c.String
			}
		}
		t.Rows = append(t.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return core.Table{}, unavailable("read", worksheet, s.retryAfter, err)
	}
	return t, nil
}

// Write replaces the worksheet's table with t. Writing a table with no
// columns drops the worksheet entirely.
func (s *SQLite) Write(ctx context.Context, worksheet string, t core.Table) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return unavailable("write", worksheet, s.retryAfter, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, fmt.Sprintf(`DROP TABLE IF EXISTS %s`, quoteIdent(worksheet))); err != nil {
		return unavailable("write", worksheet, s.retryAfter, err)
	}

	if len(t.Columns) > 0 {
		defs := make([]string, len(t.Columns))
		for i, c := range t.Columns {
			defs[i] = quoteIdent(c) + " TEXT"
		}
		create := fmt.Sprintf(`CREATE TABLE %s (%s)`, quoteIdent(worksheet), strings.Join(defs, ", "))
		if _, err := tx.ExecContext(ctx, create); err != nil {
			return unavailable("write", worksheet, s.retryAfter, err)
		}

		placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(t.Columns)), ", ")
		insert := fmt.Sprintf(`INSERT INTO %s VALUES (%s)`, quoteIdent(worksheet), placeholders)
		stmt, err := tx.PrepareContext(ctx, insert)
		if err != nil {
			return unavailable("write", worksheet, s.retryAfter, err)
		}
		defer stmt.Close()

		args := make([]any, len(t.Columns))
		for _, row := range t.Rows {
			for i := range t.Columns {
				if i < len(row) {
					args[i] = row[i]
				} else {
					args[i] = ""
				}
			}
			if _, err := stmt.ExecContext(ctx, args...); err != nil {
				return unavailable("write", worksheet, s.retryAfter, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return unavailable("write", worksheet, s.retryAfter, err)
	}
	return nil
}

func (s *SQLite) tableColumns(ctx context.Context, worksheet string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`PRAGMA table_info(%s)`, quoteIdent(worksheet)))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var columns []string
	for rows.Next() {
		var (
			cid       int
			name, typ string
			notNull   int
			dflt      sql.NullString
			pk        int
		)
		if err := rows.Scan(&cid, &name, &typ, &notNull, &dflt, &pk); err != nil {
			return nil, err
		}
		columns = append(columns, name)
	}
	return columns, rows.Err()
}

// quoteIdent double-quotes an identifier, doubling embedded quotes.
// Column names come from user-uploaded headers, so this is mandatory.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
