// Package sqlite implements the mart repository on modernc.org/sqlite.
// CGO-free, so a file or in-memory mart works anywhere the binary runs;
// it is also the backend the repository tests use.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"salesmart/internal/storage"
)

// insertBatch bounds the multi-row VALUES size so the statement stays
// under SQLite's variable limit.
const insertBatch = 200

type Repo struct {
	db *sql.DB
}

func init() {
	storage.Register("sqlite", New)
}

func New(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
	db, err := sql.Open("sqlite", cfg.DSN)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Repo{db: db}, nil
}

func (r *Repo) Close() { _ = r.db.Close() }

func (r *Repo) EnsureSchema(ctx context.Context, tables []storage.TableSpec) error {
	for _, t := range tables {
		ddl, err := buildCreateTableSQL(t)
		if err != nil {
			return err
		}
		if _, err := r.db.ExecContext(ctx, ddl); err != nil {
			return fmt.Errorf("create table %s: %w", t.Name, err)
		}
	}
	return nil
}

// ClearRows deletes every row in the table. Under PRAGMA foreign_keys=ON
// the delete fails while another table still references these rows, so
// callers clear the fact table before its dimensions.
func (r *Repo) ClearRows(ctx context.Context, table string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM "+sqlIdent(table)); err != nil {
		return fmt.Errorf("clear table %s: %w", table, err)
	}
	return nil
}

// InsertRows inserts rows in one transaction, in batches of insertBatch.
func (r *Repo) InsertRows(ctx context.Context, table string, columns []string, rows [][]any) (int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	colList := make([]string, len(columns))
	for i, c := range columns {
		colList[i] = sqlIdent(c)
	}
	placeholders := "(" + strings.TrimRight(strings.Repeat("?,", len(columns)), ",") + ")"
	prefix := fmt.Sprintf("INSERT INTO %s (%s) VALUES ", sqlIdent(table), strings.Join(colList, ", "))

	var written int64
	for start := 0; start < len(rows); start += insertBatch {
		end := start + insertBatch
		if end > len(rows) {
			end = len(rows)
		}
		batch := rows[start:end]

		var b strings.Builder
		b.WriteString(prefix)
		args := make([]any, 0, len(batch)*len(columns))
		for i, row := range batch {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(placeholders)
			for _, v := range row {
				args = append(args, normalizeValue(v))
			}
		}
		res, err := tx.ExecContext(ctx, b.String(), args...)
		if err != nil {
			return written, fmt.Errorf("insert into %s: %w", table, err)
		}
		n, _ := res.RowsAffected()
		written += n
	}

	if err := tx.Commit(); err != nil {
		return written, err
	}
	return written, nil
}

// normalizeValue converts values the driver has no mapping for. Dates are
// stored as ISO text; SQLite has no native date type anyway.
func normalizeValue(v any) any {
	switch t := v.(type) {
	case time.Time:
		return t.UTC().Format("2006-01-02")
	case bool:
		if t {
			return 1
		}
		return 0
	}
	return v
}

func buildCreateTableSQL(t storage.TableSpec) (string, error) {
	if strings.TrimSpace(t.Name) == "" {
		return "", fmt.Errorf("table name is empty")
	}

	var parts []string
	for _, c := range t.Columns {
		col := fmt.Sprintf("%s %s", sqlIdent(c.Name), sqliteType(c.Type))
		if !c.Nullable {
			col += " NOT NULL"
		}
		// Enforcement depends on PRAGMA foreign_keys=ON; the clause still
		// documents the edge.
		if c.References != "" {
			col += " REFERENCES " + c.References
		}
		if c.Name == t.PrimaryKey {
			col += " PRIMARY KEY"
		}
		parts = append(parts, col)
	}

	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n  %s\n);", sqlIdent(t.Name), strings.Join(parts, ",\n  ")), nil
}

func sqliteType(generic string) string {
	switch generic {
	case storage.TypeInt, storage.TypeBigInt, storage.TypeBool:
		return "INTEGER"
	case storage.TypeDouble:
		return "REAL"
	default:
		// text and date both get TEXT affinity
		return "TEXT"
	}
}

func sqlIdent(id string) string {
	return `"` + strings.ReplaceAll(id, `"`, `""`) + `"`
}
