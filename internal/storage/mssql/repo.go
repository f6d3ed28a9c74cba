// Package mssql implements the mart repository on the go-mssqldb driver
// via database/sql.
package mssql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/microsoft/go-mssqldb"

	"salesmart/internal/storage"
)

// SQL Server caps parameters at 2100 per statement; keep batches well
// under that for the widest table.
const maxParams = 2000

type Repo struct {
	db *sql.DB
}

func init() {
	storage.Register("mssql", New)
}

func New(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
	db, err := sql.Open("sqlserver", cfg.DSN)
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

// ClearRows deletes every row in the table. SQL Server always enforces
// the REFERENCES clauses, so callers clear the fact table before its
// dimensions.
func (r *Repo) ClearRows(ctx context.Context, table string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM "+sqlIdent(table)); err != nil {
		return fmt.Errorf("clear table %s: %w", table, err)
	}
	return nil
}

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
	batch := maxParams / len(columns)

	var written int64
	for start := 0; start < len(rows); start += batch {
		end := start + batch
		if end > len(rows) {
			end = len(rows)
		}

		var b strings.Builder
		fmt.Fprintf(&b, "INSERT INTO %s (%s) VALUES ", sqlIdent(table), strings.Join(colList, ", "))
		args := make([]any, 0, (end-start)*len(columns))
		for i, row := range rows[start:end] {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString("(")
			for j, v := range row {
				if j > 0 {
					b.WriteString(", ")
				}
				fmt.Fprintf(&b, "@p%d", len(args)+1)
				args = append(args, normalizeValue(v))
			}
			b.WriteString(")")
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

func normalizeValue(v any) any {
	if t, ok := v.(time.Time); ok {
		return t.UTC()
	}
	return v
}

func buildCreateTableSQL(t storage.TableSpec) (string, error) {
	if strings.TrimSpace(t.Name) == "" {
		return "", fmt.Errorf("table name is empty")
	}

	var parts []string
	for _, c := range t.Columns {
		col := fmt.Sprintf("%s %s", sqlIdent(c.Name), mssqlType(c.Type))
		if !c.Nullable {
			col += " NOT NULL"
		}
		if c.References != "" {
			col += " REFERENCES " + c.References
		}
		parts = append(parts, col)
	}
	if t.PrimaryKey != "" {
		parts = append(parts, fmt.Sprintf("PRIMARY KEY (%s)", sqlIdent(t.PrimaryKey)))
	}

	// IF NOT EXISTS guard: SQL Server has no CREATE TABLE IF NOT EXISTS.
	return fmt.Sprintf(
		"IF OBJECT_ID(N'%s', N'U') IS NULL CREATE TABLE %s (\n  %s\n);",
		t.Name, sqlIdent(t.Name), strings.Join(parts, ",\n  "),
	), nil
}

func mssqlType(generic string) string {
	switch generic {
	case storage.TypeInt:
		return "INT"
	case storage.TypeBigInt:
		return "BIGINT"
	case storage.TypeDouble:
		return "FLOAT"
	case storage.TypeBool:
		return "BIT"
	case storage.TypeDate:
		return "DATE"
	default:
		return "NVARCHAR(400)"
	}
}

func sqlIdent(id string) string {
	return "[" + strings.ReplaceAll(id, "]", "]]") + "]"
}
