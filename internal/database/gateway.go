package database

import (
	"context"
	"database/sql/driver"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

// ExecUpdate runs a statement that returns no rows and reports how many
// rows it touched.
func ExecUpdate(ctx context.Context, db DBTX, sql string, args ...any) (int64, error) {
	tag, err := db.Exec(ctx, sql, args...)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// QueryCount runs a query and returns the number of rows it produced.
func QueryCount(ctx context.Context, db DBTX, sql string, args ...any) (int, error) {
	rows, err := db.Query(ctx, sql, args...)
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	n := 0
	for rows.Next() {
		n++
	}
	return n, rows.Err()
}

// QueryRows returns the column names and every row formatted as trimmed
// strings. NULL becomes the empty string.
func QueryRows(ctx context.Context, db DBTX, sql string, args ...any) ([]string, [][]string, error) {
	rows, err := db.Query(ctx, sql, args...)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	cols := make([]string, len(fields))
	for i, f := range fields {
		cols[i] = f.Name
	}

	var out [][]string
	for rows.Next() {
		vals, err := rows.Values()
		if err != nil {
			return nil, nil, err
		}
		rec := make([]string, len(vals))
		for i, v := range vals {
			rec[i] = formatValue(v)
		}
		out = append(out, rec)
	}
	return cols, out, rows.Err()
}

// QueryPrint writes a header line followed by tab separated rows to w and
// returns the number of rows written.
func QueryPrint(ctx context.Context, db DBTX, w io.Writer, sql string, args ...any) (int, error) {
	cols, rows, err := QueryRows(ctx, db, sql, args...)
	if err != nil {
		return 0, err
	}
	if err := writeTable(w, cols, rows); err != nil {
		return 0, err
	}
	return len(rows), nil
}

func writeTable(w io.Writer, cols []string, rows [][]string) error {
	if _, err := fmt.Fprintln(w, strings.Join(cols, "\t")); err != nil {
		return err
	}
	for _, r := range rows {
		if _, err := fmt.Fprintln(w, strings.Join(r, "\t")); err != nil {
			return err
		}
	}
	return nil
}

func formatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(x)
	case []byte:
		return strings.TrimSpace(string(x))
	case time.Time:
		return x.Format("2006-01-02 15:04:05")
	case pgtype.Numeric:
		if !x.Valid || x.Int == nil {
			return ""
		}
		d := decimal.NewFromBigInt(x.Int, x.Exp)
		if x.Exp < 0 {
			return d.StringFixed(-x.Exp)
		}
		return d.String()
	case driver.Valuer:
		dv, err := x.Value()
		if err != nil {
			return ""
		}
		return formatValue(dv)
	case fmt.Stringer:
		return strings.TrimSpace(x.String())
	default:
		return fmt.Sprint(x)
	}
}
