package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
)

// ErrNotExist is returned when a lookup matches no row.
var ErrNotExist = errors.New("record does not exist")

// Condition is a conjunction of column equality tests. Slice values test membership.
type Condition map[string]any

// Row is a single result row keyed by column name.
type Row map[string]any

var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_-]*$`)

func quoteIdent(name string) (string, error) {
	if !identPattern.MatchString(name) {
		return "", fmt.Errorf("invalid identifier %q", name)
	}
	return `"` + name + `"`, nil
}

func (c Condition) where() (string, []any, error) {
	if len(c) == 0 {
		return "", nil, nil
	}

	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	args := make([]any, 0, len(keys))
	for _, k := range keys {
		col, err := quoteIdent(k)
		if err != nil {
			return "", nil, err
		}
		v := c[k]
		rv := reflect.ValueOf(v)
		if v != nil && rv.Kind() == reflect.Slice && rv.Type().Elem().Kind() != reflect.Uint8 {
			if rv.Len() == 0 {
				parts = append(parts, "0")
				continue
			}
			parts = append(parts, col+" IN (?)")
		} else if v == nil {
			parts = append(parts, col+" IS NULL")
			continue
		} else {
			parts = append(parts, col+" = ?")
		}
		args = append(args, v)
	}
	return " WHERE " + strings.Join(parts, " AND "), args, nil
}

func (db *DB) buildQuery(prefix, table string, cond Condition, suffix string) (string, []any, error) {
	tbl, err := quoteIdent(table)
	if err != nil {
		return "", nil, err
	}
	where, args, err := cond.where()
	if err != nil {
		return "", nil, err
	}
	query, args, err := sqlx.In(prefix+" FROM "+tbl+where+suffix, args...)
	if err != nil {
		return "", nil, err
	}
	return db.Rebind(query), args, nil
}

// SelectFirst returns the requested columns of the first row of table matching cond.
// An empty column list selects every column.
func (db *DB) SelectFirst(ctx context.Context, table string, columns []string, cond Condition) (Row, error) {
	fields := "*"
	if len(columns) > 0 {
		quoted := make([]string, len(columns))
		for i, c := range columns {
			q, err := quoteIdent(c)
			if err != nil {
				return nil, err
			}
			quoted[i] = q
		}
		fields = strings.Join(quoted, ", ")
	}

	query, args, err := db.buildQuery("SELECT "+fields, table, cond, " LIMIT 1")
	if err != nil {
		return nil, fmt.Errorf("select from %s: %w", table, err)
	}

	row := Row{}
	if err := db.QueryRowxContext(ctx, query, args...).MapScan(row); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotExist
		}
		return nil, fmt.Errorf("select from %s: %w", table, err)
	}
	return row, nil
}

// Count returns the number of rows of table matching cond.
func (db *DB) Count(ctx context.Context, table string, cond Condition) (int64, error) {
	query, args, err := db.buildQuery("SELECT COUNT(*)", table, cond, "")
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", table, err)
	}
	var n int64
	if err := db.GetContext(ctx, &n, query, args...); err != nil {
		return 0, fmt.Errorf("count %s: %w", table, err)
	}
	return n, nil
}

func (r Row) Int64(col string) int64 {
	switch v := r[col].(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case float64:
		return int64(v)
	case bool:
		if v {
			return 1
		}
	case []byte:
		n, _ := strconv.ParseInt(string(v), 10, 64)
		return n
	case string:
		n, _ := strconv.ParseInt(v, 10, 64)
		return n
	}
	return 0
}

func (r Row) String(col string) string {
	switch v := r[col].(type) {
	case string:
		return v
	case []byte:
		return string(v)
	case nil:
		return ""
	case time.Time:
		return sqlTime(v)
	default:
		return fmt.Sprint(v)
	}
}

func (r Row) Bool(col string) bool {
	return r.Int64(col) != 0
}
