package parser

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"strconv"
	"time"

	// Database drivers for SQLSource.
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"github.com/ccollicutt/shiftguard/pkg/record"
)

// SQLTimeLayout renders time-typed columns so the default timestamp layouts
// can read them back.
const SQLTimeLayout = "2006-01-02 15:04:05"

// driverAliases maps configured driver names to registered database/sql drivers.
var driverAliases = map[string]string{
	"sqlite":     "sqlite",
	"sqlite3":    "sqlite",
	"pgx":        "pgx",
	"postgres":   "pgx",
	"postgresql": "pgx",
}

// SupportedDriver reports whether name is a usable driver name.
func SupportedDriver(name string) bool {
	_, ok := driverAliases[name]
	return ok
}

// SQLSource implements RowSource over the result set of a SQL query. Column
// names (or aliases) in the result play the role of header names.
type SQLSource struct {
	db     *sql.DB
	query  string
	name   string
	rows   *sql.Rows
	cols   []string
	rowNum int
}

// NewSQLSource opens a database handle. The query runs on the first call to Next.
func NewSQLSource(driver, dsn, query string) (*SQLSource, error) {
	registered, ok := driverAliases[driver]
	if !ok {
		return nil, fmt.Errorf("unsupported database driver %q (use sqlite or pgx)", driver)
	}

	db, err := sql.Open(registered, dsn)
	if err != nil {
		return nil, fmt.Errorf("opening %s database: %w", driver, err)
	}

	return &SQLSource{
		db:    db,
		query: query,
		name:  registered + ":query",
	}, nil
}

// Next returns the next result row.
// Returns io.EOF when the result set is exhausted.
func (s *SQLSource) Next(ctx context.Context) (*record.Row, error) {
	if s.rows == nil {
		rows, err := s.db.QueryContext(ctx, s.query)
		if err != nil {
			return nil, fmt.Errorf("querying shifts: %w", err)
		}
		cols, err := rows.Columns()
		if err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("reading result columns: %w", err)
		}
		s.rows = rows
		s.cols = cols
	}

	if !s.rows.Next() {
		if err := s.rows.Err(); err != nil {
			return nil, fmt.Errorf("reading shifts: %w", err)
		}
		return nil, io.EOF
	}
	s.rowNum++

	values := make([]any, len(s.cols))
	ptrs := make([]any, len(s.cols))
	for i := range values {
		ptrs[i] = &values[i]
	}
	if err := s.rows.Scan(ptrs...); err != nil {
		return nil, fmt.Errorf("scanning row %d: %w", s.rowNum, err)
	}

	cells := make([]string, len(values))
	for i, v := range values {
		cells[i] = formatSQLValue(v)
	}

	return &record.Row{
		Header:  s.cols,
		Fields:  zipRow(s.cols, cells),
		Source:  s.name,
		LineNum: s.rowNum,
	}, nil
}

// Close releases the result set and the database handle.
func (s *SQLSource) Close() error {
	if s.rows != nil {
		_ = s.rows.Close()
		s.rows = nil
	}
	return s.db.Close()
}

func formatSQLValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []byte:
		return string(t)
	case time.Time:
		return t.Format(SQLTimeLayout)
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprint(t)
	}
}
