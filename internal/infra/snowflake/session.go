package snowflake

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	sf "github.com/snowflakedb/gosnowflake"

	"github.com/finops-dwh/o2c/internal/config"
	"github.com/finops-dwh/o2c/internal/logger"
	"github.com/finops-dwh/o2c/internal/warehouse"
)

// Session is an authenticated warehouse connection.
type Session struct {
	db   *sqlx.DB
	cfg  config.WarehouseConfig
	user string
}

var _ warehouse.Conn = (*Session)(nil)

func newSession(db *sqlx.DB, cfg config.WarehouseConfig, user string) *Session {
	return &Session{db: db, cfg: cfg, user: user}
}

// User returns the identity the session authenticated as.
func (s *Session) User() string {
	return s.user
}

// SetContext activates the configured warehouse, database and schema on the
// session, then confirms what the server actually selected. An inaccessible
// warehouse is reported together with the warehouses the role can see.
func (s *Session) SetContext(ctx context.Context) error {
	log := logger.FromContext(ctx)

	if err := s.Exec(ctx, "USE WAREHOUSE "+s.cfg.Warehouse); err != nil {
		names, listErr := s.listWarehouses(ctx)
		if listErr != nil {
			return fmt.Errorf("Session.SetContext: %w: %q rejected and listing alternatives failed: %v", ErrInvalidWarehouse, s.cfg.Warehouse, listErr)
		}
		log.Error().Str("warehouse", s.cfg.Warehouse).Strs("available", names).Msg("Warehouse not accessible for this role")
		return fmt.Errorf("Session.SetContext: %w: %q not available, role can use %v", ErrInvalidWarehouse, s.cfg.Warehouse, names)
	}
	if err := s.Exec(ctx, "USE DATABASE "+s.cfg.Database); err != nil {
		return fmt.Errorf("Session.SetContext: use database %s: %w", s.cfg.Database, err)
	}
	if err := s.Exec(ctx, "USE SCHEMA "+s.cfg.Schema); err != nil {
		return fmt.Errorf("Session.SetContext: use schema %s: %w", s.cfg.Schema, err)
	}

	rs, err := s.Query(ctx, "SELECT CURRENT_WAREHOUSE(), CURRENT_DATABASE(), CURRENT_SCHEMA()")
	if err != nil {
		return fmt.Errorf("Session.SetContext: confirming context: %w", err)
	}
	if rs.Len() > 0 && len(rs.Rows[0]) >= 3 {
		row := rs.Rows[0]
		log.Info().
			Str("warehouse", asString(row[0])).
			Str("database", asString(row[1])).
			Str("schema", asString(row[2])).
			Msg("Warehouse context active")
	}
	return nil
}

// Query runs one statement and materializes the full result with normalized
// column names.
func (s *Session) Query(ctx context.Context, query string) (*warehouse.Rowset, error) {
	rows, err := s.db.QueryxContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("Session.Query: executing statement: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("Session.Query: reading columns: %w", err)
	}

	rs := &warehouse.Rowset{Columns: warehouse.NormalizeColumns(cols)}
	for rows.Next() {
		vals, err := rows.SliceScan()
		if err != nil {
			return nil, fmt.Errorf("Session.Query: scanning row %d: %w", rs.Len(), err)
		}
		rs.Rows = append(rs.Rows, vals)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("Session.Query: iterating rows: %w", err)
	}
	return rs, nil
}

// Exec runs one statement and discards any result.
func (s *Session) Exec(ctx context.Context, query string) error {
	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("Session.Exec: %w", err)
	}
	return nil
}

// BulkInsert appends values to a single-column table in one array-bound
// statement, the driver-side equivalent of an executemany.
func (s *Session) BulkInsert(ctx context.Context, table, column string, values []string) error {
	if len(values) == 0 {
		return nil
	}
	stmt := fmt.Sprintf("INSERT INTO %s (%s) VALUES (?)", table, column)
	if _, err := s.db.ExecContext(ctx, stmt, sf.Array(values)); err != nil {
		return fmt.Errorf("Session.BulkInsert: inserting %d values into %s: %w", len(values), table, err)
	}
	return nil
}

// Close releases the underlying connection pool.
func (s *Session) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// SessionDetails is the identity and context tuple reported by the server.
type SessionDetails struct {
	User      string
	Account   string
	Role      string
	Warehouse string
	Database  string
	Schema    string
}

// Describe asks the server who the session is and what context is active.
func (s *Session) Describe(ctx context.Context) (*SessionDetails, error) {
	rs, err := s.Query(ctx, "SELECT CURRENT_USER(), CURRENT_ACCOUNT(), CURRENT_ROLE(), CURRENT_WAREHOUSE(), CURRENT_DATABASE(), CURRENT_SCHEMA()")
	if err != nil {
		return nil, fmt.Errorf("Session.Describe: %w", err)
	}
	if rs.Len() == 0 || len(rs.Rows[0]) < 6 {
		return nil, fmt.Errorf("Session.Describe: unexpected result shape (%d rows)", rs.Len())
	}

	row := rs.Rows[0]
	return &SessionDetails{
		User:      asString(row[0]),
		Account:   asString(row[1]),
		Role:      asString(row[2]),
		Warehouse: asString(row[3]),
		Database:  asString(row[4]),
		Schema:    asString(row[5]),
	}, nil
}

// listWarehouses returns the warehouse names visible to the session role.
func (s *Session) listWarehouses(ctx context.Context) ([]string, error) {
	rs, err := s.Query(ctx, "SHOW WAREHOUSES")
	if err != nil {
		return nil, err
	}
	idx, ok := rs.ColumnIndex("name")
	if !ok {
		idx = 0
	}
	names := make([]string, 0, rs.Len())
	for _, row := range rs.Rows {
		if len(row) <= idx {
			continue
		}
		if name := asString(row[idx]); name != "" {
			names = append(names, name)
		}
	}
	return names, nil
}

func asString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []byte:
		return string(t)
	default:
		return fmt.Sprint(t)
	}
}
