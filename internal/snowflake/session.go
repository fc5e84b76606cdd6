// Package snowflake owns the live warehouse session and the catalog
// queries issued against it.
package snowflake

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/snowflakedb/gosnowflake"
	"go.uber.org/zap"

	"github.com/snowmapper/snowmapper/internal/config"
)

// DefaultFallbackWarehouse is activated when the configured warehouse is not
// in the account's warehouse list.
const DefaultFallbackWarehouse = "COMPUTE_WH"

const (
	driverName     = "snowflake"
	connectTimeout = 30 * time.Second
)

// Session owns a single lazily established connection to Snowflake. It is
// created once by the orchestrating command and passed by reference to the
// catalog reader; it is not safe for concurrent use.
type Session struct {
	cfg      *config.Config
	fallback string
	log      *zap.Logger

	db *sql.DB
}

// NewSession returns an unconnected session. fallbackWarehouse is activated
// by SetWarehouse when the configured warehouse does not exist.
func NewSession(cfg *config.Config, fallbackWarehouse string, log *zap.Logger) *Session {
	if fallbackWarehouse == "" {
		fallbackWarehouse = DefaultFallbackWarehouse
	}
	return &Session{cfg: cfg, fallback: fallbackWarehouse, log: log}
}

// Connect establishes the underlying session and activates the configured
// warehouse and role. It is idempotent: a second call on a connected session
// is a no-op. On failure the session is left unset so a later call starts
// from scratch.
func (s *Session) Connect(ctx context.Context) error {
	if s.db != nil {
		return nil
	}

	dsn, err := gosnowflake.DSN(&gosnowflake.Config{
		Account:        s.cfg.Account,
		User:           s.cfg.Username,
		Password:       s.cfg.Password,
		Warehouse:      s.cfg.Warehouse,
		Database:       s.cfg.Database,
		Role:           s.cfg.Role,
		LoginTimeout:   connectTimeout,
		RequestTimeout: connectTimeout,
	})
	if err != nil {
		return &ConnectionError{Msg: "building DSN", Err: err}
	}

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return &ConnectionError{Msg: "opening connection", Err: err}
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return &ConnectionError{Msg: "establishing session", Err: err}
	}
	s.db = db

	if err := s.SetWarehouse(ctx, s.cfg.Warehouse); err != nil {
		s.reset()
		return err
	}
	if s.cfg.Role != "" {
		if err := s.SetRole(ctx, s.cfg.Role); err != nil {
			s.reset()
			return err
		}
	}
	return nil
}

// Query executes a statement on the active session. intent names what the
// statement does and is carried into any QueryError.
func (s *Session) Query(ctx context.Context, intent, query string) (*sql.Rows, error) {
	if s.db == nil {
		return nil, &ConnectionError{Msg: "not connected to Snowflake", Err: sql.ErrConnDone}
	}
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, &QueryError{Intent: intent, Err: err}
	}
	return rows, nil
}

// SetWarehouse activates the requested warehouse for the session. The
// warehouse list is fetched first; when the requested name is absent
// (case-insensitive), the fallback warehouse is activated instead of
// failing, so a run can proceed on a misconfigured warehouse name.
func (s *Session) SetWarehouse(ctx context.Context, requested string) error {
	s.log.Info("setting warehouse", zap.String("warehouse", requested))

	warehouses, err := listWarehouses(ctx, s)
	if err != nil {
		return err
	}
	names := make([]string, 0, len(warehouses))
	found := false
	for _, w := range warehouses {
		names = append(names, w.Name)
		if strings.EqualFold(w.Name, requested) {
			found = true
		}
	}
	s.log.Info("available warehouses", zap.Strings("warehouses", names))

	target := requested
	if !found {
		s.log.Warn("warehouse not found, using fallback",
			zap.String("requested", requested),
			zap.String("fallback", s.fallback))
		target = s.fallback
	}

	if err := s.exec(ctx, "set warehouse", fmt.Sprintf(`USE WAREHOUSE %s`, quoteIdentifier(target))); err != nil {
		return err
	}
	s.log.Info("warehouse set", zap.String("warehouse", target))
	return nil
}

// SetRole activates the given role for the session.
func (s *Session) SetRole(ctx context.Context, role string) error {
	s.log.Info("setting role", zap.String("role", role))
	return s.exec(ctx, "set role", fmt.Sprintf(`USE ROLE %s`, quoteIdentifier(role)))
}

// Close releases the underlying connection. Closing an unconnected session
// is a no-op.
func (s *Session) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *Session) exec(ctx context.Context, intent, stmt string) error {
	if s.db == nil {
		return &ConnectionError{Msg: "not connected to Snowflake", Err: sql.ErrConnDone}
	}
	if _, err := s.db.ExecContext(ctx, stmt); err != nil {
		return &QueryError{Intent: intent, Err: err}
	}
	return nil
}

func (s *Session) reset() {
	if s.db != nil {
		s.db.Close()
		s.db = nil
	}
}

// quoteIdentifier wraps a Snowflake identifier in double quotes, escaping
// any embedded quotes.
func quoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
