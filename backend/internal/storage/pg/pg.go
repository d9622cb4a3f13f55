// Package pg keeps the site mode in a one-row PostgreSQL table.
package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mahalaxmi-group/site-api/backend/internal/service"
	"github.com/mahalaxmi-group/site-api/shared/config"
	"github.com/mahalaxmi-group/site-api/shared/domain"
	"github.com/mahalaxmi-group/site-api/shared/logger"

	_ "github.com/lib/pq"
)

const schema = `
CREATE TABLE IF NOT EXISTS site_mode (
    id         SMALLINT PRIMARY KEY DEFAULT 1 CHECK (id = 1),
    mode       TEXT NOT NULL CHECK (mode IN ('group_only', 'full_access')),
    updated_at TIMESTAMPTZ NOT NULL,
    updated_by TEXT NOT NULL
)`

type Storage struct {
	db  *sql.DB
	now func() time.Time
}

var _ service.ModeStore = (*Storage)(nil)

func New(ctx context.Context, cfg *config.Config) (*Storage, error) {
	logger.Log.Info("connecting to postgres", "host", cfg.Private.Pg.Host, "dbname", cfg.Private.Pg.Dbname)
	db, err := Connect(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create site_mode table: %w", err)
	}
	logger.Log.Info("successfully connected to postgres")
	return &Storage{db: db, now: time.Now}, nil
}

func Connect(ctx context.Context, cfg *config.Config) (*sql.DB, error) {
	port := cfg.Private.Pg.Port
	if port == 0 {
		port = 5432
	}
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		cfg.Private.Pg.Host, port, cfg.Private.Pg.User, cfg.Private.Pg.Password, cfg.Private.Pg.Dbname)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(5)
	db.SetConnMaxIdleTime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func (s *Storage) Cleanup() error {
	return s.db.Close()
}

func (s *Storage) Get(ctx context.Context) (domain.SiteModeRecord, error) {
	var rec domain.SiteModeRecord
	err := s.db.QueryRowContext(ctx,
		`SELECT mode, updated_at, updated_by FROM site_mode WHERE id = 1`,
	).Scan(&rec.Mode, &rec.UpdatedAt, &rec.UpdatedBy)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.DefaultSiteMode(), nil
	}
	if err != nil {
		return domain.SiteModeRecord{}, fmt.Errorf("select site mode: %w", err)
	}
	rec.UpdatedAt = rec.UpdatedAt.UTC()
	return rec, nil
}

func (s *Storage) Set(ctx context.Context, mode domain.Mode, actor string) (domain.SiteModeRecord, error) {
	var rec domain.SiteModeRecord
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO site_mode (id, mode, updated_at, updated_by)
		VALUES (1, $1, $2, $3)
		ON CONFLICT (id) DO UPDATE
		SET mode = EXCLUDED.mode, updated_at = EXCLUDED.updated_at, updated_by = EXCLUDED.updated_by
		RETURNING mode, updated_at, updated_by`,
		string(mode), s.now().UTC().Truncate(time.Microsecond), actor,
	).Scan(&rec.Mode, &rec.UpdatedAt, &rec.UpdatedBy)
	if err != nil {
		return domain.SiteModeRecord{}, fmt.Errorf("upsert site mode: %w", err)
	}
	rec.UpdatedAt = rec.UpdatedAt.UTC()
	return rec, nil
}

func (s *Storage) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
