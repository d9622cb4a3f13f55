package service

import (
	"context"

	"github.com/mahalaxmi-group/site-api/shared/domain"
	"github.com/mahalaxmi-group/site-api/shared/errors"
	"github.com/mahalaxmi-group/site-api/shared/logger"
)

// adminActor is recorded as the author of every mode change.
const adminActor = "admin"

type SiteModeService interface {
	Get(ctx context.Context) domain.Mode
	Set(ctx context.Context, sess *domain.Session, mode string) (domain.SiteModeRecord, error)
	Ready(ctx context.Context) error
}

type ModeStore interface {
	Get(ctx context.Context) (domain.SiteModeRecord, error)
	Set(ctx context.Context, mode domain.Mode, actor string) (domain.SiteModeRecord, error)
	Ping(ctx context.Context) error
}

type SessionChecker interface {
	CheckSession(sess *domain.Session) bool
}

type SiteMode struct {
	store ModeStore
	auth  SessionChecker
}

func NewSiteMode(store ModeStore, auth SessionChecker) *SiteMode {
	return &SiteMode{store: store, auth: auth}
}

// Get never fails: anything unreadable reads as the default mode.
func (s *SiteMode) Get(ctx context.Context) domain.Mode {
	record, err := s.store.Get(ctx)
	if err != nil {
		logger.Log.Warn("failed to read site mode, using default", "error", err)
		return domain.DefaultMode
	}
	if !record.Mode.Valid() {
		logger.Log.Warn("stored site mode is invalid, using default", "mode", record.Mode)
		return domain.DefaultMode
	}
	return record.Mode
}

func (s *SiteMode) Set(ctx context.Context, sess *domain.Session, mode string) (domain.SiteModeRecord, error) {
	if !s.auth.CheckSession(sess) {
		return domain.SiteModeRecord{}, errors.Auth("Not authenticated")
	}

	m := domain.Mode(mode)
	if !m.Valid() {
		return domain.SiteModeRecord{}, errors.ClientInput("Invalid mode. Use group_only or full_access.")
	}

	record, err := s.store.Set(ctx, m, adminActor)
	if err != nil {
		logger.Log.Error("failed to write site mode", "mode", m, "error", err)
		return domain.SiteModeRecord{}, errors.Storage("Failed to update mode. Check file permissions.")
	}

	siteModeChanges.WithLabelValues(string(m)).Inc()
	logger.Log.Info("site mode updated", "mode", m)
	return record, nil
}

// Ready reports whether the backing store is reachable.
func (s *SiteMode) Ready(ctx context.Context) error {
	return s.store.Ping(ctx)
}
