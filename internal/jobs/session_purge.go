package jobs

import (
	"log/slog"

	"sitepulse/internal/sessions"
)

// SessionPurgeJob drops expired dashboard sessions so the in-memory
// store does not grow unbounded under long uptimes.
type SessionPurgeJob struct {
	store  *sessions.Store
	logger *slog.Logger
}

func NewSessionPurgeJob(store *sessions.Store, logger *slog.Logger) *SessionPurgeJob {
	return &SessionPurgeJob{
		store:  store,
		logger: logger,
	}
}

func (j *SessionPurgeJob) Run() error {
	purged := j.store.PurgeExpired()
	if purged > 0 {
		j.logger.Info("Purged expired sessions", slog.Int("count", purged))
	}
	return nil
}
