package jobs

import (
	"log/slog"

	"sitepulse/internal/database"
)

// MaintenanceJob checkpoints the WAL so the log file does not grow
// unbounded on write-heavy deployments.
type MaintenanceJob struct {
	dbManager *database.DBManager
	logger    *slog.Logger
}

func NewMaintenanceJob(dbManager *database.DBManager, logger *slog.Logger) *MaintenanceJob {
	return &MaintenanceJob{
		dbManager: dbManager,
		logger:    logger,
	}
}

func (j *MaintenanceJob) Run() error {
	j.logger.Info("Running database maintenance")

	if err := j.dbManager.CheckpointWAL("TRUNCATE"); err != nil {
		j.logger.Error("Failed to checkpoint WAL", slog.Any("error", err))
		return err
	}

	j.logger.Debug("WAL checkpoint completed")
	return nil
}
