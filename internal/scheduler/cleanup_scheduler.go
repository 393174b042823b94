package scheduler

import (
	"time"

	"github.com/giftwish/giftwish-backend/internal/app/repository"
	"github.com/giftwish/giftwish-backend/pkg/logger"
	"github.com/robfig/cron/v3"
)

// CleanupScheduler purges expired password reset tokens nightly so the table
// does not accumulate dead rows.
type CleanupScheduler struct {
	cron      *cron.Cron
	resetRepo repository.PasswordResetRepository
}

func NewCleanupScheduler(resetRepo repository.PasswordResetRepository) *CleanupScheduler {
	return &CleanupScheduler{
		cron:      cron.New(),
		resetRepo: resetRepo,
	}
}

// Start registers the nightly purge at 03:00
func (s *CleanupScheduler) Start() error {
	_, err := s.cron.AddFunc("0 3 * * *", func() {
		logger.Info("Starting scheduled password reset cleanup", nil)

		deleted, err := s.resetRepo.DeleteExpired(time.Now())
		if err != nil {
			logger.Error("Failed to purge expired password resets", err)
			return
		}

		logger.Info("Password reset cleanup finished", map[string]interface{}{
			"deleted": deleted,
		})
	})
	if err != nil {
		logger.Error("Failed to add cron job for password reset cleanup", err)
		return err
	}

	s.cron.Start()
	logger.Info("Cleanup scheduler started (daily at 3:00 AM)", nil)
	return nil
}

// Stop stops the scheduler
func (s *CleanupScheduler) Stop() {
	logger.Info("Stopping cleanup scheduler...", nil)
	s.cron.Stop()
	logger.Info("Cleanup scheduler stopped", nil)
}
