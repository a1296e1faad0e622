package scheduler

import (
	"context"

	"pethotel/internal/config"
)

// DailyNeedsWriter writes the daily-needs files of a date.
type DailyNeedsWriter interface {
	WriteFiles(ctx context.Context, date string) ([]string, error)
}

// BackupRunner performs one backup rotation.
type BackupRunner interface {
	Run(ctx context.Context) error
}

// RegisterJobs adds the daily-needs export and the backup rotation. A nil
// collaborator leaves its job out.
func (s *Service) RegisterJobs(cfg config.SchedulerConfig, exporter DailyNeedsWriter, backup BackupRunner) error {
	if exporter != nil {
		_, err := s.AddJob("daily_needs_export", cfg.DailyNeedsCron, func(ctx context.Context) error {
			_, err := exporter.WriteFiles(ctx, s.Today())
			return err
		})
		if err != nil {
			return err
		}
	}
	if backup != nil {
		if _, err := s.AddJob("database_backup", cfg.BackupCron, backup.Run); err != nil {
			return err
		}
	}
	return nil
}
