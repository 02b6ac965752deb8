package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/beeloyalty/engine/internal/config"
	"github.com/beeloyalty/engine/internal/domain/models"
	elasticrepo "github.com/beeloyalty/engine/internal/repository/elastic"
	"github.com/beeloyalty/engine/internal/repository/mongodb"
)

// Scheduler runs the periodic inventory sweep: per-store stock reports,
// alerts on items below their reorder point, and optional snapshot archival.
type Scheduler struct {
	cron    *cron.Cron
	repo    *elasticrepo.Repository
	archive mongodb.Repository
	cfg     config.SweepConfig
	logger  *zap.Logger
}

// NewScheduler creates a new scheduler instance. The archive may be nil,
// in which case sweep results are only logged.
func NewScheduler(cfg config.SweepConfig, repo *elasticrepo.Repository, archive mongodb.Repository, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}

	opts := []cron.Option{}
	if loc, err := time.LoadLocation(cfg.Timezone); err == nil {
		opts = append(opts, cron.WithLocation(loc))
	} else {
		logger.Warn("invalid timezone, scheduler falls back to local time",
			zap.String("timezone", cfg.Timezone), zap.Error(err))
	}

	return &Scheduler{
		cron:    cron.New(opts...),
		repo:    repo,
		archive: archive,
		cfg:     cfg,
		logger:  logger,
	}
}

// Start starts the scheduler.
func (s *Scheduler) Start() {
	s.logger.Info("starting scheduler", zap.String("schedule", s.cfg.CronSchedule))

	if _, err := s.cron.AddFunc(s.cfg.CronSchedule, s.runInventorySweep); err != nil {
		s.logger.Error("failed to schedule inventory sweep", zap.Error(err))
	}

	s.cron.Start()
}

// Stop stops the scheduler.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	s.cron.Stop()
}

func (s *Scheduler) runInventorySweep() {
	s.logger.Info("running inventory sweep", zap.Strings("stores", s.cfg.StoreIDs))
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	for _, storeID := range s.cfg.StoreIDs {
		now := time.Now()

		report, err := s.repo.StoreInventory(ctx, storeID, now)
		if err != nil {
			s.logger.Error("inventory sweep failed for store",
				zap.String("store_id", storeID), zap.Error(err))
			continue
		}

		for _, rec := range report.Recommendations {
			s.logger.Warn("inventory below reorder threshold",
				zap.String("store_id", storeID),
				zap.String("item", rec.Item),
				zap.Int("current_stock", rec.CurrentStock),
				zap.Int("reorder_point", rec.ReorderPoint),
				zap.String("priority", rec.Priority))
		}

		if s.archive == nil {
			continue
		}

		snapshot := models.InventorySnapshot{
			StoreID:       storeID,
			TakenAt:       now,
			TotalItems:    report.Summary.TotalItems,
			CriticalItems: report.Summary.CriticalItems,
			LowItems:      report.Summary.LowItems,
			AdequateItems: report.Summary.AdequateItems,
			Items:         report.Items,
			CreatedAt:     time.Now(),
		}
		if err := s.archive.SaveInventorySnapshot(ctx, snapshot); err != nil {
			s.logger.Error("failed to archive inventory snapshot",
				zap.String("store_id", storeID), zap.Error(err))
		} else {
			s.logger.Info("archived inventory snapshot", zap.String("store_id", storeID))
		}
	}
}
