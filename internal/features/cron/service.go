package cron_feature

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"supplier-portal/internal/config"
	sync_feature "supplier-portal/internal/features/sync"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Runner is the part of the sync service the scheduler drives.
type Runner interface {
	Run(ctx context.Context, syncType sync_feature.Type, trigger string) (*sync_feature.Result, error)
}

type CronService interface {
	InitializeScheduler(ctx context.Context) error
	StopScheduler() error
	RegisterJob(syncType sync_feature.Type, schedule string) error
	ListEntries() []Entry
}

type CronServiceImpl struct {
	runner    Runner
	schedules map[string]string
	logger    *zap.Logger

	scheduler  *cron.Cron
	jobEntries map[sync_feature.Type]cron.EntryID
	specs      map[sync_feature.Type]string
	mu         sync.RWMutex
}

func NewCronService(cfg *config.Config, syncService sync_feature.SyncService, logger *zap.Logger) CronService {
	return &CronServiceImpl{
		runner:     syncService,
		schedules:  cfg.Sync.Schedules,
		logger:     logger,
		jobEntries: make(map[sync_feature.Type]cron.EntryID),
		specs:      make(map[sync_feature.Type]string),
	}
}

func (s *CronServiceImpl) InitializeScheduler(_ context.Context) error {
	s.logger.Info("Initializing cron scheduler")
	s.mu.Lock()
	s.scheduler = cron.New()
	s.mu.Unlock()

	for _, t := range sync_feature.AllTypes {
		expr := s.schedules[string(t)]
		if expr == "" {
			continue
		}
		if err := s.RegisterJob(t, expr); err != nil {
			s.logger.Error("Failed to register sync schedule", zap.String("type", string(t)), zap.String("schedule", expr), zap.Error(err))
		}
	}

	s.scheduler.Start()
	return nil
}

func (s *CronServiceImpl) StopScheduler() error {
	if s.scheduler != nil {
		ctx := s.scheduler.Stop()
		<-ctx.Done()
	}
	return nil
}

// RegisterJob schedules a sync type, replacing any previous schedule for it.
func (s *CronServiceImpl) RegisterJob(syncType sync_feature.Type, schedule string) error {
	if !syncType.Valid() {
		return fmt.Errorf("unknown sync type %q", syncType)
	}
	if _, err := cron.ParseStandard(schedule); err != nil {
		return fmt.Errorf("invalid cron expression: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.scheduler == nil {
		return errors.New("scheduler not initialized")
	}
	if old, ok := s.jobEntries[syncType]; ok {
		s.scheduler.Remove(old)
	}

	entryID, err := s.scheduler.AddFunc(schedule, func() { s.execute(syncType) })
	if err != nil {
		return fmt.Errorf("failed to add cron job to scheduler: %w", err)
	}
	s.jobEntries[syncType] = entryID
	s.specs[syncType] = schedule
	return nil
}

func (s *CronServiceImpl) execute(syncType sync_feature.Type) {
	started := time.Now()
	res, err := s.runner.Run(context.Background(), syncType, "schedule")
	switch {
	case errors.Is(err, sync_feature.ErrAlreadyRunning):
		s.logger.Info("Scheduled sync skipped, already running", zap.String("type", string(syncType)))
	case err != nil:
		s.logger.Error("Scheduled sync failed", zap.String("type", string(syncType)), zap.Error(err))
	default:
		s.logger.Info("Scheduled sync finished",
			zap.String("type", string(syncType)),
			zap.String("status", string(res.Status)),
			zap.Duration("took", time.Since(started)),
		)
	}
}

func (s *CronServiceImpl) ListEntries() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Entry, 0, len(s.jobEntries))
	for t, id := range s.jobEntries {
		e := Entry{SyncType: string(t), Schedule: s.specs[t]}
		if s.scheduler != nil {
			entry := s.scheduler.Entry(id)
			if !entry.Next.IsZero() {
				next := entry.Next
				e.NextRun = &next
			}
			if !entry.Prev.IsZero() {
				prev := entry.Prev
				e.PrevRun = &prev
			}
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SyncType < out[j].SyncType })
	return out
}
