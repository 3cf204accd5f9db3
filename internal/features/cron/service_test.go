package cron_feature

import (
	"context"
	"errors"
	"testing"

	sync_feature "supplier-portal/internal/features/sync"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

type fakeRunner struct {
	runs []sync_feature.Type
	err  error
}

func (f *fakeRunner) Run(_ context.Context, t sync_feature.Type, trigger string) (*sync_feature.Result, error) {
	if trigger != "schedule" {
		return nil, errors.New("unexpected trigger " + trigger)
	}
	f.runs = append(f.runs, t)
	if f.err != nil {
		return nil, f.err
	}
	return &sync_feature.Result{Type: t, Status: sync_feature.StatusSuccess}, nil
}

func newService(runner Runner, schedules map[string]string) *CronServiceImpl {
	return &CronServiceImpl{
		runner:     runner,
		schedules:  schedules,
		logger:     zap.NewNop(),
		jobEntries: make(map[sync_feature.Type]cron.EntryID),
		specs:      make(map[sync_feature.Type]string),
	}
}

func TestInitializeRegistersConfiguredTypes(t *testing.T) {
	svc := newService(&fakeRunner{}, map[string]string{
		"vendors":         "0 * * * *",
		"purchase_orders": "*/15 * * * *",
		"items":           "",
		"buyers":          "not a schedule",
	})
	if err := svc.InitializeScheduler(context.Background()); err != nil {
		t.Fatal(err)
	}
	defer svc.StopScheduler()

	entries := svc.ListEntries()
	if len(entries) != 2 {
		t.Fatalf("entries = %+v, want 2", entries)
	}
	if entries[0].SyncType != "purchase_orders" || entries[1].SyncType != "vendors" {
		t.Errorf("entries not sorted by type: %+v", entries)
	}
	if entries[0].NextRun == nil {
		t.Error("NextRun should be set once the scheduler is running")
	}
}

func TestRegisterJobValidation(t *testing.T) {
	svc := newService(&fakeRunner{}, nil)
	if err := svc.RegisterJob(sync_feature.TypeVendors, "0 * * * *"); err == nil {
		t.Error("expected error before scheduler is initialized")
	}
	_ = svc.InitializeScheduler(context.Background())
	defer svc.StopScheduler()

	if err := svc.RegisterJob(sync_feature.Type("bogus"), "0 * * * *"); err == nil {
		t.Error("expected unknown type error")
	}
	if err := svc.RegisterJob(sync_feature.TypeItems, "0 * * * *"); err != nil {
		t.Fatal(err)
	}
	if err := svc.RegisterJob(sync_feature.TypeItems, "30 * * * *"); err != nil {
		t.Fatal(err)
	}
	entries := svc.ListEntries()
	if len(entries) != 1 || entries[0].Schedule != "30 * * * *" {
		t.Errorf("re-registering should replace the schedule, got %+v", entries)
	}
}

func TestExecuteRunsSync(t *testing.T) {
	runner := &fakeRunner{}
	svc := newService(runner, nil)
	svc.execute(sync_feature.TypeDealers)

	runner.err = sync_feature.ErrAlreadyRunning
	svc.execute(sync_feature.TypeDealers)

	if len(runner.runs) != 2 || runner.runs[0] != sync_feature.TypeDealers {
		t.Errorf("runs = %v", runner.runs)
	}
}
