package sync

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	stdsync "sync"
	"time"

	"supplier-portal/internal/common/models"
	"supplier-portal/internal/config"
	"supplier-portal/internal/features/account"
	"supplier-portal/internal/features/email_template"
	"supplier-portal/internal/features/item"
	"supplier-portal/internal/features/notification"
	"supplier-portal/internal/features/purchase_order"
	"supplier-portal/internal/features/teams"
	"supplier-portal/internal/metrics"
	"supplier-portal/internal/netsuite"
	"supplier-portal/pkg/export"

	"go.uber.org/zap"
)

var ErrUnknownType = errors.New("unknown sync type")

// ERPClient is the read side of the NetSuite client.
type ERPClient interface {
	netsuite.Querier
	GetRecord(ctx context.Context, recordType, id string, params url.Values, out interface{}) error
}

type StockTrigger interface {
	Evaluate(ctx context.Context, store notification.SubscriptionStore, it *item.Item, oldQty, newQty float64) (int, error)
}

type AlertSender interface {
	SendTemplate(ctx context.Context, to []string, name string, vars map[string]string) error
}

type SyncService interface {
	Run(ctx context.Context, syncType Type, trigger string) (*Result, error)
	RunAll(ctx context.Context, trigger string) ([]Result, error)
	Start(syncType Type, trigger string) error
	Shutdown(ctx context.Context) error
	GetLog(ctx context.Context, id uint) (*SyncLog, error)
	ListLogs(ctx context.Context, filter LogFilter) ([]SyncLog, int64, error)
	ExportLogs(ctx context.Context, filter LogFilter) ([]byte, string, error)
}

type SyncServiceImpl struct {
	ERP     ERPClient
	Stores  TxBeginner
	Logs    SyncLogRepository
	Trigger StockTrigger
	Locker  Locker
	Teams   teams.Notifier
	Alerts  AlertSender
	Metrics *metrics.Metrics
	Logger  *zap.Logger
	Now     func() time.Time

	POPolicy       string
	POCommitEvery  int
	DealerCategory string
	PhoneRegion    string
	AlertEmails    []string

	jobsMu   stdsync.Mutex
	jobs     stdsync.WaitGroup
	jobsCtx  context.Context
	stopJobs context.CancelFunc
}

func NewSyncService(
	cfg *config.Config,
	erp *netsuite.Client,
	stores TxBeginner,
	logs SyncLogRepository,
	trigger *notification.Trigger,
	locker Locker,
	notifier teams.Notifier,
	templates email_template.EmailTemplateService,
	m *metrics.Metrics,
	logger *zap.Logger,
) SyncService {
	return &SyncServiceImpl{
		ERP:            erp,
		Stores:         stores,
		Logs:           logs,
		Trigger:        trigger,
		Locker:         locker,
		Teams:          notifier,
		Alerts:         templates,
		Metrics:        m,
		Logger:         logger,
		Now:            time.Now,
		POPolicy:       cfg.Sync.POPolicy,
		POCommitEvery:  cfg.Sync.POCommitEvery,
		DealerCategory: cfg.NetSuite.DealerCategory,
		PhoneRegion:    cfg.DefaultPhoneRegion,
		AlertEmails:    cfg.Sync.AlertEmails,
	}
}

// Run executes one sync type and records it in the audit log. The returned
// Result is set whenever a log row was written, including failed runs.
func (s *SyncServiceImpl) Run(ctx context.Context, syncType Type, trigger string) (*Result, error) {
	if !syncType.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, syncType)
	}

	release, err := s.Locker.Acquire(ctx, string(syncType))
	if err != nil {
		return nil, err
	}
	defer release()

	return s.run(ctx, syncType, trigger)
}

// Start runs a sync in the background. For a single type the lock is taken
// before Start returns, so a held lock is reported to the caller as
// ErrAlreadyRunning. Background runs stop when Shutdown is called.
func (s *SyncServiceImpl) Start(syncType Type, trigger string) error {
	ctx := s.jobContext()

	if syncType == TypeAll {
		s.background(func() {
			if _, err := s.RunAll(ctx, trigger); err != nil {
				s.Logger.Error("Background sync failed", zap.String("type", string(TypeAll)), zap.Error(err))
			}
		})
		return nil
	}

	if !syncType.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownType, syncType)
	}
	release, err := s.Locker.Acquire(ctx, string(syncType))
	if err != nil {
		return err
	}
	s.background(func() {
		defer release()
		if _, err := s.run(ctx, syncType, trigger); err != nil {
			s.Logger.Error("Background sync failed", zap.String("type", string(syncType)), zap.Error(err))
		}
	})
	return nil
}

// Shutdown cancels background runs and waits for them to return.
func (s *SyncServiceImpl) Shutdown(ctx context.Context) error {
	s.jobContext()
	s.jobsMu.Lock()
	s.stopJobs()
	s.jobsMu.Unlock()

	done := make(chan struct{})
	go func() {
		s.jobs.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *SyncServiceImpl) jobContext() context.Context {
	s.jobsMu.Lock()
	defer s.jobsMu.Unlock()
	if s.jobsCtx == nil {
		s.jobsCtx, s.stopJobs = context.WithCancel(context.Background())
	}
	return s.jobsCtx
}

func (s *SyncServiceImpl) background(fn func()) {
	s.jobs.Add(1)
	go func() {
		defer s.jobs.Done()
		fn()
	}()
}

func (s *SyncServiceImpl) run(ctx context.Context, syncType Type, trigger string) (*Result, error) {
	entry := &SyncLog{
		Type:      syncType,
		Status:    StatusRunning,
		Trigger:   trigger,
		StartedAt: s.Now(),
	}
	if err := s.Logs.Create(ctx, entry); err != nil {
		return nil, fmt.Errorf("create sync log: %w", err)
	}
	s.Logger.Info("Sync started", zap.String("type", string(syncType)), zap.Uint("log_id", entry.ID), zap.String("trigger", trigger))

	rec := newRecorder(string(syncType))
	var runErr error
	switch syncType {
	case TypeVendors:
		runErr = s.syncVendors(ctx, rec)
	case TypeDealers:
		runErr = s.syncDealers(ctx, rec)
	case TypeBuyers:
		runErr = s.syncBuyers(ctx, rec)
	case TypePurchaseOrders:
		runErr = s.syncPurchaseOrders(ctx, rec)
	case TypeItems:
		runErr = s.syncItems(ctx, rec)
	}

	s.finish(ctx, entry, rec, runErr)
	return &Result{
		LogID:  entry.ID,
		Type:   syncType,
		Status: entry.Status,
		Totals: rec.totals(),
		Detail: rec.details(),
		Error:  entry.Error,
	}, runErr
}

// RunAll runs every type in order. A failing type does not stop the others.
func (s *SyncServiceImpl) RunAll(ctx context.Context, trigger string) ([]Result, error) {
	var results []Result
	var errs []error
	for _, t := range AllTypes {
		res, err := s.Run(ctx, t, trigger)
		if res != nil {
			results = append(results, *res)
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", t, err))
		}
	}
	return results, errors.Join(errs...)
}

func (s *SyncServiceImpl) finish(ctx context.Context, entry *SyncLog, rec *recorder, runErr error) {
	ctx = context.WithoutCancel(ctx)
	finished := s.Now()
	totals := rec.totals()

	entry.FinishedAt = &finished
	entry.Processed = totals.Processed
	entry.Created = totals.Created
	entry.Updated = totals.Updated
	entry.Failed = totals.Failed
	entry.Details = models.NewJSONB(rec.details())
	entry.Status = StatusSuccess
	if runErr != nil {
		entry.Status = StatusFailed
		entry.Error = runErr.Error()
	}

	if err := s.Logs.Update(ctx, entry); err != nil {
		s.Logger.Error("Failed to finalize sync log", zap.Uint("log_id", entry.ID), zap.Error(err))
	}
	elapsed := finished.Sub(entry.StartedAt)
	s.Metrics.SyncFinished(string(entry.Type), string(entry.Status), elapsed, totals.Created, totals.Updated, totals.Failed)

	fields := []zap.Field{
		zap.String("type", string(entry.Type)),
		zap.Uint("log_id", entry.ID),
		zap.Int("processed", totals.Processed),
		zap.Int("created", totals.Created),
		zap.Int("updated", totals.Updated),
		zap.Int("failed", totals.Failed),
		zap.Duration("elapsed", elapsed),
	}
	if runErr == nil {
		s.Logger.Info("Sync finished", fields...)
		return
	}
	s.Logger.Error("Sync failed", append(fields, zap.Error(runErr))...)

	card := teams.NewCard(
		fmt.Sprintf("Sync failed: %s", entry.Type),
		runErr.Error(),
		"D70000",
		teams.Fact{Name: "Log", Value: strconv.FormatUint(uint64(entry.ID), 10)},
		teams.Fact{Name: "Processed", Value: strconv.Itoa(totals.Processed)},
		teams.Fact{Name: "Failed", Value: strconv.Itoa(totals.Failed)},
	)
	if err := s.Teams.Post(ctx, teams.CategorySync, card); err != nil {
		s.Logger.Warn("Failed to post sync alert to Teams", zap.Error(err))
	}
	if len(s.AlertEmails) > 0 && s.Alerts != nil {
		vars := map[string]string{"type": string(entry.Type), "error": runErr.Error()}
		if err := s.Alerts.SendTemplate(ctx, s.AlertEmails, email_template.TemplateSyncFailed, vars); err != nil {
			s.Logger.Warn("Failed to email sync alert", zap.Error(err))
		}
	}
}

// inTx runs fn in one transaction, rolling back when fn fails.
func (s *SyncServiceImpl) inTx(ctx context.Context, fn func(tx Tx) error) error {
	tx, err := s.Stores.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			s.Logger.Warn("Rollback failed", zap.Error(rbErr))
		}
		return err
	}
	return tx.Commit()
}

func (s *SyncServiceImpl) syncVendors(ctx context.Context, rec *recorder) error {
	rows, err := netsuite.QueryInto[netsuite.VendorRow](ctx, s.ERP, netsuite.VendorQuery)
	if err != nil {
		return fmt.Errorf("fetch vendors: %w", err)
	}
	records := make([]AccountRecord, 0, len(rows))
	for _, row := range rows {
		r, err := MapVendor(row, s.PhoneRegion)
		if err != nil {
			rec.failed(rec.primary)
			s.Logger.Warn("Skipping vendor", zap.String("id", row.ID.String()), zap.Error(err))
			continue
		}
		records = append(records, r)
	}
	return s.syncAccounts(ctx, records, rec)
}

func (s *SyncServiceImpl) syncDealers(ctx context.Context, rec *recorder) error {
	rows, err := netsuite.QueryInto[netsuite.CustomerRow](ctx, s.ERP, netsuite.DealerQuery(s.DealerCategory))
	if err != nil {
		return fmt.Errorf("fetch dealers: %w", err)
	}
	records := make([]AccountRecord, 0, len(rows))
	for _, row := range rows {
		r, err := MapDealer(row, s.PhoneRegion)
		if err != nil {
			rec.failed(rec.primary)
			s.Logger.Warn("Skipping dealer", zap.String("id", row.ID.String()), zap.Error(err))
			continue
		}
		records = append(records, r)
	}
	return s.syncAccounts(ctx, records, rec)
}

func (s *SyncServiceImpl) syncAccounts(ctx context.Context, records []AccountRecord, rec *recorder) error {
	return s.inTx(ctx, func(tx Tx) error {
		for i := range records {
			if err := s.upsertAccount(ctx, tx, &records[i], rec); err != nil {
				return fmt.Errorf("account %d: %w", records[i].Account.ID, err)
			}
		}
		return nil
	})
}

func (s *SyncServiceImpl) upsertAccount(ctx context.Context, tx Tx, r *AccountRecord, rec *recorder) error {
	a := r.Account
	existing, err := tx.Accounts().FindAccount(ctx, a.ID, a.Type)
	switch {
	case isNotFound(err):
		if err := tx.Accounts().CreateAccount(ctx, &a); err != nil {
			return err
		}
		rec.created(rec.primary)
	case err != nil:
		return err
	default:
		a.CreatedAt = existing.CreatedAt
		if err := tx.Accounts().UpdateAccount(ctx, &a); err != nil {
			return err
		}
		rec.updated(rec.primary)
	}

	profile := r.Profile
	if err := tx.Accounts().UpsertProfile(ctx, &profile); err != nil {
		return err
	}

	userType := a.Type.UserType()
	for i, email := range r.Emails {
		u, err := tx.Users().FindByEmail(ctx, email, userType)
		switch {
		case isNotFound(err):
			u = &account.User{Email: email, Type: userType, Name: a.Name, IsActive: true}
			if err := tx.Users().Create(ctx, u); err != nil {
				return err
			}
			rec.created("users")
		case err != nil:
			return err
		default:
			rec.seen("users")
		}

		_, err = tx.Accounts().FindLink(ctx, a.ID, a.Type, u.ID)
		switch {
		case isNotFound(err):
			link := &account.AccountUser{AccountID: a.ID, AccountType: a.Type, UserID: u.ID, IsPrimary: i == 0}
			if err := tx.Accounts().CreateLink(ctx, link); err != nil {
				return err
			}
			rec.created("links")
		case err != nil:
			return err
		default:
			rec.seen("links")
		}
	}
	return nil
}

func (s *SyncServiceImpl) syncBuyers(ctx context.Context, rec *recorder) error {
	rows, err := netsuite.QueryInto[netsuite.EmployeeRow](ctx, s.ERP, netsuite.BuyerQuery)
	if err != nil {
		return fmt.Errorf("fetch buyers: %w", err)
	}
	buyers := make([]account.User, 0, len(rows))
	for _, row := range rows {
		u, err := MapBuyer(row)
		if err != nil {
			rec.failed(rec.primary)
			s.Logger.Warn("Skipping buyer", zap.String("id", row.ID.String()), zap.Error(err))
			continue
		}
		buyers = append(buyers, u)
	}

	return s.inTx(ctx, func(tx Tx) error {
		for i := range buyers {
			b := buyers[i]
			existing, err := tx.Users().FindByEmail(ctx, b.Email, models.UserTypeBuyer)
			switch {
			case isNotFound(err):
				if err := tx.Users().Create(ctx, &b); err != nil {
					return fmt.Errorf("buyer %s: %w", b.Email, err)
				}
				rec.created(rec.primary)
			case err != nil:
				return err
			default:
				existing.NetSuiteID = b.NetSuiteID
				existing.IsActive = b.IsActive
				if b.Name != "" {
					existing.Name = b.Name
				}
				if err := tx.Users().Update(ctx, existing); err != nil {
					return fmt.Errorf("buyer %s: %w", b.Email, err)
				}
				rec.updated(rec.primary)
			}
		}
		return nil
	})
}

// syncPurchaseOrders fetches the detail of every order one by one. The
// transaction is committed every POCommitEvery orders so a fatal error only
// loses the open segment.
func (s *SyncServiceImpl) syncPurchaseOrders(ctx context.Context, rec *recorder) error {
	rows, err := netsuite.QueryInto[netsuite.PurchaseOrderRow](ctx, s.ERP, netsuite.PurchaseOrderQuery)
	if err != nil {
		return fmt.Errorf("fetch purchase orders: %w", err)
	}

	tx, err := s.Stores.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if tx != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				s.Logger.Warn("Rollback failed", zap.Error(rbErr))
			}
		}
	}()

	params := url.Values{"expandSubResources": {"true"}}
	pending := 0
	for _, row := range rows {
		var detail netsuite.PurchaseOrderRecord
		if err := s.ERP.GetRecord(ctx, "purchaseOrder", row.ID.String(), params, &detail); err != nil {
			rec.failed(rec.primary)
			s.Logger.Warn("Failed to fetch purchase order detail", zap.String("id", row.ID.String()), zap.Error(err))
			continue
		}
		po, lines, err := MapPurchaseOrder(detail)
		if err != nil {
			rec.failed(rec.primary)
			s.Logger.Warn("Skipping purchase order", zap.String("id", row.ID.String()), zap.Error(err))
			continue
		}
		if err := s.upsertPurchaseOrder(ctx, tx, &po, lines, rec); err != nil {
			return fmt.Errorf("purchase order %d: %w", po.ID, err)
		}

		pending++
		if s.POCommitEvery > 0 && pending >= s.POCommitEvery {
			commitErr := tx.Commit()
			tx = nil
			if commitErr != nil {
				return fmt.Errorf("commit: %w", commitErr)
			}
			if tx, err = s.Stores.Begin(ctx); err != nil {
				tx = nil
				return fmt.Errorf("begin transaction: %w", err)
			}
			pending = 0
		}
	}

	commitErr := tx.Commit()
	tx = nil
	return commitErr
}

func (s *SyncServiceImpl) upsertPurchaseOrder(ctx context.Context, tx Tx, po *purchase_order.PurchaseOrder, lines []purchase_order.LineItem, rec *recorder) error {
	now := s.Now()
	po.LastSyncedAt = &now

	existing, err := tx.PurchaseOrders().FindByID(ctx, po.ID)
	switch {
	case isNotFound(err):
		if err := tx.PurchaseOrders().Create(ctx, po); err != nil {
			return err
		}
		rec.created(rec.primary)
	case err != nil:
		return err
	case s.POPolicy == PolicyUpsert:
		po.HasVendorUpdates = existing.HasVendorUpdates
		po.PendingChanges = existing.PendingChanges
		po.CreatedAt = existing.CreatedAt
		if err := tx.PurchaseOrders().Update(ctx, po); err != nil {
			return err
		}
		rec.updated(rec.primary)
	default:
		rec.seen(rec.primary)
	}

	if err := tx.PurchaseOrders().ReplaceLines(ctx, po.ID, lines); err != nil {
		return err
	}
	rec.add("line_items", len(lines))
	return nil
}

func (s *SyncServiceImpl) syncItems(ctx context.Context, rec *recorder) error {
	rows, err := netsuite.QueryInto[netsuite.ItemRow](ctx, s.ERP, netsuite.ItemQuery)
	if err != nil {
		return fmt.Errorf("fetch items: %w", err)
	}
	items := make([]item.Item, 0, len(rows))
	for _, row := range rows {
		it, err := MapItem(row)
		if err != nil {
			rec.failed(rec.primary)
			s.Logger.Warn("Skipping item", zap.String("id", row.ID.String()), zap.Error(err))
			continue
		}
		items = append(items, it)
	}

	return s.inTx(ctx, func(tx Tx) error {
		for i := range items {
			it := items[i]
			existing, err := tx.Items().FindByID(ctx, it.ID)
			switch {
			case isNotFound(err):
				if err := tx.Items().Create(ctx, &it); err != nil {
					return fmt.Errorf("item %d: %w", it.ID, err)
				}
				rec.created(rec.primary)
				continue
			case err != nil:
				return err
			}

			oldQty := existing.QuantityOnHand
			it.CreatedAt = existing.CreatedAt
			if err := tx.Items().Update(ctx, &it); err != nil {
				return fmt.Errorf("item %d: %w", it.ID, err)
			}
			rec.updated(rec.primary)

			fired, err := s.Trigger.Evaluate(ctx, tx.Subscriptions(), &it, oldQty, it.QuantityOnHand)
			if err != nil {
				return err
			}
			if fired > 0 {
				rec.add("notifications", fired)
			}
		}
		return nil
	})
}

func (s *SyncServiceImpl) GetLog(ctx context.Context, id uint) (*SyncLog, error) {
	return s.Logs.FindByID(ctx, id)
}

func (s *SyncServiceImpl) ListLogs(ctx context.Context, filter LogFilter) ([]SyncLog, int64, error) {
	return s.Logs.List(ctx, filter)
}

func (s *SyncServiceImpl) ExportLogs(ctx context.Context, filter LogFilter) ([]byte, string, error) {
	filter.Limit = 500
	logs, _, err := s.Logs.List(ctx, filter)
	if err != nil {
		return nil, "", err
	}

	columns := []string{"ID", "Type", "Status", "Trigger", "Started", "Finished", "Processed", "Created", "Updated", "Failed", "Error"}
	rows := make([][]interface{}, 0, len(logs))
	for _, l := range logs {
		rows = append(rows, []interface{}{
			l.ID, string(l.Type), string(l.Status), l.Trigger, l.StartedAt, l.FinishedAt,
			l.Processed, l.Created, l.Updated, l.Failed, l.Error,
		})
	}
	return export.ToExcel("Sync Logs", columns, rows, "sync_logs_"+s.Now().Format("20060102_150405"))
}
