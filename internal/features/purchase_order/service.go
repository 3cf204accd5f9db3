package purchase_order

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"supplier-portal/internal/common/models"
	"supplier-portal/internal/features/account"
	"supplier-portal/internal/features/email_template"
	"supplier-portal/internal/features/teams"
	"supplier-portal/internal/netsuite"
	"supplier-portal/internal/session"
	"supplier-portal/pkg/export"

	"go.uber.org/zap"
)

var (
	ErrForbidden        = errors.New("forbidden")
	ErrNoChanges        = errors.New("no editable fields supplied")
	ErrNoPendingChanges = errors.New("purchase order has no pending vendor changes")
)

// RecordPatcher writes field changes back to the ERP record.
type RecordPatcher interface {
	PatchRecord(ctx context.Context, recordType, id string, fields interface{}) error
}

type TemplateSender interface {
	SendTemplate(ctx context.Context, to []string, name string, vars map[string]string) error
}

// Directory resolves who to notify about a purchase order.
type Directory interface {
	FindAccount(ctx context.Context, id int64, accountType models.AccountType) (*account.Account, error)
	ListContacts(ctx context.Context, id int64, accountType models.AccountType) ([]account.AccountContact, error)
}

type BuyerLookup interface {
	FindByNetSuiteID(ctx context.Context, netsuiteID int64, userType models.UserType) (*account.User, error)
}

type PurchaseOrderService interface {
	List(ctx context.Context, filter Filter) ([]PurchaseOrder, int64, error)
	Get(ctx context.Context, id int64) (*PurchaseOrder, error)
	ProposeChanges(ctx context.Context, id int64, changes Changes) (*PurchaseOrder, error)
	Update(ctx context.Context, id int64, changes Changes) (*PurchaseOrder, error)
	ApproveChanges(ctx context.Context, id int64) (*PurchaseOrder, error)
	RejectChanges(ctx context.Context, id int64, note string) (*PurchaseOrder, error)
	Export(ctx context.Context, filter Filter) ([]byte, string, error)
}

type PurchaseOrderServiceImpl struct {
	Repo      PurchaseOrderRepository
	ERP       RecordPatcher
	Directory Directory
	Buyers    BuyerLookup
	Email     TemplateSender
	Teams     teams.Notifier
	Logger    *zap.Logger
}

func NewPurchaseOrderService(
	repo PurchaseOrderRepository,
	erp *netsuite.Client,
	accounts account.AccountRepository,
	users account.UserRepository,
	templates email_template.EmailTemplateService,
	notifier teams.Notifier,
	logger *zap.Logger,
) PurchaseOrderService {
	return &PurchaseOrderServiceImpl{
		Repo:      repo,
		ERP:       erp,
		Directory: accounts,
		Buyers:    users,
		Email:     templates,
		Teams:     notifier,
		Logger:    logger,
	}
}

// List scopes vendors to their active account.
func (s *PurchaseOrderServiceImpl) List(ctx context.Context, filter Filter) ([]PurchaseOrder, int64, error) {
	sess, err := session.FromContext(ctx)
	if err != nil {
		return nil, 0, err
	}
	if sess.Type == models.UserTypeVendor {
		filter.VendorID = sess.ActiveAccountID
	}
	return s.Repo.List(ctx, filter)
}

func (s *PurchaseOrderServiceImpl) Get(ctx context.Context, id int64) (*PurchaseOrder, error) {
	sess, err := session.FromContext(ctx)
	if err != nil {
		return nil, err
	}
	po, err := s.Repo.GetWithLines(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := canRead(sess, po); err != nil {
		return nil, err
	}
	return po, nil
}

func canRead(sess *session.Session, po *PurchaseOrder) error {
	if sess.Type == models.UserTypeVendor && po.VendorID != sess.ActiveAccountID {
		return ErrForbidden
	}
	return nil
}

// ProposeChanges stores a vendor's edits for buyer review. Fields proposed
// earlier and not touched again are kept.
func (s *PurchaseOrderServiceImpl) ProposeChanges(ctx context.Context, id int64, changes Changes) (*PurchaseOrder, error) {
	if changes.Empty() {
		return nil, ErrNoChanges
	}
	sess, err := session.FromContext(ctx)
	if err != nil {
		return nil, err
	}
	if sess.Type != models.UserTypeVendor {
		return nil, ErrForbidden
	}

	po, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := canRead(sess, po); err != nil {
		return nil, err
	}

	var pending Changes
	if err := po.PendingChanges.Decode(&pending); err != nil {
		return nil, fmt.Errorf("decode pending changes: %w", err)
	}
	merge(&pending, changes)
	po.PendingChanges = models.NewJSONB(pending)
	po.HasVendorUpdates = true
	if err := s.Repo.Update(ctx, po); err != nil {
		return nil, err
	}

	vendorName := strconv.FormatInt(po.VendorID, 10)
	if a, err := s.Directory.FindAccount(ctx, po.VendorID, models.AccountTypeVendor); err == nil {
		vendorName = a.Name
	}
	summary := describe(pending)

	if po.BuyerID != nil {
		if buyer, err := s.Buyers.FindByNetSuiteID(ctx, *po.BuyerID, models.UserTypeBuyer); err == nil {
			s.notify(ctx, []string{buyer.Email}, email_template.TemplatePOVendorUpdate, map[string]string{
				"tran_id":     po.TranID,
				"vendor_name": vendorName,
				"changes":     summary,
			})
		}
	}

	card := teams.NewCard(
		fmt.Sprintf("PO %s: vendor proposed changes", po.TranID),
		summary,
		"FFA500",
		teams.Fact{Name: "Vendor", Value: vendorName},
		teams.Fact{Name: "Submitted by", Value: sess.Email},
	)
	if err := s.Teams.Post(ctx, teams.CategoryPurchaseOrders, card); err != nil {
		s.Logger.Warn("Failed to post purchase order card", zap.Int64("po_id", po.ID), zap.Error(err))
	}

	s.Logger.Info("Vendor proposed purchase order changes",
		zap.Int64("po_id", po.ID), zap.String("by", sess.Email))
	return po, nil
}

// Update is the buyer's direct edit. The ERP is written first so a rejected
// PATCH leaves the local copy untouched.
func (s *PurchaseOrderServiceImpl) Update(ctx context.Context, id int64, changes Changes) (*PurchaseOrder, error) {
	if changes.Empty() {
		return nil, ErrNoChanges
	}
	po, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.ERP.PatchRecord(ctx, "purchaseOrder", strconv.FormatInt(po.ID, 10), changes.ERPFields()); err != nil {
		return nil, fmt.Errorf("update purchase order in ERP: %w", err)
	}
	changes.Apply(po)
	if err := s.Repo.Update(ctx, po); err != nil {
		return nil, err
	}
	return po, nil
}

func (s *PurchaseOrderServiceImpl) ApproveChanges(ctx context.Context, id int64) (*PurchaseOrder, error) {
	po, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !po.HasVendorUpdates {
		return nil, ErrNoPendingChanges
	}
	var pending Changes
	if err := po.PendingChanges.Decode(&pending); err != nil {
		return nil, fmt.Errorf("decode pending changes: %w", err)
	}

	if !pending.Empty() {
		if err := s.ERP.PatchRecord(ctx, "purchaseOrder", strconv.FormatInt(po.ID, 10), pending.ERPFields()); err != nil {
			return nil, fmt.Errorf("update purchase order in ERP: %w", err)
		}
		pending.Apply(po)
	}
	po.PendingChanges = nil
	po.HasVendorUpdates = false
	if err := s.Repo.Update(ctx, po); err != nil {
		return nil, err
	}

	s.notifyVendor(ctx, po, email_template.TemplatePOChangesApproved, "")
	return po, nil
}

func (s *PurchaseOrderServiceImpl) RejectChanges(ctx context.Context, id int64, note string) (*PurchaseOrder, error) {
	po, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !po.HasVendorUpdates {
		return nil, ErrNoPendingChanges
	}
	po.PendingChanges = nil
	po.HasVendorUpdates = false
	if err := s.Repo.Update(ctx, po); err != nil {
		return nil, err
	}

	s.notifyVendor(ctx, po, email_template.TemplatePOChangesRejected, note)
	return po, nil
}

func (s *PurchaseOrderServiceImpl) notifyVendor(ctx context.Context, po *PurchaseOrder, template, note string) {
	contacts, err := s.Directory.ListContacts(ctx, po.VendorID, models.AccountTypeVendor)
	if err != nil {
		s.Logger.Warn("Failed to load vendor contacts", zap.Int64("vendor_id", po.VendorID), zap.Error(err))
		return
	}
	var to []string
	for _, c := range contacts {
		if c.IsActive {
			to = append(to, c.Email)
		}
	}
	s.notify(ctx, to, template, map[string]string{"tran_id": po.TranID, "note": note})
}

func (s *PurchaseOrderServiceImpl) notify(ctx context.Context, to []string, template string, vars map[string]string) {
	if len(to) == 0 {
		return
	}
	if err := s.Email.SendTemplate(ctx, to, template, vars); err != nil {
		s.Logger.Warn("Failed to send purchase order email", zap.String("template", template), zap.Error(err))
	}
}

func (s *PurchaseOrderServiceImpl) Export(ctx context.Context, filter Filter) ([]byte, string, error) {
	filter.Limit = 1000
	orders, _, err := s.List(ctx, filter)
	if err != nil {
		return nil, "", err
	}

	columns := []string{"PO", "Vendor", "Status", "Total", "Currency", "Date", "Due", "Ship", "Port", "Est. Delivery", "Buyer", "Pending Changes", "Memo"}
	rows := make([][]interface{}, 0, len(orders))
	for _, po := range orders {
		rows = append(rows, []interface{}{
			po.TranID, po.VendorID, po.Status.Label(), po.Total, po.Currency,
			po.TranDate, po.DueDate, po.ShipDate, po.PortDate, po.EstimatedDelivery,
			po.BuyerID, po.HasVendorUpdates, po.Memo,
		})
	}
	return export.ToExcel("Purchase Orders", columns, rows, "purchase_orders_"+time.Now().Format("20060102_150405"))
}

func merge(dst *Changes, src Changes) {
	if src.ShipDate != nil {
		dst.ShipDate = src.ShipDate
	}
	if src.PortDate != nil {
		dst.PortDate = src.PortDate
	}
	if src.EstimatedDelivery != nil {
		dst.EstimatedDelivery = src.EstimatedDelivery
	}
	if src.Memo != nil {
		dst.Memo = src.Memo
	}
}

func describe(c Changes) string {
	var parts []string
	date := func(label string, t *time.Time) {
		if t != nil {
			parts = append(parts, label+": "+t.Format("2006-01-02"))
		}
	}
	date("Ship date", c.ShipDate)
	date("Port date", c.PortDate)
	date("Estimated delivery", c.EstimatedDelivery)
	if c.Memo != nil {
		parts = append(parts, "Memo: "+*c.Memo)
	}
	return strings.Join(parts, "\n")
}
