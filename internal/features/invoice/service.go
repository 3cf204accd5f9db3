package invoice

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"supplier-portal/internal/common/models"
	"supplier-portal/internal/features/account"
	"supplier-portal/internal/features/email_template"
	"supplier-portal/internal/features/purchase_order"
	"supplier-portal/internal/features/teams"
	"supplier-portal/internal/netsuite"
	"supplier-portal/internal/session"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var (
	ErrForbidden     = errors.New("forbidden")
	ErrDuplicate     = errors.New("an invoice with this number already exists")
	ErrNotReviewable = errors.New("invoice has already been reviewed")
	ErrInvalidAmount = errors.New("amount must be positive")
)

// RecordCreator creates records in the ERP and returns the new internal id.
type RecordCreator interface {
	CreateRecord(ctx context.Context, recordType string, fields interface{}) (string, error)
}

type OrderLookup interface {
	FindByID(ctx context.Context, id int64) (*purchase_order.PurchaseOrder, error)
}

type Contacts interface {
	ListContacts(ctx context.Context, id int64, accountType models.AccountType) ([]account.AccountContact, error)
}

type UserLister interface {
	List(ctx context.Context, userType models.UserType) ([]account.User, error)
}

type TemplateSender interface {
	SendTemplate(ctx context.Context, to []string, name string, vars map[string]string) error
}

type InvoiceService interface {
	Submit(ctx context.Context, req SubmitRequest) (*Invoice, error)
	List(ctx context.Context, filter Filter) ([]Invoice, int64, error)
	Get(ctx context.Context, id uint) (*Invoice, error)
	Approve(ctx context.Context, id uint) (*Invoice, error)
	Reject(ctx context.Context, id uint, note string) (*Invoice, error)
}

type InvoiceServiceImpl struct {
	Repo     InvoiceRepository
	Orders   OrderLookup
	ERP      RecordCreator
	Contacts Contacts
	Users    UserLister
	Email    TemplateSender
	Teams    teams.Notifier
	Logger   *zap.Logger
	Now      func() time.Time
}

func NewInvoiceService(
	repo InvoiceRepository,
	orders purchase_order.PurchaseOrderRepository,
	erp *netsuite.Client,
	accounts account.AccountRepository,
	users account.UserRepository,
	templates email_template.EmailTemplateService,
	notifier teams.Notifier,
	logger *zap.Logger,
) InvoiceService {
	return &InvoiceServiceImpl{
		Repo:     repo,
		Orders:   orders,
		ERP:      erp,
		Contacts: accounts,
		Users:    users,
		Email:    templates,
		Teams:    notifier,
		Logger:   logger,
		Now:      time.Now,
	}
}

// Submit records a vendor invoice against one of the active account's orders.
func (s *InvoiceServiceImpl) Submit(ctx context.Context, req SubmitRequest) (*Invoice, error) {
	sess, err := session.FromContext(ctx)
	if err != nil {
		return nil, err
	}
	if sess.Type != models.UserTypeVendor {
		return nil, ErrForbidden
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil || !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	invoiceDate, err := time.Parse("2006-01-02", req.InvoiceDate)
	if err != nil {
		return nil, fmt.Errorf("invalid invoice date: %w", err)
	}

	po, err := s.Orders.FindByID(ctx, req.PurchaseOrderID)
	if err != nil {
		return nil, err
	}
	if po.VendorID != sess.ActiveAccountID {
		return nil, ErrForbidden
	}

	if _, err := s.Repo.FindByNumber(ctx, po.VendorID, req.Number); err == nil {
		return nil, ErrDuplicate
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	inv := &Invoice{
		PurchaseOrderID: po.ID,
		VendorID:        po.VendorID,
		Number:          req.Number,
		Amount:          amount,
		InvoiceDate:     invoiceDate,
		Memo:            req.Memo,
		Status:          StatusSubmitted,
		SubmittedBy:     sess.UserID,
	}
	if err := s.Repo.Create(ctx, inv); err != nil {
		return nil, err
	}

	vars := map[string]string{"number": inv.Number, "amount": inv.Amount.StringFixed(2), "tran_id": po.TranID}
	if accounting, err := s.Users.List(ctx, models.UserTypeAccounting); err == nil {
		var to []string
		for _, u := range accounting {
			if u.IsActive {
				to = append(to, u.Email)
			}
		}
		s.notify(ctx, to, email_template.TemplateInvoiceSubmitted, vars)
	}
	s.post(ctx, fmt.Sprintf("Invoice %s submitted", inv.Number), inv, po.TranID)
	return inv, nil
}

func (s *InvoiceServiceImpl) List(ctx context.Context, filter Filter) ([]Invoice, int64, error) {
	sess, err := session.FromContext(ctx)
	if err != nil {
		return nil, 0, err
	}
	if sess.Type == models.UserTypeVendor {
		filter.VendorID = sess.ActiveAccountID
	}
	return s.Repo.List(ctx, filter)
}

func (s *InvoiceServiceImpl) Get(ctx context.Context, id uint) (*Invoice, error) {
	sess, err := session.FromContext(ctx)
	if err != nil {
		return nil, err
	}
	inv, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sess.Type == models.UserTypeVendor && inv.VendorID != sess.ActiveAccountID {
		return nil, ErrForbidden
	}
	return inv, nil
}

// Approve creates the vendor bill in the ERP and only then marks the invoice approved.
func (s *InvoiceServiceImpl) Approve(ctx context.Context, id uint) (*Invoice, error) {
	sess, err := session.FromContext(ctx)
	if err != nil {
		return nil, err
	}
	inv, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if inv.Status != StatusSubmitted {
		return nil, ErrNotReviewable
	}

	fields := map[string]interface{}{
		"entity":         map[string]string{"id": strconv.FormatInt(inv.VendorID, 10)},
		"tranId":         inv.Number,
		"tranDate":       inv.InvoiceDate.Format("2006-01-02"),
		"userTotal":      inv.Amount.StringFixed(2),
		"memo":           inv.Memo,
		"createdFrom":    map[string]string{"id": strconv.FormatInt(inv.PurchaseOrderID, 10)},
		"approvalStatus": map[string]string{"id": "2"},
	}
	billID, err := s.ERP.CreateRecord(ctx, "vendorBill", fields)
	if err != nil {
		return nil, fmt.Errorf("create vendor bill: %w", err)
	}

	now, reviewer := s.Now(), sess.UserID
	inv.Status = StatusApproved
	inv.NetSuiteBillID = billID
	inv.ReviewedBy = &reviewer
	inv.ReviewedAt = &now
	if err := s.Repo.Update(ctx, inv); err != nil {
		return nil, err
	}

	s.notifyVendor(ctx, inv, email_template.TemplateInvoiceApproved, "")
	s.post(ctx, fmt.Sprintf("Invoice %s approved", inv.Number), inv, "")
	s.Logger.Info("Invoice approved", zap.Uint("invoice_id", inv.ID), zap.String("bill_id", billID))
	return inv, nil
}

func (s *InvoiceServiceImpl) Reject(ctx context.Context, id uint, note string) (*Invoice, error) {
	sess, err := session.FromContext(ctx)
	if err != nil {
		return nil, err
	}
	inv, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if inv.Status != StatusSubmitted {
		return nil, ErrNotReviewable
	}

	now, reviewer := s.Now(), sess.UserID
	inv.Status = StatusRejected
	inv.Note = note
	inv.ReviewedBy = &reviewer
	inv.ReviewedAt = &now
	if err := s.Repo.Update(ctx, inv); err != nil {
		return nil, err
	}

	s.notifyVendor(ctx, inv, email_template.TemplateInvoiceRejected, note)
	return inv, nil
}

func (s *InvoiceServiceImpl) notifyVendor(ctx context.Context, inv *Invoice, template, note string) {
	contacts, err := s.Contacts.ListContacts(ctx, inv.VendorID, models.AccountTypeVendor)
	if err != nil {
		s.Logger.Warn("Failed to load vendor contacts", zap.Int64("vendor_id", inv.VendorID), zap.Error(err))
		return
	}
	var to []string
	for _, c := range contacts {
		if c.IsActive {
			to = append(to, c.Email)
		}
	}
	s.notify(ctx, to, template, map[string]string{
		"number": inv.Number,
		"amount": inv.Amount.StringFixed(2),
		"note":   note,
	})
}

func (s *InvoiceServiceImpl) notify(ctx context.Context, to []string, template string, vars map[string]string) {
	if len(to) == 0 {
		return
	}
	if err := s.Email.SendTemplate(ctx, to, template, vars); err != nil {
		s.Logger.Warn("Failed to send invoice email", zap.String("template", template), zap.Error(err))
	}
}

func (s *InvoiceServiceImpl) post(ctx context.Context, title string, inv *Invoice, tranID string) {
	facts := []teams.Fact{
		{Name: "Vendor", Value: strconv.FormatInt(inv.VendorID, 10)},
		{Name: "Amount", Value: inv.Amount.StringFixed(2)},
	}
	if tranID != "" {
		facts = append(facts, teams.Fact{Name: "PO", Value: tranID})
	}
	if err := s.Teams.Post(ctx, teams.CategoryInvoices, teams.NewCard(title, "", "2E8B57", facts...)); err != nil {
		s.Logger.Warn("Failed to post invoice card", zap.Error(err))
	}
}
