package invoice

import (
	"context"
	"errors"
	"testing"
	"time"

	"supplier-portal/internal/common/models"
	"supplier-portal/internal/features/account"
	"supplier-portal/internal/features/purchase_order"
	"supplier-portal/internal/features/teams"
	"supplier-portal/internal/session"

	"go.uber.org/zap"
)

type memRepo struct {
	invoices map[uint]Invoice
	next     uint
}

func (m *memRepo) Create(_ context.Context, inv *Invoice) error {
	m.next++
	inv.ID = m.next
	m.invoices[inv.ID] = *inv
	return nil
}

func (m *memRepo) FindByID(_ context.Context, id uint) (*Invoice, error) {
	inv, ok := m.invoices[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &inv, nil
}

func (m *memRepo) FindByNumber(_ context.Context, vendorID int64, number string) (*Invoice, error) {
	for _, inv := range m.invoices {
		if inv.VendorID == vendorID && inv.Number == number {
			return &inv, nil
		}
	}
	return nil, ErrNotFound
}

func (m *memRepo) Update(_ context.Context, inv *Invoice) error {
	m.invoices[inv.ID] = *inv
	return nil
}

func (m *memRepo) List(context.Context, Filter) ([]Invoice, int64, error) { return nil, 0, nil }

type orders map[int64]purchase_order.PurchaseOrder

func (o orders) FindByID(_ context.Context, id int64) (*purchase_order.PurchaseOrder, error) {
	po, ok := o[id]
	if !ok {
		return nil, purchase_order.ErrNotFound
	}
	return &po, nil
}

type fakeERP struct {
	err    error
	fields map[string]interface{}
}

func (f *fakeERP) CreateRecord(_ context.Context, recordType string, fields interface{}) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.fields = fields.(map[string]interface{})
	return "9001", nil
}

type directory struct{}

func (directory) ListContacts(context.Context, int64, models.AccountType) ([]account.AccountContact, error) {
	return []account.AccountContact{{User: account.User{Email: "ap@acme.com", IsActive: true}}}, nil
}

func (directory) List(context.Context, models.UserType) ([]account.User, error) {
	return []account.User{{Email: "books@corp.com", IsActive: true}}, nil
}

type mail struct{ templates []string }

func (m *mail) SendTemplate(_ context.Context, _ []string, name string, _ map[string]string) error {
	m.templates = append(m.templates, name)
	return nil
}

type noTeams struct{}

func (noTeams) Post(context.Context, string, teams.Card) error { return nil }

func newService() (*InvoiceServiceImpl, *memRepo, *fakeERP, *mail) {
	repo := &memRepo{invoices: map[uint]Invoice{}}
	erp := &fakeERP{}
	m := &mail{}
	svc := &InvoiceServiceImpl{
		Repo:     repo,
		Orders:   orders{1: {ID: 1, TranID: "PO1", VendorID: 101}, 2: {ID: 2, VendorID: 202}},
		ERP:      erp,
		Contacts: directory{},
		Users:    directory{},
		Email:    m,
		Teams:    noTeams{},
		Logger:   zap.NewNop(),
		Now:      func() time.Time { return time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC) },
	}
	return svc, repo, erp, m
}

func asVendor() context.Context {
	return session.WithContext(context.Background(), &session.Session{
		UserID: 5, Type: models.UserTypeVendor, AccountIDs: []int64{101}, ActiveAccountID: 101,
	})
}

func asAccounting() context.Context {
	return session.WithContext(context.Background(), &session.Session{UserID: 9, Type: models.UserTypeAccounting})
}

func validRequest() SubmitRequest {
	return SubmitRequest{PurchaseOrderID: 1, Number: "INV-1", Amount: "125.40", InvoiceDate: "2024-06-30"}
}

func TestSubmit(t *testing.T) {
	svc, repo, _, m := newService()

	inv, err := svc.Submit(asVendor(), validRequest())
	if err != nil {
		t.Fatal(err)
	}
	if inv.Status != StatusSubmitted || inv.VendorID != 101 || inv.SubmittedBy != 5 || inv.Amount.StringFixed(2) != "125.40" {
		t.Errorf("invoice = %+v", inv)
	}
	if len(repo.invoices) != 1 || len(m.templates) != 1 || m.templates[0] != "invoice_submitted" {
		t.Errorf("stored = %d, mail = %v", len(repo.invoices), m.templates)
	}

	if _, err := svc.Submit(asVendor(), validRequest()); !errors.Is(err, ErrDuplicate) {
		t.Errorf("duplicate err = %v", err)
	}
}

func TestSubmitRejectsForeignOrderAndBadAmount(t *testing.T) {
	svc, _, _, _ := newService()

	req := validRequest()
	req.PurchaseOrderID = 2
	if _, err := svc.Submit(asVendor(), req); !errors.Is(err, ErrForbidden) {
		t.Errorf("foreign order err = %v", err)
	}

	req = validRequest()
	req.Amount = "-3"
	if _, err := svc.Submit(asVendor(), req); !errors.Is(err, ErrInvalidAmount) {
		t.Errorf("amount err = %v", err)
	}

	if _, err := svc.Submit(asAccounting(), validRequest()); !errors.Is(err, ErrForbidden) {
		t.Errorf("accounting submit err = %v", err)
	}
}

func TestApproveCreatesVendorBill(t *testing.T) {
	svc, _, erp, m := newService()
	inv, err := svc.Submit(asVendor(), validRequest())
	if err != nil {
		t.Fatal(err)
	}

	approved, err := svc.Approve(asAccounting(), inv.ID)
	if err != nil {
		t.Fatal(err)
	}
	if approved.Status != StatusApproved || approved.NetSuiteBillID != "9001" {
		t.Errorf("invoice = %+v", approved)
	}
	if approved.ReviewedBy == nil || *approved.ReviewedBy != 9 || approved.ReviewedAt == nil {
		t.Errorf("review stamp = %v %v", approved.ReviewedBy, approved.ReviewedAt)
	}
	if erp.fields["tranId"] != "INV-1" || erp.fields["tranDate"] != "2024-06-30" {
		t.Errorf("bill fields = %+v", erp.fields)
	}
	if m.templates[len(m.templates)-1] != "invoice_approved" {
		t.Errorf("mail = %v", m.templates)
	}

	if _, err := svc.Approve(asAccounting(), inv.ID); !errors.Is(err, ErrNotReviewable) {
		t.Errorf("second approve err = %v", err)
	}
}

func TestApproveLeavesInvoiceSubmittedWhenERPFails(t *testing.T) {
	svc, repo, erp, _ := newService()
	inv, err := svc.Submit(asVendor(), validRequest())
	if err != nil {
		t.Fatal(err)
	}
	erp.err = errors.New("bad request")

	if _, err := svc.Approve(asAccounting(), inv.ID); err == nil {
		t.Fatal("expected error")
	}
	if repo.invoices[inv.ID].Status != StatusSubmitted {
		t.Errorf("status = %s", repo.invoices[inv.ID].Status)
	}
}

func TestReject(t *testing.T) {
	svc, _, erp, _ := newService()
	inv, err := svc.Submit(asVendor(), validRequest())
	if err != nil {
		t.Fatal(err)
	}
	rejected, err := svc.Reject(asAccounting(), inv.ID, "wrong amount")
	if err != nil {
		t.Fatal(err)
	}
	if rejected.Status != StatusRejected || rejected.Note != "wrong amount" {
		t.Errorf("invoice = %+v", rejected)
	}
	if erp.fields != nil {
		t.Error("reject must not create a bill")
	}
}
