package sync

import (
	"encoding/json"
	"errors"
	"testing"

	"supplier-portal/internal/common/models"
	"supplier-portal/internal/features/purchase_order"
	"supplier-portal/internal/netsuite"
)

func decode[T any](t *testing.T, raw string) T {
	t.Helper()
	var v T
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		t.Fatalf("decode %s: %v", raw, err)
	}
	return v
}

func TestMapVendor(t *testing.T) {
	row := decode[netsuite.VendorRow](t, `{"id":"42","entityid":"V42","companyname":" Acme ","email":"A@acme.com",
		"altemail":"b@acme.com","phone":"+1 650-253-0000","url":"acme.com","isinactive":"F",
		"custentity_portal_contacts":"c@acme.com,a@acme.com","defaultaddress":"1 Main St"}`)

	rec, err := MapVendor(row, "US")
	if err != nil {
		t.Fatal(err)
	}
	if rec.Account.ID != 42 || rec.Account.Type != models.AccountTypeVendor || rec.Account.Name != "Acme" {
		t.Errorf("account = %+v", rec.Account)
	}
	want := []string{"a@acme.com", "b@acme.com", "c@acme.com"}
	if len(rec.Emails) != len(want) {
		t.Fatalf("emails = %v", rec.Emails)
	}
	for i := range want {
		if rec.Emails[i] != want[i] {
			t.Errorf("emails[%d] = %q, want %q", i, rec.Emails[i], want[i])
		}
	}
	if rec.Account.Phone != "+16502530000" {
		t.Errorf("phone = %q", rec.Account.Phone)
	}
	if rec.Profile.AltEmail != "b@acme.com" || rec.Profile.Website != "acme.com" || rec.Profile.Address != "1 Main St" {
		t.Errorf("profile = %+v", rec.Profile)
	}
	if !rec.Account.IsActive {
		t.Error("account should be active")
	}
}

func TestMapRejectsMissingID(t *testing.T) {
	if _, err := MapVendor(netsuite.VendorRow{CompanyName: "x"}, "US"); !errors.Is(err, ErrMissingID) {
		t.Errorf("vendor err = %v", err)
	}
	if _, err := MapItem(netsuite.ItemRow{}); !errors.Is(err, ErrMissingID) {
		t.Errorf("item err = %v", err)
	}
	if _, _, err := MapPurchaseOrder(netsuite.PurchaseOrderRecord{}); !errors.Is(err, ErrMissingID) {
		t.Errorf("po err = %v", err)
	}
}

func TestMapBuyerRequiresEmail(t *testing.T) {
	_, err := MapBuyer(netsuite.EmployeeRow{ID: "9", FirstName: "No"})
	if !errors.Is(err, ErrMissingEmail) {
		t.Errorf("err = %v", err)
	}
}

func TestMapPurchaseOrder(t *testing.T) {
	rec := decode[netsuite.PurchaseOrderRecord](t, `{"id":"77","tranId":"PO77","entity":{"id":"101"},
		"status":{"refName":"PurchOrd:F"},"total":"1,250.50","currency":{"id":"1","refName":"USD"},
		"tranDate":"3/4/2024","shipDate":"2024-03-20","custbody_port_date":null,
		"item":{"items":[{"item":{"id":"9","refName":"Widget"},"quantity":2,"rate":"10","amount":"20"}]}}`)

	po, lines, err := MapPurchaseOrder(rec)
	if err != nil {
		t.Fatal(err)
	}
	if po.Status != purchase_order.StatusPendingBill {
		t.Errorf("status = %q", po.Status)
	}
	if po.Total.String() != "1250.5" || po.Currency != "USD" || po.VendorID != 101 {
		t.Errorf("po = %+v", po)
	}
	if po.TranDate == nil || po.TranDate.Format("2006-01-02") != "2024-03-04" {
		t.Errorf("tran date = %v", po.TranDate)
	}
	if po.PortDate != nil || po.BuyerID != nil {
		t.Errorf("expected empty port date and buyer, got %v %v", po.PortDate, po.BuyerID)
	}
	if len(lines) != 1 || lines[0].Line != 1 || lines[0].Quantity != 2 || lines[0].PurchaseOrderID != 77 {
		t.Errorf("lines = %+v", lines)
	}
}
