package sync

import (
	"errors"
	"fmt"
	"strings"

	"supplier-portal/internal/common/models"
	"supplier-portal/internal/features/account"
	"supplier-portal/internal/features/item"
	"supplier-portal/internal/features/purchase_order"
	"supplier-portal/internal/netsuite"
)

var (
	ErrMissingID    = errors.New("record has no id")
	ErrMissingEmail = errors.New("record has no usable email")
)

// AccountRecord is a mapped vendor or customer. Emails[0] is the identity email.
type AccountRecord struct {
	Account account.Account
	Profile account.AccountProfile
	Emails  []string
}

func MapVendor(row netsuite.VendorRow, region string) (AccountRecord, error) {
	return mapEntity(models.AccountTypeVendor, row, entityFields{
		ID: row.ID, EntityID: row.EntityID, CompanyName: row.CompanyName,
		Email: row.Email, AltEmail: row.AltEmail, Phone: row.Phone, URL: row.URL,
		IsInactive: row.IsInactive, PortalContacts: row.PortalContacts, Address: row.Address,
	}, region)
}

func MapDealer(row netsuite.CustomerRow, region string) (AccountRecord, error) {
	return mapEntity(models.AccountTypeDealer, row, entityFields{
		ID: row.ID, EntityID: row.EntityID, CompanyName: row.CompanyName,
		Email: row.Email, AltEmail: row.AltEmail, Phone: row.Phone, URL: row.URL,
		IsInactive: row.IsInactive, PortalContacts: row.PortalContacts, Address: row.Address,
	}, region)
}

type entityFields struct {
	ID, EntityID, CompanyName, Email, AltEmail, Phone, URL, IsInactive, PortalContacts, Address netsuite.Flex
}

func mapEntity(accountType models.AccountType, raw interface{}, f entityFields, region string) (AccountRecord, error) {
	id := f.ID.Int64()
	if id == 0 {
		return AccountRecord{}, ErrMissingID
	}

	name := strings.TrimSpace(f.CompanyName.String())
	if name == "" {
		name = strings.TrimSpace(f.EntityID.String())
	}
	emails := netsuite.NormalizeEmails(f.Email, f.AltEmail, f.PortalContacts)
	phone := netsuite.NormalizePhone(f.Phone, region)

	rec := AccountRecord{
		Account: account.Account{
			ID:         id,
			Type:       accountType,
			Name:       name,
			Phone:      phone,
			IsActive:   !netsuite.ParseBool(f.IsInactive),
			RawPayload: models.NewJSONB(raw),
		},
		Profile: account.AccountProfile{
			AccountID:   id,
			AccountType: accountType,
			Phone:       phone,
			Address:     strings.TrimSpace(f.Address.String()),
			Website:     strings.TrimSpace(f.URL.String()),
		},
		Emails: emails,
	}
	if len(emails) > 0 {
		rec.Account.Email = emails[0]
	}
	if alt := netsuite.NormalizeEmails(f.AltEmail); len(alt) > 0 {
		rec.Profile.AltEmail = alt[0]
	}
	return rec, nil
}

// MapBuyer maps an employee to a buyer user. Employees without an email
// cannot log in and are rejected.
func MapBuyer(row netsuite.EmployeeRow) (account.User, error) {
	id := row.ID.Int64()
	if id == 0 {
		return account.User{}, ErrMissingID
	}
	emails := netsuite.NormalizeEmails(row.Email)
	if len(emails) == 0 {
		return account.User{}, fmt.Errorf("employee %d: %w", id, ErrMissingEmail)
	}
	name := strings.TrimSpace(strings.TrimSpace(row.FirstName.String()) + " " + strings.TrimSpace(row.LastName.String()))
	return account.User{
		Email:      emails[0],
		Type:       models.UserTypeBuyer,
		Name:       name,
		NetSuiteID: &id,
		IsActive:   !netsuite.ParseBool(row.IsInactive),
	}, nil
}

func MapPurchaseOrder(rec netsuite.PurchaseOrderRecord) (purchase_order.PurchaseOrder, []purchase_order.LineItem, error) {
	id := rec.ID.Int64()
	if id == 0 {
		return purchase_order.PurchaseOrder{}, nil, ErrMissingID
	}

	status := rec.Status.ID
	if status == "" {
		status = rec.Status.RefName
	}
	po := purchase_order.PurchaseOrder{
		ID:                id,
		TranID:            rec.TranID.String(),
		VendorID:          rec.Entity.ID.Int64(),
		Status:            purchase_order.Status(netsuite.StatusCode(status)),
		Total:             netsuite.ParseMoney(rec.Total),
		Currency:          rec.Currency.RefName.String(),
		TranDate:          netsuite.ParseDate(rec.TranDate),
		DueDate:           netsuite.ParseDate(rec.DueDate),
		ShipDate:          netsuite.ParseDate(rec.ShipDate),
		PortDate:          netsuite.ParseDate(rec.PortDate),
		EstimatedDelivery: netsuite.ParseDate(rec.EstimatedDelivery),
		Memo:              rec.Memo.String(),
		RawPayload:        models.NewJSONB(rec),
	}
	if buyer := rec.Employee.ID.Int64(); buyer != 0 {
		po.BuyerID = &buyer
	}

	lines := make([]purchase_order.LineItem, 0, len(rec.Item.Items))
	for i, l := range rec.Item.Items {
		n := int(l.Line.Int64())
		if n == 0 {
			n = i + 1
		}
		lines = append(lines, purchase_order.LineItem{
			PurchaseOrderID:     id,
			Line:                n,
			ItemID:              l.Item.ID.Int64(),
			ItemName:            l.Item.RefName.String(),
			Description:         l.Description.String(),
			Quantity:            netsuite.ParseQuantity(l.Quantity),
			QuantityReceived:    netsuite.ParseQuantity(l.QuantityReceived),
			Rate:                netsuite.ParseMoney(l.Rate),
			Amount:              netsuite.ParseMoney(l.Amount),
			ExpectedReceiptDate: netsuite.ParseDate(l.ExpectedReceiptDate),
		})
	}
	return po, lines, nil
}

func MapItem(row netsuite.ItemRow) (item.Item, error) {
	id := row.ID.Int64()
	if id == 0 {
		return item.Item{}, ErrMissingID
	}
	name := strings.TrimSpace(row.DisplayName.String())
	if name == "" {
		name = strings.TrimSpace(row.ItemID.String())
	}
	return item.Item{
		ID:             id,
		SKU:            strings.TrimSpace(row.ItemID.String()),
		Name:           name,
		Description:    row.Description.String(),
		QuantityOnHand: netsuite.ParseQuantity(row.QuantityOnHand),
		Price:          netsuite.ParseMoney(row.Price),
		IsActive:       !netsuite.ParseBool(row.IsInactive),
	}, nil
}
