package netsuite

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Flex decodes a JSON scalar of any kind into its string form. SuiteQL returns
// numbers as strings or numbers depending on the column, and omits nulls.
type Flex string

func (f *Flex) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = Flex(s)
		return nil
	}
	if data[0] == '{' || data[0] == '[' {
		*f = ""
		return nil
	}
	*f = Flex(data)
	return nil
}

func (f Flex) String() string { return string(f) }

// Int64 returns the value as an integer, or 0 when it is not numeric.
func (f Flex) Int64() int64 {
	n, err := strconv.ParseInt(string(f), 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// Ref is the {id, refName} shape the record API uses for references.
type Ref struct {
	ID      Flex `json:"id"`
	RefName Flex `json:"refName"`
}

// VendorRow is one row of VendorQuery.
type VendorRow struct {
	ID             Flex `json:"id"`
	EntityID       Flex `json:"entityid"`
	CompanyName    Flex `json:"companyname"`
	Email          Flex `json:"email"`
	AltEmail       Flex `json:"altemail"`
	Phone          Flex `json:"phone"`
	URL            Flex `json:"url"`
	IsInactive     Flex `json:"isinactive"`
	PortalContacts Flex `json:"custentity_portal_contacts"`
	Address        Flex `json:"defaultaddress"`
}

// CustomerRow is one row of DealerQuery.
type CustomerRow struct {
	ID             Flex `json:"id"`
	EntityID       Flex `json:"entityid"`
	CompanyName    Flex `json:"companyname"`
	Email          Flex `json:"email"`
	AltEmail       Flex `json:"altemail"`
	Phone          Flex `json:"phone"`
	URL            Flex `json:"url"`
	IsInactive     Flex `json:"isinactive"`
	PortalContacts Flex `json:"custentity_portal_contacts"`
	Address        Flex `json:"defaultaddress"`
	Category       Flex `json:"category"`
}

// EmployeeRow is one row of BuyerQuery.
type EmployeeRow struct {
	ID         Flex `json:"id"`
	FirstName  Flex `json:"firstname"`
	LastName   Flex `json:"lastname"`
	Email      Flex `json:"email"`
	IsInactive Flex `json:"isinactive"`
}

// PurchaseOrderRow is the summary row; the detail comes from GetRecord.
type PurchaseOrderRow struct {
	ID         Flex `json:"id"`
	TranID     Flex `json:"tranid"`
	Entity     Flex `json:"entity"`
	Status     Flex `json:"status"`
	LastModify Flex `json:"lastmodifieddate"`
}

type PurchaseOrderLine struct {
	Line                Flex `json:"line"`
	Item                Ref  `json:"item"`
	Description         Flex `json:"description"`
	Quantity            Flex `json:"quantity"`
	QuantityReceived    Flex `json:"quantityReceived"`
	Rate                Flex `json:"rate"`
	Amount              Flex `json:"amount"`
	ExpectedReceiptDate Flex `json:"expectedReceiptDate"`
}

// PurchaseOrderRecord is the expanded purchaseOrder record.
type PurchaseOrderRecord struct {
	ID                Flex `json:"id"`
	TranID            Flex `json:"tranId"`
	Entity            Ref  `json:"entity"`
	Status            Ref  `json:"status"`
	Total             Flex `json:"total"`
	Currency          Ref  `json:"currency"`
	TranDate          Flex `json:"tranDate"`
	DueDate           Flex `json:"dueDate"`
	ShipDate          Flex `json:"shipDate"`
	PortDate          Flex `json:"custbody_port_date"`
	EstimatedDelivery Flex `json:"custbody_estimated_delivery"`
	Employee          Ref  `json:"employee"`
	Memo              Flex `json:"memo"`
	Item              struct {
		Items []PurchaseOrderLine `json:"items"`
	} `json:"item"`
}

// ItemRow is one row of ItemQuery.
type ItemRow struct {
	ID             Flex `json:"id"`
	ItemID         Flex `json:"itemid"`
	DisplayName    Flex `json:"displayname"`
	Description    Flex `json:"salesdescription"`
	QuantityOnHand Flex `json:"quantityonhand"`
	Price          Flex `json:"baseprice"`
	IsInactive     Flex `json:"isinactive"`
}
