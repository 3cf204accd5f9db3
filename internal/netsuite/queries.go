package netsuite

import "fmt"

const (
	VendorQuery = `SELECT v.id, v.entityid, v.companyname, v.email, v.altemail, v.phone, v.url,
  v.isinactive, v.custentity_portal_contacts, v.defaultaddress
FROM vendor v
ORDER BY v.id`

	BuyerQuery = `SELECT e.id, e.firstname, e.lastname, e.email, e.isinactive
FROM employee e
WHERE e.purchaseorderapprover = 'T' OR e.isjobresource = 'T'
ORDER BY e.id`

	PurchaseOrderQuery = `SELECT t.id, t.tranid, t.entity, t.status, t.lastmodifieddate
FROM transaction t
WHERE t.type = 'PurchOrd'
ORDER BY t.id`

	ItemQuery = `SELECT i.id, i.itemid, i.displayname, i.salesdescription, i.baseprice, i.isinactive,
  SUM(ib.quantityonhand) AS quantityonhand
FROM item i
LEFT JOIN inventoryitemlocations ib ON ib.item = i.id
WHERE i.custitem_dealer_visible = 'T'
GROUP BY i.id, i.itemid, i.displayname, i.salesdescription, i.baseprice, i.isinactive
ORDER BY i.id`
)

// DealerQuery selects customers in the configured dealer category.
func DealerQuery(category string) string {
	return fmt.Sprintf(`SELECT c.id, c.entityid, c.companyname, c.email, c.altemail, c.phone, c.url,
  c.isinactive, c.custentity_portal_contacts, c.defaultaddress, c.category
FROM customer c
WHERE c.category = %s
ORDER BY c.id`, quoteLiteral(category))
}

func quoteLiteral(s string) string {
	out := make([]byte, 0, len(s)+2)
	out = append(out, '\'')
	for i := 0; i < len(s); i++ {
		if s[i] == '\'' {
			out = append(out, '\'')
		}
		out = append(out, s[i])
	}
	return string(append(out, '\''))
}
