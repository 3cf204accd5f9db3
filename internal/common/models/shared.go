package models

type ContextKey string

const (
	RequestIDKey ContextKey = "request_id"
)

// UserType is the portal role a principal logs in as. A single email can hold
// several types (for example a person who is both a vendor contact and a dealer
// contact), so users are keyed by (email, type).
type UserType string

const (
	UserTypeAdmin      UserType = "admin"
	UserTypeAccounting UserType = "accounting"
	UserTypeBuyer      UserType = "buyer"
	UserTypeVendor     UserType = "vendor"
	UserTypeDealer     UserType = "dealer"
)

func (t UserType) Valid() bool {
	switch t {
	case UserTypeAdmin, UserTypeAccounting, UserTypeBuyer, UserTypeVendor, UserTypeDealer:
		return true
	}
	return false
}

// Internal reports whether the type belongs to an employee rather than an
// external account contact.
func (t UserType) Internal() bool {
	return t == UserTypeAdmin || t == UserTypeAccounting || t == UserTypeBuyer
}

// AccountType mirrors the upstream entity an Account was synced from.
type AccountType string

const (
	AccountTypeVendor AccountType = "vendor"
	AccountTypeDealer AccountType = "dealer"
)

// UserType returns the user type of the contacts fanned out from an account.
func (t AccountType) UserType() UserType {
	if t == AccountTypeDealer {
		return UserTypeDealer
	}
	return UserTypeVendor
}
