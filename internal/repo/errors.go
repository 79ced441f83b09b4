package repo

import "errors"

var (
	ErrProductNotFound       = errors.New("product not found")
	ErrSupplierNotFound      = errors.New("supplier not found")
	ErrSaleNotFound          = errors.New("sale not found")
	ErrUserNotFound          = errors.New("user not found")
	ErrIssueNotFound         = errors.New("issue not found")
	ErrInvoiceNotFound       = errors.New("invoice not found")
	ErrInvalidQuantityChange = errors.New("quantity change would make stock negative")
	ErrDuplicatedValueUnique = errors.New("duplicated value violates unique constraint")
)
