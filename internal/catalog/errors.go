package catalog

import "errors"

var (
	ErrProductNotFound  = errors.New("product not found")
	ErrSupplierNotFound = errors.New("supplier not found")
	ErrNotDeleted       = errors.New("record is not deleted")
	ErrDuplicateName    = errors.New("supplier name already exists")
	ErrDuplicateEmail   = errors.New("supplier email already exists")
)
