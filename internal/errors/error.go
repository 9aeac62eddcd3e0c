// Package errors provides custom error types for storefront operations.
package errors

import "errors"

var ErrOutOfStock = errors.New("requested quantity exceeds available stock")
var ErrVariantNotFound = errors.New("variant not found")

var ErrProductNotFound = errors.New("product not found")
var ErrCategoryNotFound = errors.New("category not found")
var ErrCategoryExists = errors.New("category already exists")
var ErrVariantMatrix = errors.New("invalid variant matrix")

var ErrEmailTaken = errors.New("email already registered")
var ErrInvalidCredentials = errors.New("invalid email or password")
var ErrUserNotFound = errors.New("user not found")

var ErrTransactionBegin = errors.New("failed to begin transaction")
var ErrTransactionCommit = errors.New("failed to commit transaction")
var ErrTransactionRollback = errors.New("failed to rollback transaction")
