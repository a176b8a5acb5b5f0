// Package ledgererr defines the typed failure taxonomy shared by all ledger
// operations. Services return these synchronously; the handler layer maps each
// kind to an HTTP status via Status().
package ledgererr

import (
	"errors"
	"fmt"
)

// Kind identifies the failure class of a ledger error.
type Kind int

const (
	// KindValidation: malformed or out-of-range input (non-positive amount, bad enum).
	KindValidation Kind = iota
	// KindCompliance: caller KYC not approved or account frozen.
	KindCompliance
	// KindInsufficientSupply: mint/adjust would exceed the asset's remaining supply.
	KindInsufficientSupply
	// KindInsufficientBalance: sell/revoke exceeds the owned amount.
	KindInsufficientBalance
	// KindOrderState: operation invalid for the order's current status/approval.
	KindOrderState
	// KindSelfTrade: buyer and seller are the same user.
	KindSelfTrade
	// KindSellerIneligible: seller failed the re-check at fill time.
	KindSellerIneligible
	// KindNotFound: unknown asset/token/order/user.
	KindNotFound
	// KindInvariant: the sum-rule check failed; indicates a bug or race, the
	// transaction must hard-fail.
	KindInvariant
)

// Error is a typed ledger failure.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Status returns the HTTP status code for the error kind.
func (e *Error) Status() int {
	switch e.Kind {
	case KindValidation:
		return 400
	case KindCompliance, KindSelfTrade, KindSellerIneligible:
		return 403
	case KindNotFound:
		return 404
	case KindOrderState, KindInsufficientSupply, KindInsufficientBalance:
		return 409
	default:
		return 500
	}
}

func newf(k Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: k, Message: fmt.Sprintf(format, args...)}
}

func Validation(format string, args ...interface{}) *Error {
	return newf(KindValidation, format, args...)
}

func Compliance(format string, args ...interface{}) *Error {
	return newf(KindCompliance, format, args...)
}

func InsufficientSupply(format string, args ...interface{}) *Error {
	return newf(KindInsufficientSupply, format, args...)
}

func InsufficientBalance(format string, args ...interface{}) *Error {
	return newf(KindInsufficientBalance, format, args...)
}

func OrderState(format string, args ...interface{}) *Error {
	return newf(KindOrderState, format, args...)
}

func SelfTrade() *Error {
	return newf(KindSelfTrade, "Cannot fill your own order")
}

func SellerIneligible(format string, args ...interface{}) *Error {
	return newf(KindSellerIneligible, format, args...)
}

func NotFound(format string, args ...interface{}) *Error {
	return newf(KindNotFound, format, args...)
}

func Invariant(format string, args ...interface{}) *Error {
	return newf(KindInvariant, format, args...)
}

// IsKind reports whether err is a ledger error of the given kind.
func IsKind(err error, k Kind) bool {
	var le *Error
	return errors.As(err, &le) && le.Kind == k
}

// HTTPStatus returns the status for err, or fallback for non-ledger errors.
func HTTPStatus(err error, fallback int) int {
	var le *Error
	if errors.As(err, &le) {
		return le.Status()
	}
	return fallback
}
