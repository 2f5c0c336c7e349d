package models

import (
	"errors"
)

var (
	ErrNoRecord             = errors.New("models: no matching record found")
	ErrForbidden            = errors.New("forbidden")
	ErrUserNotFound         = errors.New("models: user not found")
	ErrPropertyNotFound     = errors.New("property not found")
	ErrPropertyUnavailable  = errors.New("property is not available for rent")
	ErrContractNotFound     = errors.New("contract not found")
	ErrRequestNotFound      = errors.New("contract request not found")
	ErrSubscriptionNotFound = errors.New("subscription not found")
	ErrConversationNotFound = errors.New("conversation not found")
	ErrReviewNotFound       = errors.New("review not found")
	ErrUnknownPlan          = errors.New("unknown subscription plan")
)

// Contract workflow gates. Their text is shown to the user as is.
var (
	ErrProRequired        = errors.New("an active PRO plan is required to request a contract")
	ErrKYCRequired        = errors.New("identity verification is required before requesting a contract")
	ErrOwnPropertyRequest = errors.New("you cannot request a contract on your own property")
	ErrDuplicateRequest   = errors.New("there is already a pending request for this property")
	ErrDisclaimerRequired = errors.New("the disclaimer must be accepted to approve the contract")
	ErrAlreadyReviewed    = errors.New("you have already reviewed this property")
	ErrInvalidInput       = errors.New("invalid input")
)
