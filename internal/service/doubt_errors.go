package service

import "errors"

// Doubt workflow errors. Callers match them with errors.Is; wrapped causes stay reachable with errors.As.
var (
	ErrDoubtValidation    = errors.New("invalid doubt payload")
	ErrDoubtNotFound      = errors.New("doubt not found")
	ErrDoubtNotPending    = errors.New("doubt already resolved")
	ErrResolverIneligible = errors.New("resolver is not eligible for this doubt")
	ErrProfileRequired    = errors.New("student profile required")
	ErrDoubtPersistence   = errors.New("doubt store unavailable")
)
