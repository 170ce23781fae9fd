package attribute

import "errors"

// Configuration errors. Rejected buffs (unique/stack limits) are not errors.
var (
	ErrNilDefinition      = errors.New("attribute definition is nil")
	ErrNilBuff            = errors.New("buff definition is nil")
	ErrDuplicateAttribute = errors.New("attribute already registered")
	ErrAttributeNotFound  = errors.New("attribute not found")
	ErrMissingAppliesTo   = errors.New("buff overrides operate without applies_to")
	ErrOperationCount     = errors.New("operate returned a different number of operations than targets")
	ErrDerivationCycle    = errors.New("attribute derivation cycle")
)
