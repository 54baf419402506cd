package segment

import (
	"errors"
	"fmt"
)

// Configuration errors. Each specific error wraps ErrInvalidConfig.
var (
	ErrInvalidConfig      = errors.New("segment: invalid configuration")
	ErrUnknownObjective   = fmt.Errorf("%w: unknown objective (available: shs, mcv, cda)", ErrInvalidConfig)
	ErrNotImplemented     = fmt.Errorf("%w: objective not implemented", ErrInvalidConfig)
	ErrInvalidLengthRange = fmt.Errorf("%w: invalid allowed segment length range", ErrInvalidConfig)
	ErrNonContiguousMask  = fmt.Errorf("%w: eligible split indices are not contiguous", ErrInvalidConfig)
	ErrNoVariables        = fmt.Errorf("%w: no monitored variables", ErrInvalidConfig)
	ErrVariableCount      = fmt.Errorf("%w: observation has wrong number of values", ErrInvalidConfig)
	ErrUnknownColumn      = fmt.Errorf("%w: unknown column", ErrInvalidConfig)
	ErrRaggedTable        = fmt.Errorf("%w: columns have different lengths", ErrInvalidConfig)
)

// Infeasible-constraint errors. Each wraps ErrInfeasibleConstraint.
var (
	ErrInfeasibleConstraint = errors.New("segment: length constraint cannot be satisfied")
	ErrNoEligibleSplit      = fmt.Errorf("%w: no split index leaves both sides longer than the minimum", ErrInfeasibleConstraint)
	ErrNoComparableSplit    = fmt.Errorf("%w: every eligible split has an undefined score", ErrInfeasibleConstraint)
	ErrNotConverged         = fmt.Errorf("%w: segmentation did not converge", ErrInfeasibleConstraint)
)
