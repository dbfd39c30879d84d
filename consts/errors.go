package consts

import "errors"

// Command construction errors. Binder errors wrap one of these so callers can
// classify a failure with errors.Is.
var (
	ErrUnknownTag            = errors.New("unknown tag")
	ErrArgumentCount         = errors.New("wrong argument count")
	ErrArgumentOrder         = errors.New("main argument not in last position")
	ErrComparatorUnsupported = errors.New("comparator not supported")
	ErrInvalidTagValue       = errors.New("invalid tag value")
	ErrDuplicateTag          = errors.New("duplicate tag")
	ErrConflictingTags       = errors.New("conflicting tags")
	ErrTestCount             = errors.New("wrong number of nested tests")
	ErrNestingTooDeep        = errors.New("test nesting too deep")
	ErrMissingGuard          = errors.New("invalid control command guard")
	ErrMissingTag            = errors.New("required tag missing")
)

// Script level errors.
var (
	ErrUnknownCommand       = errors.New("unknown command")
	ErrUnsupportedStructure = errors.New("unsupported script structure")
	ErrUnsupportedExtension = errors.New("unsupported extension")
	ErrScriptNotExecutable  = errors.New("script not executable")
	ErrInvalidConfiguration = errors.New("invalid configuration")
	ErrMalformedRuleComment = errors.New("malformed rule comment")
	ErrScriptTooLarge       = errors.New("script too large")
)
