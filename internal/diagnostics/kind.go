// Package diagnostics implements a closed set of named ErrorKinds, a
// span-carrying BuildError, a distinct fatal InternalError, and a Log
// that accumulates BuildErrors with per-kind masking for tests.
package diagnostics

// ErrorKind is a machine-readable error classification over a fixed
// enumeration of build-time error categories.
type ErrorKind string

const (
	EUnknownName                                    ErrorKind = "eUnknownName"
	ERedefinition                                    ErrorKind = "eRedefinition"
	EWriteToImmutable                                ErrorKind = "eWriteToImmutable"
	ENoImplicitConversion                            ErrorKind = "eNoImplicitConversion"
	EInvalidArguments                                ErrorKind = "eInvalidArguments"
	ENoSuchMember                                    ErrorKind = "eNoSuchMember"
	ENotInFunBodyContext                             ErrorKind = "eNotInFunBodyContext"
	EUnreachableCode                                 ErrorKind = "eUnreachableCode"
	ECTConstRequired                                 ErrorKind = "eCTConstRequired"
	ERetTypeCantHaveMutQualifier                     ErrorKind = "eRetTypeCantHaveMutQualifier"
	ESameArgWasDefinedMultipleTimes                  ErrorKind = "eSameArgWasDefinedMultipleTimes"
	EObjectExpected                                  ErrorKind = "eObjectExpected"
	EOnlyLocalStorageDurationApplicable              ErrorKind = "eOnlyLocalStorageDurationApplicable"
	ENonIgnoreAccessToLocalDataObjectBeforeItsInit   ErrorKind = "eNonIgnoreAccessToLocalDataObjectBeforeItsInitialization"
	EComputedValueNotUsed                            ErrorKind = "eComputedValueNotUsed"
	EMultipleInitializers                            ErrorKind = "eMultipleInitializers"
)

// allKinds lists every ErrorKind.
var allKinds = []ErrorKind{
	EUnknownName, ERedefinition, EWriteToImmutable, ENoImplicitConversion,
	EInvalidArguments, ENoSuchMember, ENotInFunBodyContext, EUnreachableCode,
	ECTConstRequired, ERetTypeCantHaveMutQualifier, ESameArgWasDefinedMultipleTimes,
	EObjectExpected, EOnlyLocalStorageDurationApplicable,
	ENonIgnoreAccessToLocalDataObjectBeforeItsInit, EComputedValueNotUsed,
	EMultipleInitializers,
}
