package failure

type Severity int

// runner control flow
const (
	SeverityFatal Severity = iota
	SeverityRecoverable
)

// ClassifiedError is implemented by every package-local error type.
// Recoverable failures are confined to one target; fatal ones would repeat
// for every target of the run. The runner reports both per target.
type ClassifiedError interface {
	error
	Severity() Severity
}
