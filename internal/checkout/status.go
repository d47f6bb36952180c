package checkout

// Status is the state of one payment attempt.
type Status string

const (
	StatusIdle          Status = "IDLE"
	StatusSubmitting    Status = "SUBMITTING"
	StatusSucceeded     Status = "SUCCEEDED"
	StatusStockConflict Status = "STOCK_CONFLICT"
	StatusFailed        Status = "FAILED"
)

// IsTerminal reports whether the attempt has settled.
func (s Status) IsTerminal() bool {
	return s == StatusSucceeded || s == StatusStockConflict || s == StatusFailed
}

// String representation (for logging)
func (s Status) String() string {
	return string(s)
}
