package counting

// CountingError is a custom error type for counting engine errors
type CountingError string

// Error implements the error interface
func (e CountingError) Error() string {
	return string(e)
}

// Define errors
const (
	ErrNilInput            CountingError = "input cannot be nil"
	ErrEmptyParticipantID  CountingError = "participant ID cannot be empty"
	ErrInvalidSettings     CountingError = "invalid settings"
	ErrInvalidSnapshot     CountingError = "invalid snapshot"
	ErrNilConfig           CountingError = "config cannot be nil"
	ErrNilSettings         CountingError = "settings cannot be nil"
	ErrNilWalletRepo       CountingError = "wallet repository cannot be nil"
	ErrNilCostCurve        CountingError = "cost curve cannot be nil"
	ErrNilClock            CountingError = "clock cannot be nil"
	ErrNilUUIDGenerator    CountingError = "UUID generator cannot be nil"
	ErrInvalidRescueWindow CountingError = "rescue window must be positive"
	ErrNegativeCooldown    CountingError = "failure cooldown cannot be negative"
)
