package modular

// Status is a controller's lifecycle state.
type Status int

const (
	// StatusInitial is the state of a freshly constructed controller.
	StatusInitial Status = iota
	// StatusLoading means Initialize is in flight.
	StatusLoading
	// StatusLoaded means the module completed initialization.
	StatusLoaded
	// StatusError is terminal: the controller must be discarded and a
	// fresh one built to retry.
	StatusError
	// StatusDisposed is the state after Dispose.
	StatusDisposed
)

// String returns the status name for errors and logs.
func (s Status) String() string {
	switch s {
	case StatusInitial:
		return "initial"
	case StatusLoading:
		return "loading"
	case StatusLoaded:
		return "loaded"
	case StatusError:
		return "error"
	case StatusDisposed:
		return "disposed"
	default:
		return "unknown"
	}
}
