package domain

// Status is the lifecycle state of a cache entry.
type Status uint8

const (
	// StatusUninitialized is the state of an entry that has never been fetched.
	StatusUninitialized Status = iota
	// StatusLoading indicates a read is in flight.
	StatusLoading
	// StatusSuccess indicates the last read succeeded.
	StatusSuccess
	// StatusError indicates the last read failed.
	StatusError
)

// String returns a lower-case name for the status.
func (s Status) String() string {
	switch s {
	case StatusUninitialized:
		return "uninitialized"
	case StatusLoading:
		return "loading"
	case StatusSuccess:
		return "success"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// ParseStatus is the inverse of Status.String.
func ParseStatus(s string) (Status, bool) {
	for _, st := range []Status{StatusUninitialized, StatusLoading, StatusSuccess, StatusError} {
		if st.String() == s {
			return st, true
		}
	}
	return 0, false
}

// Settled reports whether the status is success or error.
func (s Status) Settled() bool {
	return s == StatusSuccess || s == StatusError
}

// CanTransition reports whether an entry may move from s to next.
// Every path into success or error passes through loading.
func (s Status) CanTransition(next Status) bool {
	switch next {
	case StatusLoading:
		return s == StatusUninitialized || s.Settled()
	case StatusSuccess, StatusError:
		return s == StatusLoading
	default:
		return false
	}
}
