package drain

// Must is a helper that wraps a function call returning (T, error) and
// panics if the error is non-nil. It simplifies initialization code for
// operations that should never fail during normal execution.
//
// Example:
//
//	// Instead of:
//	o, err := drain.New()
//	if err != nil {
//	    panic(err)
//	}
//
//	// You can write:
//	o := drain.Must(drain.New())
//
// Note: Only use Must in initialization code where a panic is acceptable.
// For runtime operations, handle errors explicitly instead.
func Must[T any](res T, err error) T {
	if err != nil {
		panic(err)
	}
	return res
}
