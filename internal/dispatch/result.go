package dispatch

// Result is the outcome of an action: a value on success, an error on
// failure.
type Result[T any] struct {
	Value T
	Err   error
}

// Success returns a successful result.
func Success[T any](v T) Result[T] {
	return Result[T]{Value: v}
}

// Failure returns a failed result.
func Failure[T any](err error) Result[T] {
	return Result[T]{Err: err}
}

// OK reports whether r succeeded.
func (r Result[T]) OK() bool { return r.Err == nil }

// Get returns the value and the error.
func (r Result[T]) Get() (T, error) { return r.Value, r.Err }

// Completion receives the result of one action. A nil completion is valid
// and discards the result.
type Completion[T any] func(Result[T])

// Complete calls c with r when c is not nil.
func (c Completion[T]) Complete(r Result[T]) {
	if c != nil {
		c(r)
	}
}
