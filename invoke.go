package h2reactor

// Invoke runs fn on ex and returns a channel that receives its single
// result once fn completes. It is a small generic convenience for handler
// code that needs to call into a blocking dependency (a database driver, a
// cache client) without hand-rolling a result channel each time.
func Invoke[T any](ex Executor, fn func() T) <-chan T {
	out := make(chan T, 1)

	ex.Run(func() {
		out <- fn()
	})

	return out
}

// InvokeErr is Invoke for functions that may fail, bundling the value and
// error into one result struct so callers can still use a single channel
// receive.
type InvokeResult[T any] struct {
	Value T
	Err   error
}

func InvokeErr[T any](ex Executor, fn func() (T, error)) <-chan InvokeResult[T] {
	out := make(chan InvokeResult[T], 1)

	ex.Run(func() {
		v, err := fn()
		out <- InvokeResult[T]{Value: v, Err: err}
	})

	return out
}
