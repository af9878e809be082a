package submission

// Availability is a dependency that may not be configured in this
// deployment. The zero value is unconfigured.
type Availability[T any] struct {
	handle     T
	configured bool
}

func Configured[T any](handle T) Availability[T] {
	return Availability[T]{handle: handle, configured: true}
}

func Unconfigured[T any]() Availability[T] {
	return Availability[T]{}
}

func (a Availability[T]) Get() (T, bool) {
	return a.handle, a.configured
}

func (a Availability[T]) Configured() bool {
	return a.configured
}
