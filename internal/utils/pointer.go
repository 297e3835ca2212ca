package utils

// Ptr returns a pointer to v, for optional request fields set from literals.
func Ptr[T any](v T) *T {
	return &v
}
