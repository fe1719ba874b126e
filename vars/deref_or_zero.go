package vars

// DerefOrZero reads optional config fields decoded as pointers.
func DerefOrZero[T any](ptr *T) (ret T) {
	if ptr != nil {
		ret = *ptr
	}
	return
}
