package configs

// All decodes the value at path from every file defining it, in loader order.
func All[T any](loader Loader, path string) (ret []T, err error) {
	for value, err := range loader.IterCueValues(path) {
		if err != nil {
			return nil, err
		}
		var v T
		if err := value.Decode(&v); err != nil {
			return nil, err
		}
		ret = append(ret, v)
	}
	return ret, nil
}
