package proxy

// Arguments is the JSON object sent as a tool's "arguments"
type Arguments map[string]any

// NewArguments returns an empty argument set
func NewArguments() Arguments {
	return Arguments{}
}

// Set stores a required argument
func (a Arguments) Set(key string, value any) Arguments {
	a[key] = value
	return a
}

// SetOptional stores opt under key only when it is present
func SetOptional[T any](a Arguments, key string, opt Optional[T]) Arguments {
	if v, ok := opt.Get(); ok {
		a[key] = v
	}
	return a
}
