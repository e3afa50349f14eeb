package trips

// Option configures CSV reading.
type Option func(*options)

type options struct {
	strict bool
	comma  rune
}

func defaultOptions() options {
	return options{comma: ','}
}

// Strict makes the first malformed row fail the whole read instead of being
// skipped.
func Strict() Option {
	return func(o *options) {
		o.strict = true
	}
}

// WithComma sets the field delimiter. The default is ','.
func WithComma(r rune) Option {
	return func(o *options) {
		o.comma = r
	}
}
