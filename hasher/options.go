package hasher

// DefaultMaxDepth is the default maximum container nesting depth.
const DefaultMaxDepth = 512

type options struct {
	maxDepth int
}

// Option configures a Hasher.
type Option func(*options)

// WithMaxDepth sets the maximum container nesting depth.
func WithMaxDepth(depth int) Option {
	return func(o *options) {
		o.maxDepth = depth
	}
}

func defaultOptions() options {
	return options{
		maxDepth: DefaultMaxDepth,
	}
}
