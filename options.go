package raycast

type options struct {
	logger      Logger
	workers     int
	maxDistance float32
}

// Option configures a RayCastingService.
type Option func(*options)

func WithLogger(l Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithWorkers switches the service to deferred execution: Query schedules the
// intersection pass on at most n goroutines and FetchResult waits for it.
// n <= 0 keeps the synchronous default.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}

// WithMaxDistance discards hits farther than d from the ray origin. Zero
// means unbounded.
func WithMaxDistance(d float32) Option {
	return func(o *options) {
		o.maxDistance = max(d, 0)
	}
}
