package grid3d

import "context"

// Options tunes how a repair or adjustment runs. The zero value (or a nil
// *Options) runs serially with logging disabled.
type Options struct {
	// Workers is the number of goroutines sharing the pillar sweep.
	// Values below 2 run the sweep on the calling goroutine.
	Workers int

	// Logs receives diagnostics. Nil disables logging.
	Logs *Logs

	// Context, when set, is checked between pillar batches.
	Context context.Context
}

// WithWorkers sets the number of sweep workers.
func (o *Options) WithWorkers(n int) *Options {
	o.Workers = n
	return o
}

// WithLogs sets the logging streams.
func (o *Options) WithLogs(l *Logs) *Options {
	o.Logs = l
	return o
}

// WithContext sets the context checked between pillar batches.
func (o *Options) WithContext(ctx context.Context) *Options {
	o.Context = ctx
	return o
}

func (o *Options) logs() *Logs {
	if o == nil {
		return nil
	}
	return o.Logs
}

func (o *Options) workers() int {
	if o == nil || o.Workers < 1 {
		return 1
	}
	return o.Workers
}

func (o *Options) context() context.Context {
	if o == nil || o.Context == nil {
		return context.Background()
	}
	return o.Context
}
