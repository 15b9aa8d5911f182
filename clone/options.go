package clone

// Config holds the engine's ambient configuration. Protocol timing and
// retry parameters live in Protocol, not here: they are per-radio facts,
// not host-side preferences.
type Config struct {
	// ProgressCallback is invoked after each committed block (optional)
	ProgressCallback ProgressCallback

	// Logger receives engine diagnostics (optional)
	Logger Logger
}

// Option is a functional option for configuring the Engine.
type Option func(*Config)

// WithProgressCallback sets a callback invoked after each committed block.
//
// Example:
//
//	eng := clone.New(port, proto,
//	    clone.WithProgressCallback(func(p clone.Progress) {
//	        fmt.Printf("%d/%d bytes\n", p.BytesDone, p.BytesTotal)
//	    }),
//	)
func WithProgressCallback(callback ProgressCallback) Option {
	return func(c *Config) {
		c.ProgressCallback = callback
	}
}

// WithLogger sets a logger for engine diagnostics.
//
// Example:
//
//	eng := clone.New(port, proto, clone.WithLogger(myLogger))
func WithLogger(logger Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}
