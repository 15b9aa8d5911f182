package clone

// Progress is a snapshot of a running session, emitted after each block
// commit. BytesDone increases monotonically toward BytesTotal.
type Progress struct {
	// Direction of the running session.
	Direction Direction

	// BytesDone is the number of payload bytes committed so far.
	BytesDone int

	// BytesTotal is the number of payload bytes the session will move.
	BytesTotal int

	// BlocksDone is the number of blocks committed so far.
	BlocksDone int
}

// ProgressCallback receives Progress snapshots. It runs on the session's
// goroutine between blocks; implementations should return quickly.
type ProgressCallback func(Progress)

// Logger is an optional logging interface accepted by the engine. It
// allows integration with any logging framework; a nil logger disables
// logging entirely.
type Logger interface {
	// Debug logs a debug message with optional key-value pairs
	Debug(msg string, keysAndValues ...interface{})

	// Info logs an info message with optional key-value pairs
	Info(msg string, keysAndValues ...interface{})

	// Error logs an error message with optional key-value pairs
	Error(msg string, keysAndValues ...interface{})
}
