package clone

import (
	"io"
	"time"
)

// Transport is an open byte stream to the radio. Implementations are
// provided by the caller; the engine never opens or configures the
// physical port.
//
// Read returns the bytes available within timeout, possibly fewer than
// requested and possibly zero; it must not block past the timeout.
type Transport interface {
	Read(p []byte, timeout time.Duration) (int, error)
	Write(p []byte) (int, error)
	Flush() error
}

// IOTransport adapts a plain io.ReadWriter (a serial port handle whose
// driver enforces its own read timeouts) to the Transport contract. The
// timeout argument is ignored; the underlying port's timeout applies.
type IOTransport struct {
	RW io.ReadWriter
}

func (t *IOTransport) Read(p []byte, _ time.Duration) (int, error) {
	return t.RW.Read(p)
}

func (t *IOTransport) Write(p []byte) (int, error) {
	return t.RW.Write(p)
}

func (t *IOTransport) Flush() error {
	return nil
}
