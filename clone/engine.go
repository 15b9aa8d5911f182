package clone

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/kf7lze/radioclone/memmap"
)

// Direction of a clone session.
type Direction int

const (
	// DirDownload moves the image radio -> host.
	DirDownload Direction = iota

	// DirUpload moves the image host -> radio.
	DirUpload
)

func (d Direction) String() string {
	if d == DirUpload {
		return "upload"
	}
	return "download"
}

// State of a clone session.
type State int

const (
	StateIdle State = iota
	StateHandshaking
	StateTransferring
	StateFinishing
	StateCompleted
	StateAborted
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateHandshaking:
		return "handshaking"
	case StateTransferring:
		return "transferring"
	case StateFinishing:
		return "finishing"
	case StateCompleted:
		return "completed"
	case StateAborted:
		return "aborted"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Result is the terminal report of a clone session.
type Result struct {
	Direction Direction
	State     State

	// BytesDone and BlocksDone count committed payload.
	BytesDone  int
	BlocksDone int

	// Attempts counts block exchanges including retries.
	Attempts int

	// Err is the terminal error, nil on full success. A completed
	// download whose closing handshake failed carries a *FinishError
	// here while State remains StateCompleted.
	Err error
}

// Engine drives clone transfers for one radio, parameterized by the
// radio's Protocol. The engine itself is stateless between sessions; each
// Download or Upload call runs one session to completion on the calling
// goroutine.
//
// Concurrent sessions on one engine (or one transport) are not supported.
type Engine struct {
	transport Transport
	proto     Protocol
	config    Config

	last Result
}

// New creates an Engine for the given transport and protocol description.
//
// Example:
//
//	eng, err := clone.New(port, driver.Protocol,
//	    clone.WithProgressCallback(showProgress),
//	)
func New(transport Transport, proto Protocol, opts ...Option) (*Engine, error) {
	if transport == nil {
		panic("clone: transport cannot be nil")
	}
	if err := proto.Validate(); err != nil {
		return nil, err
	}

	var cfg Config
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Engine{transport: transport, proto: proto, config: cfg}, nil
}

// Result returns the report of the most recent session.
func (e *Engine) Result() Result {
	return e.last
}

// Download runs a full radio-to-host clone and returns the populated
// memory map.
//
// On a mid-transfer abort the error is a *TransferError and the returned
// map holds every block committed before the failure; the caller decides
// whether the partial image is worth keeping. On a handshake failure the
// map is nil. A *FinishError alongside a non-nil map means the image is
// complete and only the closing exchange failed.
func (e *Engine) Download(ctx context.Context) (*memmap.MemoryMap, error) {
	mm := memmap.New(e.proto.TotalSize)
	mm.Fill(0xFF)

	res := Result{Direction: DirDownload, State: StateHandshaking}
	defer func() { e.last = res }()

	e.logInfo("download starting", "total", e.proto.TotalSize, "block", e.proto.BlockSize)

	if err := e.handshake(e.proto.Handshake); err != nil {
		res.State = StateAborted
		res.Err = err
		e.logError("handshake failed", "err", err)
		return nil, err
	}

	res.State = StateTransferring
	total := e.proto.payloadTotal()

	for _, b := range e.proto.blocks() {
		if ctx.Err() != nil {
			return mm, e.abort(&res, ErrCancelled)
		}

		data, err := e.transferWithRetry(&res, b, nil)
		if err != nil {
			return mm, e.abort(&res, err)
		}

		// Commit is atomic: the block validated before any byte lands
		// in the map.
		if err := mm.WriteAt(b.addr, data); err != nil {
			return mm, e.abort(&res, err)
		}
		res.BytesDone += b.size
		res.BlocksDone++
		e.reportProgress(Progress{
			Direction:  DirDownload,
			BytesDone:  res.BytesDone,
			BytesTotal: total,
			BlocksDone: res.BlocksDone,
		})
	}

	res.State = StateFinishing
	if err := e.handshake(e.proto.Finish); err != nil {
		// The image is complete; a failed goodbye does not invalidate it.
		res.State = StateCompleted
		res.Err = &FinishError{Err: err}
		e.logError("closing handshake failed", "err", err)
		return mm, res.Err
	}

	res.State = StateCompleted
	e.logInfo("download complete", "bytes", res.BytesDone, "blocks", res.BlocksDone)
	return mm, nil
}

// Upload runs a full host-to-radio clone from mm. The map must be at least
// TotalSize bytes; blocks outside the protocol's ranges are never sent.
func (e *Engine) Upload(ctx context.Context, mm *memmap.MemoryMap) error {
	if mm == nil {
		panic("clone: nil memory map")
	}
	if mm.Len() < e.proto.TotalSize {
		return fmt.Errorf("clone: image of %d bytes smaller than protocol total %d",
			mm.Len(), e.proto.TotalSize)
	}

	res := Result{Direction: DirUpload, State: StateHandshaking}
	defer func() { e.last = res }()

	e.logInfo("upload starting", "total", e.proto.TotalSize, "block", e.proto.BlockSize)

	if err := e.handshake(e.proto.Handshake); err != nil {
		res.State = StateAborted
		res.Err = err
		e.logError("handshake failed", "err", err)
		return err
	}

	res.State = StateTransferring
	total := e.proto.payloadTotal()

	for _, b := range e.proto.blocks() {
		if ctx.Err() != nil {
			return e.abort(&res, ErrCancelled)
		}

		payload, err := mm.ReadAt(b.addr, b.size)
		if err != nil {
			return e.abort(&res, err)
		}

		if _, err := e.transferWithRetry(&res, b, payload); err != nil {
			return e.abort(&res, err)
		}
		res.BytesDone += b.size
		res.BlocksDone++
		e.reportProgress(Progress{
			Direction:  DirUpload,
			BytesDone:  res.BytesDone,
			BytesTotal: total,
			BlocksDone: res.BlocksDone,
		})
	}

	res.State = StateFinishing
	if err := e.handshake(e.proto.Finish); err != nil {
		res.State = StateAborted
		res.Err = err
		return err
	}

	res.State = StateCompleted
	e.logInfo("upload complete", "bytes", res.BytesDone, "blocks", res.BlocksDone)
	return nil
}

// abort finalizes a session as Aborted, wrapping cause with the partial
// progress counters.
func (e *Engine) abort(res *Result, cause error) error {
	res.State = StateAborted
	res.Err = &TransferError{
		Direction:  res.Direction,
		BytesDone:  res.BytesDone,
		BlocksDone: res.BlocksDone,
		Err:        cause,
	}
	e.logError("transfer aborted",
		"err", cause, "bytes", res.BytesDone, "blocks", res.BlocksDone)
	return res.Err
}

// transferWithRetry runs one block exchange, retrying transient failures
// up to the protocol's budget. payload nil means download (the block's
// data is returned); non-nil means upload.
func (e *Engine) transferWithRetry(res *Result, b block, payload []byte) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= e.proto.Retries; attempt++ {
		res.Attempts++

		var data []byte
		var err error
		if payload == nil {
			data, err = e.readBlock(b)
		} else {
			err = e.writeBlock(b, payload)
		}
		if err == nil {
			return data, nil
		}
		lastErr = err
		e.logDebug("block attempt failed",
			"addr", fmt.Sprintf("0x%04X", b.addr), "attempt", attempt+1, "err", err)
	}
	return nil, lastErr
}

// readBlock performs one download exchange:
// request [ReadCmd][ADDR][LEN], response [RespCmd][ADDR][LEN][DATA][SUM],
// then the optional ack swap.
func (e *Engine) readBlock(b block) ([]byte, error) {
	req := blockHeader(e.proto.ReadCmd, b)
	if err := e.send(req); err != nil {
		return nil, err
	}

	wantHdr := blockHeader(e.proto.RespCmd, b)
	hdr, err := e.readExact(len(wantHdr))
	if err != nil {
		return nil, err
	}
	if !bytes.Equal(hdr, wantHdr) {
		return nil, &NakError{Addr: b.addr, Got: hdr[0]}
	}

	data, err := e.readExact(b.size)
	if err != nil {
		return nil, err
	}

	if n := e.proto.Checksum.Size(); n > 0 {
		sum, err := e.readExact(n)
		if err != nil {
			return nil, err
		}
		if !e.proto.Checksum.Verify(data, sum) {
			return nil, &ChecksumError{Addr: b.addr}
		}
	}

	if e.proto.Ack != 0 {
		if err := e.send([]byte{e.proto.Ack}); err != nil {
			return nil, err
		}
		ack, err := e.readExact(1)
		if err != nil {
			return nil, err
		}
		if ack[0] != e.proto.Ack {
			return nil, &NakError{Addr: b.addr, Got: ack[0]}
		}
	}

	return data, nil
}

// writeBlock performs one upload exchange:
// [WriteCmd][ADDR][LEN][DATA][SUM], then the radio's ack.
func (e *Engine) writeBlock(b block, payload []byte) error {
	frame := blockHeader(e.proto.WriteCmd, b)
	frame = append(frame, payload...)
	frame = append(frame, e.proto.Checksum.Sum(payload)...)

	if err := e.send(frame); err != nil {
		return err
	}

	if e.proto.Ack != 0 {
		ack, err := e.readExact(1)
		if err != nil {
			return err
		}
		if ack[0] != e.proto.Ack {
			return &NakError{Addr: b.addr, Got: ack[0]}
		}
	}
	return nil
}

// handshake runs an identification or closing exchange. Any mismatch or
// timeout is a *ProtocolMismatchError; the engine never proceeds against
// a radio that answered wrong.
func (e *Engine) handshake(steps []HandshakeStep) error {
	for i, step := range steps {
		if len(step.Send) > 0 {
			if err := e.send(step.Send); err != nil {
				return &ProtocolMismatchError{Step: i, Expected: step.Expect}
			}
		}
		if step.Delay > 0 {
			time.Sleep(step.Delay)
		}

		n := step.replyLen()
		if n == 0 {
			continue
		}
		reply, err := e.readExact(n)
		if err != nil {
			return &ProtocolMismatchError{Step: i, Expected: step.Expect}
		}

		match := reply
		if step.Prefix && len(reply) >= len(step.Expect) {
			match = reply[:len(step.Expect)]
		}
		if !bytes.Equal(match, step.Expect) {
			return &ProtocolMismatchError{Step: i, Expected: step.Expect, Actual: reply}
		}
		e.logDebug("handshake step ok", "step", i, "reply", fmt.Sprintf("% X", reply))
	}
	return nil
}

func (e *Engine) send(p []byte) error {
	if _, err := e.transport.Write(p); err != nil {
		return fmt.Errorf("clone: write: %w", err)
	}
	return e.transport.Flush()
}

// readExact reads exactly n bytes, bounding each read with the per-byte
// timeout and the whole exchange with the block timeout. A read that makes
// no progress within its timeout fails as *TimeoutError.
func (e *Engine) readExact(n int) ([]byte, error) {
	buf := make([]byte, n)
	deadline := time.Now().Add(e.proto.BlockTimeout)

	got := 0
	for got < n {
		if time.Now().After(deadline) {
			return nil, &TimeoutError{Want: n, Got: got}
		}
		nn, err := e.transport.Read(buf[got:], e.proto.ByteTimeout)
		if err != nil {
			return nil, fmt.Errorf("clone: read: %w", err)
		}
		if nn == 0 {
			return nil, &TimeoutError{Want: n, Got: got}
		}
		got += nn
	}
	return buf, nil
}

// blockHeader frames a command byte with a big-endian 16-bit address and a
// one-byte length.
func blockHeader(cmd byte, b block) []byte {
	return []byte{cmd, byte(b.addr >> 8), byte(b.addr), byte(b.size)}
}

func (e *Engine) reportProgress(p Progress) {
	if e.config.ProgressCallback != nil {
		e.config.ProgressCallback(p)
	}
}

func (e *Engine) logDebug(msg string, keysAndValues ...interface{}) {
	if e.config.Logger != nil {
		e.config.Logger.Debug(msg, keysAndValues...)
	}
}

func (e *Engine) logInfo(msg string, keysAndValues ...interface{}) {
	if e.config.Logger != nil {
		e.config.Logger.Info(msg, keysAndValues...)
	}
}

func (e *Engine) logError(msg string, keysAndValues ...interface{}) {
	if e.config.Logger != nil {
		e.config.Logger.Error(msg, keysAndValues...)
	}
}
