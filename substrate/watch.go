package substrate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/gorilla/websocket"
)

const (
	submitAndWatchMethod = "author_submitAndWatchExtrinsic"
	extrinsicUpdateEvent = "author_extrinsicUpdate"
	handshakeTimeout     = 10 * time.Second
)

// ErrSent marks a submission that failed after the extrinsic was written to
// the node. The extrinsic may still be included.
var ErrSent = errors.New("extrinsic sent, no answer from node")

type StatusKind int

const (
	StatusFuture StatusKind = iota
	StatusReady
	StatusBroadcast
	StatusInBlock
	StatusRetracted
	StatusFinalityTimeout
	StatusFinalized
	StatusUsurped
	StatusDropped
	StatusInvalid
)

var statusNames = map[string]StatusKind{
	"future":          StatusFuture,
	"ready":           StatusReady,
	"broadcast":       StatusBroadcast,
	"inBlock":         StatusInBlock,
	"retracted":       StatusRetracted,
	"finalityTimeout": StatusFinalityTimeout,
	"finalized":       StatusFinalized,
	"usurped":         StatusUsurped,
	"dropped":         StatusDropped,
	"invalid":         StatusInvalid,
}

func (k StatusKind) String() string {
	for name, kind := range statusNames {
		if kind == k {
			return name
		}
	}
	return "unknown"
}

// Terminal reports whether the node sends no further updates after k.
func (k StatusKind) Terminal() bool {
	switch k {
	case StatusFinalized, StatusFinalityTimeout, StatusUsurped, StatusDropped, StatusInvalid:
		return true
	}
	return false
}

// Status is one transaction pool update. Block is set for the statuses
// that name a block.
type Status struct {
	Kind  StatusKind
	Block Hash
}

// UnmarshalJSON accepts both shapes the node uses: a bare string for
// statuses without data and a single key object otherwise.
func (s *Status) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		kind, ok := statusNames[name]
		if !ok {
			return fmt.Errorf("unknown extrinsic status %q", name)
		}
		*s = Status{Kind: kind}
		return nil
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("extrinsic status: %w", err)
	}
	if len(obj) != 1 {
		return fmt.Errorf("extrinsic status: want one key, got %d", len(obj))
	}
	for name, raw := range obj {
		kind, ok := statusNames[name]
		if !ok {
			return fmt.Errorf("unknown extrinsic status %q", name)
		}
		*s = Status{Kind: kind}
		switch kind {
		case StatusInBlock, StatusRetracted, StatusFinalityTimeout, StatusFinalized, StatusUsurped:
			if err := json.Unmarshal(raw, &s.Block); err != nil {
				return fmt.Errorf("%s status: %w", name, err)
			}
		}
	}
	return nil
}

// RPCError is an error object returned by the node.
type RPCError struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

func (e *RPCError) Error() string {
	if len(e.Data) > 0 {
		return fmt.Sprintf("%s (code %d): %s", e.Message, e.Code, e.Data)
	}
	return fmt.Sprintf("%s (code %d)", e.Message, e.Code)
}

// Rejected reports whether the node refused the extrinsic outright, so it
// can never be included.
func (e *RPCError) Rejected() bool {
	// 1010 invalid transaction, 1011 unknown validity, 1012 temporarily
	// banned, 1013 already imported, 1014 priority too low
	return e.Code >= 1010 && e.Code <= 1016
}

type wsRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      int           `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
}

type wsMessage struct {
	ID     *int            `json:"id,omitempty"`
	Method string          `json:"method,omitempty"`
	Result json.RawMessage `json:"result,omitempty"`
	Error  *RPCError       `json:"error,omitempty"`
	Params *struct {
		Subscription json.RawMessage `json:"subscription"`
		Result       json.RawMessage `json:"result"`
	} `json:"params,omitempty"`
}

// Watch follows one submitted extrinsic. Statuses is closed after a
// terminal status, after Close, or when the connection fails, in which case
// Err returns the cause.
type Watch struct {
	Hash     Hash
	Statuses <-chan Status

	conn      *websocket.Conn
	closing   chan struct{}
	closeOnce sync.Once

	mu  sync.Mutex
	err error
}

// NewWatch wraps a status stream produced elsewhere, such as a node
// simulator.
func NewWatch(hash Hash, statuses <-chan Status) *Watch {
	return &Watch{Hash: hash, Statuses: statuses, closing: make(chan struct{})}
}

// SubmitAndWatch submits a signed extrinsic over a dedicated websocket
// connection. An *RPCError is returned when the pool refuses it. Failures
// after the request was written wrap ErrSent.
func (c *Client) SubmitAndWatch(ctx context.Context, xt []byte, hash Hash) (*Watch, error) {
	dialer := websocket.Dialer{HandshakeTimeout: handshakeTimeout}
	conn, _, err := dialer.DialContext(ctx, wsURL(c.cfg.URL), nil)
	if err != nil {
		return nil, fmt.Errorf("opening subscription connection: %w", err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		conn.SetReadDeadline(deadline)
	}
	req := wsRequest{JSONRPC: "2.0", ID: 1, Method: submitAndWatchMethod, Params: []interface{}{hexutil.Encode(xt)}}
	if err := conn.WriteJSON(req); err != nil {
		conn.Close()
		return nil, fmt.Errorf("%s: %w", submitAndWatchMethod, err)
	}
	subID, err := readSubscription(conn)
	if err != nil {
		conn.Close()
		var rpcErr *RPCError
		if errors.As(err, &rpcErr) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrSent, err)
	}
	conn.SetReadDeadline(time.Time{})

	statuses := make(chan Status, 16)
	w := &Watch{Hash: hash, Statuses: statuses, conn: conn, closing: make(chan struct{})}
	c.log.WithField("tx", hash.Hex()).Info("extrinsic submitted")
	go w.readLoop(subID, statuses)
	return w, nil
}

func readSubscription(conn *websocket.Conn) (json.RawMessage, error) {
	for {
		var msg wsMessage
		if err := conn.ReadJSON(&msg); err != nil {
			return nil, fmt.Errorf("%s: %w", submitAndWatchMethod, err)
		}
		if msg.ID == nil || *msg.ID != 1 {
			continue
		}
		if msg.Error != nil {
			return nil, msg.Error
		}
		return msg.Result, nil
	}
}

func (w *Watch) readLoop(subID json.RawMessage, out chan<- Status) {
	defer close(out)
	defer w.conn.Close()
	for {
		var msg wsMessage
		if err := w.conn.ReadJSON(&msg); err != nil {
			select {
			case <-w.closing:
			default:
				w.setErr(fmt.Errorf("extrinsic subscription: %w", err))
			}
			return
		}
		if msg.Method != extrinsicUpdateEvent || msg.Params == nil {
			continue
		}
		if !sameID(subID, msg.Params.Subscription) {
			continue
		}
		var st Status
		if err := json.Unmarshal(msg.Params.Result, &st); err != nil {
			w.setErr(err)
			return
		}
		select {
		case out <- st:
		case <-w.closing:
			return
		}
		if st.Kind.Terminal() {
			return
		}
	}
}

// subscription ids are strings on current nodes and numbers on old ones
func sameID(a, b json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(a), bytes.TrimSpace(b))
}

func (w *Watch) setErr(err error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err == nil {
		w.err = err
	}
}

// Err returns why Statuses closed early, or nil.
func (w *Watch) Err() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.err
}

// Close stops following the extrinsic. The extrinsic itself stays in the
// pool.
func (w *Watch) Close() error {
	w.closeOnce.Do(func() {
		close(w.closing)
		if w.conn != nil {
			w.conn.Close()
		}
	})
	return nil
}
