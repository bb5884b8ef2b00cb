package jsonrpc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"
)

/*
Authorizer attaches credentials to an outgoing request. Implementations
may refuse to do so, in which case the call never leaves the process.
*/
type Authorizer interface {
	Authorize(req *http.Request) error
}

/*
HeaderSource contributes extra headers to every call. Sources are
consulted at send time, so a source that turns up headers later (a payment
token acquired mid-session, say) starts applying on the next call without
any re-wiring.
*/
type HeaderSource interface {
	Headers() map[string]string
}

type RPCClient struct {
	URL           string
	Client        *http.Client
	Authorizer    Authorizer
	HeaderSources []HeaderSource

	seq atomic.Int64
}

func NewRPCClient(url string) *RPCClient {
	return &RPCClient{
		URL:    url,
		Client: &http.Client{Timeout: 30 * time.Second},
	}
}

// AddHeaderSource registers an additional header contributor.
func (c *RPCClient) AddHeaderSource(source HeaderSource) {
	c.HeaderSources = append(c.HeaderSources, source)
}

/*
Call performs a single JSON-RPC 2.0 exchange over HTTP POST and decodes
the result field into result when it is non-nil.

The error return distinguishes the ways a call can go wrong: a
*TransportError when the request never completed, an *HTTPError for
non-OK statuses without an error envelope (402 included, see
IsPaymentRequired), a *DecodeError for unparseable bodies, and the
server's own *errors.RpcError whenever the envelope carries one. An error
field in the envelope wins over the HTTP status.
*/
func (c *RPCClient) Call(
	ctx context.Context,
	method string,
	params any,
	result any,
) error {
	if c.Client == nil {
		c.Client = http.DefaultClient
	}

	payload := NewRequest(c.nextID(), method, nil)

	if params != nil {
		b, err := json.Marshal(params)
		if err != nil {
			return err
		}
		payload.Params = b
	}

	body, err := json.Marshal(payload)

	if err != nil {
		return err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL, bytes.NewReader(body))

	if err != nil {
		return err
	}

	httpReq.Header.Set("Content-Type", "application/json")

	for _, source := range c.HeaderSources {
		for key, value := range source.Headers() {
			httpReq.Header.Set(key, value)
		}
	}

	// Credentials go on last so a header source cannot clobber them.
	if c.Authorizer != nil {
		if err := c.Authorizer.Authorize(httpReq); err != nil {
			return fmt.Errorf("authorization failed: %w", err)
		}
	}

	resp, err := c.Client.Do(httpReq)

	if err != nil {
		return &TransportError{Err: err}
	}

	defer resp.Body.Close()

	// A payment wall never carries a usable envelope, flag it before any
	// decode attempt.
	if resp.StatusCode == http.StatusPaymentRequired {
		io.Copy(io.Discard, resp.Body)
		return &HTTPError{StatusCode: resp.StatusCode}
	}

	data, err := io.ReadAll(resp.Body)

	if err != nil {
		return &TransportError{Err: err}
	}

	var rpcResp RPCResponse

	if err := json.Unmarshal(data, &rpcResp); err != nil {
		if resp.StatusCode != http.StatusOK {
			return &HTTPError{StatusCode: resp.StatusCode}
		}

		return &DecodeError{Err: err}
	}

	if rpcResp.Error != nil {
		return rpcResp.Error
	}

	if resp.StatusCode != http.StatusOK {
		return &HTTPError{StatusCode: resp.StatusCode}
	}

	if result != nil && len(rpcResp.Result) > 0 {
		if err := json.Unmarshal(rpcResp.Result, result); err != nil {
			return &DecodeError{Err: err}
		}
	}

	return nil
}

func (c *RPCClient) nextID() json.RawMessage {
	return strconv.AppendInt(nil, c.seq.Add(1), 10)
}
