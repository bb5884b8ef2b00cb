package jsonrpc

import (
	"encoding/json"

	"github.com/theapemachine/atp-go/pkg/errors"
)

// Version is the only protocol revision this package speaks.
const Version = "2.0"

/*
RPCResponse is the incoming half of a JSON-RPC 2.0 exchange. Result stays
raw until the caller decides what to decode it into, and a non-nil Error
always wins over whatever Result may hold, regardless of the HTTP status
the envelope arrived under.
*/
type RPCResponse struct {
	JSONRPC string           `json:"jsonrpc"`
	ID      json.RawMessage  `json:"id,omitempty"`
	Result  json.RawMessage  `json:"result,omitempty"`
	Error   *errors.RpcError `json:"error,omitempty"`
}
