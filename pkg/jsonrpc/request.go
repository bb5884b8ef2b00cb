package jsonrpc

import "encoding/json"

// RPCRequest is the outgoing half of a JSON-RPC 2.0 exchange. Params holds
// the already-encoded parameter object so callers keep control over their
// own wire shapes.
type RPCRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"` // accepts string | number | null
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

func NewRequest(id json.RawMessage, method string, params json.RawMessage) RPCRequest {
	return RPCRequest{
		JSONRPC: Version,
		ID:      id,
		Method:  method,
		Params:  params,
	}
}
