package realityserver

import (
	"encoding/json"
	"errors"
	"fmt"
)

const (
	rpcVersion       = "2.0"
	methodGetVersion = "get_version"
	versionCommandID = 1
)

// ErrUnexpectedResult is returned when a JSON-RPC response carries a result
// of the wrong type.
var ErrUnexpectedResult = errors.New("unexpected result type")

// RPCRequest is a single JSON-RPC 2.0 command.
type RPCRequest struct {
	JSONRPC string         `json:"jsonrpc"`
	Method  string         `json:"method"`
	Params  map[string]any `json:"params"`
	ID      int            `json:"id"`
}

// RPCResponse mirrors the envelope RealityServer returns for a command.
type RPCResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	Result  json.RawMessage `json:"result"`
	Error   *RPCError       `json:"error"`
	ID      json.RawMessage `json:"id"`
}

// RPCError is the error member of a JSON-RPC response.
type RPCError struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

// StringResult decodes the result member, which must be a JSON string.
func (r RPCResponse) StringResult() (string, error) {
	if r.Error != nil {
		return "", r.Error
	}
	if len(r.Result) == 0 {
		return "", fmt.Errorf("missing result: %w", ErrUnexpectedResult)
	}
	// A JSON null decodes into a nil pointer, not an error.
	var value *string
	if err := json.Unmarshal(r.Result, &value); err != nil || value == nil {
		return "", fmt.Errorf("result %s: %w", truncateRaw(r.Result), ErrUnexpectedResult)
	}
	return *value, nil
}

func versionCommand() RPCRequest {
	return RPCRequest{
		JSONRPC: rpcVersion,
		Method:  methodGetVersion,
		Params:  map[string]any{},
		ID:      versionCommandID,
	}
}

func truncateRaw(raw json.RawMessage) string {
	const max = 32
	if len(raw) <= max {
		return string(raw)
	}
	return string(raw[:max]) + "..."
}
