package protocol

import (
	"encoding/json"
	"fmt"

	apperrors "github.com/pixell-labs/workflow-testagent/pkg/agenterrors"
)

// Sentinel terminates every logical stream. It is always the last frame
// written for a request, on every dispatch path.
const Sentinel = "data: [DONE]\n\n"

type rpcEnvelope struct {
	JSONRPC string `json:"jsonrpc"`
	ID      any    `json:"id"`
	Result  Result `json:"result"`
}

// Frame encodes one JSON-RPC result frame in SSE data-line framing:
// `data: {"jsonrpc":"2.0","id":<id>,"result":<result>}\n\n`.
func Frame(requestID any, result Result) (string, error) {
	body, err := json.Marshal(rpcEnvelope{
		JSONRPC: "2.0",
		ID:      requestID,
		Result:  result,
	})
	if err != nil {
		return "", apperrors.New(apperrors.ErrCodeEncodeFailed, "failed to encode stream frame", err)
	}
	return fmt.Sprintf("data: %s\n\n", body), nil
}
