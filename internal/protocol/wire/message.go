// Package wire defines the line-delimited JSON protocol spoken between the
// funkostore client and server, plus the framing buffer that recovers
// discrete messages from a TCP byte stream.
//
// The field names on the wire (tipo, usuario, funko, exito, mensaje, funkos)
// are part of the frozen protocol and must not be renamed.
package wire

import (
	"encoding/json"
	"fmt"

	"github.com/marmos91/funkostore/pkg/funko"
)

// RequestType identifies which operation a request asks for.
type RequestType string

const (
	RequestAdd    RequestType = "add"
	RequestUpdate RequestType = "update"
	RequestRemove RequestType = "remove"
	RequestList   RequestType = "list"
	RequestRead   RequestType = "read"

	// RequestUnknown is echoed on responses to frames that could not be
	// decoded, where no request kind exists to correlate against.
	RequestUnknown RequestType = "unknown"
)

// Request is one client→server message.
//
// User is always required. Funko is required for add and update; ID is
// required for update, remove and read. The handler reports which field is
// missing, so absence is modeled with pointer/nil rather than zero values.
type Request struct {
	Type  RequestType  `json:"tipo"`
	User  string       `json:"usuario"`
	Funko *funko.Funko `json:"funko,omitempty"`
	ID    *int         `json:"id,omitempty"`
}

// Response is one server→client message. Type echoes the request kind for
// correlation; Funkos is only present for list (all records) and read (zero
// or one record).
type Response struct {
	Type    RequestType   `json:"tipo"`
	Success bool          `json:"exito"`
	Message string        `json:"mensaje"`
	Funkos  []funko.Funko `json:"funkos,omitempty"`
}

// Encode serializes a message and appends the frame delimiter. JSON string
// escaping guarantees the payload itself never contains a raw line feed.
func Encode(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}
	return append(data, '\n'), nil
}

// DecodeRequest decodes one frame into a Request. A failure here is reported
// per frame; it never invalidates the connection or the framing buffer.
func DecodeRequest(frame []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(frame, &req); err != nil {
		return nil, fmt.Errorf("decode request frame: %w", err)
	}
	return &req, nil
}

// DecodeResponse decodes one frame into a Response.
func DecodeResponse(frame []byte) (*Response, error) {
	var res Response
	if err := json.Unmarshal(frame, &res); err != nil {
		return nil, fmt.Errorf("decode response frame: %w", err)
	}
	return &res, nil
}
