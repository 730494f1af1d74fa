// Package protocol implements the wire codec (§4.6): three request
// variants (Set/Get/Remove) and three matching response variants,
// encoded as a self-delimiting JSON stream exactly like
// internal/command, so a connection can be decoded request-by-request
// without a separate length prefix. Grounded on the original
// implementation's common.rs Request/*Response enums.
package protocol

import (
	"encoding/json"
	"io"
)

// RequestKind distinguishes the three request variants.
type RequestKind string

const (
	RequestSet    RequestKind = "Set"
	RequestGet    RequestKind = "Get"
	RequestRemove RequestKind = "Remove"
)

// Request is a tagged Set{key,value}, Get{key}, or Remove{key} message.
type Request struct {
	Kind  RequestKind
	Key   string
	Value string // unused unless Kind == RequestSet
}

func NewSetRequest(key, value string) Request { return Request{Kind: RequestSet, Key: key, Value: value} }
func NewGetRequest(key string) Request        { return Request{Kind: RequestGet, Key: key} }
func NewRemoveRequest(key string) Request     { return Request{Kind: RequestRemove, Key: key} }

type wireRequest struct {
	Kind  RequestKind `json:"Kind"`
	Key   string      `json:"Key"`
	Value string      `json:"Value,omitempty"`
}

func (r Request) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireRequest{Kind: r.Kind, Key: r.Key, Value: r.Value})
}

func (r *Request) UnmarshalJSON(data []byte) error {
	var w wireRequest
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	r.Kind = w.Kind
	r.Key = w.Key
	r.Value = w.Value
	return nil
}

// SetResponse reports the outcome of a Set request. Err == "" means Ok.
type SetResponse struct {
	Err string `json:"Err,omitempty"`
}

// GetResponse reports the outcome of a Get request. Present distinguishes
// an absent key from an empty-string value; Err == "" means Ok.
type GetResponse struct {
	Value   string `json:"Value,omitempty"`
	Present bool   `json:"Present"`
	Err     string `json:"Err,omitempty"`
}

// RemoveResponse reports the outcome of a Remove request. Err == "" means Ok.
type RemoveResponse struct {
	Err string `json:"Err,omitempty"`
}

// Writer encodes requests or responses one after another onto a stream.
type Writer struct {
	enc *json.Encoder
}

func NewWriter(w io.Writer) *Writer { return &Writer{enc: json.NewEncoder(w)} }

func (w *Writer) Encode(v interface{}) error { return w.enc.Encode(v) }

// Reader decodes requests or responses one at a time from a stream.
type Reader struct {
	dec *json.Decoder
}

func NewReader(r io.Reader) *Reader { return &Reader{dec: json.NewDecoder(r)} }

// DecodeRequest reads the next request. It returns io.EOF (unwrapped)
// when the peer closes the connection cleanly between requests.
func (r *Reader) DecodeRequest() (Request, error) {
	var req Request
	if err := r.dec.Decode(&req); err != nil {
		if err == io.EOF {
			return Request{}, io.EOF
		}
		return Request{}, err
	}
	return req, nil
}

func (r *Reader) DecodeSetResponse() (SetResponse, error) {
	var resp SetResponse
	err := r.dec.Decode(&resp)
	return resp, err
}

func (r *Reader) DecodeGetResponse() (GetResponse, error) {
	var resp GetResponse
	err := r.dec.Decode(&resp)
	return resp, err
}

func (r *Reader) DecodeRemoveResponse() (RemoveResponse, error) {
	var resp RemoveResponse
	err := r.dec.Decode(&resp)
	return resp, err
}
