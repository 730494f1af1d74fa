// Package client implements the TCP wire-protocol client (§4.8): one
// request per call, blocking for the matching response before
// returning, over a single persistent connection. Grounded on the
// original implementation's client.rs (TcpStream::connect plus a
// cloned handle for independent read/write buffering) since the
// teacher repo only ever talks HTTP; the request/response shape
// otherwise follows the same decode-dispatch-encode idiom as
// internal/server.
package client

import (
	"net"

	"github.com/aleksandarhr/kvs/internal/protocol"
	"github.com/aleksandarhr/kvs/pkg/kvserrors"
)

// Client issues requests against a kvs server over one TCP connection.
type Client struct {
	conn   net.Conn
	writer *protocol.Writer
	reader *protocol.Reader
}

// Connect dials addr and returns a Client ready to issue requests.
func Connect(addr string) (*Client, error) {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, err
	}
	return &Client{
		conn:   conn,
		writer: protocol.NewWriter(conn),
		reader: protocol.NewReader(conn),
	}, nil
}

// Set stores key/value and waits for the server's acknowledgement.
func (c *Client) Set(key, value string) error {
	if err := c.writer.Encode(protocol.NewSetRequest(key, value)); err != nil {
		return err
	}
	resp, err := c.reader.DecodeSetResponse()
	if err != nil {
		return err
	}
	if resp.Err != "" {
		return kvserrors.NewStringError(resp.Err)
	}
	return nil
}

// Get fetches key. ok is false when the server reports the key absent.
func (c *Client) Get(key string) (value string, ok bool, err error) {
	if err := c.writer.Encode(protocol.NewGetRequest(key)); err != nil {
		return "", false, err
	}
	resp, err := c.reader.DecodeGetResponse()
	if err != nil {
		return "", false, err
	}
	if resp.Err != "" {
		return "", false, kvserrors.NewStringError(resp.Err)
	}
	return resp.Value, resp.Present, nil
}

// Remove deletes key, returning kvserrors.ErrKeyNotFound-equivalent
// StringError if the server reports the key absent.
func (c *Client) Remove(key string) error {
	if err := c.writer.Encode(protocol.NewRemoveRequest(key)); err != nil {
		return err
	}
	resp, err := c.reader.DecodeRemoveResponse()
	if err != nil {
		return err
	}
	if resp.Err != "" {
		return kvserrors.NewStringError(resp.Err)
	}
	return nil
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	return c.conn.Close()
}
