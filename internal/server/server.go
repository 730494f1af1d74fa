// Package server implements the TCP wire-protocol server (§4.7): an
// accept loop handing each connection to a handler that decodes a
// pipelined stream of internal/protocol requests and writes back
// responses in strict order. Grounded on the teacher's httpServer
// shape (a struct holding the backing log, one method per request
// kind, decode-dispatch-encode), re-targeted from one-shot HTTP
// handlers to a long-lived per-connection request/response loop.
package server

import (
	"io"
	"net"

	"go.uber.org/zap"

	"github.com/aleksandarhr/kvs/internal/engine"
	"github.com/aleksandarhr/kvs/internal/protocol"
)

// Server dispatches protocol requests against a backing engine.
type Server struct {
	engine engine.Engine
	log    *zap.SugaredLogger
}

// New builds a Server backed by e.
func New(e engine.Engine, log *zap.SugaredLogger) *Server {
	return &Server{engine: e, log: log}
}

// Run listens on addr and serves connections until the listener
// fails (§4.7's accept loop is sequential: one connection is fully
// drained, closed, and logged before Accept is called again).
func (s *Server) Run(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	defer ln.Close()

	s.log.Infow("server listening", "addr", addr)
	for {
		conn, err := ln.Accept()
		if err != nil {
			return err
		}
		s.handleConn(conn)
	}
}

// handleConn drains a pipelined stream of requests from conn, handling
// each in order and writing its response before decoding the next, per
// §4.7's "strict per-connection ordering" requirement. It returns when
// the peer closes the connection or sends a malformed request.
func (s *Server) handleConn(conn net.Conn) {
	defer conn.Close()

	reader := protocol.NewReader(conn)
	writer := protocol.NewWriter(conn)

	for {
		req, err := reader.DecodeRequest()
		if err == io.EOF {
			s.log.Debugw("connection closed by peer", "remote", conn.RemoteAddr())
			return
		}
		if err != nil {
			s.log.Warnw("malformed request, closing connection", "remote", conn.RemoteAddr(), "err", err)
			return
		}

		if err := s.dispatch(writer, req); err != nil {
			s.log.Warnw("failed to write response, closing connection", "remote", conn.RemoteAddr(), "err", err)
			return
		}
	}
}

// dispatch runs one request against the engine and encodes its response.
func (s *Server) dispatch(w *protocol.Writer, req protocol.Request) error {
	switch req.Kind {
	case protocol.RequestSet:
		resp := protocol.SetResponse{}
		if err := s.engine.Set(req.Key, req.Value); err != nil {
			resp.Err = err.Error()
		}
		return w.Encode(resp)

	case protocol.RequestGet:
		resp := protocol.GetResponse{}
		value, ok, err := s.engine.Get(req.Key)
		if err != nil {
			resp.Err = err.Error()
		} else {
			resp.Value = value
			resp.Present = ok
		}
		return w.Encode(resp)

	case protocol.RequestRemove:
		resp := protocol.RemoveResponse{}
		if err := s.engine.Remove(req.Key); err != nil {
			resp.Err = err.Error()
		}
		return w.Encode(resp)

	default:
		return w.Encode(protocol.SetResponse{Err: "unknown request kind"})
	}
}
