// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pubsub

import (
	"net/http"
	"sync"
	"time"

	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/ava-labs/avalanchego/utils/set"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(*http.Request) bool {
		return true
	},
}

type ServerConfig struct {
	// Size of the ws read buffer
	ReadBufferSize int
	// Size of the ws write buffer
	WriteBufferSize int
	// Maximum number of pending messages to send to a peer.
	MaxPendingMessages int
	// Maximum message size in bytes allowed from peer.
	MaxReadMessageSize int
	// Maximum message size in bytes to send to a peer (accumulated
	// until exceeded).
	MaxWriteMessageSize int
	// Maximum time a message can be buffered before being sent.
	MaxMessageWait time.Duration
	// Time allowed to write a message to the peer.
	WriteWait time.Duration
	// Time allowed to read the next pong message from the peer.
	PongWait time.Duration
	// Send pings to peer with this period. Must be less than PongWait.
	PingPeriod time.Duration
	// ReadHeaderTimeout is the maximum duration for reading a request.
	ReadHeaderTimeout time.Duration
}

func NewDefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		ReadBufferSize:      ReadBufferSize,
		WriteBufferSize:     WriteBufferSize,
		MaxPendingMessages:  MaxPendingMessages,
		MaxReadMessageSize:  MaxReadMessageSize,
		MaxWriteMessageSize: MaxWriteMessageSize,
		MaxMessageWait:      MaxMessageWait,
		WriteWait:           WriteWait,
		PongWait:            PongWait,
		PingPeriod:          PingPeriod,
		ReadHeaderTimeout:   ReadHeaderTimeout,
	}
}

// Server maintains the set of active clients and sends messages to the clients.
type Server struct {
	log      logging.Logger
	config   *ServerConfig
	callback Callback

	lock  sync.RWMutex
	conns set.Set[*Connection]
}

// New returns a new Server instance. The callback function [callback] is
// called by the server in response to messages if not nil.
func New(log logging.Logger, config *ServerConfig, callback Callback) *Server {
	return &Server{
		log:      log,
		config:   config,
		callback: callback,
	}
}

// ServeHTTP adds a connection to the server, and starts go routines for
// reading and writing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	upgrader.ReadBufferSize = s.config.ReadBufferSize
	upgrader.WriteBufferSize = s.config.WriteBufferSize
	wsConn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Debug("failed to upgrade",
			zap.Error(err),
		)
		return
	}
	s.addConnection(&Connection{
		s:    s,
		conn: wsConn,
		mb: NewMessageBuffer(
			s.log,
			s.config.MaxPendingMessages,
			s.config.MaxWriteMessageSize,
			s.config.MaxMessageWait,
		),
	})
}

// Publish sends [msg] to [toConns]. Connections that could not be sent to
// are returned so the caller can stop tracking them.
func (s *Server) Publish(msg []byte, toConns *Connections) []*Connection {
	s.lock.RLock()
	defer s.lock.RUnlock()

	inactiveConnections := []*Connection{}
	for _, conn := range toConns.Conns() {
		if !s.conns.Contains(conn) {
			inactiveConnections = append(inactiveConnections, conn)
			continue
		}
		if !conn.Send(msg) {
			s.log.Verbo(
				"dropping message to subscribed connection due to too many pending messages",
			)
			inactiveConnections = append(inactiveConnections, conn)
		}
	}
	return inactiveConnections
}

// addConnection adds [conn] to the servers connection set and starts go
// routines for reading and writing messages for the connection.
func (s *Server) addConnection(conn *Connection) {
	s.lock.Lock()
	defer s.lock.Unlock()

	conn.active.Store(true)
	s.conns.Add(conn)

	go conn.writePump()
	go conn.readPump()
}

// removeConnection removes [conn] from the servers connection set.
func (s *Server) removeConnection(conn *Connection) {
	s.lock.Lock()
	defer s.lock.Unlock()

	s.conns.Remove(conn)
}

// Len returns the number of active connections.
func (s *Server) Len() int {
	s.lock.RLock()
	defer s.lock.RUnlock()

	return s.conns.Len()
}
