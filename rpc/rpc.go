package rpc

import (
	"net"
	"net/rpc"

	"github.com/wfunc/worldsync/logger"
	"github.com/wfunc/worldsync/room"
)

// Server manages the RPC listener.
type Server struct {
	listener net.Listener
	address  string
}

// NewServer creates a new RPC server.
func NewServer(addr string) (*Server, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	return &Server{
		listener: listener,
		address:  addr,
	}, nil
}

// Start begins listening for RPC requests.
func (s *Server) Start() {
	logger.Log.Infof("RPC server listening on %s", s.address)
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if _, ok := err.(*net.OpError); ok {
				logger.Log.Info("RPC server listener closed.")
				return
			}
			logger.Log.Errorf("RPC server accept error: %v", err)
			continue
		}
		go rpc.ServeConn(conn)
	}
}

// Stop closes the RPC listener.
func (s *Server) Stop() {
	if s.listener != nil {
		logger.Log.Info("Stopping RPC server.")
		s.listener.Close()
	}
}

// Status exposes room occupancy over net/rpc for operational tooling.
type Status struct {
	rooms *room.Manager
}

func NewStatus(rooms *room.Manager) *Status {
	return &Status{rooms: rooms}
}

type RoomCountsArgs struct{}

type RoomCountsReply struct {
	ActiveRooms int
	RoomPlayers map[string]int
}

// RoomCounts follows the net/rpc signature: exported method, exported
// arguments, second argument is a pointer, return type is error.
func (s *Status) RoomCounts(args *RoomCountsArgs, reply *RoomCountsReply) error {
	rooms, players := s.rooms.Counts()
	reply.ActiveRooms = rooms
	reply.RoomPlayers = players
	return nil
}
