package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	netrpc "net/rpc"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/wfunc/worldsync/config"
	"github.com/wfunc/worldsync/logger"
	"github.com/wfunc/worldsync/monitor"
	"github.com/wfunc/worldsync/network"
	"github.com/wfunc/worldsync/room"
	worldsync_rpc "github.com/wfunc/worldsync/rpc"
	"github.com/wfunc/worldsync/services"
	"github.com/wfunc/worldsync/session"
	"github.com/wfunc/worldsync/world"
)

type GameServer struct {
	cfg            *config.Config
	upgrader       websocket.Upgrader
	roomManager    *room.Manager
	sessionManager *session.Manager
	playerService  *services.PlayerService
	mon            *monitor.Monitor
	rpcServer      *worldsync_rpc.Server
}

func NewGameServer(cfg *config.Config, rooms *room.Manager, players *services.PlayerService, mon *monitor.Monitor) *GameServer {
	s := &GameServer{
		cfg:            cfg,
		roomManager:    rooms,
		sessionManager: session.NewManager(),
		playerService:  players,
		mon:            mon,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // 允许所有跨域请求
			},
		},
	}

	rpcServer, err := worldsync_rpc.NewServer(cfg.Server.RPCAddress)
	if err != nil {
		logger.Log.Fatalf("Failed to create RPC server: %v", err)
	}
	s.rpcServer = rpcServer
	netrpc.Register(worldsync_rpc.NewStatus(rooms))

	return s
}

func (s *GameServer) Start() error {
	go s.rpcServer.Start()

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/health", s.handleHealth)

	logger.Log.Infof("Game server listening on %s", s.cfg.Server.HTTPAddress)
	return http.ListenAndServe(s.cfg.Server.HTTPAddress, mux)
}

func (s *GameServer) Shutdown() {
	s.rpcServer.Stop()
	s.playerService.Flush()
}

func (s *GameServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	rooms, players := s.roomManager.Counts()

	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"ok":      true,
		"rooms":   rooms,
		"players": players,
		"ts":      time.Now().UnixMilli(),
	})
}

func (s *GameServer) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Log.Infof("Failed to upgrade connection: %v", err)
		return
	}
	s.handleConnection(conn, r)
}

// handleConnection resolves the join parameters, restores persisted state,
// places the player into its room and then pumps inbound frames until the
// socket closes.
func (s *GameServer) handleConnection(conn *websocket.Conn, r *http.Request) {
	q := r.URL.Query()
	playerKey := q.Get("playerKey")
	if playerKey == "" {
		playerKey = "pk-" + uuid.New().String()[:8]
	}

	spawn := s.playerService.LoadOrCreate(playerKey, q.Get("roomId"), q.Get("name"), q.Get("color"))
	if spawn.RoomID == "" {
		spawn.RoomID = s.cfg.World.DefaultRoom
	}
	playerID := playerKey
	if spawn.Name == "" {
		spawn.Name = defaultPlayerName(playerID)
	}

	wsConn := network.NewWSConnection(conn)
	sess := session.NewSession(uuid.New().String(), wsConn)
	sess.PlayerID = playerID
	sess.PlayerKey = playerKey
	s.sessionManager.Add(sess)

	player := &world.Player{
		ID:    playerID,
		Name:  spawn.Name,
		Color: spawn.Color,
		X:     spawn.X,
		Y:     spawn.Y,
	}

	rm := s.roomManager.GetOrCreate(spawn.RoomID)
	rm.Join(sess, player)
	s.playerService.SaveIdentity(playerKey, rm.ID, spawn.Name, spawn.Color, spawn.X, spawn.Y)
	if s.mon != nil {
		s.mon.IncOnlinePlayers()
	}
	logger.Log.Infof("player %s (%s) joined room %s from %s", player.Name, playerID, rm.ID, wsConn.RemoteAddr())

	defer func() {
		rm.Leave(playerID)
		s.sessionManager.Remove(sess.GetID())
		if s.mon != nil {
			s.mon.DecOnlinePlayers()
		}
		wsConn.Close()
		logger.Log.Infof("player %s left room %s", playerID, rm.ID)
	}()

	for {
		frame, err := wsConn.ReadFrame()
		if err != nil {
			return
		}
		s.handleFrame(rm, sess, frame)
	}
}

// defaultPlayerName derives a display name from the player key. Keys are
// client-supplied and may be arbitrarily short.
func defaultPlayerName(playerID string) string {
	if len(playerID) > 4 {
		playerID = playerID[:4]
	}
	return fmt.Sprintf("Player %s", playerID)
}

func (s *GameServer) handleFrame(rm *room.Room, sess *session.Session, frame []byte) {
	if s.mon != nil {
		s.mon.IncMessagesReceived()
	}

	msg, err := network.DecodeClientMessage(frame)
	if err != nil {
		if errors.Is(err, network.ErrProtocol) {
			logger.Log.Debugf("dropping bad frame from %s: %v", sess.PlayerID, err)
			return
		}
		logger.Log.Warnf("decode error from %s: %v", sess.PlayerID, err)
		return
	}

	switch m := msg.(type) {
	case network.MoveMessage:
		verdict, _, ok := rm.HandleMove(sess.PlayerID, m.X, m.Y, time.Now())
		if !ok {
			return
		}
		switch verdict {
		case world.Accept:
			s.playerService.SavePosition(sess.PlayerKey, m.X, m.Y)
		case world.RejectRateLimited:
			// Silent drop; throttled moves are expected under load.
		default:
			if s.mon != nil {
				s.mon.IncMoveRejection(verdict.String())
			}
		}
	}
}
