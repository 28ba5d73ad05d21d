package gateway

import (
	"context"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"snapcap/logger"
	notifsvc "snapcap/module/notification/service"
	usersvc "snapcap/module/user/service"
	"snapcap/service/mgo"
	"snapcap/service/storage"
	"snapcap/tools/ids"
	"snapcap/tools/safe"
	"snapcap/tools/security"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

const (
	readLimit  = 1 << 20 // 1MB
	pongWait   = 60 * time.Second
	pingEvery  = 30 * time.Second
	writeWait  = 5 * time.Second
	dbDeadline = 5 * time.Second
)

// Server is the real-time gateway. Connection lifecycle:
// connecting -> authenticated -> joined-rooms -> active -> disconnected.
type Server struct {
	connMgr *ConnManager
	disp    *Dispatcher
	fanout  *Fanout
	jwtOpts security.Options
	relay   *NatsRelay // nil without cross-instance relay
}

func NewServer(gwID string, jwtOpts security.Options) *Server {
	s := &Server{
		connMgr: NewConnManager(gwID),
		disp:    NewDispatcher(),
		fanout:  NewFanout(8, 1024),
		jwtOpts: jwtOpts,
	}
	registerHandlers(s.disp)
	notifsvc.RegisterRelay(s.DeliverNotification)
	return s
}

func (s *Server) ConnMgr() *ConnManager { return s.connMgr }

// AttachRelay wires the NATS bridge for multi-instance deployments.
func (s *Server) AttachRelay(r *NatsRelay) { s.relay = r }

// Close tears down live connections; part of server shutdown.
func (s *Server) Close() {
	s.connMgr.Close()
	s.fanout.Close()
}

// handshakeToken accepts the token from the Authorization header or the
// `token` query param (browsers cannot set WS headers).
func handshakeToken(c *gin.Context) string {
	if authz := strings.TrimSpace(c.GetHeader("Authorization")); authz != "" {
		if strings.HasPrefix(strings.ToLower(authz), "bearer ") {
			return strings.TrimSpace(authz[len("bearer "):])
		}
		return authz
	}
	return strings.TrimSpace(c.Query("token"))
}

// HandleWS upgrades the socket and runs the connection to completion.
func (s *Server) HandleWS(c *gin.Context) {
	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Infof("[ws] upgrade failed: %v", err)
		return
	}

	// authenticate before anything else; a bad token terminates only this
	// connection
	token := handshakeToken(c)
	if token == "" {
		_ = ws.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "token required"),
			time.Now().Add(writeWait))
		_ = ws.Close()
		return
	}
	claims, err := security.Verify(s.jwtOpts, token)
	if err != nil {
		_ = ws.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "invalid token"),
			time.Now().Add(writeWait))
		_ = ws.Close()
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), dbDeadline)
	u, err := usersvc.GetByID(ctx, claims.UserID)
	cancel()
	if err != nil {
		logger.Infof("[ws] unknown user %s: %v", claims.UserID, err)
		_ = ws.Close()
		return
	}

	connID := ids.GenerateString()
	conn := s.connMgr.Add(connID, u.UserID, ws)

	// joined-rooms: own room plus one per followed user
	s.connMgr.Join(connID, RoomUser(u.UserID))
	for _, followed := range u.Following {
		s.connMgr.Join(connID, RoomFollowers(followed))
	}

	s.markOnline(u.UserID)
	s.BroadcastAllExcept(conn, &Event{Type: EventUserOnline, UserID: u.UserID, TS: time.Now().UnixMilli()})

	safe.Go(func() { s.writePump(conn) })
	s.readLoop(conn)

	// disconnected
	s.connMgr.Remove(connID)
	s.markOffline(u.UserID)
	s.BroadcastAllExcept(conn, &Event{Type: EventUserOffline, UserID: u.UserID, TS: time.Now().UnixMilli()})
}

func (s *Server) readLoop(conn *WsConn) {
	ws := conn.Conn
	ws.SetReadLimit(readLimit)
	_ = ws.SetReadDeadline(time.Now().Add(pongWait))
	ws.SetPongHandler(func(string) error {
		conn.Heartbeat = time.Now()
		ctx, cancel := context.WithTimeout(context.Background(), dbDeadline)
		_ = storage.RefreshOnline(ctx, conn.UserID)
		cancel()
		return ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		mt, data, err := ws.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err,
				websocket.CloseNormalClosure,
				websocket.CloseGoingAway,
				websocket.CloseNoStatusReceived,
			) {
				logger.Debug("[ws] peer closed")
			} else if ne, ok := err.(net.Error); ok && ne.Timeout() {
				logger.Infof("[ws] read timeout conn=%s", conn.ConnID)
			} else {
				logger.Infof("[ws] read error conn=%s err=%v", conn.ConnID, err)
			}
			return
		}
		if mt != websocket.TextMessage && mt != websocket.BinaryMessage {
			continue
		}

		f, err := ParseFrame(data)
		if err != nil {
			sample := data
			if len(sample) > 256 {
				sample = sample[:256]
			}
			logger.Infof("[ws] bad frame conn=%s err=%v sample=%q", conn.ConnID, err, sample)
			continue
		}

		ctx, cancel := context.WithTimeout(context.Background(), dbDeadline)
		if err := s.disp.Dispatch(ctx, s, conn, f); err != nil {
			logger.Infof("[ws] handler error conn=%s type=%s err=%v", conn.ConnID, f.Type, err)
		}
		cancel()
	}
}

func (s *Server) writePump(conn *WsConn) {
	ticker := time.NewTicker(pingEvery)
	defer ticker.Stop()
	ws := conn.Conn

	for {
		select {
		case payload, ok := <-conn.Send:
			if !ok {
				_ = ws.WriteControl(websocket.CloseMessage, nil, time.Now().Add(writeWait))
				return
			}
			_ = ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := ws.WriteMessage(websocket.TextMessage, payload); err != nil {
				logger.Infof("[ws] write error conn=%s err=%v", conn.ConnID, err)
				return
			}
		case <-ticker.C:
			if err := ws.WriteControl(websocket.PingMessage, []byte("ping"), time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}

// markOnline updates both presence (Redis) and the user document. Failures
// are logged, never fatal.
func (s *Server) markOnline(userID string) {
	ctx, cancel := context.WithTimeout(context.Background(), dbDeadline)
	defer cancel()
	if err := storage.MarkOnline(ctx, userID, s.connMgr.GwID()); err != nil {
		logger.Warnf("[ws] presence online %s: %v", userID, err)
	}
	if _, ok := mgo.TryGetDB(); !ok {
		logger.Warnf("[ws] db unavailable, online flag skipped for %s", userID)
		return
	}
	if err := usersvc.SetOnline(ctx, userID, true); err != nil {
		logger.Warnf("[ws] set online %s: %v", userID, err)
	}
}

// markOffline guards against a database already shut down: every write is
// best-effort so disconnect can never crash the loop.
func (s *Server) markOffline(userID string) {
	if s.connMgr.UserOnlineLocal(userID) {
		return // another tab still holds a socket here
	}
	ctx, cancel := context.WithTimeout(context.Background(), dbDeadline)
	defer cancel()
	if err := storage.MarkOffline(ctx, userID, time.Now()); err != nil {
		logger.Warnf("[ws] presence offline %s: %v", userID, err)
	}
	if _, ok := mgo.TryGetDB(); !ok {
		logger.Warnf("[ws] db unavailable, offline flag skipped for %s", userID)
		return
	}
	if err := usersvc.SetOnline(ctx, userID, false); err != nil {
		logger.Warnf("[ws] set offline %s: %v", userID, err)
	}
}

// BroadcastRoom sends an event to every connection in a room.
func (s *Server) BroadcastRoom(room string, ev *Event) {
	s.fanout.Broadcast(s.connMgr.RoomConns(room), EncodeEvent(ev))
}

// BroadcastRoomExcept skips the originating connection.
func (s *Server) BroadcastRoomExcept(room string, except *WsConn, ev *Event) {
	conns := s.connMgr.RoomConns(room)
	kept := conns[:0]
	for _, c := range conns {
		if except == nil || c.ConnID != except.ConnID {
			kept = append(kept, c)
		}
	}
	s.fanout.Broadcast(kept, EncodeEvent(ev))
}

// BroadcastAllExcept reaches every live connection except one; used for
// online/offline announcements.
func (s *Server) BroadcastAllExcept(except *WsConn, ev *Event) {
	conns := s.connMgr.AllConns()
	kept := conns[:0]
	for _, c := range conns {
		if except == nil || c.ConnID != except.ConnID {
			kept = append(kept, c)
		}
	}
	s.fanout.Broadcast(kept, EncodeEvent(ev))
}

// DeliverNotification pushes a persisted notification to the recipient's
// room, and over NATS for sockets held by other instances. Registered as a
// notification relay at startup.
func (s *Server) DeliverNotification(recipient string, nev *notifsvc.Event) {
	ev := &Event{Type: EventNewNotification, Payload: nev, TS: time.Now().UnixMilli()}
	s.BroadcastRoom(RoomUser(recipient), ev)
	if s.relay != nil {
		s.relay.Publish(recipient, ev)
	}
}

// DeliverLocal is the NATS-side entry: deliver only to local sockets to avoid
// re-publishing loops.
func (s *Server) DeliverLocal(recipient string, ev *Event) {
	s.BroadcastRoom(RoomUser(recipient), ev)
}
