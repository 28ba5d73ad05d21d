package gateway

import (
	"net"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Room naming. A room groups the live connections an event should reach.
func RoomUser(userID string) string         { return "user:" + userID }
func RoomFollowers(userID string) string    { return "followers:" + userID }
func RoomConversation(convID string) string { return "conv:" + convID }

// WsConn is one live socket with its per-connection send queue.
type WsConn struct {
	ConnID     string
	UserID     string
	Authorized bool

	Conn   *websocket.Conn
	Remote net.Addr

	Send chan []byte

	CreatedAt time.Time
	Heartbeat time.Time

	rooms map[string]struct{}
}

// ManagerConf tunes limits; zero values take defaults.
type ManagerConf struct {
	MaxPerUser int              // <=0 means unlimited
	SendQueue  int              // per-connection queue depth
	Clock      func() time.Time // injectable for tests
}

func (c *ManagerConf) norm() {
	if c.SendQueue <= 0 {
		c.SendQueue = 64
	}
	if c.Clock == nil {
		c.Clock = time.Now
	}
}

// ConnManager indexes live connections by conn id, user and room.
type ConnManager struct {
	mu     sync.RWMutex
	byID   map[string]*WsConn
	byUser map[string]map[string]*WsConn   // userID -> connID -> conn
	rooms  map[string]map[string]*WsConn   // room -> connID -> conn
	conf   ManagerConf
	gwID   string
}

func NewConnManager(gwID string) *ConnManager {
	return NewConnManagerWithConf(ManagerConf{}, gwID)
}

func NewConnManagerWithConf(conf ManagerConf, gwID string) *ConnManager {
	conf.norm()
	return &ConnManager{
		byID:   make(map[string]*WsConn),
		byUser: make(map[string]map[string]*WsConn),
		rooms:  make(map[string]map[string]*WsConn),
		conf:   conf,
		gwID:   gwID,
	}
}

func (m *ConnManager) GwID() string { return m.gwID }

// Add registers an authorized connection. When MaxPerUser is exceeded the
// oldest connection is evicted.
func (m *ConnManager) Add(connID, userID string, ws *websocket.Conn) *WsConn {
	now := m.conf.Clock()
	c := &WsConn{
		ConnID:     connID,
		UserID:     userID,
		Authorized: true,
		Conn:       ws,
		Send:       make(chan []byte, m.conf.SendQueue),
		CreatedAt:  now,
		Heartbeat:  now,
		rooms:      make(map[string]struct{}),
	}
	if ws != nil {
		c.Remote = ws.RemoteAddr()
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.byID[connID] = c
	mm := m.byUser[userID]
	if mm == nil {
		mm = make(map[string]*WsConn)
		m.byUser[userID] = mm
	}
	if m.conf.MaxPerUser > 0 && len(mm) >= m.conf.MaxPerUser {
		var oldest *WsConn
		for _, x := range mm {
			if oldest == nil || x.CreatedAt.Before(oldest.CreatedAt) {
				oldest = x
			}
		}
		if oldest != nil {
			m.removeLocked(oldest)
			closeQuiet(oldest.Conn)
		}
	}
	mm[connID] = c
	return c
}

// Remove unregisters the connection and leaves all its rooms.
func (m *ConnManager) Remove(connID string) *WsConn {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.byID[connID]
	if !ok {
		return nil
	}
	m.removeLocked(c)
	return c
}

func (m *ConnManager) removeLocked(c *WsConn) {
	delete(m.byID, c.ConnID)
	if mm := m.byUser[c.UserID]; mm != nil {
		delete(mm, c.ConnID)
		if len(mm) == 0 {
			delete(m.byUser, c.UserID)
		}
	}
	for room := range c.rooms {
		if rc := m.rooms[room]; rc != nil {
			delete(rc, c.ConnID)
			if len(rc) == 0 {
				delete(m.rooms, room)
			}
		}
	}
	close(c.Send)
}

// Join places the connection into a room.
func (m *ConnManager) Join(connID, room string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.byID[connID]
	if !ok {
		return
	}
	rc := m.rooms[room]
	if rc == nil {
		rc = make(map[string]*WsConn)
		m.rooms[room] = rc
	}
	rc[c.ConnID] = c
	c.rooms[room] = struct{}{}
}

// Leave removes the connection from a room.
func (m *ConnManager) Leave(connID, room string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.byID[connID]
	if !ok {
		return
	}
	delete(c.rooms, room)
	if rc := m.rooms[room]; rc != nil {
		delete(rc, connID)
		if len(rc) == 0 {
			delete(m.rooms, room)
		}
	}
}

// RoomConns snapshots a room's members.
func (m *ConnManager) RoomConns(room string) []*WsConn {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rc := m.rooms[room]
	out := make([]*WsConn, 0, len(rc))
	for _, c := range rc {
		out = append(out, c)
	}
	return out
}

// UserConns snapshots one user's connections.
func (m *ConnManager) UserConns(userID string) []*WsConn {
	m.mu.RLock()
	defer m.mu.RUnlock()
	mm := m.byUser[userID]
	out := make([]*WsConn, 0, len(mm))
	for _, c := range mm {
		out = append(out, c)
	}
	return out
}

// AllConns snapshots every live connection.
func (m *ConnManager) AllConns() []*WsConn {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*WsConn, 0, len(m.byID))
	for _, c := range m.byID {
		out = append(out, c)
	}
	return out
}

// UserOnlineLocal reports whether the user has a socket on this instance.
func (m *ConnManager) UserOnlineLocal(userID string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.byUser[userID]) > 0
}

// Close shuts every connection down.
func (m *ConnManager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.byID {
		closeQuiet(c.Conn)
	}
	m.byID = make(map[string]*WsConn)
	m.byUser = make(map[string]map[string]*WsConn)
	m.rooms = make(map[string]map[string]*WsConn)
}

func closeQuiet(ws *websocket.Conn) {
	if ws != nil {
		_ = ws.Close()
	}
}
