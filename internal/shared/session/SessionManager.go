package session

import (
	"Foam/internal/shared/transport/ws"
	"sync"
)

type Manager interface {
	Bind(username string, token string, conn ws.WSConn)
	UnbindConn(conn ws.WSConn)
	UnbindUser(username string)
	GetConn(username string) (ws.WSConn, bool)
	GetUser(conn ws.WSConn) (string, bool)
	// Push 实现实体侧的推送端口：节点离线时静默丢弃。
	Push(nodeID string, kind string, payload any)
}

type SessMgr struct {
	sync.RWMutex
	user2token map[string]string
	user2conn  map[string]ws.WSConn
	conn2user  map[ws.WSConn]string
	watched    map[ws.WSConn]struct{}
}

func NewSessMgr() Manager {
	return &SessMgr{
		user2token: make(map[string]string),
		user2conn:  make(map[string]ws.WSConn),
		conn2user:  make(map[ws.WSConn]string),
		watched:    make(map[ws.WSConn]struct{}),
	}
}

func (s *SessMgr) Bind(username string, token string, conn ws.WSConn) {
	if conn == nil || username == "" {
		return
	}
	s.Lock()
	defer s.Unlock()

	// 为每条连接只启动一次 watcher：连接关闭后自动解绑，避免 conn2user 逐步膨胀
	if _, ok := s.watched[conn]; !ok {
		s.watched[conn] = struct{}{}
		go s.watchConnDone(conn)
	}

	oldConn := s.user2conn[username]
	// 同名节点重复上线，踢掉原来的那个
	if oldConn != nil && oldConn != conn {
		oldConn.Push("kicked", map[string]any{"message": "账号在其它连接登录"})
		oldConn.Close()
	}
	s.user2conn[username] = conn
	s.conn2user[conn] = username
	s.user2token[username] = token
}

func (s *SessMgr) watchConnDone(conn ws.WSConn) {
	<-conn.Done()
	s.UnbindConn(conn)
}

func (s *SessMgr) UnbindConn(conn ws.WSConn) {
	s.Lock()
	defer s.Unlock()
	username := s.conn2user[conn]
	delete(s.watched, conn)
	delete(s.conn2user, conn)
	if s.user2conn[username] == conn {
		delete(s.user2conn, username)
	}
}

func (s *SessMgr) UnbindUser(username string) {
	s.Lock()
	defer s.Unlock()
	conn, ok := s.user2conn[username]
	if ok {
		delete(s.watched, conn)
		delete(s.conn2user, conn)
	}
	delete(s.user2conn, username)
}

func (s *SessMgr) GetConn(username string) (ws.WSConn, bool) {
	s.RLock()
	defer s.RUnlock()
	conn, ok := s.user2conn[username]
	return conn, ok
}

func (s *SessMgr) GetUser(conn ws.WSConn) (string, bool) {
	s.RLock()
	defer s.RUnlock()
	username, ok := s.conn2user[conn]
	return username, ok
}

func (s *SessMgr) Push(nodeID string, kind string, payload any) {
	conn, ok := s.GetConn(nodeID)
	if !ok {
		return
	}
	conn.Push(kind, payload)
}
