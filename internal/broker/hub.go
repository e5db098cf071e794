package broker

import (
	"log/slog"
	"sync"

	"chatd/internal/constants"
	"chatd/internal/directory"
	"chatd/internal/protocol"
)

// Hub indexes live sessions and fans frames out to them. It owns the
// session set and the username -> session binding; the user/group registry
// lives in the directory.
type Hub struct {
	mu           sync.RWMutex
	sessions     map[*Session]bool
	userSessions map[string]*Session

	dir *directory.Directory
}

func NewHub(dir *directory.Directory) *Hub {
	return &Hub{
		sessions:     make(map[*Session]bool),
		userSessions: make(map[string]*Session),
		dir:          dir,
	}
}

func (h *Hub) Directory() *directory.Directory {
	return h.dir
}

// Add registers a freshly accepted session.
func (h *Hub) Add(s *Session) {
	h.mu.Lock()
	h.sessions[s] = true
	h.mu.Unlock()
	slog.Debug("session opened", "component", "hub", "session_id", s.ID(), "remote", s.RemoteAddr())
}

// Bind associates a username with a session. If another session already
// holds the binding it is evicted: told, then closed.
func (h *Hub) Bind(username string, s *Session) {
	h.mu.Lock()
	if old, ok := h.userSessions[username]; ok && old != s {
		// Tell the old session before closing so the client knows not
		// to treat this as a network failure.
		old.queue(protocol.SessionReplacedEvent{Type: protocol.EventSessionReplaced})
		old.CloseSend()
		delete(h.sessions, old)
	}
	h.userSessions[username] = s
	h.mu.Unlock()

	slog.Info("session bound", "component", "hub", "session_id", s.ID(), "username", username)
}

// Rebind moves a session's binding from one username to another, as
// change_username does. The session itself stays bound throughout.
func (h *Hub) Rebind(oldName, newName string, s *Session) {
	h.mu.Lock()
	if h.userSessions[oldName] == s {
		delete(h.userSessions, oldName)
	}
	h.userSessions[newName] = s
	h.mu.Unlock()
}

// ReleaseBinding drops a username -> session binding, but only if it
// still points at the given session.
func (h *Hub) ReleaseBinding(username string, s *Session) {
	h.mu.Lock()
	if h.userSessions[username] == s {
		delete(h.userSessions, username)
	}
	h.mu.Unlock()
}

// HandleDisconnect runs when a session's read loop ends. It removes the
// session and, if it held a live binding, marks the user offline and
// notifies everyone holding them as a contact.
func (h *Hub) HandleDisconnect(s *Session) {
	username := s.Username()

	h.mu.Lock()
	wasActive := false
	if _, ok := h.sessions[s]; ok {
		delete(h.sessions, s)
	}
	if username != "" && h.userSessions[username] == s {
		delete(h.userSessions, username)
		wasActive = true
	}
	h.mu.Unlock()

	if !wasActive {
		slog.Debug("session closed", "component", "hub", "session_id", s.ID())
		return
	}

	h.dir.SetStatus(username, constants.StatusOffline)
	h.SendToUsers(h.dir.ContactHolders(username), protocol.StatusUpdateEvent{
		Type:     protocol.EventStatusUpdate,
		Username: username,
		Status:   constants.StatusOffline,
	})
	slog.Info("session closed", "component", "hub", "session_id", s.ID(), "username", username)
}

// Unicast delivers one frame to the session bound to username, if any.
// Absence and write failure are both silent; delivery is best effort.
func (h *Hub) Unicast(username string, frame any) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if s, ok := h.userSessions[username]; ok {
		s.queue(frame)
	}
}

// SendToUsers unicasts the frame to each named user.
func (h *Hub) SendToUsers(usernames []string, frame any) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, name := range usernames {
		if s, ok := h.userSessions[name]; ok {
			s.queue(frame)
		}
	}
}

// SendToUsersExcept unicasts the frame to each named user but skips one.
func (h *Hub) SendToUsersExcept(usernames []string, except string, frame any) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, name := range usernames {
		if name == except {
			continue
		}
		if s, ok := h.userSessions[name]; ok {
			s.queue(frame)
		}
	}
}

func (h *Hub) IsOnline(username string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.userSessions[username]
	return ok
}

// SessionCount returns the number of open sessions, bound or not.
func (h *Hub) SessionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}

// OnlineCount returns the number of bound usernames.
func (h *Hub) OnlineCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.userSessions)
}

// Shutdown closes every open session.
func (h *Hub) Shutdown() {
	h.mu.Lock()
	for s := range h.sessions {
		s.CloseSend()
		delete(h.sessions, s)
	}
	h.userSessions = make(map[string]*Session)
	h.mu.Unlock()
	slog.Info("shutdown complete", "component", "hub")
}
