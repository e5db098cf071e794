package broker

import (
	"encoding/json"

	"github.com/go-playground/validator/v10"

	"chatd/internal/directory"
	"chatd/internal/protocol"
)

// Dispatcher interprets decoded requests: it enforces preconditions,
// mutates the directory, and routes responses and events through the hub.
// Handlers run on the calling session's read goroutine; anything touching
// shared state goes through the directory's or the hub's own locking.
type Dispatcher struct {
	hub      *Hub
	dir      *directory.Directory
	validate *validator.Validate
}

func NewDispatcher(hub *Hub) *Dispatcher {
	return &Dispatcher{
		hub:      hub,
		dir:      hub.Directory(),
		validate: validator.New(),
	}
}

// Dispatch routes one request to its handler. Unknown actions are ignored
// silently.
func (d *Dispatcher) Dispatch(s *Session, action string, line []byte) {
	switch action {
	case protocol.ActionRegister:
		d.handleRegister(s, line)
	case protocol.ActionLogin:
		d.handleLogin(s, line)
	case protocol.ActionUpdateProfile:
		d.handleUpdateProfile(s, line)
	case protocol.ActionChangeUsername:
		d.handleChangeUsername(s, line)
	case protocol.ActionSearchUsers:
		d.handleSearchUsers(s, line)
	case protocol.ActionAddContact:
		d.handleAddContact(s, line)
	case protocol.ActionRemoveContact:
		d.handleRemoveContact(s, line)
	case protocol.ActionGetContacts:
		d.handleGetContacts(s)
	case protocol.ActionSendMessage:
		d.handleSendMessage(s, line)
	case protocol.ActionCreateGroup:
		d.handleCreateGroup(s, line)
	case protocol.ActionJoinGroup:
		d.handleJoinGroup(s, line)
	case protocol.ActionLeaveGroup:
		d.handleLeaveGroup(s, line)
	case protocol.ActionAddFriendToGroup:
		d.handleAddFriendToGroup(s, line)
	case protocol.ActionSendGroupMessage:
		d.handleSendGroupMessage(s, line)
	case protocol.ActionGetGroups:
		d.handleGetGroups(s)
	case protocol.ActionTyping:
		d.handleTyping(s, line)
	case protocol.ActionUpdateStatus:
		d.handleUpdateStatus(s, line)
	case protocol.ActionSendFile:
		d.handleSendFile(s, line)
	case protocol.ActionSendGroupFile:
		d.handleSendGroupFile(s, line)
	case protocol.ActionSendFileStart:
		d.handleSendFileStart(s, line)
	case protocol.ActionSendFileChunk:
		d.handleSendFileChunk(s, line)
	case protocol.ActionSendFileEnd:
		d.handleSendFileEnd(s, line)
	case protocol.ActionSendGroupFileStart:
		d.handleSendGroupFileStart(s, line)
	case protocol.ActionSendGroupFileChunk:
		d.handleSendGroupFileChunk(s, line)
	case protocol.ActionSendGroupFileEnd:
		d.handleSendGroupFileEnd(s, line)
	}
}

// decode unmarshals the request line into dst and checks its validate
// tags. Handlers that care about which rule failed use decodeLoose plus
// their own checks instead.
func (d *Dispatcher) decode(line []byte, dst any) bool {
	if err := json.Unmarshal(line, dst); err != nil {
		return false
	}
	return d.validate.Struct(dst) == nil
}

// decodeLoose unmarshals without validation.
func (d *Dispatcher) decodeLoose(line []byte, dst any) bool {
	return json.Unmarshal(line, dst) == nil
}

func (d *Dispatcher) reply(s *Session, resp protocol.Response) {
	s.queue(resp)
}

func (d *Dispatcher) replyFail(s *Session, message string) {
	s.queue(protocol.Response{Success: false, Message: message})
}

// requireUser returns the caller's bound username, replying "Not logged
// in" when the session has no identity.
func (d *Dispatcher) requireUser(s *Session) (string, bool) {
	username := s.Username()
	if username == "" {
		d.replyFail(s, "Not logged in")
		return "", false
	}
	return username, true
}

func (d *Dispatcher) avatarOf(username string) string {
	profile, ok := d.dir.Profile(username)
	if !ok {
		return ""
	}
	return profile.Avatar
}
