package broker

import (
	"strings"

	"chatd/internal/constants"
	"chatd/internal/protocol"
)

func (d *Dispatcher) handleRegister(s *Session, line []byte) {
	var req protocol.RegisterRequest
	if !d.decode(line, &req) {
		d.replyFail(s, "Username required")
		return
	}

	if err := d.dir.Register(req.Username); err != nil {
		d.replyFail(s, "Username already exists")
		return
	}

	// Registration does not bind the session; a login must follow.
	d.reply(s, protocol.Response{Success: true, Message: "Registration successful"})
}

func (d *Dispatcher) handleLogin(s *Session, line []byte) {
	var req protocol.LoginRequest
	if !d.decode(line, &req) {
		d.replyFail(s, "Username required")
		return
	}

	if !d.dir.Exists(req.Username) {
		d.replyFail(s, "User not found")
		return
	}

	// A session that logs in again under a different name drops its old
	// identity first, as if it had disconnected.
	if old := s.Username(); old != "" && old != req.Username {
		d.hub.ReleaseBinding(old, s)
		d.dir.SetStatus(old, constants.StatusOffline)
		d.hub.SendToUsers(d.dir.ContactHolders(old), protocol.StatusUpdateEvent{
			Type:     protocol.EventStatusUpdate,
			Username: old,
			Status:   constants.StatusOffline,
		})
	}

	s.setUsername(req.Username)
	s.transitionTo(SessionStateBound)
	d.hub.Bind(req.Username, s)
	d.dir.SetStatus(req.Username, constants.StatusOnline)

	d.hub.SendToUsers(d.dir.ContactHolders(req.Username), protocol.StatusUpdateEvent{
		Type:     protocol.EventStatusUpdate,
		Username: req.Username,
		Status:   constants.StatusOnline,
	})

	profile, _ := d.dir.Profile(req.Username)
	d.reply(s, protocol.Response{Success: true, Message: "Login successful", Profile: &profile})
}

func (d *Dispatcher) handleUpdateProfile(s *Session, line []byte) {
	username, ok := d.requireUser(s)
	if !ok {
		return
	}

	var req protocol.UpdateProfileRequest
	if !d.decodeLoose(line, &req) {
		return
	}

	profile, ok := d.dir.UpdateProfile(username, req.Profile)
	if !ok {
		return
	}

	d.broadcastProfileUpdate(username, profile)
	d.reply(s, protocol.Response{Success: true, Message: "Profile updated"})
}

func (d *Dispatcher) handleChangeUsername(s *Session, line []byte) {
	oldName, ok := d.requireUser(s)
	if !ok {
		return
	}

	var req protocol.ChangeUsernameRequest
	if !d.decodeLoose(line, &req) {
		return
	}
	newName := strings.TrimSpace(req.NewUsername)
	if newName == "" {
		d.replyFail(s, "New username required")
		return
	}

	profile, targets, err := d.dir.Rename(oldName, newName)
	if err != nil {
		d.replyFail(s, "Username already taken")
		return
	}

	// Rebind before anything routes to the new name.
	d.hub.Rebind(oldName, newName, s)
	s.setUsername(newName)

	d.hub.SendToUsersExcept(targets, newName, protocol.UsernameChangedEvent{
		Type:        protocol.EventUsernameChanged,
		OldUsername: oldName,
		NewUsername: newName,
	})

	d.reply(s, protocol.Response{
		Success:     true,
		Message:     "Username changed",
		Profile:     &profile,
		NewUsername: newName,
	})

	d.broadcastProfileUpdate(newName, profile)
}

func (d *Dispatcher) handleSearchUsers(s *Session, line []byte) {
	var req protocol.SearchUsersRequest
	if !d.decodeLoose(line, &req) {
		return
	}
	s.queue(protocol.SearchResultsResponse{Results: d.dir.Search(req.Query)})
}

func (d *Dispatcher) handleUpdateStatus(s *Session, line []byte) {
	username, ok := d.requireUser(s)
	if !ok {
		return
	}

	var req protocol.UpdateStatusRequest
	if !d.decodeLoose(line, &req) {
		return
	}

	d.dir.SetStatus(username, req.Status)
	d.hub.SendToUsers(d.dir.ContactHolders(username), protocol.StatusUpdateEvent{
		Type:     protocol.EventStatusUpdate,
		Username: username,
		Status:   req.Status,
	})

	d.reply(s, protocol.Response{Success: true, Message: "Status updated"})
}

// broadcastProfileUpdate sends the user's current profile to their whole
// notification set, the user included when they share a group.
func (d *Dispatcher) broadcastProfileUpdate(username string, profile protocol.Profile) {
	d.hub.SendToUsers(d.dir.NotificationSet(username), protocol.ProfileUpdateEvent{
		Type:     protocol.EventProfileUpdate,
		Username: username,
		Nickname: profile.Nickname,
		Avatar:   profile.Avatar,
		Status:   profile.Status,
	})
}
