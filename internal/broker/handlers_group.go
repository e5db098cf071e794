package broker

import (
	"errors"
	"fmt"

	"chatd/internal/directory"
	"chatd/internal/protocol"
)

func (d *Dispatcher) handleCreateGroup(s *Session, line []byte) {
	username, ok := d.requireUser(s)
	if !ok {
		return
	}

	var req protocol.CreateGroupRequest
	if !d.decodeLoose(line, &req) {
		return
	}

	groupID := d.dir.CreateGroup(req.GroupName, username)
	d.reply(s, protocol.Response{
		Success: true,
		Message: fmt.Sprintf("Group \"%s\" created", req.GroupName),
		GroupID: groupID,
	})
}

func (d *Dispatcher) handleJoinGroup(s *Session, line []byte) {
	username, ok := d.requireUser(s)
	if !ok {
		return
	}

	var req protocol.GroupRequest
	if !d.decodeLoose(line, &req) {
		return
	}

	name, others, err := d.dir.JoinGroup(req.GroupID, username)
	if err != nil {
		d.replyFail(s, "Group not found or already a member")
		return
	}

	d.hub.SendToUsers(others, protocol.GroupNotificationEvent{
		Type:      protocol.EventGroupNotification,
		Message:   fmt.Sprintf("%s joined the group", username),
		Timestamp: protocol.Timestamp(),
	})
	d.reply(s, protocol.Response{Success: true, Message: fmt.Sprintf("Joined group \"%s\"", name)})
}

func (d *Dispatcher) handleLeaveGroup(s *Session, line []byte) {
	username, ok := d.requireUser(s)
	if !ok {
		return
	}

	var req protocol.GroupRequest
	if !d.decodeLoose(line, &req) {
		return
	}

	name, remaining, err := d.dir.LeaveGroup(req.GroupID, username)
	if err != nil {
		d.replyFail(s, "Group not found or not a member")
		return
	}

	d.hub.SendToUsers(remaining, protocol.GroupNotificationEvent{
		Type:      protocol.EventGroupNotification,
		Message:   fmt.Sprintf("%s left the group", username),
		Timestamp: protocol.Timestamp(),
	})
	d.reply(s, protocol.Response{Success: true, Message: fmt.Sprintf("Left group \"%s\"", name)})
}

func (d *Dispatcher) handleAddFriendToGroup(s *Session, line []byte) {
	username, ok := d.requireUser(s)
	if !ok {
		return
	}

	var req protocol.AddFriendToGroupRequest
	if !d.decode(line, &req) {
		d.replyFail(s, "Missing group_id or friend")
		return
	}

	name, members, memberCount, err := d.dir.AddFriendToGroup(req.GroupID, username, req.Friend)
	if err != nil {
		d.replyFail(s, addFriendFailureMessage(err))
		return
	}

	d.hub.SendToUsers(members, protocol.GroupNotificationEvent{
		Type:      protocol.EventGroupNotification,
		Message:   fmt.Sprintf("%s was added to the group by %s", req.Friend, username),
		Timestamp: protocol.Timestamp(),
	})
	d.hub.Unicast(req.Friend, protocol.GroupAddedEvent{
		Type:        protocol.EventGroupAdded,
		GroupID:     req.GroupID,
		Name:        name,
		MemberCount: memberCount,
	})
	d.reply(s, protocol.Response{
		Success: true,
		Message: fmt.Sprintf("Added %s to group \"%s\"", req.Friend, name),
		Action:  protocol.ActionAddFriendToGroup,
	})
}

func addFriendFailureMessage(err error) string {
	switch {
	case errors.Is(err, directory.ErrGroupNotFound):
		return "Group not found"
	case errors.Is(err, directory.ErrNotMember):
		return "You are not a member of this group"
	case errors.Is(err, directory.ErrUserNotFound):
		return "Friend user not found"
	case errors.Is(err, directory.ErrNotContact):
		return "User is not in your contacts"
	case errors.Is(err, directory.ErrAlreadyMember):
		return "User already in group"
	}
	return "Group not found"
}

func (d *Dispatcher) handleSendGroupMessage(s *Session, line []byte) {
	sender, ok := d.requireUser(s)
	if !ok {
		return
	}

	var req protocol.SendGroupMessageRequest
	if !d.decodeLoose(line, &req) {
		return
	}

	name, others, err := d.dir.GroupMessageTargets(req.GroupID, sender)
	if err != nil {
		d.replyFail(s, "Group not found or not a member")
		return
	}

	d.hub.SendToUsers(others, protocol.GroupMessageEvent{
		Type:      protocol.EventGroupMessage,
		GroupID:   req.GroupID,
		GroupName: name,
		Sender:    sender,
		Message:   req.Message,
		Timestamp: protocol.Timestamp(),
		Avatar:    d.avatarOf(sender),
	})
	d.reply(s, protocol.Response{Success: true, Message: "Message sent to group"})
}

func (d *Dispatcher) handleGetGroups(s *Session) {
	username := s.Username()
	if username == "" {
		s.queue(protocol.GroupsResponse{Groups: []protocol.GroupSummary{}})
		return
	}
	s.queue(protocol.GroupsResponse{Groups: d.dir.GroupsOf(username)})
}
