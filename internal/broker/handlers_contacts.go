package broker

import (
	"fmt"

	"chatd/internal/protocol"
)

func (d *Dispatcher) handleAddContact(s *Session, line []byte) {
	username, ok := d.requireUser(s)
	if !ok {
		return
	}

	var req protocol.ContactRequest
	if !d.decodeLoose(line, &req) {
		return
	}

	if err := d.dir.AddContact(username, req.Username); err != nil {
		d.replyFail(s, "User not found or already in contacts")
		return
	}
	d.reply(s, protocol.Response{Success: true, Message: fmt.Sprintf("Added %s to contacts", req.Username)})
}

func (d *Dispatcher) handleRemoveContact(s *Session, line []byte) {
	username, ok := d.requireUser(s)
	if !ok {
		return
	}

	var req protocol.ContactRequest
	if !d.decodeLoose(line, &req) {
		return
	}

	if err := d.dir.RemoveContact(username, req.Username); err != nil {
		d.replyFail(s, "Contact not found")
		return
	}
	d.reply(s, protocol.Response{Success: true, Message: fmt.Sprintf("Removed %s from contacts", req.Username)})
}

func (d *Dispatcher) handleGetContacts(s *Session) {
	username := s.Username()
	if username == "" {
		s.queue(protocol.ContactsResponse{Contacts: []protocol.UserSummary{}})
		return
	}
	s.queue(protocol.ContactsResponse{Contacts: d.dir.Contacts(username)})
}

func (d *Dispatcher) handleSendMessage(s *Session, line []byte) {
	sender, ok := d.requireUser(s)
	if !ok {
		return
	}

	var req protocol.SendMessageRequest
	if !d.decodeLoose(line, &req) {
		return
	}

	if !d.hub.IsOnline(req.Recipient) {
		d.replyFail(s, "Recipient not online")
		return
	}

	d.hub.Unicast(req.Recipient, protocol.PrivateMessageEvent{
		Type:      protocol.EventPrivateMessage,
		Sender:    sender,
		Message:   req.Message,
		Timestamp: protocol.Timestamp(),
		Avatar:    d.avatarOf(sender),
	})
	d.reply(s, protocol.Response{Success: true, Message: "Message sent"})
}

// handleTyping forwards the indicator if the recipient is online. There is
// no reply in either direction.
func (d *Dispatcher) handleTyping(s *Session, line []byte) {
	sender := s.Username()
	if sender == "" {
		return
	}

	var req protocol.TypingRequest
	if !d.decodeLoose(line, &req) {
		return
	}

	d.hub.Unicast(req.Recipient, protocol.TypingIndicatorEvent{
		Type:     protocol.EventTypingIndicator,
		Sender:   sender,
		IsTyping: req.IsTyping,
	})
}
