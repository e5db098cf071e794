package broker

import (
	"encoding/base64"

	"chatd/internal/constants"
	"chatd/internal/protocol"
)

// Legacy one-shot file send. The payload travels inside a single frame, so
// the broker decodes it to check integrity and the 200 KiB raw-size cap.

func (d *Dispatcher) handleSendFile(s *Session, line []byte) {
	sender, ok := d.requireUser(s)
	if !ok {
		return
	}

	var req protocol.SendFileRequest
	if !d.decode(line, &req) {
		d.replyFail(s, "Missing file data")
		return
	}

	raw, err := base64.StdEncoding.DecodeString(req.Data)
	if err != nil {
		d.replyFail(s, "Corrupted file data")
		return
	}
	if len(raw) > constants.MaxInlineFileSize {
		d.replyFail(s, "File too large (max 200KB)")
		return
	}
	if !d.hub.IsOnline(req.Recipient) {
		d.replyFail(s, "Recipient not online")
		return
	}

	d.hub.Unicast(req.Recipient, protocol.FileMessageEvent{
		Type:      protocol.EventFileMessage,
		Sender:    sender,
		Filename:  req.Filename,
		Data:      req.Data,
		Timestamp: protocol.Timestamp(),
		Avatar:    d.avatarOf(sender),
	})
	d.reply(s, protocol.Response{Success: true, Message: "File sent"})
}

func (d *Dispatcher) handleSendGroupFile(s *Session, line []byte) {
	sender, ok := d.requireUser(s)
	if !ok {
		return
	}

	var req protocol.SendGroupFileRequest
	if !d.decode(line, &req) {
		d.replyFail(s, "Missing file data")
		return
	}

	name, others, err := d.dir.GroupMessageTargets(req.GroupID, sender)
	if err != nil {
		d.replyFail(s, "Not in group")
		return
	}
	raw, err := base64.StdEncoding.DecodeString(req.Data)
	if err != nil {
		d.replyFail(s, "Corrupted file data")
		return
	}
	if len(raw) > constants.MaxInlineFileSize {
		d.replyFail(s, "File too large (max 200KB)")
		return
	}

	d.hub.SendToUsers(others, protocol.GroupFileMessageEvent{
		Type:      protocol.EventGroupFileMessage,
		GroupID:   req.GroupID,
		GroupName: name,
		Sender:    sender,
		Filename:  req.Filename,
		Data:      req.Data,
		Timestamp: protocol.Timestamp(),
		Avatar:    d.avatarOf(sender),
	})
	d.reply(s, protocol.Response{Success: true, Message: "File sent to group"})
}

// Chunked transfers. The broker is stateless: start frames are validated
// and every chunk/end frame re-resolves its target and is relayed without
// the payload ever being decoded. Chunk and end frames never produce a
// response; any failure just drops the frame.

func (d *Dispatcher) handleSendFileStart(s *Session, line []byte) {
	sender, ok := d.requireUser(s)
	if !ok {
		return
	}

	var req protocol.FileStartRequest
	if !d.decode(line, &req) {
		d.replyFail(s, "Missing fields")
		return
	}
	if req.TotalSize > constants.MaxTransferSize {
		d.replyFail(s, "File too large")
		return
	}
	if !d.hub.IsOnline(req.Recipient) {
		d.replyFail(s, "Recipient not online")
		return
	}

	d.hub.Unicast(req.Recipient, protocol.FileStartEvent{
		Type:       protocol.EventFileStart,
		TransferID: req.TransferID,
		Filename:   req.Filename,
		TotalSize:  req.TotalSize,
		Sender:     sender,
		Timestamp:  protocol.Timestamp(),
	})
}

func (d *Dispatcher) handleSendFileChunk(s *Session, line []byte) {
	sender := s.Username()
	if sender == "" {
		return
	}

	var req protocol.FileChunkRequest
	if !d.decodeLoose(line, &req) {
		return
	}

	d.hub.Unicast(req.Recipient, protocol.FileChunkEvent{
		Type:       protocol.EventFileChunk,
		TransferID: req.TransferID,
		Seq:        req.Seq,
		Data:       req.Data,
		Sender:     sender,
	})
}

func (d *Dispatcher) handleSendFileEnd(s *Session, line []byte) {
	sender := s.Username()
	if sender == "" {
		return
	}

	var req protocol.FileEndRequest
	if !d.decodeLoose(line, &req) {
		return
	}

	d.hub.Unicast(req.Recipient, protocol.FileEndEvent{
		Type:       protocol.EventFileEnd,
		TransferID: req.TransferID,
		Sender:     sender,
	})
}

func (d *Dispatcher) handleSendGroupFileStart(s *Session, line []byte) {
	sender, ok := d.requireUser(s)
	if !ok {
		return
	}

	var req protocol.GroupFileStartRequest
	if !d.decodeLoose(line, &req) {
		return
	}

	_, others, err := d.dir.GroupMessageTargets(req.GroupID, sender)
	if err != nil {
		d.replyFail(s, "Not in group")
		return
	}
	if req.TotalSize > constants.MaxTransferSize {
		d.replyFail(s, "File too large")
		return
	}

	d.hub.SendToUsers(others, protocol.FileStartEvent{
		Type:       protocol.EventGroupFileStart,
		TransferID: req.TransferID,
		GroupID:    req.GroupID,
		Filename:   req.Filename,
		TotalSize:  req.TotalSize,
		Sender:     sender,
		Timestamp:  protocol.Timestamp(),
	})
}

func (d *Dispatcher) handleSendGroupFileChunk(s *Session, line []byte) {
	sender := s.Username()
	if sender == "" {
		return
	}

	var req protocol.GroupFileChunkRequest
	if !d.decodeLoose(line, &req) {
		return
	}

	_, others, err := d.dir.GroupMessageTargets(req.GroupID, sender)
	if err != nil {
		return
	}

	d.hub.SendToUsers(others, protocol.FileChunkEvent{
		Type:       protocol.EventGroupFileChunk,
		TransferID: req.TransferID,
		GroupID:    req.GroupID,
		Seq:        req.Seq,
		Data:       req.Data,
		Sender:     sender,
	})
}

func (d *Dispatcher) handleSendGroupFileEnd(s *Session, line []byte) {
	sender := s.Username()
	if sender == "" {
		return
	}

	var req protocol.GroupFileEndRequest
	if !d.decodeLoose(line, &req) {
		return
	}

	_, others, err := d.dir.GroupMessageTargets(req.GroupID, sender)
	if err != nil {
		return
	}

	d.hub.SendToUsers(others, protocol.FileEndEvent{
		Type:       protocol.EventGroupFileEnd,
		TransferID: req.TransferID,
		GroupID:    req.GroupID,
		Sender:     sender,
	})
}
