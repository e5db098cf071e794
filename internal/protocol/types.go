package protocol

import "time"

// Request actions (client -> broker). Every request frame is a flat JSON
// object carrying an "action" field plus the action's own fields.
const (
	ActionRegister         = "register"
	ActionLogin            = "login"
	ActionUpdateProfile    = "update_profile"
	ActionChangeUsername   = "change_username"
	ActionSearchUsers      = "search_users"
	ActionAddContact       = "add_contact"
	ActionRemoveContact    = "remove_contact"
	ActionGetContacts      = "get_contacts"
	ActionSendMessage      = "send_message"
	ActionCreateGroup      = "create_group"
	ActionJoinGroup        = "join_group"
	ActionLeaveGroup       = "leave_group"
	ActionAddFriendToGroup = "add_friend_to_group"
	ActionSendGroupMessage = "send_group_message"
	ActionGetGroups        = "get_groups"
	ActionTyping           = "typing"
	ActionUpdateStatus     = "update_status"

	ActionSendFile      = "send_file"
	ActionSendGroupFile = "send_group_file"

	ActionSendFileStart      = "send_file_start"
	ActionSendFileChunk      = "send_file_chunk"
	ActionSendFileEnd        = "send_file_end"
	ActionSendGroupFileStart = "send_group_file_start"
	ActionSendGroupFileChunk = "send_group_file_chunk"
	ActionSendGroupFileEnd   = "send_group_file_end"
)

// Event types (broker -> client, unsolicited). Distinguished by "type".
const (
	EventPrivateMessage    = "private_message"
	EventGroupMessage      = "group_message"
	EventGroupNotification = "group_notification"
	EventTypingIndicator   = "typing_indicator"
	EventStatusUpdate      = "status_update"
	EventProfileUpdate     = "profile_update"
	EventUsernameChanged   = "username_changed"
	EventGroupAdded        = "group_added"
	EventSessionReplaced   = "session_replaced"

	EventFileMessage      = "file_message"
	EventGroupFileMessage = "group_file_message"

	EventFileStart      = "file_start"
	EventFileChunk      = "file_chunk"
	EventFileEnd        = "file_end"
	EventGroupFileStart = "group_file_start"
	EventGroupFileChunk = "group_file_chunk"
	EventGroupFileEnd   = "group_file_end"
)

// Profile is a user's public profile as it appears on the wire.
type Profile struct {
	Nickname string `json:"nickname"`
	Avatar   string `json:"avatar"`
	Status   string `json:"status"`
}

// UserSummary is the per-user shape of search_users and get_contacts replies.
type UserSummary struct {
	Username string `json:"username"`
	Nickname string `json:"nickname"`
	Avatar   string `json:"avatar"`
	Status   string `json:"status"`
}

// GroupSummary is the per-group shape of get_groups replies.
type GroupSummary struct {
	GroupID     string `json:"group_id"`
	Name        string `json:"name"`
	MemberCount int    `json:"member_count"`
}

// Request payloads (client -> broker)

type RegisterRequest struct {
	Username string `json:"username" validate:"required"`
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
}

// ProfilePatch carries the fields of update_profile; nil fields are left
// untouched.
type ProfilePatch struct {
	Nickname *string `json:"nickname,omitempty"`
	Avatar   *string `json:"avatar,omitempty"`
}

type UpdateProfileRequest struct {
	Profile ProfilePatch `json:"profile"`
}

type ChangeUsernameRequest struct {
	NewUsername string `json:"new_username"`
}

type SearchUsersRequest struct {
	Query string `json:"query"`
}

type ContactRequest struct {
	Username string `json:"username" validate:"required"`
}

type SendMessageRequest struct {
	Recipient string `json:"recipient" validate:"required"`
	Message   string `json:"message"`
}

type CreateGroupRequest struct {
	GroupName string `json:"group_name" validate:"required"`
}

type GroupRequest struct {
	GroupID string `json:"group_id" validate:"required"`
}

type AddFriendToGroupRequest struct {
	GroupID string `json:"group_id" validate:"required"`
	Friend  string `json:"friend" validate:"required"`
}

type SendGroupMessageRequest struct {
	GroupID string `json:"group_id" validate:"required"`
	Message string `json:"message"`
}

type TypingRequest struct {
	Recipient string `json:"recipient" validate:"required"`
	IsTyping  bool   `json:"is_typing"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

type SendFileRequest struct {
	Recipient string `json:"recipient" validate:"required"`
	Filename  string `json:"filename" validate:"required"`
	Data      string `json:"data" validate:"required"`
}

type SendGroupFileRequest struct {
	GroupID  string `json:"group_id" validate:"required"`
	Filename string `json:"filename" validate:"required"`
	Data     string `json:"data" validate:"required"`
}

type FileStartRequest struct {
	TransferID string `json:"transfer_id" validate:"required"`
	Recipient  string `json:"recipient" validate:"required"`
	Filename   string `json:"filename" validate:"required"`
	TotalSize  int64  `json:"total_size"`
}

type FileChunkRequest struct {
	TransferID string `json:"transfer_id"`
	Recipient  string `json:"recipient"`
	Seq        int64  `json:"seq"`
	Data       string `json:"data"`
}

type FileEndRequest struct {
	TransferID string `json:"transfer_id"`
	Recipient  string `json:"recipient"`
}

type GroupFileStartRequest struct {
	TransferID string `json:"transfer_id" validate:"required"`
	GroupID    string `json:"group_id" validate:"required"`
	Filename   string `json:"filename" validate:"required"`
	TotalSize  int64  `json:"total_size"`
}

type GroupFileChunkRequest struct {
	TransferID string `json:"transfer_id"`
	GroupID    string `json:"group_id"`
	Seq        int64  `json:"seq"`
	Data       string `json:"data"`
}

type GroupFileEndRequest struct {
	TransferID string `json:"transfer_id"`
	GroupID    string `json:"group_id"`
}

// Response is the reply shape for request/response actions. List-valued
// replies (search_users, get_contacts, get_groups) use their own structs.
type Response struct {
	Success     bool     `json:"success"`
	Message     string   `json:"message"`
	Profile     *Profile `json:"profile,omitempty"`
	NewUsername string   `json:"new_username,omitempty"`
	GroupID     string   `json:"group_id,omitempty"`
	Action      string   `json:"action,omitempty"`
}

type SearchResultsResponse struct {
	Results []UserSummary `json:"results"`
}

type ContactsResponse struct {
	Contacts []UserSummary `json:"contacts"`
}

type GroupsResponse struct {
	Groups []GroupSummary `json:"groups"`
}

// Event payloads (broker -> client)

type PrivateMessageEvent struct {
	Type      string `json:"type"`
	Sender    string `json:"sender"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
	Avatar    string `json:"avatar"`
}

type GroupMessageEvent struct {
	Type      string `json:"type"`
	GroupID   string `json:"group_id"`
	GroupName string `json:"group_name"`
	Sender    string `json:"sender"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
	Avatar    string `json:"avatar"`
}

type GroupNotificationEvent struct {
	Type      string `json:"type"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

type TypingIndicatorEvent struct {
	Type     string `json:"type"`
	Sender   string `json:"sender"`
	IsTyping bool   `json:"is_typing"`
}

type StatusUpdateEvent struct {
	Type     string `json:"type"`
	Username string `json:"username"`
	Status   string `json:"status"`
}

type ProfileUpdateEvent struct {
	Type     string `json:"type"`
	Username string `json:"username"`
	Nickname string `json:"nickname"`
	Avatar   string `json:"avatar"`
	Status   string `json:"status"`
}

type UsernameChangedEvent struct {
	Type        string `json:"type"`
	OldUsername string `json:"old_username"`
	NewUsername string `json:"new_username"`
}

type GroupAddedEvent struct {
	Type        string `json:"type"`
	GroupID     string `json:"group_id"`
	Name        string `json:"name"`
	MemberCount int    `json:"member_count"`
}

// SessionReplacedEvent tells an evicted session that its user logged in
// elsewhere and this connection will be closed.
type SessionReplacedEvent struct {
	Type string `json:"type"`
}

type FileMessageEvent struct {
	Type      string `json:"type"`
	Sender    string `json:"sender"`
	Filename  string `json:"filename"`
	Data      string `json:"data"`
	Timestamp string `json:"timestamp"`
	Avatar    string `json:"avatar"`
}

type GroupFileMessageEvent struct {
	Type      string `json:"type"`
	GroupID   string `json:"group_id"`
	GroupName string `json:"group_name"`
	Sender    string `json:"sender"`
	Filename  string `json:"filename"`
	Data      string `json:"data"`
	Timestamp string `json:"timestamp"`
	Avatar    string `json:"avatar"`
}

type FileStartEvent struct {
	Type       string `json:"type"`
	TransferID string `json:"transfer_id"`
	GroupID    string `json:"group_id,omitempty"`
	Filename   string `json:"filename"`
	TotalSize  int64  `json:"total_size"`
	Sender     string `json:"sender"`
	Timestamp  string `json:"timestamp"`
}

type FileChunkEvent struct {
	Type       string `json:"type"`
	TransferID string `json:"transfer_id"`
	GroupID    string `json:"group_id,omitempty"`
	Seq        int64  `json:"seq"`
	Data       string `json:"data"`
	Sender     string `json:"sender"`
}

type FileEndEvent struct {
	Type       string `json:"type"`
	TransferID string `json:"transfer_id"`
	GroupID    string `json:"group_id,omitempty"`
	Sender     string `json:"sender"`
}

// Timestamp renders the broker's local wall clock as HH:MM, the format
// carried on message and notification events.
func Timestamp() string {
	return time.Now().Format("15:04")
}
