package constants

const (
	// MaxTransferSize is the largest total_size accepted on a chunked
	// file transfer start frame.
	MaxTransferSize = 100 * 1024 * 1024

	// MaxInlineFileSize caps the decoded payload of the legacy one-shot
	// send_file / send_group_file actions.
	MaxInlineFileSize = 200 * 1024

	// SessionSendBufferSize is the per-session outbound frame queue depth.
	SessionSendBufferSize = 256

	// ReadChunkSize is how much a session reads from its socket per call.
	ReadChunkSize = 4096
)

const (
	StatusOnline  = "online"
	StatusOffline = "offline"

	// DefaultAvatar is assigned at registration until the user picks one.
	DefaultAvatar = "👤"
)
