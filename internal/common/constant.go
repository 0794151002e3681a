package common

// SessionTokenHeaderName is the gRPC metadata key carrying the session token.
const SessionTokenHeaderName = "session_token"

// DeletedPlaceholder replaces the text of a message deleted for everyone.
const DeletedPlaceholder = "This message was deleted"

// MaxMessageLength bounds message text accepted by the server, in bytes.
const MaxMessageLength = 4096
