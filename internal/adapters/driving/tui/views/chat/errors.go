package chat

import "errors"

// ErrNoChatService indicates that no chat service was provided.
var ErrNoChatService = errors.New("chat service is required")
