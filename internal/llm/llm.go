package llm

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
)

// Chat roles understood by the completion API.
const (
	RoleSystem = "system"
	RoleUser   = "user"
)

// Message is one chat turn.
type Message struct {
	Role    string
	Content string
}

// CompletionRequest mirrors the chat-completion contract: a model, ordered
// messages and an optional sampling temperature.
type CompletionRequest struct {
	Model       string
	Messages    []Message
	Temperature *float32
}

// Completer returns the text of a single completion.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// ErrNotConfigured is returned by the placeholder client.
var ErrNotConfigured = errors.New("llm client not configured")

// PlaceholderClient is used when no provider credentials are configured.
type PlaceholderClient struct{}

// Complete returns ErrNotConfigured.
func (PlaceholderClient) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	_ = ctx
	_ = req
	return "", ErrNotConfigured
}

// Temperature returns a pointer suitable for CompletionRequest.Temperature.
func Temperature(v float32) *float32 {
	return &v
}

// PromptHash is a stable fingerprint of the messages, logged so a generated
// section can be traced back to the exact prompt that produced it.
func PromptHash(messages []Message) string {
	var b strings.Builder
	for i, m := range messages {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(m.Role)
		b.WriteString(": ")
		b.WriteString(m.Content)
	}
	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}
