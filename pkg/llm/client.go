// Package llm is a thin client layer over chat-completion APIs. The analysis
// package drives it; nothing else in the core touches a language model.
package llm

import (
	"context"
)

// Message is one turn of a chat conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Client is a single chat-completion backend.
type Client interface {
	Chat(ctx context.Context, messages []Message, options *SamplingOptions) (string, error)
}

// SamplingOptions tune generation. Zero values are omitted from requests.
type SamplingOptions struct {
	Temperature float64 `json:"temperature"`
	TopP        float64 `json:"top_p"`
	Seed        int64   `json:"seed"`
}
