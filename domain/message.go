// Package domain contains core concepts of the relay engine.
// This file defines Message events and related rules.
// Messages are immutable and never mutated after the Broadcaster stamps them.
package domain

type SenderType string

const (
	SenderUser SenderType = "user"
	SenderAI   SenderType = "ai"
)

// Message represents an immutable chat event.
// AgentID is set only when SenderType is SenderAI.
type Message struct {
	ID          string
	SenderType  SenderType
	AgentID     string
	DisplayName string
	Content     string
	Ts          int64 // wall-clock milliseconds
}

// FromAgent reports whether the message was produced by the given agent.
func (m Message) FromAgent(agentID string) bool {
	return m.SenderType == SenderAI && m.AgentID == agentID
}
