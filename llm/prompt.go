package llm

import (
	"fmt"
	"strings"

	"colosseum/domain"
)

// Transcript renders the history as one "name: content" line per message,
// oldest first.
func Transcript(history []domain.Message) string {
	lines := make([]string, 0, len(history))
	for _, m := range history {
		lines = append(lines, fmt.Sprintf("%s: %s", m.DisplayName, m.Content))
	}
	return strings.Join(lines, "\n")
}

// BuildSystemPrompt assembles the persona prompt, the transcript and the
// no-response instruction into a single system prompt for chat-style APIs.
func BuildSystemPrompt(req Request) string {
	return strings.Join([]string{
		req.Persona.SystemPrompt,
		"",
		"아래는 현재까지의 그룹 채팅 대화 내용이야.",
		Transcript(req.History),
		"",
		"마지막 메시지를 보고, 너의 성격과 역할에 따라 이 대화에 참여하고 싶으면 응답을 생성해. " +
			"만약 할 말이 없거나 끼어들 상황이 아니라고 판단되면, 오직 `" + NoResponseToken + "` 라고만 출력해.",
		"",
		fmt.Sprintf("마지막 메시지: %q", req.LastMessage.Content),
	}, "\n")
}

// BuildUserPrompt assembles a single user-role prompt for APIs that take
// the persona prompt through a separate system field.
func BuildUserPrompt(req Request) string {
	return strings.Join([]string{
		"아래는 현재까지의 그룹 채팅 대화 내용이야.",
		Transcript(req.History),
		"",
		"마지막 메시지를 보고, 너의 성격과 역할에 따라 이 대화에 참여하고 싶으면 응답을 생성해. " +
			"만약 할 말이 없거나 끼어들 상황이 아니라고 판단되면, 오직 `" + NoResponseToken + "` 라고만 출력해.",
		"",
		fmt.Sprintf("마지막 메시지: %q", req.LastMessage.Content),
		"",
		"너의 응답:",
	}, "\n")
}
