// Command tester drives a scripted multi-room scenario against the engine
// with the offline mock backend and prints what each room observed. It is
// a smoke harness, not a test suite.
package main

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/gookit/color"
	"github.com/olekukonko/tablewriter"
	"github.com/samber/lo"

	"colosseum/agents"
	"colosseum/domain"
	"colosseum/domain/event"
	"colosseum/internal"
	"colosseum/llm"
	"colosseum/runtime"
)

// collector records every event a room subscriber would receive.
type collector struct {
	mu       sync.Mutex
	history  []domain.Message
	messages []domain.Message
}

func (c *collector) Consume(evt event.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch e := evt.(type) {
	case event.HistoryEvent:
		c.history = append(c.history, e.Messages...)
	case event.MessageEvent:
		c.messages = append(c.messages, e.Message)
	}
}

func (c *collector) snapshot() []domain.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]domain.Message, len(c.messages))
	copy(out, c.messages)
	return out
}

type mockFactory struct{}

func (mockFactory) ForPersona(_ context.Context, _ domain.Persona) llm.Capability {
	// Zero latency keeps the scripted run instant.
	return llm.NewMock(100, llm.WithMockLatency(0, 0))
}

func main() {
	log := internal.GetLoggerFromString(os.Getenv("LOG_LEVEL"))
	ctx := context.Background()

	personas := domain.DefaultPersonas()
	rooms := runtime.NewRoomRegistry(domain.DefaultHistoryLimit, lo.Map(personas,
		func(p domain.Persona, _ int) string { return p.ID }))
	subs := runtime.NewSubscriberRegistry(log)
	broadcaster := runtime.NewBroadcaster(rooms, subs, 100, 50*time.Millisecond, log)
	pool := agents.NewPool(ctx, personas, mockFactory{}, broadcaster, rooms, agents.Options{
		MinInterval: time.Millisecond,
	}, log)
	broadcaster.Attach(pool)

	roomA, roomB := &collector{}, &collector{}
	broadcaster.Subscribe("room-a", "tester-a", roomA)
	broadcaster.Subscribe("room-b", "tester-b", roomB)

	// Room isolation: a message in room-a must never surface in room-b.
	broadcaster.OnIncomingMessage(ctx, runtime.Inbound{
		RoomID: "room-a", SenderType: domain.SenderUser,
		DisplayName: "A", Content: "hello from A",
	})

	// Agent reactions: a topic the mock personas care about.
	broadcaster.OnIncomingMessage(ctx, runtime.Inbound{
		RoomID: "room-b", SenderType: domain.SenderUser,
		DisplayName: "B", Content: "이번 주말에 전시 보러 갈까? 추천 좀!",
	})

	// Config surface: disabling leo in room-b must silence only leo there.
	rooms.UpdateConfig("room-b", domain.ConfigPatch{AgentEnabled: map[string]bool{"leo": false}})
	broadcaster.OnIncomingMessage(ctx, runtime.Inbound{
		RoomID: "room-b", SenderType: domain.SenderUser,
		DisplayName: "B", Content: "좋아, 일정과 예산 계획도 세워보자.",
	})

	// Delivery runs on the subscriber queues; give them a moment to drain.
	time.Sleep(200 * time.Millisecond)

	report(roomA.snapshot(), roomB.snapshot(), rooms.List())
}

func report(roomA, roomB []domain.Message, summaries []domain.RoomSummary) {
	crossTalk := lo.CountBy(roomB, func(m domain.Message) bool { return m.Content == "hello from A" })
	if crossTalk == 0 {
		color.Success.Println("OK  room isolation held")
	} else {
		color.Error.Printf("FAIL room-b observed %d message(s) from room-a\n", crossTalk)
	}

	aiReplies := lo.CountBy(roomB, func(m domain.Message) bool { return m.SenderType == domain.SenderAI })
	color.Info.Printf("room-b collected %d agent repl(ies)\n", aiReplies)

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Room", "Participants", "Messages", "Last activity"})
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	for _, room := range summaries {
		table.Append([]string{
			room.ID,
			fmt.Sprintf("%d", room.Participants),
			fmt.Sprintf("%d", room.Messages),
			time.UnixMilli(room.LastActivity).Format(time.TimeOnly),
		})
	}
	table.Render()

	for _, msg := range roomB {
		name := msg.DisplayName
		if msg.SenderType == domain.SenderAI {
			name = color.FgCyan.Sprint(name)
		}
		fmt.Printf("  %s: %s\n", name, msg.Content)
	}
}
