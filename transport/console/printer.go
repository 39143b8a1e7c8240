package console

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/gookit/color"
	"github.com/olekukonko/tablewriter"

	"colosseum/domain"
	"colosseum/domain/event"
	"colosseum/search"
)

var agentColors = map[string]color.Color{
	"alpha": color.FgCyan,
	"muse":  color.FgMagenta,
	"leo":   color.FgYellow,
}

// printer renders broadcaster events for a terminal. It is the console
// session's EventSink; Consume must stay fast, so it only formats and
// writes.
type printer struct {
	out io.Writer
}

func newPrinter(out io.Writer) *printer {
	if out == nil {
		out = os.Stdout
	}
	return &printer{out: out}
}

func (p *printer) Consume(evt event.Event) {
	switch e := evt.(type) {
	case event.HistoryEvent:
		for _, msg := range e.Messages {
			p.message(msg)
		}
	case event.MessageEvent:
		p.message(e.Message)
	case event.TypingStartEvent:
		fmt.Fprintln(p.out, color.FgDarkGray.Sprintf("… %s is typing", e.DisplayName))
	case event.TypingStopEvent:
		// Quiet: stop indicators would only add noise on a line terminal.
	case event.RoomsUpdateEvent:
		// Rendered on demand via /rooms.
	}
}

func (p *printer) message(msg domain.Message) {
	stamp := time.UnixMilli(msg.Ts).Format("15:04:05")
	name := msg.DisplayName
	if msg.SenderType == domain.SenderAI {
		c, ok := agentColors[msg.AgentID]
		if !ok {
			c = color.FgGreen
		}
		name = c.Sprint(name)
	}
	fmt.Fprintf(p.out, "[%s] %s: %s\n", stamp, name, msg.Content)
}

func (p *printer) notice(text string) {
	fmt.Fprintln(p.out, color.FgDarkGray.Sprint("* "+text))
}

func (p *printer) roomTable(rooms []domain.RoomSummary) {
	table := tablewriter.NewWriter(p.out)
	table.SetHeader([]string{"Room", "Participants", "Messages", "Last activity"})
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	for _, room := range rooms {
		table.Append([]string{
			room.ID,
			fmt.Sprintf("%d", room.Participants),
			fmt.Sprintf("%d", room.Messages),
			time.UnixMilli(room.LastActivity).Format("15:04:05"),
		})
	}
	table.Render()
}

func (p *printer) searchResults(results []search.Result) {
	if len(results) == 0 {
		p.notice("no matches")
		return
	}
	for _, r := range results {
		fmt.Fprintf(p.out, "%.2f %s: %s\n", r.Score, r.DisplayName, r.Content)
	}
}

func (p *printer) config(cfg domain.RoomConfig) {
	fmt.Fprintf(p.out, "responseProbability=%.2f\n", cfg.ResponseProbability)
	for id, on := range cfg.AgentEnabled {
		fmt.Fprintf(p.out, "agent %s enabled=%t\n", id, on)
	}
}
