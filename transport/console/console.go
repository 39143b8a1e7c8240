// Package console is a minimal concrete transport collaborator: it reads
// user lines from stdin, applies its own rate and length filtering, and
// forwards them to the Broadcaster. The engine itself never depends on it.
package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"colosseum/domain"
	"colosseum/runtime"
	"colosseum/search"
)

type Options struct {
	DisplayName   string
	MaxContentLen int
	RatePerSec    float64
	In            io.Reader
	Out           io.Writer
}

// Console drives one interactive participant session.
type Console struct {
	broadcaster *runtime.Broadcaster
	rooms       *runtime.RoomRegistry
	index       *search.Index
	limiter     *rate.Limiter
	opts        Options
	log         *slog.Logger

	participantID string
	roomID        string
	printer       *printer
}

func New(broadcaster *runtime.Broadcaster, rooms *runtime.RoomRegistry, index *search.Index, opts Options, log *slog.Logger) *Console {
	if opts.DisplayName == "" {
		opts.DisplayName = "사용자"
	}
	if opts.MaxContentLen <= 0 {
		opts.MaxContentLen = 2000
	}
	if opts.RatePerSec <= 0 {
		opts.RatePerSec = 2
	}
	return &Console{
		broadcaster:   broadcaster,
		rooms:         rooms,
		index:         index,
		limiter:       rate.NewLimiter(rate.Limit(opts.RatePerSec), int(opts.RatePerSec)+1),
		opts:          opts,
		log:           log,
		participantID: uuid.NewString(),
		roomID:        domain.DefaultRoomID,
		printer:       newPrinter(opts.Out),
	}
}

// Run subscribes to the default room and consumes stdin until EOF or
// context cancellation.
func (c *Console) Run(ctx context.Context) error {
	c.broadcaster.Subscribe(c.roomID, c.participantID, c.printer)
	defer c.broadcaster.Unsubscribe(c.roomID, c.participantID)

	c.printer.notice(fmt.Sprintf("joined %s — /join <room>, /rooms, /find <terms>, /config, /quit", c.roomID))

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(c.opts.In)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			if quit := c.handleLine(ctx, line); quit {
				return nil
			}
		}
	}
}

func (c *Console) handleLine(ctx context.Context, line string) (quit bool) {
	trimmed := strings.TrimSpace(line)
	switch {
	case trimmed == "":
		// Blank input is silently dropped before it reaches the Broadcaster.
		return false
	case trimmed == "/quit":
		return true
	case strings.HasPrefix(trimmed, "/join "):
		c.join(strings.TrimSpace(strings.TrimPrefix(trimmed, "/join ")))
		return false
	case trimmed == "/rooms":
		c.printer.roomTable(c.rooms.List())
		return false
	case strings.HasPrefix(trimmed, "/find"):
		c.find(ctx, trimmed)
		return false
	case trimmed == "/config":
		c.printer.config(c.rooms.GetConfig(c.roomID))
		return false
	}

	if !c.limiter.Allow() {
		c.printer.notice("sending too fast, message dropped")
		return false
	}
	if len([]rune(trimmed)) > c.opts.MaxContentLen {
		trimmed = domain.Truncate(trimmed, c.opts.MaxContentLen)
	}

	c.broadcaster.OnIncomingMessage(ctx, runtime.Inbound{
		RoomID:      c.roomID,
		SenderType:  domain.SenderUser,
		DisplayName: c.opts.DisplayName,
		Content:     trimmed,
	})
	return false
}

func (c *Console) join(roomID string) {
	roomID = domain.NormalizeRoomID(roomID)
	if roomID == c.roomID {
		return
	}
	c.broadcaster.Unsubscribe(c.roomID, c.participantID)
	c.roomID = roomID
	c.broadcaster.Subscribe(c.roomID, c.participantID, c.printer)
	c.printer.notice("joined " + roomID)
}

func (c *Console) find(ctx context.Context, line string) {
	if c.index == nil {
		c.printer.notice("search is disabled")
		return
	}
	query := search.ParseQuery(line)
	if query.RoomID == "" {
		query.RoomID = c.roomID
	}
	results, err := c.index.Search(ctx, query.RoomID, query.Terms, query.Limit)
	if err != nil {
		c.log.Warn("history search failed", slog.Any("err", err))
		c.printer.notice("search failed")
		return
	}
	c.printer.searchResults(results)
}
