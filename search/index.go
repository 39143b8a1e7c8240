// Package search maintains an in-memory full-text projection of broadcast
// messages. It is derived state, rebuilt from scratch on every process
// start; it never outlives the bounded in-memory history it mirrors.
package search

import (
	"context"
	"fmt"
	"sync"

	"github.com/blugelabs/bluge"

	"colosseum/domain"
)

// Result is one search hit, most relevant first.
type Result struct {
	MessageID   string
	RoomID      string
	DisplayName string
	Content     string
	Score       float64
}

// Index wraps an in-memory bluge writer. Safe for concurrent use.
type Index struct {
	mu     sync.Mutex
	writer *bluge.Writer
}

func NewIndex() (*Index, error) {
	writer, err := bluge.OpenWriter(bluge.InMemoryOnlyConfig())
	if err != nil {
		return nil, fmt.Errorf("opening in-memory index: %w", err)
	}
	return &Index{writer: writer}, nil
}

// IndexMessage adds one stamped message to the projection.
func (i *Index) IndexMessage(roomID string, msg domain.Message) error {
	doc := bluge.NewDocument(msg.ID).
		AddField(bluge.NewKeywordField("room", roomID).StoreValue()).
		AddField(bluge.NewKeywordField("sender", string(msg.SenderType))).
		AddField(bluge.NewTextField("display_name", msg.DisplayName).StoreValue()).
		AddField(bluge.NewTextField("content", msg.Content).StoreValue())

	i.mu.Lock()
	defer i.mu.Unlock()
	return i.writer.Update(doc.ID(), doc)
}

// Search returns up to limit messages of one room matching the terms,
// ranked by relevance.
func (i *Index) Search(ctx context.Context, roomID, terms string, limit int) ([]Result, error) {
	if limit <= 0 {
		limit = 10
	}
	reader, err := i.writer.Reader()
	if err != nil {
		return nil, fmt.Errorf("index reader: %w", err)
	}
	defer reader.Close()

	query := bluge.NewBooleanQuery().
		AddMust(bluge.NewMatchQuery(terms).SetField("content")).
		AddMust(bluge.NewTermQuery(domain.NormalizeRoomID(roomID)).SetField("room"))

	iter, err := reader.Search(ctx, bluge.NewTopNSearch(limit, query))
	if err != nil {
		return nil, fmt.Errorf("index search: %w", err)
	}

	var results []Result
	for {
		match, err := iter.Next()
		if err != nil {
			return nil, fmt.Errorf("iterating matches: %w", err)
		}
		if match == nil {
			break
		}
		result := Result{Score: match.Score}
		err = match.VisitStoredFields(func(field string, value []byte) bool {
			switch field {
			case "_id":
				result.MessageID = string(value)
			case "room":
				result.RoomID = string(value)
			case "display_name":
				result.DisplayName = string(value)
			case "content":
				result.Content = string(value)
			}
			return true
		})
		if err != nil {
			return nil, fmt.Errorf("loading stored fields: %w", err)
		}
		results = append(results, result)
	}
	return results, nil
}

// Close releases the underlying index.
func (i *Index) Close() error {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.writer.Close()
}
