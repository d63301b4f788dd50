// Package search maintains a full-text index over the broadcast half of the
// message log. Private messages are never indexed, so a search can only ever
// surface what every participant is allowed to read.
package search

import (
	"context"

	"github.com/blugelabs/bluge"
	"github.com/google/uuid"

	"room-lab/domain"
)

type Index struct {
	writer *bluge.Writer
}

func Open(path string) (*Index, error) {
	writer, err := bluge.OpenWriter(bluge.DefaultConfig(path))
	if err != nil {
		return nil, err
	}
	return &Index{writer: writer}, nil
}

func (i *Index) Close() error {
	return i.writer.Close()
}

// Add indexes a freshly appended message. Private messages are skipped.
func (i *Index) Add(m domain.Message) error {
	if m.Kind == domain.Private {
		return nil
	}
	return i.writer.Update(docID(m.ID), document(m))
}

// Sync reconciles the index after an edit: a message rewritten to private
// leaves the index, anything else is reindexed under the same id.
func (i *Index) Sync(m domain.Message) error {
	if m.Kind == domain.Private {
		return i.Remove(m.ID)
	}
	return i.writer.Update(docID(m.ID), document(m))
}

func (i *Index) Remove(id uuid.UUID) error {
	return i.writer.Delete(docID(id))
}

// Search returns the ids of the best limit matches for terms, best first.
func (i *Index) Search(ctx context.Context, terms string, limit int) ([]uuid.UUID, error) {
	reader, err := i.writer.Reader()
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	query := bluge.NewMatchQuery(terms).SetField("text")
	iterator, err := reader.Search(ctx, bluge.NewTopNSearch(limit, query))
	if err != nil {
		return nil, err
	}

	var ids []uuid.UUID
	for {
		match, err := iterator.Next()
		if err != nil {
			return nil, err
		}
		if match == nil {
			break
		}
		err = match.VisitStoredFields(func(field string, value []byte) bool {
			if field == "_id" {
				if id, parseErr := uuid.ParseBytes(value); parseErr == nil {
					ids = append(ids, id)
				}
			}
			return true
		})
		if err != nil {
			return nil, err
		}
	}
	return ids, nil
}

func docID(id uuid.UUID) bluge.Identifier {
	return bluge.Identifier(id.String())
}

func document(m domain.Message) *bluge.Document {
	return bluge.NewDocument(m.ID.String()).
		AddField(bluge.NewTextField("text", m.Text)).
		AddField(bluge.NewKeywordField("from", m.From)).
		AddField(bluge.NewKeywordField("kind", string(m.Kind)))
}
