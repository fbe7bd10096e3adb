// Package fixture reads and writes the static comment document and normalizes
// whatever shape it arrives in into a typed collection.
package fixture

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/kaptinlin/jsonrepair"
	"github.com/rs/zerolog/log"

	"github.com/MyNameIsWhaaat/reviewtree/internal/review/model"
	"github.com/MyNameIsWhaaat/reviewtree/internal/review/query"
)

// Decode never fails: a missing, null or non-array "comments" field yields an
// empty collection and broken records are skipped. Syntax errors get one pass
// through jsonrepair; input it cannot repair, including an empty document, is
// an empty collection.
func Decode(data []byte) (model.Fixture, error) {
	if !json.Valid(data) {
		repaired, err := jsonrepair.JSONRepair(string(data))
		if err != nil {
			log.Warn().Err(err).Int("bytes", len(data)).Msg("fixture is unreadable, treating collection as empty")
			return empty(), nil
		}
		log.Warn().Int("bytes", len(data)).Msg("fixture is not valid JSON, using repaired document")
		data = []byte(repaired)
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		log.Warn().Err(err).Msg("fixture is not a JSON object, treating collection as empty")
		doc = nil
	}

	comments := decodeComments(doc["comments"])
	return model.Fixture{
		Comments:    comments,
		Statistics:  query.Stats(comments),
		LastUpdated: decodeTime(doc["lastUpdated"]),
	}, nil
}

func empty() model.Fixture {
	return model.Fixture{Comments: []model.Comment{}, Statistics: query.Stats(nil)}
}

func decodeComments(raw json.RawMessage) []model.Comment {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return []model.Comment{}
	}
	if raw[0] != '[' {
		log.Warn().Msg("fixture comments field is not an array, treating collection as empty")
		return []model.Comment{}
	}

	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		log.Warn().Err(err).Msg("fixture comments array unreadable, treating collection as empty")
		return []model.Comment{}
	}

	out := make([]model.Comment, 0, len(items))
	for i, item := range items {
		var c model.Comment
		if err := json.Unmarshal(item, &c); err != nil {
			log.Warn().Err(err).Int("index", i).Msg("skipping malformed comment")
			continue
		}
		out = append(out, c)
	}
	return out
}

func decodeTime(raw json.RawMessage) time.Time {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func LoadFile(path string) (model.Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.Fixture{}, fmt.Errorf("read fixture %s: %w", path, err)
	}
	return Decode(data)
}

// Encode writes fx with statistics recomputed from its comments.
func Encode(w io.Writer, fx model.Fixture) error {
	if fx.Comments == nil {
		fx.Comments = []model.Comment{}
	}
	fx.Statistics = query.Stats(fx.Comments)

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(fx); err != nil {
		return fmt.Errorf("encode fixture: %w", err)
	}
	return nil
}

// FileSource loads the canonical collection from a fixture file.
type FileSource struct {
	Path string
}

func (s FileSource) Load(ctx context.Context) ([]model.Comment, error) {
	_ = ctx

	fx, err := LoadFile(s.Path)
	if err != nil {
		return nil, err
	}
	log.Info().Str("path", s.Path).Int("comments", len(fx.Comments)).Msg("fixture loaded")
	return fx.Comments, nil
}
