// Package vectorstore holds the semantic index of appointment descriptions.
//
// The index is a derived view of the relational store: entries are keyed by
// the relational id, written only after the relational insert committed, and
// never updated or deleted. Both backends rank by cosine similarity and report
// Distance = 1 - similarity, so smaller is closer and results are sorted
// ascending.
package vectorstore

import (
	"context"
	"strconv"
)

// CollectionName is the collection every backend stores appointments in.
const CollectionName = "appointments"

// Metadata is the projection of an appointment stored next to its description.
type Metadata struct {
	Date   string `json:"date"`
	Time   string `json:"time"`
	UserID string `json:"user_id"`
}

// Match is one ranked hit of a similarity query.
type Match struct {
	ID          int64    `json:"id"`
	Description string   `json:"description"`
	Metadata    Metadata `json:"metadata"`
	Distance    float32  `json:"distance"`
}

// Embedder turns text into a vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Key is the string key an appointment id is stored under.
func Key(id int64) string {
	return strconv.FormatInt(id, 10)
}

func parseKey(key string) (int64, error) {
	return strconv.ParseInt(key, 10, 64)
}

func (m Metadata) toMap() map[string]string {
	return map[string]string{
		"date":    m.Date,
		"time":    m.Time,
		"user_id": m.UserID,
	}
}

func metadataFromMap(m map[string]string) Metadata {
	return Metadata{Date: m["date"], Time: m["time"], UserID: m["user_id"]}
}
