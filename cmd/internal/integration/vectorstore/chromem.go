package vectorstore

import (
	"context"
	"fmt"

	"github.com/philippgille/chromem-go"
	"go.uber.org/zap"
)

// ChromemStore is an embedded, optionally persistent vector index.
type ChromemStore struct {
	collection *chromem.Collection
	logger     *zap.Logger
}

// NewChromemStore opens (or creates) the appointments collection. An empty
// path keeps the index in memory; otherwise every document is persisted
// under path.
func NewChromemStore(path string, compress bool, embedder Embedder, logger *zap.Logger) (*ChromemStore, error) {
	var (
		db  *chromem.DB
		err error
	)
	if path == "" {
		db = chromem.NewDB()
	} else {
		db, err = chromem.NewPersistentDB(path, compress)
		if err != nil {
			return nil, fmt.Errorf("open chromem database at %s: %w", path, err)
		}
	}

	collection, err := db.GetOrCreateCollection(CollectionName, nil, embedder.Embed)
	if err != nil {
		return nil, fmt.Errorf("get or create collection %s: %w", CollectionName, err)
	}

	logger = logger.Named("vectorstore.chromem")
	logger.Info("Semantic index ready",
		zap.String("path", path),
		zap.Int("documents", collection.Count()))

	return &ChromemStore{collection: collection, logger: logger}, nil
}

func (s *ChromemStore) IndexAppointment(ctx context.Context, id int64, description string, meta Metadata) error {
	err := s.collection.AddDocument(ctx, chromem.Document{
		ID:       Key(id),
		Content:  description,
		Metadata: meta.toMap(),
	})
	if err != nil {
		return fmt.Errorf("index appointment %d: %w", id, err)
	}
	return nil
}

func (s *ChromemStore) QuerySimilar(ctx context.Context, text string, topK int) ([]Match, error) {
	if topK <= 0 {
		return []Match{}, nil
	}

	// chromem refuses to return more results than it holds.
	if n := s.collection.Count(); topK > n {
		topK = n
	}
	if topK == 0 {
		return []Match{}, nil
	}

	results, err := s.collection.Query(ctx, text, topK, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("query similar appointments: %w", err)
	}

	matches := make([]Match, 0, len(results))
	for _, r := range results {
		id, err := parseKey(r.ID)
		if err != nil {
			s.logger.Warn("Skipping index entry with non-numeric id", zap.String("id", r.ID))
			continue
		}
		matches = append(matches, Match{
			ID:          id,
			Description: r.Content,
			Metadata:    metadataFromMap(r.Metadata),
			Distance:    1 - r.Similarity,
		})
	}
	return matches, nil
}

// Count returns the number of indexed appointments.
func (s *ChromemStore) Count() int {
	return s.collection.Count()
}

// Close is a no-op; chromem persists on every write.
func (s *ChromemStore) Close() error {
	return nil
}
