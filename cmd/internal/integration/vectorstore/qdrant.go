package vectorstore

import (
	"context"
	"fmt"

	"github.com/qdrant/go-client/qdrant"
	"go.uber.org/zap"
)

// QdrantConfig locates a Qdrant instance (gRPC port).
type QdrantConfig struct {
	Host       string
	Port       int
	APIKey     string
	UseTLS     bool
	Dimensions uint64
}

// QdrantStore keeps the index in a networked Qdrant collection. Embeddings
// are computed client-side with the configured Embedder.
type QdrantStore struct {
	client   *qdrant.Client
	embedder Embedder
	logger   *zap.Logger
}

// NewQdrantStore connects and creates the appointments collection if absent.
func NewQdrantStore(ctx context.Context, cfg *QdrantConfig, embedder Embedder, logger *zap.Logger) (*QdrantStore, error) {
	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   cfg.Host,
		Port:   cfg.Port,
		APIKey: cfg.APIKey,
		UseTLS: cfg.UseTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("connect to qdrant at %s:%d: %w", cfg.Host, cfg.Port, err)
	}

	exists, err := client.CollectionExists(ctx, CollectionName)
	if err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("check collection %s: %w", CollectionName, err)
	}

	logger = logger.Named("vectorstore.qdrant")
	if !exists {
		err = client.CreateCollection(ctx, &qdrant.CreateCollection{
			CollectionName: CollectionName,
			VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
				Size:     cfg.Dimensions,
				Distance: qdrant.Distance_Cosine,
			}),
		})
		if err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("create collection %s: %w", CollectionName, err)
		}
		logger.Info("Created qdrant collection",
			zap.String("collection", CollectionName),
			zap.Uint64("dimensions", cfg.Dimensions))
	}

	return &QdrantStore{client: client, embedder: embedder, logger: logger}, nil
}

func (s *QdrantStore) IndexAppointment(ctx context.Context, id int64, description string, meta Metadata) error {
	vector, err := s.embedder.Embed(ctx, description)
	if err != nil {
		return fmt.Errorf("embed appointment %d: %w", id, err)
	}

	wait := true
	_, err = s.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: CollectionName,
		Wait:           &wait,
		Points: []*qdrant.PointStruct{{
			Id:      qdrant.NewIDNum(uint64(id)),
			Vectors: qdrant.NewVectors(vector...),
			Payload: qdrant.NewValueMap(map[string]any{
				"description": description,
				"date":        meta.Date,
				"time":        meta.Time,
				"user_id":     meta.UserID,
			}),
		}},
	})
	if err != nil {
		return fmt.Errorf("index appointment %d: %w", id, err)
	}
	return nil
}

func (s *QdrantStore) QuerySimilar(ctx context.Context, text string, topK int) ([]Match, error) {
	if topK <= 0 {
		return []Match{}, nil
	}

	vector, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	limit := uint64(topK)
	points, err := s.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: CollectionName,
		Query:          qdrant.NewQuery(vector...),
		Limit:          &limit,
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("query similar appointments: %w", err)
	}

	matches := make([]Match, 0, len(points))
	for _, p := range points {
		payload := p.GetPayload()
		matches = append(matches, Match{
			ID:          int64(p.GetId().GetNum()),
			Description: payload["description"].GetStringValue(),
			Metadata: Metadata{
				Date:   payload["date"].GetStringValue(),
				Time:   payload["time"].GetStringValue(),
				UserID: payload["user_id"].GetStringValue(),
			},
			Distance: 1 - p.GetScore(),
		})
	}
	return matches, nil
}

func (s *QdrantStore) Close() error {
	return s.client.Close()
}
