package qdrantDB

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"sync"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"

	"github.com/rpillai/docuchat/internal/config"
	"github.com/rpillai/docuchat/internal/rag/vectorDB"
	"github.com/rpillai/docuchat/pkg/logger_i"
)

var (
	logger          *logger_i.Logger
	qdrantInstance  *qdrant.Client
	once            sync.Once
	dimension       = uint64(config.EmbeddingOutputDimensionality)
	collectionName  = config.VectorCollectionName
	pointNamespace  = uuid.NameSpaceURL
)

type ClientHolder struct {
	QObj *qdrant.Client
}

// GetQdrantClient initializes the process-wide index client once and makes
// sure the collection exists. Returns nil on failure; callers record the
// unavailability rather than crash.
func GetQdrantClient(ctx context.Context) *ClientHolder {
	once.Do(func() {
		logger = logger_i.NewLogger("Qdrant")
		res := newClient(ctx)
		if res != nil {
			qdrantInstance = res
			go closeQdrant(ctx, qdrantInstance)
		}
	})

	if qdrantInstance == nil {
		return nil
	}
	return &ClientHolder{QObj: qdrantInstance}
}

func newClient(ctx context.Context) *qdrant.Client {
	host := os.Getenv("QDRANT_HOST")
	port, er := strconv.Atoi(os.Getenv("QDRANT_PORT"))
	if host == "" || er != nil {
		host = config.QdrantHost
		port = config.QdrantGrpcPort
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:     host,
		Port:     port,
		UseTLS:   config.QdrantUseTLS,
		PoolSize: uint(config.QdrantPoolSize),
	})
	if err != nil {
		logger.Error("could not instantiate qdrant client", "error", err)
		return nil
	}

	if err := ensureCollection(ctx, client); err != nil {
		logger.Error("could not create collection", "collectionName", collectionName, "error", err)
		return nil
	}
	return client
}

func ensureCollection(ctx context.Context, client *qdrant.Client) error {
	exists, err := client.CollectionExists(ctx, collectionName)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	return client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: collectionName,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     dimension,
			Distance: qdrant.Distance_Cosine,
		}),
	})
}

func closeQdrant(ctx context.Context, qi *qdrant.Client) {
	<-ctx.Done()
	logger.Info("Shutting down Qdrant")
	if err := qi.Close(); err != nil {
		logger.Error("could not close Qdrant", "error", err)
	}
}

// pointID maps a deterministic record key onto a UUID, which is what qdrant
// accepts as a point id. Same key, same UUID, so upserts replace.
func pointID(key string) string {
	return uuid.NewSHA1(pointNamespace, []byte(key)).String()
}

func (db *ClientHolder) UpsertBatch(ctx context.Context, records []vectorDB.VectorRecord) error {
	if len(records) == 0 {
		return nil
	}

	points := make([]*qdrant.PointStruct, len(records))
	for i, record := range records {
		payload := make(map[string]any, len(record.Metadata)+1)
		for k, v := range record.Metadata {
			payload[k] = v
		}
		payload["vector_key"] = record.Key

		points[i] = &qdrant.PointStruct{
			Id:      qdrant.NewID(pointID(record.Key)),
			Vectors: qdrant.NewVectors(record.Vector...),
			Payload: qdrant.NewValueMap(payload),
		}
	}

	_, err := db.QObj.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: collectionName,
		Points:         points,
		Wait:           qdrant.PtrOf(true),
	})
	if err != nil {
		return fmt.Errorf("qdrant upsert failed: %w", err)
	}
	return nil
}

func (db *ClientHolder) Query(ctx context.Context, vector []float32, topK uint64, documentIDs []string) ([]vectorDB.Match, error) {
	loggr := logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))

	result, err := db.QObj.Query(ctx, &qdrant.QueryPoints{
		CollectionName: collectionName,
		Query:          qdrant.NewQuery(vector...),
		Limit:          qdrant.PtrOf(topK),
		WithPayload:    qdrant.NewWithPayload(true),
		Filter:         documentFilter(documentIDs),
	})
	if err != nil {
		loggr.Error("Error querying Qdrant", "error", err)
		return nil, err
	}

	matches := make([]vectorDB.Match, 0, len(result))
	for _, hit := range result {
		metadata := decodePayload(hit.Payload)
		key, _ := metadata["vector_key"].(string)
		matches = append(matches, vectorDB.Match{
			Key:      key,
			Score:    hit.Score,
			Metadata: metadata,
		})
	}
	return matches, nil
}

func (db *ClientHolder) DeleteByDocument(ctx context.Context, documentID string) error {
	_, err := db.QObj.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: collectionName,
		Points: qdrant.NewPointsSelectorFilter(&qdrant.Filter{
			Must: []*qdrant.Condition{qdrant.NewMatch("document_id", documentID)},
		}),
		Wait: qdrant.PtrOf(true),
	})
	if err != nil {
		return fmt.Errorf("qdrant delete failed: %w", err)
	}
	return nil
}

func documentFilter(documentIDs []string) *qdrant.Filter {
	if len(documentIDs) == 0 {
		return nil
	}
	return &qdrant.Filter{
		Must: []*qdrant.Condition{
			qdrant.NewMatchKeywords("document_id", documentIDs...),
		},
	}
}

// decodePayload flattens qdrant's typed payload values back into plain Go
// values so the retrieval layer never touches protobuf types.
func decodePayload(payload map[string]*qdrant.Value) map[string]any {
	out := make(map[string]any, len(payload))
	for k, v := range payload {
		out[k] = decodeValue(v)
	}
	return out
}

func decodeValue(v *qdrant.Value) any {
	switch kind := v.GetKind().(type) {
	case *qdrant.Value_StringValue:
		return kind.StringValue
	case *qdrant.Value_IntegerValue:
		return kind.IntegerValue
	case *qdrant.Value_DoubleValue:
		return kind.DoubleValue
	case *qdrant.Value_BoolValue:
		return kind.BoolValue
	case *qdrant.Value_ListValue:
		values := kind.ListValue.GetValues()
		list := make([]any, len(values))
		for i, item := range values {
			list[i] = decodeValue(item)
		}
		return list
	case *qdrant.Value_StructValue:
		return decodePayload(kind.StructValue.GetFields())
	default:
		return nil
	}
}
