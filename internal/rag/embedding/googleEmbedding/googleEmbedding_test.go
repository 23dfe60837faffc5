package googleEmbedding

import (
	"testing"

	"github.com/rpillai/docuchat/internal/config"
)

func TestEmbedConfig_AsymmetricTaskTypes(t *testing.T) {
	//queries and indexed passages must not share a task type, or retrieval
	//scores degrade
	if documentTask == queryTask {
		t.Fatal("document and query embeddings use the same task type")
	}

	doc := embedConfig(documentTask)
	if doc.TaskType != "RETRIEVAL_DOCUMENT" {
		t.Errorf("document task type got %q", doc.TaskType)
	}
	query := embedConfig(queryTask)
	if query.TaskType != "RETRIEVAL_QUERY" {
		t.Errorf("query task type got %q", query.TaskType)
	}

	for name, dim := range map[string]*int32{
		"document": doc.OutputDimensionality,
		"query":    query.OutputDimensionality,
	} {
		if dim == nil || *dim != config.EmbeddingOutputDimensionality {
			t.Errorf("%s embedding dimensionality does not match the collection", name)
		}
	}
}
