package config

import (
	"log/slog"
	"time"
)

const (
	IS_PROD        = false
	LOG_LEVEL_PROD = slog.LevelInfo
	TRACE_ID_KEY   = "traceId"
	USER_ID_KEY    = "userId"

	RATE_LIMIT_PER_SECOND       = 2
	BURST_RATE_LIMIT_PER_SECOND = 5

	//EmbeddingOutputDimensionality must match the collection the index was created with
	EmbeddingOutputDimensionality int32 = 1536
	VectorCollectionName                = "document-chunks"

	//retrieval tiers
	RetrievalCandidateCount = 10
	HighTierScoreCutoff     = 0.7
	HighTierMaxChunks       = 5
	FallbackScoreCutoff     = 0.5
	FallbackMaxChunks       = 3

	//chunking
	ChunkSize    = 1000
	ChunkOverlap = 200

	//snippet stored alongside full content in vector metadata
	SnippetLength = 200

	//session titles come from the first user message
	SessionTitleLength = 50

	RequestsPerNewWorkerCount int64 = 10
	MaxWorkerCount            int64 = 10
	MinWorkerCount            int64 = 1
	IdleWorkerTimeout               = 1 * time.Minute

	//serverTimeouts
	ReadTimeout            = 5 * time.Second
	IdleTimeout            = 120 * time.Second
	ShutdownContextTimeout = 10 * time.Second

	//server listening port
	ServerListenAddr = ":3000"

	//ingest job buffer limit
	BufferLimit = 100

	//per-document ingestion deadline
	IngestTimeout = 5 * time.Minute

	//vectorDB
	QdrantHost     = ""
	QdrantGrpcPort = 6334
	QdrantUseTLS   = false
	QdrantPoolSize = 1

	//llm
	GeminiModelName      = "gemini-2.5-flash-lite-preview-09-2025"
	GoogleEmbeddingModel = "gemini-embedding-001"

	ModelTemperature     float32 = 0.2
	ModelTopP            float32 = 0.95
	ModelTopK            float32 = 40
	ModelMaxOutputTokens int32   = 1024

	PromptInstruction = "You are a helpful AI assistant. Answer the user's question based on the provided context only. " +
		"Be specific about which context section supports your answer. " +
		"If the answer is not in the context, state that you don't have enough information instead of making something up."
	NoContextMarker = "No relevant context found."

	//answer substituted when the generation call fails outright
	GenerationErrorAnswer = "Error: could not get a response from the language model."

	MaxIdleConns        = 50
	MaxIdleConnsPerHost = 25
	IdleConnTimeout     = 60 * time.Second

	//postgres
	PostgresHost = "localhost"
	PostgresPort = "5432"
	PostgresUser = "postgres"
	PostgresName = "docuchat"

	//redis (realtime channel)
	redisHost = "127.0.0.1"
	redisPort = "6379"
	RedisAddr = redisHost + ":" + redisPort

	RedisPassword = ""

	//session topics are chat_{sessionID}
	SessionTopicPrefix = "chat_"

	//uploads
	MaxUploadSize   int64 = 32 << 20
	UploadDirectory       = "uploaded_documents"

	NoAuthBypass = false

	//env variable names
	GeminiAPIKeyEnv  = "GEMINI_API_KEY"
	JWTSigningKeyEnv = "JWT_SIGNING_KEY"
)
