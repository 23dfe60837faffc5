// @title           Document Chat API
// @version         1.0
// @description     Upload documents, ask questions about them, get cited answers.
// @termsOfService  http://swagger.io/terms/

// @contact.name    API Support
// @contact.url
// @contact.email

// @license.name    Apache 2.0
// @license.url     http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:3000
// @BasePath  /
// @schemes   http https
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/rpillai/docuchat/internal/config"
	"github.com/rpillai/docuchat/internal/data/db"
	"github.com/rpillai/docuchat/internal/data/store"
	jobmodel "github.com/rpillai/docuchat/internal/domain/jobModel"
	"github.com/rpillai/docuchat/internal/handlers"
	"github.com/rpillai/docuchat/internal/job"
	"github.com/rpillai/docuchat/internal/rag"
	"github.com/rpillai/docuchat/internal/rag/embedding/googleEmbedding"
	"github.com/rpillai/docuchat/internal/rag/llm/gemini"
	"github.com/rpillai/docuchat/internal/rag/vectorDB"
	"github.com/rpillai/docuchat/internal/rag/vectorDB/qdrantDB"
	"github.com/rpillai/docuchat/internal/realtime"
	"github.com/rpillai/docuchat/internal/server"
	"github.com/rpillai/docuchat/internal/storage"
	"github.com/rpillai/docuchat/internal/worker"
	"github.com/rpillai/docuchat/pkg/logger_i"
)

var (
	listenAddr        string
	requestCount      int64
	stopWorkerChannel chan bool
	workerWaitGroup   sync.WaitGroup
)

func main() {

	logger_i.Init()
	var logger = logger_i.NewLogger("main")

	//config
	if err := godotenv.Load(); err != nil {
		logger.Debug("No .env file found, relying on the environment")
	}
	flag.StringVar(&listenAddr, "listen-addr", config.ServerListenAddr, "server listen address")
	flag.Parse()

	//relational store is the one dependency that must be up
	handle := db.GetPostgres()
	if handle == nil {
		logger.Error("Postgres is offline. Shutting down.")
		return
	}

	files, err := storage.NewFileStore(config.UploadDirectory)
	if err != nil {
		logger.Error("Could not prepare upload directory. Shutting down.", "error", err)
		return
	}

	documents := store.NewDocumentStore(handle, files)
	chats := store.NewChatStore(handle)

	//init buffered ingestion job channel
	jobChannel := make(chan jobmodel.Job, config.BufferLimit)
	dispatcherChannel := make(chan bool, 1)
	stopWorkerChannel = make(chan bool, 1)

	serviceContext, closeExternalServices := context.WithCancel(context.Background())
	defer closeExternalServices()

	jobService := job.InitJobService(job.ServiceConfig{
		JobChannel:        jobChannel,
		RequestCount:      requestCount,
		DispatcherChannel: dispatcherChannel,
	})

	// any of these may come up nil; ingestion and chat degrade per request
	// instead of the process refusing to start
	apiKey := os.Getenv(config.GeminiAPIKeyEnv)
	var vectors vectorDB.DataProcessor
	if holder := qdrantDB.GetQdrantClient(serviceContext); holder != nil {
		vectors = holder
	}
	embeddingService := googleEmbedding.GetGoogleEmbeddingClient(serviceContext, config.GoogleEmbeddingModel, apiKey)
	llmProvider := gemini.GetGeminiClient(serviceContext, config.GeminiModelName, apiKey)

	var bus rag.Publisher
	realtimeBus := realtime.GetBus(serviceContext)
	if realtimeBus != nil {
		bus = realtimeBus
	}

	if vectors == nil || embeddingService == nil || llmProvider == nil || realtimeBus == nil {
		logger.Warn("Degraded start", "VectorDB", vectors != nil, "EmbeddingService", embeddingService != nil, "LLMProvider", llmProvider != nil, "RealtimeBus", realtimeBus != nil)
	}

	ragService := rag.NewService(documents, chats, files, vectors, llmProvider, embeddingService, bus)

	handlers.InitHandlers(handlers.HandlerConfig{
		Documents: documents,
		Chats:     chats,
		Files:     files,
		RagSvc:    ragService,
		Jobs:      jobService,
		Bus:       realtimeBus,
		Vectors:   vectors,
	})

	//init worker pool
	worker.InitServices(jobService, ragService)
	worker.InitWorkerPool(stopWorkerChannel, &workerWaitGroup)

	//server handling
	gracefulShutdown := make(chan os.Signal, 1)
	signal.Notify(gracefulShutdown, syscall.SIGINT, syscall.SIGTERM)
	stopExecution := make(chan bool, 1)

	shutdownParams := server.ShutdownParams{
		GracefulShutdown: gracefulShutdown,
		StopExecution:    stopExecution,
		WorkerStop:       stopWorkerChannel,
		Group:            &workerWaitGroup,
		CloseServices:    closeExternalServices,
	}
	go server.ShutDownHandler(shutdownParams)
	go server.CreateServer(listenAddr)

	<-stopExecution
	logger.Info("Server stopped")
}
