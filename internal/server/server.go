package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"sync"

	"github.com/rpillai/docuchat/internal/adapter/utils"
	"github.com/rpillai/docuchat/internal/config"
	"github.com/rpillai/docuchat/internal/middleware"
	"github.com/rpillai/docuchat/pkg/logger_i"
)

var (
	server  *http.Server
	_logger *logger_i.Logger
)

type ShutdownParams struct {
	GracefulShutdown chan os.Signal
	StopExecution    chan bool
	WorkerStop       chan bool
	Group            *sync.WaitGroup
	CloseServices    context.CancelFunc
}

func CreateServer(listenAddr string) {
	_logger = logger_i.NewLogger("Server")

	r := utils.GetRouter()

	r.Router.Get("/status", middleware.GetHandler)

	r.Router.Post("/documents", middleware.UploadDocumentHandler)
	r.Router.Get("/documents", middleware.ListDocumentsHandler)
	r.Router.Get("/documents/{id}", middleware.GetDocumentHandler)
	r.Router.Delete("/documents/{id}", middleware.DeleteDocumentHandler)

	r.Router.Post("/sessions", middleware.CreateSessionHandler)
	r.Router.Get("/sessions", middleware.ListSessionsHandler)
	r.Router.Get("/sessions/{id}/messages", middleware.ListMessagesHandler)
	r.Router.Post("/sessions/{id}/messages", middleware.SendMessageHandler)
	r.Router.Patch("/sessions/{id}/messages/{messageId}/feedback", middleware.FeedbackHandler)
	r.Router.Get("/sessions/{id}/stream", middleware.StreamSessionHandler)

	server = &http.Server{
		Addr:        listenAddr,
		Handler:     r.Router,
		ReadTimeout: config.ReadTimeout,
		// no WriteTimeout: chat turns block on generation and the SSE
		// stream stays open indefinitely
		IdleTimeout: config.IdleTimeout,
	}

	_logger.Info("Server is listening at", "address", listenAddr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		_logger.Error("Server crashed", "error :", err.Error(), "addr", listenAddr)
	}
}

func ShutDownHandler(shutdownParams ShutdownParams) {
	state := <-shutdownParams.GracefulShutdown
	println("\nServer is shutting down", state)

	ctx, cancel := context.WithTimeout(context.Background(), config.ShutdownContextTimeout)
	defer cancel()

	done := make(chan struct{})

	go func() {
		server.SetKeepAlivesEnabled(false)

		if err := server.Shutdown(ctx); err != nil {
			_logger.Error("Could not shutdown gracefully: %s", err)
		}

		//close workers
		close(shutdownParams.WorkerStop)
		shutdownParams.Group.Wait()
		shutdownParams.CloseServices()
		close(shutdownParams.StopExecution)
		close(done)
	}()

	select {
	case <-done:
		_logger.Info("Gracefully is shutting down")
	case <-ctx.Done():
		_logger.Info("Force Shut down")
		os.Exit(1)
	}
}
