package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"sync"

	"github.com/rpillai/docuchat/internal/adapter"
	"github.com/rpillai/docuchat/internal/adapter/utils"
	"github.com/rpillai/docuchat/internal/api"
	"github.com/rpillai/docuchat/internal/config"
	"github.com/rpillai/docuchat/internal/data/store"
	"github.com/rpillai/docuchat/internal/job"
	"github.com/rpillai/docuchat/internal/rag"
	"github.com/rpillai/docuchat/internal/rag/vectorDB"
	"github.com/rpillai/docuchat/internal/realtime"
	"github.com/rpillai/docuchat/internal/storage"
	"github.com/rpillai/docuchat/pkg/logger_i"
)

var (
	handlerInstance *handlerDeps //private singleton
	once            sync.Once
	logDH           *logger_i.Logger
	logCH           *logger_i.Logger
)

type handlerDeps struct {
	documents *store.DocumentStore
	chats     *store.ChatStore
	files     *storage.FileStore
	ragSvc    rag.Service
	jobs      *job.Service
	bus       *realtime.Bus
	vectors   vectorDB.DataProcessor
}

type HandlerConfig struct {
	Documents *store.DocumentStore
	Chats     *store.ChatStore
	Files     *storage.FileStore
	RagSvc    rag.Service
	Jobs      *job.Service
	Bus       *realtime.Bus
	Vectors   vectorDB.DataProcessor
}

func InitHandlers(cfg HandlerConfig) {
	once.Do(func() {
		handlerInstance = &handlerDeps{
			documents: cfg.Documents,
			chats:     cfg.Chats,
			files:     cfg.Files,
			ragSvc:    cfg.RagSvc,
			jobs:      cfg.Jobs,
			bus:       cfg.Bus,
			vectors:   cfg.Vectors,
		}
		logDH = logger_i.NewLogger("DocumentHandler")
		logCH = logger_i.NewLogger("ChatHandler")
		logDH.Info("Handlers initialized")
	})
}

// GetHandler godoc
// @Summary      Service health
// @Tags         Health
// @Produce      json
// @Success      200  {object}  api.StatusResponse
// @Router       /status [get]
func GetHandler(w http.ResponseWriter, r *http.Request) {
	writeJsonResponse(w, http.StatusOK, api.StatusResponse{Status: "ok"})
}

func writeJsonResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		// can't send a clean status code at this point
		logDH.Error("Error encoding response", "error", err)
	}
}

func WriteErrorResponse(w http.ResponseWriter, httpCode int, message string) {
	writeJsonResponse(w, httpCode, adapter.BadRequest(httpCode, message))
}

func validateContext(ctx context.Context) bool {
	if ctx.Err() != nil {
		logDH.Warn("context error", "error", ctx.Err())
		return false
	}

	select {
	case <-ctx.Done():
		logDH.Warn("context cancelled")
		return false
	default:
		return true
	}
}

// userFromContext pulls the authenticated user id the middleware stashed.
func userFromContext(ctx context.Context) (uint64, bool) {
	userID, ok := ctx.Value(config.USER_ID_KEY).(uint64)
	return userID, ok
}

func traceFromContext(ctx context.Context) string {
	trace, _ := ctx.Value(config.TRACE_ID_KEY).(string)
	return trace
}

func pathID(r *http.Request, key string) (uint64, bool) {
	raw := utils.GetChiURLParam(r, key)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}
