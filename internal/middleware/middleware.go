package middleware

import (
	"net/http"
	"strconv"

	"github.com/rpillai/docuchat/internal/handlers"
	"github.com/rpillai/docuchat/internal/metrics"
	"github.com/rpillai/docuchat/pkg/logger_i"
)

type requestResponseStruct struct {
	writer     http.ResponseWriter
	req        *http.Request
	badRequest failureStruct
	logger     *logger_i.Logger
}

type failureStruct struct {
	isBadRequest bool
	httpCode     int
	errorMessage string
}

var GetHandler = Wrap(handlers.GetHandler)

var UploadDocumentHandler = Wrap(handlers.UploadDocumentHandler)
var ListDocumentsHandler = Wrap(handlers.ListDocumentsHandler)
var GetDocumentHandler = Wrap(handlers.GetDocumentHandler)
var DeleteDocumentHandler = Wrap(handlers.DeleteDocumentHandler)

var CreateSessionHandler = Wrap(handlers.CreateSessionHandler)
var ListSessionsHandler = Wrap(handlers.ListSessionsHandler)
var ListMessagesHandler = Wrap(handlers.ListMessagesHandler)
var SendMessageHandler = Wrap(handlers.SendMessageHandler)
var FeedbackHandler = Wrap(handlers.FeedbackHandler)
var StreamSessionHandler = Wrap(handlers.StreamSessionHandler)

func Wrap(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec := &metrics.HttpStatusRecorder{ResponseWriter: w, Status: 200} //metrics
		re := processRequest(requestResponseStruct{req: r, writer: rec})

		if re.badRequest.isBadRequest {
			handleBadRequest(re)
			return
		}
		next(rec, re.req)

		metrics.HttpRequestsTotal.WithLabelValues(r.URL.Path, strconv.Itoa(rec.Status)).Inc() //metrics
	}
}

func processRequest(re requestResponseStruct) requestResponseStruct {
	re.logger = logger_i.NewLogger("middleware")
	re.logger.Debug("New request received")

	re = injectTrace(re)
	re = rateLimiter(re)
	if re.badRequest.isBadRequest {
		return re
	}
	re = authenticate(re)
	return re
}
