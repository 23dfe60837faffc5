package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/rpillai/docuchat/internal/adapter"
	"github.com/rpillai/docuchat/internal/api"
	"github.com/rpillai/docuchat/internal/config"
)

// UploadDocumentHandler godoc
// @Summary      Upload a document
// @Description  Receives a file via multipart/form-data, stores it, and queues ingestion. Re-uploading the same filename replaces the existing document.
// @Tags         Documents
// @Accept       multipart/form-data
// @Produce      json
// @Param        document  formData  file    true   "The document to upload (pdf, docx, txt, md, rtf, odt)"
// @Param        metadata  formData  string  false  "Optional JSON object of custom metadata"
// @Success      202  {object}  api.UploadResponse
// @Failure      400  {object}  api.ErrorResponse
// @Failure      500  {object}  api.ErrorResponse
// @Router       /documents [post]
func UploadDocumentHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		logDH.Warn("Invalid Context by request ", "remoteAddr", r.RemoteAddr)
		return
	}
	userID, ok := userFromContext(r.Context())
	if !ok {
		WriteErrorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	if err := r.ParseMultipartForm(config.MaxUploadSize); err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, "File too large or bad request")
		return
	}

	fileReader, fileHeader, err := r.FormFile("document")
	if err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, "Could not retrieve file: a 'document' form field is required")
		return
	}
	defer fileReader.Close()

	metadata := map[string]any{}
	if raw := r.FormValue("metadata"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &metadata); err != nil {
			WriteErrorResponse(w, http.StatusBadRequest, "metadata must be a JSON object")
			return
		}
	}

	handle, size, err := handlerInstance.files.Save(fileHeader.Filename, fileReader)
	if err != nil {
		logDH.Error("could not persist upload", "filename", fileHeader.Filename, "error", err)
		WriteErrorResponse(w, http.StatusInternalServerError, "Storage error")
		return
	}

	doc, replaced, err := handlerInstance.documents.CreateOrReplace(r.Context(), userID, fileHeader.Filename, handle, size, metadata)
	if err != nil {
		logDH.Error("could not record document", "filename", fileHeader.Filename, "error", err)
		WriteErrorResponse(w, http.StatusInternalServerError, "Storage error")
		return
	}

	job := handlerInstance.jobs.EnqueueIngestion(doc.ID, traceFromContext(r.Context()))
	logDH.Info("Queued document for ingestion", "documentId", doc.ID, "jobId", job.Id, "replaced", replaced)

	writeJsonResponse(w, http.StatusAccepted, api.UploadResponse{
		Message:    "File uploaded successfully. Processing will begin shortly.",
		DocumentID: doc.ID,
		Replaced:   replaced,
	})
}

// ListDocumentsHandler godoc
// @Summary      List the caller's documents
// @Tags         Documents
// @Produce      json
// @Success      200  {array}   api.DocumentResponse
// @Failure      500  {object}  api.ErrorResponse
// @Router       /documents [get]
func ListDocumentsHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}
	userID, ok := userFromContext(r.Context())
	if !ok {
		WriteErrorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	docs, err := handlerInstance.documents.ListByUser(r.Context(), userID)
	if err != nil {
		logDH.Error("could not list documents", "userId", userID, "error", err)
		WriteErrorResponse(w, http.StatusInternalServerError, "Storage error")
		return
	}
	writeJsonResponse(w, http.StatusOK, adapter.ToDocumentResponses(docs))
}

// GetDocumentHandler godoc
// @Summary      Get one document
// @Description  Returns a single document with its processing status, the way to poll an upload.
// @Tags         Documents
// @Produce      json
// @Param        id   path      int  true  "Document ID"
// @Success      200  {object}  api.DocumentResponse
// @Failure      404  {object}  api.ErrorResponse
// @Router       /documents/{id} [get]
func GetDocumentHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}
	userID, ok := userFromContext(r.Context())
	if !ok {
		WriteErrorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	documentID, ok := pathID(r, "id")
	if !ok {
		WriteErrorResponse(w, http.StatusBadRequest, "Invalid document id")
		return
	}

	doc, found := handlerInstance.documents.GetDocument(r.Context(), documentID)
	if !found || doc.UserID != userID {
		WriteErrorResponse(w, http.StatusNotFound, "Document not found")
		return
	}
	writeJsonResponse(w, http.StatusOK, adapter.ToDocumentResponse(doc))
}

// DeleteDocumentHandler godoc
// @Summary      Delete a document
// @Description  Removes the document row, its chunks, its stored file, and its index vectors.
// @Tags         Documents
// @Produce      json
// @Param        id   path      int  true  "Document ID"
// @Success      200  {object}  map[string]string
// @Failure      404  {object}  api.ErrorResponse
// @Router       /documents/{id} [delete]
func DeleteDocumentHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}
	userID, ok := userFromContext(r.Context())
	if !ok {
		WriteErrorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	documentID, ok := pathID(r, "id")
	if !ok {
		WriteErrorResponse(w, http.StatusBadRequest, "Invalid document id")
		return
	}

	doc, found := handlerInstance.documents.GetDocument(r.Context(), documentID)
	if !found || doc.UserID != userID {
		WriteErrorResponse(w, http.StatusNotFound, "Document not found")
		return
	}

	if err := handlerInstance.documents.Delete(r.Context(), doc); err != nil {
		logDH.Error("could not delete document", "documentId", documentID, "error", err)
		WriteErrorResponse(w, http.StatusInternalServerError, "Storage error")
		return
	}

	// index cleanup is best effort; an orphaned vector can never be
	// retrieved once the document id leaves the owner's filter set
	if handlerInstance.vectors != nil {
		if err := handlerInstance.vectors.DeleteByDocument(r.Context(), strconv.FormatUint(documentID, 10)); err != nil {
			logDH.Warn("could not remove document vectors", "documentId", documentID, "error", err)
		}
	}

	writeJsonResponse(w, http.StatusOK, map[string]string{"message": "Document deleted"})
}
