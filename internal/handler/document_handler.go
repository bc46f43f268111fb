package handler

import (
	"net/http"
	"time"

	"messenger/internal/app/model"
	"messenger/internal/pkg/errs"
	"messenger/internal/pkg/logx"
	"messenger/internal/pkg/metrics"
	"messenger/internal/pkg/req"
	"messenger/internal/pkg/resp"
)

// HandleGetDatabase serves the full shared document.
func HandleGetDatabase(deps *AppDeps) http.HandlerFunc {
	backend := deps.Documents.Name()

	return func(w http.ResponseWriter, r *http.Request) {
		doc, err := deps.Documents.Load(r.Context())
		if err != nil {
			metrics.DocumentReadsTotal.WithLabelValues(backend, "failed").Inc()
			logx.Error(err, "Failed to read document", "backend", backend)
			resp.RespondError(w, r, errs.NewError(errs.ErrStorageFailed))
			return
		}
		metrics.DocumentReadsTotal.WithLabelValues(backend, "ok").Inc()

		w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate, proxy-revalidate")
		w.Header().Set("Pragma", "no-cache")
		w.Header().Set("Expires", "0")
		resp.RespondRaw(w, r, doc)
	}
}

// HandleSaveDatabase overwrites the shared document. The only check is the
// minimal shape check: the body must carry users and conversations.
func HandleSaveDatabase(deps *AppDeps) http.HandlerFunc {
	backend := deps.Documents.Name()

	return func(w http.ResponseWriter, r *http.Request) {
		doc, customErr := req.ReadJSONBody(w, r, deps.Config.MaxBodyBytes)
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		if err := model.ValidateDocument(doc); err != nil {
			logx.Warn("Rejected document", "reason", err.Error())
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidSnapshot))
			return
		}

		if err := deps.Documents.Save(r.Context(), doc); err != nil {
			metrics.DocumentWritesTotal.WithLabelValues(backend, "failed").Inc()
			logx.Error(err, "Failed to write document", "backend", backend)
			resp.RespondError(w, r, errs.NewError(errs.ErrStorageFailed))
			return
		}
		metrics.DocumentWritesTotal.WithLabelValues(backend, "ok").Inc()
		metrics.DocumentSizeBytes.Set(float64(len(doc)))

		resp.RespondSuccess(w, r, map[string]any{
			"savedAt": time.Now().UnixMilli(),
		})
	}
}
