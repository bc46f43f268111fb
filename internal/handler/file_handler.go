package handler

import (
	"errors"
	"net/http"
	"regexp"

	"messenger/internal/app/media"
	"messenger/internal/app/storage"
	"messenger/internal/pkg/errs"
	"messenger/internal/pkg/req"
	"messenger/internal/pkg/resp"
)

var ownerPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// PresignUploadInput defines the JSON input structure for generating upload URL.
type PresignUploadInput struct {
	// Scope is one of the media scopes: conversations, posters or avatars.
	Scope string `json:"scope"`

	// Owner is the conversation, ad or user ID the image belongs to.
	Owner string `json:"owner"`

	FileName string `json:"file_name"`
	MimeType string `json:"mime_type"`
	FileSize int64  `json:"file_size"`
}

// HandlePresignUploadURL creates an HTTP HandlerFunc to generate a time-limited,
// pre-signed URL for uploading an image referenced by the shared document.
func HandlePresignUploadURL(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if deps.Objects == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrStorageUnavailable))
			return
		}

		var input PresignUploadInput
		if customErr := req.BindJSON(w, r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		if !media.ValidScope(input.Scope) || !ownerPattern.MatchString(input.Owner) {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		if err := media.ValidateFileSize(input.FileSize); err != nil {
			resp.RespondError(w, r, err)
			return
		}

		if err := media.ValidateFileType(input.FileName, input.MimeType); err != nil {
			resp.RespondError(w, r, err)
			return
		}

		fileKey := media.NewKey(input.Scope, input.Owner, input.FileName)

		url, err := deps.Objects.PresignUpload(
			r.Context(),
			fileKey,
			input.MimeType,
			input.FileSize,
			media.PresignedURLDuration,
		)
		if err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrStorageFailed))
			return
		}

		data := map[string]any{
			"presignedUrl": url,
			"fileKey":      fileKey,
			"fileName":     input.FileName,
		}
		resp.RespondSuccess(w, r, data)
	}
}

// HandlePresignDownloadURL redirects to a time-limited, pre-signed download
// URL for an image key issued by HandlePresignUploadURL.
func HandlePresignDownloadURL(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if deps.Objects == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrStorageUnavailable))
			return
		}

		fileKey := r.URL.Query().Get("k")
		if fileKey == "" {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		if !media.KeyInScope(fileKey, media.ScopeConversation) &&
			!media.KeyInScope(fileKey, media.ScopePoster) &&
			!media.KeyInScope(fileKey, media.ScopeAvatar) {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		if _, err := deps.Objects.GetObjectMetadata(r.Context(), fileKey); err != nil {
			if errors.Is(err, storage.ErrDocumentMissing) {
				resp.RespondError(w, r, errs.NewError(errs.ErrFileNotFound))
				return
			}
			resp.RespondError(w, r, errs.NewError(errs.ErrStorageFailed))
			return
		}

		url, err := deps.Objects.PresignDownload(r.Context(), fileKey, media.PresignedURLDuration)
		if err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrStorageFailed))
			return
		}

		http.Redirect(w, r, url, http.StatusFound)
	}
}
