/*
Package media validates the images referenced by image messages and ad
posters, and derives the object keys they are stored under.
*/
package media

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"messenger/internal/pkg/errs"
)

const (
	// MaxImageSizeMB is the maximum allowed file size in megabytes.
	MaxImageSizeMB = 5

	// MaxImageSize is the maximum allowed file size in bytes.
	MaxImageSize = MaxImageSizeMB * 1024 * 1024

	// PresignedURLDuration is the fixed duration for which a presigned URL is valid.
	PresignedURLDuration = 5 * time.Minute
)

// Scopes group object keys by what references them.
const (
	ScopeConversation = "conversations"
	ScopePoster       = "posters"
	ScopeAvatar       = "avatars"
)

// AllowedMIMETypes defines the set of permitted MIME types for uploads.
var AllowedMIMETypes = map[string]struct{}{
	"image/jpeg": {},
	"image/png":  {},
	"image/webp": {},
	"image/gif":  {},
}

// ExtToMIME maps file extensions to their corresponding MIME types.
var ExtToMIME = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
	".gif":  "image/gif",
}

// ValidateFileSize checks if the provided file size is within acceptable limits.
func ValidateFileSize(fileSize int64) *errs.CustomError {
	if fileSize <= 0 {
		return errs.NewError(errs.ErrInvalidParams)
	}

	if fileSize > MaxImageSize {
		return errs.NewError(errs.ErrFileSizeTooLarge, MaxImageSizeMB)
	}

	return nil
}

// ValidateFileType checks that the file name's extension and the MIME type
// agree and name an allowed image type.
func ValidateFileType(fileName string, mimeType string) *errs.CustomError {
	lowerMimeType := strings.ToLower(mimeType)

	if _, ok := AllowedMIMETypes[lowerMimeType]; !ok {
		return errs.NewError(errs.ErrFileTypeInvalid)
	}

	ext := strings.ToLower(filepath.Ext(fileName))
	expectedMIME, ok := ExtToMIME[ext]
	if !ok || expectedMIME != lowerMimeType {
		return errs.NewError(errs.ErrFileTypeInvalid)
	}

	return nil
}

// ValidScope reports whether scope is a known key scope.
func ValidScope(scope string) bool {
	switch scope {
	case ScopeConversation, ScopePoster, ScopeAvatar:
		return true
	}
	return false
}

// NewKey returns a fresh object key "<scope>/<owner>/<uuid><ext>".
func NewKey(scope, owner, fileName string) string {
	ext := strings.ToLower(filepath.Ext(fileName))
	return fmt.Sprintf("%s/%s/%s%s", scope, owner, uuid.New().String(), ext)
}

// KeyInScope reports whether key was issued for scope. Keys containing path
// traversal segments are rejected.
func KeyInScope(key, scope string) bool {
	if strings.Contains(key, "..") {
		return false
	}
	return strings.HasPrefix(key, scope+"/")
}
