package media

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"messenger/internal/pkg/errs"
)

func TestValidateFileSize(t *testing.T) {
	assert.Nil(t, ValidateFileSize(1))
	assert.Nil(t, ValidateFileSize(MaxImageSize))

	err := ValidateFileSize(MaxImageSize + 1)
	if assert.NotNil(t, err) {
		assert.Equal(t, errs.ErrFileSizeTooLarge, err.Code)
		assert.Contains(t, err.Message, "5")
	}

	err = ValidateFileSize(0)
	if assert.NotNil(t, err) {
		assert.Equal(t, errs.ErrInvalidParams, err.Code)
	}
}

func TestValidateFileType(t *testing.T) {
	tests := []struct {
		name     string
		fileName string
		mimeType string
		ok       bool
	}{
		{"png", "cat.png", "image/png", true},
		{"upper case", "CAT.JPG", "IMAGE/JPEG", true},
		{"jpeg alias", "cat.jpeg", "image/jpeg", true},
		{"mismatch", "cat.png", "image/gif", false},
		{"not an image", "notes.txt", "text/plain", false},
		{"no extension", "cat", "image/png", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateFileType(tt.fileName, tt.mimeType)
			if tt.ok {
				assert.Nil(t, err)
			} else if assert.NotNil(t, err) {
				assert.Equal(t, errs.ErrFileTypeInvalid, err.Code)
			}
		})
	}
}

func TestKeys(t *testing.T) {
	key := NewKey(ScopeAvatar, "user-1", "Me.PNG")
	assert.True(t, strings.HasPrefix(key, "avatars/user-1/"))
	assert.True(t, strings.HasSuffix(key, ".png"))
	assert.NotEqual(t, key, NewKey(ScopeAvatar, "user-1", "Me.PNG"))

	assert.True(t, KeyInScope(key, ScopeAvatar))
	assert.False(t, KeyInScope(key, ScopePoster))
	assert.False(t, KeyInScope("avatars/../secrets", ScopeAvatar))

	assert.True(t, ValidScope(ScopeConversation))
	assert.False(t, ValidScope("documents"))
}
