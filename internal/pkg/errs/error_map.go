package errs

import "net/http"

// errorMap stores the CustomError template for every application error code.
// Templates without a Status are served with HTTP 200 and carry the failure
// in the envelope code, the same way every business error is reported.
var errorMap = map[int]CustomError{
	// 1xxx: General Request Handling Errors
	ErrInvalidParams:         {Code: ErrInvalidParams, Message: "Invalid request parameters.", Status: http.StatusBadRequest},
	ErrUnsupportedMediaType:  {Code: ErrUnsupportedMediaType, Message: "Unsupported request format.", Status: http.StatusUnsupportedMediaType},
	ErrInvalidJSONFormat:     {Code: ErrInvalidJSONFormat, Message: "Invalid JSON.", Status: http.StatusBadRequest},
	ErrExtraContentInBody:    {Code: ErrExtraContentInBody, Message: "Request contains unexpected data.", Status: http.StatusBadRequest},
	ErrRequestEntityTooLarge: {Code: ErrRequestEntityTooLarge, Message: "Request size is too large.", Status: http.StatusRequestEntityTooLarge},
	ErrRateLimitExceeded:     {Code: ErrRateLimitExceeded, Message: "Too many requests. Please try again later.", Status: http.StatusTooManyRequests},

	// 2xxx: Validation Errors
	ErrUsernameTaken:        {Code: ErrUsernameTaken, Message: "Username already taken."},
	ErrInvalidUsername:      {Code: ErrInvalidUsername, Message: "Invalid username."},
	ErrInvalidPassword:      {Code: ErrInvalidPassword, Message: "Invalid password."},
	ErrInvalidCredentials:   {Code: ErrInvalidCredentials, Message: "Incorrect username or password."},
	ErrAccountBanned:        {Code: ErrAccountBanned, Message: "Account is banned."},
	ErrUserNotFound:         {Code: ErrUserNotFound, Message: "User not found."},
	ErrSessionInvalid:       {Code: ErrSessionInvalid, Message: "Please sign in to continue.", Status: http.StatusUnauthorized},
	ErrConversationNotFound: {Code: ErrConversationNotFound, Message: "Conversation not found."},
	ErrGroupNotFound:        {Code: ErrGroupNotFound, Message: "Group not found."},
	ErrMessageNotFound:      {Code: ErrMessageNotFound, Message: "Message not found."},
	ErrNotGroupAdmin:        {Code: ErrNotGroupAdmin, Message: "Only group admins can do this."},
	ErrNoValidMembers:       {Code: ErrNoValidMembers, Message: "No valid members to add."},
	ErrNotParticipant:       {Code: ErrNotParticipant, Message: "You are not a member of this conversation."},
	ErrInvalidMessageKind:   {Code: ErrInvalidMessageKind, Message: "Invalid message type."},
	ErrMessageTooLong:       {Code: ErrMessageTooLong, Message: "Message content is too long (max %d bytes)."},
	ErrRoleNotFound:         {Code: ErrRoleNotFound, Message: "Role not found."},
	ErrRoleExists:           {Code: ErrRoleExists, Message: "Role already exists."},
	ErrSystemRoleProtected:  {Code: ErrSystemRoleProtected, Message: "Cannot delete system roles."},
	ErrAdNotFound:           {Code: ErrAdNotFound, Message: "Ad not found."},
	ErrBanNotFound:          {Code: ErrBanNotFound, Message: "Country ban not found."},
	ErrInvalidBan:           {Code: ErrInvalidBan, Message: "Invalid country ban."},
	ErrInvalidSnapshot:      {Code: ErrInvalidSnapshot, Message: "Invalid DB structure.", Status: http.StatusBadRequest},
	ErrFileSizeTooLarge:     {Code: ErrFileSizeTooLarge, Message: "File is too large (max %d MB)."},
	ErrFileTypeInvalid:      {Code: ErrFileTypeInvalid, Message: "Only images can be uploaded."},
	ErrStorageUnavailable:   {Code: ErrStorageUnavailable, Message: "File storage is not configured.", Status: http.StatusNotImplemented},
	ErrFileNotFound:         {Code: ErrFileNotFound, Message: "File not found.", Status: http.StatusNotFound},

	// 4xxx: Moderation Policy Rejections
	ErrChatRestricted:   {Code: ErrChatRestricted, Message: "You are restricted from sending messages.", Status: http.StatusForbidden},
	ErrMuted:            {Code: ErrMuted, Message: "You are muted in this group.", Status: http.StatusForbidden},
	ErrRegionChatBanned: {Code: ErrRegionChatBanned, Message: "Chat is restricted in your region.", Status: http.StatusForbidden},
	ErrRegionUserBanned: {Code: ErrRegionUserBanned, Message: "Your account is restricted in your region.", Status: http.StatusForbidden},
	ErrRegionRoleBanned: {Code: ErrRegionRoleBanned, Message: "You cannot message this user from your region.", Status: http.StatusForbidden},

	// 5xxx: Internal System Errors
	ErrUnknown:       {Code: ErrUnknown, Message: "Something went wrong. Please try again.", Status: http.StatusInternalServerError},
	ErrStorageFailed: {Code: ErrStorageFailed, Message: "Failed to persist the database.", Status: http.StatusInternalServerError},
}
