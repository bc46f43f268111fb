/*
Package errs provides custom error types and application-level error code constants.

These error codes identify validation failures, moderation policy rejections
and transport/system failures, both inside the client core and on the wire
between the snapshot server and its clients.
*/
package errs

// 1xxx: General Request Handling Errors
const (
	// ErrInvalidParams indicates that request parameter validation failed.
	ErrInvalidParams = 1001

	// ErrUnsupportedMediaType indicates that the request header Content-Type is not supported.
	ErrUnsupportedMediaType = 1002

	// ErrInvalidJSONFormat indicates that the request body JSON format is incorrect (e.g., syntax error).
	ErrInvalidJSONFormat = 1003

	// ErrExtraContentInBody indicates that the request body contained extra content after valid JSON data.
	ErrExtraContentInBody = 1004

	// ErrRequestEntityTooLarge indicates that the request body size exceeded the server limit.
	ErrRequestEntityTooLarge = 1006

	// ErrRateLimitExceeded indicates that the request rate has exceeded the set limit.
	ErrRateLimitExceeded = 1007
)

// 2xxx: Validation Errors
//
// Raised synchronously by the entity store and the lifecycle manager.
// They are local and never retried.
const (
	// ErrUsernameTaken indicates a case-insensitive username collision.
	ErrUsernameTaken = 2001

	// ErrInvalidUsername indicates an empty or malformed username.
	ErrInvalidUsername = 2002

	// ErrInvalidPassword indicates a secret outside the accepted length range.
	ErrInvalidPassword = 2003

	// ErrInvalidCredentials indicates an unknown username or a wrong secret at login.
	ErrInvalidCredentials = 2004

	// ErrAccountBanned indicates a login attempt by a banned account.
	ErrAccountBanned = 2005

	// ErrUserNotFound indicates an unknown user ID.
	ErrUserNotFound = 2006

	// ErrSessionInvalid indicates a missing, expired or forged session token.
	ErrSessionInvalid = 2007

	// ErrConversationNotFound indicates an unknown conversation ID.
	ErrConversationNotFound = 2101

	// ErrGroupNotFound indicates an unknown group ID, or a direct conversation used as a group.
	ErrGroupNotFound = 2102

	// ErrMessageNotFound indicates an unknown message ID within a conversation.
	ErrMessageNotFound = 2103

	// ErrNotGroupAdmin indicates an admin-only group operation attempted by a non-admin.
	ErrNotGroupAdmin = 2104

	// ErrNoValidMembers indicates that every candidate of an add-members request was filtered out.
	ErrNoValidMembers = 2105

	// ErrNotParticipant indicates an operation on a conversation the user does not belong to.
	ErrNotParticipant = 2106

	// ErrInvalidMessageKind indicates an unknown message kind, or a user trying to author a system message.
	ErrInvalidMessageKind = 2107

	// ErrMessageTooLong indicates message content exceeding the size limit.
	ErrMessageTooLong = 2108

	// ErrRoleNotFound indicates an unknown role ID.
	ErrRoleNotFound = 2201

	// ErrRoleExists indicates that a role with the derived ID already exists.
	ErrRoleExists = 2202

	// ErrSystemRoleProtected indicates an attempt to delete a system role.
	ErrSystemRoleProtected = 2203

	// ErrAdNotFound indicates an unknown ad ID.
	ErrAdNotFound = 2301

	// ErrBanNotFound indicates an unknown country ban ID.
	ErrBanNotFound = 2302

	// ErrInvalidBan indicates a country ban with a missing country or target.
	ErrInvalidBan = 2303

	// ErrInvalidSnapshot indicates a document that fails the minimal shape check.
	ErrInvalidSnapshot = 2401

	// ErrFileSizeTooLarge indicates that an uploaded image exceeds the size limit.
	ErrFileSizeTooLarge = 2501

	// ErrFileTypeInvalid indicates an upload whose extension or MIME type is not an allowed image type.
	ErrFileTypeInvalid = 2502

	// ErrStorageUnavailable indicates a request for file storage when no object store is configured.
	ErrStorageUnavailable = 2503

	// ErrFileNotFound indicates a download for an image key that was never uploaded.
	ErrFileNotFound = 2504
)

// 4xxx: Moderation Policy Rejections
//
// Produced by the policy engine before a message is recorded. The caller is
// expected to show the message to the user; nothing retries them.
const (
	// ErrChatRestricted indicates a sender carrying the chat-restricted modifier.
	ErrChatRestricted = 4001

	// ErrMuted indicates a sender with an active mute in the target group.
	ErrMuted = 4002

	// ErrRegionChatBanned indicates a full chat ban on the sender's country.
	ErrRegionChatBanned = 4003

	// ErrRegionUserBanned indicates a username ban targeting the sender in their country.
	ErrRegionUserBanned = 4004

	// ErrRegionRoleBanned indicates a role-interaction ban between the sender's country and the peer's role.
	ErrRegionRoleBanned = 4005
)

// 5xxx: Internal System Errors
const (
	// ErrUnknown represents an unclassified, general server internal error.
	ErrUnknown = 5000

	// ErrStorageFailed indicates the document backend failed to read or write.
	ErrStorageFailed = 5001
)
