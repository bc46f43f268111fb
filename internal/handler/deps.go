package handler

import (
	"messenger/internal/app/storage"
	"messenger/internal/configs"
)

// AppDeps carries what the handlers need.
type AppDeps struct {
	Config    *configs.ServerConfig
	Documents storage.DocumentStore

	// Objects is nil when image storage is not configured.
	Objects storage.ObjectStore
}
