package storage

import "errors"

// ErrNotFound 键不存在
// ErrNotFound is returned when a key has no value
var ErrNotFound = errors.New("storage: key not found")

// Store 客户端本地持久化接口（按名称存取字符串值）
// Store is the client-local durable storage: named string values
type Store interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Delete(key string) error

	// 生命周期 / Lifecycle
	Close() error
}
