// Package store wires the concrete phrase store backends behind a
// single factory.
package store

import (
	"errors"

	"github.com/mindset-labs/phrasematch/store/file"
	"github.com/mindset-labs/phrasematch/store/inmemory"
	"github.com/mindset-labs/phrasematch/store/remote"
	"github.com/mindset-labs/phrasematch/store/sqlite"
	"github.com/mindset-labs/phrasematch/types"
)

var ErrUnsupportedBackend = errors.New("unsupported store backend type")

// New creates a phrase store backend of the specified type.
func New(backendType types.BackendType, config types.BackendConfig) (types.StoreBackend, error) {
	switch backendType {
	case types.BackendMemory:
		return inmemory.New(), nil
	case types.BackendFile:
		return file.New(config.Path)
	case types.BackendSQLite:
		return sqlite.New(config.Path)
	case types.BackendRedis:
		return remote.New(config)
	default:
		return nil, ErrUnsupportedBackend
	}
}
