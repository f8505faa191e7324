// Package tokenstore keeps the bearer token in durable storage so a session
// survives restarts. A missing token is the normal logged-out state.
package tokenstore

import (
	"context"
	"sync"
	"time"

	"github.com/existflow/snipvault/internal/db"
	"github.com/existflow/snipvault/internal/logger"
)

// Key is the storage key holding the bearer token
const Key = "access_token"

// Holder is a durable single-value slot for the bearer token
type Holder interface {
	Read() (string, bool)
	Write(token string) error
	Clear() error
}

// DBHolder stores the token in the local state database, scoped to origin
type DBHolder struct {
	db      *db.DB
	origin  string
	timeout time.Duration
}

// NewDBHolder creates a holder for the given API origin
func NewDBHolder(database *db.DB, origin string) *DBHolder {
	return &DBHolder{db: database, origin: origin, timeout: 5 * time.Second}
}

// Read returns the stored token. Storage errors are logged and reported as
// an absent token.
func (h *DBHolder) Read() (string, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
	defer cancel()

	token, ok, err := h.db.GetItem(ctx, h.origin, Key)
	if err != nil {
		logger.Warn("Failed to read stored token", logger.F("origin", h.origin), logger.F("error", err))
		return "", false
	}
	if !ok || token == "" {
		return "", false
	}
	return token, true
}

// Write stores token
func (h *DBHolder) Write(token string) error {
	ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
	defer cancel()
	return h.db.SetItem(ctx, h.origin, Key, token)
}

// Clear erases the stored token
func (h *DBHolder) Clear() error {
	ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
	defer cancel()
	return h.db.RemoveItem(ctx, h.origin, Key)
}

// MemoryHolder keeps the token in process memory only
type MemoryHolder struct {
	mu    sync.Mutex
	token string
}

// NewMemoryHolder creates a holder preloaded with token; "" means empty
func NewMemoryHolder(token string) *MemoryHolder {
	return &MemoryHolder{token: token}
}

// Read returns the held token
func (h *MemoryHolder) Read() (string, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.token, h.token != ""
}

// Write replaces the held token
func (h *MemoryHolder) Write(token string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.token = token
	return nil
}

// Clear drops the held token
func (h *MemoryHolder) Clear() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.token = ""
	return nil
}
