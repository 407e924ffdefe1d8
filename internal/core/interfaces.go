// Package core defines the interfaces shared by the lipsync-service components.
package core

import (
	"context"

	"github.com/book-expert/lipsync-service/internal/lipsync"
)

// ObjectStore defines the interface for interacting with a key-value blob store.
type ObjectStore interface {
	Download(ctx context.Context, key string) ([]byte, error)
	Upload(ctx context.Context, key string, data []byte) error
}

// VisemeConverter turns text into a timed viseme sequence.
type VisemeConverter interface {
	Convert(input string) *lipsync.Result
}
