package ports

import (
	"context"

	"storekd-sms/internal/config"
)

// TexterStore loads named texter configurations from persistent storage.
type TexterStore interface {
	LoadTexters(ctx context.Context) (map[string]config.Texter, error)
}
