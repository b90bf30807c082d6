package redis

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"github.com/yousef-mohamed32/Advanced-Text-To-Image-Generator/internal/domain"
)

const historyKey = "generations:recent"

// HistoryCache keeps the most recent generation metadata in a capped redis
// list so GET /generations does not have to hit postgres on every call.
type HistoryCache struct {
	Client  *redis.Client
	MaxSize int
}

func NewHistoryCache(client *redis.Client, maxsize int) *HistoryCache {
	return &HistoryCache{Client: client, MaxSize: maxsize}
}

func (h *HistoryCache) PushRecent(ctx context.Context, m *domain.GenerationMetadata) error {
	encoded, err := json.Marshal(m)
	if err != nil {
		return domain.NewDomainError(domain.ErrCodeInternal, "failed to encode generation metadata", err)
	}

	pipe := h.Client.TxPipeline()
	pipe.LPush(ctx, historyKey, encoded)
	pipe.LTrim(ctx, historyKey, 0, int64(h.MaxSize-1))
	if _, err := pipe.Exec(ctx); err != nil {
		return domain.NewDomainError(domain.ErrCodeExternal, "failed to cache generation metadata", err)
	}

	return nil
}

func (h *HistoryCache) Recent(ctx context.Context, limit int) ([]domain.GenerationMetadata, error) {
	if limit > h.MaxSize {
		limit = h.MaxSize
	}

	raw, err := h.Client.LRange(ctx, historyKey, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, domain.NewDomainError(domain.ErrCodeExternal, "failed to read generation history", err)
	}

	results := make([]domain.GenerationMetadata, 0, len(raw))
	for _, item := range raw {
		var m domain.GenerationMetadata
		if err := json.Unmarshal([]byte(item), &m); err != nil {
			continue
		}
		results = append(results, m)
	}

	return results, nil
}
