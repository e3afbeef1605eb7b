package dataservice

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"github.com/shiftwork/scheduling-service/internal/core"
	"github.com/shiftwork/scheduling-service/internal/domain/model"
)

// rosterTTL keeps cached rosters short-lived so membership edits in the data
// service surface within a minute.
const rosterTTL = 60 * time.Second

// CachedRosterClient is a cache-aside layer over a RosterClient. Cache
// failures degrade to the inner client; they are never surfaced to callers.
type CachedRosterClient struct {
	inner  core.RosterClient
	client *redis.Client
	group  singleflight.Group
	logger *slog.Logger
}

// NewCachedRosterClient wraps inner with a redis roster cache.
func NewCachedRosterClient(inner core.RosterClient, client *redis.Client, logger *slog.Logger) *CachedRosterClient {
	if logger == nil {
		logger = slog.Default()
	}
	return &CachedRosterClient{
		inner:  inner,
		client: client,
		logger: logger.With("component", "roster_cache"),
	}
}

func rosterKey(groupID uuid.UUID) string {
	return "scheduling:roster:" + groupID.String()
}

// GetResolvedMembers serves from redis when possible, falling back to the
// inner client and repopulating the cache on success. Concurrent misses for
// the same group collapse into one upstream fetch.
func (c *CachedRosterClient) GetResolvedMembers(ctx context.Context, groupID uuid.UUID) ([]model.Staff, error) {
	key := rosterKey(groupID)

	cached, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		var staff []model.Staff
		if unmarshalErr := json.Unmarshal(cached, &staff); unmarshalErr == nil {
			return staff, nil
		}
		c.logger.WarnContext(ctx, "dropping corrupt roster cache entry", "key", key)
		c.client.Del(ctx, key)
	} else if !errors.Is(err, redis.Nil) {
		c.logger.WarnContext(ctx, "roster cache read failed", "key", key, "err", err)
	}

	result, err, _ := c.group.Do(key, func() (any, error) {
		staff, fetchErr := c.inner.GetResolvedMembers(ctx, groupID)
		if fetchErr != nil {
			return nil, fetchErr
		}

		if payload, marshalErr := json.Marshal(staff); marshalErr == nil {
			if setErr := c.client.Set(ctx, key, payload, rosterTTL).Err(); setErr != nil {
				c.logger.WarnContext(ctx, "roster cache write failed", "key", key, "err", setErr)
			}
		}
		return staff, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]model.Staff), nil
}
