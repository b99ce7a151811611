package workflow

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/redis/go-redis/v9"
)

const redisCheckpointPrefix = "workflow:checkpoint:"

// RedisCheckpointStore persists checkpoints in redis, surviving process
// restarts as long as redis does. Checkpoints have no TTL; a paused review
// may legitimately wait for days.
type RedisCheckpointStore struct {
	client *redis.Client
}

var _ CheckpointStore = &RedisCheckpointStore{}

func NewRedisCheckpointStore(client *redis.Client) *RedisCheckpointStore {
	return &RedisCheckpointStore{client: client}
}

func (s *RedisCheckpointStore) Save(ctx context.Context, state *State) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, redisCheckpointPrefix+state.TicketID, raw, 0).Err()
}

func (s *RedisCheckpointStore) Load(ctx context.Context, ticketID string) (*State, error) {
	raw, err := s.client.Get(ctx, redisCheckpointPrefix+ticketID).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCheckpointNotFound
		}
		return nil, err
	}

	var state State
	if err := json.Unmarshal(raw, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

func (s *RedisCheckpointStore) Delete(ctx context.Context, ticketID string) error {
	return s.client.Del(ctx, redisCheckpointPrefix+ticketID).Err()
}

func (s *RedisCheckpointStore) List(ctx context.Context) ([]string, error) {
	var ids []string
	iter := s.client.Scan(ctx, 0, redisCheckpointPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		ids = append(ids, iter.Val()[len(redisCheckpointPrefix):])
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return ids, nil
}
