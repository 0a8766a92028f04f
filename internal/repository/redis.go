package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/GoPolymarket/polyexec/internal/config"
	"github.com/GoPolymarket/polyexec/internal/model"
	"github.com/redis/go-redis/v9"
)

type RedisClient struct {
	Client *redis.Client
}

func NewRedisClient(cfg *config.Config) (*RedisClient, error) {
	if cfg.Redis.Addr == "" {
		return nil, fmt.Errorf("redis address is empty")
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisClient{Client: rdb}, nil
}

// RedisSubmissionRepo keeps the most recent submissions in a capped list.
// Newest first; the list is trimmed on every insert.
type RedisSubmissionRepo struct {
	client  *RedisClient
	listKey string
	listMax int
}

func NewRedisSubmissionRepo(client *RedisClient, listKey string, listMax int) *RedisSubmissionRepo {
	if listKey == "" {
		listKey = "submissions"
	}
	if listMax <= 0 {
		listMax = 10000
	}
	return &RedisSubmissionRepo{
		client:  client,
		listKey: listKey,
		listMax: listMax,
	}
}

func (r *RedisSubmissionRepo) Insert(ctx context.Context, entry *model.Submission) error {
	if entry == nil {
		return nil
	}
	payload, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	pipe := r.client.Client.Pipeline()
	pipe.LPush(ctx, r.listKey, payload)
	pipe.LTrim(ctx, r.listKey, 0, int64(r.listMax-1))
	_, err = pipe.Exec(ctx)
	return err
}

func (r *RedisSubmissionRepo) List(ctx context.Context, limit int) ([]*model.Submission, error) {
	if limit <= 0 || limit > 1000 {
		limit = 100
	}
	items, err := r.client.Client.LRange(ctx, r.listKey, 0, int64(limit-1)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}
	results := make([]*model.Submission, 0, len(items))
	for _, raw := range items {
		var entry model.Submission
		if err := json.Unmarshal([]byte(raw), &entry); err != nil {
			continue
		}
		results = append(results, &entry)
	}
	return results, nil
}
