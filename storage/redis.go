package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"court-sniper/types"

	"github.com/redis/go-redis/v9"
)

var ctx = context.Background()

const (
	slotsKey = "slots:current"
	subSeq   = "sub_seq"
	// Safety net: a snapshot older than a day is stale anyway, the checker
	// rewrites it every run.
	slotsTTL = 24 * time.Hour
)

// Redis is the primary store: the current slot snapshot plus all
// subscriptions.
type Redis struct {
	client *redis.Client
}

func NewRedis(addr, password string, db int) *Redis {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &Redis{client: rdb}
}

func (s *Redis) Ping() error {
	return s.client.Ping(ctx).Err()
}

// LoadAll returns the stored slot snapshot, empty if none exists.
func (s *Redis) LoadAll() ([]types.Slot, error) {
	val, err := s.client.Get(ctx, slotsKey).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var slots []types.Slot
	if err := json.Unmarshal([]byte(val), &slots); err != nil {
		return nil, err
	}
	return slots, nil
}

// ReplaceAll overwrites the whole snapshot in one SET, so readers always see
// either the old set or the new one.
func (s *Redis) ReplaceAll(slots []types.Slot) error {
	if slots == nil {
		slots = []types.Slot{}
	}
	data, err := json.Marshal(slots)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, slotsKey, data, slotsTTL).Err()
}

func subKey(chatID, id int64) string {
	return fmt.Sprintf("sub:%d:%d", chatID, id)
}

// Insert stores a subscription, assigning it a fresh id when it has none.
func (s *Redis) Insert(sub *types.Subscription) error {
	if sub.ID == 0 {
		id, err := s.client.Incr(ctx, subSeq).Result()
		if err != nil {
			return err
		}
		sub.ID = id
	}
	data, err := json.Marshal(sub)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, subKey(sub.ChatID, sub.ID), data, 0).Err()
}

// List returns every subscription of every chat.
func (s *Redis) List() ([]types.Subscription, error) {
	return s.listPattern("sub:*:*")
}

// ListByChat returns one chat's subscriptions.
func (s *Redis) ListByChat(chatID int64) ([]types.Subscription, error) {
	return s.listPattern(fmt.Sprintf("sub:%d:*", chatID))
}

func (s *Redis) listPattern(pattern string) ([]types.Subscription, error) {
	keys, err := s.client.Keys(ctx, pattern).Result()
	if err != nil {
		return nil, err
	}

	var subs []types.Subscription
	for _, key := range keys {
		val, err := s.client.Get(ctx, key).Result()
		if err != nil {
			continue
		}
		var sub types.Subscription
		if json.Unmarshal([]byte(val), &sub) == nil {
			subs = append(subs, sub)
		}
	}
	return subs, nil
}

// Delete removes one subscription by id.
func (s *Redis) Delete(chatID, id int64) error {
	return s.client.Del(ctx, subKey(chatID, id)).Err()
}

// DeleteAll removes every subscription of a chat.
func (s *Redis) DeleteAll(chatID int64) error {
	keys, err := s.client.Keys(ctx, fmt.Sprintf("sub:%d:*", chatID)).Result()
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return s.client.Del(ctx, keys...).Err()
}
