package seatlock

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// Locker serializes the check-then-write critical section for one
// (trip, seat) key. Every writer (hold create, ticket create, hold
// convert) acquires the same key, so two concurrent requests for
// overlapping ranges cannot both pass the availability check. The TTL
// bounds the section so a stalled caller cannot hold the lock
// indefinitely.
type Locker struct {
	Client *redis.Client
	TTL    time.Duration
}

func New(client *redis.Client, ttl time.Duration) *Locker {
	return &Locker{Client: client, TTL: ttl}
}

func key(tripID, seatNumber string) string {
	return fmt.Sprintf("segment_lock:%s:%s", tripID, seatNumber)
}

// Acquire takes the (trip, seat) mutex for ownerID. Returns false when
// another writer holds it.
func (l *Locker) Acquire(ctx context.Context, tripID, seatNumber, ownerID string) (bool, error) {
	return l.Client.SetNX(ctx, key(tripID, seatNumber), ownerID, l.TTL).Result()
}

// Release drops the mutex if ownerID still holds it. A lock that
// expired or was taken over by another owner is left alone.
func (l *Locker) Release(ctx context.Context, tripID, seatNumber, ownerID string) error {
	k := key(tripID, seatNumber)
	val, err := l.Client.Get(ctx, k).Result()
	if err == redis.Nil {
		return nil
	}
	if err != nil {
		return err
	}
	if val == ownerID {
		_, err := l.Client.Del(ctx, k).Result()
		return err
	}
	return nil
}
