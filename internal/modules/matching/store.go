// README: Shortlist store backed by Redis.
package matching

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"foodbridge/internal/types"
)

const (
	shortlistKeyPrefix = "matching:listing:%s:shortlist"
	matchedAtKeyPrefix = "matching:listing:%s:matched_at"
	// TTL for shortlist keys (listings resolve well within 7 days).
	keyTTL = 7 * 24 * time.Hour
)

type Store struct {
	redis *redis.Client
}

func NewStore(redis *redis.Client) *Store {
	return &Store{redis: redis}
}

// shortlistRecord is the persisted form of a ranking run.
type shortlistRecord struct {
	Results   []MatchResult `json:"results"`
	TotalNGOs int           `json:"totalNGOs"`
}

// RecordShortlist stores the ranked shortlist and the match timestamp for a
// listing.
func (s *Store) RecordShortlist(ctx context.Context, listingID types.ID, results []MatchResult, totalNGOs int) error {
	payload, err := json.Marshal(shortlistRecord{Results: results, TotalNGOs: totalNGOs})
	if err != nil {
		return err
	}
	pipe := s.redis.Pipeline()
	pipe.Set(ctx, shortlistKey(listingID), payload, keyTTL)
	pipe.Set(ctx, matchedAtKey(listingID), time.Now().UTC().Format(time.RFC3339), keyTTL)
	_, err = pipe.Exec(ctx)
	return err
}

// GetShortlist returns the recorded shortlist for a listing, and whether one
// exists.
func (s *Store) GetShortlist(ctx context.Context, listingID types.ID) ([]MatchResult, int, bool, error) {
	val, err := s.redis.Get(ctx, shortlistKey(listingID)).Result()
	if err == redis.Nil {
		return nil, 0, false, nil
	}
	if err != nil {
		return nil, 0, false, err
	}
	var rec shortlistRecord
	if err := json.Unmarshal([]byte(val), &rec); err != nil {
		return nil, 0, false, err
	}
	return rec.Results, rec.TotalNGOs, true, nil
}

// GetMatchedAt returns when the listing was last matched, and whether it has
// been matched at all.
func (s *Store) GetMatchedAt(ctx context.Context, listingID types.ID) (time.Time, bool, error) {
	val, err := s.redis.Get(ctx, matchedAtKey(listingID)).Result()
	if err == redis.Nil {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, err
	}
	t, err := time.Parse(time.RFC3339, val)
	if err != nil {
		return time.Time{}, false, err
	}
	return t, true, nil
}

func shortlistKey(listingID types.ID) string {
	return fmt.Sprintf(shortlistKeyPrefix, string(listingID))
}

func matchedAtKey(listingID types.ID) string {
	return fmt.Sprintf(matchedAtKeyPrefix, string(listingID))
}
