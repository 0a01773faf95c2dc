package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	// ErrRunNotFound indicates the requested run is not stored (or expired).
	ErrRunNotFound = errors.New("run not found")

	// ErrInvalidRecord indicates the stored run record could not be decoded.
	ErrInvalidRecord = errors.New("invalid run record")
)

// Manager stores run records in Redis.
type Manager struct {
	redis *redis.Client
	ttl   time.Duration
}

// NewManager creates a new history manager. A ttl of 0 keeps records forever.
func NewManager(redisClient *redis.Client, ttl time.Duration) *Manager {
	if redisClient == nil {
		panic("redis client cannot be nil")
	}
	if ttl < 0 {
		ttl = 0
	}
	return &Manager{
		redis: redisClient,
		ttl:   ttl,
	}
}

// Save stores rec and pushes its id onto the recent list.
func (m *Manager) Save(ctx context.Context, rec *RunRecord) error {
	if rec == nil {
		return fmt.Errorf("run record cannot be nil")
	}
	if rec.ID == "" {
		return fmt.Errorf("run record id is required")
	}

	data, err := json.Marshal(rec)
	if err != nil {
		Errors.WithLabelValues("save").Inc()
		return fmt.Errorf("marshal run record: %w", err)
	}

	pipe := m.redis.TxPipeline()
	pipe.Set(ctx, RunKey{ID: rec.ID}.String(), data, m.ttl)
	pipe.LPush(ctx, KeyRecent, rec.ID)
	pipe.LTrim(ctx, KeyRecent, 0, MaxRecent-1)

	if _, err := pipe.Exec(ctx); err != nil {
		Errors.WithLabelValues("save").Inc()
		return fmt.Errorf("store run record in redis: %w", err)
	}

	Saves.Inc()
	return nil
}

// Get loads the run with the given id.
func (m *Manager) Get(ctx context.Context, id string) (*RunRecord, error) {
	data, err := m.redis.Get(ctx, RunKey{ID: id}.String()).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrRunNotFound
		}
		Errors.WithLabelValues("get").Inc()
		return nil, fmt.Errorf("redis get: %w", err)
	}

	var rec RunRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		Errors.WithLabelValues("get").Inc()
		return nil, fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}

	return &rec, nil
}

// Recent returns up to limit run ids, newest first.
func (m *Manager) Recent(ctx context.Context, limit int) ([]string, error) {
	if limit <= 0 || limit > MaxRecent {
		limit = MaxRecent
	}

	ids, err := m.redis.LRange(ctx, KeyRecent, 0, int64(limit-1)).Result()
	if err != nil {
		Errors.WithLabelValues("recent").Inc()
		return nil, fmt.Errorf("redis lrange: %w", err)
	}
	return ids, nil
}

// Latest returns the newest run that is still stored, or ErrRunNotFound.
func (m *Manager) Latest(ctx context.Context) (*RunRecord, error) {
	ids, err := m.Recent(ctx, MaxRecent)
	if err != nil {
		return nil, err
	}

	for _, id := range ids {
		rec, err := m.Get(ctx, id)
		if errors.Is(err, ErrRunNotFound) {
			continue
		}
		return rec, err
	}
	return nil, ErrRunNotFound
}
