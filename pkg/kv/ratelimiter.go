package kv

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/starskey-io/starskey"
	"golang.org/x/time/rate"
)

// RateLimitInfo is the persisted per-client state.
type RateLimitInfo struct {
	Attempts  int       `json:"attempts"`
	ResetTime time.Time `json:"reset_time"`
	Jailed    bool      `json:"jailed"`
}

// StarskeyRateLimiterStore implements echo's middleware.RateLimiterStore
// backed by a Starskey database so limits survive restarts.
type StarskeyRateLimiterStore struct {
	db        *starskey.Starskey
	rate      float64
	burst     int
	expiresIn time.Duration
}

// NewStarskeyRateLimiterStore creates a new rate limiter store backed by Starskey
func NewStarskeyRateLimiterStore(dbPath string, r float64, burst int, expiresIn time.Duration) (*StarskeyRateLimiterStore, error) {
	db, err := starskey.Open(&starskey.Config{
		Permission:        0755,
		Directory:         dbPath,
		FlushThreshold:    8 * 1024 * 1024,
		MaxLevel:          3,
		SizeFactor:        10,
		BloomFilter:       true,
		SuRF:              false,
		Logging:           false,
		Compression:       true,
		CompressionOption: starskey.SnappyCompression,
	})
	if err != nil {
		return nil, err
	}

	log.Info("Initialized rate limiter with Starskey backend",
		"path", dbPath,
		"rate", r,
		"burst", burst,
		"expiration", expiresIn)

	return &StarskeyRateLimiterStore{
		db:        db,
		rate:      r,
		burst:     burst,
		expiresIn: expiresIn,
	}, nil
}

// Allow implements echo's RateLimiterStore interface.
func (s *StarskeyRateLimiterStore) Allow(identifier string) (bool, error) {
	var allowed bool

	err := s.db.Update(func(txn *starskey.Txn) error {
		now := time.Now()
		key := []byte(identifier)

		info := RateLimitInfo{
			Attempts:  0,
			ResetTime: now,
		}

		value, err := txn.Get(key)
		if err == nil && value != nil {
			if err := json.Unmarshal(value, &info); err != nil {
				// Corrupted entry, start over
				info = RateLimitInfo{Attempts: 0, ResetTime: now}
			}

			if info.Jailed && now.Before(info.ResetTime) {
				allowed = false
				return nil
			}

			if info.Jailed && !now.Before(info.ResetTime) {
				log.Info("Client released from jail", "id", identifier)
				info.Jailed = false
			}

			timePassed := now.Sub(info.ResetTime).Seconds()
			tokensToAdd := timePassed * s.rate

			if now.After(info.ResetTime.Add(s.expiresIn)) {
				info.Attempts = 0
				info.ResetTime = now
			} else {
				info.Attempts = max(0, info.Attempts-int(tokensToAdd))
			}
		}

		if info.Attempts < s.burst {
			info.Attempts++
			allowed = true

			if info.Attempts >= s.burst {
				info.Jailed = true
				info.ResetTime = now.Add(time.Second)
				log.Info("Client jailed due to rate limit violation", "id", identifier, "reset_at", info.ResetTime)
			}

			data, err := json.Marshal(info)
			if err != nil {
				return err
			}

			txn.Put(key, data)
			return nil
		}

		log.Debug("Request blocked (rate limited)", "id", identifier, "attempts", info.Attempts)
		allowed = false
		return nil
	})

	return allowed, err
}

// Reset clears the stored state for one identifier.
func (s *StarskeyRateLimiterStore) Reset(identifier string) error {
	return s.db.Delete([]byte(identifier))
}

// Close closes the underlying database.
func (s *StarskeyRateLimiterStore) Close() error {
	return s.db.Close()
}

// MemoryRateLimiterStore is the fallback store used when no storage
// directory is configured. Limits reset on restart.
type MemoryRateLimiterStore struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rate     rate.Limit
	burst    int
}

// NewMemoryRateLimiterStore creates an in-memory rate limiter store.
func NewMemoryRateLimiterStore(r float64, burst int) *MemoryRateLimiterStore {
	return &MemoryRateLimiterStore{
		limiters: make(map[string]*rate.Limiter),
		rate:     rate.Limit(r),
		burst:    burst,
	}
}

// Allow implements echo's RateLimiterStore interface.
func (s *MemoryRateLimiterStore) Allow(identifier string) (bool, error) {
	s.mu.Lock()
	limiter, ok := s.limiters[identifier]
	if !ok {
		limiter = rate.NewLimiter(s.rate, s.burst)
		s.limiters[identifier] = limiter
	}
	s.mu.Unlock()

	return limiter.Allow(), nil
}
