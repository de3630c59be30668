package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/tendant/simple-signup/pkg/domain"
)

// CodeStore keeps pending phone verification codes and the counters used to
// throttle them.
type CodeStore interface {
	// SaveCode replaces any pending code for the number and resets its
	// attempt counter.
	SaveCode(ctx context.Context, code *domain.PhoneCode, ttl time.Duration) error
	// GetCode returns domain.ErrOTPNotFound when no live code exists.
	GetCode(ctx context.Context, phoneNumber string) (*domain.PhoneCode, error)
	DeleteCode(ctx context.Context, phoneNumber string) error
	// IncrAttempts records a failed verification and returns the new count.
	IncrAttempts(ctx context.Context, phoneNumber string) (int, error)
	// IncrSends counts a send within window and returns the count so far.
	IncrSends(ctx context.Context, phoneNumber string, window time.Duration) (int, error)
}

const (
	nsCode     = "signup:otp"
	nsAttempts = "signup:otp_attempts"
	nsSends    = "signup:otp_sends"
)

// RedisCodeStore stores codes in Redis, shared by every server replica.
type RedisCodeStore struct {
	client redis.UniversalClient
}

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Addrs    []string
	Password string
	DB       int
	Cluster  bool
}

// NewRedisClient creates a single-node or cluster client.
func NewRedisClient(cfg RedisConfig) redis.UniversalClient {
	if cfg.Cluster && len(cfg.Addrs) > 1 {
		return redis.NewClusterClient(&redis.ClusterOptions{
			Addrs:    cfg.Addrs,
			Password: cfg.Password,
		})
	}
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addrs[0],
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

// NewRedisCodeStore creates a code store over an existing client.
func NewRedisCodeStore(client redis.UniversalClient) *RedisCodeStore {
	return &RedisCodeStore{client: client}
}

func key(namespace, phoneNumber string) string {
	return namespace + ":" + phoneNumber
}

// SaveCode implements CodeStore.
func (s *RedisCodeStore) SaveCode(ctx context.Context, code *domain.PhoneCode, ttl time.Duration) error {
	data, err := json.Marshal(code)
	if err != nil {
		return fmt.Errorf("failed to encode phone code: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, key(nsCode, code.PhoneNumber), data, ttl)
	pipe.Del(ctx, key(nsAttempts, code.PhoneNumber))
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save phone code: %w", err)
	}
	return nil
}

// GetCode implements CodeStore.
func (s *RedisCodeStore) GetCode(ctx context.Context, phoneNumber string) (*domain.PhoneCode, error) {
	data, err := s.client.Get(ctx, key(nsCode, phoneNumber)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrOTPNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get phone code: %w", err)
	}

	code := &domain.PhoneCode{}
	if err := json.Unmarshal(data, code); err != nil {
		return nil, fmt.Errorf("failed to decode phone code: %w", err)
	}

	attempts, err := s.client.Get(ctx, key(nsAttempts, phoneNumber)).Result()
	switch {
	case errors.Is(err, redis.Nil):
	case err != nil:
		return nil, fmt.Errorf("failed to get attempt count: %w", err)
	default:
		code.Attempts, _ = strconv.Atoi(attempts)
	}
	return code, nil
}

// DeleteCode implements CodeStore.
func (s *RedisCodeStore) DeleteCode(ctx context.Context, phoneNumber string) error {
	return s.client.Del(ctx, key(nsCode, phoneNumber), key(nsAttempts, phoneNumber)).Err()
}

// IncrAttempts implements CodeStore. The counter lives as long as the code.
func (s *RedisCodeStore) IncrAttempts(ctx context.Context, phoneNumber string) (int, error) {
	ttl, err := s.client.TTL(ctx, key(nsCode, phoneNumber)).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to read code ttl: %w", err)
	}
	if ttl <= 0 {
		return 0, domain.ErrOTPNotFound
	}
	return s.incrWithExpire(ctx, key(nsAttempts, phoneNumber), ttl)
}

// IncrSends implements CodeStore.
func (s *RedisCodeStore) IncrSends(ctx context.Context, phoneNumber string, window time.Duration) (int, error) {
	return s.incrWithExpire(ctx, key(nsSends, phoneNumber), window)
}

// incrWithExpire bumps k and sets its TTL in one transaction. EXPIRE NX keeps
// the window opened by the first increment.
func (s *RedisCodeStore) incrWithExpire(ctx context.Context, k string, window time.Duration) (int, error) {
	pipe := s.client.TxPipeline()
	incr := pipe.Incr(ctx, k)
	pipe.ExpireNX(ctx, k, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("failed to increment %s: %w", k, err)
	}
	return int(incr.Val()), nil
}

// MemoryCodeStore is a single-process CodeStore for development and tests.
type MemoryCodeStore struct {
	now func() time.Time

	mu       sync.Mutex
	codes    map[string]memoryCode
	counters map[string]memoryCounter
}

type memoryCode struct {
	code      domain.PhoneCode
	expiresAt time.Time
}

type memoryCounter struct {
	n         int
	expiresAt time.Time
}

// NewMemoryCodeStore creates an empty in-memory store. now defaults to time.Now.
func NewMemoryCodeStore(now func() time.Time) *MemoryCodeStore {
	if now == nil {
		now = time.Now
	}
	return &MemoryCodeStore{
		now:      now,
		codes:    make(map[string]memoryCode),
		counters: make(map[string]memoryCounter),
	}
}

// SaveCode implements CodeStore.
func (s *MemoryCodeStore) SaveCode(_ context.Context, code *domain.PhoneCode, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *code
	stored.Attempts = 0
	s.codes[code.PhoneNumber] = memoryCode{code: stored, expiresAt: s.now().Add(ttl)}
	delete(s.counters, key(nsAttempts, code.PhoneNumber))
	return nil
}

// GetCode implements CodeStore.
func (s *MemoryCodeStore) GetCode(_ context.Context, phoneNumber string) (*domain.PhoneCode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.liveCodeLocked(phoneNumber)
	if !ok {
		return nil, domain.ErrOTPNotFound
	}
	code := entry.code
	if c, ok := s.liveCounterLocked(key(nsAttempts, phoneNumber)); ok {
		code.Attempts = c.n
	}
	return &code, nil
}

// DeleteCode implements CodeStore.
func (s *MemoryCodeStore) DeleteCode(_ context.Context, phoneNumber string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.codes, phoneNumber)
	delete(s.counters, key(nsAttempts, phoneNumber))
	return nil
}

// IncrAttempts implements CodeStore.
func (s *MemoryCodeStore) IncrAttempts(_ context.Context, phoneNumber string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.liveCodeLocked(phoneNumber)
	if !ok {
		return 0, domain.ErrOTPNotFound
	}
	return s.incrLocked(key(nsAttempts, phoneNumber), entry.expiresAt), nil
}

// IncrSends implements CodeStore.
func (s *MemoryCodeStore) IncrSends(_ context.Context, phoneNumber string, window time.Duration) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.incrLocked(key(nsSends, phoneNumber), s.now().Add(window)), nil
}

func (s *MemoryCodeStore) liveCodeLocked(phoneNumber string) (memoryCode, bool) {
	entry, ok := s.codes[phoneNumber]
	if !ok {
		return memoryCode{}, false
	}
	if !s.now().Before(entry.expiresAt) {
		delete(s.codes, phoneNumber)
		return memoryCode{}, false
	}
	return entry, true
}

func (s *MemoryCodeStore) liveCounterLocked(k string) (memoryCounter, bool) {
	c, ok := s.counters[k]
	if !ok {
		return memoryCounter{}, false
	}
	if !s.now().Before(c.expiresAt) {
		delete(s.counters, k)
		return memoryCounter{}, false
	}
	return c, true
}

// incrLocked bumps a counter. expiresAt only applies when the counter is new.
func (s *MemoryCodeStore) incrLocked(k string, expiresAt time.Time) int {
	c, ok := s.liveCounterLocked(k)
	if !ok {
		c = memoryCounter{expiresAt: expiresAt}
	}
	c.n++
	s.counters[k] = c
	return c.n
}
