package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var (
	// ErrLocked ключ уже удерживается другим процессом
	ErrLocked = errors.New("lock is already held")

	// ErrLockLost ключ истёк или принадлежит другому владельцу
	ErrLockLost = errors.New("lock is no longer held")
)

// Lease захваченная блокировка. Extend продлевает её на полный TTL.
type Lease interface {
	Extend(ctx context.Context) error
	Release(ctx context.Context) error
}

// удаляем ключ только если он всё ещё наш
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// продлеваем ключ только если он всё ещё наш
var extendScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
return 0
`)

// RedisLocker распределённая блокировка на SET NX с токеном владельца.
// Ключ живёт TTL с момента захвата или последнего Extend.
type RedisLocker struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
	logger *zap.Logger
}

// NewRedisLocker создаёт блокировку; ttl ограничивает время жизни ключа при падении процесса
func NewRedisLocker(client *redis.Client, ttl time.Duration, logger *zap.Logger) *RedisLocker {
	return &RedisLocker{
		client: client,
		ttl:    ttl,
		prefix: "staff_availability:lock:",
		logger: logger,
	}
}

// Acquire захватывает ключ или возвращает ErrLocked
func (l *RedisLocker) Acquire(ctx context.Context, key string) (Lease, error) {
	fullKey := l.prefix + key
	token := uuid.NewString()

	ok, err := l.client.SetNX(ctx, fullKey, token, l.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("acquire lock %s: %w", key, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrLocked, key)
	}

	l.logger.Debug("Lock acquired", zap.String("key", fullKey), zap.Duration("ttl", l.ttl))

	return &redisLease{locker: l, key: fullKey, token: token}, nil
}

// Ping проверяет соединение с Redis
func (l *RedisLocker) Ping(ctx context.Context) error {
	return l.client.Ping(ctx).Err()
}

type redisLease struct {
	locker *RedisLocker
	key    string
	token  string
}

func (le *redisLease) Extend(ctx context.Context) error {
	ok, err := extendScript.Run(ctx, le.locker.client, []string{le.key}, le.token, le.locker.ttl.Milliseconds()).Int64()
	if err != nil {
		return fmt.Errorf("extend lock %s: %w", le.key, err)
	}
	if ok == 0 {
		return fmt.Errorf("%w: %s", ErrLockLost, le.key)
	}
	return nil
}

func (le *redisLease) Release(ctx context.Context) error {
	deleted, err := releaseScript.Run(ctx, le.locker.client, []string{le.key}, le.token).Int64()
	if err != nil {
		return fmt.Errorf("release lock %s: %w", le.key, err)
	}
	if deleted == 0 {
		le.locker.logger.Warn("Lock expired before release", zap.String("key", le.key))
	}
	return nil
}

// EmployeeKey ключ блокировки применения расписаний сотрудника
func EmployeeKey(employeeID int64) string {
	return fmt.Sprintf("availability:employee:%d", employeeID)
}
