package wallet

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const (
	// Key prefix for Redis
	walletKeyPrefix = "wallet:"
)

var (
	// ErrAccountNotFound is returned when an account has never held credits
	ErrAccountNotFound = errors.New("account not found")

	// ErrInvalidAmount is returned for zero or negative amounts
	ErrInvalidAmount = errors.New("amount must be positive")
)

// debitScript checks and decrements the balance in one step so concurrent
// spends of the same account cannot both succeed.
// Returns {-1, 0} for a missing account, {0, balance} when the balance is too
// low and {1, remaining} on success.
var debitScript = redis.NewScript(`
local balance = redis.call('GET', KEYS[1])
if not balance then
	return {-1, 0}
end
balance = tonumber(balance)
local amount = tonumber(ARGV[1])
if balance < amount then
	return {0, balance}
end
local remaining = redis.call('DECRBY', KEYS[1], amount)
return {1, remaining}
`)

// Config holds configuration for the Redis wallet repository
type Config struct {
	// Redis client
	RedisClient *redis.Client

	// Namespace separates the balances of different guilds
	Namespace string
}

// redisRepository implements the Repository interface using Redis
type redisRepository struct {
	client    *redis.Client
	namespace string
}

// NewRedis creates a new Redis-backed wallet repository
func NewRedis(cfg *Config) (*redisRepository, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}

	if cfg.RedisClient == nil {
		return nil, errors.New("redis client cannot be nil")
	}

	if err := cfg.RedisClient.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &redisRepository{
		client:    cfg.RedisClient,
		namespace: cfg.Namespace,
	}, nil
}

func (r *redisRepository) accountKey(accountID string) string {
	if r.namespace == "" {
		return walletKeyPrefix + accountID
	}
	return fmt.Sprintf("%s%s:%s", walletKeyPrefix, r.namespace, accountID)
}

// GetBalance returns the balance stored for an account
func (r *redisRepository) GetBalance(ctx context.Context, input *GetBalanceInput) (*GetBalanceOutput, error) {
	if input == nil || input.AccountID == "" {
		return nil, errors.New("input and account ID cannot be empty")
	}

	balance, err := r.client.Get(ctx, r.accountKey(input.AccountID)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to get balance: %w", err)
	}

	return &GetBalanceOutput{
		Balance: balance,
	}, nil
}

// Debit atomically removes credits from an account
func (r *redisRepository) Debit(ctx context.Context, input *DebitInput) (*DebitOutput, error) {
	if input == nil || input.AccountID == "" {
		return nil, errors.New("input and account ID cannot be empty")
	}

	if input.Amount <= 0 {
		return nil, ErrInvalidAmount
	}

	res, err := debitScript.Run(ctx, r.client, []string{r.accountKey(input.AccountID)}, input.Amount).Int64Slice()
	if err != nil {
		return nil, fmt.Errorf("failed to debit account: %w", err)
	}

	if len(res) != 2 {
		return nil, fmt.Errorf("unexpected debit script reply: %v", res)
	}

	switch res[0] {
	case -1:
		return nil, ErrAccountNotFound
	case 0:
		return &DebitOutput{Debited: false, Balance: res[1]}, nil
	default:
		return &DebitOutput{Debited: true, Balance: res[1]}, nil
	}
}

// Credit adds credits to an account
func (r *redisRepository) Credit(ctx context.Context, input *CreditInput) (*CreditOutput, error) {
	if input == nil || input.AccountID == "" {
		return nil, errors.New("input and account ID cannot be empty")
	}

	if input.Amount <= 0 {
		return nil, ErrInvalidAmount
	}

	balance, err := r.client.IncrBy(ctx, r.accountKey(input.AccountID), input.Amount).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to credit account: %w", err)
	}

	return &CreditOutput{
		Balance: balance,
	}, nil
}
