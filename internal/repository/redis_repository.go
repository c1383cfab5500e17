package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/darisadam/gdbank-ledger/internal/domain/account"
	"github.com/darisadam/gdbank-ledger/internal/domain/ledger"
	"github.com/redis/go-redis/v9"
)

// TransactionLogKey is the Redis list holding transaction log lines.
const TransactionLogKey = "gdbank:transactions"

type redisAccountRepository struct {
	client   *redis.Client
	hashKey  string
	orderKey string
}

// NewRedisAccountRepository stores accounts under gdbank:<name>:accounts as a
// hash of JSON records plus a list keeping insertion order.
func NewRedisAccountRepository(client *redis.Client, name string) AccountRepository {
	return &redisAccountRepository{
		client:   client,
		hashKey:  fmt.Sprintf("gdbank:%s:accounts", name),
		orderKey: fmt.Sprintf("gdbank:%s:accounts:order", name),
	}
}

func (r *redisAccountRepository) LoadAll(ctx context.Context) (book *account.Book, err error) {
	defer observe("redis", "load_all", time.Now(), &err)

	order, err := r.client.LRange(ctx, r.orderKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read account order: %w", err)
	}
	values, err := r.client.HGetAll(ctx, r.hashKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read accounts: %w", err)
	}

	book = account.NewBook()
	for _, field := range order {
		raw, ok := values[field]
		if !ok {
			continue
		}
		acc, err := decodeRecord(raw)
		if err != nil {
			return nil, fmt.Errorf("account %s: %w", field, err)
		}
		book.Put(acc)
		delete(values, field)
	}

	// Fields missing from the order list are appended by number
	if len(values) > 0 {
		rest := make([]int64, 0, len(values))
		for field := range values {
			n, err := strconv.ParseInt(field, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid account field %q: %w", field, err)
			}
			rest = append(rest, n)
		}
		sort.Slice(rest, func(i, j int) bool { return rest[i] < rest[j] })
		for _, n := range rest {
			acc, err := decodeRecord(values[strconv.FormatInt(n, 10)])
			if err != nil {
				return nil, fmt.Errorf("account %d: %w", n, err)
			}
			book.Put(acc)
		}
	}

	return book, nil
}

func (r *redisAccountRepository) SaveAll(ctx context.Context, book *account.Book) (err error) {
	defer observe("redis", "save_all", time.Now(), &err)

	accounts := book.Accounts()
	fields := make([]interface{}, 0, len(accounts)*2)
	order := make([]interface{}, 0, len(accounts))
	for _, acc := range accounts {
		data, err := json.Marshal(newAccountRecord(acc))
		if err != nil {
			return fmt.Errorf("failed to marshal account %d: %w", acc.AccountNumber, err)
		}
		number := strconv.FormatInt(acc.AccountNumber, 10)
		fields = append(fields, number, string(data))
		order = append(order, number)
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, r.hashKey, r.orderKey)
		if len(accounts) > 0 {
			pipe.HSet(ctx, r.hashKey, fields...)
			pipe.RPush(ctx, r.orderKey, order...)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save accounts: %w", err)
	}
	return nil
}

func decodeRecord(raw string) (*account.Account, error) {
	var rec accountRecord
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal account: %w", err)
	}
	return rec.toAccount()
}

type redisTransactionLogRepository struct {
	client *redis.Client
	key    string
}

func NewRedisTransactionLogRepository(client *redis.Client) TransactionLogRepository {
	return &redisTransactionLogRepository{client: client, key: TransactionLogKey}
}

func (r *redisTransactionLogRepository) Append(ctx context.Context, entry ledger.Entry) (err error) {
	defer observe("redis", "append", time.Now(), &err)

	if err := r.client.RPush(ctx, r.key, entry.Line()).Err(); err != nil {
		return fmt.Errorf("failed to append transaction log: %w", err)
	}
	return nil
}

func (r *redisTransactionLogRepository) ReadByAccount(ctx context.Context, accountNumber int64) (lines []string, err error) {
	defer observe("redis", "read_by_account", time.Now(), &err)

	all, err := r.client.LRange(ctx, r.key, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read transaction log: %w", err)
	}

	lines = []string{}
	for _, line := range all {
		if ledger.MatchesAccount(line, accountNumber) {
			lines = append(lines, line)
		}
	}
	return lines, nil
}
