package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	jsonpatch "github.com/evanphx/json-patch"
	"github.com/go-redis/redis/v8"
	"github.com/kelseyhightower/envconfig"
)

type DB int
type ReleaseLock func() error

var ErrNotFound = errors.New("redis: key not found")

type Config struct {
	LockExpirationSeconds   int     `envconfig:"ITN_REDIS_LOCK_EXPIRATION" default:"30"`
	LockRetries             int     `envconfig:"ITN_REDIS_LOCK_RETRIES" default:"20"`
	Host                    string  `envconfig:"ITN_REDIS_HOST"`
	Port                    string  `envconfig:"ITN_REDIS_PORT" default:"6379"`
	HASentinelPort          string  `envconfig:"ITN_REDIS_HA_SENTINEL_PORT" default:"26379"`
	HASentinelMasterName    string  `envconfig:"ITN_REDIS_HA_MASTER_NAME" default:"mymaster"`
	Password                string  `envconfig:"ITN_REDIS_AUTH_PASSWORD"`
	AuthRequired            bool    `envconfig:"ITN_REDIS_AUTH_REQUIRED" default:"false"`
	HAMode                  bool    `envconfig:"ITN_REDIS_HA_MODE" default:"false"`
	HASentinelSocketTimeout float32 `envconfig:"ITN_REDIS_SOCKET_TIMEOUT" default:"0.5"`
}

// Configured reports whether a Redis host is set.
func (cfg *Config) Configured() bool {
	return cfg.Host != ""
}

// Client stores JSON documents and hands out distributed locks.
type Client struct {
	client         redis.UniversalClient
	locks          *redislock.Client
	lockExpiration time.Duration
	lockRetries    int
}

func ReadEnvironment() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func NewClient(db DB) (*Client, error) {
	cfg, err := ReadEnvironment()
	if err != nil {
		return nil, err
	}
	if !cfg.Configured() {
		return nil, errors.New("redis: ITN_REDIS_HOST is not set")
	}
	return NewClientFromConfig(cfg, db), nil
}

func NewClientFromConfig(cfg *Config, db DB) *Client {
	var client redis.UniversalClient
	if cfg.HAMode {
		client = CreateFailoverClient(cfg, db)
	} else {
		client = CreateClient(cfg, db)
	}
	return &Client{
		client:         client,
		locks:          redislock.New(client),
		lockExpiration: time.Duration(cfg.LockExpirationSeconds) * time.Second,
		lockRetries:    cfg.LockRetries,
	}
}

func CreateFailoverClient(cfg *Config, db DB) *redis.ClusterClient {
	addr := fmt.Sprintf("%s:%s", cfg.Host, cfg.HASentinelPort)
	timeout := time.Duration(float64(cfg.HASentinelSocketTimeout) * float64(time.Second))
	options := redis.FailoverOptions{
		SentinelAddrs: []string{addr},
		ReadTimeout:   timeout,
		WriteTimeout:  timeout,
		MaxRetries:    6,
		DB:            int(db),
		MasterName:    cfg.HASentinelMasterName,
	}
	if cfg.AuthRequired {
		options.Password = cfg.Password
	}
	return redis.NewFailoverClusterClient(&options)
}

func CreateClient(cfg *Config, db DB) *redis.Client {
	addr := fmt.Sprintf("%s:%s", cfg.Host, cfg.Port)
	options := redis.Options{
		Addr:       addr,
		MaxRetries: 6,
		DB:         int(db),
	}
	if cfg.AuthRequired {
		options.Password = cfg.Password
	}
	return redis.NewClient(&options)
}

// Lock obtains lock:<key>, retrying once a second.
func (client *Client) Lock(ctx context.Context, key string) (ReleaseLock, error) {
	strategy := redislock.LimitRetry(redislock.LinearBackoff(time.Second), client.lockRetries)
	lock, err := client.locks.Obtain(ctx, "lock:"+key, client.lockExpiration, &redislock.Options{RetryStrategy: strategy})
	if err != nil {
		return nil, err
	}
	return func() error {
		return lock.Release(context.Background())
	}, nil
}

// GetDocument returns the raw JSON stored under key.
func (client *Client) GetDocument(ctx context.Context, key string) ([]byte, error) {
	b, err := client.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	return b, err
}

// UpdateDocument loads the document under key into doc, applies update and
// merges the result back over the stored JSON, so fields doc does not know
// about survive. A missing key starts from an empty document.
func (client *Client) UpdateDocument(ctx context.Context, key string, doc interface{}, update func() error) (err error) {
	release, err := client.Lock(ctx, key)
	if err != nil {
		return err
	}
	defer func() {
		if releaseErr := release(); err == nil {
			err = releaseErr
		}
	}()

	raw, err := client.GetDocument(ctx, key)
	switch {
	case errors.Is(err, ErrNotFound):
		raw = []byte("{}")
	case err != nil:
		return err
	default:
		if err = json.Unmarshal(raw, doc); err != nil {
			return err
		}
	}
	if err = update(); err != nil {
		return err
	}
	merged, err := MergeDocument(raw, doc)
	if err != nil {
		return err
	}
	return client.client.Set(ctx, key, merged, 0).Err()
}

// MergeDocument overlays the JSON form of doc on raw.
func MergeDocument(raw []byte, doc interface{}) ([]byte, error) {
	patch, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	return jsonpatch.MergePatch(raw, patch)
}

func (client *Client) Close() error {
	return client.client.Close()
}
