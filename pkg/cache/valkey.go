package cache

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	valkey "github.com/valkey-io/valkey-go"
)

// ValkeyClient implements Cache using Valkey so several API instances share cached leaderboards.
type ValkeyClient struct {
	c valkey.Client
}

func NewValkey(addr, password string) (*ValkeyClient, error) {
	opts := valkey.ClientOption{
		InitAddress: []string{addr},
	}
	if password != "" {
		opts.Username = "default"
		opts.Password = password
	}
	client, err := valkey.NewClient(opts)
	if err != nil {
		return nil, err
	}
	return &ValkeyClient{c: client}, nil
}

func (v *ValkeyClient) Get(ctx context.Context, key string) (string, bool) {
	res := v.c.Do(ctx, v.c.B().Get().Key(key).Build())
	if err := res.Error(); err != nil {
		if !valkey.IsValkeyNil(err) {
			log.Warn().Err(err).Str("key", key).Msg("cache get failed")
		}
		return "", false
	}
	str, err := res.ToString()
	if err != nil {
		return "", false
	}
	return str, true
}

func (v *ValkeyClient) Set(ctx context.Context, key string, val string, ttl time.Duration) error {
	if ttl > 0 {
		res := v.c.Do(ctx, v.c.B().Set().Key(key).Value(val).ExSeconds(int64(ttl/time.Second)).Build())
		return res.Error()
	}
	res := v.c.Do(ctx, v.c.B().Set().Key(key).Value(val).Build())
	return res.Error()
}

func (v *ValkeyClient) Delete(ctx context.Context, key string) error {
	res := v.c.Do(ctx, v.c.B().Del().Key(key).Build())
	return res.Error()
}

// DeletePrefix walks matching keys with SCAN and unlinks them in batches.
func (v *ValkeyClient) DeletePrefix(ctx context.Context, prefix string) error {
	var cursor uint64
	for {
		res, err := v.c.Do(ctx, v.c.B().Scan().Cursor(cursor).Match(prefix+"*").Count(100).Build()).AsScanEntry()
		if err != nil {
			return err
		}
		if len(res.Elements) > 0 {
			if err := v.c.Do(ctx, v.c.B().Unlink().Key(res.Elements...).Build()).Error(); err != nil {
				return err
			}
		}
		cursor = res.Cursor
		if cursor == 0 {
			return nil
		}
	}
}

// Ping checks the connection at startup.
func (v *ValkeyClient) Ping(ctx context.Context) error {
	return v.c.Do(ctx, v.c.B().Ping().Build()).Error()
}

func (v *ValkeyClient) Close() { v.c.Close() }
