package cache

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/mediocregopher/radix/v3"
)

// RedisCache shares fetched license texts between hosts
type RedisCache struct {
	Backed Cacher
	Client radix.Client
	TTL    time.Duration
}

func (*RedisCache) textKey(url string) string {
	return fmt.Sprintf("license:text:%s", url)
}

func (rc *RedisCache) Open(ctx context.Context, url string) (io.ReadCloser, error) {
	key := rc.textKey(url)

	var content []byte
	maybeNil := radix.MaybeNil{Rcv: &content}

	err := rc.Client.Do(radix.Cmd(&maybeNil, "GET", key))
	if err != nil {
		return nil, fmt.Errorf("get license text from redis failed: %w", err)
	}

	if !maybeNil.Nil {
		return reader(content), nil
	}

	content, err = readBacked(ctx, rc.Backed, url)
	if err != nil {
		return nil, err
	}

	cmds := []radix.CmdAction{
		radix.FlatCmd(nil, "SET", key, content),
	}
	if rc.TTL > 0 {
		cmds = append(cmds, radix.FlatCmd(nil, "PEXPIRE", key, int64(rc.TTL/time.Millisecond)))
	}

	err = rc.Client.Do(radix.Pipeline(cmds...))
	if err != nil {
		return nil, fmt.Errorf("set license text in redis failed: %w", err)
	}

	return reader(content), nil
}
