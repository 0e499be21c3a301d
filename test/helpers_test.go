//go:build integration
// +build integration

package test

import (
	"testing"

	"github.com/MrEthical07/goCart/session"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newIntegrationStore(t *testing.T, name string) (*session.RedisTokenStore, *miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	return session.NewRedisTokenStore(rdb, "gc", name), mr, rdb
}
