package redis

import (
	"github.com/redis/go-redis/v9"
)

//go:generate mockgen -destination=mocks/redis.go -package=redismocks -source=interface.go

// Client wraps redis.UniversalClient so storage code depends on this package
// and tests can substitute miniredis or a mock.
type Client interface {
	redis.UniversalClient
}
