package redis

import (
	"context"

	"github.com/kart-io/logger"
	goredis "github.com/redis/go-redis/v9"
)

// redisLogger routes go-redis internal messages through the service logger,
// so cache connection noise shows up in the same structured stream.
type redisLogger struct{}

func (redisLogger) Printf(ctx context.Context, format string, v ...interface{}) {
	logger.Global().WithCtx(ctx).Infof(format, v...)
}

func init() {
	goredis.SetLogger(redisLogger{})
}
