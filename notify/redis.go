package notify

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// DefaultRedisKey is the list alerts are pushed to if no key is configured
const DefaultRedisKey = "llssurvey:alerts"

// RedisNotifier pushes alerts as JSON onto a redis list, from which the
// external mailer pops them
type RedisNotifier struct {
	client redis.UniversalClient
	key    string
}

// NewRedisNotifier creates a RedisNotifier
func NewRedisNotifier(client redis.UniversalClient, key string) *RedisNotifier {
	if key == "" {
		key = DefaultRedisKey
	}
	return &RedisNotifier{
		client: client,
		key:    key,
	}
}

// Notify implements the Notifier interface. All alerts are pushed with a
// single RPUSH, so either all or none are queued.
func (n *RedisNotifier) Notify(ctx context.Context, alerts []Alert) error {
	if len(alerts) == 0 {
		return nil
	}
	values := make([]any, len(alerts))
	for i, a := range alerts {
		data, err := json.Marshal(a)
		if err != nil {
			return errors.WithStack(err)
		}
		values[i] = data
	}
	if err := n.client.RPush(ctx, n.key, values...).Err(); err != nil {
		return errors.Wrap(err, "could not queue alerts")
	}
	return nil
}
