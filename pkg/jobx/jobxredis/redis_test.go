package jobxredis

import (
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

func TestKeys(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{Addr: "localhost:0"})
	t.Cleanup(func() { _ = rdb.Close() })

	q := NewRedisQueue(rdb)
	assert.Equal(t, "userdesk:jobx:queue:default", q.queueKey("default"))
	assert.Equal(t, "userdesk:jobx:scheduled:default", q.scheduledKey("default"))
	assert.Equal(t, "userdesk:jobx:job:abc", q.jobKey("abc"))

	q = NewRedisQueue(rdb, WithPrefix("test"), WithFinishedTTL(time.Hour))
	assert.Equal(t, "test:jobx:job:abc", q.jobKey("abc"))
	assert.Equal(t, time.Hour, q.ttl)
}
