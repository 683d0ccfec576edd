package auth

import (
	"context"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
)

func TestDenylistKey(t *testing.T) {
	assert.Equal(t, "auth:revoked:abc", denylistKey("abc"))
}

func TestRedisDenylist_RevokeExpiredIsNoop(t *testing.T) {
	// Nothing listens here; an expired token must not reach the network.
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})
	defer client.Close()

	denylist := NewRedisDenylist(client)
	err := denylist.Revoke(context.Background(), "jti", time.Now().Add(-time.Minute))
	assert.NoError(t, err)
}
