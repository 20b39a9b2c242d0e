// internal/infrastructure/database/redis/connection_test.go
package redis

import (
	"context"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

func unreachableClient() *Client {
	// Port 1 is never listening, so every command fails fast
	return &Client{Redis: goredis.NewClient(&goredis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: time.Second,
		MaxRetries:  -1,
	})}
}

func TestSetJSONRejectsUnmarshalableValue(t *testing.T) {
	c := unreachableClient()

	// Marshal failure surfaces before any network call
	err := c.SetJSON(context.Background(), "k", make(chan int), time.Minute)
	assert.ErrorContains(t, err, "failed to marshal value")
}

func TestGetJSONPropagatesConnectionError(t *testing.T) {
	c := unreachableClient()

	var dest []string
	err := c.GetJSON(context.Background(), "k", &dest)
	assert.Error(t, err)
	assert.Empty(t, dest)
}
