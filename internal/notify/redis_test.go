package notify

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"nutrify/diet-tracker/internal/domain"
	"nutrify/diet-tracker/internal/logging"
)

// newTestRedis starts a Redis container when GO_TEST_INTEGRATION is set.
func newTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	if os.Getenv("GO_TEST_INTEGRATION") == "" {
		t.Skip("set GO_TEST_INTEGRATION to run Redis tests")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	c, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections"),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Terminate(context.Background()) })

	host, err := c.Host(ctx)
	require.NoError(t, err)
	port, err := c.MappedPort(ctx, "6379/tcp")
	require.NoError(t, err)

	client, err := NewRedisClient(ctx, fmt.Sprintf("redis://%s:%s/0", host, port.Port()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestRedisThrottle(t *testing.T) {
	client := newTestRedis(t)
	th := NewRedisThrottle(client)
	ctx := context.Background()
	now := time.Now()

	ok, err := th.Allow(ctx, "U:goals", now, 300*time.Millisecond)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = th.Allow(ctx, "U:goals", now, 300*time.Millisecond)
	require.NoError(t, err)
	assert.False(t, ok)

	time.Sleep(400 * time.Millisecond)
	ok, err = th.Allow(ctx, "U:goals", now, 300*time.Millisecond)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRedisSink_RelayIntoHub(t *testing.T) {
	client := newTestRedis(t)
	hub := NewHub(4)
	ch, cancelSub := hub.Subscribe("U")
	defer cancelSub()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go Relay(ctx, client, hub, logging.Discard())

	sink := NewRedisSink(client)
	ev := domain.Event{Type: domain.EventFoodLogUpdated, UserID: "U", Field: "foodLog"}
	require.Eventually(t, func() bool {
		_ = sink.Publish(ctx, ev)
		select {
		case got := <-ch:
			return got.Type == domain.EventFoodLogUpdated
		case <-time.After(50 * time.Millisecond):
			return false
		}
	}, 5*time.Second, 100*time.Millisecond)
}
