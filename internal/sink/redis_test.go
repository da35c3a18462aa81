package sink_test

import (
	"context"
	"testing"
	"time"

	"codeberg.org/mutker/camvitals/internal/errors"
	"codeberg.org/mutker/camvitals/internal/session"
	"codeberg.org/mutker/camvitals/internal/sink"
	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisLatest(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx := context.Background()

	r, err := sink.ConnectRedis(ctx, mr.Addr(), "", 0)
	require.NoError(t, err)
	defer r.Close()

	assert.Equal(t, "camvitals:metrics", r.Key(sink.KindMetrics))

	payload, err := r.Latest(ctx, sink.KindMetrics)
	require.NoError(t, err)
	assert.Nil(t, payload)

	require.NoError(t, r.Publish(ctx, sink.KindMetrics, []byte(`{"n":1}`)))
	require.NoError(t, r.Publish(ctx, sink.KindMetrics, []byte(`{"n":2}`)))

	payload, err = r.Latest(ctx, sink.KindMetrics)
	require.NoError(t, err)
	assert.JSONEq(t, `{"n":2}`, string(payload), "only the latest envelope is kept")
	assert.Equal(t, sink.DefaultRedisTTL, mr.TTL("camvitals:metrics"))

	mr.FastForward(sink.DefaultRedisTTL + time.Second)
	payload, err = r.Latest(ctx, sink.KindMetrics)
	require.NoError(t, err)
	assert.Nil(t, payload, "stale vitals expire")
}

func TestRedisThroughBus(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx := context.Background()

	r, err := sink.ConnectRedis(ctx, mr.Addr(), "ward7", 3*time.Second)
	require.NoError(t, err)

	bus := sink.NewBus(r)
	bus.Status(session.StatusCapturing)

	stored, err := mr.Get("ward7:status")
	require.NoError(t, err)
	assert.Contains(t, stored, `"status":"capturing"`)
	assert.Equal(t, 3*time.Second, mr.TTL("ward7:status"))

	require.NoError(t, bus.Close())
}

func TestRedisUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := sink.ConnectRedis(context.Background(), addr, "", 0)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrSinkInit))
}
