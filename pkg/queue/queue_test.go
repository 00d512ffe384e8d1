package queue

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestQueue(t *testing.T) (*Queue, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewQueue(client, nil), mr
}

func TestEnqueueDequeue(t *testing.T) {
	q, _ := newTestQueue(t)
	ctx := context.Background()

	require.NoError(t, q.EnqueuePercentage(ctx, PercentagePayload{RegisterNo: "24UCSE001"}))

	job, err := q.Dequeue(ctx)
	require.NoError(t, err)
	require.NotNil(t, job)
	assert.Equal(t, JobTypePercentageRecompute, job.Type)
	assert.Equal(t, 0, job.Attempt)

	var p PercentagePayload
	require.NoError(t, json.Unmarshal(job.Payload, &p))
	assert.Equal(t, "24UCSE001", p.RegisterNo)
}

func TestRetryMovesToDLQAfterMaxRetries(t *testing.T) {
	q, mr := newTestQueue(t)
	ctx := context.Background()
	job := &Job{ID: "j1", Type: JobTypePercentageRecompute, Payload: json.RawMessage(`{}`)}

	for i := 1; i < MaxRetries; i++ {
		require.NoError(t, q.Retry(ctx, job))
		assert.Equal(t, i, job.Attempt)
	}
	queued, err := mr.List(QueuePercentages)
	require.NoError(t, err)
	assert.Len(t, queued, MaxRetries-1)

	require.NoError(t, q.Retry(ctx, job))
	dead, err := mr.List(QueueDLQ)
	require.NoError(t, err)
	assert.Len(t, dead, 1)
}

func TestDequeueSkipsGarbage(t *testing.T) {
	q, mr := newTestQueue(t)
	_, err := mr.Push(QueuePercentages, "not json")
	require.NoError(t, err)

	job, err := q.Dequeue(context.Background())
	require.NoError(t, err)
	assert.Nil(t, job)
}
