package messaging

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeStreamMessage(t *testing.T) {
	msg, err := NewMessage("job-1", MessageTypeIndexDocument, "policy.pdf", &IngestJobMessage{
		JobID:    "job-1",
		SourceID: "policy.pdf",
		Action:   IngestActionIndex,
	})
	require.NoError(t, err)

	data, err := json.Marshal(msg)
	require.NoError(t, err)

	decoded, ok := decodeStreamMessage(redis.XMessage{
		ID:     "1-0",
		Values: map[string]interface{}{"data": string(data)},
	})
	require.True(t, ok)
	assert.Equal(t, "job-1", decoded.ID)
	assert.Equal(t, MessageTypeIndexDocument, decoded.Type)
	assert.Equal(t, "policy.pdf", decoded.SourceID)
}

func TestDecodeStreamMessageInvalid(t *testing.T) {
	_, ok := decodeStreamMessage(redis.XMessage{Values: map[string]interface{}{}})
	assert.False(t, ok)

	_, ok = decodeStreamMessage(redis.XMessage{Values: map[string]interface{}{"data": "{not json"}})
	assert.False(t, ok)
}

func TestNewConsumerDefaults(t *testing.T) {
	c := NewConsumer(nil, ConsumerConfig{
		Stream:       StreamIngestJobs,
		Group:        "ingest-workers",
		ConsumerName: "worker-1",
	})

	assert.Equal(t, 5*time.Second, c.blockTimeout)
	assert.Equal(t, 3, c.retryLimit)
	// 接管阈值不低于五分钟
	assert.Equal(t, 5*time.Minute, c.reclaimIdle)
}
