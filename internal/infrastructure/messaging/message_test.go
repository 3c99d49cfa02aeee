package messaging

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessagePayloadRoundTrip(t *testing.T) {
	job := &IngestJobMessage{
		JobID:    "job-1",
		SourceID: "policy.pdf",
		Action:   IngestActionIndex,
		Pages: []DocumentPage{
			{Page: 1, Text: "contenido", Sections: []string{"Capítulo 1"}},
		},
	}

	msg, err := NewMessage(job.JobID, MessageTypeIndexDocument, job.SourceID, job)
	require.NoError(t, err)
	assert.Equal(t, "policy.pdf", msg.SourceID)

	var decoded IngestJobMessage
	require.NoError(t, msg.UnmarshalPayload(&decoded))
	assert.Equal(t, "job-1", decoded.JobID)
	require.Len(t, decoded.Pages, 1)
	assert.Equal(t, []string{"Capítulo 1"}, decoded.Pages[0].Sections)
}

func TestMessageMetadata(t *testing.T) {
	msg := &Message{}
	assert.Empty(t, msg.GetMetadata("trace_id"))

	msg.SetMetadata("trace_id", "abc")
	assert.Equal(t, "abc", msg.GetMetadata("trace_id"))
}

func TestDLQStream(t *testing.T) {
	assert.Equal(t, "dlq:stream:ingest:jobs", StreamIngestJobs.DLQStream())
}

func TestCalculateBackoff(t *testing.T) {
	cfg := DefaultBackoffConfig()

	assert.Equal(t, time.Second, cfg.CalculateBackoff(0))
	assert.Equal(t, 2*time.Second, cfg.CalculateBackoff(1))
	assert.Equal(t, 8*time.Second, cfg.CalculateBackoff(3))
	// 超过上限后封顶
	assert.Equal(t, time.Minute, cfg.CalculateBackoff(10))
}
