package config

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 默认值必须能映射进嵌套的配置结构，字段路径漂移在这里暴露
func TestDefaultsUnmarshal(t *testing.T) {
	v := viper.New()
	setDefaults(v)

	var cfg Config
	require.NoError(t, v.Unmarshal(&cfg))

	assert.Equal(t, "localhost", cfg.Cache.Redis.Host)
	assert.Equal(t, 6379, cfg.Cache.Redis.Port)
	assert.Equal(t, "localhost", cfg.Vector.Milvus.Host)
	assert.Equal(t, "COSINE", cfg.Vector.Milvus.MetricType)
	assert.Equal(t, "mxbai-embed-large", cfg.Embedding.Model)
	assert.Equal(t, 800, cfg.Ingest.ChunkSizeRunes)
	assert.Equal(t, "ingest-workers", cfg.Messaging.ConsumerGroup)
	assert.Equal(t, "file", cfg.History.Backend)
}

func TestExpandEnv(t *testing.T) {
	t.Setenv("KN_TEST_HOST", "redis.internal")

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"set variable", "host: ${KN_TEST_HOST:localhost}", "host: redis.internal"},
		{"unset with default", "port: ${KN_TEST_PORT:6379}", "port: 6379"},
		{"unset with empty default", "password: ${KN_TEST_PASSWORD:}", "password: "},
		{"unset without default keeps placeholder", "key: ${KN_TEST_MISSING}", "key: ${KN_TEST_MISSING}"},
		{"multiple placeholders", "${KN_TEST_HOST:a}:${KN_TEST_PORT:6379}", "redis.internal:6379"},
		{"no placeholder", "plain: value", "plain: value"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, expandEnv(tt.input))
		})
	}
}
