package redis

import (
	"testing"

	jsonpatch "github.com/evanphx/json-patch"
	"github.com/stretchr/testify/require"
)

func TestMergeDocument(t *testing.T) {
	type status struct {
		Status   string `json:"status"`
		Attempts int    `json:"attempts"`
	}
	raw := []byte(`{"status": "submitted", "attempts": 1, "owner": {"team": "asr"}}`)
	merged, err := MergeDocument(raw, status{Status: "started", Attempts: 2})
	require.NoError(t, err)
	require.True(t, jsonpatch.Equal(
		[]byte(`{"status": "started", "attempts": 2, "owner": {"team": "asr"}}`),
		merged,
	), string(merged))
}

func TestConfig(t *testing.T) {
	t.Setenv("ITN_REDIS_HOST", "")
	cfg, err := ReadEnvironment()
	require.NoError(t, err)
	require.False(t, cfg.Configured())
	require.Equal(t, "6379", cfg.Port)

	_, err = NewClient(0)
	require.Error(t, err)

	t.Setenv("ITN_REDIS_HOST", "localhost")
	cfg, err = ReadEnvironment()
	require.NoError(t, err)
	require.True(t, cfg.Configured())
	client := NewClientFromConfig(cfg, 1)
	require.NoError(t, client.Close())
}
