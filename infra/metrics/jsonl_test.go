package metrics

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/wasteflow/core/factory"
	coremetrics "github.com/kilianp07/wasteflow/core/metrics"
)

func TestJSONLSink_AppendsLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal", "runs.jsonl")
	s, err := NewJSONLSink(JSONLConfig{Path: path})
	require.NoError(t, err)

	t0 := time.Date(2024, 7, 1, 9, 0, 0, 0, time.UTC)
	first := sampleRun(t0)
	second := sampleRun(t0.Add(time.Hour))
	second.RunID = "run-2"
	require.NoError(t, s.RecordRun(first))
	require.NoError(t, s.RecordRun(second))
	require.NoError(t, s.Close())

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	var got []coremetrics.RunEvent
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var ev coremetrics.RunEvent
		require.NoError(t, json.Unmarshal(sc.Bytes(), &ev))
		got = append(got, ev)
	}
	require.NoError(t, sc.Err())
	require.Len(t, got, 2)
	assert.Equal(t, "run-1", got[0].RunID)
	assert.Equal(t, "run-2", got[1].RunID)
	assert.Equal(t, first.Records, got[0].Records)
}

func TestJSONLSink_RequiresPath(t *testing.T) {
	_, err := NewJSONLSink(JSONLConfig{})
	require.Error(t, err)
}

func TestJSONLSink_FromFactory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.jsonl")
	s, err := coremetrics.NewSink([]factory.ModuleConfig{{
		Type: "jsonl",
		Conf: map[string]any{"path": path, "max_size_mb": "10", "max_backups": 2},
	}})
	require.NoError(t, err)
	js, ok := s.(*JSONLSink)
	require.True(t, ok, "got %T", s)
	assert.Equal(t, 10, js.out.MaxSize)
	assert.Equal(t, 2, js.out.MaxBackups)
}
