package cmd

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testScenario = `
name: two by two
producers:
  - {id: H1, name: Hotel, latitude: 41.3862, longitude: 2.1963}
  - {id: R1, name: Restaurant, latitude: 41.3840, longitude: 2.1820}
processors:
  - {id: P1, name: North, latitude: 41.41, longitude: 2.20, capacity_kg_per_month: 800}
  - {id: P2, name: South, latitude: 41.36, longitude: 2.14, capacity_kg_per_month: 1000}
forecasts:
  - {producer_id: H1, waste_type: organic, forecasted_volume_kg: 1000}
  - {producer_id: R1, waste_type: organic, forecasted_volume_kg: 500}
`

func writeScenario(t *testing.T) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(p, []byte(testScenario), 0o600))
	return p
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	allocateOpts.format = "json"
	allocateOpts.output = ""
	allocateOpts.strategy = ""
	cfgPath = ""
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() { rootCmd.SetArgs(nil) })
	err := rootCmd.Execute()
	return out.String(), err
}

func TestAllocateJSON(t *testing.T) {
	out, err := execute(t, "allocate", "--scenario", writeScenario(t))
	require.NoError(t, err)

	var rep struct {
		Strategy string `json:"strategy"`
		Records  []struct {
			VolumeKg float64 `json:"allocated_volume_kg"`
		} `json:"allocations"`
		Summary struct {
			TotalKg float64 `json:"total_allocated_kg"`
		} `json:"summary"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &rep))
	assert.Equal(t, "greedy", rep.Strategy)
	assert.NotEmpty(t, rep.Records)
	assert.InDelta(t, 1500, rep.Summary.TotalKg, 1e-9)
}

func TestAllocateCSVToFile(t *testing.T) {
	dst := filepath.Join(t.TempDir(), "out.csv")
	_, err := execute(t, "allocate", "-s", writeScenario(t), "-f", "csv", "-o", dst, "--strategy", "min_cost_flow")
	require.NoError(t, err)

	f, err := os.Open(dst)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(rows), 3)
	assert.Equal(t, "waste_type", rows[0][0])
}

func TestAllocateUnknownFormat(t *testing.T) {
	_, err := execute(t, "allocate", "-s", writeScenario(t), "-f", "xml")
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	out, err := execute(t, "validate", writeScenario(t))
	require.NoError(t, err)
	assert.Contains(t, out, "2 producers, 2 processors, 2 forecasts")

	_, err = execute(t, "validate", filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestValidateExample(t *testing.T) {
	out, err := execute(t, "validate", "--config", "../config.example.yaml", "../examples/barcelona.yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "3 producers, 2 processors, 6 forecasts")
}
