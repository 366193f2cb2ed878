package forecast

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/wasteflow/core/model"
)

func day(d int) time.Time { return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC) }

func TestAverageForecaster_MeanAndBounds(t *testing.T) {
	history := []model.Observation{
		{ProducerID: "H1", Category: model.CategoryOrganic, Period: day(1), VolumeKg: 10},
		{ProducerID: "H1", Category: model.CategoryOrganic, Period: day(2), VolumeKg: 30},
		{ProducerID: "H1", Category: model.CategoryPaper, Period: day(1), VolumeKg: 5},
	}
	out, err := AverageForecaster{}.Forecast(history)
	require.NoError(t, err)
	require.Len(t, out, 2)

	assert.Equal(t, "H1", out[0].ProducerID)
	assert.Equal(t, model.CategoryOrganic, out[0].Category)
	assert.InDelta(t, 20, out[0].VolumeKg, 1e-9)
	assert.InDelta(t, 10, out[0].LowerKg, 1e-9)
	assert.InDelta(t, 30, out[0].UpperKg, 1e-9)

	assert.Equal(t, model.CategoryPaper, out[1].Category)
	assert.InDelta(t, 5, out[1].VolumeKg, 1e-9)
	assert.InDelta(t, 5, out[1].LowerKg, 1e-9)
}

func TestAverageForecaster_WindowUsesMostRecent(t *testing.T) {
	history := []model.Observation{
		{ProducerID: "H1", Category: model.CategoryPlastic, Period: day(3), VolumeKg: 40},
		{ProducerID: "H1", Category: model.CategoryPlastic, Period: day(1), VolumeKg: 1000},
		{ProducerID: "H1", Category: model.CategoryPlastic, Period: day(2), VolumeKg: 20},
	}
	out, err := AverageForecaster{Window: 2}.Forecast(history)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.InDelta(t, 30, out[0].VolumeKg, 1e-9)
	// input order untouched
	assert.Equal(t, 40.0, history[0].VolumeKg)
}

func TestAverageForecaster_LowerBoundClamped(t *testing.T) {
	history := []model.Observation{
		{ProducerID: "C1", Category: model.CategoryOrganic, Period: day(1), VolumeKg: 0},
		{ProducerID: "C1", Category: model.CategoryOrganic, Period: day(2), VolumeKg: 0},
		{ProducerID: "C1", Category: model.CategoryOrganic, Period: day(3), VolumeKg: 300},
	}
	out, err := AverageForecaster{}.Forecast(history)
	require.NoError(t, err)
	assert.Zero(t, out[0].LowerKg)
	assert.Greater(t, out[0].UpperKg, out[0].VolumeKg)
}

func TestAverageForecaster_Invalid(t *testing.T) {
	cases := map[string]model.Observation{
		"negative": {ProducerID: "H1", Category: model.CategoryOrganic, VolumeKg: -1},
		"empty id": {Category: model.CategoryOrganic, VolumeKg: 1},
	}
	for name, obs := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := AverageForecaster{}.Forecast([]model.Observation{obs})
			var ve *model.ValidationError
			require.True(t, errors.As(err, &ve))
		})
	}
}

func TestAverageForecaster_Empty(t *testing.T) {
	out, err := AverageForecaster{Window: 3}.Forecast(nil)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestStatic(t *testing.T) {
	entries := []model.ForecastEntry{{ProducerID: "H1", Category: model.CategoryOrganic, VolumeKg: 5}}
	s := Static{Entries: entries}
	out, err := s.Forecast(nil)
	require.NoError(t, err)
	require.Equal(t, entries, out)
	out[0].VolumeKg = 99
	assert.Equal(t, 5.0, entries[0].VolumeKg)

	out, err = Static{}.Forecast(nil)
	require.NoError(t, err)
	assert.Nil(t, out)
}
