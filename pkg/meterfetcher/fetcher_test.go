package meterfetcher

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sywesk/tsme-exporter/pkg/tsme"
)

type fakeClient struct {
	meterIDs  []string
	listErr   error
	series    map[string][]tsme.MeteringRecord
	failMeter string
	calls     []string
}

func (f *fakeClient) ListMeterIDs(_ context.Context) ([]string, error) {
	f.calls = append(f.calls, "list")
	return f.meterIDs, f.listErr
}

func (f *fakeClient) GetMetering(_ context.Context, meterID string, _, _ *time.Time) ([]tsme.MeteringRecord, error) {
	f.calls = append(f.calls, meterID)
	if meterID == f.failMeter {
		return nil, fmt.Errorf("boom")
	}
	return f.series[meterID], nil
}

func float(f float64) *float64 {
	return &f
}

func day(d int) time.Time {
	return time.Date(2025, time.July, d, 0, 0, 0, 0, tsme.Location())
}

func newTestFetcher(client MeteringClient) *Fetcher {
	return New(client, Settings{Pause: time.Millisecond})
}

func TestFetchAll(t *testing.T) {
	client := &fakeClient{
		meterIDs: []string{"A1", "B2"},
		series: map[string][]tsme.MeteringRecord{
			"A1": {
				{Date: day(1), Index: float(100), Volume: 2.5},
				{Date: day(2), Index: float(103), Volume: 3},
			},
			"B2": {
				{Date: day(1), Index: float(7), Volume: 0.5},
				{Date: day(2), Index: nil, Volume: 0.25},
			},
		},
	}

	data, err := newTestFetcher(client).FetchAll(context.Background(), nil, nil)
	require.NoError(t, err)
	require.Len(t, data, 2)
	assert.Equal(t, "A1", data[0].MeterID)
	assert.Equal(t, "B2", data[1].MeterID)
	assert.Len(t, data[0].Records, 2)
	assert.Equal(t, []string{"list", "A1", "B2"}, client.calls)

	assert.Equal(t, 103.0, testutil.ToFloat64(index.WithLabelValues("A1")))
	assert.Equal(t, 3.0, testutil.ToFloat64(volume.WithLabelValues("A1")))
	assert.Equal(t, 7.0, testutil.ToFloat64(index.WithLabelValues("B2")))
	assert.Equal(t, 0.25, testutil.ToFloat64(volume.WithLabelValues("B2")))
	assert.Equal(t, float64(day(2).Unix()), testutil.ToFloat64(lastMeasure.WithLabelValues("B2")))
}

func TestFetchAllNoMeter(t *testing.T) {
	client := &fakeClient{meterIDs: []string{}}

	_, err := newTestFetcher(client).FetchAll(context.Background(), nil, nil)
	require.ErrorIs(t, err, ErrNoCompatibleMeter)
	assert.Equal(t, []string{"list"}, client.calls)
}

func TestFetchAllStopsOnFirstError(t *testing.T) {
	client := &fakeClient{
		meterIDs:  []string{"A1", "B2", "C3"},
		failMeter: "B2",
	}

	data, err := newTestFetcher(client).FetchAll(context.Background(), nil, nil)
	require.Error(t, err)
	assert.Nil(t, data)
	assert.Equal(t, []string{"list", "A1", "B2"}, client.calls)
}

func TestFetchAllListError(t *testing.T) {
	client := &fakeClient{listErr: tsme.ErrInvalidCredentials}

	_, err := newTestFetcher(client).FetchAll(context.Background(), nil, nil)
	require.ErrorIs(t, err, tsme.ErrInvalidCredentials)
}

func TestFetchAllPausesBetweenMeters(t *testing.T) {
	client := &fakeClient{meterIDs: []string{"A1", "B2", "C3"}}
	fetcher := New(client, Settings{Pause: 20 * time.Millisecond})

	start := time.Now()
	_, err := fetcher.FetchAll(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 35*time.Millisecond)
}

func TestFetchOne(t *testing.T) {
	client := &fakeClient{
		meterIDs: []string{"A1", "B2"},
		series: map[string][]tsme.MeteringRecord{
			"B2": {{Date: day(3), Index: float(12), Volume: 1}},
		},
	}

	data, err := newTestFetcher(client).FetchOne(context.Background(), "B2", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "B2", data.MeterID)
	assert.Len(t, data.Records, 1)

	_, err = newTestFetcher(client).FetchOne(context.Background(), "Z9", nil, nil)
	require.ErrorIs(t, err, ErrMeterNotFound)
	assert.Equal(t, []string{"list", "B2", "list"}, client.calls)
}

func TestLastIndex(t *testing.T) {
	data := MeterData{Records: []tsme.MeteringRecord{
		{Date: day(1), Index: float(10)},
		{Date: day(2), Index: float(11)},
		{Date: day(3), Index: nil},
	}}

	record, ok := data.LastIndex()
	require.True(t, ok)
	assert.Equal(t, 11.0, *record.Index)

	_, ok = MeterData{Records: []tsme.MeteringRecord{{Date: day(1)}}}.LastIndex()
	assert.False(t, ok)
}
