package cache

import (
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/panbanda/fundgrowth/pkg/models"
)

func sampleDataSet() models.MetricGrowthDataSet {
	return models.MetricGrowthDataSet{
		Metric: "financials.income_statement.yearly.operating_income",
		Entries: []models.MetricGrowthEntry{
			{
				Date:             "2024-12-31",
				Year:             2024.99,
				AnnualGrowthRate: 0.08,
				Model: models.EmpiricalGrowthModel{
					ModelType:    models.ExponentialCyclicalModel,
					Duration:     5,
					ValidFitting: true,
					R2:           0.99,
					R2Trendline:  0.97,
					R2Cyclic:     models.Finite(math.NaN()),
					Parameters:   models.Series{0, 100, 0.08, math.NaN()},
				},
			},
		},
	}
}

func TestNew(t *testing.T) {
	tmpDir := t.TempDir()

	c, err := New(filepath.Join(tmpDir, "cache"), 24, true)
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.True(t, c.Enabled())

	c, err = New("", 0, false)
	require.NoError(t, err)
	assert.False(t, c.Enabled())
}

func TestNewCreatesDirectory(t *testing.T) {
	cacheDir := filepath.Join(t.TempDir(), "nested", "cache", "dir")

	_, err := New(cacheDir, 24, true)
	require.NoError(t, err)

	_, err = os.Stat(cacheDir)
	assert.NoError(t, err)
}

func TestStoreAndLoad(t *testing.T) {
	c, err := New(filepath.Join(t.TempDir(), "cache"), 24, true)
	require.NoError(t, err)

	key := Key("ACME", "operating_income", 0xdeadbeef)
	want := sampleDataSet()
	require.NoError(t, c.Store(key, "settings-hash", want))

	var got models.MetricGrowthDataSet
	require.True(t, c.Load(key, "settings-hash", &got))
	assert.Equal(t, want.Metric, got.Metric)
	require.Len(t, got.Entries, 1)

	entry := got.Entries[0]
	assert.Equal(t, "2024-12-31", entry.Date)
	assert.Equal(t, models.ExponentialCyclicalModel, entry.Model.ModelType)
	assert.True(t, entry.Model.ValidFitting)
	assert.InDelta(t, 0.99, entry.Model.R2, 1e-12)
	assert.InDelta(t, 0.97, entry.Model.R2Trendline, 1e-12)
	assert.Nil(t, entry.Model.R2Cyclic)
	require.Len(t, entry.Model.Parameters, 4)
	assert.True(t, math.IsNaN(entry.Model.Parameters[3]))
}

func TestStoreAndLoadNonFiniteR2(t *testing.T) {
	c, err := New(filepath.Join(t.TempDir(), "cache"), 24, true)
	require.NoError(t, err)

	want := sampleDataSet()
	want.Entries[0].Model.R2 = math.NaN()
	want.Entries[0].Model.R2Trendline = math.Inf(1)
	require.NoError(t, c.Store("key", "hash", want))

	var got models.MetricGrowthDataSet
	require.True(t, c.Load("key", "hash", &got))
	require.Len(t, got.Entries, 1)
	assert.True(t, math.IsNaN(got.Entries[0].Model.R2), "NaN R² must survive a round trip")
	assert.True(t, math.IsNaN(got.Entries[0].Model.R2Trendline), "infinite R² is stored as null and read back as NaN")
}

func TestLoadMissingKey(t *testing.T) {
	c, err := New(filepath.Join(t.TempDir(), "cache"), 24, true)
	require.NoError(t, err)

	var got models.MetricGrowthDataSet
	assert.False(t, c.Load("nonexistent-key", "hash", &got))
}

func TestLoadHashMismatch(t *testing.T) {
	c, err := New(filepath.Join(t.TempDir(), "cache"), 24, true)
	require.NoError(t, err)

	require.NoError(t, c.Store("key", "old-settings", sampleDataSet()))

	var got models.MetricGrowthDataSet
	assert.False(t, c.Load("key", "new-settings", &got))
	assert.True(t, c.Load("key", "old-settings", &got))
}

func TestLoadCorruptEntry(t *testing.T) {
	c, err := New(filepath.Join(t.TempDir(), "cache"), 24, true)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(c.keyPath("key"), []byte("{not json"), 0600))

	var got models.MetricGrowthDataSet
	assert.False(t, c.Load("key", "hash", &got))
}

func TestExpiredEntryIsRemoved(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "cache")
	require.NoError(t, os.MkdirAll(dir, 0755))
	c := &Cache{dir: dir, ttl: -time.Second, enabled: true}

	require.NoError(t, c.Store("key", "hash", sampleDataSet()))

	var got models.MetricGrowthDataSet
	assert.False(t, c.Load("key", "hash", &got))

	_, err := os.Stat(c.keyPath("key"))
	assert.True(t, os.IsNotExist(err))
}

func TestDisabledCache(t *testing.T) {
	c, err := New("", 24, false)
	require.NoError(t, err)

	assert.NoError(t, c.Store("key", "hash", sampleDataSet()))

	var got models.MetricGrowthDataSet
	assert.False(t, c.Load("key", "hash", &got))
	assert.NoError(t, c.Clear())

	stats, err := c.GetStats()
	require.NoError(t, err)
	assert.Zero(t, stats.Entries)
}

func TestClear(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "cache")
	c, err := New(dir, 24, true)
	require.NoError(t, err)

	require.NoError(t, c.Store("key1", "hash", sampleDataSet()))
	require.NoError(t, c.Store("key2", "hash", sampleDataSet()))
	require.NoError(t, c.Clear())

	_, err = os.Stat(dir)
	assert.True(t, os.IsNotExist(err))
}

func TestKey(t *testing.T) {
	a := Key("ACME", "operating_income", 1)
	b := Key("ACME", "operating_income", 2)
	c := Key("ACME", "total_revenue", 1)

	assert.NotEqual(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Equal(t, a, Key("ACME", "operating_income", 1))
	assert.Equal(t, "ACME|operating_income|0000000000000001", a)
}

func TestHashBytes(t *testing.T) {
	h1 := HashBytes([]byte("hello"))
	h2 := HashBytes([]byte("hello"))
	h3 := HashBytes([]byte("world"))

	assert.Equal(t, h1, h2)
	assert.NotEqual(t, h1, h3)
	assert.Len(t, h1, 64)
}

func TestHashValue(t *testing.T) {
	s := models.DefaultEmpiricalGrowthSettings()
	h1, err := HashValue(s)
	require.NoError(t, err)

	s.GrowthIntervalInYears = 7
	h2, err := HashValue(s)
	require.NoError(t, err)
	assert.NotEqual(t, h1, h2)

	_, err = HashValue(make(chan int))
	assert.Error(t, err)
}

func TestGetStats(t *testing.T) {
	c, err := New(filepath.Join(t.TempDir(), "cache"), 24, true)
	require.NoError(t, err)

	stats, err := c.GetStats()
	require.NoError(t, err)
	assert.Zero(t, stats.Entries)

	require.NoError(t, c.Store("key1", "hash", sampleDataSet()))
	require.NoError(t, c.Store("key2", "hash", sampleDataSet()))

	stats, err = c.GetStats()
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Entries)
	assert.Positive(t, stats.TotalSize)
}

func TestKeyPath(t *testing.T) {
	c, err := New(filepath.Join(t.TempDir(), "cache"), 24, true)
	require.NoError(t, err)

	path1 := c.keyPath("key1")
	path2 := c.keyPath("key2")

	assert.NotEqual(t, path1, path2)
	assert.Equal(t, path1, c.keyPath("key1"))
	assert.Equal(t, ".json", filepath.Ext(path1))
	assert.Equal(t, c.dir, filepath.Dir(path1))

	special := c.keyPath("ACME|financials/income_statement|00ff")
	assert.Equal(t, c.dir, filepath.Dir(special))
}
