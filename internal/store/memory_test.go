package store

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/solar-farm-simulator/internal/solar"
)

var t0 = time.Date(2025, time.June, 1, 12, 0, 0, 0, time.UTC)

func snap(site string, offset time.Duration, power float64) solar.Snapshot {
	return solar.Snapshot{
		SiteID:        site,
		Timestamp:     t0.Add(offset),
		Mode:          solar.ModeReplay,
		PowerWatts:    power,
		IrradianceWm2: power,
		PanelTempC:    power,
		InverterOK:    1,
	}
}

func TestMemoryStoreLatest(t *testing.T) {
	s := NewMemoryStore(10, time.Hour)

	_, err := s.GetLatest("provence")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Empty(t, s.Latest())

	s.SaveSnapshot(snap("provence", 0, 1))
	s.SaveSnapshot(snap("provence", 2*time.Second, 2))
	s.SaveSnapshot(snap("aquitaine", 2*time.Second, 3))

	got, err := s.GetLatest("provence")
	require.NoError(t, err)
	assert.Equal(t, 2.0, got.PowerWatts)

	latest := s.Latest()
	require.Len(t, latest, 2)
	assert.Equal(t, "aquitaine", latest[0].SiteID)
	assert.Equal(t, "provence", latest[1].SiteID)
}

func TestMemoryStoreRetentionByCount(t *testing.T) {
	s := NewMemoryStore(3, 0)
	for i := 0; i < 5; i++ {
		s.SaveSnapshot(snap("provence", time.Duration(i)*time.Second, float64(i)))
	}

	all, err := s.GetRange("provence", t0, t0.Add(time.Minute))
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, 2.0, all[0].PowerWatts)
	assert.Equal(t, 4.0, all[2].PowerWatts)
}

func TestMemoryStoreRetentionByAge(t *testing.T) {
	s := NewMemoryStore(0, time.Minute)
	s.SaveSnapshot(snap("provence", 0, 1))
	s.SaveSnapshot(snap("provence", 30*time.Second, 2))
	s.SaveSnapshot(snap("provence", 90*time.Second, 3))

	all, err := s.GetRange("provence", t0, t0.Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, 2.0, all[0].PowerWatts)

	// The newest snapshot survives even if older than maxAge relative to others.
	s.SaveSnapshot(snap("provence", 10*time.Minute, 4))
	got, err := s.GetLatest("provence")
	require.NoError(t, err)
	assert.Equal(t, 4.0, got.PowerWatts)
}

func TestMemoryStoreGetRange(t *testing.T) {
	s := NewMemoryStore(0, 0)
	for i := 0; i < 5; i++ {
		s.SaveSnapshot(snap("provence", time.Duration(i)*time.Minute, float64(i)))
	}

	got, err := s.GetRange("provence", t0.Add(time.Minute), t0.Add(3*time.Minute))
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, 1.0, got[0].PowerWatts)
	assert.Equal(t, 3.0, got[2].PowerWatts)

	_, err = s.GetRange("provence", t0.Add(time.Hour), t0.Add(2*time.Hour))
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.GetRange("occitanie", t0, t0.Add(time.Hour))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreSnapshotsAreNeverTorn(t *testing.T) {
	s := NewMemoryStore(5, 0)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			s.SaveSnapshot(snap("provence", time.Duration(i)*time.Second, float64(i)))
		}
	}()

	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 1000; i++ {
				for _, got := range s.Latest() {
					assert.Equal(t, got.PowerWatts, got.IrradianceWm2)
					assert.Equal(t, got.PowerWatts, got.PanelTempC)
				}
			}
		}()
	}
	wg.Wait()
}
