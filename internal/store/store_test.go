package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *RunStore {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestCreateAndGetRun(t *testing.T) {
	s := openTestStore(t)

	id, err := s.CreateRun("B3/S45678", 1, "population_size: 1000\n")
	require.NoError(t, err)
	require.NotEmpty(t, id)

	r, err := s.GetRun(id)
	require.NoError(t, err)
	assert.Equal(t, "B3/S45678", r.Rule)
	assert.Equal(t, 1, r.Target)
	assert.Equal(t, StatusRunning, r.Status)
	assert.Contains(t, r.Settings, "population_size")
}

func TestGetRun_NotFound(t *testing.T) {
	s := openTestStore(t)
	_, err := s.GetRun("nope")
	assert.Error(t, err)
}

func TestProgressAndFinish(t *testing.T) {
	s := openTestStore(t)
	id, err := s.CreateRun("Immigration", 3, "")
	require.NoError(t, err)

	require.NoError(t, s.RecordProgress(id, 1000, 120, 40.5))
	require.NoError(t, s.RecordProgress(id, 2000, 250, 90.0))
	require.NoError(t, s.FinishRun(id, StatusFinished, 250))

	rows, err := s.Progress(id)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, 1000, rows[0].Birth)
	assert.Equal(t, 250, rows[1].Best)

	r, err := s.GetRun(id)
	require.NoError(t, err)
	assert.Equal(t, StatusFinished, r.Status)
	assert.Equal(t, 250, r.BestFitness)
}

func TestFinishRun_UnknownRun(t *testing.T) {
	s := openTestStore(t)
	assert.Error(t, s.FinishRun("missing", StatusFinished, 0))
}

func TestChampion_UpsertAndGet(t *testing.T) {
	s := openTestStore(t)
	id, err := s.CreateRun("B3/S23", 2, "")
	require.NoError(t, err)

	c := Champion{RunID: id, Fitness: 100, SeedRLE: "x = 1, y = 1\no!\n", AdultRLE: "x = 1, y = 1\nb!\n"}
	require.NoError(t, s.SaveChampion(c))

	// Upsert replaces the previous champion.
	c.Fitness = 180
	require.NoError(t, s.SaveChampion(c))

	got, err := s.GetChampion(id)
	require.NoError(t, err)
	assert.Equal(t, 180, got.Fitness)
	assert.Contains(t, got.SeedRLE, "o!")
}

func TestGetChampion_Missing(t *testing.T) {
	s := openTestStore(t)
	id, err := s.CreateRun("B3/S23", 1, "")
	require.NoError(t, err)
	_, err = s.GetChampion(id)
	assert.Error(t, err)
}

func TestListRuns_NewestFirst(t *testing.T) {
	s := openTestStore(t)
	_, err := s.CreateRun("B3/S23", 1, "")
	require.NoError(t, err)
	_, err = s.CreateRun("B36/S23", 2, "")
	require.NoError(t, err)

	runs, err := s.ListRuns()
	require.NoError(t, err)
	require.Len(t, runs, 2)
}

func TestReopen_KeepsData(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "runs.db")

	s, err := Open(path)
	require.NoError(t, err)
	id, err := s.CreateRun("B3/S45678", 4, "")
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s2, err := Open(path)
	require.NoError(t, err)
	defer s2.Close()
	r, err := s2.GetRun(id)
	require.NoError(t, err)
	assert.Equal(t, 4, r.Target)
}
