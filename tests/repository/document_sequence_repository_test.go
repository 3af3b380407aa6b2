package repository_test

import (
	"context"
	"sync"
	"testing"

	"github.com/opdexport/quotation-api/internal/repository"
	"github.com/opdexport/quotation-api/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupSequenceRepoTestDB(t *testing.T) *gorm.DB {
	db := testutil.SetupTestDB(t)
	t.Cleanup(func() {
		testutil.CleanupTestData(t, db)
	})
	return db
}

func TestDocumentSequenceRepository_NextForDay(t *testing.T) {
	db := setupSequenceRepoTestDB(t)
	repo := repository.NewDocumentSequenceRepository(db)
	ctx := context.Background()

	for want := 1; want <= 3; want++ {
		got, err := repo.NextForDay(ctx, "20260901")
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	// Other days have their own counter
	got, err := repo.NextForDay(ctx, "20260902")
	require.NoError(t, err)
	assert.Equal(t, 1, got)
}

// A day with no counter row yet has nothing to lock, so concurrent first
// allocations race to insert it. Every caller must still get a distinct
// value; the losers of the insert race retry instead of failing.
func TestDocumentSequenceRepository_FirstAllocationBurst(t *testing.T) {
	db := setupSequenceRepoTestDB(t)
	repo := repository.NewDocumentSequenceRepository(db)
	ctx := context.Background()

	const workers = 25

	var wg sync.WaitGroup
	results := make(chan int, workers)
	errs := make(chan error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			seq, err := repo.NextForDay(ctx, "20260903")
			if err != nil {
				errs <- err
				return
			}
			results <- seq
		}()
	}
	wg.Wait()
	close(results)
	close(errs)

	for err := range errs {
		t.Fatalf("allocation failed: %v", err)
	}

	seen := make(map[int]bool)
	for seq := range results {
		assert.False(t, seen[seq], "duplicate sequence %d", seq)
		seen[seq] = true
	}
	assert.Len(t, seen, workers)

	current, err := repo.CurrentForDay(ctx, "20260903")
	require.NoError(t, err)
	assert.Equal(t, workers, current)
}

func TestDocumentSequenceRepository_CurrentForDayEmpty(t *testing.T) {
	db := setupSequenceRepoTestDB(t)
	repo := repository.NewDocumentSequenceRepository(db)

	current, err := repo.CurrentForDay(context.Background(), "20260904")
	require.NoError(t, err)
	assert.Equal(t, 0, current)
}

func TestDocumentSequenceRepository_SetForDayOnlyMovesForward(t *testing.T) {
	db := setupSequenceRepoTestDB(t)
	repo := repository.NewDocumentSequenceRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.SetForDay(ctx, "20260905", 50))

	next, err := repo.NextForDay(ctx, "20260905")
	require.NoError(t, err)
	assert.Equal(t, 51, next)

	require.NoError(t, repo.SetForDay(ctx, "20260905", 10))
	current, err := repo.CurrentForDay(ctx, "20260905")
	require.NoError(t, err)
	assert.Equal(t, 51, current)
}
