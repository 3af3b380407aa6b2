package service_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/opdexport/quotation-api/internal/repository"
	"github.com/opdexport/quotation-api/internal/service"
	"github.com/opdexport/quotation-api/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupNumberServiceTestDB(t *testing.T) *gorm.DB {
	db := testutil.SetupTestDB(t)
	t.Cleanup(func() {
		testutil.CleanupTestData(t, db)
	})
	return db
}

func createNumberService(db *gorm.DB) *service.DocumentNumberService {
	repo := repository.NewDocumentSequenceRepository(db)
	return service.NewDocumentNumberService(repo, zap.NewNop())
}

func pinnedNow() time.Time {
	return time.Date(2026, 8, 28, 15, 30, 0, 0, time.UTC)
}

func TestDocumentNumberService_Format(t *testing.T) {
	db := setupNumberServiceTestDB(t)
	svc := createNumberService(db).WithNow(pinnedNow)
	ctx := context.Background()

	number, err := svc.NextNumber(ctx)
	require.NoError(t, err)
	assert.Equal(t, "OPDEXPORT20260828001", number)
	assert.True(t, svc.ValidateNumber(number))
}

func TestDocumentNumberService_Sequential(t *testing.T) {
	db := setupNumberServiceTestDB(t)
	svc := createNumberService(db).WithNow(pinnedNow)
	ctx := context.Background()

	for i := 1; i <= 5; i++ {
		number, err := svc.NextNumber(ctx)
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("OPDEXPORT20260828%03d", i), number)
	}

	seq, err := svc.CurrentSequence(ctx, "20260828")
	require.NoError(t, err)
	assert.Equal(t, 5, seq)
}

func TestDocumentNumberService_CounterIsPerDay(t *testing.T) {
	db := setupNumberServiceTestDB(t)
	ctx := context.Background()

	dayOne := createNumberService(db).WithNow(func() time.Time {
		return time.Date(2026, 8, 28, 23, 59, 0, 0, time.UTC)
	})
	dayTwo := createNumberService(db).WithNow(func() time.Time {
		return time.Date(2026, 8, 29, 0, 1, 0, 0, time.UTC)
	})

	first, err := dayOne.NextNumber(ctx)
	require.NoError(t, err)
	assert.Equal(t, "OPDEXPORT20260828001", first)

	// A new day starts a fresh counter
	second, err := dayTwo.NextNumber(ctx)
	require.NoError(t, err)
	assert.Equal(t, "OPDEXPORT20260829001", second)
}

func TestDocumentNumberService_DayFollowsUTC(t *testing.T) {
	db := setupNumberServiceTestDB(t)
	ctx := context.Background()

	// 22:00 in Sao Paulo (UTC-3) is already 01:00 the next day in UTC
	saoPaulo := time.FixedZone("America/Sao_Paulo", -3*60*60)
	svc := createNumberService(db).WithNow(func() time.Time {
		return time.Date(2026, 8, 28, 22, 0, 0, 0, saoPaulo)
	})

	number, err := svc.NextNumber(ctx)
	require.NoError(t, err)
	assert.Equal(t, "OPDEXPORT20260829001", number)
}

func TestDocumentNumberService_ConcurrentAllocationsAreDistinct(t *testing.T) {
	db := setupNumberServiceTestDB(t)
	svc := createNumberService(db).WithNow(pinnedNow)
	ctx := context.Background()

	const workers = 20

	var wg sync.WaitGroup
	numbers := make(chan string, workers)
	errs := make(chan error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			number, err := svc.NextNumber(ctx)
			if err != nil {
				errs <- err
				return
			}
			numbers <- number
		}()
	}
	wg.Wait()
	close(numbers)
	close(errs)

	for err := range errs {
		t.Fatalf("allocation failed: %v", err)
	}

	seen := make(map[string]bool)
	for number := range numbers {
		assert.False(t, seen[number], "duplicate number %s", number)
		seen[number] = true
	}
	assert.Len(t, seen, workers)

	seq, err := svc.CurrentSequence(ctx, "20260828")
	require.NoError(t, err)
	assert.Equal(t, workers, seq)
}

func TestDocumentNumberService_InitializeSequence(t *testing.T) {
	db := setupNumberServiceTestDB(t)
	svc := createNumberService(db).WithNow(pinnedNow)
	ctx := context.Background()

	require.NoError(t, svc.InitializeSequence(ctx, "20260828", 100))

	number, err := svc.NextNumber(ctx)
	require.NoError(t, err)
	assert.Equal(t, "OPDEXPORT20260828101", number)

	// The counter only moves forward
	require.NoError(t, svc.InitializeSequence(ctx, "20260828", 10))
	seq, err := svc.CurrentSequence(ctx, "20260828")
	require.NoError(t, err)
	assert.Equal(t, 101, seq)
}

func TestDocumentNumberService_ValidateNumber(t *testing.T) {
	svc := createNumberService(nil)

	tests := []struct {
		number string
		valid  bool
	}{
		{"OPDEXPORT20260828001", true},
		{"OPDEXPORT20260828999", true},
		{"OPDEXPORT2026082801", false},
		{"OPDEXPORT202608280001", false},
		{"OPD20260828001", false},
		{"opdexport20260828001", false},
		{"", false},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.valid, svc.ValidateNumber(tc.number), "number %q", tc.number)
	}
}
