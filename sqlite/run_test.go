package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/clinscrape/clinscrape"
	"github.com/clinscrape/clinscrape/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mustOpenDB returns an open in-memory database, closed on test cleanup.
func mustOpenDB(t *testing.T) *sqlite.DB {
	t.Helper()
	db := sqlite.NewDB(":memory:")
	require.NoError(t, db.Open())
	t.Cleanup(func() { db.Close() })
	return db
}

func storedProducts() []*clinscrape.Product {
	price := 690000
	return []*clinscrape.Product{
		{
			ClinicName: "Xenia Clinic",
			Name:       "울쎄라 300샷",
			EventPrice: &price,
			Treatments: []*clinscrape.Treatment{
				{Name: "울쎄라", Type: clinscrape.TreatmentDevice},
				{Name: "진정 관리", Type: clinscrape.TreatmentSkincare},
			},
		},
		{
			ClinicName: "Xenia Clinic",
			Name:       "보톡스 턱",
			Treatments: []*clinscrape.Treatment{
				{Name: "보톡스", Type: clinscrape.TreatmentInjection},
			},
		},
	}
}

func TestRunService_CreateRun(t *testing.T) {
	t.Parallel()

	s := sqlite.NewRunService(mustOpenDB(t))
	ctx := context.Background()

	run := &clinscrape.Run{
		TargetKey: "xenia",
		SiteName:  "Xenia Clinic",
		Provider:  "gemini",
		Model:     "gemini-2.5-flash",
		Pages:     7,
		Failed:    1,
		Duration:  42 * time.Second,
	}
	require.NoError(t, s.CreateRun(ctx, run, storedProducts()))

	assert.NotEmpty(t, run.ID)
	assert.Equal(t, 2, run.Products)
	assert.Equal(t, 3, run.Treatments)
	assert.False(t, run.StartedAt.IsZero())
}

func TestRunService_CreateRun_Invalid(t *testing.T) {
	t.Parallel()

	s := sqlite.NewRunService(mustOpenDB(t))
	err := s.CreateRun(context.Background(), &clinscrape.Run{}, nil)
	assert.Equal(t, clinscrape.EINVALID, clinscrape.ErrorCode(err))
}

func TestRunService_FindRuns(t *testing.T) {
	t.Parallel()

	s := sqlite.NewRunService(mustOpenDB(t))
	ctx := context.Background()

	for _, key := range []string{"xenia", "ppeum", "xenia"} {
		require.NoError(t, s.CreateRun(ctx, &clinscrape.Run{
			TargetKey: key,
			SiteName:  key,
		}, nil))
	}

	t.Run("all", func(t *testing.T) {
		runs, err := s.FindRuns(ctx, clinscrape.RunFilter{})
		require.NoError(t, err)
		assert.Len(t, runs, 3)
	})

	t.Run("by target", func(t *testing.T) {
		key := "xenia"
		runs, err := s.FindRuns(ctx, clinscrape.RunFilter{TargetKey: &key})
		require.NoError(t, err)
		assert.Len(t, runs, 2)
	})

	t.Run("limit", func(t *testing.T) {
		runs, err := s.FindRuns(ctx, clinscrape.RunFilter{Limit: 1})
		require.NoError(t, err)
		assert.Len(t, runs, 1)
	})
}

func TestRunService_FindProductsByRun(t *testing.T) {
	t.Parallel()

	s := sqlite.NewRunService(mustOpenDB(t))
	ctx := context.Background()

	run := &clinscrape.Run{TargetKey: "xenia", SiteName: "Xenia Clinic"}
	require.NoError(t, s.CreateRun(ctx, run, storedProducts()))

	products, err := s.FindProductsByRun(ctx, run.ID)
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "울쎄라 300샷", products[0].Name)
	require.NotNil(t, products[0].EventPrice)
	assert.Equal(t, 690000, *products[0].EventPrice)
	assert.Len(t, products[0].Treatments, 2)
	assert.Nil(t, products[1].EventPrice)
}

func TestRunService_FindProductsByRun_NotFound(t *testing.T) {
	t.Parallel()

	s := sqlite.NewRunService(mustOpenDB(t))
	_, err := s.FindProductsByRun(context.Background(), "no-such-run")
	assert.Equal(t, clinscrape.ENOTFOUND, clinscrape.ErrorCode(err))
}

func TestRunService_EmptyRunHasNoProducts(t *testing.T) {
	t.Parallel()

	s := sqlite.NewRunService(mustOpenDB(t))
	ctx := context.Background()

	run := &clinscrape.Run{TargetKey: "xenia", SiteName: "Xenia Clinic"}
	require.NoError(t, s.CreateRun(ctx, run, nil))

	products, err := s.FindProductsByRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Empty(t, products)
}
