package tests

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mostovoy/agency-directory/app/dto"
	businessflow "github.com/mostovoy/agency-directory/business_flow"
	"github.com/mostovoy/agency-directory/cache"
	"github.com/mostovoy/agency-directory/models"
	"github.com/mostovoy/agency-directory/repository"
	testingutil "github.com/mostovoy/agency-directory/testing"
	"github.com/mostovoy/agency-directory/utils"
)

// testRedis connects to the test Redis instance or skips the test when it is
// not reachable.
func testRedis(t *testing.T) *redis.Client {
	t.Helper()

	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}

	rc := redis.NewClient(&redis.Options{Addr: addr})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := rc.Ping(ctx).Err(); err != nil {
		t.Skipf("redis not available at %s: %v", addr, err)
	}

	return rc
}

func uniquePrefix() string {
	return fmt.Sprintf("directory_test_%d", time.Now().UnixNano())
}

func TestTaggedCache(t *testing.T) {
	rc := testRedis(t)
	defer rc.Close()

	c := cache.New(rc, uniquePrefix())
	ctx := context.Background()

	t.Run("MissThenHit", func(t *testing.T) {
		var out []string
		hit, err := c.Get(ctx, "numbers", &out)
		require.NoError(t, err)
		assert.False(t, hit)

		require.NoError(t, c.Set(ctx, "numbers", []string{"one", "two"}, "letters"))

		hit, err = c.Get(ctx, "numbers", &out)
		require.NoError(t, err)
		assert.True(t, hit)
		assert.Equal(t, []string{"one", "two"}, out)
	})

	t.Run("TagInvalidationClearsAllMembers", func(t *testing.T) {
		require.NoError(t, c.Set(ctx, "first", "a", "shared"))
		require.NoError(t, c.Set(ctx, "second", "b", "shared"))
		require.NoError(t, c.Set(ctx, "third", "c", "other"))

		require.NoError(t, c.InvalidateTag(ctx, "shared"))

		var out string
		hit, err := c.Get(ctx, "first", &out)
		require.NoError(t, err)
		assert.False(t, hit)
		hit, err = c.Get(ctx, "second", &out)
		require.NoError(t, err)
		assert.False(t, hit)

		// Entries under other tags survive.
		hit, err = c.Get(ctx, "third", &out)
		require.NoError(t, err)
		assert.True(t, hit)
		assert.Equal(t, "c", out)
	})

	t.Run("InvalidatingMissingTagIsNoOp", func(t *testing.T) {
		assert.NoError(t, c.InvalidateTag(ctx, "never-written"))
	})

	t.Run("CorruptEntryReadsAsMiss", func(t *testing.T) {
		require.NoError(t, c.Set(ctx, "typed", []int{1, 2, 3}))

		// Read it back into an incompatible shape.
		var out map[string]string
		hit, err := c.Get(ctx, "typed", &out)
		require.NoError(t, err)
		assert.False(t, hit)
	})
}

func TestDirectoryFlowReadThrough(t *testing.T) {
	rc := testRedis(t)
	defer rc.Close()

	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)
		agencyRepo := repository.NewAgencyRepository(testDB.DB)
		taggedCache := cache.New(rc, uniquePrefix())
		ctx := testingutil.CreateTestContext()

		directoryFlow := businessflow.NewDirectoryFlow(agencyRepo, taggedCache)
		adminFlow := businessflow.NewAgencyAdminFlow(agencyRepo, taggedCache, testDB.DB)

		_, err := fixtures.CreateTestAgency("Beta House")
		require.NoError(t, err)
		_, err = fixtures.CreateTestAgency("Alpha Rooms")
		require.NoError(t, err)
		_, err = fixtures.CreateTestAgency("Shadow", testingutil.WithVisible(false))
		require.NoError(t, err)

		t.Run("ListIsVisibleOnlyAndSorted", func(t *testing.T) {
			agencies, err := directoryFlow.ListVisibleSortedByName(ctx)
			require.NoError(t, err)
			require.Len(t, agencies, 2)
			assert.Equal(t, "Alpha Rooms", agencies[0].Name)
			assert.Equal(t, "Beta House", agencies[1].Name)
		})

		t.Run("SecondReadComesFromCache", func(t *testing.T) {
			// Write around the flow; a cached read must not see it yet.
			_, err := fixtures.CreateTestAgency("Aardvark Palace")
			require.NoError(t, err)

			agencies, err := directoryFlow.ListVisibleSortedByName(ctx)
			require.NoError(t, err)
			assert.Len(t, agencies, 2)
		})

		t.Run("AdminWriteInvalidatesCache", func(t *testing.T) {
			_, err := adminFlow.CreateAgency(ctx, &dto.CreateAgencyRequest{
				Name:    "Citrus Villa",
				Visible: utils.ToPtr(true),
			})
			require.NoError(t, err)

			agencies, err := directoryFlow.ListVisibleSortedByName(ctx)
			require.NoError(t, err)
			// The direct write from the previous subtest becomes visible too.
			assert.Len(t, agencies, 4)
			assert.Equal(t, "Aardvark Palace", agencies[0].Name)
		})

		t.Run("IDNameMapSharesTheTag", func(t *testing.T) {
			pairs, err := directoryFlow.VisibleIDNameMap(ctx)
			require.NoError(t, err)
			require.Len(t, pairs, 4)
			assert.Equal(t, "Aardvark Palace", pairs[0].Name)

			// Deleting an agency clears both cached projections.
			var villa models.Agency
			require.NoError(t, testDB.DB.Where("name = ?", "Citrus Villa").First(&villa).Error)
			require.NoError(t, adminFlow.DeleteAgency(ctx, villa.ID))

			pairs, err = directoryFlow.VisibleIDNameMap(ctx)
			require.NoError(t, err)
			assert.Len(t, pairs, 3)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestDirectoryFlowWithoutCache(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)
		agencyRepo := repository.NewAgencyRepository(testDB.DB)
		ctx := testingutil.CreateTestContext()

		// A nil cache degrades to plain storage reads.
		directoryFlow := businessflow.NewDirectoryFlow(agencyRepo, nil)

		_, err := fixtures.CreateTestAgency("Solo Act")
		require.NoError(t, err)

		agencies, err := directoryFlow.ListVisibleSortedByName(ctx)
		require.NoError(t, err)
		require.Len(t, agencies, 1)
		assert.Equal(t, "Solo Act", agencies[0].Name)

		return nil
	})
	require.NoError(t, err)
}
