package tests

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mostovoy/agency-directory/models"
	"github.com/mostovoy/agency-directory/repository"
	testingutil "github.com/mostovoy/agency-directory/testing"
	"github.com/mostovoy/agency-directory/utils"
)

func TestAgencySearch(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)
		agencyRepo := repository.NewAgencyRepository(testDB.DB)
		ctx := testingutil.CreateTestContext()

		country, err := fixtures.CreateTestCountry("de", "Germany", true)
		require.NoError(t, err)
		city, err := fixtures.CreateTestCity("Berlin", country.ID, true)
		require.NoError(t, err)

		// Listed: visible with an eligible profile.
		listed, err := fixtures.CreateTestAgency("Amber Rooms", testingutil.WithWebVerified(true))
		require.NoError(t, err)
		_, err = fixtures.CreateTestProfile(&listed.ID, &city.ID)
		require.NoError(t, err)

		// Hidden: has a profile but is not visible.
		hidden, err := fixtures.CreateTestAgency("Hidden House", testingutil.WithVisible(false))
		require.NoError(t, err)
		_, err = fixtures.CreateTestProfile(&hidden.ID, &city.ID)
		require.NoError(t, err)

		// Profileless: visible but has no eligible profile.
		profileless, err := fixtures.CreateTestAgency("Brand New")
		require.NoError(t, err)
		_, err = fixtures.CreateBrokenTestProfile(&profileless.ID, &city.ID)
		require.NoError(t, err)

		t.Run("BasePredicateFiltersHiddenAndProfileless", func(t *testing.T) {
			result, err := agencyRepo.Search(ctx, models.AgencySearchParams{}, 10, 1)
			require.NoError(t, err)
			require.Equal(t, int64(1), result.Total)
			require.Len(t, result.Agencies, 1)
			assert.Equal(t, listed.ID, result.Agencies[0].ID)
		})

		t.Run("InvalidPageSize", func(t *testing.T) {
			_, err := agencyRepo.Search(ctx, models.AgencySearchParams{}, 0, 1)
			require.ErrorIs(t, err, models.ErrInvalidPageSize)
		})

		t.Run("NameContainsIsCaseInsensitive", func(t *testing.T) {
			result, err := agencyRepo.Search(ctx, models.AgencySearchParams{
				AgencyName: utils.ToPtr("amber"),
			}, 10, 1)
			require.NoError(t, err)
			require.Len(t, result.Agencies, 1)
			assert.Equal(t, "Amber Rooms", result.Agencies[0].Name)
		})

		t.Run("PromoToggleExcludesGivenState", func(t *testing.T) {
			promo, err := fixtures.CreateTestAgency("Promoted Place", testingutil.WithIsPromo(true))
			require.NoError(t, err)
			_, err = fixtures.CreateTestProfile(&promo.ID, &city.ID)
			require.NoError(t, err)

			// is_promo=true excludes the promoted agency, not selects it.
			result, err := agencyRepo.Search(ctx, models.AgencySearchParams{
				IsPromo: utils.ToPtr(true),
			}, 10, 1)
			require.NoError(t, err)
			for _, a := range result.Agencies {
				assert.False(t, utils.IsTrue(a.IsPromo))
			}

			result, err = agencyRepo.Search(ctx, models.AgencySearchParams{
				IsPromo: utils.ToPtr(false),
			}, 10, 1)
			require.NoError(t, err)
			require.Len(t, result.Agencies, 1)
			assert.Equal(t, promo.ID, result.Agencies[0].ID)

			promoted, err := agencyRepo.ListByPromotion(ctx, true)
			require.NoError(t, err)
			require.Len(t, promoted, 1)
			assert.Equal(t, promo.ID, promoted[0].ID)
		})

		t.Run("LocationJoinDoesNotFanOutTotals", func(t *testing.T) {
			second, err := fixtures.CreateTestCity("Hamburg", country.ID, true)
			require.NoError(t, err)

			multi, err := fixtures.CreateTestAgency("Multi City")
			require.NoError(t, err)
			_, err = fixtures.CreateTestProfile(&multi.ID, &city.ID)
			require.NoError(t, err)
			_, err = fixtures.CreateTestProfile(&multi.ID, &second.ID)
			require.NoError(t, err)

			require.NoError(t, testDB.DB.Create(&models.AgencyCity{AgencyID: multi.ID, CityID: city.ID}).Error)
			require.NoError(t, testDB.DB.Create(&models.AgencyCity{AgencyID: multi.ID, CityID: second.ID}).Error)

			result, err := agencyRepo.Search(ctx, models.AgencySearchParams{
				Country: utils.ToPtr("de"),
			}, 10, 1)
			require.NoError(t, err)

			// One agency with two city links must still count once.
			seen := map[uint]int{}
			for _, a := range result.Agencies {
				seen[a.ID]++
			}
			assert.Equal(t, 1, seen[multi.ID])
		})

		t.Run("Pagination", func(t *testing.T) {
			for _, table := range []string{"agency_cities", "profile_views", "profiles", "agencies"} {
				require.NoError(t, testDB.DB.Exec("DELETE FROM "+table).Error)
			}

			names := []string{"Alpha", "Bravo", "Charlie", "Delta", "Echo", "Foxtrot", "Golf"}
			for _, name := range names {
				a, err := fixtures.CreateTestAgency(name)
				require.NoError(t, err)
				_, err = fixtures.CreateTestProfile(&a.ID, &city.ID)
				require.NoError(t, err)
			}

			first, err := agencyRepo.Search(ctx, models.AgencySearchParams{Sort: utils.SortByName}, 5, 1)
			require.NoError(t, err)
			assert.Equal(t, int64(7), first.Total)
			require.Len(t, first.Agencies, 5)
			assert.Equal(t, "Alpha", first.Agencies[0].Name)
			assert.Equal(t, "Echo", first.Agencies[4].Name)

			second, err := agencyRepo.Search(ctx, models.AgencySearchParams{Sort: utils.SortByName}, 5, 2)
			require.NoError(t, err)
			require.Len(t, second.Agencies, 2)
			assert.Equal(t, "Foxtrot", second.Agencies[0].Name)
			assert.Equal(t, "Golf", second.Agencies[1].Name)

			last, err := models.IsLastPage(first.Total, 5, 2)
			require.NoError(t, err)
			assert.True(t, last)
		})

		t.Run("PopularOrderingUsesViewCounts", func(t *testing.T) {
			var quiet, busy models.Agency
			require.NoError(t, testDB.DB.Where("name = ?", "Alpha").First(&quiet).Error)
			require.NoError(t, testDB.DB.Where("name = ?", "Golf").First(&busy).Error)

			require.NoError(t, fixtures.CreateTestProfileViews(busy.ID, 5))
			require.NoError(t, fixtures.CreateTestProfileViews(quiet.ID, 1))

			result, err := agencyRepo.Search(ctx, models.AgencySearchParams{Sort: utils.SortByPopular}, 10, 1)
			require.NoError(t, err)
			require.NotEmpty(t, result.Agencies)
			assert.Equal(t, busy.ID, result.Agencies[0].ID)
			assert.Equal(t, int64(5), result.Agencies[0].ViewsCount)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestAgencyLookups(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)
		agencyRepo := repository.NewAgencyRepository(testDB.DB)
		ctx := testingutil.CreateTestContext()

		agency, err := fixtures.CreateTestAgency("Velvet Rose",
			testingutil.WithWebsite("https://www.velvetrose.example.com/home"))
		require.NoError(t, err)

		t.Run("ActiveByNameFoldsDashes", func(t *testing.T) {
			found, err := agencyRepo.ActiveByName(ctx, "velvet-rose")
			require.NoError(t, err)
			require.NotNil(t, found)
			assert.Equal(t, agency.ID, found.ID)

			missing, err := agencyRepo.ActiveByName(ctx, "no-such-agency")
			require.NoError(t, err)
			assert.Nil(t, missing)
		})

		t.Run("ByWebsiteExact", func(t *testing.T) {
			found, err := agencyRepo.ByWebsite(ctx, "https://www.velvetrose.example.com/home")
			require.NoError(t, err)
			require.NotNil(t, found)
			assert.Equal(t, agency.ID, found.ID)

			missing, err := agencyRepo.ByWebsite(ctx, "https://nope.example.com")
			require.NoError(t, err)
			assert.Nil(t, missing)

			fragment, err := agencyRepo.ByWebsiteContains(ctx, "velvetrose")
			require.NoError(t, err)
			require.NotNil(t, fragment)
			assert.Equal(t, agency.ID, fragment.ID)
		})

		t.Run("ByWebsiteDisregardHost", func(t *testing.T) {
			found, err := agencyRepo.ByWebsiteDisregardHost(ctx, "http://www.velvetrose.example.com/")
			require.NoError(t, err)
			require.NotNil(t, found)
			assert.Equal(t, agency.ID, found.ID)

			found, err = agencyRepo.ByWebsiteDisregardHost(ctx, "velvetrose.example.com")
			require.NoError(t, err)
			require.NotNil(t, found)
			assert.Equal(t, agency.ID, found.ID)

			missing, err := agencyRepo.ByWebsiteDisregardHost(ctx, "unknown-site.example.org")
			require.NoError(t, err)
			assert.Nil(t, missing)

			// A key that strips to nothing resolves to nothing.
			empty, err := agencyRepo.ByWebsiteDisregardHost(ctx, "https://www./")
			require.NoError(t, err)
			assert.Nil(t, empty)
		})

		t.Run("ByNameExcept", func(t *testing.T) {
			dup, err := agencyRepo.ByNameExcept(ctx, "Velvet Rose", agency.ID)
			require.NoError(t, err)
			assert.Nil(t, dup)

			dup, err = agencyRepo.ByNameExcept(ctx, "Velvet Rose", agency.ID+1000)
			require.NoError(t, err)
			require.NotNil(t, dup)
			assert.Equal(t, agency.ID, dup.ID)
		})

		t.Run("ByIDMissingIsNilNil", func(t *testing.T) {
			missing, err := agencyRepo.ByID(ctx, 999999)
			require.NoError(t, err)
			assert.Nil(t, missing)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestAgencyCounts(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)
		agencyRepo := repository.NewAgencyRepository(testDB.DB)
		ctx := testingutil.CreateTestContext()

		_, err := fixtures.CreateTestAgency("Established One")
		require.NoError(t, err)
		_, err = fixtures.CreateTestAgency("Established Two")
		require.NoError(t, err)
		_, err = fixtures.CreateTestAgency("Pending", testingutil.WithApplicant(true), testingutil.WithApproved(false))
		require.NoError(t, err)
		_, err = fixtures.CreateTestAgency("Accepted", testingutil.WithApplicant(true), testingutil.WithApproved(true))
		require.NoError(t, err)

		established, err := agencyRepo.CountNonApplicant(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(2), established)

		pending, err := agencyRepo.CountApplicants(ctx, false)
		require.NoError(t, err)
		assert.Equal(t, int64(1), pending)

		accepted, err := agencyRepo.CountApplicants(ctx, true)
		require.NoError(t, err)
		assert.Equal(t, int64(1), accepted)

		hidden, err := fixtures.CreateTestAgency("Backstage", testingutil.WithVisible(false))
		require.NoError(t, err)
		ids, err := agencyRepo.NotVisibleIDs(ctx)
		require.NoError(t, err)
		assert.Equal(t, []uint{hidden.ID}, ids)

		return nil
	})
	require.NoError(t, err)
}

func TestAgencyDeleteCascade(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)
		agencyRepo := repository.NewAgencyRepository(testDB.DB)
		ctx := testingutil.CreateTestContext()

		country, err := fixtures.CreateTestCountry("de", "Germany", true)
		require.NoError(t, err)
		city, err := fixtures.CreateTestCity("Berlin", country.ID, true)
		require.NoError(t, err)

		agency, err := fixtures.CreateTestAgency("To Remove")
		require.NoError(t, err)
		_, err = fixtures.CreateTestProfile(&agency.ID, &city.ID)
		require.NoError(t, err)
		require.NoError(t, fixtures.CreateTestProfileViews(agency.ID, 3))
		require.NoError(t, testDB.DB.Create(&models.AgencyCity{AgencyID: agency.ID, CityID: city.ID}).Error)

		require.NoError(t, agencyRepo.Delete(ctx, agency.ID))

		var profiles, views, links, agencies int64
		testDB.DB.Model(&models.Profile{}).Where("agency_id = ?", agency.ID).Count(&profiles)
		testDB.DB.Model(&models.ProfileView{}).Where("agency_id = ?", agency.ID).Count(&views)
		testDB.DB.Model(&models.AgencyCity{}).Where("agency_id = ?", agency.ID).Count(&links)
		testDB.DB.Model(&models.Agency{}).Where("id = ?", agency.ID).Count(&agencies)

		assert.Zero(t, profiles)
		assert.Zero(t, views)
		assert.Zero(t, links)
		assert.Zero(t, agencies)

		return nil
	})
	require.NoError(t, err)
}

func TestProfileRepository(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)
		profileRepo := repository.NewProfileRepository(testDB.DB)
		ctx := testingutil.CreateTestContext()

		country, err := fixtures.CreateTestCountry("de", "Germany", true)
		require.NoError(t, err)
		berlin, err := fixtures.CreateTestCity("Berlin", country.ID, true)
		require.NoError(t, err)
		hamburg, err := fixtures.CreateTestCity("Hamburg", country.ID, true)
		require.NoError(t, err)

		agency, err := fixtures.CreateTestAgency("Paired")
		require.NoError(t, err)

		// Two eligible profiles in Berlin, one in Hamburg, one broken one in
		// Hamburg, and one with no city at all.
		_, err = fixtures.CreateTestProfile(&agency.ID, &berlin.ID)
		require.NoError(t, err)
		_, err = fixtures.CreateTestProfile(&agency.ID, &berlin.ID)
		require.NoError(t, err)
		_, err = fixtures.CreateTestProfile(&agency.ID, &hamburg.ID)
		require.NoError(t, err)
		_, err = fixtures.CreateBrokenTestProfile(&agency.ID, &hamburg.ID)
		require.NoError(t, err)
		_, err = fixtures.CreateTestProfile(&agency.ID, nil)
		require.NoError(t, err)

		t.Run("DistinctCityPairs", func(t *testing.T) {
			pairs, err := profileRepo.DistinctCityPairs(ctx, agency.ID)
			require.NoError(t, err)
			require.Len(t, pairs, 2)

			cities := map[uint]bool{}
			for _, pair := range pairs {
				assert.Equal(t, agency.ID, pair.AgencyID)
				cities[pair.CityID] = true
			}
			assert.True(t, cities[berlin.ID])
			assert.True(t, cities[hamburg.ID])
		})

		t.Run("CountsByState", func(t *testing.T) {
			eligible, err := profileRepo.CountEligible(ctx, agency.ID, nil, nil)
			require.NoError(t, err)
			assert.Equal(t, int64(4), eligible)

			broken, err := profileRepo.CountBroken(ctx, agency.ID, nil, nil)
			require.NoError(t, err)
			assert.Equal(t, int64(1), broken)

			archived, err := profileRepo.CountArchived(ctx, agency.ID, nil, nil)
			require.NoError(t, err)
			assert.Zero(t, archived)
		})

		t.Run("MinimalIncallPrice", func(t *testing.T) {
			// No profile carries a meaningful price yet.
			price, err := profileRepo.MinimalIncallPrice(ctx, agency.ID)
			require.NoError(t, err)
			assert.Nil(t, price)

			priced := &models.Profile{
				AgencyID:        &agency.ID,
				CityID:          &berlin.ID,
				Gender:          utils.DefaultGender,
				IsBroken:        utils.ToPtr(false),
				IsArchived:      utils.ToPtr(false),
				PriceHourIncall: utils.ToPtr(150),
			}
			require.NoError(t, testDB.DB.Create(priced).Error)

			// Token prices at or below the floor are ignored.
			teaser := &models.Profile{
				AgencyID:        &agency.ID,
				CityID:          &berlin.ID,
				Gender:          utils.DefaultGender,
				PriceHourIncall: utils.ToPtr(1),
			}
			require.NoError(t, testDB.DB.Create(teaser).Error)

			price, err = profileRepo.MinimalIncallPrice(ctx, agency.ID)
			require.NoError(t, err)
			require.NotNil(t, price)
			assert.Equal(t, 150, *price)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestReferenceRepositories(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)
		cityRepo := repository.NewCityRepository(testDB.DB)
		countryRepo := repository.NewCountryRepository(testDB.DB)
		viewRepo := repository.NewProfileViewRepository(testDB.DB)
		ctx := testingutil.CreateTestContext()

		country, err := fixtures.CreateTestCountry("de", "Germany", true)
		require.NoError(t, err)
		city, err := fixtures.CreateTestCity("Berlin", country.ID, true)
		require.NoError(t, err)

		t.Run("CountryByCode", func(t *testing.T) {
			found, err := countryRepo.ByCode(ctx, "de")
			require.NoError(t, err)
			require.NotNil(t, found)
			assert.Equal(t, country.ID, found.ID)

			missing, err := countryRepo.ByCode(ctx, "zz")
			require.NoError(t, err)
			assert.Nil(t, missing)
		})

		t.Run("CityWithCountryPreloaded", func(t *testing.T) {
			found, err := cityRepo.ByIDWithCountry(ctx, city.ID)
			require.NoError(t, err)
			require.NotNil(t, found)
			require.NotNil(t, found.Country)
			assert.Equal(t, "de", found.Country.Code)

			missing, err := cityRepo.ByID(ctx, 999999)
			require.NoError(t, err)
			assert.Nil(t, missing)
		})

		t.Run("IDNameSelectNarrowing", func(t *testing.T) {
			agencyRepo := repository.NewAgencyRepository(testDB.DB)

			linked, err := fixtures.CreateTestAgency("Linked Here")
			require.NoError(t, err)
			_, err = fixtures.CreateTestAgency("Elsewhere")
			require.NoError(t, err)
			require.NoError(t, testDB.DB.Create(&models.AgencyCity{AgencyID: linked.ID, CityID: city.ID}).Error)

			all, err := agencyRepo.IDNameSelect(ctx, nil, nil)
			require.NoError(t, err)
			assert.Len(t, all, 2)

			byCity, err := agencyRepo.IDNameSelect(ctx, &city.ID, nil)
			require.NoError(t, err)
			require.Len(t, byCity, 1)
			assert.Equal(t, "Linked Here", byCity[0].Name)

			byCountry, err := agencyRepo.IDNameSelect(ctx, nil, &country.ID)
			require.NoError(t, err)
			require.Len(t, byCountry, 1)
			assert.Equal(t, linked.ID, byCountry[0].ID)
		})

		t.Run("ProfileViewCounts", func(t *testing.T) {
			agency, err := fixtures.CreateTestAgency("Watched")
			require.NoError(t, err)
			require.NoError(t, fixtures.CreateTestProfileViews(agency.ID, 4))

			count, err := viewRepo.CountByAgency(ctx, agency.ID)
			require.NoError(t, err)
			assert.Equal(t, int64(4), count)

			require.NoError(t, viewRepo.DeleteByAgency(ctx, agency.ID))

			count, err = viewRepo.CountByAgency(ctx, agency.ID)
			require.NoError(t, err)
			assert.Zero(t, count)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestAgencyCityRepositoryIgnoresDuplicates(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)
		linkRepo := repository.NewAgencyCityRepository(testDB.DB)
		ctx := testingutil.CreateTestContext()

		country, err := fixtures.CreateTestCountry("de", "Germany", true)
		require.NoError(t, err)
		city, err := fixtures.CreateTestCity("Berlin", country.ID, true)
		require.NoError(t, err)
		agency, err := fixtures.CreateTestAgency("Linked")
		require.NoError(t, err)

		link := &models.AgencyCity{AgencyID: agency.ID, CityID: city.ID}
		require.NoError(t, linkRepo.SaveIgnoreDuplicates(ctx, link))

		dup := &models.AgencyCity{AgencyID: agency.ID, CityID: city.ID}
		require.NoError(t, linkRepo.SaveIgnoreDuplicates(ctx, dup))

		links, err := linkRepo.ListByAgency(ctx, agency.ID)
		require.NoError(t, err)
		assert.Len(t, links, 1)

		return nil
	})
	require.NoError(t, err)
}
