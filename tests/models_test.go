package tests

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mostovoy/agency-directory/models"
	testingutil "github.com/mostovoy/agency-directory/testing"
	"github.com/mostovoy/agency-directory/utils"
)

func TestAgencyNormalization(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		t.Run("TrimsNameAndDerivesPageKey", func(t *testing.T) {
			agency := &models.Agency{
				Name:    "  Velvet Rose Agency  ",
				Website: "https://velvetrose.example.com",
			}
			require.NoError(t, testDB.DB.Create(agency).Error)

			var loaded models.Agency
			require.NoError(t, testDB.DB.First(&loaded, agency.ID).Error)
			assert.Equal(t, "Velvet Rose Agency", loaded.Name)
			assert.Equal(t, "velvet-rose-agency", loaded.AgencyPage)
		})

		t.Run("EmptyContactsStoredAsNull", func(t *testing.T) {
			agency := &models.Agency{
				Name:  "Contactless",
				Phone: utils.ToPtr(""),
				Email: utils.ToPtr("   "),
				Info:  utils.ToPtr(""),
			}
			require.NoError(t, testDB.DB.Create(agency).Error)

			var loaded models.Agency
			require.NoError(t, testDB.DB.First(&loaded, agency.ID).Error)
			assert.Nil(t, loaded.Phone)
			assert.Nil(t, loaded.Email)
			assert.Nil(t, loaded.Info)
		})

		t.Run("NonEmptyContactsSurvive", func(t *testing.T) {
			agency := &models.Agency{
				Name:  "Reachable",
				Phone: utils.ToPtr("+4915112345678"),
				Email: utils.ToPtr("hello@reachable.example.com"),
			}
			require.NoError(t, testDB.DB.Create(agency).Error)

			var loaded models.Agency
			require.NoError(t, testDB.DB.First(&loaded, agency.ID).Error)
			require.NotNil(t, loaded.Phone)
			assert.Equal(t, "+4915112345678", *loaded.Phone)
			require.NotNil(t, loaded.Email)
			assert.Equal(t, "hello@reachable.example.com", *loaded.Email)
		})

		t.Run("ExplicitPageKeyIsKept", func(t *testing.T) {
			agency := &models.Agency{
				Name:       "Custom Page",
				AgencyPage: "my-custom-page",
			}
			require.NoError(t, testDB.DB.Create(agency).Error)

			var loaded models.Agency
			require.NoError(t, testDB.DB.First(&loaded, agency.ID).Error)
			assert.Equal(t, "my-custom-page", loaded.AgencyPage)
		})

		t.Run("CreateStampsIdentityAndTimestamps", func(t *testing.T) {
			agency := &models.Agency{Name: "Stamped"}
			require.NoError(t, testDB.DB.Create(agency).Error)

			assert.NotEqual(t, uuid.Nil, agency.UUID)
			assert.False(t, agency.CreatedAt.IsZero())
			assert.Equal(t, agency.CreatedAt, agency.UpdatedAt)
		})

		t.Run("UpdateRefreshesTimestamp", func(t *testing.T) {
			agency := &models.Agency{Name: "Updated Later"}
			require.NoError(t, testDB.DB.Create(agency).Error)
			created := agency.CreatedAt

			agency.Website = "https://later.example.com"
			require.NoError(t, testDB.DB.Save(agency).Error)

			assert.True(t, agency.UpdatedAt.After(created) || agency.UpdatedAt.Equal(created))
			assert.Equal(t, created, agency.CreatedAt)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestProfileEligibility(t *testing.T) {
	broken := &models.Profile{IsBroken: utils.ToPtr(true), IsArchived: utils.ToPtr(false)}
	assert.False(t, broken.IsEligible())

	archived := &models.Profile{IsBroken: utils.ToPtr(false), IsArchived: utils.ToPtr(true)}
	assert.False(t, archived.IsEligible())

	clean := &models.Profile{IsBroken: utils.ToPtr(false), IsArchived: utils.ToPtr(false)}
	assert.True(t, clean.IsEligible())

	// Nil flags count as false.
	unset := &models.Profile{}
	assert.True(t, unset.IsEligible())
}
