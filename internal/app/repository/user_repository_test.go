package repository

import (
	"testing"
	"time"

	"github.com/foodgram/foodgram-backend/internal/app/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestUserRepository_Create(t *testing.T) {
	testDB, f := setupRepositoryTest(t)
	repo := NewUserRepository(testDB)

	tests := []struct {
		name    string
		user    *model.User
		wantErr error
	}{
		{
			name:    "New user",
			user:    &model.User{Email: "dave@example.com", Username: "dave", FirstName: "Dave", LastName: "Lee", PasswordHash: "hash"},
			wantErr: nil,
		},
		{
			name:    "Duplicate email",
			user:    &model.User{Email: f.alice.Email, Username: "alice2", FirstName: "A", LastName: "B", PasswordHash: "hash"},
			wantErr: gorm.ErrDuplicatedKey,
		},
		{
			name:    "Duplicate username",
			user:    &model.User{Email: "other@example.com", Username: f.alice.Username, FirstName: "A", LastName: "B", PasswordHash: "hash"},
			wantErr: gorm.ErrDuplicatedKey,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := repo.Create(tt.user)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.NotZero(t, tt.user.ID)
			assert.Equal(t, model.RoleUser, tt.user.Role)
		})
	}
}

func TestUserRepository_Find(t *testing.T) {
	testDB, f := setupRepositoryTest(t)
	repo := NewUserRepository(testDB)

	byID, err := repo.FindByID(f.bob.ID)
	require.NoError(t, err)
	assert.Equal(t, "bob", byID.Username)

	byEmail, err := repo.FindByEmail("alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, f.alice.ID, byEmail.ID)

	_, err = repo.FindByEmail("missing@example.com")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	exists, err := repo.ExistsByUsername("bob")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.ExistsByUsername("nobody")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestUserRepository_ListAndPassword(t *testing.T) {
	testDB, f := setupRepositoryTest(t)
	repo := NewUserRepository(testDB)

	users, total, err := repo.List(1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, users, 1)
	assert.Equal(t, f.bob.ID, users[0].ID)

	require.NoError(t, repo.UpdatePassword(f.alice.ID, "new-hash"))
	reloaded, err := repo.FindByID(f.alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "new-hash", reloaded.PasswordHash)

	assert.ErrorIs(t, repo.UpdatePassword(9999, "x"), gorm.ErrRecordNotFound)
}

func TestUserRepository_DeleteCascades(t *testing.T) {
	testDB, f := setupRepositoryTest(t)
	repo := NewUserRepository(testDB)

	recipe := createRecipe(t, NewRecipeRepository(testDB), f.alice.ID, "Omelette", []uint{f.breakfast.ID}, line(f.eggs.ID, 2))
	require.NoError(t, testDB.Create(&model.Favorite{UserID: f.bob.ID, RecipeID: recipe.ID}).Error)
	require.NoError(t, testDB.Create(&model.Subscription{UserID: f.bob.ID, AuthorID: f.alice.ID}).Error)

	require.NoError(t, repo.Delete(f.alice.ID))

	for _, table := range []string{"recipes", "recipe_ingredients", "recipe_tags", "favorites", "subscriptions"} {
		assert.Zero(t, countRows(t, testDB, table), table)
	}
}

func TestRevokedTokenRepository(t *testing.T) {
	testDB, _ := setupRepositoryTest(t)
	repo := NewRevokedTokenRepository(testDB)
	now := time.Now()

	require.NoError(t, repo.Create("live", now.Add(time.Hour)))
	require.NoError(t, repo.Create("live", now.Add(time.Hour)))
	require.NoError(t, repo.Create("stale", now.Add(-time.Minute)))

	revoked, err := repo.Exists("live", now)
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, err = repo.Exists("stale", now)
	require.NoError(t, err)
	assert.False(t, revoked)

	purged, err := repo.DeleteExpired(now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), purged)
	assert.Equal(t, int64(1), countRows(t, testDB, "revoked_tokens"))
}
