package repository

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/FuketsuBaka/sequelize-sscce/internal/model"
	"github.com/FuketsuBaka/sequelize-sscce/pkg/db"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *db.DB {
	conn, err := db.Create(db.Config{
		Dialect:            db.DialectSQLite,
		Storage:            filepath.Join(t.TempDir(), "sscce.db"),
		LogQueryParameters: true,
		Benchmark:          true,
	}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func setupUserRepository(t *testing.T) *UserRepository {
	repo, err := NewUserRepository(setupTestDB(t))
	require.NoError(t, err)
	require.NoError(t, repo.Sync(context.Background(), db.SyncOptions{Force: true}))
	return repo
}

// seedUsers inserts one user with a unique username and two sharing one.
func seedUsers(t *testing.T, repo *UserRepository) []*model.User {
	ctx := context.Background()
	users := make([]*model.User, 0, 3)
	for _, u := range []model.User{
		{Name: "User 1", Username: "some_username"},
		{Name: "User 2", Username: "some_other_username"},
		{Name: "User 3", Username: "some_other_username"},
	} {
		created, err := repo.Create(ctx, &u)
		require.NoError(t, err)
		users = append(users, created)
	}
	return users
}
