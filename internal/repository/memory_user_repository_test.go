package repository

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/user-service/internal/domain"
)

func TestMemoryRepositoryLifecycle(t *testing.T) {
	repo := NewMemoryUserRepository()
	ctx := context.Background()

	alice := &domain.User{Username: "alice", Credential: domain.Credential{Hash: "h", Salt: "s"}}
	require.NoError(t, repo.Insert(ctx, alice))
	assert.Equal(t, int64(1), alice.ID)
	assert.False(t, alice.CreatedAt.IsZero())

	found, err := repo.FindByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "h", found.Credential.Hash)

	_, err = repo.FindByUsername(ctx, "Alice")
	assert.ErrorIs(t, err, pgx.ErrNoRows, "lookup is case-sensitive")

	assert.ErrorIs(t, repo.Insert(ctx, &domain.User{Username: "alice"}), ErrUsernameTaken)

	bob := &domain.User{Username: "bob"}
	require.NoError(t, repo.Insert(ctx, bob))
	assert.ErrorIs(t, repo.UpdateByID(ctx, bob.ID, &domain.User{Username: "alice"}), ErrUsernameTaken)

	renamed := &domain.User{Username: "robert"}
	require.NoError(t, repo.UpdateByID(ctx, bob.ID, renamed))
	assert.Equal(t, bob.ID, renamed.ID)
	assert.Equal(t, bob.CreatedAt, renamed.CreatedAt)

	all, err := repo.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "robert", all[0].Username)

	require.NoError(t, repo.DeleteByID(ctx, alice.ID))
	assert.ErrorIs(t, repo.DeleteByID(ctx, alice.ID), pgx.ErrNoRows)
	_, err = repo.GetByID(ctx, alice.ID)
	assert.ErrorIs(t, err, pgx.ErrNoRows)
	assert.ErrorIs(t, repo.UpdateByID(ctx, alice.ID, &domain.User{Username: "x"}), pgx.ErrNoRows)
}

func TestMemoryRepositoryConcurrentInserts(t *testing.T) {
	repo := NewMemoryUserRepository()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, repo.Insert(ctx, &domain.User{Username: fmt.Sprintf("user-%d", i)}))
		}(i)
	}
	wg.Wait()

	all, err := repo.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 50)
	assert.Equal(t, int64(50), all[0].ID)
}
