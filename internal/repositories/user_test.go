package repositories

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupUserPostgresContainer(t *testing.T) (*sqlx.DB, func()) {
	t.Helper()

	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_PASSWORD": "password", "POSTGRES_DB": "testdb", "POSTGRES_USER": "postgres"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForListeningPort("5432/tcp"),
	}

	container, err := tc.GenericContainer(context.Background(), tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)

	host, _ := container.Host(context.Background())
	port, _ := container.MappedPort(context.Background(), "5432")

	dsn := fmt.Sprintf("postgres://postgres:password@%s:%d/testdb?sslmode=disable", host, port.Int())

	var db *sqlx.DB
	for i := 0; i < 10; i++ {
		db, err = sqlx.Connect("pgx", dsn)
		if err == nil {
			break
		}
		time.Sleep(time.Second)
	}
	require.NoError(t, err)

	schema := `
	CREATE TABLE IF NOT EXISTS users (
		user_id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		full_name VARCHAR(100) NOT NULL,
		email VARCHAR(255) NOT NULL UNIQUE,
		password_hash VARCHAR(255) NOT NULL,
		avatar VARCHAR(500),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
	`
	_, err = db.Exec(schema)
	require.NoError(t, err)

	teardown := func() {
		db.Close()
		container.Terminate(context.Background())
	}

	return db, teardown
}

func TestUserWriteRepository_Save(t *testing.T) {
	db, teardown := setupUserPostgresContainer(t)
	defer teardown()

	repo := NewUserWriteRepository(db)
	ctx := context.Background()

	user, err := repo.Save(ctx, "Alice Green", "alice@example.com", "hashed-password")
	require.NoError(t, err)
	require.NotNil(t, user)

	assert.NotEqual(t, uuid.Nil, user.UserID)
	assert.Equal(t, "Alice Green", user.FullName)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.Equal(t, "hashed-password", user.PasswordHash)
	assert.Nil(t, user.Avatar)
	assert.False(t, user.CreatedAt.IsZero())
}

func TestUserWriteRepository_Save_DuplicateEmail(t *testing.T) {
	db, teardown := setupUserPostgresContainer(t)
	defer teardown()

	repo := NewUserWriteRepository(db)
	ctx := context.Background()

	_, err := repo.Save(ctx, "Alice Green", "alice@example.com", "hash-a")
	require.NoError(t, err)

	user, err := repo.Save(ctx, "Other Alice", "alice@example.com", "hash-b")
	assert.Error(t, err)
	assert.Nil(t, user)
}

func TestUserReadRepository_GetByEmail(t *testing.T) {
	db, teardown := setupUserPostgresContainer(t)
	defer teardown()

	writeRepo := NewUserWriteRepository(db)
	readRepo := NewUserReadRepository(db)
	ctx := context.Background()

	saved, err := writeRepo.Save(ctx, "Bob Moss", "bob@example.com", "hash")
	require.NoError(t, err)

	got, err := readRepo.GetByEmail(ctx, "bob@example.com")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, saved.UserID, got.UserID)
	assert.Equal(t, "Bob Moss", got.FullName)

	// Absent email yields nil, not an error.
	got, err = readRepo.GetByEmail(ctx, "missing@example.com")
	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestUserReadRepository_GetByID(t *testing.T) {
	db, teardown := setupUserPostgresContainer(t)
	defer teardown()

	writeRepo := NewUserWriteRepository(db)
	readRepo := NewUserReadRepository(db)
	ctx := context.Background()

	saved, err := writeRepo.Save(ctx, "Carol Fern", "carol@example.com", "hash")
	require.NoError(t, err)

	got, err := readRepo.GetByID(ctx, saved.UserID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "carol@example.com", got.Email)

	got, err = readRepo.GetByID(ctx, uuid.New())
	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestUserReadRepository_ExistsWithEmail(t *testing.T) {
	db, teardown := setupUserPostgresContainer(t)
	defer teardown()

	writeRepo := NewUserWriteRepository(db)
	readRepo := NewUserReadRepository(db)
	ctx := context.Background()

	saved, err := writeRepo.Save(ctx, "Dana Ivy", "dana@example.com", "hash")
	require.NoError(t, err)

	// The owner of the email is excluded.
	exists, err := readRepo.ExistsWithEmail(ctx, "dana@example.com", saved.UserID)
	require.NoError(t, err)
	assert.False(t, exists)

	// Another user asking about the same email sees it as taken.
	exists, err = readRepo.ExistsWithEmail(ctx, "dana@example.com", uuid.New())
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = readRepo.ExistsWithEmail(ctx, "free@example.com", uuid.New())
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestUserWriteRepository_UpdateProfile(t *testing.T) {
	db, teardown := setupUserPostgresContainer(t)
	defer teardown()

	writeRepo := NewUserWriteRepository(db)
	ctx := context.Background()

	saved, err := writeRepo.Save(ctx, "Eve Birch", "eve@example.com", "hash")
	require.NoError(t, err)

	updated, err := writeRepo.UpdateProfile(ctx, saved.UserID, "Eve Willow", "eve.willow@example.com")
	require.NoError(t, err)
	require.NotNil(t, updated)

	assert.Equal(t, saved.UserID, updated.UserID)
	assert.Equal(t, "Eve Willow", updated.FullName)
	assert.Equal(t, "eve.willow@example.com", updated.Email)
	assert.Equal(t, "hash", updated.PasswordHash, "password must survive a profile update")
}

func TestUserWriteRepository_UpdatePassword(t *testing.T) {
	db, teardown := setupUserPostgresContainer(t)
	defer teardown()

	writeRepo := NewUserWriteRepository(db)
	readRepo := NewUserReadRepository(db)
	ctx := context.Background()

	saved, err := writeRepo.Save(ctx, "Finn Oak", "finn@example.com", "old-hash")
	require.NoError(t, err)

	err = writeRepo.UpdatePassword(ctx, saved.UserID, "new-hash")
	require.NoError(t, err)

	got, err := readRepo.GetByID(ctx, saved.UserID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "new-hash", got.PasswordHash)
}
