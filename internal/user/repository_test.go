package user

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepo(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewRepository(db), mock
}

func userRows(t *testing.T, u *User) *sqlmock.Rows {
	t.Helper()
	return sqlmock.
		NewRows([]string{"id", "name", "email", "password", "age", "avatar", "tokens", "created_at"}).
		AddRow(u.ID, u.Name, u.Email, u.Password, u.Age, u.Avatar, "{"+join(u.Tokens)+"}", u.CreatedAt)
}

func join(tokens []string) string {
	out := ""
	for i, tok := range tokens {
		if i > 0 {
			out += ","
		}
		out += tok
	}
	return out
}

func TestRepository_Create(t *testing.T) {
	repo, mock := newTestRepo(t)

	now := time.Now()
	mock.ExpectQuery("INSERT INTO users").
		WithArgs("Alice", "alice@example.com", "hash", 30).
		WillReturnRows(userRows(t, &User{
			ID: 1, Name: "Alice", Email: "alice@example.com",
			Password: "hash", Age: 30, CreatedAt: now,
		}))

	created, err := repo.Create(context.Background(), &User{
		Name: "Alice", Email: "alice@example.com", Password: "hash", Age: 30,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), created.ID)
	assert.Equal(t, "alice@example.com", created.Email)
	assert.Empty(t, created.Tokens)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_CreateUniqueViolation(t *testing.T) {
	repo, mock := newTestRepo(t)

	mock.ExpectQuery("INSERT INTO users").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnError(&pq.Error{Code: "23505"})

	_, err := repo.Create(context.Background(), &User{Email: "dup@example.com"})
	assert.ErrorIs(t, err, ErrEmailAlreadyInUse)
}

func TestRepository_GetByID(t *testing.T) {
	repo, mock := newTestRepo(t)

	mock.ExpectQuery("SELECT (.+) FROM users WHERE id").
		WithArgs(int64(7)).
		WillReturnRows(userRows(t, &User{
			ID: 7, Name: "Bob", Email: "bob@example.com",
			Password: "hash", Age: 25, Tokens: []string{"tok1", "tok2"},
			CreatedAt: time.Now(),
		}))

	u, err := repo.GetByID(context.Background(), 7)
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, []string{"tok1", "tok2"}, u.Tokens)
}

func TestRepository_GetByIDNoRows(t *testing.T) {
	repo, mock := newTestRepo(t)

	mock.ExpectQuery("SELECT (.+) FROM users WHERE id").
		WithArgs(int64(404)).
		WillReturnError(sql.ErrNoRows)

	u, err := repo.GetByID(context.Background(), 404)
	require.NoError(t, err, "a missing row is not an error")
	assert.Nil(t, u)
}

func TestRepository_GetByEmailNoRows(t *testing.T) {
	repo, mock := newTestRepo(t)

	mock.ExpectQuery("SELECT (.+) FROM users WHERE email").
		WithArgs("nobody@example.com").
		WillReturnError(sql.ErrNoRows)

	u, err := repo.GetByEmail(context.Background(), "nobody@example.com")
	require.NoError(t, err)
	assert.Nil(t, u)
}

func TestRepository_GetByIDUnexpectedError(t *testing.T) {
	repo, mock := newTestRepo(t)

	mock.ExpectQuery("SELECT (.+) FROM users WHERE id").
		WithArgs(int64(1)).
		WillReturnError(errors.New("connection reset"))

	_, err := repo.GetByID(context.Background(), 1)
	assert.ErrorContains(t, err, "failed to get user")
}

func TestRepository_List(t *testing.T) {
	repo, mock := newTestRepo(t)

	rows := sqlmock.
		NewRows([]string{"id", "name", "email", "password", "age", "avatar", "tokens", "created_at"}).
		AddRow(1, "Alice", "a@example.com", "h1", 30, nil, "{}", time.Now()).
		AddRow(2, "Bob", "b@example.com", "h2", 25, nil, "{tok}", time.Now())

	mock.ExpectQuery("SELECT (.+) FROM users ORDER BY id").WillReturnRows(rows)

	users, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "Alice", users[0].Name)
	assert.Equal(t, []string{"tok"}, users[1].Tokens)
}

func TestRepository_SaveTokens(t *testing.T) {
	repo, mock := newTestRepo(t)

	mock.ExpectExec("UPDATE users SET tokens").
		WithArgs(int64(1), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.SaveTokens(context.Background(), 1, []string{"tok"})
	assert.NoError(t, err)
}

func TestRepository_SaveAvatarClears(t *testing.T) {
	repo, mock := newTestRepo(t)

	mock.ExpectExec("UPDATE users SET avatar").
		WithArgs(int64(1), nil).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.SaveAvatar(context.Background(), 1, nil)
	assert.NoError(t, err)
}

func TestRepository_Update(t *testing.T) {
	repo, mock := newTestRepo(t)

	mock.ExpectQuery("UPDATE users").
		WithArgs(int64(1), "Alicia", "alicia@example.com", "newhash", 31).
		WillReturnRows(userRows(t, &User{
			ID: 1, Name: "Alicia", Email: "alicia@example.com",
			Password: "newhash", Age: 31, CreatedAt: time.Now(),
		}))

	updated, err := repo.Update(context.Background(), &User{
		ID: 1, Name: "Alicia", Email: "alicia@example.com", Password: "newhash", Age: 31,
	})
	require.NoError(t, err)
	assert.Equal(t, "Alicia", updated.Name)
}

func TestRepository_Delete(t *testing.T) {
	repo, mock := newTestRepo(t)

	mock.ExpectQuery("DELETE FROM users").
		WithArgs(int64(1)).
		WillReturnRows(userRows(t, &User{
			ID: 1, Name: "Alice", Email: "a@example.com",
			Password: "h", Age: 30, CreatedAt: time.Now(),
		}))

	deleted, err := repo.Delete(context.Background(), 1)
	require.NoError(t, err)
	require.NotNil(t, deleted)
	assert.Equal(t, int64(1), deleted.ID)
}

func TestRepository_DeleteNoRows(t *testing.T) {
	repo, mock := newTestRepo(t)

	mock.ExpectQuery("DELETE FROM users").
		WithArgs(int64(404)).
		WillReturnError(sql.ErrNoRows)

	deleted, err := repo.Delete(context.Background(), 404)
	require.NoError(t, err)
	assert.Nil(t, deleted)
}
