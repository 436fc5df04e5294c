package members

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/boardingpass/internal/common"
	"github.com/dmitrijs2005/boardingpass/internal/server/models"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})
	return NewPostgresRepository(db), mock
}

var columns = []string{"id", "twitter", "twitter_id", "discord", "discord_id", "address", "project", "created_at"}

func memberRow(created time.Time) *sqlmock.Rows {
	return sqlmock.NewRows(columns).
		AddRow("m-1", "alice", "111", "alice#0001", "222", "", "udo", created)
}

func TestCreate_AssignsIDAndTimestamp(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	q := `(?s)^INSERT\s+INTO\s+members\s*\(id,\s*twitter,\s*discord,\s*project\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3,\s*\$4\)\s*RETURNING\s+created_at$`
	mock.ExpectQuery(q).
		WithArgs(sqlmock.AnyArg(), "alice", "alice#0001", "udo").
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(created))

	m := &models.Member{Twitter: "alice", Discord: "alice#0001", Project: "udo"}
	require.NoError(t, repo.Create(context.Background(), m))
	assert.Len(t, m.ID, 36)
	assert.Equal(t, created, m.CreatedAt)
}

func TestCreate_DBError(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`INSERT\s+INTO\s+members`).WillReturnError(errors.New("db down"))

	err := repo.Create(context.Background(), &models.Member{ID: "fixed", Twitter: "alice"})
	require.Error(t, err)
	assert.Regexp(t, regexp.MustCompile(`db error: .*db down`), err.Error())
}

func TestFindByHandles(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	created := time.Now().UTC()

	q := `(?s)SELECT\s+id,.*FROM\s+members\s+WHERE\s+\(twitter\s*=\s*\$1\s+AND\s+\$1\s*<>\s*''\)\s+OR\s+\(discord\s*=\s*\$2\s+AND\s+\$2\s*<>\s*''\)\s+ORDER\s+BY\s+created_at\s+LIMIT\s+1$`
	mock.ExpectQuery(q).WithArgs("alice", "alice#0001").WillReturnRows(memberRow(created))

	got, err := repo.FindByHandles(context.Background(), "alice", "alice#0001")
	require.NoError(t, err)
	assert.Equal(t, &models.Member{
		ID: "m-1", Twitter: "alice", TwitterID: "111", Discord: "alice#0001", DiscordID: "222",
		Project: "udo", CreatedAt: created,
	}, got)
}

func TestFind_NotFound(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`WHERE\s+twitter_id\s*=\s*\$1`).WithArgs("404").WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByTwitterID(context.Background(), "404")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestFind_EmptyKeyNeverQueries(t *testing.T) {
	repo, _ := newRepoWithMock(t)
	ctx := context.Background()

	_, err := repo.FindByTwitterID(ctx, "")
	assert.ErrorIs(t, err, common.ErrorNotFound)
	_, err = repo.FindByTwitter(ctx, "")
	assert.ErrorIs(t, err, common.ErrorNotFound)
	_, err = repo.FindByAddress(ctx, "")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestFindByTwitterAndAddress(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	ctx := context.Background()
	created := time.Now().UTC()

	mock.ExpectQuery(`WHERE\s+twitter\s*=\s*\$1\s+ORDER`).WithArgs("alice").WillReturnRows(memberRow(created))
	mock.ExpectQuery(`WHERE\s+address\s*=\s*\$1\s+ORDER`).WithArgs("0xAbC").WillReturnError(errors.New("boom"))

	got, err := repo.FindByTwitter(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "m-1", got.ID)

	_, err = repo.FindByAddress(ctx, "0xAbC")
	require.Error(t, err)
	assert.NotErrorIs(t, err, common.ErrorNotFound)
}

func TestUpdateProfile(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	q := `(?s)^UPDATE\s+members\s+SET\s+twitter\s*=\s*\$2,\s*twitter_id\s*=\s*\$3,\s*discord\s*=\s*\$4,\s*discord_id\s*=\s*\$5,\s*updated_at\s*=\s*now\(\)\s+WHERE\s+id\s*=\s*\$1$`
	mock.ExpectExec(q).
		WithArgs("m-1", "alice", "111", "alice#0001", "222").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.UpdateProfile(context.Background(), &models.Member{
		ID: "m-1", Twitter: "alice", TwitterID: "111", Discord: "alice#0001", DiscordID: "222",
	})
	require.NoError(t, err)
}

func TestUpdateHandles(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectExec(`UPDATE\s+members\s+SET\s+twitter\s*=\s*\$2,\s*discord\s*=\s*\$3,\s*project\s*=\s*\$4`).
		WithArgs("m-1", "alice", "alice#0001", "udo").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.UpdateHandles(context.Background(), &models.Member{
		ID: "m-1", Twitter: "alice", Discord: "alice#0001", Project: "udo",
	}))
}

func TestSetAddress(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	ctx := context.Background()

	q := `UPDATE\s+members\s+SET\s+address\s*=\s*\$2`
	mock.ExpectExec(q).WithArgs("m-1", "0xAbC").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(q).WithArgs("ghost", "0xAbC").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(q).WithArgs("m-1", "0xAbC").WillReturnError(errors.New("db down"))

	require.NoError(t, repo.SetAddress(ctx, "m-1", "0xAbC"))
	assert.ErrorIs(t, repo.SetAddress(ctx, "ghost", "0xAbC"), common.ErrorNotFound)
	err := repo.SetAddress(ctx, "m-1", "0xAbC")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db error")
}
