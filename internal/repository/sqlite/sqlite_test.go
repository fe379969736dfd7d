package sqlite_test

import (
	"context"
	"errors"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	dbfs "github.com/garnizeh/joboffers/db"
	dbpkg "github.com/garnizeh/joboffers/internal/db"
	sqlite "github.com/garnizeh/joboffers/internal/repository/sqlite"
	"github.com/garnizeh/joboffers/pkg/models"
	"github.com/garnizeh/joboffers/pkg/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRepo(t *testing.T) *sqlite.SQLiteRepo {
	t.Helper()
	ctx := context.Background()

	d, err := dbpkg.New(ctx, filepath.Join(t.TempDir(), "offers.db"), nil)
	require.NoError(t, err, "open db")
	t.Cleanup(func() { d.Close() })

	require.NoError(t, dbpkg.Migrate(ctx, d, dbfs.Migrations), "migrate")

	return sqlite.New(d, nil)
}

func createUser(t *testing.T, repo *sqlite.SQLiteRepo, username string) int64 {
	t.Helper()
	id, err := repo.CreateUser(context.Background(), &models.User{Username: username, PasswordHash: "digest"})
	require.NoError(t, err)
	require.NotZero(t, id)
	return id
}

func TestUserCRUD(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	_, err := repo.CreateUser(ctx, nil)
	require.Error(t, err, "nil user")

	got, err := repo.GetUserByID(ctx, 9999)
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = repo.GetUserByUsername(ctx, "nobody")
	require.NoError(t, err)
	assert.Nil(t, got)

	id := createUser(t, repo, "alice")

	got, err = repo.GetUserByID(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "alice", got.Username)
	assert.Equal(t, "digest", got.PasswordHash)
	assert.NotZero(t, got.Created)

	byName, err := repo.GetUserByUsername(ctx, "alice")
	require.NoError(t, err)
	require.NotNil(t, byName)
	assert.Equal(t, id, byName.ID)

	require.NoError(t, repo.DeleteUser(ctx, id))
	after, err := repo.GetUserByID(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, after)
}

func TestCreateUser_DuplicateUsername(t *testing.T) {
	repo := setupRepo(t)
	createUser(t, repo, "alice")

	_, err := repo.CreateUser(context.Background(), &models.User{Username: "alice", PasswordHash: "other"})
	require.Error(t, err)
	assert.ErrorIs(t, err, repository.ErrDuplicate)
}

func TestOfferCRUD(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	uid := createUser(t, repo, "alice")

	_, err := repo.CreateOffer(ctx, nil)
	require.Error(t, err, "nil offer")

	created := time.Date(2024, 1, 2, 3, 4, 5, 6000, time.UTC)
	o := &models.Offer{
		UserID:       uid,
		Title:        "Backend Engineer",
		Description:  "Build a RESTful API",
		SkillsList:   []string{"go", "sql", "DevOps"},
		CreationDate: created,
	}
	id, err := repo.CreateOffer(ctx, o)
	require.NoError(t, err)
	require.NotZero(t, id)

	got, err := repo.GetOffer(ctx, uid, id)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, id, got.ID)
	assert.Equal(t, uid, got.UserID)
	assert.Equal(t, o.Title, got.Title)
	assert.Equal(t, o.Description, got.Description)
	assert.Equal(t, o.SkillsList, got.SkillsList)
	assert.True(t, got.CreationDate.Equal(created), "creation date %v", got.CreationDate)
	assert.True(t, got.ModificationDate.Equal(created), "modification date defaults to creation date")

	// scoped by owner
	other, err := repo.GetOffer(ctx, uid+1, id)
	require.NoError(t, err)
	assert.Nil(t, other)

	desc := "Build a RESTful API with mux"
	require.NoError(t, repo.UpdateOffer(ctx, uid, id, models.OfferPatch{Description: &desc}, created.Add(time.Second)))

	updated, err := repo.GetOffer(ctx, uid, id)
	require.NoError(t, err)
	assert.Equal(t, "Build a RESTful API with mux", updated.Description)
	assert.Equal(t, "Backend Engineer", updated.Title)
	assert.Equal(t, o.SkillsList, updated.SkillsList)
	assert.True(t, updated.ModificationDate.Equal(created.Add(time.Second)))

	require.NoError(t, repo.DeleteOffer(ctx, uid, id))
	gone, err := repo.GetOffer(ctx, uid, id)
	require.NoError(t, err)
	assert.Nil(t, gone)
}

func TestOffer_NotFoundAndOwnerScoping(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	alice := createUser(t, repo, "alice")
	bob := createUser(t, repo, "bob")

	id, err := repo.CreateOffer(ctx, &models.Offer{UserID: alice, Title: "T", Description: "D", SkillsList: []string{"x"}})
	require.NoError(t, err)

	hijack := "hijack"
	err = repo.UpdateOffer(ctx, bob, id, models.OfferPatch{Title: &hijack}, time.Now())
	assert.ErrorIs(t, err, repository.ErrNotFound)

	assert.ErrorIs(t, repo.DeleteOffer(ctx, bob, id), repository.ErrNotFound)
	assert.ErrorIs(t, repo.DeleteOffer(ctx, alice, id+100), repository.ErrNotFound)

	still, err := repo.GetOffer(ctx, alice, id)
	require.NoError(t, err)
	require.NotNil(t, still)
	assert.Equal(t, "T", still.Title)
}

func TestUpdateOffer_DisjointPatchesFromStaleSnapshot(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	uid := createUser(t, repo, "alice")

	id, err := repo.CreateOffer(ctx, &models.Offer{UserID: uid, Title: "T0", Description: "D0", SkillsList: []string{"go"}})
	require.NoError(t, err)

	// both writers read the same row before either writes
	snapshot, err := repo.GetOffer(ctx, uid, id)
	require.NoError(t, err)
	require.NotNil(t, snapshot)

	title, desc := "T1", "D1"
	require.NoError(t, repo.UpdateOffer(ctx, uid, id, models.OfferPatch{Title: &title}, snapshot.ModificationDate))
	require.NoError(t, repo.UpdateOffer(ctx, uid, id, models.OfferPatch{Description: &desc}, snapshot.ModificationDate))

	got, err := repo.GetOffer(ctx, uid, id)
	require.NoError(t, err)
	assert.Equal(t, "T1", got.Title)
	assert.Equal(t, "D1", got.Description)
	assert.Equal(t, []string{"go"}, got.SkillsList)
	assert.True(t, got.ModificationDate.After(snapshot.ModificationDate), "stale timestamps still advance the stored date")
}

func TestUpdateOffer_SkillsOnly(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	uid := createUser(t, repo, "alice")

	id, err := repo.CreateOffer(ctx, &models.Offer{UserID: uid, Title: "T", Description: "D", SkillsList: []string{"go"}})
	require.NoError(t, err)

	skills := []string{"rust", "sql"}
	require.NoError(t, repo.UpdateOffer(ctx, uid, id, models.OfferPatch{SkillsList: &skills}, time.Now()))

	got, err := repo.GetOffer(ctx, uid, id)
	require.NoError(t, err)
	assert.Equal(t, skills, got.SkillsList)
	assert.Equal(t, "T", got.Title)
	assert.Equal(t, "D", got.Description)
}

func TestCreateOffer_UnknownOwner(t *testing.T) {
	repo := setupRepo(t)

	_, err := repo.CreateOffer(context.Background(), &models.Offer{UserID: 100, Title: "T", Description: "D", SkillsList: []string{"x"}})
	require.Error(t, err)
	assert.ErrorIs(t, err, repository.ErrInvalidOwner)
}

func TestListOffersByUser(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	alice := createUser(t, repo, "alice")
	bob := createUser(t, repo, "bob")

	for i := 0; i < 5; i++ {
		_, err := repo.CreateOffer(ctx, &models.Offer{UserID: alice, Title: "T", Description: "D", SkillsList: []string{"go"}})
		require.NoError(t, err)
	}
	_, err := repo.CreateOffer(ctx, &models.Offer{UserID: bob, Title: "B", Description: "D"})
	require.NoError(t, err)

	list, err := repo.ListOffersByUser(ctx, alice)
	require.NoError(t, err)
	assert.Len(t, list, 5)
	for i := 1; i < len(list); i++ {
		assert.Less(t, list[i-1].ID, list[i].ID)
	}

	bobs, err := repo.ListOffersByUser(ctx, bob)
	require.NoError(t, err)
	require.Len(t, bobs, 1)
	assert.Equal(t, []string{}, bobs[0].SkillsList)

	none, err := repo.ListOffersByUser(ctx, 999)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestDeleteUser_CascadesOffers(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	alice := createUser(t, repo, "alice")

	id, err := repo.CreateOffer(ctx, &models.Offer{UserID: alice, Title: "T", Description: "D", SkillsList: []string{"x"}})
	require.NoError(t, err)

	require.NoError(t, repo.DeleteUser(ctx, alice))

	o, err := repo.GetOffer(ctx, alice, id)
	require.NoError(t, err)
	assert.Nil(t, o)
}

func TestDriverErrorsPropagate(t *testing.T) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer conn.Close()

	repo := sqlite.New(dbpkg.FromConn(conn), nil)
	ctx := context.Background()
	boom := errors.New("disk I/O error")

	mock.ExpectExec("INSERT INTO offers").WillReturnError(boom)
	_, err = repo.CreateOffer(ctx, &models.Offer{UserID: 1, Title: "T", Description: "D"})
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, repository.ErrInvalidOwner)

	mock.ExpectQuery("SELECT (.+) FROM offers WHERE user_id").WithArgs(int64(1)).WillReturnError(boom)
	_, err = repo.ListOffersByUser(ctx, 1)
	assert.ErrorIs(t, err, boom)

	mock.ExpectQuery("SELECT (.+) FROM users WHERE id").WithArgs(int64(7)).WillReturnError(boom)
	_, err = repo.GetUserByID(ctx, 7)
	assert.ErrorIs(t, err, boom)

	mock.ExpectExec("DELETE FROM offers").WithArgs(int64(3), int64(1)).WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.DeleteOffer(ctx, 1, 3), repository.ErrNotFound)

	// only the patched column is written
	mock.ExpectExec(regexp.QuoteMeta("UPDATE offers SET title = ?, modification_date = MAX(?, modification_date + 1) WHERE id = ? AND user_id = ?")).
		WithArgs("T2", sqlmock.AnyArg(), int64(3), int64(1)).WillReturnResult(sqlmock.NewResult(0, 1))
	title := "T2"
	assert.NoError(t, repo.UpdateOffer(ctx, 1, 3, models.OfferPatch{Title: &title}, time.Now()))

	mock.ExpectQuery("SELECT (.+) FROM offers WHERE id").WithArgs(int64(3), int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "title", "description", "skills_list", "creation_date", "modification_date"}).
			AddRow(int64(3), int64(1), "T", "D", "not json", int64(1), int64(1)))
	_, err = repo.GetOffer(ctx, 1, 3)
	assert.Error(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}
