package users

import (
	"context"
	"testing"

	"fracton-backend/internal/application/notifications"
	"fracton-backend/internal/domain"
	"fracton-backend/internal/middleware"
	"fracton-backend/internal/pkg/ledgererr"

	"github.com/alicebob/miniredis/v2"
	"github.com/glebarez/sqlite"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupUsersTest(t *testing.T) (*Service, *gorm.DB, *miniredis.Miniredis) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.User{}))

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return &Service{DB: db, Rdb: rdb}, db, mr
}

func TestRegister_DefaultsToPendingInvestor(t *testing.T) {
	svc, _, _ := setupUsersTest(t)

	u, err := svc.Register(context.Background(), RegisterInput{
		Fullname: "Ada Osei",
		Email:    "Ada.Osei@Example.com",
		Password: "str0ng!pass",
	})
	require.NoError(t, err)
	assert.Equal(t, "investor", u.Role)
	assert.Equal(t, domain.KycPending, u.KycStatus)
	assert.Equal(t, "ada.osei@example.com", u.Email)
	assert.NotEqual(t, "str0ng!pass", u.PasswordHash)
}

func TestRegister_Validation(t *testing.T) {
	svc, _, _ := setupUsersTest(t)

	cases := []RegisterInput{
		{Fullname: "", Email: "a@b.com", Password: "str0ng!pass"},
		{Fullname: "Ada", Email: "not-an-email", Password: "str0ng!pass"},
		{Fullname: "Ada", Email: "a@b.com", Password: "short"},
	}
	for _, in := range cases {
		_, err := svc.Register(context.Background(), in)
		require.Error(t, err, "input %+v", in)
		assert.True(t, ledgererr.IsKind(err, ledgererr.KindValidation))
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc, _, _ := setupUsersTest(t)

	_, err := svc.Register(context.Background(), RegisterInput{
		Fullname: "Ada Osei", Email: "ada@example.com", Password: "str0ng!pass",
	})
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), RegisterInput{
		Fullname: "Other Ada", Email: "ADA@example.com", Password: "str0ng!pass",
	})
	require.Error(t, err)
	assert.True(t, ledgererr.IsKind(err, ledgererr.KindValidation))
}

func TestRegister_SurfacesLookupErrors(t *testing.T) {
	svc, db, _ := setupUsersTest(t)

	// With the table gone, the duplicate-email lookup fails with a real DB
	// error. That must surface instead of falling through to Create.
	require.NoError(t, db.Migrator().DropTable(&domain.User{}))

	_, err := svc.Register(context.Background(), RegisterInput{
		Fullname: "Ada Osei", Email: "ada@example.com", Password: "str0ng!pass",
	})
	require.Error(t, err)
	assert.False(t, ledgererr.IsKind(err, ledgererr.KindValidation))
}

func TestSetKycStatus(t *testing.T) {
	svc, _, _ := setupUsersTest(t)
	rec := &notifications.Recorder{}
	svc.Notifier = rec

	u, err := svc.Register(context.Background(), RegisterInput{
		Fullname: "Ada Osei", Email: "ada@example.com", Password: "str0ng!pass",
	})
	require.NoError(t, err)

	updated, err := svc.SetKycStatus(context.Background(), u.UserID, domain.KycApproved)
	require.NoError(t, err)
	assert.Equal(t, domain.KycApproved, updated.KycStatus)

	_, err = svc.SetKycStatus(context.Background(), u.UserID, "verified")
	require.Error(t, err)
	assert.True(t, ledgererr.IsKind(err, ledgererr.KindValidation))
}

func TestSetKycStatus_RejectionDestroysSessions(t *testing.T) {
	svc, _, mr := setupUsersTest(t)

	u, err := svc.Register(context.Background(), RegisterInput{
		Fullname: "Ada Osei", Email: "ada@example.com", Password: "str0ng!pass",
	})
	require.NoError(t, err)

	ctx := context.Background()
	sid := "rej123"
	require.NoError(t, svc.Rdb.Set(ctx, middleware.SessionRedisPrefix+sid, `{"user":{}}`, 0).Err())
	require.NoError(t, svc.Rdb.SAdd(ctx, UserSessionsPrefix+u.UserID.String(), sid).Err())

	// Approval keeps sessions alive.
	_, err = svc.SetKycStatus(ctx, u.UserID, domain.KycApproved)
	require.NoError(t, err)
	assert.True(t, mr.Exists(middleware.SessionRedisPrefix+sid))

	// Rejection logs the user out everywhere.
	updated, err := svc.SetKycStatus(ctx, u.UserID, domain.KycRejected)
	require.NoError(t, err)
	assert.Equal(t, domain.KycRejected, updated.KycStatus)
	assert.False(t, mr.Exists(middleware.SessionRedisPrefix+sid))
	assert.False(t, mr.Exists(UserSessionsPrefix+u.UserID.String()))
}

func TestSetFrozen_DestroysSessions(t *testing.T) {
	svc, _, mr := setupUsersTest(t)

	u, err := svc.Register(context.Background(), RegisterInput{
		Fullname: "Ada Osei", Email: "ada@example.com", Password: "str0ng!pass",
	})
	require.NoError(t, err)

	ctx := context.Background()
	sid := "abc123"
	require.NoError(t, svc.Rdb.Set(ctx, middleware.SessionRedisPrefix+sid, `{"user":{}}`, 0).Err())
	require.NoError(t, svc.Rdb.SAdd(ctx, UserSessionsPrefix+u.UserID.String(), sid).Err())

	frozen, err := svc.SetFrozen(ctx, u.UserID, true)
	require.NoError(t, err)
	assert.True(t, frozen.Frozen)

	assert.False(t, mr.Exists(middleware.SessionRedisPrefix+sid))
	assert.False(t, mr.Exists(UserSessionsPrefix+u.UserID.String()))

	unfrozen, err := svc.SetFrozen(ctx, u.UserID, false)
	require.NoError(t, err)
	assert.False(t, unfrozen.Frozen)
}
