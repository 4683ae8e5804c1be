package auth

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jdeb-project/jdeb/internal/db/dbtest"
	"github.com/jdeb-project/jdeb/internal/db/models"
	"github.com/jdeb-project/jdeb/internal/web/session"
)

func TestCapabilities(t *testing.T) {
	assert.ElementsMatch(t, []string{CapRead, CapManageOptions}, Capabilities(models.RoleAdministrator))
	assert.Equal(t, []string{CapRead}, Capabilities(models.RoleSubscriber))
	assert.Empty(t, Capabilities("editor"))

	admin := &models.User{Active: true, Role: models.RoleAdministrator}
	assert.True(t, UserCan(admin, CapManageOptions))

	admin.Active = false
	assert.False(t, UserCan(admin, CapManageOptions))

	assert.False(t, UserCan(&models.User{Active: true, Role: models.RoleSubscriber}, CapManageOptions))
	assert.False(t, UserCan(nil, CapRead))
}

func TestLocalProvider(t *testing.T) {
	ctx := context.Background()
	p := NewLocalProvider(dbtest.Open(t))

	_, err := p.CreateUser(ctx, "admin", "admin@example.com", "s3cret", "root")
	require.ErrorIs(t, err, ErrUnknownRole)

	u, err := p.CreateUser(ctx, "admin", "admin@example.com", "s3cret", models.RoleAdministrator)
	require.NoError(t, err)
	assert.NotZero(t, u.ID)
	assert.NotEqual(t, "s3cret", u.Password)

	_, err = p.CreateUser(ctx, "admin", "other@example.com", "x", models.RoleSubscriber)
	require.ErrorIs(t, err, ErrUserNameExists)

	n, err := p.CountUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	testCases := []struct {
		name     string
		username string
		password string
		wantErr  error
	}{
		{name: "valid", username: "admin", password: "s3cret"},
		{name: "wrong password", username: "admin", password: "nope", wantErr: ErrInvalidPassword},
		{name: "unknown user", username: "ghost", password: "s3cret", wantErr: ErrUserNotFound},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, authErr := p.Authenticate(ctx, tc.username, tc.password)
			if tc.wantErr != nil {
				require.ErrorIs(t, authErr, tc.wantErr)
				return
			}

			require.NoError(t, authErr)
			assert.Equal(t, u.ID, got.ID)
		})
	}

	require.NoError(t, p.ResetPassword(ctx, "admin", "changed"))
	_, err = p.Authenticate(ctx, "admin", "changed")
	require.NoError(t, err)
	require.ErrorIs(t, p.ResetPassword(ctx, "ghost", "x"), ErrUserNotFound)

	require.NoError(t, p.db.Model(&models.User{}).Where("id = ?", u.ID).Update("active", false).Error)
	_, err = p.Authenticate(ctx, "admin", "changed")
	require.ErrorIs(t, err, ErrUserAccountDisabled)
}

func TestRequireCapability(t *testing.T) {
	ctx := context.Background()
	db := dbtest.Open(t)
	p := NewLocalProvider(db)

	admin, err := p.CreateUser(ctx, "admin", "", "pw", models.RoleAdministrator)
	require.NoError(t, err)

	sub, err := p.CreateUser(ctx, "reader", "", "pw", models.RoleSubscriber)
	require.NoError(t, err)

	session.Init(nil)
	require.NoError(t, (&session.Data{User: *admin}).Write("admin-session", time.Minute))
	require.NoError(t, (&session.Data{User: *sub}).Write("sub-session", time.Minute))
	require.NoError(t, (&session.Data{User: models.User{ID: 999}}).Write("ghost-session", time.Minute))

	svc := NewService(db)

	app := fiber.New()
	app.Use(AddCapabilitiesToLocals(svc))
	app.Get("/options", RequireCapability(svc, CapManageOptions), func(c *fiber.Ctx) error {
		caps, _ := c.Locals(LocalsCapabilities).(map[string]bool)
		if !caps[CapManageOptions] {
			return c.SendStatus(fiber.StatusTeapot)
		}

		return c.SendString(c.Locals(LocalsSessionID).(string))
	})

	testCases := []struct {
		name   string
		cookie string
		status int
	}{
		{name: "anonymous", status: fiber.StatusUnauthorized},
		{name: "unknown session", cookie: "nope", status: fiber.StatusUnauthorized},
		{name: "deleted user", cookie: "ghost-session", status: fiber.StatusUnauthorized},
		{name: "subscriber", cookie: "sub-session", status: fiber.StatusForbidden},
		{name: "administrator", cookie: "admin-session", status: fiber.StatusOK},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(fiber.MethodGet, "/options", nil)
			if tc.cookie != "" {
				req.Header.Set("Cookie", session.CookieName+"="+tc.cookie)
			}

			resp, testErr := app.Test(req)
			require.NoError(t, testErr)
			assert.Equal(t, tc.status, resp.StatusCode)
		})
	}
}
