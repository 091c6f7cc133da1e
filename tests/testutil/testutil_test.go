package testutil

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/t1tandr/uevent/internal/domain/event"
	"github.com/t1tandr/uevent/internal/interfaces/http/dto"
	"github.com/t1tandr/uevent/internal/interfaces/http/middleware"
)

func TestNewMockDB(t *testing.T) {
	mockDB := NewMockDB(t)

	assert.NotNil(t, mockDB.DB)
	assert.NotNil(t, mockDB.Mock)
	mockDB.ExpectationsWereMet(t)
}

func TestTestContext(t *testing.T) {
	tc := NewTestContext(t)
	assert.Equal(t, http.MethodGet, tc.Context.Request.Method)

	tc.SetRequestID("req-123")
	val, ok := tc.Context.Get(middleware.RequestIDKey)
	assert.True(t, ok)
	assert.Equal(t, "req-123", val)

	userID := TestUserID()
	tc.SetUserID(userID)
	val, ok = tc.Context.Get(middleware.JWTUserIDKey)
	assert.True(t, ok)
	assert.Equal(t, userID.String(), val)

	tc.SetHeader("Idempotency-Key", "abc")
	assert.Equal(t, "abc", tc.Context.Request.Header.Get("Idempotency-Key"))
}

func TestNewTestUUID(t *testing.T) {
	assert.Equal(t, NewTestUUID("seed"), NewTestUUID("seed"))
	assert.NotEqual(t, NewTestUUID("seed"), NewTestUUID("other"))
}

func TestAssertEventually(t *testing.T) {
	start := time.Now()
	AssertEventually(t, func() bool {
		return time.Since(start) > 20*time.Millisecond
	}, time.Second, 5*time.Millisecond)

	AssertNever(t, func() bool { return false }, 30*time.Millisecond, 10*time.Millisecond)
}

func TestRunHTTPTestCases(t *testing.T) {
	handler := func(c *gin.Context) {
		if _, ok := c.Get(middleware.JWTUserIDKey); !ok {
			c.JSON(http.StatusUnauthorized, dto.NewErrorResponse("UNAUTHORIZED", "Login required"))
			return
		}
		c.JSON(http.StatusOK, dto.NewSuccessResponse(gin.H{"path": c.Request.URL.Path}))
	}
	userID := TestUserID()

	RunHTTPTestCases(t, handler, []HTTPTestCase{
		{
			Name:           "anonymous",
			Path:           "/api/user/profile",
			ExpectedStatus: http.StatusUnauthorized,
			ExpectedCode:   "UNAUTHORIZED",
		},
		{
			Name:           "authenticated",
			Path:           "/api/user/profile",
			UserID:         &userID,
			ExpectedStatus: http.StatusOK,
			Validate: func(t *testing.T, tc *TestContext) {
				AssertSuccessResponse(t, tc.Recorder)
				data := DecodeData[map[string]string](t, tc.Recorder)
				assert.Equal(t, "/api/user/profile", data["path"])
			},
		},
	})
}

func TestFixtures(t *testing.T) {
	owner := NewUser(t, "alice")
	other := NewUser(t, "alice")
	assert.NotEqual(t, owner.Email, other.Email)
	assert.True(t, owner.VerifyPassword(TestPassword))

	c := NewCompany(t, owner.ID, "Gophers")
	assert.Equal(t, owner.ID, c.OwnerID)

	e := NewPublishedEvent(t, owner.ID, WithPrice("25.00"), WithCapacity(2), WithCompany(c.ID))
	assert.Equal(t, event.StatusPublished, e.Status)
	assert.Empty(t, e.GetDomainEvents())
	assert.Equal(t, "25", e.Price.String())
	require.NotNil(t, e.MaxAttendees)
	assert.Equal(t, 2, *e.MaxAttendees)
	assert.Equal(t, c.ID, *e.CompanyID)

	draft := NewDraftEvent(t, uuid.New())
	assert.Equal(t, event.StatusDraft, draft.Status)
}

func TestMockEventHandler(t *testing.T) {
	h := NewMockEventHandler("ticket.purchased")
	assert.Equal(t, []string{"ticket.purchased"}, h.EventTypes())

	require.NoError(t, h.Handle(t.Context(), NewTestEvent("ticket.purchased")))
	h.SetError(errors.New("boom"))
	assert.Error(t, h.Handle(t.Context(), NewTestEvent("event.published")))

	assert.Equal(t, []string{"ticket.purchased", "event.published"}, h.HandledTypes())
	assert.Equal(t, 2, h.HandledCount())

	h.Reset()
	assert.Zero(t, h.HandledCount())
	assert.NoError(t, h.Handle(t.Context(), NewTestEvent("x")))

	id := uuid.New()
	assert.Equal(t, id, NewTestEventWithID(id, "x").EventID())
}
