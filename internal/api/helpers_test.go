package api

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"nutrify/diet-tracker/internal/mocks"
	"nutrify/diet-tracker/internal/service"
)

const testToken = "good-token"

type testEnv struct {
	auth     *mocks.MockAuthService
	users    *mocks.MockUserService
	advisor  *mocks.MockAdvisorService
	plans    *mocks.MockDietPlanService
	foodLogs *mocks.MockFoodLogService
	router   *gin.Engine
	userID   primitive.ObjectID
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	env := &testEnv{
		auth:     new(mocks.MockAuthService),
		users:    new(mocks.MockUserService),
		advisor:  new(mocks.MockAdvisorService),
		plans:    new(mocks.MockDietPlanService),
		foodLogs: new(mocks.MockFoodLogService),
		router:   gin.New(),
		userID:   primitive.NewObjectID(),
	}
	env.auth.On("ParseToken", testToken).Return(env.userID, nil).Maybe()
	env.auth.On("ParseToken", mock.Anything).Return(primitive.NilObjectID, service.ErrInvalidToken).Maybe()

	SetupRoutes(env.router, Services{
		Auth:     env.auth,
		User:     env.users,
		Advisor:  env.advisor,
		DietPlan: env.plans,
		FoodLog:  env.foodLogs,
	}, nil, nil)
	return env
}

// do sends an authenticated request; body is JSON encoded unless it is a string.
func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	return e.doWithToken(t, method, path, body, testToken)
}

func (e *testEnv) doWithToken(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func errorBody(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	return decode[map[string]string](t, w)["error"]
}

// jsonObject is a request body literal.
type jsonObject = map[string]any
