package api

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"nutrify/diet-tracker/internal/domain"
	"nutrify/diet-tracker/internal/service"
)

func TestLogFoodHandler(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		setupMock  func(env *testEnv)
		wantStatus int
	}{
		{
			name: "estimated macros",
			body: `{"mealType": "breakfast", "foodName": "Idli", "quantity": 2}`,
			setupMock: func(env *testEnv) {
				env.foodLogs.On("LogFood", mock.Anything, env.userID, mock.MatchedBy(func(in service.FoodLogInput) bool {
					return in.FoodName == "Idli" && in.Quantity == 2 && in.Calories == nil && in.Unit == ""
				})).Return(&domain.FoodLogEntry{ID: primitive.NewObjectID(), FoodName: "Idli", NutritionSource: domain.SourceEstimate}, nil)
			},
			wantStatus: http.StatusCreated,
		},
		{
			name: "user macros",
			body: `{"mealType": "lunch", "foodName": "Dal", "calories": 0, "protein": 12}`,
			setupMock: func(env *testEnv) {
				env.foodLogs.On("LogFood", mock.Anything, env.userID, mock.MatchedBy(func(in service.FoodLogInput) bool {
					return in.Calories != nil && *in.Calories == 0 && *in.Protein == 12 && in.Fat == nil
				})).Return(&domain.FoodLogEntry{ID: primitive.NewObjectID(), NutritionSource: domain.SourceUser}, nil)
			},
			wantStatus: http.StatusCreated,
		},
		{
			name:       "unknown meal type",
			body:       `{"mealType": "brunch", "foodName": "Toast"}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "negative calories",
			body:       `{"mealType": "snack", "foodName": "Chips", "calories": -5}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "quantity too large",
			body:       `{"mealType": "snack", "foodName": "Rice", "quantity": 1e300, "unit": "kg"}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "service validation",
			body: `{"mealType": "snack", "foodName": "Tea", "unit": "bucket"}`,
			setupMock: func(env *testEnv) {
				env.foodLogs.On("LogFood", mock.Anything, env.userID, mock.Anything).
					Return(nil, service.ErrValidationFailed)
			},
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			if tt.setupMock != nil {
				tt.setupMock(env)
			}
			w := env.do(t, http.MethodPost, "/api/food-log", tt.body)
			assert.Equal(t, tt.wantStatus, w.Code, w.Body.String())
			if tt.setupMock == nil {
				env.foodLogs.AssertNotCalled(t, "LogFood", mock.Anything, mock.Anything, mock.Anything)
			}
		})
	}
}

func TestListFoodLogsHandler_PassesQuery(t *testing.T) {
	env := newTestEnv(t)
	env.foodLogs.On("ListFoodLogs", mock.Anything, env.userID, service.FoodLogQuery{
		StartDate: "2026-03-01", EndDate: "2026-03-07", MealType: "dinner",
	}).Return([]domain.FoodLogEntry{}, nil)

	w := env.do(t, http.MethodGet, "/api/food-log?startDate=2026-03-01&endDate=2026-03-07&mealType=dinner", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestTodayAndSummaryRoutes(t *testing.T) {
	env := newTestEnv(t)
	entryDate := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	env.foodLogs.On("TodayFoodLogs", mock.Anything, env.userID).Return([]domain.FoodLogEntry{
		{ID: primitive.NewObjectID(), FoodName: "Poha", Date: entryDate},
	}, nil)
	env.foodLogs.On("NutritionSummary", mock.Anything, env.userID, "2026-03-02").Return(
		service.Summarize("2026-03-02", nil, domain.NutritionGoals{Calories: 2000}), nil)

	w := env.do(t, http.MethodGet, "/api/food-log/today", nil)
	require.Equal(t, http.StatusOK, w.Code)
	today := decode[[]FoodLogResponse](t, w)
	require.Len(t, today, 1)
	assert.Equal(t, "Poha", today[0].FoodName)
	assert.False(t, today[0].HasPhoto)

	w = env.do(t, http.MethodGet, "/api/food-log/nutrition-summary?date=2026-03-02", nil)
	require.Equal(t, http.StatusOK, w.Code)
	summary := decode[domain.NutritionSummary](t, w)
	assert.Equal(t, 2000, summary.Remaining.Calories)
	assert.Len(t, summary.ByMealType, 4)
}

func TestUpdateFoodLogHandler(t *testing.T) {
	env := newTestEnv(t)
	id := primitive.NewObjectID()
	env.foodLogs.On("UpdateFoodLog", mock.Anything, env.userID, id, mock.MatchedBy(func(u service.FoodLogUpdate) bool {
		return u.Unit != nil && *u.Unit == domain.UnitGrams && u.Quantity != nil && *u.Quantity == 150 && u.FoodName == nil
	})).Return(&domain.FoodLogEntry{ID: id, Quantity: 150, Unit: domain.UnitGrams}, nil)

	w := env.do(t, http.MethodPut, "/api/food-log/"+id.Hex(), `{"quantity": 150, "unit": "grams"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 150.0, decode[FoodLogResponse](t, w).Quantity)

	w = env.do(t, http.MethodPut, "/api/food-log/"+id.Hex(), `{"quantity": 0}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestFoodLogOwnership(t *testing.T) {
	env := newTestEnv(t)
	id := primitive.NewObjectID()
	env.foodLogs.On("GetFoodLog", mock.Anything, env.userID, id).Return(nil, service.ErrFoodLogAccessDenied)
	env.foodLogs.On("DeleteFoodLog", mock.Anything, env.userID, id).Return(service.ErrFoodLogNotFound)

	w := env.do(t, http.MethodGet, "/api/food-log/"+id.Hex(), nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Not authorized", errorBody(t, w))

	w = env.do(t, http.MethodDelete, "/api/food-log/"+id.Hex(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPhotoHandlers(t *testing.T) {
	env := newTestEnv(t)
	id := primitive.NewObjectID()
	key := "food-photos/" + env.userID.Hex() + "/" + id.Hex() + "/abc.jpg"

	env.foodLogs.On("RequestPhotoUploadURL", mock.Anything, env.userID, id, "image/jpeg").
		Return(&service.PhotoUploadURL{UploadURL: "https://s3/put", ObjectKey: key}, nil)
	env.foodLogs.On("ConfirmPhoto", mock.Anything, env.userID, id, key, "meal.jpg", int64(2048), "image/jpeg").
		Return(&domain.FoodPhoto{ID: primitive.NewObjectID(), FoodLogID: id, FileName: "meal.jpg", ContentType: "image/jpeg", Size: 2048}, nil)
	env.foodLogs.On("GetPhotoURL", mock.Anything, env.userID, id).Return("https://s3/get", nil)
	env.foodLogs.On("DeletePhoto", mock.Anything, env.userID, id).Return(service.ErrPhotoStorageDisabled)

	w := env.do(t, http.MethodPost, "/api/food-log/"+id.Hex()+"/photo/upload-url", jsonObject{"contentType": "image/jpeg"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, key, decode[service.PhotoUploadURL](t, w).ObjectKey)

	w = env.do(t, http.MethodPost, "/api/food-log/"+id.Hex()+"/photo", jsonObject{
		"objectKey": key, "fileName": "meal.jpg", "size": 2048, "contentType": "image/jpeg",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = env.do(t, http.MethodGet, "/api/food-log/"+id.Hex()+"/photo", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "https://s3/get", decode[map[string]string](t, w)["downloadUrl"])

	w = env.do(t, http.MethodDelete, "/api/food-log/"+id.Hex()+"/photo", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
