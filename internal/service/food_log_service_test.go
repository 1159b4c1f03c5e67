package service_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"nutrify/diet-tracker/internal/domain"
	"nutrify/diet-tracker/internal/logging"
	"nutrify/diet-tracker/internal/mocks"
	"nutrify/diet-tracker/internal/repository"
	"nutrify/diet-tracker/internal/service"
	"nutrify/diet-tracker/internal/storage"
)

type foodLogDeps struct {
	logs     *mocks.MockFoodLogRepository
	photos   *mocks.MockFoodPhotoRepository
	users    *mocks.MockUserRepository
	advisor  *mocks.MockAdvisorService
	files    *mocks.MockFileStorage
	notifier *mocks.MockNotifier
}

func newFoodLogService(t *testing.T, withStorage bool) (service.FoodLogService, *foodLogDeps) {
	t.Helper()
	d := &foodLogDeps{
		logs:     new(mocks.MockFoodLogRepository),
		photos:   new(mocks.MockFoodPhotoRepository),
		users:    new(mocks.MockUserRepository),
		advisor:  new(mocks.MockAdvisorService),
		files:    new(mocks.MockFileStorage),
		notifier: new(mocks.MockNotifier),
	}
	d.notifier.On("Notify", mock.Anything, mock.Anything).Return(true).Maybe()

	var files storage.FileStorage
	if withStorage {
		files = d.files
	}
	loc := time.FixedZone("IST", 5*3600+30*60)
	svc := service.NewFoodLogService(d.logs, d.photos, d.users, d.advisor, files, d.notifier, loc, logging.Discard())
	return svc, d
}

func intPtr(v int) *int { return &v }

func TestLogFood_EstimatesMissingMacros(t *testing.T) {
	svc, d := newFoodLogService(t, false)
	userID := primitive.NewObjectID()
	est := domain.Macros{Calories: 300, Protein: 15, Carbs: 38, Fat: 10}

	d.advisor.On("EstimateFood", mock.Anything, "Idli", 2.0, domain.UnitPieces).Return(est, domain.SourceEstimate)
	d.logs.On("Create", mock.Anything, mock.AnythingOfType("*domain.FoodLogEntry")).Return(primitive.NewObjectID(), nil)

	entry, err := svc.LogFood(context.Background(), userID, service.FoodLogInput{
		MealType: domain.MealBreakfast,
		FoodName: " Idli ",
		Quantity: 2,
		Unit:     domain.UnitPieces,
	})
	require.NoError(t, err)
	assert.Equal(t, "Idli", entry.FoodName)
	assert.Equal(t, est, entry.Macros())
	assert.Equal(t, domain.SourceEstimate, entry.NutritionSource)
	assert.False(t, entry.Date.IsZero())
	d.notifier.AssertCalled(t, "Notify", mock.Anything, mock.MatchedBy(func(ev domain.Event) bool {
		return ev.Type == domain.EventFoodLogUpdated && ev.UserID == userID.Hex()
	}))
}

func TestLogFood_KeepsUserMacros(t *testing.T) {
	svc, d := newFoodLogService(t, false)
	d.logs.On("Create", mock.Anything, mock.Anything).Return(primitive.NewObjectID(), nil)

	entry, err := svc.LogFood(context.Background(), primitive.NewObjectID(), service.FoodLogInput{
		MealType: domain.MealLunch,
		FoodName: "Paneer tikka",
		Calories: intPtr(420),
		Protein:  intPtr(25),
		Carbs:    intPtr(12),
		Fat:      intPtr(0),
	})
	require.NoError(t, err)
	assert.Equal(t, domain.Macros{Calories: 420, Protein: 25, Carbs: 12}, entry.Macros())
	assert.Equal(t, domain.SourceUser, entry.NutritionSource)
	assert.Equal(t, float64(service.DefaultQuantity), entry.Quantity)
	assert.Equal(t, service.DefaultUnit, entry.Unit)
	d.advisor.AssertNotCalled(t, "EstimateFood", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestLogFood_EstimatesOnlyMissingMacros(t *testing.T) {
	svc, d := newFoodLogService(t, false)
	d.advisor.On("EstimateFood", mock.Anything, "Paneer tikka", 1.0, domain.UnitPieces).
		Return(domain.Macros{Calories: 350, Protein: 22, Carbs: 10, Fat: 24}, domain.SourceAI).Once()
	d.logs.On("Create", mock.Anything, mock.Anything).Return(primitive.NewObjectID(), nil)

	entry, err := svc.LogFood(context.Background(), primitive.NewObjectID(), service.FoodLogInput{
		MealType: domain.MealLunch,
		FoodName: "Paneer tikka",
		Calories: intPtr(300),
	})
	require.NoError(t, err)
	assert.Equal(t, domain.Macros{Calories: 300, Protein: 22, Carbs: 10, Fat: 24}, entry.Macros())
	assert.Equal(t, domain.SourceUser, entry.NutritionSource)
	d.advisor.AssertExpectations(t)
}

func TestLogFood_Validation(t *testing.T) {
	svc, _ := newFoodLogService(t, false)
	cases := map[string]service.FoodLogInput{
		"meal type": {MealType: "brunch", FoodName: "Toast"},
		"food name": {MealType: domain.MealSnack},
		"quantity":  {MealType: domain.MealSnack, FoodName: "Nuts", Quantity: -1},
		"unit":      {MealType: domain.MealSnack, FoodName: "Nuts", Unit: "handfuls"},
		"too much":  {MealType: domain.MealSnack, FoodName: "Nuts", Quantity: 1e300, Unit: domain.UnitKilograms},
		"negative":  {MealType: domain.MealSnack, FoodName: "Nuts", Calories: intPtr(-5)},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.LogFood(context.Background(), primitive.NewObjectID(), in)
			assert.ErrorIs(t, err, service.ErrValidationFailed)
		})
	}
}

func TestTodayFoodLogs_UsesServiceTimezone(t *testing.T) {
	svc, d := newFoodLogService(t, false)
	userID := primitive.NewObjectID()

	var got domain.FoodLogFilter
	d.logs.On("Find", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { got = args.Get(1).(domain.FoodLogFilter) }).
		Return([]domain.FoodLogEntry{}, nil)

	_, err := svc.TodayFoodLogs(context.Background(), userID)
	require.NoError(t, err)
	require.NotNil(t, got.From)
	require.NotNil(t, got.To)
	assert.Equal(t, userID, got.UserID)
	assert.Equal(t, 0, got.From.Hour())
	assert.Equal(t, "IST", got.From.Location().String())
	assert.Equal(t, 24*time.Hour-time.Nanosecond, got.To.Sub(*got.From))
}

func TestListFoodLogs_Filters(t *testing.T) {
	svc, d := newFoodLogService(t, false)
	userID := primitive.NewObjectID()

	d.logs.On("Find", mock.Anything, mock.MatchedBy(func(f domain.FoodLogFilter) bool {
		return f.MealType == domain.MealDinner &&
			f.From != nil && f.From.Format(service.DateLayout) == "2026-03-01" &&
			f.To != nil && f.To.Format(service.DateLayout) == "2026-03-07" && f.To.Hour() == 23
	})).Return([]domain.FoodLogEntry{{FoodName: "Khichdi"}}, nil)

	entries, err := svc.ListFoodLogs(context.Background(), userID, service.FoodLogQuery{
		StartDate: "2026-03-01", EndDate: "2026-03-07", MealType: "dinner",
	})
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	_, err = svc.ListFoodLogs(context.Background(), userID, service.FoodLogQuery{StartDate: "03/01/2026"})
	assert.ErrorIs(t, err, service.ErrValidationFailed)
}

func TestNutritionSummary(t *testing.T) {
	svc, d := newFoodLogService(t, false)
	user := completeUser()
	user.DailyNutritionGoals = domain.NutritionGoals{Calories: 2000, Protein: 100, Carbs: 250, Fat: 60}

	d.users.On("GetByID", mock.Anything, user.ID).Return(user, nil)
	d.logs.On("Find", mock.Anything, mock.Anything).Return([]domain.FoodLogEntry{
		{MealType: domain.MealBreakfast, Calories: 400, Protein: 20, Carbs: 50, Fat: 10},
		{MealType: domain.MealLunch, Calories: 900, Protein: 40, Carbs: 100, Fat: 35},
		{MealType: domain.MealLunch, Calories: 900, Protein: 50, Carbs: 120, Fat: 30},
	}, nil)

	sum, err := svc.NutritionSummary(context.Background(), user.ID, "2026-03-02")
	require.NoError(t, err)
	assert.Equal(t, "2026-03-02", sum.Date)
	assert.Equal(t, 3, sum.EntryCount)
	assert.Equal(t, domain.Macros{Calories: 2200, Protein: 110, Carbs: 270, Fat: 75}, sum.Totals)
	assert.Equal(t, domain.Macros{Calories: 1800, Protein: 90, Carbs: 220, Fat: 65}, sum.ByMealType[domain.MealLunch])
	assert.Equal(t, domain.Macros{}, sum.ByMealType[domain.MealDinner])
	assert.Equal(t, domain.Macros{Calories: -200, Protein: -10, Carbs: -20, Fat: -15}, sum.Remaining)
}

func TestGetFoodLog_Ownership(t *testing.T) {
	svc, d := newFoodLogService(t, false)
	owner, other := primitive.NewObjectID(), primitive.NewObjectID()
	id, missing := primitive.NewObjectID(), primitive.NewObjectID()

	d.logs.On("GetByID", mock.Anything, id).Return(&domain.FoodLogEntry{ID: id, UserID: owner}, nil)
	d.logs.On("GetByID", mock.Anything, missing).Return(nil, repository.ErrNotFound)

	_, err := svc.GetFoodLog(context.Background(), other, id)
	assert.ErrorIs(t, err, service.ErrFoodLogAccessDenied)
	_, err = svc.GetFoodLog(context.Background(), owner, missing)
	assert.ErrorIs(t, err, service.ErrFoodLogNotFound)
	entry, err := svc.GetFoodLog(context.Background(), owner, id)
	require.NoError(t, err)
	assert.Equal(t, id, entry.ID)
}

func TestUpdateFoodLog_Reestimates(t *testing.T) {
	userID, id := primitive.NewObjectID(), primitive.NewObjectID()
	stored := func(src domain.Source) *domain.FoodLogEntry {
		return &domain.FoodLogEntry{
			ID: id, UserID: userID, MealType: domain.MealLunch, FoodName: "Rice",
			Quantity: 100, Unit: domain.UnitGrams, Calories: 150, NutritionSource: src,
		}
	}
	qty := 200.0

	t.Run("estimated entry is re-estimated when quantity changes", func(t *testing.T) {
		svc, d := newFoodLogService(t, false)
		d.logs.On("GetByID", mock.Anything, id).Return(stored(domain.SourceEstimate), nil)
		d.advisor.On("EstimateFood", mock.Anything, "Rice", 200.0, domain.UnitGrams).
			Return(domain.Macros{Calories: 300}, domain.SourceEstimate)
		d.logs.On("Update", mock.Anything, mock.Anything).Return(nil)

		entry, err := svc.UpdateFoodLog(context.Background(), userID, id, service.FoodLogUpdate{Quantity: &qty})
		require.NoError(t, err)
		assert.Equal(t, 300, entry.Calories)
	})

	t.Run("user values are kept", func(t *testing.T) {
		svc, d := newFoodLogService(t, false)
		d.logs.On("GetByID", mock.Anything, id).Return(stored(domain.SourceUser), nil)
		d.logs.On("Update", mock.Anything, mock.Anything).Return(nil)

		entry, err := svc.UpdateFoodLog(context.Background(), userID, id, service.FoodLogUpdate{Quantity: &qty})
		require.NoError(t, err)
		assert.Equal(t, 150, entry.Calories)
		d.advisor.AssertNotCalled(t, "EstimateFood", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("passed macros win over the new estimate", func(t *testing.T) {
		svc, d := newFoodLogService(t, false)
		d.logs.On("GetByID", mock.Anything, id).Return(stored(domain.SourceAI), nil)
		d.advisor.On("EstimateFood", mock.Anything, "Rice", 200.0, domain.UnitGrams).
			Return(domain.Macros{Calories: 300, Protein: 6, Carbs: 62, Fat: 1}, domain.SourceAI)
		d.logs.On("Update", mock.Anything, mock.Anything).Return(nil)

		entry, err := svc.UpdateFoodLog(context.Background(), userID, id, service.FoodLogUpdate{Quantity: &qty, Fat: intPtr(9)})
		require.NoError(t, err)
		assert.Equal(t, domain.Macros{Calories: 300, Protein: 6, Carbs: 62, Fat: 9}, entry.Macros())
		assert.Equal(t, domain.SourceUser, entry.NutritionSource)
	})

	t.Run("passed macros without a food change keep the stored ones", func(t *testing.T) {
		svc, d := newFoodLogService(t, false)
		d.logs.On("GetByID", mock.Anything, id).Return(stored(domain.SourceAI), nil)
		d.logs.On("Update", mock.Anything, mock.Anything).Return(nil)

		entry, err := svc.UpdateFoodLog(context.Background(), userID, id, service.FoodLogUpdate{Protein: intPtr(4)})
		require.NoError(t, err)
		assert.Equal(t, domain.Macros{Calories: 150, Protein: 4}, entry.Macros())
		d.advisor.AssertNotCalled(t, "EstimateFood", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestDeleteFoodLog_RemovesPhotoBestEffort(t *testing.T) {
	svc, d := newFoodLogService(t, true)
	userID, id, photoID := primitive.NewObjectID(), primitive.NewObjectID(), primitive.NewObjectID()

	d.logs.On("GetByID", mock.Anything, id).Return(&domain.FoodLogEntry{ID: id, UserID: userID, PhotoID: &photoID}, nil)
	d.logs.On("Delete", mock.Anything, id, userID).Return(nil)
	d.photos.On("GetByID", mock.Anything, photoID).Return(&domain.FoodPhoto{ID: photoID, S3ObjectKey: "food-photos/k.jpg"}, nil)
	d.files.On("DeleteObject", mock.Anything, "food-photos/k.jpg").Return(errors.New("s3 down"))

	require.NoError(t, svc.DeleteFoodLog(context.Background(), userID, id))
	d.photos.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestPhotoFlow(t *testing.T) {
	userID, id := primitive.NewObjectID(), primitive.NewObjectID()
	entry := func() *domain.FoodLogEntry { return &domain.FoodLogEntry{ID: id, UserID: userID} }

	t.Run("disabled without storage", func(t *testing.T) {
		svc, _ := newFoodLogService(t, false)
		_, err := svc.RequestPhotoUploadURL(context.Background(), userID, id, "image/jpeg")
		assert.ErrorIs(t, err, service.ErrPhotoStorageDisabled)
	})

	t.Run("upload url", func(t *testing.T) {
		svc, d := newFoodLogService(t, true)
		d.logs.On("GetByID", mock.Anything, id).Return(entry(), nil)
		d.files.On("GeneratePresignedUploadURL", mock.Anything, mock.Anything, "image/jpeg", storage.DefaultPresignedURLExpiry).
			Return("https://s3.example/put", nil)

		res, err := svc.RequestPhotoUploadURL(context.Background(), userID, id, "image/jpeg")
		require.NoError(t, err)
		assert.Equal(t, "https://s3.example/put", res.UploadURL)
		assert.True(t, storage.PhotoKeyBelongsTo(res.ObjectKey, userID.Hex(), id.Hex()))

		_, err = svc.RequestPhotoUploadURL(context.Background(), userID, id, "video/mp4")
		assert.ErrorIs(t, err, service.ErrValidationFailed)
	})

	t.Run("confirm", func(t *testing.T) {
		svc, d := newFoodLogService(t, true)
		key := storage.PhotoObjectKey(userID.Hex(), id.Hex(), "image/png")
		photoID := primitive.NewObjectID()

		d.logs.On("GetByID", mock.Anything, id).Return(entry(), nil)
		d.files.On("ObjectExists", mock.Anything, key).Return(true, nil)
		d.photos.On("GetByFoodLogID", mock.Anything, id).Return(nil, repository.ErrNotFound)
		d.photos.On("Create", mock.Anything, mock.AnythingOfType("*domain.FoodPhoto")).Return(photoID, nil)
		d.logs.On("SetPhoto", mock.Anything, id, &photoID).Return(nil)

		photo, err := svc.ConfirmPhoto(context.Background(), userID, id, key, "lunch.png", 2048, "image/png")
		require.NoError(t, err)
		assert.Equal(t, photoID, photo.ID)
		assert.Equal(t, key, photo.S3ObjectKey)

		_, err = svc.ConfirmPhoto(context.Background(), userID, id, "food-photos/someone-else/x.png", "x.png", 1, "image/png")
		assert.ErrorIs(t, err, service.ErrValidationFailed)
	})

	t.Run("confirm replaces the previous photo", func(t *testing.T) {
		svc, d := newFoodLogService(t, true)
		key := storage.PhotoObjectKey(userID.Hex(), id.Hex(), "image/png")
		oldID, photoID := primitive.NewObjectID(), primitive.NewObjectID()
		withPhoto := entry()
		withPhoto.PhotoID = &oldID

		d.logs.On("GetByID", mock.Anything, id).Return(withPhoto, nil)
		d.files.On("ObjectExists", mock.Anything, key).Return(true, nil)
		d.photos.On("GetByFoodLogID", mock.Anything, id).
			Return(&domain.FoodPhoto{ID: oldID, FoodLogID: id, S3ObjectKey: "food-photos/old.png"}, nil)
		d.files.On("DeleteObject", mock.Anything, "food-photos/old.png").Return(errors.New("s3 down"))
		d.photos.On("Delete", mock.Anything, oldID).Return(nil).Once()
		d.photos.On("Create", mock.Anything, mock.AnythingOfType("*domain.FoodPhoto")).Return(photoID, nil)
		d.logs.On("SetPhoto", mock.Anything, id, &photoID).Return(nil)

		photo, err := svc.ConfirmPhoto(context.Background(), userID, id, key, "dinner.png", 1024, "image/png")
		require.NoError(t, err)
		assert.Equal(t, photoID, photo.ID)
		d.photos.AssertExpectations(t)
	})

	t.Run("confirming the same key again keeps the object", func(t *testing.T) {
		svc, d := newFoodLogService(t, true)
		key := storage.PhotoObjectKey(userID.Hex(), id.Hex(), "image/png")
		oldID, photoID := primitive.NewObjectID(), primitive.NewObjectID()

		d.logs.On("GetByID", mock.Anything, id).Return(entry(), nil)
		d.files.On("ObjectExists", mock.Anything, key).Return(true, nil)
		d.photos.On("GetByFoodLogID", mock.Anything, id).Return(&domain.FoodPhoto{ID: oldID, S3ObjectKey: key}, nil)
		d.photos.On("Delete", mock.Anything, oldID).Return(nil)
		d.photos.On("Create", mock.Anything, mock.Anything).Return(photoID, nil)
		d.logs.On("SetPhoto", mock.Anything, id, &photoID).Return(nil)

		_, err := svc.ConfirmPhoto(context.Background(), userID, id, key, "lunch.png", 2048, "image/png")
		require.NoError(t, err)
		d.files.AssertNotCalled(t, "DeleteObject", mock.Anything, mock.Anything)
	})

	t.Run("stale photo record that cannot be removed", func(t *testing.T) {
		svc, d := newFoodLogService(t, true)
		key := storage.PhotoObjectKey(userID.Hex(), id.Hex(), "image/png")
		oldID := primitive.NewObjectID()

		d.logs.On("GetByID", mock.Anything, id).Return(entry(), nil)
		d.files.On("ObjectExists", mock.Anything, key).Return(true, nil)
		d.photos.On("GetByFoodLogID", mock.Anything, id).Return(&domain.FoodPhoto{ID: oldID, S3ObjectKey: "food-photos/old.png"}, nil)
		d.files.On("DeleteObject", mock.Anything, "food-photos/old.png").Return(storage.ErrObjectNotFound)
		d.photos.On("Delete", mock.Anything, oldID).Return(errors.New("mongo down"))

		_, err := svc.ConfirmPhoto(context.Background(), userID, id, key, "lunch.png", 2048, "image/png")
		require.Error(t, err)
		d.photos.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("confirm before upload", func(t *testing.T) {
		svc, d := newFoodLogService(t, true)
		key := storage.PhotoObjectKey(userID.Hex(), id.Hex(), "image/png")
		d.logs.On("GetByID", mock.Anything, id).Return(entry(), nil)
		d.files.On("ObjectExists", mock.Anything, key).Return(false, nil)

		_, err := svc.ConfirmPhoto(context.Background(), userID, id, key, "lunch.png", 2048, "image/png")
		assert.ErrorIs(t, err, service.ErrPhotoNotUploaded)
		d.photos.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("delete photo whose object is already gone", func(t *testing.T) {
		svc, d := newFoodLogService(t, true)
		photoID := primitive.NewObjectID()
		withPhoto := entry()
		withPhoto.PhotoID = &photoID

		d.logs.On("GetByID", mock.Anything, id).Return(withPhoto, nil)
		d.logs.On("SetPhoto", mock.Anything, id, (*primitive.ObjectID)(nil)).Return(nil)
		d.photos.On("GetByID", mock.Anything, photoID).Return(&domain.FoodPhoto{ID: photoID, S3ObjectKey: "k"}, nil)
		d.files.On("DeleteObject", mock.Anything, "k").Return(fmt.Errorf("%w: k", storage.ErrObjectNotFound))
		d.photos.On("Delete", mock.Anything, photoID).Return(nil).Once()

		require.NoError(t, svc.DeletePhoto(context.Background(), userID, id))
		d.photos.AssertExpectations(t)
	})

	t.Run("download url", func(t *testing.T) {
		svc, d := newFoodLogService(t, true)
		photoID := primitive.NewObjectID()
		withPhoto := entry()
		withPhoto.PhotoID = &photoID

		d.logs.On("GetByID", mock.Anything, id).Return(withPhoto, nil)
		d.photos.On("GetByID", mock.Anything, photoID).Return(&domain.FoodPhoto{ID: photoID, S3ObjectKey: "k"}, nil)
		d.files.On("GeneratePresignedDownloadURL", mock.Anything, "k", storage.DefaultPresignedURLExpiry).Return("https://s3.example/get", nil)

		url, err := svc.GetPhotoURL(context.Background(), userID, id)
		require.NoError(t, err)
		assert.Equal(t, "https://s3.example/get", url)
	})
}
