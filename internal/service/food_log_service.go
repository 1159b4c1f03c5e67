package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"nutrify/diet-tracker/internal/domain"
	"nutrify/diet-tracker/internal/logging"
	"nutrify/diet-tracker/internal/repository"
	"nutrify/diet-tracker/internal/storage"
)

var (
	ErrFoodLogNotFound     = errors.New("food log not found")
	ErrFoodLogAccessDenied = errors.New("not authorized to access this food log")
)

// DateLayout is the calendar date format of query parameters.
const DateLayout = "2006-01-02"

// Defaults for entries logged without a quantity.
const (
	DefaultQuantity = 1
	DefaultUnit     = domain.UnitPieces
)

// FoodEstimator fills in nutrition values for a food.
type FoodEstimator interface {
	EstimateFood(ctx context.Context, foodName string, quantity float64, unit domain.Unit) (domain.Macros, domain.Source)
}

// FoodLogInput is a new entry. Nil macros are estimated and the given ones
// are kept as sent.
type FoodLogInput struct {
	MealType domain.MealType
	FoodName string
	Quantity float64
	Unit     domain.Unit
	Calories *int
	Protein  *int
	Carbs    *int
	Fat      *int
	Notes    string
	Date     *time.Time
}

// FoodLogUpdate carries the fields of an entry edit. Nil means "keep".
type FoodLogUpdate struct {
	MealType *domain.MealType
	FoodName *string
	Quantity *float64
	Unit     *domain.Unit
	Calories *int
	Protein  *int
	Carbs    *int
	Fat      *int
	Notes    *string
	Date     *time.Time
}

// macroOverlay holds nutrition values sent by the caller. Nil fields are unknown.
type macroOverlay struct {
	Calories, Protein, Carbs, Fat *int
}

func (o macroOverlay) any() bool {
	return o.Calories != nil || o.Protein != nil || o.Carbs != nil || o.Fat != nil
}

func (o macroOverlay) complete() bool {
	return o.Calories != nil && o.Protein != nil && o.Carbs != nil && o.Fat != nil
}

// apply returns base with every sent field replaced.
func (o macroOverlay) apply(base domain.Macros) domain.Macros {
	if o.Calories != nil {
		base.Calories = *o.Calories
	}
	if o.Protein != nil {
		base.Protein = *o.Protein
	}
	if o.Carbs != nil {
		base.Carbs = *o.Carbs
	}
	if o.Fat != nil {
		base.Fat = *o.Fat
	}
	return base
}

// FoodLogQuery filters a listing. Dates are calendar days in the service timezone.
type FoodLogQuery struct {
	StartDate string
	EndDate   string
	MealType  string
}

// PhotoUploadURL is returned to the client for a direct upload.
type PhotoUploadURL struct {
	UploadURL string `json:"uploadUrl"`
	ObjectKey string `json:"objectKey"` // reported back on confirm
}

type FoodLogService interface {
	LogFood(ctx context.Context, userID primitive.ObjectID, in FoodLogInput) (*domain.FoodLogEntry, error)
	ListFoodLogs(ctx context.Context, userID primitive.ObjectID, q FoodLogQuery) ([]domain.FoodLogEntry, error)
	TodayFoodLogs(ctx context.Context, userID primitive.ObjectID) ([]domain.FoodLogEntry, error)
	NutritionSummary(ctx context.Context, userID primitive.ObjectID, date string) (*domain.NutritionSummary, error)
	GetFoodLog(ctx context.Context, userID, id primitive.ObjectID) (*domain.FoodLogEntry, error)
	UpdateFoodLog(ctx context.Context, userID, id primitive.ObjectID, upd FoodLogUpdate) (*domain.FoodLogEntry, error)
	DeleteFoodLog(ctx context.Context, userID, id primitive.ObjectID) error

	// Meal photos
	RequestPhotoUploadURL(ctx context.Context, userID, id primitive.ObjectID, contentType string) (*PhotoUploadURL, error)
	ConfirmPhoto(ctx context.Context, userID, id primitive.ObjectID, objectKey, fileName string, size int64, contentType string) (*domain.FoodPhoto, error)
	GetPhotoURL(ctx context.Context, userID, id primitive.ObjectID) (string, error)
	DeletePhoto(ctx context.Context, userID, id primitive.ObjectID) error
}

type foodLogService struct {
	logRepo     repository.FoodLogRepository
	photoRepo   repository.FoodPhotoRepository
	userRepo    repository.UserRepository
	estimator   FoodEstimator
	fileStorage storage.FileStorage // nil when photos are disabled
	notifier    EventNotifier
	loc         *time.Location
	now         func() time.Time
	log         *slog.Logger
}

// NewFoodLogService creates the food log service. fileStorage and notifier may be nil.
func NewFoodLogService(
	logRepo repository.FoodLogRepository,
	photoRepo repository.FoodPhotoRepository,
	userRepo repository.UserRepository,
	estimator FoodEstimator,
	fileStorage storage.FileStorage,
	notifier EventNotifier,
	loc *time.Location,
	log *slog.Logger,
) FoodLogService {
	if loc == nil {
		loc = time.UTC
	}
	return &foodLogService{
		logRepo:     logRepo,
		photoRepo:   photoRepo,
		userRepo:    userRepo,
		estimator:   estimator,
		fileStorage: fileStorage,
		notifier:    notifier,
		loc:         loc,
		now:         time.Now,
		log:         log,
	}
}

func (s *foodLogService) LogFood(ctx context.Context, userID primitive.ObjectID, in FoodLogInput) (*domain.FoodLogEntry, error) {
	entry := &domain.FoodLogEntry{
		UserID:   userID,
		MealType: in.MealType,
		FoodName: strings.TrimSpace(in.FoodName),
		Quantity: in.Quantity,
		Unit:     in.Unit,
		Notes:    in.Notes,
	}
	if entry.Quantity == 0 {
		entry.Quantity = DefaultQuantity
	}
	if entry.Unit == "" {
		entry.Unit = DefaultUnit
	}
	if in.Date != nil {
		entry.Date = *in.Date
	} else {
		entry.Date = s.now()
	}
	if err := validateEntry(entry); err != nil {
		return nil, err
	}

	sent := macroOverlay{Calories: in.Calories, Protein: in.Protein, Carbs: in.Carbs, Fat: in.Fat}
	if err := validateMacros(sent.apply(domain.Macros{})); err != nil {
		return nil, err
	}
	switch {
	case sent.complete():
		entry.SetMacros(sent.apply(domain.Macros{}), domain.SourceUser)
	case sent.any():
		// Entries holding user values are never re-estimated later.
		est, _ := s.estimator.EstimateFood(ctx, entry.FoodName, entry.Quantity, entry.Unit)
		entry.SetMacros(sent.apply(est), domain.SourceUser)
	default:
		entry.SetMacros(s.estimator.EstimateFood(ctx, entry.FoodName, entry.Quantity, entry.Unit))
	}

	id, err := s.logRepo.Create(ctx, entry)
	if err != nil {
		return nil, err
	}
	entry.ID = id

	s.emit(ctx, userID, "created", entry)
	return entry, nil
}

func (s *foodLogService) ListFoodLogs(ctx context.Context, userID primitive.ObjectID, q FoodLogQuery) ([]domain.FoodLogEntry, error) {
	filter := domain.FoodLogFilter{UserID: userID}
	if q.StartDate != "" {
		from, err := s.parseDate(q.StartDate)
		if err != nil {
			return nil, err
		}
		filter.From = &from
	}
	if q.EndDate != "" {
		day, err := s.parseDate(q.EndDate)
		if err != nil {
			return nil, err
		}
		to := endOfDay(day)
		filter.To = &to
	}
	if q.MealType != "" {
		mt := domain.MealType(q.MealType)
		if !mt.Valid() {
			return nil, fmt.Errorf("%w: unknown meal type %q", ErrValidationFailed, q.MealType)
		}
		filter.MealType = mt
	}
	return s.logRepo.Find(ctx, filter)
}

func (s *foodLogService) TodayFoodLogs(ctx context.Context, userID primitive.ObjectID) ([]domain.FoodLogEntry, error) {
	from, to := s.dayBounds(s.now())
	return s.logRepo.Find(ctx, domain.FoodLogFilter{UserID: userID, From: &from, To: &to})
}

// NutritionSummary totals one calendar day; an empty date means today.
func (s *foodLogService) NutritionSummary(ctx context.Context, userID primitive.ObjectID, date string) (*domain.NutritionSummary, error) {
	day := s.now()
	if date != "" {
		var err error
		if day, err = s.parseDate(date); err != nil {
			return nil, err
		}
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	from, to := s.dayBounds(day)
	entries, err := s.logRepo.Find(ctx, domain.FoodLogFilter{UserID: userID, From: &from, To: &to})
	if err != nil {
		return nil, err
	}
	return Summarize(from.Format(DateLayout), entries, user.DailyNutritionGoals), nil
}

// Summarize aggregates entries against goals.
func Summarize(date string, entries []domain.FoodLogEntry, goals domain.NutritionGoals) *domain.NutritionSummary {
	sum := &domain.NutritionSummary{
		Date:       date,
		ByMealType: make(map[domain.MealType]domain.Macros, len(domain.MealTypes)),
		EntryCount: len(entries),
		Goals:      goals,
	}
	for _, mt := range domain.MealTypes {
		sum.ByMealType[mt] = domain.Macros{}
	}
	for i := range entries {
		m := entries[i].Macros()
		sum.Totals = sum.Totals.Add(m)
		sum.ByMealType[entries[i].MealType] = sum.ByMealType[entries[i].MealType].Add(m)
	}
	sum.Remaining = domain.Macros{
		Calories: goals.Calories - sum.Totals.Calories,
		Protein:  goals.Protein - sum.Totals.Protein,
		Carbs:    goals.Carbs - sum.Totals.Carbs,
		Fat:      goals.Fat - sum.Totals.Fat,
	}
	return sum
}

func (s *foodLogService) GetFoodLog(ctx context.Context, userID, id primitive.ObjectID) (*domain.FoodLogEntry, error) {
	entry, err := s.logRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrFoodLogNotFound
		}
		return nil, err
	}
	if entry.UserID != userID {
		return nil, ErrFoodLogAccessDenied
	}
	return entry, nil
}

func (s *foodLogService) UpdateFoodLog(ctx context.Context, userID, id primitive.ObjectID, upd FoodLogUpdate) (*domain.FoodLogEntry, error) {
	entry, err := s.GetFoodLog(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	foodChanged := false
	if upd.MealType != nil && *upd.MealType != "" {
		entry.MealType = *upd.MealType
	}
	if upd.FoodName != nil && strings.TrimSpace(*upd.FoodName) != "" && strings.TrimSpace(*upd.FoodName) != entry.FoodName {
		entry.FoodName = strings.TrimSpace(*upd.FoodName)
		foodChanged = true
	}
	if upd.Quantity != nil && *upd.Quantity != entry.Quantity {
		entry.Quantity = *upd.Quantity
		foodChanged = true
	}
	if upd.Unit != nil && *upd.Unit != "" && *upd.Unit != entry.Unit {
		entry.Unit = *upd.Unit
		foodChanged = true
	}
	if upd.Notes != nil {
		entry.Notes = *upd.Notes
	}
	if upd.Date != nil {
		entry.Date = *upd.Date
	}
	if err := validateEntry(entry); err != nil {
		return nil, err
	}

	sent := macroOverlay{Calories: upd.Calories, Protein: upd.Protein, Carbs: upd.Carbs, Fat: upd.Fat}
	if err := validateMacros(sent.apply(domain.Macros{})); err != nil {
		return nil, err
	}
	reestimate := foodChanged && entry.NutritionSource != domain.SourceUser
	switch {
	case sent.any():
		base := entry.Macros()
		if reestimate && !sent.complete() {
			base, _ = s.estimator.EstimateFood(ctx, entry.FoodName, entry.Quantity, entry.Unit)
		}
		entry.SetMacros(sent.apply(base), domain.SourceUser)
	case reestimate:
		entry.SetMacros(s.estimator.EstimateFood(ctx, entry.FoodName, entry.Quantity, entry.Unit))
	}

	if err := s.logRepo.Update(ctx, entry); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrFoodLogNotFound
		}
		return nil, err
	}

	s.emit(ctx, userID, "updated", entry)
	return entry, nil
}

// DeleteFoodLog removes the entry. Its photo is removed best effort.
func (s *foodLogService) DeleteFoodLog(ctx context.Context, userID, id primitive.ObjectID) error {
	entry, err := s.GetFoodLog(ctx, userID, id)
	if err != nil {
		return err
	}
	if err := s.logRepo.Delete(ctx, id, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrFoodLogNotFound
		}
		return err
	}

	if entry.PhotoID != nil {
		if err := s.removePhoto(ctx, *entry.PhotoID); err != nil {
			logging.From(ctx, s.log).Warn("failed to remove photo of deleted food log",
				slog.String("food_log_id", id.Hex()), logging.Err(err))
		}
	}

	s.emit(ctx, userID, "deleted", entry)
	return nil
}

func (s *foodLogService) emit(ctx context.Context, userID primitive.ObjectID, action string, entry *domain.FoodLogEntry) {
	if s.notifier == nil {
		return
	}
	s.notifier.Notify(ctx, domain.Event{
		Type:    domain.EventFoodLogUpdated,
		UserID:  userID.Hex(),
		Field:   FieldFoodLog,
		Payload: map[string]any{"action": action, "entry": entry},
	})
}

func (s *foodLogService) parseDate(v string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, v, s.loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date %q must be YYYY-MM-DD", ErrValidationFailed, v)
	}
	return t, nil
}

// dayBounds returns the first and last instant of t's calendar day in the
// service timezone.
func (s *foodLogService) dayBounds(t time.Time) (time.Time, time.Time) {
	t = t.In(s.loc)
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, s.loc)
	return start, endOfDay(start)
}

func endOfDay(start time.Time) time.Time {
	return start.AddDate(0, 0, 1).Add(-time.Nanosecond)
}

func validateEntry(e *domain.FoodLogEntry) error {
	switch {
	case !e.MealType.Valid():
		return fmt.Errorf("%w: mealType must be one of breakfast, lunch, dinner, snack", ErrValidationFailed)
	case e.FoodName == "":
		return fmt.Errorf("%w: foodName is required", ErrValidationFailed)
	case e.Quantity <= 0 || math.IsNaN(e.Quantity):
		return fmt.Errorf("%w: quantity must be positive", ErrValidationFailed)
	case e.Quantity > domain.MaxQuantity:
		return fmt.Errorf("%w: quantity cannot exceed %d", ErrValidationFailed, domain.MaxQuantity)
	case !e.Unit.Valid():
		return fmt.Errorf("%w: unknown unit %q", ErrValidationFailed, e.Unit)
	}
	return nil
}

func validateMacros(m domain.Macros) error {
	if m.Calories < 0 || m.Protein < 0 || m.Carbs < 0 || m.Fat < 0 {
		return fmt.Errorf("%w: nutrition values cannot be negative", ErrValidationFailed)
	}
	return nil
}
