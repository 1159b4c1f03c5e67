package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"nutrify/diet-tracker/internal/domain"
	"nutrify/diet-tracker/internal/service"
)

// FoodLogHandler holds the food log service dependency.
type FoodLogHandler struct {
	foodLogService service.FoodLogService
}

// NewFoodLogHandler creates a new FoodLogHandler.
func NewFoodLogHandler(foodLogService service.FoodLogService) *FoodLogHandler {
	return &FoodLogHandler{foodLogService: foodLogService}
}

// --- DTOs for API (Data Transfer Objects) ---

// CreateFoodLogRequest defines the expected JSON for logging a food.
// Omitted nutrition values are estimated by the server.
type CreateFoodLogRequest struct {
	MealType string     `json:"mealType" binding:"required,oneof=breakfast lunch dinner snack"`
	FoodName string     `json:"foodName" binding:"required"`
	Quantity float64    `json:"quantity" binding:"omitempty,gt=0,max=100000"`
	Unit     string     `json:"unit"`
	Calories *int       `json:"calories" binding:"omitempty,min=0"`
	Protein  *int       `json:"protein" binding:"omitempty,min=0"`
	Carbs    *int       `json:"carbs" binding:"omitempty,min=0"`
	Fat      *int       `json:"fat" binding:"omitempty,min=0"`
	Notes    string     `json:"notes"`
	Date     *time.Time `json:"date"`
}

// UpdateFoodLogRequest edits an entry. Absent fields are kept.
type UpdateFoodLogRequest struct {
	MealType *string    `json:"mealType" binding:"omitempty,oneof=breakfast lunch dinner snack"`
	FoodName *string    `json:"foodName"`
	Quantity *float64   `json:"quantity" binding:"omitempty,gt=0,max=100000"`
	Unit     *string    `json:"unit"`
	Calories *int       `json:"calories" binding:"omitempty,min=0"`
	Protein  *int       `json:"protein" binding:"omitempty,min=0"`
	Carbs    *int       `json:"carbs" binding:"omitempty,min=0"`
	Fat      *int       `json:"fat" binding:"omitempty,min=0"`
	Notes    *string    `json:"notes"`
	Date     *time.Time `json:"date"`
}

type PhotoUploadURLRequest struct {
	ContentType string `json:"contentType" binding:"required"`
}

type ConfirmPhotoRequest struct {
	ObjectKey   string `json:"objectKey" binding:"required"`
	FileName    string `json:"fileName" binding:"required"`
	Size        int64  `json:"size" binding:"min=0"`
	ContentType string `json:"contentType" binding:"required"`
}

// FoodLogResponse is the DTO for returning a food log entry.
type FoodLogResponse struct {
	ID              string          `json:"id"`
	UserID          string          `json:"userId"`
	MealType        domain.MealType `json:"mealType"`
	FoodName        string          `json:"foodName"`
	Quantity        float64         `json:"quantity"`
	Unit            domain.Unit     `json:"unit"`
	Calories        int             `json:"calories"`
	Protein         int             `json:"protein"`
	Carbs           int             `json:"carbs"`
	Fat             int             `json:"fat"`
	NutritionSource domain.Source   `json:"nutritionSource"`
	Notes           string          `json:"notes,omitempty"`
	Date            time.Time       `json:"date"`
	HasPhoto        bool            `json:"hasPhoto"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// MapFoodLogToResponse converts a domain.FoodLogEntry to FoodLogResponse DTO.
func MapFoodLogToResponse(e *domain.FoodLogEntry) FoodLogResponse {
	if e == nil {
		return FoodLogResponse{}
	}
	return FoodLogResponse{
		ID:              e.ID.Hex(),
		UserID:          e.UserID.Hex(),
		MealType:        e.MealType,
		FoodName:        e.FoodName,
		Quantity:        e.Quantity,
		Unit:            e.Unit,
		Calories:        e.Calories,
		Protein:         e.Protein,
		Carbs:           e.Carbs,
		Fat:             e.Fat,
		NutritionSource: e.NutritionSource,
		Notes:           e.Notes,
		Date:            e.Date,
		HasPhoto:        e.PhotoID != nil,
		CreatedAt:       e.CreatedAt,
		UpdatedAt:       e.UpdatedAt,
	}
}

// MapFoodLogsToResponse converts a slice of entries.
func MapFoodLogsToResponse(entries []domain.FoodLogEntry) []FoodLogResponse {
	responses := make([]FoodLogResponse, len(entries))
	for i := range entries {
		responses[i] = MapFoodLogToResponse(&entries[i])
	}
	return responses
}

// --- Handler Methods ---

// LogFood godoc
// @Summary Log a food
// @Description Creates a food log entry. Missing nutrition values are estimated.
// @Tags FoodLog
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param entry body CreateFoodLogRequest true "Food log entry"
// @Success 201 {object} FoodLogResponse "Entry created"
// @Failure 400 {object} gin.H "Invalid input (validation error)"
// @Router /food-log [post]
func (h *FoodLogHandler) LogFood(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	var req CreateFoodLogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	entry, err := h.foodLogService.LogFood(c.Request.Context(), userID, service.FoodLogInput{
		MealType: domain.MealType(req.MealType),
		FoodName: req.FoodName,
		Quantity: req.Quantity,
		Unit:     domain.Unit(req.Unit),
		Calories: req.Calories,
		Protein:  req.Protein,
		Carbs:    req.Carbs,
		Fat:      req.Fat,
		Notes:    req.Notes,
		Date:     req.Date,
	})
	if err != nil {
		respondError(c, err, "Failed to log food.")
		return
	}
	c.JSON(http.StatusCreated, MapFoodLogToResponse(entry))
}

// ListFoodLogs godoc
// @Summary List food log entries
// @Tags FoodLog
// @Security BearerAuth
// @Param startDate query string false "YYYY-MM-DD, inclusive"
// @Param endDate query string false "YYYY-MM-DD, inclusive"
// @Param mealType query string false "breakfast, lunch, dinner or snack"
// @Router /food-log [get]
func (h *FoodLogHandler) ListFoodLogs(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	entries, err := h.foodLogService.ListFoodLogs(c.Request.Context(), userID, service.FoodLogQuery{
		StartDate: c.Query("startDate"),
		EndDate:   c.Query("endDate"),
		MealType:  c.Query("mealType"),
	})
	if err != nil {
		respondError(c, err, "Failed to retrieve food logs.")
		return
	}
	c.JSON(http.StatusOK, MapFoodLogsToResponse(entries))
}

func (h *FoodLogHandler) TodayFoodLogs(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	entries, err := h.foodLogService.TodayFoodLogs(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err, "Failed to retrieve food logs.")
		return
	}
	c.JSON(http.StatusOK, MapFoodLogsToResponse(entries))
}

// NutritionSummary totals a day against the caller's goals. ?date defaults to today.
func (h *FoodLogHandler) NutritionSummary(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	summary, err := h.foodLogService.NutritionSummary(c.Request.Context(), userID, c.Query("date"))
	if err != nil {
		respondError(c, err, "Failed to build nutrition summary.")
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (h *FoodLogHandler) GetFoodLog(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	id, ok := pathObjectID(c, "id")
	if !ok {
		return
	}
	entry, err := h.foodLogService.GetFoodLog(c.Request.Context(), userID, id)
	if err != nil {
		respondError(c, err, "Failed to retrieve food log.")
		return
	}
	c.JSON(http.StatusOK, MapFoodLogToResponse(entry))
}

func (h *FoodLogHandler) UpdateFoodLog(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	id, ok := pathObjectID(c, "id")
	if !ok {
		return
	}
	var req UpdateFoodLogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	upd := service.FoodLogUpdate{
		FoodName: req.FoodName,
		Quantity: req.Quantity,
		Calories: req.Calories,
		Protein:  req.Protein,
		Carbs:    req.Carbs,
		Fat:      req.Fat,
		Notes:    req.Notes,
		Date:     req.Date,
	}
	if req.MealType != nil {
		mt := domain.MealType(*req.MealType)
		upd.MealType = &mt
	}
	if req.Unit != nil {
		u := domain.Unit(*req.Unit)
		upd.Unit = &u
	}

	entry, err := h.foodLogService.UpdateFoodLog(c.Request.Context(), userID, id, upd)
	if err != nil {
		respondError(c, err, "Failed to update food log.")
		return
	}
	c.JSON(http.StatusOK, MapFoodLogToResponse(entry))
}

func (h *FoodLogHandler) DeleteFoodLog(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	id, ok := pathObjectID(c, "id")
	if !ok {
		return
	}
	if err := h.foodLogService.DeleteFoodLog(c.Request.Context(), userID, id); err != nil {
		respondError(c, err, "Failed to delete food log.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Food log removed"})
}

// --- Meal photos ---

// RequestPhotoUploadURL godoc
// @Summary Get a presigned upload URL for a meal photo
// @Tags FoodLog
// @Security BearerAuth
// @Param request body PhotoUploadURLRequest true "Content type of the image"
// @Success 200 {object} service.PhotoUploadURL
// @Failure 503 {object} gin.H "Photo storage not configured"
// @Router /food-log/{id}/photo/upload-url [post]
func (h *FoodLogHandler) RequestPhotoUploadURL(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	id, ok := pathObjectID(c, "id")
	if !ok {
		return
	}
	var req PhotoUploadURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	res, err := h.foodLogService.RequestPhotoUploadURL(c.Request.Context(), userID, id, req.ContentType)
	if err != nil {
		respondError(c, err, "Failed to generate upload URL.")
		return
	}
	c.JSON(http.StatusOK, res)
}

// ConfirmPhoto links an uploaded object to the entry.
func (h *FoodLogHandler) ConfirmPhoto(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	id, ok := pathObjectID(c, "id")
	if !ok {
		return
	}
	var req ConfirmPhotoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	photo, err := h.foodLogService.ConfirmPhoto(c.Request.Context(), userID, id, req.ObjectKey, req.FileName, req.Size, req.ContentType)
	if err != nil {
		respondError(c, err, "Failed to save photo.")
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"id":          photo.ID.Hex(),
		"foodLogId":   photo.FoodLogID.Hex(),
		"fileName":    photo.FileName,
		"contentType": photo.ContentType,
		"size":        photo.Size,
	})
}

func (h *FoodLogHandler) GetPhotoURL(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	id, ok := pathObjectID(c, "id")
	if !ok {
		return
	}
	url, err := h.foodLogService.GetPhotoURL(c.Request.Context(), userID, id)
	if err != nil {
		respondError(c, err, "Failed to generate download URL.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"downloadUrl": url})
}

func (h *FoodLogHandler) DeletePhoto(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	id, ok := pathObjectID(c, "id")
	if !ok {
		return
	}
	if err := h.foodLogService.DeletePhoto(c.Request.Context(), userID, id); err != nil {
		respondError(c, err, "Failed to delete photo.")
		return
	}
	c.Status(http.StatusNoContent)
}
