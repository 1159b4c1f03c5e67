package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"nutrify/diet-tracker/internal/domain"
	"nutrify/diet-tracker/internal/service"
)

// DietPlanHandler serves diet plans and the AI backed goal and plan generation.
type DietPlanHandler struct {
	planService    service.DietPlanService
	advisorService service.AdvisorService
}

// NewDietPlanHandler creates a new DietPlanHandler.
func NewDietPlanHandler(planService service.DietPlanService, advisorService service.AdvisorService) *DietPlanHandler {
	return &DietPlanHandler{planService: planService, advisorService: advisorService}
}

// --- DTOs ---

// CreateDietPlanRequest is a manually composed plan.
type CreateDietPlanRequest struct {
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Days        []domain.DayPlan `json:"days" binding:"omitempty,max=7"`
}

// UpdateDietPlanRequest edits a plan. Absent fields are kept.
type UpdateDietPlanRequest struct {
	Title       *string           `json:"title"`
	Description *string           `json:"description"`
	Days        *[]domain.DayPlan `json:"days"`
}

type DietPlanResponse struct {
	ID          string           `json:"id"`
	UserID      string           `json:"userId"`
	Title       string           `json:"title"`
	Description string           `json:"description,omitempty"`
	Days        []domain.DayPlan `json:"days"`
	Source      domain.Source    `json:"source"`
	CreatedAt   time.Time        `json:"createdAt"`
	UpdatedAt   time.Time        `json:"updatedAt"`
}

// GeneratePlanResponse carries the plan together with the goals it was built for.
type GeneratePlanResponse struct {
	Plan           DietPlanResponse      `json:"dietPlan"`
	NutritionGoals domain.NutritionGoals `json:"nutritionGoals"`
	GoalsSource    domain.Source         `json:"goalsSource"`
	Created        bool                  `json:"created"`
}

// MapDietPlanToResponse converts a domain.DietPlan to DietPlanResponse DTO.
func MapDietPlanToResponse(p *domain.DietPlan) DietPlanResponse {
	if p == nil {
		return DietPlanResponse{}
	}
	days := p.Days
	if days == nil {
		days = []domain.DayPlan{}
	}
	return DietPlanResponse{
		ID:          p.ID.Hex(),
		UserID:      p.UserID.Hex(),
		Title:       p.Title,
		Description: p.Description,
		Days:        days,
		Source:      p.Source,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

// MapDietPlansToResponse converts a slice of plans.
func MapDietPlansToResponse(plans []domain.DietPlan) []DietPlanResponse {
	responses := make([]DietPlanResponse, len(plans))
	for i := range plans {
		responses[i] = MapDietPlanToResponse(&plans[i])
	}
	return responses
}

// --- Handler Methods ---

// CalculateNutritionGoals godoc
// @Summary Calculate daily nutrition goals
// @Description Asks the AI for goals and falls back to the BMR/TDEE formula. The result is stored on the profile.
// @Tags DietPlan
// @Security BearerAuth
// @Success 200 {object} service.GoalsResult
// @Failure 400 {object} gin.H "Profile incomplete"
// @Router /diet-plan/calculate-nutrition-goals [post]
func (h *DietPlanHandler) CalculateNutritionGoals(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	res, err := h.advisorService.CalculateGoals(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err, "Failed to calculate nutrition goals.")
		return
	}
	c.JSON(http.StatusOK, res)
}

// GeneratePlan godoc
// @Summary Generate a 7-day diet plan
// @Description Recomputes the goals, then asks the AI for a plan and falls back to the meal table.
// @Tags DietPlan
// @Security BearerAuth
// @Success 200 {object} GeneratePlanResponse "Active plan replaced"
// @Success 201 {object} GeneratePlanResponse "Plan created"
// @Failure 400 {object} gin.H "Profile incomplete"
// @Router /diet-plan/generate [post]
func (h *DietPlanHandler) GeneratePlan(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	res, err := h.advisorService.GeneratePlan(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err, "Failed to generate diet plan.")
		return
	}

	status := http.StatusOK
	if res.Created {
		status = http.StatusCreated
	}
	c.JSON(status, GeneratePlanResponse{
		Plan:           MapDietPlanToResponse(res.Plan),
		NutritionGoals: res.Goals.Goals,
		GoalsSource:    res.Goals.Source,
		Created:        res.Created,
	})
}

// ListPlans returns the caller's plans, most recently updated first.
func (h *DietPlanHandler) ListPlans(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	plans, err := h.planService.ListPlans(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err, "Failed to retrieve diet plans.")
		return
	}
	c.JSON(http.StatusOK, MapDietPlansToResponse(plans))
}

func (h *DietPlanHandler) GetActivePlan(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	plan, err := h.planService.GetActivePlan(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err, "Failed to retrieve diet plan.")
		return
	}
	c.JSON(http.StatusOK, MapDietPlanToResponse(plan))
}

func (h *DietPlanHandler) GetPlan(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	planID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}
	plan, err := h.planService.GetPlan(c.Request.Context(), userID, planID)
	if err != nil {
		respondError(c, err, "Failed to retrieve diet plan.")
		return
	}
	c.JSON(http.StatusOK, MapDietPlanToResponse(plan))
}

// CreatePlan godoc
// @Summary Save a manually composed plan
// @Tags DietPlan
// @Security BearerAuth
// @Param plan body CreateDietPlanRequest true "Plan"
// @Success 201 {object} DietPlanResponse
// @Router /diet-plan [post]
func (h *DietPlanHandler) CreatePlan(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	var req CreateDietPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	if req.Title == "" {
		req.Title = domain.DefaultDietPlanTitle
	}

	plan, err := h.planService.CreatePlan(c.Request.Context(), userID, req.Title, req.Description, req.Days)
	if err != nil {
		respondError(c, err, "Failed to create diet plan.")
		return
	}
	c.JSON(http.StatusCreated, MapDietPlanToResponse(plan))
}

func (h *DietPlanHandler) UpdatePlan(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	planID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}
	var req UpdateDietPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	plan, err := h.planService.UpdatePlan(c.Request.Context(), userID, planID, service.DietPlanUpdate{
		Title:       req.Title,
		Description: req.Description,
		Days:        req.Days,
	})
	if err != nil {
		respondError(c, err, "Failed to update diet plan.")
		return
	}
	c.JSON(http.StatusOK, MapDietPlanToResponse(plan))
}

func (h *DietPlanHandler) DeletePlan(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	planID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}
	if err := h.planService.DeletePlan(c.Request.Context(), userID, planID); err != nil {
		respondError(c, err, "Failed to delete diet plan.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Diet plan removed"})
}
