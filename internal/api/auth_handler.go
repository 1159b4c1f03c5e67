package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"nutrify/diet-tracker/internal/domain"
	"nutrify/diet-tracker/internal/service"
)

// AuthHandler serves registration, login and the caller's profile.
type AuthHandler struct {
	authService service.AuthService
	userService service.UserService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService service.AuthService, userService service.UserService) *AuthHandler {
	return &AuthHandler{authService: authService, userService: userService}
}

// --- Request/Response Structs ---

type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// stringList accepts either a JSON string or an array of strings. Older
// clients send dietType as a single value.
type stringList []string

func (l *stringList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*l = nil
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*l = stringList{s}
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return errors.New("must be a string or an array of strings")
	}
	*l = list
	return nil
}

// ProfileRequest is shared by the profile and preferences endpoints. Absent
// fields are left untouched.
type ProfileRequest struct {
	Name              *string     `json:"name"`
	Email             *string     `json:"email" binding:"omitempty,email"`
	Password          *string     `json:"password" binding:"omitempty,min=6"`
	Age               *int        `json:"age" binding:"omitempty,min=0,max=150"`
	Weight            *float64    `json:"weight" binding:"omitempty,min=0"`
	Height            *float64    `json:"height" binding:"omitempty,min=0"`
	Gender            *string     `json:"gender"`
	ActivityLevel     *string     `json:"activityLevel"`
	DietaryPreference *string     `json:"dietaryPreference"`
	DietType          *stringList `json:"dietType"`
	RegionalCuisines  *[]string   `json:"regionalCuisines"`
	Allergies         *[]string   `json:"allergies"`
	Goals             *[]string   `json:"goals"`
}

func (r ProfileRequest) toUpdate() service.ProfileUpdate {
	upd := service.ProfileUpdate{
		Name:              r.Name,
		Email:             r.Email,
		Password:          r.Password,
		Age:               r.Age,
		Weight:            r.Weight,
		Height:            r.Height,
		ActivityLevel:     r.ActivityLevel,
		DietaryPreference: r.DietaryPreference,
		RegionalCuisines:  r.RegionalCuisines,
		Allergies:         r.Allergies,
		Goals:             r.Goals,
	}
	if r.Gender != nil {
		g := domain.Gender(*r.Gender)
		upd.Gender = &g
	}
	if r.DietType != nil {
		dt := []string(*r.DietType)
		upd.DietType = &dt
	}
	return upd
}

// UserResponse excludes sensitive info like password hash
type UserResponse struct {
	ID                  string                `json:"id"`
	Name                string                `json:"name"`
	Email               string                `json:"email"`
	Age                 int                   `json:"age,omitempty"`
	Weight              float64               `json:"weight,omitempty"`
	Height              float64               `json:"height,omitempty"`
	Gender              domain.Gender         `json:"gender,omitempty"`
	ActivityLevel       domain.ActivityLevel  `json:"activityLevel,omitempty"`
	DietaryPreference   string                `json:"dietaryPreference,omitempty"`
	DietType            []string              `json:"dietType"`
	RegionalCuisines    []string              `json:"regionalCuisines"`
	Allergies           []string              `json:"allergies"`
	Goals               []string              `json:"goals"`
	DailyNutritionGoals domain.NutritionGoals `json:"dailyNutritionGoals"`
	CreatedAt           time.Time             `json:"createdAt"`
}

type RegisterResponse struct {
	Token     string       `json:"token"`
	User      UserResponse `json:"user"`
	IsNewUser bool         `json:"isNewUser"`
}

type LoginResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

// ProfileResponse is the profile plus a refreshed token after an update.
type ProfileResponse struct {
	UserResponse
	Token string `json:"token,omitempty"`
}

// MapUserToResponse converts a domain User to a UserResponse DTO.
// List fields are never null so clients can iterate them directly.
func MapUserToResponse(user *domain.User) UserResponse {
	if user == nil {
		return UserResponse{}
	}
	return UserResponse{
		ID:                  user.ID.Hex(),
		Name:                user.Name,
		Email:               user.Email,
		Age:                 user.Age,
		Weight:              user.Weight,
		Height:              user.Height,
		Gender:              user.Gender,
		ActivityLevel:       user.ActivityLevel,
		DietaryPreference:   user.DietaryPreference,
		DietType:            nonNil(user.DietType),
		RegionalCuisines:    nonNil(user.RegionalCuisines),
		Allergies:           nonNil(user.Allergies),
		Goals:               nonNil(user.Goals),
		DailyNutritionGoals: user.DailyNutritionGoals,
		CreatedAt:           user.CreatedAt,
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// --- Handler Methods ---

// Register godoc
// @Summary Register a new user
// @Tags Auth
// @Accept json
// @Produce json
// @Param user body RegisterRequest true "Registration details"
// @Success 201 {object} RegisterResponse "User created successfully"
// @Failure 400 {object} gin.H "Invalid input (validation error)"
// @Failure 409 {object} gin.H "Conflict (email already exists)"
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	user, token, err := h.authService.Register(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		respondError(c, err, "An unexpected error occurred during registration")
		return
	}

	c.JSON(http.StatusCreated, RegisterResponse{
		Token:     token,
		User:      MapUserToResponse(user),
		IsNewUser: true,
	})
}

// Login godoc
// @Summary Log in a user
// @Description Authenticates a user and returns a JWT token.
// @Tags Auth
// @Accept json
// @Produce json
// @Param credentials body LoginRequest true "Login credentials"
// @Success 200 {object} LoginResponse "Login successful"
// @Failure 401 {object} gin.H "Unauthorized (invalid credentials)"
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	token, user, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err, "An unexpected error occurred during login")
		return
	}

	c.JSON(http.StatusOK, LoginResponse{
		Token: token,
		User:  MapUserToResponse(user),
	})
}

// GetProfile returns the authenticated user's profile.
func (h *AuthHandler) GetProfile(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	user, err := h.userService.GetProfile(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err, "Failed to load profile.")
		return
	}
	c.JSON(http.StatusOK, MapUserToResponse(user))
}

// UpdateProfile godoc
// @Summary Update the caller's profile
// @Description Non-empty fields overwrite the stored ones. Returns a refreshed token.
// @Tags Auth
// @Security BearerAuth
// @Router /auth/profile [put]
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	h.updateUser(c, h.userService.UpdateProfile)
}

// UpdatePreferences godoc
// @Summary Save onboarding preferences
// @Description Sent fields overwrite the stored ones, including empty lists.
// @Tags Auth
// @Security BearerAuth
// @Router /auth/preferences [put]
func (h *AuthHandler) UpdatePreferences(c *gin.Context) {
	h.updateUser(c, h.userService.UpdatePreferences)
}

type profileApplier func(ctx context.Context, userID primitive.ObjectID, upd service.ProfileUpdate) (*domain.User, error)

func (h *AuthHandler) updateUser(c *gin.Context, apply profileApplier) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	var req ProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	user, err := apply(c.Request.Context(), userID, req.toUpdate())
	if err != nil {
		respondError(c, err, "Failed to update profile.")
		return
	}

	token, err := h.authService.IssueToken(user)
	if err != nil {
		respondError(c, err, "Failed to update profile.")
		return
	}
	c.JSON(http.StatusOK, ProfileResponse{UserResponse: MapUserToResponse(user), Token: token})
}
