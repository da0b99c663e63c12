package v1

import (
	"net/http"

	"go-network-backend/internal/delivery/http/response"
	"go-network-backend/internal/domain"
	"go-network-backend/pkg/apperror"

	"github.com/gin-gonic/gin"
)

type ProfileHandler struct {
	profileUC domain.ProfileUsecase
}

func NewProfileHandler(public *gin.RouterGroup, protected *gin.RouterGroup, profileUC domain.ProfileUsecase) {
	handler := &ProfileHandler{profileUC: profileUC}

	protectedProfile := protected.Group("/profile")
	{
		protectedProfile.GET("", handler.GetProfile)
		protectedProfile.PUT("", handler.UpdateProfile)
		protectedProfile.POST("", handler.CreateProfile)
	}

	public.GET("/profile/:user_id", handler.GetPublicProfile)
}

// GetProfile godoc
// @Summary      Get own profile
// @Description  Profile with name, username, email, skills, experience and education
// @Tags         profile
// @Produce      json
// @Success      200  {object}  response.Response{data=domain.ProfileAggregate}
// @Failure      401  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /profile [get]
// @Security     BearerAuth
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	userID := c.GetString(string(domain.KeyUserID))

	agg, err := h.profileUC.GetProfile(c.Request.Context(), userID)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Profile", agg)
}

// UpdateProfile godoc
// @Summary      Replace own profile
// @Description  Scalar fields are applied when present; skills, experience and education replace the stored sets
// @Tags         profile
// @Accept       json
// @Produce      json
// @Success      200  {object}  response.Response{data=domain.ProfileAggregate}
// @Failure      400  {object}  response.Response{error=map[string]string}
// @Failure      404  {object}  response.Response
// @Router       /profile [put]
// @Security     BearerAuth
func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	userID := c.GetString(string(domain.KeyUserID))

	var req domain.ProfileUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest("Invalid request body"))
		return
	}

	agg, err := h.profileUC.UpdateProfile(c.Request.Context(), userID, &req)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Profile updated successfully", agg)
}

// CreateProfile godoc
// @Summary      Create an empty profile
// @Tags         profile
// @Produce      json
// @Success      201  {object}  response.Response{data=domain.Profile}
// @Failure      409  {object}  response.Response
// @Router       /profile [post]
// @Security     BearerAuth
func (h *ProfileHandler) CreateProfile(c *gin.Context) {
	userID := c.GetString(string(domain.KeyUserID))

	profile, err := h.profileUC.CreateProfile(c.Request.Context(), userID)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusCreated, "Profile created", profile)
}

// GetPublicProfile godoc
// @Summary      Get a user's public profile
// @Tags         profile
// @Produce      json
// @Param        user_id  path  string  true  "User ID"
// @Success      200  {object}  response.Response{data=domain.Profile}
// @Failure      404  {object}  response.Response
// @Router       /profile/{user_id} [get]
func (h *ProfileHandler) GetPublicProfile(c *gin.Context) {
	profile, err := h.profileUC.GetPublicProfile(c.Request.Context(), c.Param("user_id"))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Profile", profile)
}
