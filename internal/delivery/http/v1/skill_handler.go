package v1

import (
	"net/http"
	"strconv"

	"go-network-backend/internal/delivery/http/response"
	"go-network-backend/internal/domain"

	"github.com/gin-gonic/gin"
)

type SkillHandler struct {
	skillUC domain.SkillUsecase
}

func NewSkillHandler(public *gin.RouterGroup, skillUC domain.SkillUsecase) {
	handler := &SkillHandler{skillUC: skillUC}
	public.GET("/skills/popular", handler.Popular)
}

// Popular godoc
// @Summary      Most common skills
// @Tags         skills
// @Produce      json
// @Param        limit  query  int  false  "Max entries (default 10, max 50)"
// @Success      200  {object}  response.Response{data=[]domain.SkillCount}
// @Router       /skills/popular [get]
func (h *SkillHandler) Popular(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))

	skills, err := h.skillUC.Popular(c.Request.Context(), limit)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Popular skills", skills)
}
