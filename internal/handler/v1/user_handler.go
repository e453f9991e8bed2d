package v1

import (
	"github.com/dmehra2102/prod-golang-projects/healthtrack/internal/domain"
	"github.com/gin-gonic/gin"
)

func (h *Handler) RegisterUser(c *gin.Context) {
	var req registerUserRequest
	if !bindJSON(c, &req) {
		return
	}

	u, err := h.users.Register(c.Request.Context(), &domain.RegisterUserCommand{
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondCreated(c, toUserResponse(u))
}

func (h *Handler) GetUser(c *gin.Context) {
	id, ok := parseUUID(c, "userId")
	if !ok {
		return
	}

	u, err := h.users.Get(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, toUserResponse(u))
}
