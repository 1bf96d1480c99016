package ginserver

import (
	"log/slog"
	"net/http"
	"time"

	gin "github.com/gin-gonic/gin"

	"immo/internal/app/dto"
	userssvc "immo/internal/app/services/users"
	domainproperty "immo/internal/domain/property"
	domainuser "immo/internal/domain/user"
)

type UserHTTP interface {
	Profile(c *gin.Context)
	UpdateProfile(c *gin.Context)
	PublicProfile(c *gin.Context)
	ListFavorites(c *gin.Context)
	AddFavorite(c *gin.Context)
	RemoveFavorite(c *gin.Context)
	ListAll(c *gin.Context)
}

type UserHandler struct {
	Service *userssvc.Service
	Logger  *slog.Logger
}

type updateProfileRequest struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Phone     *string `json:"phone"`
	Avatar    *string `json:"avatar"`
}

func (h UserHandler) Profile(c *gin.Context) {
	p, ok := requireAuth(c)
	if !ok {
		return
	}
	account, err := h.Service.Profile(c.Request.Context(), domainuser.ID(p.ID))
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewUser(account))
}

func (h UserHandler) UpdateProfile(c *gin.Context) {
	p, ok := requireAuth(c)
	if !ok {
		return
	}
	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	account, err := h.Service.UpdateProfile(c.Request.Context(), domainuser.ID(p.ID), userssvc.UpdateProfileParams{
		Update: domainuser.ProfileUpdate{
			FirstName: req.FirstName,
			LastName:  req.LastName,
			Phone:     req.Phone,
			Avatar:    req.Avatar,
		},
		Now: time.Now(),
	})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewUser(account))
}

// PublicProfile exposes only the name of another account.
func (h UserHandler) PublicProfile(c *gin.Context) {
	account, err := h.Service.Profile(c.Request.Context(), domainuser.ID(c.Param("id")))
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewPublicUser(account))
}

func (h UserHandler) ListFavorites(c *gin.Context) {
	p, ok := requireAuth(c)
	if !ok {
		return
	}
	favorites, err := h.Service.Favorites(c.Request.Context(), domainuser.ID(p.ID))
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": dto.NewProperties(favorites)})
}

func (h UserHandler) AddFavorite(c *gin.Context) {
	p, ok := requireAuth(c)
	if !ok {
		return
	}
	propertyID := domainproperty.ID(c.Param("propertyId"))
	if err := h.Service.AddFavorite(c.Request.Context(), domainuser.ID(p.ID), propertyID, time.Now()); err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h UserHandler) RemoveFavorite(c *gin.Context) {
	p, ok := requireAuth(c)
	if !ok {
		return
	}
	propertyID := domainproperty.ID(c.Param("propertyId"))
	if err := h.Service.RemoveFavorite(c.Request.Context(), domainuser.ID(p.ID), propertyID, time.Now()); err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h UserHandler) ListAll(c *gin.Context) {
	p, ok := requireRole(c, domainuser.RoleAdmin)
	if !ok {
		return
	}
	accounts, err := h.Service.ListAll(c.Request.Context(), p.actor())
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	items := make([]dto.User, 0, len(accounts))
	for _, account := range accounts {
		items = append(items, dto.NewUser(account))
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

var _ UserHTTP = (*UserHandler)(nil)
