package ginserver

import (
	"log/slog"
	"net/http"
	"time"

	gin "github.com/gin-gonic/gin"

	"immo/internal/app/dto"
	adssvc "immo/internal/app/services/ads"
	domainad "immo/internal/domain/ad"
	domainproperty "immo/internal/domain/property"
	domainuser "immo/internal/domain/user"
)

type AdHTTP interface {
	Create(c *gin.Context)
	Get(c *gin.Context)
	Update(c *gin.Context)
	UpdateStatus(c *gin.Context)
	Delete(c *gin.Context)
	Search(c *gin.Context)
	ListByProperty(c *gin.Context)
}

type AdHandler struct {
	Service *adssvc.Service
	Logger  *slog.Logger
}

type rentalDetailsRequest struct {
	Duration      string     `json:"duration"`
	DepositAmount int64      `json:"deposit_amount"`
	Availability  *time.Time `json:"availability"`
}

type contactInfoRequest struct {
	UseOwnerInfo bool   `json:"use_owner_info"`
	Phone        string `json:"phone"`
	Email        string `json:"email" binding:"omitempty,email"`
}

type createAdRequest struct {
	PropertyID    string                `json:"property_id" binding:"required"`
	Title         string                `json:"title" binding:"required"`
	Description   string                `json:"description"`
	Type          string                `json:"type" binding:"required,oneof=sale rental"`
	Price         int64                 `json:"price" binding:"required,gt=0"`
	RentalDetails *rentalDetailsRequest `json:"rental_details"`
	ContactInfo   *contactInfoRequest   `json:"contact_info"`
	Highlighted   bool                  `json:"highlighted"`
	ExpiresAt     *time.Time            `json:"expires_at"`
}

type updateAdRequest struct {
	Title         *string               `json:"title"`
	Description   *string               `json:"description"`
	Price         *int64                `json:"price"`
	RentalDetails *rentalDetailsRequest `json:"rental_details"`
	ContactInfo   *contactInfoRequest   `json:"contact_info"`
	Highlighted   *bool                 `json:"highlighted"`
	ExpiresAt     *time.Time            `json:"expires_at"`
}

type updateAdStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=active inactive expired completed"`
}

func (r *rentalDetailsRequest) toDomain() domainad.RentalDetails {
	details := domainad.RentalDetails{
		Duration:      r.Duration,
		DepositAmount: r.DepositAmount,
	}
	if r.Availability != nil {
		details.Availability = *r.Availability
	}
	return details
}

func (r *contactInfoRequest) toDomain() domainad.ContactInfo {
	return domainad.ContactInfo{UseOwnerInfo: r.UseOwnerInfo, Phone: r.Phone, Email: r.Email}
}

func (h AdHandler) Create(c *gin.Context) {
	p, ok := requireRole(c, domainuser.RoleOwner, domainuser.RoleAdmin)
	if !ok {
		return
	}
	var req createAdRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	params := adssvc.CreateParams{
		PropertyID:  domainproperty.ID(req.PropertyID),
		Title:       req.Title,
		Description: req.Description,
		Type:        domainad.Type(req.Type),
		Price:       req.Price,
		Highlighted: req.Highlighted,
		Now:         time.Now(),
	}
	if req.RentalDetails != nil {
		params.RentalDetails = req.RentalDetails.toDomain()
	}
	if req.ContactInfo != nil {
		params.ContactInfo = req.ContactInfo.toDomain()
	}
	if req.ExpiresAt != nil {
		params.ExpiresAt = *req.ExpiresAt
	}
	advert, err := h.Service.Create(c.Request.Context(), p.actor(), params)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewAd(advert))
}

func (h AdHandler) Get(c *gin.Context) {
	advert, err := h.Service.GetByID(c.Request.Context(), domainad.ID(c.Param("id")))
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewAd(advert))
}

func (h AdHandler) Update(c *gin.Context) {
	p, ok := requireAuth(c)
	if !ok {
		return
	}
	var req updateAdRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	update := domainad.Update{
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
		Highlighted: req.Highlighted,
		ExpiresAt:   req.ExpiresAt,
	}
	if req.RentalDetails != nil {
		details := req.RentalDetails.toDomain()
		update.RentalDetails = &details
	}
	if req.ContactInfo != nil {
		contact := req.ContactInfo.toDomain()
		update.ContactInfo = &contact
	}
	advert, err := h.Service.Update(c.Request.Context(), p.actor(), adssvc.UpdateParams{
		AdID:   domainad.ID(c.Param("id")),
		Update: update,
		Now:    time.Now(),
	})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewAd(advert))
}

func (h AdHandler) UpdateStatus(c *gin.Context) {
	p, ok := requireAuth(c)
	if !ok {
		return
	}
	var req updateAdStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	advert, err := h.Service.UpdateStatus(c.Request.Context(), p.actor(), adssvc.UpdateStatusParams{
		AdID:   domainad.ID(c.Param("id")),
		Status: domainad.Status(req.Status),
		Now:    time.Now(),
	})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewAd(advert))
}

func (h AdHandler) Delete(c *gin.Context) {
	p, ok := requireAuth(c)
	if !ok {
		return
	}
	if err := h.Service.Delete(c.Request.Context(), p.actor(), domainad.ID(c.Param("id")), time.Now()); err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h AdHandler) Search(c *gin.Context) {
	params := domainad.SearchParams{
		Type:     domainad.Type(c.Query("type")),
		Status:   domainad.Status(c.Query("status")),
		MinPrice: int64Query(c, "min_price"),
		MaxPrice: int64Query(c, "max_price"),
		Page:     intQuery(c, "page", 1),
		Limit:    intQuery(c, "limit", 10),
	}
	propFilter := domainad.PropertyFilter{
		City:         c.Query("city"),
		PropertyType: domainproperty.Type(c.Query("property_type")),
		MinSurface:   floatQuery(c, "min_surface"),
		MaxSurface:   floatQuery(c, "max_surface"),
	}
	result, err := h.Service.Search(c.Request.Context(), params, propFilter)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	normalized := params.Normalized()
	c.JSON(http.StatusOK, dto.NewPage(dto.NewAds(result.Items), result.Total, normalized.Page, normalized.Limit))
}

func (h AdHandler) ListByProperty(c *gin.Context) {
	ads, err := h.Service.ListByProperty(c.Request.Context(), domainproperty.ID(c.Param("propertyId")))
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": dto.NewAds(ads)})
}

var _ AdHTTP = (*AdHandler)(nil)
