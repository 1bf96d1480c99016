package ginserver

import (
	"log/slog"
	"net/http"
	"time"

	gin "github.com/gin-gonic/gin"

	"immo/internal/app/dto"
	propertiessvc "immo/internal/app/services/properties"
	domainproperty "immo/internal/domain/property"
	domainuser "immo/internal/domain/user"
)

type PropertyHTTP interface {
	Create(c *gin.Context)
	Get(c *gin.Context)
	Update(c *gin.Context)
	Delete(c *gin.Context)
	Search(c *gin.Context)
	UploadImage(c *gin.Context)
	AddImages(c *gin.Context)
	RemoveImage(c *gin.Context)
}

type PropertyHandler struct {
	Service *propertiessvc.Service
	Logger  *slog.Logger
}

type locationRequest struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type addressRequest struct {
	Street   string           `json:"street"`
	City     string           `json:"city" binding:"required"`
	ZipCode  string           `json:"zip_code" binding:"required"`
	Country  string           `json:"country"`
	Location *locationRequest `json:"location"`
}

type createPropertyRequest struct {
	Title       string         `json:"title" binding:"required"`
	Description string         `json:"description"`
	Type        string         `json:"type" binding:"required"`
	Price       int64          `json:"price" binding:"required,gt=0"`
	Surface     float64        `json:"surface" binding:"required,gt=0"`
	Rooms       int            `json:"rooms"`
	Address     addressRequest `json:"address" binding:"required"`
	Features    []string       `json:"features"`
	Images      []string       `json:"images"`
}

type updatePropertyRequest struct {
	Title       *string         `json:"title"`
	Description *string         `json:"description"`
	Type        *string         `json:"type"`
	Price       *int64          `json:"price"`
	Surface     *float64        `json:"surface"`
	Rooms       *int            `json:"rooms"`
	Address     *addressRequest `json:"address"`
	Features    *[]string       `json:"features"`
}

func (r addressRequest) toDomain() domainproperty.Address {
	address := domainproperty.Address{
		Street:  r.Street,
		City:    r.City,
		ZipCode: r.ZipCode,
		Country: r.Country,
	}
	if r.Location != nil {
		address.Location = &domainproperty.Location{Lat: r.Location.Lat, Lon: r.Location.Lon}
	}
	return address
}

func (h PropertyHandler) Create(c *gin.Context) {
	p, ok := requireRole(c, domainuser.RoleOwner, domainuser.RoleAdmin)
	if !ok {
		return
	}
	var req createPropertyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	prop, err := h.Service.Create(c.Request.Context(), p.actor(), propertiessvc.CreateParams{
		Title:       req.Title,
		Description: req.Description,
		Type:        domainproperty.Type(req.Type),
		Price:       req.Price,
		Surface:     req.Surface,
		Rooms:       req.Rooms,
		Address:     req.Address.toDomain(),
		Features:    req.Features,
		Images:      req.Images,
		Now:         time.Now(),
	})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewProperty(prop))
}

func (h PropertyHandler) Get(c *gin.Context) {
	prop, err := h.Service.GetByID(c.Request.Context(), domainproperty.ID(c.Param("id")))
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewProperty(prop))
}

func (h PropertyHandler) Update(c *gin.Context) {
	p, ok := requireAuth(c)
	if !ok {
		return
	}
	var req updatePropertyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	update := domainproperty.Update{
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
		Surface:     req.Surface,
		Rooms:       req.Rooms,
		Features:    req.Features,
	}
	if req.Type != nil {
		t := domainproperty.Type(*req.Type)
		update.Type = &t
	}
	if req.Address != nil {
		address := req.Address.toDomain()
		update.Address = &address
	}
	prop, err := h.Service.Update(c.Request.Context(), p.actor(), propertiessvc.UpdateParams{
		PropertyID: domainproperty.ID(c.Param("id")),
		Update:     update,
		Now:        time.Now(),
	})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewProperty(prop))
}

func (h PropertyHandler) Delete(c *gin.Context) {
	p, ok := requireAuth(c)
	if !ok {
		return
	}
	if err := h.Service.Delete(c.Request.Context(), p.actor(), domainproperty.ID(c.Param("id"))); err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h PropertyHandler) Search(c *gin.Context) {
	params := domainproperty.SearchParams{
		Type:       domainproperty.Type(c.Query("type")),
		Status:     domainproperty.Status(c.Query("status")),
		City:       c.Query("city"),
		Rooms:      intQuery(c, "rooms", 0),
		MinPrice:   int64Query(c, "min_price"),
		MaxPrice:   int64Query(c, "max_price"),
		MinSurface: floatQuery(c, "min_surface"),
		MaxSurface: floatQuery(c, "max_surface"),
		Page:       intQuery(c, "page", 1),
		Limit:      intQuery(c, "limit", 10),
	}
	result, err := h.Service.Search(c.Request.Context(), params)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	normalized := params.Normalized()
	c.JSON(http.StatusOK, dto.NewPage(dto.NewProperties(result.Items), result.Total, normalized.Page, normalized.Limit))
}

// UploadImage accepts one multipart file under the "image" field.
func (h PropertyHandler) UploadImage(c *gin.Context) {
	p, ok := requireAuth(c)
	if !ok {
		return
	}
	file, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image file is required"})
		return
	}
	reader, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image file is not readable"})
		return
	}
	defer reader.Close()
	url, err := h.Service.UploadImage(c.Request.Context(), p.actor(), propertiessvc.UploadImageParams{
		PropertyID:  domainproperty.ID(c.Param("id")),
		FileName:    file.Filename,
		ContentType: file.Header.Get("Content-Type"),
		Reader:      reader,
		Now:         time.Now(),
	})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"url": url})
}

type addImagesRequest struct {
	URLs []string `json:"urls" binding:"required,min=1"`
}

func (h PropertyHandler) AddImages(c *gin.Context) {
	p, ok := requireAuth(c)
	if !ok {
		return
	}
	var req addImagesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	images, err := h.Service.AddImages(c.Request.Context(), p.actor(), propertiessvc.AddImagesParams{
		PropertyID: domainproperty.ID(c.Param("id")),
		URLs:       req.URLs,
		Now:        time.Now(),
	})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"images": images})
}

type removeImageRequest struct {
	URL string `json:"url" binding:"required"`
}

func (h PropertyHandler) RemoveImage(c *gin.Context) {
	p, ok := requireAuth(c)
	if !ok {
		return
	}
	var req removeImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	if err := h.Service.RemoveImage(c.Request.Context(), p.actor(), domainproperty.ID(c.Param("id")), req.URL, time.Now()); err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

var _ PropertyHTTP = (*PropertyHandler)(nil)
