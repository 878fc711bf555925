package sites

import (
	"errors"
	"net/http"
	"strconv"

	custom_error "sams/pkg/errors"
	"sams/pkg/models"
	"sams/pkg/security"

	"github.com/gin-gonic/gin"
)

type SitesHandler struct {
	Repository *SitesRepository
}

func NewHandler(r *SitesRepository) *SitesHandler {
	return &SitesHandler{Repository: r}
}

func (h *SitesHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/sites", security.Authorize("admin"), h.CreateSite)
	router.GET("/sites", h.GetSites)
	router.DELETE("/sites/:id", security.Authorize("admin"), h.RemoveSite)
	router.GET("/sites/:id/assets", h.GetSiteAssets)
	router.POST("/sites/:id/areas", security.Authorize("admin"), h.CreateArea)
	router.GET("/sites/:id/areas", h.GetAreas)
}

func (h *SitesHandler) CreateSite(c *gin.Context) {
	actor, err := security.ActorFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid session"})
		return
	}

	var site models.Site
	if err := c.BindJSON(&site); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
		return
	}
	site.OrganizationID = actor.OrganizationID

	err = h.Repository.PersistSite(&site)
	var unique *custom_error.UniqueViolationError
	if errors.As(err, &unique) {
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": "Could not insert site, name not unique"})
		return
	} else if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Could not insert site"})
		return
	}

	c.JSON(http.StatusCreated, site)
}

func (h *SitesHandler) GetSites(c *gin.Context) {
	actor, err := security.ActorFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid session"})
		return
	}

	sites, err := h.Repository.GetSites(actor.OrganizationID)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Could not list sites"})
		return
	}

	c.JSON(http.StatusOK, sites)
}

func (h *SitesHandler) RemoveSite(c *gin.Context) {
	actor, err := security.ActorFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid session"})
		return
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid site ID"})
		return
	}

	err = h.Repository.RemoveSite(id, actor.OrganizationID)
	var fk *custom_error.ForeignKeyViolationError
	switch {
	case errors.As(err, &fk):
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": "Site is still referenced by assets or areas"})
	case errors.Is(err, custom_error.ErrSiteNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Site not found"})
	case err != nil:
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Could not delete site"})
	default:
		c.JSON(http.StatusOK, gin.H{"message": "Site deleted successfully"})
	}
}

func (h *SitesHandler) GetSiteAssets(c *gin.Context) {
	actor, err := security.ActorFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid session"})
		return
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid site ID"})
		return
	}

	assets, err := h.Repository.GetSiteAssets(id, actor.OrganizationID)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Could not get site assets"})
		return
	}

	c.JSON(http.StatusOK, assets)
}

func (h *SitesHandler) CreateArea(c *gin.Context) {
	actor, err := security.ActorFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid session"})
		return
	}

	siteID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid site ID"})
		return
	}

	var area models.Area
	if err := c.BindJSON(&area); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
		return
	}
	area.OrganizationID = actor.OrganizationID
	area.SiteID = siteID

	if err := h.Repository.PersistArea(&area); err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Could not insert area"})
		return
	}

	c.JSON(http.StatusCreated, area)
}

func (h *SitesHandler) GetAreas(c *gin.Context) {
	actor, err := security.ActorFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid session"})
		return
	}

	siteID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid site ID"})
		return
	}

	areas, err := h.Repository.GetAreas(siteID, actor.OrganizationID)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Could not list areas"})
		return
	}

	c.JSON(http.StatusOK, areas)
}
