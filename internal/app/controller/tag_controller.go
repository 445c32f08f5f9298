package controller

import (
	"net/http"

	"github.com/foodgram/foodgram-backend/internal/app/service"
	"github.com/foodgram/foodgram-backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

type TagController struct {
	tagService service.TagService
}

func NewTagController(tagService service.TagService) *TagController {
	return &TagController{tagService: tagService}
}

// ListTags returns the whole tag catalog, unpaginated
// GET /api/tags
func (ctrl *TagController) ListTags(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	tags, err := ctrl.tagService.ListTags()
	if err != nil {
		respondServiceError(c, err, "list tags")
		return
	}

	log.Debug("Tags listed", map[string]interface{}{
		"count": len(tags),
	})
	c.JSON(http.StatusOK, tags)
}

// GetTag GET /api/tags/:id
func (ctrl *TagController) GetTag(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	tag, err := ctrl.tagService.GetTag(id)
	if err != nil {
		respondServiceError(c, err, "get tag")
		return
	}

	c.JSON(http.StatusOK, tag)
}
