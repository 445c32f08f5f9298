package controller

import (
	"net/http"

	"github.com/foodgram/foodgram-backend/internal/app/service"
	"github.com/foodgram/foodgram-backend/internal/middleware"
	"github.com/foodgram/foodgram-backend/pkg/util"
	"github.com/gin-gonic/gin"
)

type SubscriptionController struct {
	subscriptionService service.SubscriptionService
	pageSize            int
}

func NewSubscriptionController(subscriptionService service.SubscriptionService, pageSize int) *SubscriptionController {
	return &SubscriptionController{
		subscriptionService: subscriptionService,
		pageSize:            pageSize,
	}
}

// Subscribe follows an author
// POST /api/users/:id/subscribe?recipes_limit=
func (ctrl *SubscriptionController) Subscribe(c *gin.Context) {
	authorID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	author, err := ctrl.subscriptionService.Subscribe(middleware.GetPrincipal(c), authorID, parseLimitQuery(c, "recipes_limit"))
	if err != nil {
		respondServiceError(c, err, "subscribe")
		return
	}

	c.JSON(http.StatusCreated, author)
}

// Unsubscribe stops following an author
// DELETE /api/users/:id/subscribe
func (ctrl *SubscriptionController) Unsubscribe(c *gin.Context) {
	authorID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := ctrl.subscriptionService.Unsubscribe(middleware.GetPrincipal(c), authorID); err != nil {
		respondServiceError(c, err, "unsubscribe")
		return
	}

	c.Status(http.StatusNoContent)
}

// ListSubscriptions returns the followed authors with their recipe previews
// GET /api/users/subscriptions?page=&limit=&recipes_limit=
func (ctrl *SubscriptionController) ListSubscriptions(c *gin.Context) {
	page := util.ParsePage(c.Query("page"), c.Query("limit"), ctrl.pageSize)

	authors, total, err := ctrl.subscriptionService.List(middleware.GetPrincipal(c), page, parseLimitQuery(c, "recipes_limit"))
	if err != nil {
		respondServiceError(c, err, "list subscriptions")
		return
	}

	c.JSON(http.StatusOK, newPagedResult(c, page, total, authors))
}
