package controller

import (
	"net/http"

	"github.com/foodgram/foodgram-backend/internal/app/service"
	"github.com/foodgram/foodgram-backend/internal/metrics"
	"github.com/foodgram/foodgram-backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type ShoppingListController struct {
	shoppingListService service.ShoppingListService
	collector           *metrics.Collector
}

// NewShoppingListController creates the download handler. collector may be nil.
func NewShoppingListController(shoppingListService service.ShoppingListService, collector *metrics.Collector) *ShoppingListController {
	return &ShoppingListController{
		shoppingListService: shoppingListService,
		collector:           collector,
	}
}

// Download renders the aggregated shopping list as a text file, or as a
// spreadsheet with ?format=xlsx
// GET /api/recipes/download_shopping_cart
func (ctrl *ShoppingListController) Download(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	principal := middleware.GetPrincipal(c)
	format := c.DefaultQuery("format", "txt")

	var (
		body        []byte
		contentType string
		filename    string
	)
	switch format {
	case "xlsx":
		data, err := ctrl.shoppingListService.RenderXLSX(principal)
		if err != nil {
			respondServiceError(c, err, "render shopping list")
			return
		}
		body, contentType, filename = data, xlsxContentType, "shopping_list.xlsx"
	default:
		format = "txt"
		text, err := ctrl.shoppingListService.Render(principal)
		if err != nil {
			respondServiceError(c, err, "render shopping list")
			return
		}
		body, contentType, filename = []byte(text), "text/plain; charset=utf-8", "shopping_list.txt"
	}

	if ctrl.collector != nil {
		ctrl.collector.RecordShoppingListDownload(format)
	}
	log.Info("Shopping list downloaded", map[string]interface{}{
		"user_id": principal.UserID,
		"format":  format,
		"size":    len(body),
	})

	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, contentType, body)
}
