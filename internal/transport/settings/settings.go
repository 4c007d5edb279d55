package settings

import (
	"net/http"

	"github.com/gin-gonic/gin"

	promptsvc "github.com/alanyang/prompt-manager/internal/service/prompt"
)

func Register(rg *gin.RouterGroup, svc *promptsvc.Service) {
	rg.GET("/sort-order", getSortOrder(svc))
	rg.POST("/sort-order/toggle", toggleSortOrder(svc))
}

func getSortOrder(svc *promptsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"sort_order": svc.SortOrder(c.Request.Context())})
	}
}

func toggleSortOrder(svc *promptsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		order, err := svc.ToggleSortOrder(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"sort_order": order})
	}
}
