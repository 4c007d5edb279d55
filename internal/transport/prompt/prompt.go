package prompt

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	domainprompt "github.com/alanyang/prompt-manager/internal/domain/prompt"
	promptsvc "github.com/alanyang/prompt-manager/internal/service/prompt"
)

// Register mounts the prompt REST endpoints on the given router group.
func Register(rg *gin.RouterGroup, svc *promptsvc.Service) {
	rg.GET("/", listPrompts(svc))
	rg.GET("/categories", listCategories(svc))
	rg.GET("/export", exportPrompts(svc))
	rg.POST("/import", importPrompts(svc))
	rg.GET("/:id", getPrompt(svc))
	rg.POST("/", createPrompt(svc))
	rg.PUT("/:id", updatePrompt(svc))
	rg.DELETE("/:id", deletePrompt(svc))
}

func listPrompts(svc *promptsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		filter := domainprompt.Filter{
			Query:    c.Query("q"),
			Category: c.Query("category"),
		}
		sorted, _ := strconv.ParseBool(c.Query("sorted"))

		switch {
		case filter != (domainprompt.Filter{}):
			c.JSON(http.StatusOK, svc.Search(ctx, filter))
		case sorted:
			c.JSON(http.StatusOK, svc.Sorted(ctx))
		default:
			c.JSON(http.StatusOK, svc.List(ctx))
		}
	}
}

func listCategories(svc *promptsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		categories := svc.Categories(c.Request.Context())
		if categories == nil {
			categories = []string{}
		}
		c.JSON(http.StatusOK, categories)
	}
}

func getPrompt(svc *promptsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := svc.Get(c.Request.Context(), c.Param("id"))
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "prompt not found"})
			return
		}
		c.JSON(http.StatusOK, p)
	}
}

func createPrompt(svc *promptsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req domainprompt.FormData
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		p, err := svc.Add(c.Request.Context(), req)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusCreated, p)
	}
}

func updatePrompt(svc *promptsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req domainprompt.FormData
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		p := domainprompt.Prompt{ID: c.Param("id"), Title: req.Title, Content: req.Content, Category: req.Category}
		updated, found, err := svc.Update(c.Request.Context(), p)
		switch {
		case errors.Is(err, domainprompt.ErrNotFound) || (err == nil && !found):
			c.JSON(http.StatusNotFound, gin.H{"error": "prompt not found"})
		case err != nil:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusOK, updated)
		}
	}
}

func deletePrompt(svc *promptsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		found, err := svc.Delete(c.Request.Context(), c.Param("id"))
		switch {
		case errors.Is(err, domainprompt.ErrNotFound) || (err == nil && !found):
			c.JSON(http.StatusNotFound, gin.H{"error": "prompt not found"})
		case err != nil:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		default:
			c.Status(http.StatusNoContent)
		}
	}
}

// exportPrompts sends the export document as a file download.
func exportPrompts(svc *promptsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		f := svc.ExportAll(c.Request.Context())
		data, err := f.Marshal()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, f.Name))
		c.Data(http.StatusOK, "application/json", data)
	}
}

// importPrompts accepts either a multipart upload in field "file" or the
// export document as the raw request body.
func importPrompts(svc *promptsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var src io.Reader = c.Request.Body
		if strings.HasPrefix(c.ContentType(), "multipart/") {
			fh, err := c.FormFile("file")
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "missing file"})
				return
			}
			f, err := fh.Open()
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			defer f.Close()
			src = f
		}

		summary, err := svc.Import(c.Request.Context(), src)
		switch {
		case errors.Is(err, domainprompt.ErrInvalidImportFormat), errors.Is(err, domainprompt.ErrImportParse):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case err != nil:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusOK, summary)
		}
	}
}
