package handlers

import (
	_ "embed"
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

//go:embed openapi.json
var openAPIDocument []byte

const apiDocsPath = "/apidocs"

// APIDocs serves the OpenAPI document and the Swagger UI that renders it.
func (h *Handler) APIDocs() gin.HandlerFunc {
	ui := ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL(apiDocsPath+"/openapi.json"))
	return func(c *gin.Context) {
		switch c.Param("any") {
		case "/openapi.json":
			c.Data(http.StatusOK, "application/json; charset=utf-8", openAPIDocument)
		case "", "/":
			c.Redirect(http.StatusMovedPermanently, apiDocsPath+"/index.html")
		default:
			ui(c)
		}
	}
}
