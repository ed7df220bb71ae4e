package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterDocs registers the interactive API docs.
// - GET /docs          -> Swagger UI page that loads the OpenAPI JSON
// - GET /openapi.json  -> machine-readable OpenAPI JSON
func RegisterDocs(rg gin.IRoutes) {
	rg.GET("/docs", func(c *gin.Context) {
		c.Header("Content-Type", "text/html; charset=utf-8")
		c.String(http.StatusOK, docsHTML)
	})

	rg.GET("/openapi.json", func(c *gin.Context) {
		c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(openAPIJSON))
	})
}

const docsHTML = `<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <title>Hello World API with DB - Swagger UI</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@4/swagger-ui.css" />
  </head>
  <body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@4/swagger-ui-bundle.js"></script>
    <script>
      window.ui = SwaggerUIBundle({
        url: '/openapi.json',
        dom_id: '#swagger-ui',
      })
    </script>
  </body>
</html>`

const openAPIJSON = `{
  "openapi": "3.0.0",
  "info": { "title": "Hello World API with DB", "version": "0.0.1" },
  "servers": [ { "url": "http://0.0.0.0:8000", "description": "Development Server" } ],
  "components": {
    "schemas": {
      "Todo": {
        "type": "object",
        "required": ["content"],
        "properties": { "id": { "type": "integer" }, "content": { "type": "string" } }
      },
      "Detail": { "type": "object", "properties": { "detail": { "type": "string" } } }
    }
  },
  "paths": {
    "/": { "get": { "summary": "Read Root", "responses": { "200": { "description": "greeting" } } } },
    "/todos/": {
      "get": {
        "summary": "Read Todos",
        "responses": { "200": { "description": "all todos", "content": { "application/json": { "schema": { "type": "array", "items": { "$ref": "#/components/schemas/Todo" } } } } } }
      },
      "post": {
        "summary": "Create Todo",
        "requestBody": { "required": true, "content": { "application/json": { "schema": { "$ref": "#/components/schemas/Todo" } } } },
        "responses": {
          "200": { "description": "created todo", "content": { "application/json": { "schema": { "$ref": "#/components/schemas/Todo" } } } },
          "422": { "description": "validation error", "content": { "application/json": { "schema": { "$ref": "#/components/schemas/Detail" } } } }
        }
      }
    },
    "/todos/{todo_id}": {
      "parameters": [ { "name": "todo_id", "in": "path", "required": true, "schema": { "type": "integer" } } ],
      "get": {
        "summary": "Read Todo",
        "responses": { "200": { "description": "todo" }, "404": { "description": "Todo not found" } }
      },
      "put": {
        "summary": "Update Todo",
        "requestBody": { "required": true, "content": { "application/json": { "schema": { "$ref": "#/components/schemas/Todo" } } } },
        "responses": { "200": { "description": "updated todo" }, "404": { "description": "Todo not found" }, "422": { "description": "validation error" } }
      },
      "delete": {
        "summary": "Delete Todo",
        "responses": { "200": { "description": "{\"message\": \"Todo deleted\"}" }, "404": { "description": "Todo not found" } }
      }
    },
    "/health": { "get": { "summary": "Liveness check", "responses": { "200": { "description": "healthy" } } } },
    "/ready": { "get": { "summary": "Readiness check", "responses": { "200": { "description": "ready" }, "503": { "description": "not ready" } } } }
  }
}`
