package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterSwagger registers minimal Swagger/OpenAPI endpoints.
// - GET /swagger/index.html  -> a small HTML page that loads the OpenAPI JSON
// - GET /swagger/doc.json    -> machine-readable OpenAPI JSON
func RegisterSwagger(rg *gin.Engine) {
	rg.GET("/swagger/index.html", func(c *gin.Context) {
		c.Header("Content-Type", "text/html; charset=utf-8")
		c.String(http.StatusOK, swaggerHTML)
	})

	rg.GET("/swagger/doc.json", func(c *gin.Context) {
		c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(swaggerJSON))
	})
}

const swaggerHTML = `<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <title>docentes-backend · Swagger</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@4/swagger-ui.css" />
  </head>
  <body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@4/swagger-ui-bundle.js"></script>
    <script>
      window.ui = SwaggerUIBundle({
        url: '/swagger/doc.json',
        dom_id: '#swagger-ui',
      })
    </script>
  </body>
</html>`

const swaggerJSON = `{
  "openapi": "3.0.0",
  "info": { "title": "docentes-backend", "version": "v1.0.0" },
  "components": {
    "securitySchemes": { "bearer": { "type": "http", "scheme": "bearer", "bearerFormat": "JWT" } }
  },
  "paths": {
    "/auth/login/docente": {
      "post": {
        "summary": "Instructor login by cedula",
        "requestBody": { "content": { "application/json": { "schema": {"type":"object","required":["cedula"],"properties":{"cedula":{"type":"string"}}}}}},
        "responses": { "200": { "description": "access_token and user" }, "401": { "description": "unknown cedula or not an instructor" } }
      }
    },
    "/auth/login/admin": {
      "post": {
        "summary": "Administrator login",
        "requestBody": { "content": { "application/json": { "schema": {"type":"object","required":["username","password"],"properties":{"username":{"type":"string"},"password":{"type":"string"}}}}}},
        "responses": { "200": { "description": "access_token and user" }, "401": { "description": "invalid credentials" } }
      }
    },
    "/auth/logout": {
      "post": { "summary": "Revoke the presented access token", "security": [{"bearer": []}], "responses": { "200": { "description": "logged out" } } }
    },
    "/users": {
      "get": { "summary": "List users", "security": [{"bearer": []}], "responses": { "200": { "description": "users" } } },
      "post": { "summary": "Create a user (administrador)", "security": [{"bearer": []}], "responses": { "201": { "description": "created" }, "400": { "description": "invalid input" }, "409": { "description": "duplicate cedula or username" } } }
    },
    "/users/importar-docentes": {
      "post": {
        "summary": "Reconcile instructors from an uploaded workbook (administrador)",
        "security": [{"bearer": []}],
        "requestBody": { "content": { "multipart/form-data": { "schema": {"type":"object","properties":{"archivo":{"type":"string","format":"binary"}}}}}},
        "responses": { "201": { "description": "creados, actualizados, errores" }, "400": { "description": "missing, empty or invalid workbook" } }
      }
    },
    "/users/sincronizar-docentes": {
      "post": { "summary": "Reconcile instructors from the fixed workbook location (administrador)", "security": [{"bearer": []}], "responses": { "201": { "description": "creados, actualizados, errores" }, "400": { "description": "source missing or invalid" } } }
    },
    "/users/crear-admin-inicial": {
      "post": { "summary": "Create an administrator (administrador)", "security": [{"bearer": []}], "responses": { "201": { "description": "created" }, "400": { "description": "invalid input" } } }
    },
    "/health": { "get": { "summary": "Liveness check", "responses": { "200": { "description": "healthy" } } } },
    "/ready": { "get": { "summary": "Readiness check", "responses": { "200": { "description": "ready" }, "503": { "description": "not ready" } } } },
    "/metrics": { "get": { "summary": "Prometheus metrics", "responses": { "200": { "description": "metrics" } } } }
  }
}`
