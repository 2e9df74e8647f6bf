package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/docentes-portal/backend/internal/models"
	"github.com/docentes-portal/backend/internal/reconcile"
	"github.com/docentes-portal/backend/internal/users"
	"github.com/docentes-portal/backend/pkg/logger"
	"github.com/docentes-portal/backend/pkg/middleware"
	"github.com/gin-gonic/gin"
)

// isExcelMimeType accepts the xlsx and legacy xls upload content types.
func isExcelMimeType(ct string) bool {
	switch ct {
	case "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", "application/vnd.ms-excel":
		return true
	}
	return false
}

// UsersHandler serves the user directory and the instructor import endpoints.
type UsersHandler struct {
	svc       *users.Service
	rec       *reconcile.Reconciler
	source    reconcile.Source
	maxUpload int64
}

// NewUsersHandler wires the handler. source is the fixed location used by
// sincronizar-docentes; maxUploadMB bounds importar-docentes uploads.
func NewUsersHandler(svc *users.Service, rec *reconcile.Reconciler, source reconcile.Source, maxUploadMB int) *UsersHandler {
	if maxUploadMB <= 0 {
		maxUploadMB = 10
	}
	return &UsersHandler{svc: svc, rec: rec, source: source, maxUpload: int64(maxUploadMB) << 20}
}

// Register routes under /users. Every route requires authentication.
func (h *UsersHandler) Register(rg *gin.RouterGroup, requireAuth gin.HandlerFunc) {
	u := rg.Group("/users", requireAuth)
	admin := middleware.RequireRoles(models.RoleAdministrator)

	u.GET("", middleware.RequireRoles(models.RoleAdministrator, models.RoleInstructor), h.List)
	u.POST("", admin, h.Create)
	u.POST("/importar-docentes", admin, h.ImportInstructors)
	u.POST("/sincronizar-docentes", admin, h.SyncInstructors)
	u.POST("/crear-admin-inicial", admin, h.CreateAdmin)
}

func (h *UsersHandler) List(c *gin.Context) {
	all, err := h.svc.FindAll(c.Request.Context())
	if err != nil {
		logger.Errorf("list users: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "failed to list users"})
		return
	}
	c.JSON(http.StatusOK, all)
}

func (h *UsersHandler) Create(c *gin.Context) {
	var in users.CreateUserInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	h.create(c, in)
}

// CreateAdmin only creates administrators and requires their credentials.
func (h *UsersHandler) CreateAdmin(c *gin.Context) {
	var in users.CreateUserInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	if in.Role != models.RoleAdministrator {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Este endpoint solo crea administradores"})
		return
	}
	if in.Username == "" || in.Password == "" || in.Nombre == "" || in.Email == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Faltan campos requeridos: username, password, nombre, email"})
		return
	}
	logger.Infof("crear-admin-inicial: creating administrator %q", in.Username)
	h.create(c, in)
}

func (h *UsersHandler) create(c *gin.Context, in users.CreateUserInput) {
	u, err := h.svc.Create(c.Request.Context(), in)
	switch {
	case errors.Is(err, users.ErrInvalidUser):
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
	case errors.Is(err, users.ErrDuplicate):
		c.JSON(http.StatusConflict, gin.H{"message": err.Error()})
	case err != nil:
		logger.Errorf("create user: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "failed to create user"})
	default:
		c.JSON(http.StatusCreated, u)
	}
}

// ImportInstructors reconciles an uploaded workbook (multipart field "archivo").
func (h *UsersHandler) ImportInstructors(c *gin.Context) {
	fh, err := c.FormFile("archivo")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "No se subió archivo"})
		return
	}
	if !isExcelMimeType(fh.Header.Get("Content-Type")) {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Solo se aceptan archivos Excel (.xlsx o .xls)"})
		return
	}
	if fh.Size > h.maxUpload {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"message": fmt.Sprintf("El archivo supera el límite de %d MB", h.maxUpload>>20)})
		return
	}
	f, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Error procesando archivo: " + err.Error()})
		return
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Error procesando archivo: " + err.Error()})
		return
	}

	out, err := h.rec.Reconcile(c.Request.Context(), data)
	if err != nil {
		h.reconcileError(c, "Error procesando archivo", err)
		return
	}
	c.JSON(http.StatusCreated, out)
}

// SyncInstructors reconciles the workbook kept at the configured fixed location.
func (h *UsersHandler) SyncInstructors(c *gin.Context) {
	if h.source == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"message": "sync source not configured"})
		return
	}
	out, err := h.rec.Sync(c.Request.Context(), h.source)
	if err != nil {
		h.reconcileError(c, "Error sincronizando", err)
		return
	}
	c.JSON(http.StatusCreated, out)
}

func (h *UsersHandler) reconcileError(c *gin.Context, prefix string, err error) {
	if errors.Is(err, reconcile.ErrInvalidFormat) || errors.Is(err, reconcile.ErrEmptyInput) {
		c.JSON(http.StatusBadRequest, gin.H{"message": prefix + ": " + err.Error()})
		return
	}
	logger.Errorf("%s: %v", prefix, err)
	c.JSON(http.StatusInternalServerError, gin.H{"message": prefix})
}
