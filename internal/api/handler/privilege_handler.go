package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/devcrm/crm-service/internal/api/metrics"
	"github.com/devcrm/crm-service/internal/core/domain"
	"github.com/devcrm/crm-service/internal/core/ports"
)

// PrivilegeHandler handles HTTP requests for the privilege catalog.
type PrivilegeHandler struct {
	service ports.PrivilegeService
}

func NewPrivilegeHandler(service ports.PrivilegeService) *PrivilegeHandler {
	return &PrivilegeHandler{service: service}
}

// List handles GET /api/privileges.
//
// @Summary      List privileges with live role counts
// @Tags         privileges
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   privilegeResponse
// @Failure      403  {object}  errorResponse
// @Router       /api/privileges [get]
func (h *PrivilegeHandler) List(c echo.Context) error {
	views, err := h.service.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toPrivilegeResponses(views))
}

// Get handles GET /api/privileges/:id.
//
// @Summary      Get a privilege
// @Tags         privileges
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Privilege id"
// @Success      200  {object}  privilegeResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/privileges/{id} [get]
func (h *PrivilegeHandler) Get(c echo.Context) error {
	view, err := h.service.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toPrivilegeResponse(*view))
}

// GetByName handles GET /api/privileges/name/:name.
//
// @Summary      Get a privilege by name
// @Tags         privileges
// @Produce      json
// @Security     BearerAuth
// @Param        name  path      string  true  "Privilege name (e.g. READ_ROLES)"
// @Success      200   {object}  privilegeResponse
// @Failure      404   {object}  errorResponse
// @Router       /api/privileges/name/{name} [get]
func (h *PrivilegeHandler) GetByName(c echo.Context) error {
	view, err := h.service.GetByName(c.Request().Context(), c.Param("name"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toPrivilegeResponse(*view))
}

// Categories handles GET /api/privileges/categories.
//
// @Summary      List privilege categories
// @Tags         privileges
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  string
// @Router       /api/privileges/categories [get]
func (h *PrivilegeHandler) Categories(c echo.Context) error {
	categories, err := h.service.Categories(c.Request().Context())
	if err != nil {
		return err
	}
	if categories == nil {
		categories = []string{}
	}
	return c.JSON(http.StatusOK, categories)
}

// ListByCategory handles GET /api/privileges/category/:category.
//
// @Summary      List privileges in a category
// @Tags         privileges
// @Produce      json
// @Security     BearerAuth
// @Param        category  path      string  true  "Category (e.g. ROLES)"
// @Success      200       {array}   privilegeResponse
// @Router       /api/privileges/category/{category} [get]
func (h *PrivilegeHandler) ListByCategory(c echo.Context) error {
	views, err := h.service.ListByCategory(c.Request().Context(), c.Param("category"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toPrivilegeResponses(views))
}

// Create handles POST /api/privileges.
//
// @Summary      Create a privilege
// @Tags         privileges
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createPrivilegeRequest  true  "Privilege details"
// @Success      201   {object}  privilegeResponse
// @Failure      409   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /api/privileges [post]
func (h *PrivilegeHandler) Create(c echo.Context) error {
	var req createPrivilegeRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	view, err := h.service.Create(c.Request().Context(), ports.PrivilegeInput{
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
	})
	if err != nil {
		return err
	}
	metrics.DirectoryMutationsTotal.WithLabelValues(domain.EntityPrivilege, "create").Inc()
	return c.JSON(http.StatusCreated, toPrivilegeResponse(*view))
}

// Update handles PUT /api/privileges/:id. Description and category are replaced.
//
// @Summary      Replace a privilege's description and category
// @Tags         privileges
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                  true  "Privilege id"
// @Param        body  body      updatePrivilegeRequest  true  "Privilege details"
// @Success      200   {object}  privilegeResponse
// @Failure      404   {object}  errorResponse
// @Router       /api/privileges/{id} [put]
func (h *PrivilegeHandler) Update(c echo.Context) error {
	var req updatePrivilegeRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	view, err := h.service.Update(c.Request().Context(), c.Param("id"), req.Description, req.Category)
	if err != nil {
		return err
	}
	metrics.DirectoryMutationsTotal.WithLabelValues(domain.EntityPrivilege, "update").Inc()
	return c.JSON(http.StatusOK, toPrivilegeResponse(*view))
}

// Patch handles PATCH /api/privileges/:id.
//
// @Summary      Partially update a privilege
// @Tags         privileges
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                 true  "Privilege id"
// @Param        body  body      patchPrivilegeRequest  true  "Fields to change"
// @Success      200   {object}  privilegeResponse
// @Failure      404   {object}  errorResponse
// @Router       /api/privileges/{id} [patch]
func (h *PrivilegeHandler) Patch(c echo.Context) error {
	var req patchPrivilegeRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	view, err := h.service.Patch(c.Request().Context(), c.Param("id"), domain.PrivilegePatch{
		Description: req.Description,
		Category:    req.Category,
	})
	if err != nil {
		return err
	}
	metrics.DirectoryMutationsTotal.WithLabelValues(domain.EntityPrivilege, "patch").Inc()
	return c.JSON(http.StatusOK, toPrivilegeResponse(*view))
}

// Delete handles DELETE /api/privileges/:id. A privilege granted to any role
// is rejected with 409.
//
// @Summary      Delete a privilege
// @Tags         privileges
// @Security     BearerAuth
// @Param        id   path  string  true  "Privilege id"
// @Success      204
// @Failure      404  {object}  errorResponse
// @Failure      409  {object}  errorResponse
// @Router       /api/privileges/{id} [delete]
func (h *PrivilegeHandler) Delete(c echo.Context) error {
	if err := h.service.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	metrics.DirectoryMutationsTotal.WithLabelValues(domain.EntityPrivilege, "delete").Inc()
	return c.NoContent(http.StatusNoContent)
}
