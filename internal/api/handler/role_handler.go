package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/devcrm/crm-service/internal/api/metrics"
	"github.com/devcrm/crm-service/internal/core/domain"
	"github.com/devcrm/crm-service/internal/core/ports"
)

// RoleHandler handles HTTP requests for roles and their privilege sets.
type RoleHandler struct {
	service ports.RoleService
}

func NewRoleHandler(service ports.RoleService) *RoleHandler {
	return &RoleHandler{service: service}
}

// List handles GET /api/roles.
//
// @Summary      List roles with live user counts
// @Tags         roles
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   roleResponse
// @Failure      403  {object}  errorResponse
// @Router       /api/roles [get]
func (h *RoleHandler) List(c echo.Context) error {
	views, err := h.service.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toRoleResponses(views))
}

// Get handles GET /api/roles/:id.
//
// @Summary      Get a role
// @Tags         roles
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Role id"
// @Success      200  {object}  roleResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/roles/{id} [get]
func (h *RoleHandler) Get(c echo.Context) error {
	view, err := h.service.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toRoleResponse(*view))
}

// GetByName handles GET /api/roles/name/:name.
//
// @Summary      Get a role by name
// @Tags         roles
// @Produce      json
// @Security     BearerAuth
// @Param        name  path      string  true  "Role name (e.g. ROLE_ADMIN)"
// @Success      200   {object}  roleResponse
// @Failure      404   {object}  errorResponse
// @Router       /api/roles/name/{name} [get]
func (h *RoleHandler) GetByName(c echo.Context) error {
	view, err := h.service.GetByName(c.Request().Context(), c.Param("name"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toRoleResponse(*view))
}

// Create handles POST /api/roles.
//
// @Summary      Create a role
// @Tags         roles
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createRoleRequest  true  "Role details"
// @Success      201   {object}  roleResponse
// @Failure      409   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /api/roles [post]
func (h *RoleHandler) Create(c echo.Context) error {
	var req createRoleRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	view, err := h.service.Create(c.Request().Context(), ports.RoleInput{Name: req.Name, Description: req.Description})
	if err != nil {
		return err
	}
	metrics.DirectoryMutationsTotal.WithLabelValues(domain.EntityRole, "create").Inc()
	return c.JSON(http.StatusCreated, toRoleResponse(*view))
}

// Update handles PUT /api/roles/:id. The name is immutable; only the
// description is replaced.
//
// @Summary      Replace a role's description
// @Tags         roles
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string             true  "Role id"
// @Param        body  body      updateRoleRequest  true  "Role details"
// @Success      200   {object}  roleResponse
// @Failure      404   {object}  errorResponse
// @Router       /api/roles/{id} [put]
func (h *RoleHandler) Update(c echo.Context) error {
	var req updateRoleRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	view, err := h.service.Update(c.Request().Context(), c.Param("id"), req.Description)
	if err != nil {
		return err
	}
	metrics.DirectoryMutationsTotal.WithLabelValues(domain.EntityRole, "update").Inc()
	return c.JSON(http.StatusOK, toRoleResponse(*view))
}

// Patch handles PATCH /api/roles/:id.
//
// @Summary      Partially update a role
// @Tags         roles
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string            true  "Role id"
// @Param        body  body      patchRoleRequest  true  "Fields to change"
// @Success      200   {object}  roleResponse
// @Failure      404   {object}  errorResponse
// @Router       /api/roles/{id} [patch]
func (h *RoleHandler) Patch(c echo.Context) error {
	var req patchRoleRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	view, err := h.service.Patch(c.Request().Context(), c.Param("id"), domain.RolePatch{Description: req.Description})
	if err != nil {
		return err
	}
	metrics.DirectoryMutationsTotal.WithLabelValues(domain.EntityRole, "patch").Inc()
	return c.JSON(http.StatusOK, toRoleResponse(*view))
}

// Delete handles DELETE /api/roles/:id. System roles and roles held by any
// user are rejected with 409.
//
// @Summary      Delete a role
// @Tags         roles
// @Security     BearerAuth
// @Param        id   path  string  true  "Role id"
// @Success      204
// @Failure      404  {object}  errorResponse
// @Failure      409  {object}  errorResponse
// @Router       /api/roles/{id} [delete]
func (h *RoleHandler) Delete(c echo.Context) error {
	if err := h.service.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	metrics.DirectoryMutationsTotal.WithLabelValues(domain.EntityRole, "delete").Inc()
	return c.NoContent(http.StatusNoContent)
}

// Privileges handles GET /api/roles/:id/privileges.
//
// @Summary      List a role's privileges
// @Tags         roles
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Role id"
// @Success      200  {array}   privilegeResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/roles/{id}/privileges [get]
func (h *RoleHandler) Privileges(c echo.Context) error {
	views, err := h.service.Privileges(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toPrivilegeResponses(views))
}

// SetPrivileges handles PUT /api/roles/:id/privileges. The role's privilege
// set is replaced wholesale; an unknown id leaves it unchanged.
//
// @Summary      Replace a role's privileges
// @Tags         roles
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                 true  "Role id"
// @Param        body  body      rolePrivilegesRequest  true  "Privilege ids"
// @Success      200   {object}  roleResponse
// @Failure      404   {object}  errorResponse
// @Router       /api/roles/{id}/privileges [put]
func (h *RoleHandler) SetPrivileges(c echo.Context) error {
	var req rolePrivilegesRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	view, err := h.service.SetPrivileges(c.Request().Context(), c.Param("id"), req.PrivilegeIDs)
	if err != nil {
		return err
	}
	metrics.DirectoryMutationsTotal.WithLabelValues(domain.EntityRole, "set_privileges").Inc()
	return c.JSON(http.StatusOK, toRoleResponse(*view))
}

// AddPrivilege handles POST /api/roles/:id/privileges/:privilegeId.
//
// @Summary      Grant a privilege to a role
// @Tags         roles
// @Produce      json
// @Security     BearerAuth
// @Param        id           path      string  true  "Role id"
// @Param        privilegeId  path      string  true  "Privilege id"
// @Success      200          {object}  roleResponse
// @Failure      404          {object}  errorResponse
// @Router       /api/roles/{id}/privileges/{privilegeId} [post]
func (h *RoleHandler) AddPrivilege(c echo.Context) error {
	view, err := h.service.AddPrivilege(c.Request().Context(), c.Param("id"), c.Param("privilegeId"))
	if err != nil {
		return err
	}
	metrics.DirectoryMutationsTotal.WithLabelValues(domain.EntityRole, "add_privilege").Inc()
	return c.JSON(http.StatusOK, toRoleResponse(*view))
}

// RemovePrivilege handles DELETE /api/roles/:id/privileges/:privilegeId.
//
// @Summary      Revoke a privilege from a role
// @Tags         roles
// @Produce      json
// @Security     BearerAuth
// @Param        id           path      string  true  "Role id"
// @Param        privilegeId  path      string  true  "Privilege id"
// @Success      200          {object}  roleResponse
// @Failure      404          {object}  errorResponse
// @Router       /api/roles/{id}/privileges/{privilegeId} [delete]
func (h *RoleHandler) RemovePrivilege(c echo.Context) error {
	view, err := h.service.RemovePrivilege(c.Request().Context(), c.Param("id"), c.Param("privilegeId"))
	if err != nil {
		return err
	}
	metrics.DirectoryMutationsTotal.WithLabelValues(domain.EntityRole, "remove_privilege").Inc()
	return c.JSON(http.StatusOK, toRoleResponse(*view))
}
