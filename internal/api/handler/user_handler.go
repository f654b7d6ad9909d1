package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/devcrm/crm-service/internal/api/metrics"
	"github.com/devcrm/crm-service/internal/core/domain"
	"github.com/devcrm/crm-service/internal/core/ports"
)

// UserHandler handles HTTP requests for user administration and preferences.
type UserHandler struct {
	service ports.UserService
}

func NewUserHandler(service ports.UserService) *UserHandler {
	return &UserHandler{service: service}
}

// List handles GET /api/users.
//
// @Summary      List users with their roles
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   userResponse
// @Failure      403  {object}  errorResponse
// @Router       /api/users [get]
func (h *UserHandler) List(c echo.Context) error {
	views, err := h.service.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUserResponses(views))
}

// Get handles GET /api/users/:id.
//
// @Summary      Get a user
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "User id"
// @Success      200  {object}  userResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/users/{id} [get]
func (h *UserHandler) Get(c echo.Context) error {
	view, err := h.service.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUserResponse(*view))
}

// UpdateRole handles PUT /api/users/:id/role. The user's role set becomes
// exactly the given role. Administrators cannot change their own role.
//
// @Summary      Replace a user's role
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                 true  "User id"
// @Param        body  body      updateUserRoleRequest  true  "Role id"
// @Success      200   {object}  userResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /api/users/{id}/role [put]
func (h *UserHandler) UpdateRole(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	var req updateUserRoleRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	view, err := h.service.UpdateRole(c.Request().Context(), c.Param("id"), req.RoleID, p.Username)
	if err != nil {
		return err
	}
	metrics.DirectoryMutationsTotal.WithLabelValues(domain.EntityUser, "assign_role").Inc()
	return c.JSON(http.StatusOK, toUserResponse(*view))
}

// UpdatePreferences handles PATCH /api/users/:id/preferences. Users may
// change their own preferences; administrators may change anyone's.
//
// @Summary      Update a user's preferences
// @Tags         users
// @Accept       json
// @Security     BearerAuth
// @Param        id    path  string                    true  "User id"
// @Param        body  body  updatePreferencesRequest  true  "Preferences"
// @Success      204
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /api/users/{id}/preferences [patch]
func (h *UserHandler) UpdatePreferences(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	var req updatePreferencesRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	err = h.service.UpdatePreferences(c.Request().Context(), ports.PreferencesInput{
		UserID:             c.Param("id"),
		LanguagePreference: req.LanguagePreference,
		RequestingUserID:   p.UserID,
		RequestingIsAdmin:  p.HasRole(domain.RoleAdmin),
	})
	if err != nil {
		return err
	}
	metrics.DirectoryMutationsTotal.WithLabelValues(domain.EntityUser, "preferences").Inc()
	return c.NoContent(http.StatusNoContent)
}

// UpdateProfile handles PATCH /api/users/:id.
//
// @Summary      Partially update a user's profile
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string            true  "User id"
// @Param        body  body      patchUserRequest  true  "Fields to change"
// @Success      200   {object}  userResponse
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /api/users/{id} [patch]
func (h *UserHandler) UpdateProfile(c echo.Context) error {
	var req patchUserRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	view, err := h.service.UpdateProfile(c.Request().Context(), c.Param("id"), toUserPatch(req))
	if err != nil {
		return err
	}
	metrics.DirectoryMutationsTotal.WithLabelValues(domain.EntityUser, "update").Inc()
	return c.JSON(http.StatusOK, toUserResponse(*view))
}

// Delete handles DELETE /api/users/:id. Administrators cannot delete their
// own account.
//
// @Summary      Delete a user
// @Tags         users
// @Security     BearerAuth
// @Param        id   path  string  true  "User id"
// @Success      204
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/users/{id} [delete]
func (h *UserHandler) Delete(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.Request().Context(), c.Param("id"), p.Username); err != nil {
		return err
	}
	metrics.DirectoryMutationsTotal.WithLabelValues(domain.EntityUser, "delete").Inc()
	return c.NoContent(http.StatusNoContent)
}
