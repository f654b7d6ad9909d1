package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/devcrm/crm-service/internal/api/metrics"
	"github.com/devcrm/crm-service/internal/core/domain"
	"github.com/devcrm/crm-service/internal/core/ports"
)

// CustomerHandler handles HTTP requests for customer operations.
type CustomerHandler struct {
	service ports.CustomerService
}

func NewCustomerHandler(service ports.CustomerService) *CustomerHandler {
	return &CustomerHandler{service: service}
}

// List handles GET /api/customers.
//
// @Summary      List customers
// @Tags         customers
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   customerResponse
// @Failure      401  {object}  errorResponse
// @Router       /api/customers [get]
func (h *CustomerHandler) List(c echo.Context) error {
	views, err := h.service.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toCustomerResponses(views))
}

// Get handles GET /api/customers/:id.
//
// @Summary      Get a customer
// @Tags         customers
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Customer id"
// @Success      200  {object}  customerResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/customers/{id} [get]
func (h *CustomerHandler) Get(c echo.Context) error {
	view, err := h.service.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toCustomerResponse(*view))
}

// Create handles POST /api/customers.
//
// @Summary      Create a customer
// @Tags         customers
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      customerRequest  true  "Customer details"
// @Success      201   {object}  customerResponse
// @Failure      409   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /api/customers [post]
func (h *CustomerHandler) Create(c echo.Context) error {
	var req customerRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	view, err := h.service.Create(c.Request().Context(), toCustomerInput(req))
	if err != nil {
		return err
	}
	metrics.DirectoryMutationsTotal.WithLabelValues(domain.EntityCustomer, "create").Inc()
	return c.JSON(http.StatusCreated, toCustomerResponse(*view))
}

// Update handles PUT /api/customers/:id. Every mutable field is replaced.
//
// @Summary      Replace a customer
// @Tags         customers
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string           true  "Customer id"
// @Param        body  body      customerRequest  true  "Customer details"
// @Success      200   {object}  customerResponse
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /api/customers/{id} [put]
func (h *CustomerHandler) Update(c echo.Context) error {
	var req customerRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	view, err := h.service.Update(c.Request().Context(), c.Param("id"), toCustomerInput(req))
	if err != nil {
		return err
	}
	metrics.DirectoryMutationsTotal.WithLabelValues(domain.EntityCustomer, "update").Inc()
	return c.JSON(http.StatusOK, toCustomerResponse(*view))
}

// Patch handles PATCH /api/customers/:id. Only supplied fields change.
//
// @Summary      Partially update a customer
// @Tags         customers
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                true  "Customer id"
// @Param        body  body      patchCustomerRequest  true  "Fields to change"
// @Success      200   {object}  customerResponse
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /api/customers/{id} [patch]
func (h *CustomerHandler) Patch(c echo.Context) error {
	var req patchCustomerRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	view, err := h.service.Patch(c.Request().Context(), c.Param("id"), toCustomerPatch(req))
	if err != nil {
		return err
	}
	metrics.DirectoryMutationsTotal.WithLabelValues(domain.EntityCustomer, "patch").Inc()
	return c.JSON(http.StatusOK, toCustomerResponse(*view))
}

// Delete handles DELETE /api/customers/:id.
//
// @Summary      Delete a customer
// @Tags         customers
// @Security     BearerAuth
// @Param        id   path  string  true  "Customer id"
// @Success      204
// @Failure      404  {object}  errorResponse
// @Router       /api/customers/{id} [delete]
func (h *CustomerHandler) Delete(c echo.Context) error {
	if err := h.service.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	metrics.DirectoryMutationsTotal.WithLabelValues(domain.EntityCustomer, "delete").Inc()
	return c.NoContent(http.StatusNoContent)
}
