package handler

import (
	"github.com/devcrm/crm-service/internal/core/domain"
	"github.com/devcrm/crm-service/internal/core/ports"
)

// --- Request → Service input ---

func toCustomerInput(req customerRequest) ports.CustomerInput {
	return ports.CustomerInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
		Company:   req.Company,
		Notes:     req.Notes,
	}
}

func toCustomerPatch(req patchCustomerRequest) domain.CustomerPatch {
	return domain.CustomerPatch{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
		Company:   req.Company,
		Notes:     req.Notes,
	}
}

// --- Service view → Response ---

func toCustomerResponse(v ports.CustomerView) customerResponse {
	return customerResponse{
		ID:        v.ID,
		FirstName: v.FirstName,
		LastName:  v.LastName,
		Email:     v.Email,
		Phone:     v.Phone,
		Company:   v.Company,
		Notes:     v.Notes,
		CreatedAt: v.CreatedAt,
		UpdatedAt: v.UpdatedAt,
	}
}

func toCustomerResponses(views []ports.CustomerView) []customerResponse {
	out := make([]customerResponse, 0, len(views))
	for _, v := range views {
		out = append(out, toCustomerResponse(v))
	}
	return out
}
