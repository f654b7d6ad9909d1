package handler

import "github.com/devcrm/crm-service/internal/core/ports"

func toPrivilegeResponse(v ports.PrivilegeView) privilegeResponse {
	return privilegeResponse{
		ID:          v.ID,
		Name:        v.Name,
		Description: v.Description,
		Category:    v.Category,
		RoleCount:   v.RoleCount,
		CreatedAt:   v.CreatedAt,
		UpdatedAt:   v.UpdatedAt,
	}
}

func toPrivilegeResponses(views []ports.PrivilegeView) []privilegeResponse {
	out := make([]privilegeResponse, 0, len(views))
	for _, v := range views {
		out = append(out, toPrivilegeResponse(v))
	}
	return out
}
