package handler

import "github.com/devcrm/crm-service/internal/core/ports"

func toRoleResponse(v ports.RoleView) roleResponse {
	return roleResponse{
		ID:          v.ID,
		Name:        v.Name,
		Description: v.Description,
		SystemRole:  v.SystemRole,
		UserCount:   v.UserCount,
		CreatedAt:   v.CreatedAt,
		UpdatedAt:   v.UpdatedAt,
	}
}

func toRoleResponses(views []ports.RoleView) []roleResponse {
	out := make([]roleResponse, 0, len(views))
	for _, v := range views {
		out = append(out, toRoleResponse(v))
	}
	return out
}
