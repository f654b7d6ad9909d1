package handler

import (
	"github.com/devcrm/crm-service/internal/core/domain"
	"github.com/devcrm/crm-service/internal/core/ports"
)

func toUserPatch(req patchUserRequest) domain.UserPatch {
	return domain.UserPatch{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Enabled:   req.Enabled,
	}
}

func toUserResponse(v ports.UserView) userResponse {
	return userResponse{
		ID:                 v.ID,
		Username:           v.Username,
		Email:              v.Email,
		FirstName:          v.FirstName,
		LastName:           v.LastName,
		Roles:              toRoleResponses(v.Roles),
		Enabled:            v.Enabled,
		LanguagePreference: v.LanguagePreference,
		CreatedAt:          v.CreatedAt,
		UpdatedAt:          v.UpdatedAt,
	}
}

func toUserResponses(views []ports.UserView) []userResponse {
	out := make([]userResponse, 0, len(views))
	for _, v := range views {
		out = append(out, toUserResponse(v))
	}
	return out
}
