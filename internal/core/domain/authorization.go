package domain

// CheckRoleAssignment rejects an administrator changing their own role set.
func CheckRoleAssignment(target User, actingUsername string) error {
	if target.Username == actingUsername {
		return &Error{Kind: ErrSelfEscalation, Reason: ReasonOwnRole, Entity: EntityUser, Key: target.Username}
	}
	return nil
}

// CheckRoleDeletion enforces that system roles and roles still held by users
// are never deleted.
func CheckRoleDeletion(role Role, userCount int64) error {
	if role.SystemRole {
		return &Error{Kind: ErrConflict, Reason: ReasonSystemRole, Entity: EntityRole, Key: role.Name}
	}
	if userCount > 0 {
		return &Error{Kind: ErrConflict, Reason: ReasonRoleInUse, Entity: EntityRole, Key: role.Name, Count: userCount}
	}
	return nil
}

// CheckPrivilegeDeletion enforces that a privilege referenced by any role is
// never deleted.
func CheckPrivilegeDeletion(privilege Privilege, roleCount int64) error {
	if roleCount > 0 {
		return &Error{Kind: ErrConflict, Reason: ReasonPrivilegeInUse, Entity: EntityPrivilege, Key: privilege.Name, Count: roleCount}
	}
	return nil
}

// CheckPreferenceUpdate allows a user to change their own preferences and an
// administrator to change anyone's.
func CheckPreferenceUpdate(targetID, requestingID string, requestingIsAdmin bool) error {
	if requestingIsAdmin || targetID == requestingID {
		return nil
	}
	return &Error{Kind: ErrAuthorization, Reason: ReasonForeignPreference, Entity: EntityUser, Key: targetID}
}

// CheckUserDeletion rejects an administrator deleting their own account.
func CheckUserDeletion(target User, actingUsername string) error {
	if target.Username == actingUsername {
		return &Error{Kind: ErrAuthorization, Reason: ReasonOwnAccount, Entity: EntityUser, Key: target.Username}
	}
	return nil
}

// UniqueIDs returns ids with duplicates removed, preserving first occurrence.
func UniqueIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
