package service

import (
	apperrors "taskboard/internal/errors"
	"taskboard/internal/model"
)

// CanAccessTask decides whether principal may read or mutate task under the
// role-aware policy. It is a pure function of its inputs so the rule is
// testable without storage or transport. Admins may access every task;
// members only their own. Returns nil to allow, ErrTaskForbidden to deny.
//
// The strict-ownership policy never calls this: there the owner is folded
// into the store query itself and a foreign task is simply not found.
func CanAccessTask(principal *model.User, task *model.Task) error {
	if principal.IsAdmin() {
		return nil
	}
	if task.OwnerEmail != principal.Email {
		return apperrors.ErrTaskForbidden
	}
	return nil
}
