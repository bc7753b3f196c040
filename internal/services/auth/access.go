package auth

import "github.com/mcoot/gamestore/internal/model"

// Require is the capability check run at the start of every privileged operation.
// It fails closed: a nil or inactive account, or one of the other role, is forbidden.
func Require(account *model.Account, role model.Role) error {
	if account == nil || !account.Activated || account.Role != role {
		return model.ErrForbidden
	}
	return nil
}

// RequireGameOwner layers the ownership check on top of the developer role check
func RequireGameOwner(account *model.Account, game *model.Game) error {
	if err := Require(account, model.RoleDeveloper); err != nil {
		return err
	}
	if !game.OwnedBy(account.ID) {
		return model.ErrForbidden
	}
	return nil
}
