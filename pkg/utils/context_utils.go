// Файл: pkg/utils/context_utils.go

package utils

import (
	"context"

	"support-system/internal/dto"
	"support-system/pkg/constants"
	"support-system/pkg/contextkeys"
	apperrors "support-system/pkg/errors"
)

// GetClaimsFromCtx возвращает принципала текущего запроса.
// Отсутствие клеймов означает анонимный запрос.
func GetClaimsFromCtx(ctx context.Context) (*dto.UserClaims, error) {
	claims, ok := ctx.Value(contextkeys.UserClaimsKey).(*dto.UserClaims)
	if !ok || claims == nil {
		return nil, apperrors.ErrUnauthorized
	}
	return claims, nil
}

func IsAdmin(claims *dto.UserClaims) bool {
	return claims != nil && claims.Role == constants.RoleAdmin
}
