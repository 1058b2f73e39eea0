package middleware

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/bonhomie/fest-system/models"
	"github.com/golang-jwt/jwt/v4"
)

const (
	jwtClaimProfileID = "profile_id"
	jwtClaimRole      = "role"
)

func GetProfileIDFromContext(ctx context.Context) (int, error) {
	claims, ok := ctx.Value(claimsContextKey).(jwt.MapClaims)
	if !ok {
		return 0, errors.New("token claims not found in context")
	}

	idClaim, ok := claims[jwtClaimProfileID]
	if !ok {
		return 0, fmt.Errorf("missing %q claim in token", jwtClaimProfileID)
	}

	idFloat, ok := idClaim.(float64)
	if !ok {
		// Some token issuers encode numeric claims as strings.
		if idStr, okStr := idClaim.(string); okStr {
			id, err := strconv.Atoi(idStr)
			if err == nil && id > 0 {
				return id, nil
			}
		}
		return 0, fmt.Errorf("invalid type for %q claim: %T", jwtClaimProfileID, idClaim)
	}

	id := int(idFloat)
	if id <= 0 {
		return 0, fmt.Errorf("invalid profile id in %q claim: %d", jwtClaimProfileID, id)
	}
	return id, nil
}

func GetRoleFromContext(ctx context.Context) (models.ProfileRole, error) {
	claims, ok := ctx.Value(claimsContextKey).(jwt.MapClaims)
	if !ok {
		return "", errors.New("token claims not found in context")
	}

	roleStr, ok := claims[jwtClaimRole].(string)
	if !ok {
		return "", fmt.Errorf("missing or invalid %q claim in token", jwtClaimRole)
	}

	role := models.ProfileRole(roleStr)
	switch role {
	case models.RoleStudent, models.RoleCoordinator, models.RoleAdmin:
		return role, nil
	default:
		return "", fmt.Errorf("unknown role in claim: %q", roleStr)
	}
}
