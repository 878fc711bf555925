package security

import (
	"fmt"
	"net/http"
	"strings"

	"sams/pkg/models"
	"sams/pkg/roles"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// JWTMiddleware validates the bearer token and stores identity claims on
// the request context.
func JWTMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header missing"})
			c.Abort()
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method")
			}
			return secretKey(), nil
		})

		if err != nil || !token.Valid {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			c.Abort()
			return
		}

		claims := token.Claims.(jwt.MapClaims)
		c.Set("userID", claims["userID"])
		c.Set("orgID", claims["orgID"])
		c.Set("role", claims["role"])
		c.Set("username", claims["username"])
		c.Next()
	}
}

// Authorize ensures the user has at least the required role.
func Authorize(requiredRole string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !IsAllowed(c, requiredRole) {
			c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden: insufficient permissions"})
			c.Abort()
			return
		}

		c.Next()
	}
}

func IsAllowed(c *gin.Context, requiredRole string) bool {
	value, exists := c.Get("role")
	if !exists {
		return false
	}
	userRole, ok := value.(string)
	if !ok {
		return false
	}

	return roles.Role(userRole).HasPermission(roles.Role(requiredRole))
}

// ActorFromContext builds the explicit request context threaded through the
// service layer. Numeric claims arrive as float64 from the JWT decoder.
func ActorFromContext(c *gin.Context) (models.Actor, error) {
	userID, err := intClaim(c, "userID")
	if err != nil {
		return models.Actor{}, err
	}
	orgID, err := intClaim(c, "orgID")
	if err != nil {
		return models.Actor{}, err
	}

	role, _ := c.Get("role")
	roleStr, _ := role.(string)
	username, _ := c.Get("username")
	usernameStr, _ := username.(string)

	return models.Actor{
		OrganizationID: orgID,
		UserID:         userID,
		Username:       usernameStr,
		IsAdmin:        roles.Role(roleStr).HasPermission(roles.Admin),
	}, nil
}

func intClaim(c *gin.Context, key string) (int, error) {
	value, exists := c.Get(key)
	if !exists {
		return 0, fmt.Errorf("missing claim %s", key)
	}
	switch v := value.(type) {
	case float64:
		return int(v), nil
	case int:
		return v, nil
	default:
		return 0, fmt.Errorf("claim %s has unexpected type %T", key, value)
	}
}
