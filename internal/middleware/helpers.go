// internal/middleware/helpers.go
package middleware

import "github.com/gin-gonic/gin"

// GetRoles gets caller roles from context
func GetRoles(c *gin.Context) []string {
	roles, exists := c.Get("roles")
	if !exists {
		return []string{}
	}

	rolesList, ok := roles.([]string)
	if !ok {
		return []string{}
	}

	return rolesList
}

// HasRole checks whether the caller holds the given role
func HasRole(c *gin.Context, role string) bool {
	for _, r := range GetRoles(c) {
		if r == role {
			return true
		}
	}
	return false
}

// GetStoreID gets the caller's store scope from context, if any
func GetStoreID(c *gin.Context) string {
	storeID, exists := c.Get("store_id")
	if !exists {
		return ""
	}

	s, ok := storeID.(string)
	if !ok {
		return ""
	}

	return s
}

// IsAuthenticated checks if request is authenticated
func IsAuthenticated(c *gin.Context) bool {
	_, exists := c.Get("subject")
	return exists
}

// IsOperator checks if the caller is a platform operator
func IsOperator(c *gin.Context) bool {
	return HasRole(c, "operator") || HasRole(c, "admin")
}
