package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Jayr222/appointment-systemv2-sub002/utils"
)

// PatientAuthMiddleware extracts the authenticated patient from the bearer
// credential issued by the external identity service. Only the subject is
// consumed here; session management stays out of this repository.
func PatientAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Insufficient authorization",
				"code":  0,
			})
			return
		}
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")

		patientID, err := utils.ExtractSubjectFromToken(tokenString)
		if err != nil || patientID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Insufficient authorization",
				"code":  0,
			})
			return
		}

		c.Set("patientID", patientID)
		c.Next()
	}
}
