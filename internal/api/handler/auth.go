package handler

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	jwt "github.com/golang-jwt/jwt/v5"
)

// generateJWT issues an observer token with a random subject.
func (h *Handler) generateJWT(observerID string) (string, error) {
	claims := jwt.MapClaims{
		"observer_id": observerID,
		"exp":         time.Now().Add(time.Hour * 72).Unix(),
		"iss":         "pairlink-service",
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(h.Secret)
}

// GetToken creates an observer identity and returns a JWT for it.
func (h *Handler) GetToken(c *gin.Context) {
	observerUUID, _ := uuid.NewRandom()
	observerID := observerUUID.String()

	token, err := h.generateJWT(observerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token, "observer_id": observerID})
}

// validateAndGetObserverID checks the token signature and expiry and returns
// the observer subject.
func (h *Handler) validateAndGetObserverID(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return h.Secret, nil
	})
	if err != nil || !token.Valid {
		return "", fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", fmt.Errorf("invalid token claims")
	}
	observerID, _ := claims["observer_id"].(string)
	if observerID == "" {
		return "", fmt.Errorf("observer_id claim missing")
	}
	return observerID, nil
}

// RequireAuth guards an endpoint with the Bearer token check.
func (h *Handler) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization token missing"})
			return
		}
		observerID, err := h.validateAndGetObserverID(strings.TrimPrefix(authHeader, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token or expired"})
			return
		}
		c.Set("observer_id", observerID)
		c.Next()
	}
}
