// api/models/auth_models.go
package models

import "github.com/golang-jwt/jwt/v5"

// LoginRequest defines the structure for the login request body
type LoginRequest struct {
	UserName string `json:"user_name" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse defines the structure for the login response body
type LoginResponse struct {
	Message string `json:"message"`
	Token   string `json:"token"`
}

// CustomClaims includes standard claims and the user name for JWT
type CustomClaims struct {
	UserName string `json:"user_name"`
	jwt.RegisteredClaims
}
