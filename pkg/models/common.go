package models

import (
	"errors"

	"github.com/golang-jwt/jwt/v4"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

const RoleAdmin = `admin`

type Claims struct {
	jwt.RegisteredClaims
	Role string `json:"role"`
}

type TokenResponse struct {
	Token string `json:"token"`
}
