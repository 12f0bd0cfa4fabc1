package usecase

import (
	authdomain "jobtrail-backend/internal/auth/domain"
	authdto "jobtrail-backend/internal/auth/dto"
)

// SignupCallback is invoked after a successful registration.
type SignupCallback func(userID, email string)

// AuthUsecase defines the interface for authentication use cases
type AuthUsecase interface {
	Login(req *authdto.LoginRequest) (*authdto.TokenResponse, error)
	Register(req *authdto.RegisterRequest) (*authdto.TokenResponse, error)
	RefreshToken(refreshToken string) (*authdto.TokenResponse, error)
	Logout(refreshToken string) error
	ValidateToken(tokenString string) (*authdomain.User, error)
	SetSignupCallback(cb SignupCallback)
}
