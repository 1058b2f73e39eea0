package handlers

import (
	"net/http"
	"time"

	"github.com/bonhomie/fest-system/middleware"
	"github.com/bonhomie/fest-system/models"
	"github.com/bonhomie/fest-system/services"
	"github.com/golang-jwt/jwt/v4"
)

const tokenTTL = 72 * time.Hour

type AuthHandler struct {
	authService services.AuthService
	jwtSecret   string
}

func NewAuthHandler(authService services.AuthService, jwtSecret string) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		jwtSecret:   jwtSecret,
	}
}

func (h *AuthHandler) generateToken(profile *models.Profile) (string, error) {
	claims := jwt.MapClaims{
		"profile_id": profile.ID,
		"role":       string(profile.Role),
		"exp":        time.Now().Add(tokenTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(h.jwtSecret))
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var input services.RegisterInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	profile, err := h.authService.Register(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	token, err := h.generateToken(profile)
	if err != nil {
		serverErrorResponse(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, jsonResponse{"token": token, "profile": profile}, nil)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var creds models.Credentials
	if err := readJSON(w, r, &creds); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	profile, err := h.authService.Login(r.Context(), services.LoginInput{
		Email:    creds.Email,
		Password: creds.Password,
	})
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	token, err := h.generateToken(profile)
	if err != nil {
		serverErrorResponse(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, jsonResponse{"token": token, "profile": profile}, nil)
}

func (h *AuthHandler) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	profileID, err := middleware.GetProfileIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}

	var input struct {
		CurrentPassword string `json:"current_password"`
		NewPassword     string `json:"new_password"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.authService.UpdatePassword(r.Context(), profileID, input.CurrentPassword, input.NewPassword); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, jsonResponse{"message": "password updated"}, nil)
}
