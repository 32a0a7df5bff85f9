package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/artem13815/docqa/api/http/presenter"
	"github.com/artem13815/docqa/pkg/auth"
	"github.com/artem13815/docqa/pkg/logger"
)

const tokenTypeBearer = "bearer"

type AuthHandler struct {
	useCase auth.AuthUseCase
	log     *slog.Logger
}

func NewAuthHandler(useCase auth.AuthUseCase, log *slog.Logger) *AuthHandler {
	return &AuthHandler{useCase: useCase, log: log}
}

// bcrypt only looks at the first 72 bytes, so longer passwords are refused.
type signupRequest struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,max=72"`
}

// Signup handles user registration.
// @Summary Register user
// @Tags    auth
// @Accept  json
// @Produce json
// @Param   input body signupRequest true "registration payload"
// @Success 200 {object} presenter.TokenResponse
// @Failure 400 {object} presenter.ErrorResponse
// @Router  /signup [post]
func (h *AuthHandler) Signup(c *fiber.Ctx) error {
	var req signupRequest
	if ok, err := bindJSON(c, &req); !ok {
		return err
	}

	result, err := h.useCase.Register(c.UserContext(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrUserAlreadyExists):
			return presenter.Error(c, http.StatusBadRequest, "Email already registered")
		case errors.Is(err, auth.ErrInvalidCredentials):
			return presenter.Error(c, http.StatusBadRequest, "email and password are required")
		default:
			h.log.ErrorContext(c.UserContext(), "signup failed", logger.Err(err), slog.String("request_id", presenter.RequestID(c)))
			return presenter.Error(c, http.StatusInternalServerError, "failed to register user")
		}
	}

	return presenter.JSON(c, http.StatusOK, presenter.TokenResponse{
		AccessToken: result.Token,
		TokenType:   tokenTypeBearer,
	})
}

type loginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Login handles user login.
// @Summary Login
// @Tags    auth
// @Accept  json
// @Produce json
// @Param   input body loginRequest true "login payload"
// @Success 200 {object} presenter.TokenResponse
// @Failure 400 {object} presenter.ErrorResponse
// @Failure 401 {object} presenter.ErrorResponse
// @Router  /login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if ok, err := bindJSON(c, &req); !ok {
		return err
	}

	result, err := h.useCase.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			return presenter.Error(c, http.StatusUnauthorized, "Incorrect username or password")
		}
		h.log.ErrorContext(c.UserContext(), "login failed", logger.Err(err), slog.String("request_id", presenter.RequestID(c)))
		return presenter.Error(c, http.StatusInternalServerError, "failed to login")
	}

	return presenter.JSON(c, http.StatusOK, presenter.TokenResponse{
		AccessToken: result.Token,
		TokenType:   tokenTypeBearer,
	})
}
