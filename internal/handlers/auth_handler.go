package handlers

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"catalog/internal/logger"
	"catalog/internal/models"
	"catalog/internal/services"
	"catalog/internal/validation"
)

// AuthHandler handles HTTP requests for authentication.
type AuthHandler struct {
	authService *services.AuthService
	validate    *validator.Validate
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		validate:    validation.Validator(),
	}
}

// RegisterRoutes registers the authentication routes with the Fiber app.
func (h *AuthHandler) RegisterRoutes(router fiber.Router) {
	authRoutes := router.Group("/auth")
	authRoutes.Post("/register", h.HandleRegister)
	authRoutes.Post("/login", h.HandleLogin)
}

// HandleRegister handles new user registration.
func (h *AuthHandler) HandleRegister(c *fiber.Ctx) error {
	var user models.User
	if err := c.BodyParser(&user); err != nil {
		return badRequest("Invalid request body: %v", err)
	}

	if err := h.check(user); err != nil {
		return err
	}

	if err := h.authService.RegisterUser(&user); err != nil {
		if errors.Is(err, services.ErrUserExists) {
			return fiber.NewError(fiber.StatusConflict, err.Error())
		}
		return err
	}

	logger.Info("user registered", logger.Fields{"username": user.Username})

	// For security, do not return the password hash
	user.Password = ""
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "User registered successfully",
		"user":    user,
	})
}

// LoginRequest represents the request body for login.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// HandleLogin handles user login and issues a JWT token.
func (h *AuthHandler) HandleLogin(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest("Invalid request body: %v", err)
	}

	if err := h.check(req); err != nil {
		return err
	}

	token, err := h.authService.LoginUser(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			logger.Info("login rejected", logger.Fields{"username": req.Username})
			return fiber.NewError(fiber.StatusUnauthorized, "Invalid username or password")
		}
		return err
	}

	return c.JSON(fiber.Map{
		"message": "Login successful",
		"token":   token,
	})
}

// check validates an auth payload, reporting failures as a
// *services.ValidationError keyed by JSON field name.
func (h *AuthHandler) check(payload interface{}) error {
	err := h.validate.Struct(payload)
	if err == nil {
		return nil
	}
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err
	}
	violations := make(validation.Violations, 0, len(validationErrors))
	for _, e := range validationErrors {
		violations = append(violations, validation.Violation{
			Field:   e.Field(),
			Message: "failed on the '" + e.Tag() + "' rule",
		})
	}
	return &services.ValidationError{Violations: violations}
}
