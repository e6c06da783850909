package auth

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"github.com/binhbb2204/BookHub/pkg/database"
	"github.com/binhbb2204/BookHub/pkg/logger"
	"github.com/binhbb2204/BookHub/pkg/models"
	"github.com/binhbb2204/BookHub/pkg/utils"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Handler struct {
	JWTSecret string
	log       *logger.Logger
}

func NewHandler(jwtSecret string) *Handler {
	return &Handler{
		JWTSecret: jwtSecret,
		log:       logger.GetLogger().WithContext("component", "auth"),
	}
}

func (h *Handler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondErrorDetail(c, http.StatusBadRequest, "Validation Error", err.Error())
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	if _, err := mail.ParseAddress(req.Email); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid email format")
		return
	}
	if err := validatePasswordStrength(req.Password); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}

	userID := uuid.NewString()

	hashedPassword, err := utils.HashPassword(req.Password)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, "Failed to hash password")
		return
	}

	createdAt := time.Now().UTC()
	query := `INSERT INTO users (id, username, email, password_hash, created_at) VALUES (?, ?, ?, ?, ?)`
	_, err = database.DB.ExecContext(c.Request.Context(), query, userID, req.Username, req.Email, hashedPassword, createdAt)
	if err != nil {
		h.log.Warn("insert_user_failed", "error", err)
		if strings.Contains(err.Error(), "UNIQUE constraint failed: users.username") {
			utils.RespondError(c, http.StatusConflict, "Username already exists")
			return
		}
		if strings.Contains(err.Error(), "UNIQUE constraint failed: users.email") {
			utils.RespondError(c, http.StatusConflict, "Email already exists")
			return
		}
		utils.RespondError(c, http.StatusInternalServerError, "Failed to create user")
		return
	}

	token, err := utils.GenerateJWT(userID, req.Username, h.JWTSecret)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	h.log.Info("user_registered", "user_id", userID, "username", req.Username)
	utils.RespondSuccess(c, http.StatusCreated, "Registered Successfully", models.AuthResponse{
		Token:     token,
		UserID:    userID,
		Username:  req.Username,
		Email:     req.Email,
		ExpiresAt: time.Now().Add(utils.TokenTTL),
		CreatedAt: createdAt,
	})
}

func (h *Handler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondErrorDetail(c, http.StatusBadRequest, "Validation Error", err.Error())
		return
	}

	if req.Username == "" && req.Email == "" {
		utils.RespondError(c, http.StatusBadRequest, "Username or email is required")
		return
	}

	column, value := "username", req.Username
	if value == "" {
		column, value = "email", req.Email
	}

	var user models.User
	query := fmt.Sprintf(`SELECT id, username, email, password_hash, created_at FROM users WHERE %s = ?`, column)
	err := database.DB.QueryRowContext(c.Request.Context(), query, value).
		Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			utils.RespondError(c, http.StatusUnauthorized, "Account not found")
			return
		}
		utils.RespondError(c, http.StatusInternalServerError, "Something went wrong")
		return
	}

	if err := utils.CheckPassword(user.PasswordHash, req.Password); err != nil {
		utils.RespondError(c, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	token, err := utils.GenerateJWT(user.ID, user.Username, h.JWTSecret)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	utils.RespondSuccess(c, http.StatusOK, "Logged in Successfully", models.AuthResponse{
		Token:     token,
		UserID:    user.ID,
		Username:  user.Username,
		Email:     user.Email,
		ExpiresAt: time.Now().Add(utils.TokenTTL),
		CreatedAt: user.CreatedAt,
	})
}

func (h *Handler) ChangePassword(c *gin.Context) {
	userID, ok := UserID(c)
	if !ok {
		utils.RespondError(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req models.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondErrorDetail(c, http.StatusBadRequest, "Validation Error", err.Error())
		return
	}
	if err := validatePasswordStrength(req.NewPassword); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}

	ctx := c.Request.Context()
	var hash string
	if err := database.DB.QueryRowContext(ctx, `SELECT password_hash FROM users WHERE id = ?`, userID).Scan(&hash); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			utils.RespondError(c, http.StatusNotFound, "Account not found")
			return
		}
		utils.RespondError(c, http.StatusInternalServerError, "Something went wrong")
		return
	}
	if err := utils.CheckPassword(hash, req.CurrentPassword); err != nil {
		utils.RespondError(c, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	newHash, err := utils.HashPassword(req.NewPassword)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, "Failed to hash password")
		return
	}
	if _, err := database.DB.ExecContext(ctx, `UPDATE users SET password_hash = ? WHERE id = ?`, newHash, userID); err != nil {
		utils.RespondError(c, http.StatusInternalServerError, "Failed to update password")
		return
	}
	utils.RespondSuccess(c, http.StatusOK, "Password changed successfully", nil)
}

var errWeakPassword = errors.New("password too weak: must be at least 8 characters with mixed case and numbers")

func validatePasswordStrength(pw string) error {
	if len(pw) < 8 {
		return errWeakPassword
	}
	var lower, upper, digit bool
	for _, r := range pw {
		switch {
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= '0' && r <= '9':
			digit = true
		}
	}
	if !(lower && upper && digit) {
		return errWeakPassword
	}
	return nil
}
