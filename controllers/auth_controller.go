package controllers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/levisilvaaa/dailydose/config"
	"github.com/levisilvaaa/dailydose/models"
	"github.com/levisilvaaa/dailydose/utils"
)

// AuthController handles account registration, login and profile endpoints.
type AuthController struct {
	db *gorm.DB
}

// NewAuthController creates a new controller instance.
func NewAuthController(db *gorm.DB) *AuthController {
	return &AuthController{db: db}
}

type registerRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	FullName string `json:"full_name"`
	Timezone string `json:"timezone"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Register creates an account with a bcrypt password hash and issues a JWT so
// the app lands on the home screen directly after sign-up.
func (a *AuthController) Register(ctx *gin.Context) {
	var req registerRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40001, "email and password are required")
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if _, err := mail.ParseAddress(email); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40002, "invalid email address")
		return
	}
	if len(req.Password) < 8 {
		utils.Error(ctx, http.StatusBadRequest, 40003, "password must be at least 8 characters")
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50001, "failed to hash password")
		return
	}

	user := models.User{
		Email:        email,
		FullName:     strings.TrimSpace(req.FullName),
		PasswordHash: hash,
		Timezone:     strings.TrimSpace(req.Timezone),
	}
	if err := a.db.Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			utils.Error(ctx, http.StatusConflict, 40901, "email already registered")
			return
		}
		utils.Sugar.Errorf("register: create user failed: %v", err)
		utils.Error(ctx, http.StatusInternalServerError, 50002, "failed to create account")
		return
	}

	a.respondWithToken(ctx, user)
}

// Login verifies credentials and issues a JWT.
func (a *AuthController) Login(ctx *gin.Context) {
	var req loginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40004, "email and password are required")
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	var user models.User
	if err := a.db.Where("email = ?", email).First(&user).Error; err != nil {
		// Indistinguishable from a wrong password on purpose.
		utils.Error(ctx, http.StatusUnauthorized, 40106, "invalid credentials")
		return
	}

	if !utils.CheckPassword(user.PasswordHash, req.Password) {
		utils.Error(ctx, http.StatusUnauthorized, 40106, "invalid credentials")
		return
	}

	a.respondWithToken(ctx, user)
}

// Logout revokes the presented token until its natural expiration.
func (a *AuthController) Logout(ctx *gin.Context) {
	authHeader := ctx.GetHeader("Authorization")
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 {
		utils.Error(ctx, http.StatusBadRequest, 40005, "missing bearer token")
		return
	}
	token := strings.TrimSpace(parts[1])

	claims, err := utils.ParseToken(token)
	if err == nil && claims.ExpiresAt != nil {
		utils.BlacklistToken(token, claims.ExpiresAt.Time)
	}
	utils.Success(ctx, gin.H{"message": "logged out"})
}

// Me returns the authenticated user's profile with the avatar path resolved
// to a retrievable URL.
func (a *AuthController) Me(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var user models.User
	if err := a.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40401, "user not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50003, "failed to load user")
		return
	}

	utils.Success(ctx, profileResponse(user))
}

type updateProfileRequest struct {
	FullName *string `json:"full_name"`
	Timezone *string `json:"timezone"`
}

// UpdateProfile changes display name and/or stored timezone.
func (a *AuthController) UpdateProfile(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var req updateProfileRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40006, "invalid request body")
		return
	}

	var user models.User
	if err := a.db.First(&user, userID).Error; err != nil {
		utils.Error(ctx, http.StatusNotFound, 40401, "user not found")
		return
	}

	if req.FullName != nil {
		user.FullName = strings.TrimSpace(*req.FullName)
	}
	if req.Timezone != nil {
		tz := strings.TrimSpace(*req.Timezone)
		if tz != "" {
			if _, err := time.LoadLocation(tz); err != nil {
				utils.Error(ctx, http.StatusBadRequest, 40007, "unknown timezone")
				return
			}
		}
		user.Timezone = tz
	}

	if err := a.db.Save(&user).Error; err != nil {
		utils.Sugar.Errorf("update profile failed for user %d: %v", userID, err)
		utils.Error(ctx, http.StatusInternalServerError, 50004, "failed to update profile")
		return
	}

	utils.Success(ctx, profileResponse(user))
}

// UploadAvatar stores an avatar image under the configured avatar directory
// and makes it the active profile picture. The previous upload row stays
// unclaimed and is swept by the cleaner.
func (a *AuthController) UploadAvatar(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	file, header, err := ctx.Request.FormFile("file")
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40008, "no file uploaded")
		return
	}
	defer file.Close()

	cfg := config.Get()
	maxSize := int64(cfg.AvatarMaxSizeMB) << 20
	if header.Size > 0 && header.Size > maxSize {
		utils.Error(ctx, http.StatusBadRequest, 40009, fmt.Sprintf("file exceeds %dMB", cfg.AvatarMaxSizeMB))
		return
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	switch ext {
	case ".png", ".jpg", ".jpeg", ".webp":
	default:
		utils.Error(ctx, http.StatusBadRequest, 40010, "unsupported image type")
		return
	}

	if err := os.MkdirAll(cfg.AvatarDir, 0o755); err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50005, "failed to prepare storage")
		return
	}

	objectName := uuid.NewString() + ext
	dstPath := filepath.Join(cfg.AvatarDir, objectName)

	out, err := os.Create(dstPath)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50006, "failed to save file")
		return
	}
	defer out.Close()

	lr := &io.LimitedReader{R: file, N: maxSize + 1}
	written, err := io.Copy(out, lr)
	if err != nil || written > maxSize {
		_ = out.Close()
		_ = os.Remove(dstPath)
		utils.Error(ctx, http.StatusBadRequest, 40009, fmt.Sprintf("file exceeds %dMB", cfg.AvatarMaxSizeMB))
		return
	}

	publicURL := avatarPublicURL(filepath.ToSlash(dstPath))
	upload := models.AvatarUpload{
		UserID:   userID,
		FilePath: dstPath,
		URL:      publicURL,
		Claimed:  true,
		ExpireAt: time.Now().Add(time.Duration(cfg.AvatarUnclaimedHours) * time.Hour),
	}

	err = a.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&upload).Error; err != nil {
			return err
		}
		// Release the previous avatar so the cleaner reclaims its file.
		if err := tx.Model(&models.AvatarUpload{}).
			Where("user_id = ? AND id <> ? AND claimed = ?", userID, upload.ID, true).
			Update("claimed", false).Error; err != nil {
			return err
		}
		return tx.Model(&models.User{}).Where("id = ?", userID).
			Update("avatar_path", filepath.ToSlash(dstPath)).Error
	})
	if err != nil {
		_ = os.Remove(dstPath)
		utils.Sugar.Errorf("avatar upload failed for user %d: %v", userID, err)
		utils.Error(ctx, http.StatusInternalServerError, 50007, "failed to record upload")
		return
	}

	utils.Success(ctx, gin.H{"avatar_url": publicURL})
}

func (a *AuthController) respondWithToken(ctx *gin.Context, user models.User) {
	cfg := config.Get()
	ttl := time.Duration(cfg.TokenTTLHours) * time.Hour
	token, err := utils.GenerateToken(user.ID, user.Email, ttl)
	if err != nil {
		utils.Sugar.Errorf("token generation failed for user %d: %v", user.ID, err)
		utils.Error(ctx, http.StatusInternalServerError, 50008, "failed to issue token")
		return
	}

	utils.Success(ctx, gin.H{
		"token": token,
		"user":  profileResponse(user),
	})
}

func profileResponse(user models.User) gin.H {
	return gin.H{
		"id":         user.ID,
		"email":      user.Email,
		"full_name":  user.FullName,
		"avatar_url": avatarPublicURL(user.AvatarPath),
		"timezone":   user.Timezone,
		"created_at": user.CreatedAt,
	}
}
