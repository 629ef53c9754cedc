package handler

import (
	"errors"
	"net/http"
	"regexp"
	"strings"
	"time"

	"receipt-ledger/internal/logger"
	"receipt-ledger/internal/models"
	"receipt-ledger/internal/util"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	maxFailedLogins = 5
	lockoutDuration = 10 * time.Minute
)

var usernameRe = regexp.MustCompile(`^[A-Za-z0-9_]{3,20}$`)

// AuthHandler 负责登录/注册相关接口
type AuthHandler struct {
	DB         *gorm.DB
	JWTSecret  string
	Issuer     string
	TokenTTL   time.Duration
	BcryptCost int
}

func NewAuthHandler(db *gorm.DB, jwtSecret, issuer string, ttlHours, bcryptCost int) *AuthHandler {
	if ttlHours <= 0 {
		ttlHours = 24
	}
	if bcryptCost < bcrypt.MinCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &AuthHandler{
		DB:         db,
		JWTSecret:  jwtSecret,
		Issuer:     issuer,
		TokenTTL:   time.Duration(ttlHours) * time.Hour,
		BcryptCost: bcryptCost,
	}
}

// ---------- 注册 ----------

type registerReq struct {
	Username        string `json:"username" binding:"required"`
	Password        string `json:"password" binding:"required"`
	ConfirmPassword string `json:"confirm_password" binding:"required"`
	DisplayName     string `json:"display_name" binding:"max=64"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req registerReq
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	details := map[string]string{}
	if !usernameRe.MatchString(req.Username) {
		details["username"] = "must be 3-20 letters, digits or underscores"
	}
	if !isStrongPassword(req.Password) {
		details["password"] = "must be 8-32 characters with upper case, lower case and a digit"
	}
	if req.Password != req.ConfirmPassword {
		details["confirm_password"] = "does not match password"
	}
	if len(details) > 0 {
		util.ErrorWithDetails(c, http.StatusUnprocessableEntity, "validation failed", details)
		return
	}

	db := h.DB.WithContext(c.Request.Context())

	// 不区分大小写唯一：使用 LOWER(username) 检查
	var count int64
	if err := db.Model(&models.User{}).
		Where("LOWER(username) = LOWER(?)", req.Username).
		Count(&count).Error; err != nil {
		util.Error(c, http.StatusServiceUnavailable, "data unavailable, try again later")
		return
	}
	if count > 0 {
		util.ErrorWithDetails(c, http.StatusUnprocessableEntity, "validation failed", map[string]string{
			"username": "is already taken",
		})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), h.BcryptCost)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, "could not hash password")
		return
	}

	user := models.User{
		Username:     req.Username,
		PasswordHash: string(hash),
		DisplayName:  req.DisplayName,
	}
	if err := db.Create(&user).Error; err != nil {
		util.Error(c, http.StatusServiceUnavailable, "data unavailable, try again later")
		return
	}

	util.Created(c, gin.H{
		"user": userView(&user),
	})
}

// 检查密码强度：8-32 位，包含大小写字母和数字
func isStrongPassword(pwd string) bool {
	if len(pwd) < 8 || len(pwd) > 32 {
		return false
	}
	var hasUpper, hasLower, hasDigit bool
	for _, ch := range pwd {
		switch {
		case ch >= 'A' && ch <= 'Z':
			hasUpper = true
		case ch >= 'a' && ch <= 'z':
			hasLower = true
		case ch >= '0' && ch <= '9':
			hasDigit = true
		}
	}
	return hasUpper && hasLower && hasDigit
}

// ---------- 登录 ----------

type loginReq struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	db := h.DB.WithContext(c.Request.Context())
	log := logger.FromContext(c.Request.Context())

	var user models.User
	if err := db.Where("LOWER(username) = LOWER(?)", req.Username).
		First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.Error(c, http.StatusUnauthorized, "invalid username or password")
		} else {
			util.Error(c, http.StatusServiceUnavailable, "data unavailable, try again later")
		}
		return
	}

	now := time.Now()
	// 检查是否被锁定
	if user.LockedUntil != nil && now.Before(*user.LockedUntil) {
		util.Error(c, http.StatusUnauthorized, "account locked, try again later")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		// 密码错误：递增失败次数，达到 5 次则锁定 10 分钟
		user.FailedLoginAttempts++
		if user.FailedLoginAttempts >= maxFailedLogins {
			lockUntil := now.Add(lockoutDuration)
			user.LockedUntil = &lockUntil
			user.FailedLoginAttempts = 0
			log.Warn().Uint("user_id", user.ID).Time("locked_until", lockUntil).Msg("account locked")
		}
		if err := db.Save(&user).Error; err != nil {
			log.Error().Err(err).Msg("record failed login")
		}
		util.Error(c, http.StatusUnauthorized, "invalid username or password")
		return
	}

	// 登录成功：重置失败次数和锁定时间，记录登录 IP 和时间
	user.FailedLoginAttempts = 0
	user.LockedUntil = nil
	user.LastLoginIP = c.ClientIP()
	user.LastLoginAt = &now
	if err := db.Save(&user).Error; err != nil {
		log.Error().Err(err).Msg("record login")
	}

	token, err := util.GenerateToken(h.JWTSecret, h.Issuer, user.ID, h.TokenTTL)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, "could not issue token")
		return
	}

	util.Success(c, gin.H{
		"token": token,
		"user":  userView(&user),
	})
}
