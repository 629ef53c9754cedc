package handler

import (
	"net/http"
	"strings"

	"receipt-ledger/internal/util"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type UpdateProfileReq struct {
	DisplayName string `json:"display_name" binding:"max=64"`
}

type ChangePasswordReq struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

// UpdateProfile 更新当前用户的昵称等资料
func UpdateProfile(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c)
		if !ok {
			return
		}

		var req UpdateProfileReq
		if err := c.ShouldBindJSON(&req); err != nil {
			bindError(c, err)
			return
		}
		req.DisplayName = strings.TrimSpace(req.DisplayName)

		if err := db.WithContext(c.Request.Context()).Model(user).Update("display_name", req.DisplayName).Error; err != nil {
			util.Error(c, http.StatusServiceUnavailable, "data unavailable, try again later")
			return
		}
		user.DisplayName = req.DisplayName

		util.Success(c, gin.H{"user": userView(user)})
	}
}

// ChangePassword 修改当前用户密码（校验旧密码，bcrypt 保存新密码）
func ChangePassword(db *gorm.DB, bcryptCost int) gin.HandlerFunc {
	if bcryptCost < bcrypt.MinCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return func(c *gin.Context) {
		user, ok := currentUser(c)
		if !ok {
			return
		}

		var req ChangePasswordReq
		if err := c.ShouldBindJSON(&req); err != nil {
			bindError(c, err)
			return
		}

		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.OldPassword)); err != nil {
			util.ErrorWithDetails(c, http.StatusUnprocessableEntity, "validation failed", map[string]string{
				"old_password": "is incorrect",
			})
			return
		}
		if !isStrongPassword(req.NewPassword) {
			util.ErrorWithDetails(c, http.StatusUnprocessableEntity, "validation failed", map[string]string{
				"new_password": "must be 8-32 characters with upper case, lower case and a digit",
			})
			return
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcryptCost)
		if err != nil {
			util.Error(c, http.StatusInternalServerError, "could not hash password")
			return
		}
		if err := db.WithContext(c.Request.Context()).Model(user).Update("password_hash", string(hash)).Error; err != nil {
			util.Error(c, http.StatusServiceUnavailable, "data unavailable, try again later")
			return
		}

		util.Success(c, "password_changed")
	}
}
