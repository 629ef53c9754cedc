package util

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Success 统一成功返回 200 {"data": ...}
func Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, gin.H{"data": data})
}

// Created 创建成功返回 201 {"data": ...}
func Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, gin.H{"data": data})
}

// Error 统一错误返回 {"error": msg}
func Error(c *gin.Context, httpStatus int, msg string) {
	c.JSON(httpStatus, gin.H{"error": msg})
}

// ErrorWithDetails 带字段级错误详情的返回，用于参数校验失败
func ErrorWithDetails(c *gin.Context, httpStatus int, msg string, details map[string]string) {
	c.JSON(httpStatus, gin.H{
		"error":   msg,
		"details": details,
	})
}
