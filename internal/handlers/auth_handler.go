package handlers

import (
	"strings"

	"vhp/internal/services"
	"vhp/pkg/jwt"
	"vhp/pkg/response"

	"github.com/gin-gonic/gin"
)

type LoginRequest struct {
	UniqueID string `json:"unique_id" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AuthHandler 认证处理器
type AuthHandler struct {
	vendorService *services.VendorService
}

func NewAuthHandler(vendorService *services.VendorService) *AuthHandler {
	return &AuthHandler{vendorService: vendorService}
}

// Login 厂商登录
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	result, err := h.vendorService.Login(req.UniqueID, req.Password)
	if err != nil {
		response.HandleError(c, err, "登录失败")
		return
	}

	response.Success(c, result)
}

// RefreshToken 刷新Token
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	authHeader := c.GetHeader("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		response.Unauthorized(c, "认证头格式错误")
		return
	}

	token, err := jwt.GetJWTManager().RefreshToken(authHeader[7:])
	if err != nil {
		response.Unauthorized(c, "Token无效或已过期")
		return
	}

	response.Success(c, gin.H{"token": token})
}

// Me 获取当前厂商信息
func (h *AuthHandler) Me(c *gin.Context) {
	vendor, exists := c.Get("vendor")
	if !exists {
		response.Unauthorized(c, "请先登录")
		return
	}
	response.Success(c, vendor)
}
