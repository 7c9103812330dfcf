package middleware

import (
	"strings"

	"vhp/internal/models"
	"vhp/internal/services"
	"vhp/pkg/jwt"
	"vhp/pkg/response"

	"github.com/gin-gonic/gin"
)

// AuthMiddleware 权限中间件
type AuthMiddleware struct {
	vendorService     *services.VendorService
	permissionService *services.PermissionService
	jwtManager        *jwt.JWTManager
}

func NewAuthMiddleware(vendorService *services.VendorService, permissionService *services.PermissionService) *AuthMiddleware {
	return &AuthMiddleware{
		vendorService:     vendorService,
		permissionService: permissionService,
		jwtManager:        jwt.GetJWTManager(), // 使用全局JWT管理器
	}
}

// RequireLogin 要求有效的厂商JWT
func (m *AuthMiddleware) RequireLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		// 从Authorization头获取JWT token
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Unauthorized(c, "请先登录")
			c.Abort()
			return
		}

		// 检查Bearer格式
		if !strings.HasPrefix(authHeader, "Bearer ") {
			response.Unauthorized(c, "认证头格式错误")
			c.Abort()
			return
		}

		// 提取token
		tokenString := authHeader[7:] // 去掉 "Bearer "

		// 验证token
		claims, err := m.jwtManager.VerifyToken(tokenString)
		if err != nil {
			response.Unauthorized(c, "Token无效或已过期")
			c.Abort()
			return
		}

		// 获取厂商信息
		vendor, err := m.vendorService.GetByUniqueID(claims.VendorUniqueID)
		if err != nil {
			response.Unauthorized(c, "厂商不存在")
			c.Abort()
			return
		}

		// 检查厂商状态
		if vendor.Status != models.VendorStatusActive {
			response.Unauthorized(c, "厂商已被停用")
			c.Abort()
			return
		}

		// 将厂商信息保存到上下文
		c.Set("vendor", vendor)
		c.Set("vendor_unique_id", vendor.UniqueID)
		c.Set("vendor_level", vendor.Level)
		c.Set("claims", claims)

		c.Next()
	}
}

// RequireCapability 要求厂商拥有指定能力（角色或委托来源均可）
func (m *AuthMiddleware) RequireCapability(capabilityPath string) gin.HandlerFunc {
	return func(c *gin.Context) {
		vendorUniqueID, exists := c.Get("vendor_unique_id")
		if !exists {
			response.Unauthorized(c, "请先登录")
			c.Abort()
			return
		}

		hasPermission, err := m.permissionService.HasPermission(c.Request.Context(), vendorUniqueID.(string), capabilityPath)
		if err != nil {
			response.ServerError(c, "权限检查失败")
			c.Abort()
			return
		}

		if !hasPermission {
			response.Forbidden(c, "权限不足：需要 "+capabilityPath+" 权限")
			c.Abort()
			return
		}

		c.Next()
	}
}

// RequireLevelAtMost 要求厂商层级不低于指定层级（数字越小权限越高）
func (m *AuthMiddleware) RequireLevelAtMost(maxLevel int) gin.HandlerFunc {
	return func(c *gin.Context) {
		level, exists := c.Get("vendor_level")
		if !exists {
			response.Unauthorized(c, "请先登录")
			c.Abort()
			return
		}

		if level.(int) > maxLevel {
			response.Forbidden(c, "厂商层级权限不足")
			c.Abort()
			return
		}

		c.Next()
	}
}
