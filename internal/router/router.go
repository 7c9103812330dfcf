package router

import (
	"vhp/internal/database"
	"vhp/internal/handlers"
	"vhp/internal/middleware"
	"vhp/internal/services"
	"vhp/pkg/response"

	"github.com/gin-gonic/gin"
)

// SetupRouter 设置路由
func SetupRouter() *gin.Engine {
	router := gin.New()

	// 中间件
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(middleware.ErrorHandler())
	router.Use(middleware.SetupCORS())

	// 注册路由
	registerRoutes(router)
	return router
}

// 注册所有路由
func registerRoutes(router *gin.Engine) {
	db := database.GetDB()
	redisCache := database.GetRedisCache()

	vendorService := services.NewVendorService(db)
	hierarchyService := services.NewHierarchyService(db)
	roleService := services.NewRoleService(db)
	permissionService := services.NewPermissionService(db, redisCache)
	delegationService := services.NewDelegationService(db, redisCache)

	auth := middleware.NewAuthMiddleware(vendorService, permissionService)

	// API路由组
	api := router.Group("/api/v1")
	{
		// 健康检查接口
		api.GET("/health", healthCheck)
		api.GET("/ping", ping)

		// JWT认证路由
		authHandler := handlers.NewAuthHandler(vendorService)
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/login", authHandler.Login)          // 厂商登录
			authGroup.POST("/refresh", authHandler.RefreshToken) // 刷新Token
			authGroup.GET("/me", auth.RequireLogin(), authHandler.Me)
		}

		// 厂商目录路由
		vendorHandler := handlers.NewVendorHandler(vendorService)
		vendors := api.Group("/vendors")
		{
			vendors.POST("", auth.RequireLogin(), auth.RequireCapability("vendorManagement.canCreateSubVendors"), vendorHandler.Create)
			vendors.GET("", auth.RequireLogin(), auth.RequireCapability("vendorManagement.canViewSubVendors"), vendorHandler.GetAll)
			vendors.GET("/:unique_id", auth.RequireLogin(), vendorHandler.GetByUniqueID)
			vendors.GET("/:unique_id/children", auth.RequireLogin(), auth.RequireCapability("vendorManagement.canViewSubVendors"), vendorHandler.GetChildren)
			vendors.PUT("/:unique_id/status", auth.RequireLogin(), auth.RequireCapability("vendorManagement.canUpdateSubVendorDetails"), vendorHandler.UpdateStatus)
		}

		// 层级遍历路由
		hierarchyHandler := handlers.NewHierarchyHandler(hierarchyService)
		hierarchy := api.Group("/hierarchy", auth.RequireLogin())
		{
			hierarchy.GET("/vendors/:unique_id/ancestors", hierarchyHandler.GetAncestors)
			hierarchy.GET("/vendors/:unique_id/descendants", hierarchyHandler.GetDescendants)
			hierarchy.GET("/vendors/:unique_id/branch", hierarchyHandler.GetBranch)
			hierarchy.GET("/vendors/:unique_id/tree", hierarchyHandler.GetTree)
			hierarchy.GET("/regions/:region/tree", hierarchyHandler.GetRegionTree)
			hierarchy.GET("/regions/:region/vendors", hierarchyHandler.GetVendorsByRegion)
			hierarchy.GET("/regions/:region/levels/:level", hierarchyHandler.GetVendorsByLevelInRegion)
		}

		// 角色模板路由（仅超级厂商可创建）
		roleHandler := handlers.NewRoleHandler(roleService)
		roles := api.Group("/roles")
		{
			roles.POST("", auth.RequireLogin(), auth.RequireLevelAtMost(1), roleHandler.Create)
			roles.GET("", auth.RequireLogin(), roleHandler.GetAll)
			roles.GET("/level/:level", auth.RequireLogin(), roleHandler.GetByLevel)
			roles.GET("/name/:role_name", auth.RequireLogin(), roleHandler.GetByName)
		}

		// 权限解析路由
		permissionHandler := handlers.NewPermissionHandler(permissionService)
		permissions := api.Group("/permissions")
		{
			permissions.POST("/assign-default", auth.RequireLogin(), auth.RequireCapability("vendorManagement.canManageSubVendors"), permissionHandler.AssignDefaultRole)
			permissions.GET("", auth.RequireLogin(), permissionHandler.GetGrant)
			permissions.PUT("", auth.RequireLogin(), auth.RequireCapability("vendorManagement.canManageSubVendors"), permissionHandler.UpdatePermissions)
			permissions.DELETE("", auth.RequireLogin(), auth.RequireCapability("vendorManagement.canManageSubVendors"), permissionHandler.DeleteGrant)
			permissions.GET("/effective/:unique_id", auth.RequireLogin(), permissionHandler.GetEffectivePermissions)
			permissions.GET("/check/:unique_id", auth.RequireLogin(), permissionHandler.CheckPermission)
			permissions.POST("/validate-delegation", auth.RequireLogin(), permissionHandler.ValidateDelegation)
		}

		// 委托路由
		delegationHandler := handlers.NewDelegationHandler(delegationService, permissionService)
		delegations := api.Group("/delegations", auth.RequireLogin())
		{
			delegations.POST("", delegationHandler.Create)
			delegations.GET("/:id", delegationHandler.GetByID)
			delegations.POST("/:id/revoke", delegationHandler.Revoke)
			delegations.PUT("/:id/conditions", delegationHandler.UpdateConditions)
			delegations.GET("/vendor/:unique_id/active", delegationHandler.GetActive)
			delegations.GET("/vendor/:unique_id/history", delegationHandler.GetHistory)
			delegations.GET("/vendor/:unique_id/can-perform", delegationHandler.CanPerformAction)
		}
	}
}

// healthCheck 健康检查
func healthCheck(c *gin.Context) {
	response.Success(c, gin.H{"status": "ok"})
}

// ping 连通性检查
func ping(c *gin.Context) {
	response.Success(c, gin.H{"message": "pong"})
}
