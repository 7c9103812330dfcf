package handlers

import (
	"strconv"

	"vhp/internal/services"
	"vhp/pkg/response"

	"github.com/gin-gonic/gin"
)

// HierarchyHandler 层级遍历处理器
type HierarchyHandler struct {
	service *services.HierarchyService
}

func NewHierarchyHandler(service *services.HierarchyService) *HierarchyHandler {
	return &HierarchyHandler{service: service}
}

// GetAncestors 查询全部上级厂商
func (h *HierarchyHandler) GetAncestors(c *gin.Context) {
	ancestors, err := h.service.GetAncestors(c.Param("unique_id"))
	if err != nil {
		response.HandleError(c, err, "查询失败")
		return
	}
	response.Success(c, ancestors)
}

// GetDescendants 查询全部下级厂商
func (h *HierarchyHandler) GetDescendants(c *gin.Context) {
	descendants, err := h.service.GetDescendants(c.Param("unique_id"))
	if err != nil {
		response.HandleError(c, err, "查询失败")
		return
	}
	response.Success(c, descendants)
}

// GetBranch 查询所在分支的全部厂商
func (h *HierarchyHandler) GetBranch(c *gin.Context) {
	vendors, err := h.service.GetBranchVendors(c.Param("unique_id"))
	if err != nil {
		response.HandleError(c, err, "查询失败")
		return
	}
	response.Success(c, vendors)
}

// GetTree 查询从指定厂商到叶子的层级树
func (h *HierarchyHandler) GetTree(c *gin.Context) {
	tree, err := h.service.GetHierarchyTree(c.Param("unique_id"))
	if err != nil {
		response.HandleError(c, err, "查询失败")
		return
	}
	if tree == nil {
		response.NotFound(c, "厂商不存在")
		return
	}
	response.Success(c, tree)
}

// GetRegionTree 查询区域层级树
func (h *HierarchyHandler) GetRegionTree(c *gin.Context) {
	tree, err := h.service.GetRegionHierarchyTree(c.Param("region"))
	if err != nil {
		response.HandleError(c, err, "查询失败")
		return
	}
	if tree == nil {
		response.NotFound(c, "该区域没有区域厂商")
		return
	}
	response.Success(c, tree)
}

// GetVendorsByRegion 查询区域内全部厂商
func (h *HierarchyHandler) GetVendorsByRegion(c *gin.Context) {
	vendors, err := h.service.GetVendorsByRegion(c.Param("region"))
	if err != nil {
		response.HandleError(c, err, "查询失败")
		return
	}
	response.Success(c, vendors)
}

// GetVendorsByLevelInRegion 查询区域内指定层级的厂商
func (h *HierarchyHandler) GetVendorsByLevelInRegion(c *gin.Context) {
	level, err := strconv.Atoi(c.Param("level"))
	if err != nil {
		response.BadRequest(c, "层级格式错误")
		return
	}

	vendors, err := h.service.GetVendorsByLevelInRegion(level, c.Param("region"))
	if err != nil {
		response.HandleError(c, err, "查询失败")
		return
	}
	response.Success(c, vendors)
}
