package pagination

import (
	"math"
	"strconv"

	"github.com/gin-gonic/gin"
)

// 厂商、角色等列表接口统一的分页取值范围
const (
	DefaultPage     = 1
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// PageParams 列表查询的分页参数
type PageParams struct {
	Page     int `json:"page" form:"page"`
	PageSize int `json:"page_size" form:"page_size"`
}

// PageInfo 列表响应携带的分页信息
type PageInfo struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
	HasPrev    bool  `json:"has_prev"`
}

// ParsePageParams 解析查询串中的page/page_size
//
// 非数字或越界的输入回退到缺省值，page_size超过上限时截断。
func ParsePageParams(c *gin.Context) *PageParams {
	params := &PageParams{
		Page:     DefaultPage,
		PageSize: DefaultPageSize,
	}

	if page, err := strconv.Atoi(c.DefaultQuery("page", "")); err == nil && page >= 1 {
		params.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("page_size", "")); err == nil && size >= 1 {
		params.PageSize = size
	}
	if params.PageSize > MaxPageSize {
		params.PageSize = MaxPageSize
	}
	return params
}

// NewPageInfo 根据总记录数计算分页信息
func NewPageInfo(page, pageSize int, total int64) *PageInfo {
	info := &PageInfo{
		Page:     page,
		PageSize: pageSize,
		Total:    total,
	}
	if pageSize > 0 {
		info.TotalPages = int(math.Ceil(float64(total) / float64(pageSize)))
	}
	info.HasNext = page < info.TotalPages
	info.HasPrev = page > 1
	return info
}

// GetOffset 数据库查询的偏移量
func (p *PageParams) GetOffset() int {
	return (p.Page - 1) * p.PageSize
}

// GetLimit 数据库查询的单页条数
func (p *PageParams) GetLimit() int {
	return p.PageSize
}
