package pagination

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func testContext(query string) *gin.Context {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/?"+query, nil)
	return c
}

func TestParsePageParams(t *testing.T) {
	params := ParsePageParams(testContext("page=3&page_size=20"))
	assert.Equal(t, 3, params.Page)
	assert.Equal(t, 20, params.PageSize)

	// 缺省值
	params = ParsePageParams(testContext(""))
	assert.Equal(t, DefaultPage, params.Page)
	assert.Equal(t, DefaultPageSize, params.PageSize)

	// 非法值回退到缺省
	params = ParsePageParams(testContext("page=abc&page_size=-5"))
	assert.Equal(t, DefaultPage, params.Page)
	assert.Equal(t, DefaultPageSize, params.PageSize)

	// 超过上限截断
	params = ParsePageParams(testContext("page_size=500"))
	assert.Equal(t, MaxPageSize, params.PageSize)
}

func TestNewPageInfo(t *testing.T) {
	info := NewPageInfo(2, 10, 25)
	assert.Equal(t, 3, info.TotalPages)
	assert.True(t, info.HasNext)
	assert.True(t, info.HasPrev)

	info = NewPageInfo(1, 10, 5)
	assert.Equal(t, 1, info.TotalPages)
	assert.False(t, info.HasNext)
	assert.False(t, info.HasPrev)

	info = NewPageInfo(1, 10, 0)
	assert.Equal(t, 0, info.TotalPages)
	assert.False(t, info.HasNext)
}

func TestPageParamsOffsetLimit(t *testing.T) {
	params := &PageParams{Page: 3, PageSize: 20}
	assert.Equal(t, 40, params.GetOffset())
	assert.Equal(t, 20, params.GetLimit())
}
