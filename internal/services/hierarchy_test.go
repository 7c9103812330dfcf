package services

import (
	"testing"

	"vhp/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHierarchyAncestors(t *testing.T) {
	db := setupTestDB(t)
	service := NewHierarchyService(db)
	seedHierarchy(t, db)

	ancestors, err := service.GetAncestors("LOCAL-DEL1")
	require.NoError(t, err)
	require.Len(t, ancestors, 3)
	// 自下而上排列
	assert.Equal(t, "CITY-DEL", ancestors[0].UniqueID)
	assert.Equal(t, "REG-NORTH", ancestors[1].UniqueID)
	assert.Equal(t, "SUPER001", ancestors[2].UniqueID)

	ancestors, err = service.GetAncestors("SUPER001")
	require.NoError(t, err)
	assert.Empty(t, ancestors)

	// 不存在的厂商返回空列表而不是错误
	ancestors, err = service.GetAncestors("NO-SUCH")
	require.NoError(t, err)
	assert.Empty(t, ancestors)
}

func TestHierarchyDescendants(t *testing.T) {
	db := setupTestDB(t)
	service := NewHierarchyService(db)
	seedHierarchy(t, db)
	seedVendor(t, db, "LOCAL-DEL2", models.LevelLocal, "NORTH", "Delhi", "CITY-DEL")
	seedVendor(t, db, "REG-SOUTH", models.LevelRegional, "SOUTH", "", "SUPER001")

	descendants, err := service.GetDescendants("SUPER001")
	require.NoError(t, err)
	assert.Len(t, descendants, 5)

	descendants, err = service.GetDescendants("CITY-DEL")
	require.NoError(t, err)
	require.Len(t, descendants, 2)
	ids := []string{descendants[0].UniqueID, descendants[1].UniqueID}
	assert.ElementsMatch(t, []string{"LOCAL-DEL1", "LOCAL-DEL2"}, ids)

	descendants, err = service.GetDescendants("LOCAL-DEL1")
	require.NoError(t, err)
	assert.Empty(t, descendants)
}

func TestHierarchyBranch(t *testing.T) {
	db := setupTestDB(t)
	service := NewHierarchyService(db)
	seedHierarchy(t, db)

	branch, err := service.GetBranchVendors("CITY-DEL")
	require.NoError(t, err)
	// 上级2个 + 下级1个，不含自身
	require.Len(t, branch, 3)
}

func TestHierarchyRegionQueries(t *testing.T) {
	db := setupTestDB(t)
	service := NewHierarchyService(db)
	seedHierarchy(t, db)
	seedVendor(t, db, "REG-SOUTH", models.LevelRegional, "SOUTH", "", "SUPER001")

	vendors, err := service.GetVendorsByRegion("NORTH")
	require.NoError(t, err)
	assert.Len(t, vendors, 2) // CITY-DEL和LOCAL-DEL1

	// 区域匹配大小写不敏感
	vendors, err = service.GetVendorsByLevelInRegion(models.LevelCity, "north")
	require.NoError(t, err)
	require.Len(t, vendors, 1)
	assert.Equal(t, "CITY-DEL", vendors[0].UniqueID)

	vendors, err = service.GetVendorsByLevelInRegion(models.LevelRegional, "SOUTH")
	require.NoError(t, err)
	require.Len(t, vendors, 1)
	assert.Equal(t, "REG-SOUTH", vendors[0].UniqueID)

	// 无区域厂商的区域返回空列表
	vendors, err = service.GetVendorsByRegion("WEST")
	require.NoError(t, err)
	assert.Empty(t, vendors)
}

func TestHierarchyCityQuery(t *testing.T) {
	db := setupTestDB(t)
	service := NewHierarchyService(db)
	seedHierarchy(t, db)

	vendors, err := service.GetVendorsByCity("Delhi")
	require.NoError(t, err)
	require.Len(t, vendors, 1)
	assert.Equal(t, "LOCAL-DEL1", vendors[0].UniqueID)

	vendors, err = service.GetVendorsByCity("Mumbai")
	require.NoError(t, err)
	assert.Empty(t, vendors)
}

func TestHierarchyTree(t *testing.T) {
	db := setupTestDB(t)
	service := NewHierarchyService(db)
	seedHierarchy(t, db)

	tree, err := service.GetHierarchyTree("SUPER001")
	require.NoError(t, err)
	require.NotNil(t, tree)
	assert.Equal(t, "SUPER001", tree.Vendor.UniqueID)
	require.Len(t, tree.Children, 1)
	assert.Equal(t, "REG-NORTH", tree.Children[0].Vendor.UniqueID)
	require.Len(t, tree.Children[0].Children, 1)
	require.Len(t, tree.Children[0].Children[0].Children, 1)
	assert.Equal(t, "LOCAL-DEL1", tree.Children[0].Children[0].Children[0].Vendor.UniqueID)

	tree, err = service.GetHierarchyTree("NO-SUCH")
	require.NoError(t, err)
	assert.Nil(t, tree)

	regionTree, err := service.GetRegionHierarchyTree("NORTH")
	require.NoError(t, err)
	require.NotNil(t, regionTree)
	assert.Equal(t, "REG-NORTH", regionTree.Vendor.UniqueID)
}

func TestHierarchyCycleGuard(t *testing.T) {
	db := setupTestDB(t)
	service := NewHierarchyService(db)

	// 直接制造畸形父链：A ↔ B互为上级
	a := seedVendor(t, db, "CYCLE-A", models.LevelCity, "NORTH", "Delhi", "")
	seedVendor(t, db, "CYCLE-B", models.LevelLocal, "NORTH", "Delhi", "CYCLE-A")
	parentB := "CYCLE-B"
	a.ParentID = &parentB
	require.NoError(t, db.Save(a).Error)

	// 遍历必须终止且不重复
	ancestors, err := service.GetAncestors("CYCLE-A")
	require.NoError(t, err)
	assert.Len(t, ancestors, 1)

	descendants, err := service.GetDescendants("CYCLE-A")
	require.NoError(t, err)
	assert.Len(t, descendants, 1)

	tree, err := service.GetHierarchyTree("CYCLE-A")
	require.NoError(t, err)
	require.NotNil(t, tree)
	require.Len(t, tree.Children, 1)
	assert.Empty(t, tree.Children[0].Children)
}
