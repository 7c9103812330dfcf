package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPermissionMatrixGetSet(t *testing.T) {
	var m PermissionMatrix

	value, ok := m.Get("fleetManagement.canManageFleet")
	assert.True(t, ok)
	assert.False(t, value)

	assert.True(t, m.Set("fleetManagement.canManageFleet", true))
	value, ok = m.Get("fleetManagement.canManageFleet")
	assert.True(t, ok)
	assert.True(t, value)

	// 矩阵形状之外的路径
	_, ok = m.Get("fleetManagement.canDoAnything")
	assert.False(t, ok)
	assert.False(t, m.Set("unknownModule.canView", true))
}

func TestPermissionMatrixFlattenOrder(t *testing.T) {
	var m PermissionMatrix
	m.Set("reporting.canViewReports", true)
	m.Set("fleetManagement.canViewFleet", true)
	m.Set("bookingManagement.canCreateBookings", true)

	// Flatten按矩阵固定顺序输出，与Set调用顺序无关
	assert.Equal(t, []string{
		"fleetManagement.canViewFleet",
		"bookingManagement.canCreateBookings",
		"reporting.canViewReports",
	}, m.Flatten())
}

func TestPermissionMatrixDiff(t *testing.T) {
	var current, next PermissionMatrix
	current.Set("fleetManagement.canViewFleet", true)
	next.Set("fleetManagement.canViewFleet", true)

	assert.Empty(t, current.Diff(&next))

	next.Set("fleetManagement.canViewFleet", false)
	next.Set("driverManagement.canViewDrivers", true)

	changes := current.Diff(&next)
	require.Len(t, changes, 2)
	assert.Equal(t, PermissionChange{Path: "fleetManagement.canViewFleet", Previous: true, New: false}, changes[0])
	assert.Equal(t, PermissionChange{Path: "driverManagement.canViewDrivers", Previous: false, New: true}, changes[1])
}

func TestAllCapabilityPaths(t *testing.T) {
	paths := AllCapabilityPaths()
	assert.Len(t, paths, 28)

	seen := make(map[string]bool)
	for _, path := range paths {
		assert.False(t, seen[path], "路径重复: %s", path)
		seen[path] = true
		assert.True(t, IsValidCapabilityPath(path))
	}
}

func TestIsValidCapabilityPath(t *testing.T) {
	assert.True(t, IsValidCapabilityPath("bookingManagement.canCreateBookings"))
	assert.False(t, IsValidCapabilityPath("bookingManagement"))
	assert.False(t, IsValidCapabilityPath("bookingManagement.canFly"))
	assert.False(t, IsValidCapabilityPath(""))
	assert.False(t, IsValidCapabilityPath("fleetManagement.CanManageFleet")) // 大小写敏感
}

func TestDelegatableMatrixIsSubset(t *testing.T) {
	var d DelegatableMatrix
	for _, e := range d.entries() {
		// 子集形状中的每个路径都必须是完整矩阵的合法路径
		assert.True(t, IsValidCapabilityPath(e.path), "子集路径不在完整矩阵中: %s", e.path)
	}
	assert.Len(t, d.entries(), 12)

	// 完整矩阵有而子集没有的能力
	_, ok := d.Get("vendorManagement.canManageSubVendors")
	assert.False(t, ok)
	_, ok = d.Get("reporting.canViewReports")
	assert.False(t, ok)

	assert.True(t, d.Set("bookingManagement.canViewBookings", true))
	assert.Equal(t, []string{"bookingManagement.canViewBookings"}, d.Flatten())
}
