package models

import "strings"

// 权限矩阵为固定形状：7个模块，每个模块固定的能力集合。
// 所有以 "module.capability" 形式出现的路径字符串在进入系统边界时
// 必须通过本文件的校验函数检查。

// FleetManagementPermissions 车队管理能力
type FleetManagementPermissions struct {
	CanManageFleet          bool `json:"canManageFleet"`
	CanViewFleet            bool `json:"canViewFleet"`
	CanAddVehicles          bool `json:"canAddVehicles"`
	CanRemoveVehicles       bool `json:"canRemoveVehicles"`
	CanUpdateVehicleDetails bool `json:"canUpdateVehicleDetails"`
}

// DriverManagementPermissions 司机管理能力
type DriverManagementPermissions struct {
	CanOnboardDrivers      bool `json:"canOnboardDrivers"`
	CanVerifyDrivers       bool `json:"canVerifyDrivers"`
	CanViewDrivers         bool `json:"canViewDrivers"`
	CanUpdateDriverDetails bool `json:"canUpdateDriverDetails"`
	CanRemoveDrivers       bool `json:"canRemoveDrivers"`
}

// BookingManagementPermissions 订单管理能力
type BookingManagementPermissions struct {
	CanCreateBookings bool `json:"canCreateBookings"`
	CanViewBookings   bool `json:"canViewBookings"`
	CanUpdateBookings bool `json:"canUpdateBookings"`
	CanCancelBookings bool `json:"canCancelBookings"`
}

// PaymentManagementPermissions 支付管理能力
type PaymentManagementPermissions struct {
	CanProcessPayments      bool `json:"canProcessPayments"`
	CanViewPayments         bool `json:"canViewPayments"`
	CanGenerateInvoices     bool `json:"canGenerateInvoices"`
	CanViewFinancialReports bool `json:"canViewFinancialReports"`
}

// ComplianceManagementPermissions 合规管理能力
type ComplianceManagementPermissions struct {
	CanTrackCompliance      bool `json:"canTrackCompliance"`
	CanViewComplianceReports bool `json:"canViewComplianceReports"`
	CanUpdateComplianceStatus bool `json:"canUpdateComplianceStatus"`
}

// VendorManagementPermissions 厂商管理能力
type VendorManagementPermissions struct {
	CanManageSubVendors      bool `json:"canManageSubVendors"`
	CanViewSubVendors        bool `json:"canViewSubVendors"`
	CanCreateSubVendors      bool `json:"canCreateSubVendors"`
	CanUpdateSubVendorDetails bool `json:"canUpdateSubVendorDetails"`
}

// ReportingPermissions 报表能力
type ReportingPermissions struct {
	CanViewReports     bool `json:"canViewReports"`
	CanGenerateReports bool `json:"canGenerateReports"`
	CanExportReports   bool `json:"canExportReports"`
}

// PermissionMatrix 完整权限矩阵
type PermissionMatrix struct {
	FleetManagement      FleetManagementPermissions      `json:"fleetManagement"`
	DriverManagement     DriverManagementPermissions     `json:"driverManagement"`
	BookingManagement    BookingManagementPermissions    `json:"bookingManagement"`
	PaymentManagement    PaymentManagementPermissions    `json:"paymentManagement"`
	ComplianceManagement ComplianceManagementPermissions `json:"complianceManagement"`
	VendorManagement     VendorManagementPermissions     `json:"vendorManagement"`
	Reporting            ReportingPermissions            `json:"reporting"`
}

// capabilityEntry 路径与矩阵字段的绑定
type capabilityEntry struct {
	path  string
	value *bool
}

// entries 按固定顺序返回矩阵的全部能力位
func (m *PermissionMatrix) entries() []capabilityEntry {
	return []capabilityEntry{
		{"fleetManagement.canManageFleet", &m.FleetManagement.CanManageFleet},
		{"fleetManagement.canViewFleet", &m.FleetManagement.CanViewFleet},
		{"fleetManagement.canAddVehicles", &m.FleetManagement.CanAddVehicles},
		{"fleetManagement.canRemoveVehicles", &m.FleetManagement.CanRemoveVehicles},
		{"fleetManagement.canUpdateVehicleDetails", &m.FleetManagement.CanUpdateVehicleDetails},
		{"driverManagement.canOnboardDrivers", &m.DriverManagement.CanOnboardDrivers},
		{"driverManagement.canVerifyDrivers", &m.DriverManagement.CanVerifyDrivers},
		{"driverManagement.canViewDrivers", &m.DriverManagement.CanViewDrivers},
		{"driverManagement.canUpdateDriverDetails", &m.DriverManagement.CanUpdateDriverDetails},
		{"driverManagement.canRemoveDrivers", &m.DriverManagement.CanRemoveDrivers},
		{"bookingManagement.canCreateBookings", &m.BookingManagement.CanCreateBookings},
		{"bookingManagement.canViewBookings", &m.BookingManagement.CanViewBookings},
		{"bookingManagement.canUpdateBookings", &m.BookingManagement.CanUpdateBookings},
		{"bookingManagement.canCancelBookings", &m.BookingManagement.CanCancelBookings},
		{"paymentManagement.canProcessPayments", &m.PaymentManagement.CanProcessPayments},
		{"paymentManagement.canViewPayments", &m.PaymentManagement.CanViewPayments},
		{"paymentManagement.canGenerateInvoices", &m.PaymentManagement.CanGenerateInvoices},
		{"paymentManagement.canViewFinancialReports", &m.PaymentManagement.CanViewFinancialReports},
		{"complianceManagement.canTrackCompliance", &m.ComplianceManagement.CanTrackCompliance},
		{"complianceManagement.canViewComplianceReports", &m.ComplianceManagement.CanViewComplianceReports},
		{"complianceManagement.canUpdateComplianceStatus", &m.ComplianceManagement.CanUpdateComplianceStatus},
		{"vendorManagement.canManageSubVendors", &m.VendorManagement.CanManageSubVendors},
		{"vendorManagement.canViewSubVendors", &m.VendorManagement.CanViewSubVendors},
		{"vendorManagement.canCreateSubVendors", &m.VendorManagement.CanCreateSubVendors},
		{"vendorManagement.canUpdateSubVendorDetails", &m.VendorManagement.CanUpdateSubVendorDetails},
		{"reporting.canViewReports", &m.Reporting.CanViewReports},
		{"reporting.canGenerateReports", &m.Reporting.CanGenerateReports},
		{"reporting.canExportReports", &m.Reporting.CanExportReports},
	}
}

// Get 查询能力位，路径非法时第二个返回值为false
func (m *PermissionMatrix) Get(path string) (bool, bool) {
	for _, e := range m.entries() {
		if e.path == path {
			return *e.value, true
		}
	}
	return false, false
}

// Set 设置能力位，路径非法时返回false
func (m *PermissionMatrix) Set(path string, value bool) bool {
	for _, e := range m.entries() {
		if e.path == path {
			*e.value = value
			return true
		}
	}
	return false
}

// Flatten 返回所有为true的能力路径，顺序固定
func (m *PermissionMatrix) Flatten() []string {
	var paths []string
	for _, e := range m.entries() {
		if *e.value {
			paths = append(paths, e.path)
		}
	}
	return paths
}

// PermissionChange 一次能力位变更
type PermissionChange struct {
	Path     string `json:"path"`
	Previous bool   `json:"previous"`
	New      bool   `json:"new"`
}

// Diff 计算从当前矩阵到目标矩阵的逐位差异
func (m *PermissionMatrix) Diff(next *PermissionMatrix) []PermissionChange {
	var changes []PermissionChange
	current := m.entries()
	target := next.entries()
	for i := range current {
		if *current[i].value != *target[i].value {
			changes = append(changes, PermissionChange{
				Path:     current[i].path,
				Previous: *current[i].value,
				New:      *target[i].value,
			})
		}
	}
	return changes
}

// AllCapabilityPaths 矩阵的全部合法能力路径
func AllCapabilityPaths() []string {
	var zero PermissionMatrix
	entries := zero.entries()
	paths := make([]string, 0, len(entries))
	for _, e := range entries {
		paths = append(paths, e.path)
	}
	return paths
}

// IsValidCapabilityPath 校验 "module.capability" 路径是否属于矩阵形状
func IsValidCapabilityPath(path string) bool {
	if !strings.Contains(path, ".") {
		return false
	}
	var zero PermissionMatrix
	_, ok := zero.Get(path)
	return ok
}

// ========== 可委托权限子集 ==========

// DelegatableFleetPermissions 可委托的车队管理能力
type DelegatableFleetPermissions struct {
	CanManageFleet bool `json:"canManageFleet"`
	CanViewFleet   bool `json:"canViewFleet"`
	CanAddVehicles bool `json:"canAddVehicles"`
}

// DelegatableDriverPermissions 可委托的司机管理能力
type DelegatableDriverPermissions struct {
	CanOnboardDrivers bool `json:"canOnboardDrivers"`
	CanVerifyDrivers  bool `json:"canVerifyDrivers"`
	CanViewDrivers    bool `json:"canViewDrivers"`
}

// DelegatableBookingPermissions 可委托的订单管理能力
type DelegatableBookingPermissions struct {
	CanCreateBookings bool `json:"canCreateBookings"`
	CanViewBookings   bool `json:"canViewBookings"`
}

// DelegatablePaymentPermissions 可委托的支付管理能力
type DelegatablePaymentPermissions struct {
	CanProcessPayments bool `json:"canProcessPayments"`
	CanViewPayments    bool `json:"canViewPayments"`
}

// DelegatableCompliancePermissions 可委托的合规管理能力
type DelegatableCompliancePermissions struct {
	CanTrackCompliance       bool `json:"canTrackCompliance"`
	CanViewComplianceReports bool `json:"canViewComplianceReports"`
}

// DelegatableMatrix 可委托权限矩阵（完整矩阵的子集形状）
type DelegatableMatrix struct {
	FleetManagement      DelegatableFleetPermissions      `json:"fleetManagement"`
	DriverManagement     DelegatableDriverPermissions     `json:"driverManagement"`
	BookingManagement    DelegatableBookingPermissions    `json:"bookingManagement"`
	PaymentManagement    DelegatablePaymentPermissions    `json:"paymentManagement"`
	ComplianceManagement DelegatableCompliancePermissions `json:"complianceManagement"`
}

// entries 按固定顺序返回可委托矩阵的全部能力位
func (m *DelegatableMatrix) entries() []capabilityEntry {
	return []capabilityEntry{
		{"fleetManagement.canManageFleet", &m.FleetManagement.CanManageFleet},
		{"fleetManagement.canViewFleet", &m.FleetManagement.CanViewFleet},
		{"fleetManagement.canAddVehicles", &m.FleetManagement.CanAddVehicles},
		{"driverManagement.canOnboardDrivers", &m.DriverManagement.CanOnboardDrivers},
		{"driverManagement.canVerifyDrivers", &m.DriverManagement.CanVerifyDrivers},
		{"driverManagement.canViewDrivers", &m.DriverManagement.CanViewDrivers},
		{"bookingManagement.canCreateBookings", &m.BookingManagement.CanCreateBookings},
		{"bookingManagement.canViewBookings", &m.BookingManagement.CanViewBookings},
		{"paymentManagement.canProcessPayments", &m.PaymentManagement.CanProcessPayments},
		{"paymentManagement.canViewPayments", &m.PaymentManagement.CanViewPayments},
		{"complianceManagement.canTrackCompliance", &m.ComplianceManagement.CanTrackCompliance},
		{"complianceManagement.canViewComplianceReports", &m.ComplianceManagement.CanViewComplianceReports},
	}
}

// Get 查询可委托能力位，路径不在子集形状内时第二个返回值为false
func (m *DelegatableMatrix) Get(path string) (bool, bool) {
	for _, e := range m.entries() {
		if e.path == path {
			return *e.value, true
		}
	}
	return false, false
}

// Set 设置可委托能力位，路径不在子集形状内时返回false
func (m *DelegatableMatrix) Set(path string, value bool) bool {
	for _, e := range m.entries() {
		if e.path == path {
			*e.value = value
			return true
		}
	}
	return false
}

// Flatten 返回所有为true的可委托能力路径，顺序固定
func (m *DelegatableMatrix) Flatten() []string {
	var paths []string
	for _, e := range m.entries() {
		if *e.value {
			paths = append(paths, e.path)
		}
	}
	return paths
}
