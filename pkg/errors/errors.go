package errors

// ========== 错误码常量定义 ==========

// CodeSuccess 成功码
const (
	CodeSuccess = 200
)

// HTTP层错误码 (400-599)
const (
	CodeInvalidParam = 400
	CodeUnauthorized = 401
	CodeForbidden    = 403
	CodeNotFound     = 404
	CodeConflict     = 409
	CodeServerError  = 500
)

// ========== 业务错误类型 ==========

// Kind 业务错误类别
type Kind string

const (
	KindNotFound         Kind = "NOT_FOUND"         // 厂商、角色、授权或委托不存在
	KindInvalidHierarchy Kind = "INVALID_HIERARCHY" // 层级顺序违规
	KindInvalidScope     Kind = "INVALID_SCOPE"     // 地域范围不匹配
	KindInvalidArgument  Kind = "INVALID_ARGUMENT"  // 委托类型、日期区间或必填字段非法
	KindConflict         Kind = "CONFLICT"          // 重复创建默认授权或重复委托
	KindForbidden        Kind = "FORBIDDEN"         // 非委托人尝试撤销或修改
	KindPermissionDenied Kind = "PERMISSION_DENIED" // 尝试委托不可委托的权限
)

// AppError 业务错误，携带类别和可读消息
type AppError struct {
	Kind    Kind
	Message string
}

func (e *AppError) Error() string {
	return e.Message
}

// New 创建业务错误
func New(kind Kind, message string) *AppError {
	return &AppError{Kind: kind, Message: message}
}

func NewNotFound(message string) *AppError         { return New(KindNotFound, message) }
func NewInvalidHierarchy(message string) *AppError { return New(KindInvalidHierarchy, message) }
func NewInvalidScope(message string) *AppError     { return New(KindInvalidScope, message) }
func NewInvalidArgument(message string) *AppError  { return New(KindInvalidArgument, message) }
func NewConflict(message string) *AppError         { return New(KindConflict, message) }
func NewForbidden(message string) *AppError        { return New(KindForbidden, message) }
func NewPermissionDenied(message string) *AppError { return New(KindPermissionDenied, message) }

// KindOf 提取错误类别，非业务错误返回空串
func KindOf(err error) Kind {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Kind
	}
	return ""
}

// IsKind 判断错误是否属于指定类别
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// HTTPCode 业务错误类别对应的HTTP层错误码
func (e *AppError) HTTPCode() int {
	switch e.Kind {
	case KindNotFound:
		return CodeNotFound
	case KindForbidden, KindPermissionDenied:
		return CodeForbidden
	case KindInvalidHierarchy, KindInvalidScope, KindInvalidArgument, KindConflict:
		return CodeInvalidParam
	default:
		return CodeServerError
	}
}
