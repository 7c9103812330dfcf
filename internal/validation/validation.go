package validation

import (
	"errors"

	"vhp/internal/models"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// RegisterCustomValidators 在gin的binding引擎上注册自定义校验器
//
// region: 区域枚举取值；capability: 权限矩阵的能力路径。
func RegisterCustomValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("无法获取binding校验引擎")
	}

	if err := v.RegisterValidation("region", validateRegion); err != nil {
		return err
	}
	if err := v.RegisterValidation("capability", validateCapability); err != nil {
		return err
	}
	return nil
}

// validateRegion 校验区域枚举，空值放行（区域可选）
func validateRegion(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	return models.IsValidRegion(value)
}

// validateCapability 校验能力路径属于矩阵形状
func validateCapability(fl validator.FieldLevel) bool {
	return models.IsValidCapabilityPath(fl.Field().String())
}
