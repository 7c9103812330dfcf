package services

import (
	"time"

	"vhp/pkg/logger"

	"github.com/robfig/cron/v3"
)

// ExpirySweeper 委托过期清理调度器
//
// 定期把endDate已过的ACTIVE委托标记为EXPIRED。只是存储层面的
// 整理，读取路径不依赖它：逻辑过期始终在读取时按endDate计算。
type ExpirySweeper struct {
	delegationService *DelegationService
	cron              *cron.Cron
	spec              string
}

func NewExpirySweeper(delegationService *DelegationService, spec string) *ExpirySweeper {
	if spec == "" {
		spec = "0 * * * *"
	}
	return &ExpirySweeper{
		delegationService: delegationService,
		cron:              cron.New(),
		spec:              spec,
	}
}

// Start 启动清理任务
func (s *ExpirySweeper) Start() error {
	appLogger := logger.GetLogger()

	_, err := s.cron.AddFunc(s.spec, func() {
		count, err := s.delegationService.SweepExpired(time.Now())
		if err != nil {
			appLogger.Errorf("委托过期清理失败: %v", err)
			return
		}
		if count > 0 {
			appLogger.Infof("委托过期清理完成，标记%d条为EXPIRED", count)
		}
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	appLogger.Infof("委托过期清理调度器已启动: %s", s.spec)
	return nil
}

// Stop 停止清理任务
func (s *ExpirySweeper) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
	logger.GetLogger().Info("委托过期清理调度器已停止")
}
