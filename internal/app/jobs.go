package app

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/stockpos/stockpos/internal/store"
)

// LowStockThreshold is the stock level below which a warning is logged
// whenever an order operation commits a new quantity.
const LowStockThreshold = 5.0

var cronParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

func (a *Application) initJob() {
	loc, err := time.LoadLocation(a.appConfig.System.Location)
	if err != nil {
		loc = time.Local
	}
	a.sched = cron.New(cron.WithLocation(loc), cron.WithParser(cronParser))

	if a.appConfig.Backup.Enabled {
		spec := a.appConfig.Backup.Cron
		if spec == "" {
			spec = "@daily"
		}
		_, err := a.sched.AddFunc(spec, func() {
			a.SchedBackupTask()
		})
		if err != nil {
			zap.S().Errorf("init job error %s", err.Error())
		}
	}

	a.sched.Start()
}

// SchedBackupTask dumps the database into the backup directory and prunes
// dumps past retention.
func (a *Application) SchedBackupTask() {
	defer func() {
		if err := recover(); err != nil {
			zap.S().Error(err)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	path, err := a.backupRunner.RunScheduled(ctx)
	if err != nil {
		zap.L().Error("scheduled backup failed", zap.Error(err))
		return
	}
	zap.L().Info("scheduled backup completed", zap.String("path", path))

	if err := a.backupRunner.Prune(a.appConfig.Backup.KeepDays); err != nil {
		zap.L().Warn("backup prune failed", zap.Error(err))
	}
}

func (a *Application) subscribeStockEvents() {
	err := a.bus.Subscribe(store.TopicStockChanged, func(barcode string, quantity float64) {
		if quantity < LowStockThreshold {
			zap.L().Warn("low stock",
				zap.String("barcode", barcode),
				zap.Float64("quantity", quantity))
		}
	})
	if err != nil {
		zap.S().Errorf("stock event subscription error %s", err.Error())
	}
}
