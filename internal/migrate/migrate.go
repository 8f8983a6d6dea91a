package migrate

import (
	"cancellation-service/internal/models"
	"context"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type MigrateOptions struct {
	CreateExtensions       bool // pgcrypto, uuid-ossp
	CreateChecks           bool // CHECK-constraint для целостности
	CreateIndexes          bool // индексы и UNIQUE
	CreateFKsViaSQL        bool // FK через SQL (поверх GORM-constraint)
	CreateUpdatedAtTrigger bool // триггер обновления updated_at
}

func DefaultMigrateOptions() MigrateOptions {
	return MigrateOptions{
		CreateExtensions:       true,
		CreateChecks:           true,
		CreateIndexes:          true,
		CreateFKsViaSQL:        true,
		CreateUpdatedAtTrigger: true,
	}
}

func MigrateCancellationDB(ctx context.Context, db *gorm.DB, log *zap.Logger, opt MigrateOptions) error {
	log.Info("Начало миграции базы данных отмен и возвратов")

	// Расширения
	if opt.CreateExtensions {
		log.Info("Создание расширений PostgreSQL")
		if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS pgcrypto`).Error; err != nil {
			log.Error("Не удалось включить расширение pgcrypto", zap.Error(err))
			return err
		}
		if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`).Error; err != nil {
			log.Error("Не удалось включить расширение uuid-ossp", zap.Error(err))
			return err
		}
		log.Info("Расширения PostgreSQL успешно созданы")
	}

	// Таблицы
	log.Info("Создание таблиц orders, order_cancellations, refunds, coupon_usages, point_transactions, point_balances")
	if err := db.AutoMigrate(
		&models.Order{},
		&models.OrderCancellation{},
		&models.Refund{},
		&models.CouponUsage{},
		&models.PointTransaction{},
		&models.PointBalance{},
	); err != nil {
		log.Error("Не удалось создать таблицы", zap.Error(err))
		return err
	}
	log.Info("Таблицы успешно созданы")

	// Триггер updated_at
	if opt.CreateUpdatedAtTrigger {
		log.Info("Создание триггеров updated_at")
		if err := db.Exec(`
CREATE OR REPLACE FUNCTION set_updated_at() RETURNS trigger AS $$
BEGIN NEW.updated_at = now(); RETURN NEW; END; $$ LANGUAGE plpgsql;

DROP TRIGGER IF EXISTS trg_order_cancellations_updated ON order_cancellations;
CREATE TRIGGER trg_order_cancellations_updated
BEFORE UPDATE ON order_cancellations
FOR EACH ROW EXECUTE FUNCTION set_updated_at();

DROP TRIGGER IF EXISTS trg_refunds_updated ON refunds;
CREATE TRIGGER trg_refunds_updated
BEFORE UPDATE ON refunds
FOR EACH ROW EXECUTE FUNCTION set_updated_at();
`).Error; err != nil {
			log.Error("Не удалось создать триггеры updated_at", zap.Error(err))
			return err
		}
		log.Info("Триггеры updated_at успешно созданы")
	}

	// CHECK-constraint
	if opt.CreateChecks {
		log.Info("Создание CHECK-ограничений")

		// Статусы (так как храним TEXT)
		if err := db.Exec(`
ALTER TABLE order_cancellations
  DROP CONSTRAINT IF EXISTS chk_order_cancellations_status_allowed;
ALTER TABLE order_cancellations
  ADD CONSTRAINT chk_order_cancellations_status_allowed
  CHECK (status IN ('CANCELLATION_STATUS_PENDING','CANCELLATION_STATUS_APPROVED','CANCELLATION_STATUS_REJECTED','CANCELLATION_STATUS_COMPLETED'));
`).Error; err != nil {
			log.Error("Не удалось создать CHECK для статусов отмен", zap.Error(err))
			return err
		}

		if err := db.Exec(`
ALTER TABLE refunds
  DROP CONSTRAINT IF EXISTS chk_refunds_status_allowed;
ALTER TABLE refunds
  ADD CONSTRAINT chk_refunds_status_allowed
  CHECK (refund_status IN ('REFUND_STATUS_PENDING','REFUND_STATUS_PROCESSING','REFUND_STATUS_COMPLETED','REFUND_STATUS_FAILED','REFUND_STATUS_CANCELLED'));
`).Error; err != nil {
			log.Error("Не удалось создать CHECK для статусов возвратов", zap.Error(err))
			return err
		}

		// Ставка возврата в диапазоне [0, 1]
		if err := db.Exec(`
ALTER TABLE order_cancellations
  DROP CONSTRAINT IF EXISTS chk_order_cancellations_refund_rate_range;
ALTER TABLE order_cancellations
  ADD CONSTRAINT chk_order_cancellations_refund_rate_range
  CHECK (refund_rate >= 0 AND refund_rate <= 1);
`).Error; err != nil {
			log.Error("Не удалось создать CHECK для refund_rate", zap.Error(err))
			return err
		}

		// Суммы неотрицательные
		if err := db.Exec(`
ALTER TABLE refunds
  DROP CONSTRAINT IF EXISTS chk_refunds_amounts_non_negative;
ALTER TABLE refunds
  ADD CONSTRAINT chk_refunds_amounts_non_negative
  CHECK (amount >= 0 AND original_amount >= 0 AND retry_count >= 0);
`).Error; err != nil {
			log.Error("Не удалось создать CHECK для сумм в refunds", zap.Error(err))
			return err
		}

		if err := db.Exec(`
ALTER TABLE order_cancellations
  DROP CONSTRAINT IF EXISTS chk_order_cancellations_amounts_non_negative;
ALTER TABLE order_cancellations
  ADD CONSTRAINT chk_order_cancellations_amounts_non_negative
  CHECK (refund_amount >= 0 AND menu_refund_amount >= 0 AND delivery_refund_amount >= 0);
`).Error; err != nil {
			log.Error("Не удалось создать CHECK для сумм в order_cancellations", zap.Error(err))
			return err
		}

		log.Info("CHECK-ограничения успешно созданы")
	}

	// Индексы
	if opt.CreateIndexes {
		log.Info("Создание индексов")

		// Ключевой инвариант: не более одной открытой отмены на заказ.
		// Application-level read-then-insert races without this index.
		if err := db.Exec(`
CREATE UNIQUE INDEX IF NOT EXISTS ux_order_cancellations_open
ON order_cancellations (order_id)
WHERE status IN ('CANCELLATION_STATUS_PENDING','CANCELLATION_STATUS_APPROVED');
`).Error; err != nil {
			log.Error("Не удалось создать уникальный индекс ux_order_cancellations_open", zap.Error(err))
			return err
		}

		// Для истории отмен заказа по дате
		if err := db.Exec(`
CREATE INDEX IF NOT EXISTS ix_order_cancellations_order_created
ON order_cancellations (order_id, created_at DESC);
`).Error; err != nil {
			log.Error("Не удалось создать индекс ix_order_cancellations_order_created", zap.Error(err))
			return err
		}

		// Для выборки возвратов свипером по статусу
		if err := db.Exec(`
CREATE INDEX IF NOT EXISTS ix_refunds_status_updated
ON refunds (refund_status, updated_at);
`).Error; err != nil {
			log.Error("Не удалось создать индекс ix_refunds_status_updated", zap.Error(err))
			return err
		}

		log.Info("Индексы успешно созданы")
	}

	// Внешние ключи
	if opt.CreateFKsViaSQL {
		log.Info("Создание внешних ключей")

		if err := db.Exec(`
ALTER TABLE order_cancellations
  DROP CONSTRAINT IF EXISTS fk_order_cancellations_order,
  ADD CONSTRAINT fk_order_cancellations_order
    FOREIGN KEY (order_id) REFERENCES orders(id) ON DELETE CASCADE;
`).Error; err != nil {
			log.Error("Не удалось создать FK order_cancellations.order_id -> orders.id", zap.Error(err))
			return err
		}

		if err := db.Exec(`
ALTER TABLE refunds
  DROP CONSTRAINT IF EXISTS fk_refunds_cancellation,
  ADD CONSTRAINT fk_refunds_cancellation
    FOREIGN KEY (cancellation_id) REFERENCES order_cancellations(id) ON DELETE CASCADE;
`).Error; err != nil {
			log.Error("Не удалось создать FK refunds.cancellation_id -> order_cancellations.id", zap.Error(err))
			return err
		}

		log.Info("Внешние ключи успешно созданы")
	}

	log.Info("Миграция базы данных отмен и возвратов успешно завершена")
	return nil
}
