package migrate

import (
	"context"

	"github.com/Beliver-cell/Fantasy-luxe-store/internal/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type MigrateOptions struct {
	CreateExtensions       bool // pgcrypto для gen_random_uuid()
	CreateChecks           bool // CHECK-constraint для целостности
	CreateIndexes          bool // индексы, включая частичный UNIQUE на неоплаченный заказ
	CreateUpdatedAtTrigger bool // триггер обновления updated_at
	CreatePaymentGuard     bool // запрет отката payment true -> false
}

func DefaultMigrateOptions() MigrateOptions {
	return MigrateOptions{
		CreateExtensions:       true,
		CreateChecks:           true,
		CreateIndexes:          true,
		CreateUpdatedAtTrigger: true,
		CreatePaymentGuard:     true,
	}
}

type step struct {
	name string
	sql  string
}

func exec(db *gorm.DB, log *zap.Logger, steps []step) error {
	for _, s := range steps {
		if err := db.Exec(s.sql).Error; err != nil {
			log.Error("Не удалось выполнить шаг миграции", zap.String("step", s.name), zap.Error(err))
			return err
		}
	}
	return nil
}

func MigrateOrderDB(ctx context.Context, db *gorm.DB, log *zap.Logger, opt MigrateOptions) error {
	log.Info("Начало миграции базы данных заказов")
	db = db.WithContext(ctx)

	if opt.CreateExtensions {
		if err := exec(db, log, []step{{"pgcrypto", `CREATE EXTENSION IF NOT EXISTS pgcrypto`}}); err != nil {
			return err
		}
		log.Info("Расширения PostgreSQL успешно созданы")
	}

	log.Info("Создание таблицы orders")
	if err := db.AutoMigrate(&models.Order{}); err != nil {
		log.Error("Не удалось создать таблицы", zap.Error(err))
		return err
	}

	if opt.CreateUpdatedAtTrigger {
		if err := exec(db, log, []step{{"updated_at trigger", `
CREATE OR REPLACE FUNCTION set_updated_at() RETURNS trigger AS $$
BEGIN NEW.updated_at = now(); RETURN NEW; END; $$ LANGUAGE plpgsql;

DROP TRIGGER IF EXISTS trg_orders_updated ON orders;
CREATE TRIGGER trg_orders_updated
BEFORE UPDATE ON orders
FOR EACH ROW EXECUTE FUNCTION set_updated_at();
`}}); err != nil {
			return err
		}
		log.Info("Триггер updated_at успешно создан")
	}

	// Оплата необратима: отклоняем любой UPDATE, который сбрасывает payment.
	if opt.CreatePaymentGuard {
		if err := exec(db, log, []step{{"payment guard trigger", `
CREATE OR REPLACE FUNCTION forbid_payment_revert() RETURNS trigger AS $$
BEGIN
  IF OLD.payment AND NOT NEW.payment THEN
    RAISE EXCEPTION 'order % is paid; payment flag cannot be reverted', OLD.id;
  END IF;
  RETURN NEW;
END; $$ LANGUAGE plpgsql;

DROP TRIGGER IF EXISTS trg_orders_payment_guard ON orders;
CREATE TRIGGER trg_orders_payment_guard
BEFORE UPDATE OF payment ON orders
FOR EACH ROW EXECUTE FUNCTION forbid_payment_revert();
`}}); err != nil {
			return err
		}
		log.Info("Триггер защиты оплаты успешно создан")
	}

	if opt.CreateChecks {
		if err := exec(db, log, []step{
			{"chk_orders_status_allowed", `
ALTER TABLE orders DROP CONSTRAINT IF EXISTS chk_orders_status_allowed;
ALTER TABLE orders ADD CONSTRAINT chk_orders_status_allowed
  CHECK (status IN ('', 'Order Placed', 'Shipped', 'Delivered', 'Cancelled'));
`},
			// пока заказ не оплачен, статуса у него нет
			{"chk_orders_status_requires_payment", `
ALTER TABLE orders DROP CONSTRAINT IF EXISTS chk_orders_status_requires_payment;
ALTER TABLE orders ADD CONSTRAINT chk_orders_status_requires_payment
  CHECK ((payment AND status <> '' AND gateway_ref IS NOT NULL) OR (NOT payment AND status = ''));
`},
			{"chk_orders_currency_code_len", `
ALTER TABLE orders DROP CONSTRAINT IF EXISTS chk_orders_currency_code_len;
ALTER TABLE orders ADD CONSTRAINT chk_orders_currency_code_len
  CHECK (char_length(currency_code) = 3);
`},
			{"chk_orders_amount_positive", `
ALTER TABLE orders DROP CONSTRAINT IF EXISTS chk_orders_amount_positive;
ALTER TABLE orders ADD CONSTRAINT chk_orders_amount_positive
  CHECK (amount_cents > 0);
`},
		}); err != nil {
			return err
		}
		log.Info("CHECK-ограничения успешно созданы")
	}

	if opt.CreateIndexes {
		if err := exec(db, log, []step{
			// не более одного неоплаченного заказа на пользователя
			{"ux_orders_user_unpaid", `
CREATE UNIQUE INDEX IF NOT EXISTS ux_orders_user_unpaid
ON orders (user_id) WHERE payment = false;
`},
			{"ix_orders_user_created", `
CREATE INDEX IF NOT EXISTS ix_orders_user_created
ON orders (user_id, created_at DESC);
`},
			{"ix_orders_status_created", `
CREATE INDEX IF NOT EXISTS ix_orders_status_created
ON orders (status, created_at DESC);
`},
			// для чистки брошенных заказов
			{"ix_orders_unpaid_created", `
CREATE INDEX IF NOT EXISTS ix_orders_unpaid_created
ON orders (created_at) WHERE payment = false;
`},
		}); err != nil {
			return err
		}
		log.Info("Индексы успешно созданы")
	}

	log.Info("Миграция базы данных заказов успешно завершена")
	return nil
}
