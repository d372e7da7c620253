package student

import "context"

// ══════════════════════════════════════════════════════════════════════════════
// GATEWAY INTERFACE
// Контракт хранилища полного набора записей.
// Реализации находятся в infrastructure/persistence.
// ══════════════════════════════════════════════════════════════════════════════

// Gateway сохраняет и загружает весь набор записей целиком.
type Gateway interface {
	// Save записывает все записи в порядке перечисления.
	// Любая ошибка ввода-вывода или сериализации возвращается как error.
	Save(ctx context.Context, records []Record) error

	// Load читает все записи. Отсутствие данных - не ошибка:
	// возвращается пустой срез и nil.
	Load(ctx context.Context) ([]Record, error)

	// Name возвращает название бэкенда для логов ("file", "postgres", ...).
	Name() string
}
