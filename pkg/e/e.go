package e

import "fmt"

var (
	// Внутренние ошибки с транзакциями
	ErrTransactionNotFound = fmt.Errorf("transaction not found")

	// Хранилище
	ErrStoreUnavailable = fmt.Errorf("store unavailable")
	ErrProductNotFound  = fmt.Errorf("product not found")

	// Конвейер скрапинга
	ErrInvalidProduct  = fmt.Errorf("product is missing mandatory fields")
	ErrMissingSource   = fmt.Errorf("product source is required")
	ErrUnknownPlatform = fmt.Errorf("platform not supported")
	ErrSessionClosed   = fmt.Errorf("scraping session is closed")
	ErrCircuitOpen     = fmt.Errorf("platform temporarily disabled")
	ErrBackfillRunning = fmt.Errorf("backfill already running")

	// Конфигурация
	ErrIncorrectEnvVariable = fmt.Errorf("incorrect environment variable")

	// 400 Bad Request
	ErrStatusBadRequest  = fmt.Errorf("bad request")
	ErrInvalidPagination = fmt.Errorf("page and page_size must be positive")
	ErrInvalidPrice      = fmt.Errorf("invalid price")
	ErrInvalidThreshold  = fmt.Errorf("similarity threshold must be between 0 and 100")
	ErrEmptyQuery        = fmt.Errorf("query must not be empty")

	// 500 Internal Server Error
	ErrInternalServerError = fmt.Errorf("internal server error")
)

// Wrap оборачивает ошибку именем операции или местом вызова.
func Wrap(msg string, err error) error {
	return fmt.Errorf("%s: %w", msg, err)
}
