package domain

import (
	"errors"
	"fmt"
)

// Доменные ошибки клиента API
var (
	// ErrNetworkUnavailable возвращается когда API недоступен (сеть, DNS, таймаут)
	ErrNetworkUnavailable = errors.New("api network unavailable")

	// ErrServerError возвращается когда API ответил статусом не из диапазона 2xx
	ErrServerError = errors.New("api server error")

	// ErrDecode возвращается когда тело ответа не удалось разобрать как JSON
	ErrDecode = errors.New("api response decode failed")

	// ErrEmptySelection возвращается при попытке назначить пустой набор респондентов
	ErrEmptySelection = errors.New("no respondents selected")

	// ErrStudyNotFound возвращается когда API ответил 404 на запрос исследования
	ErrStudyNotFound = errors.New("study not found")
)

// ErrorKind представляет класс ошибки обращения к API
type ErrorKind int

// Классы ошибок обращения к API
const (
	KindNetworkUnavailable ErrorKind = iota + 1 // Запрос не дошел до сервера
	KindServerError                             // Сервер ответил ошибкой
	KindDecodeError                             // Ответ не является ожидаемым JSON
)

// String возвращает читаемое название класса ошибки
func (k ErrorKind) String() string {
	switch k {
	case KindNetworkUnavailable:
		return "network unavailable"
	case KindServerError:
		return "server error"
	case KindDecodeError:
		return "decode error"
	default:
		return "unknown"
	}
}

// APIError описывает неудачный вызов API с указанием класса ошибки
type APIError struct {
	Kind   ErrorKind // Класс ошибки
	Status int      // HTTP статус (только для KindServerError)
	Op     string   // Операция клиента, например "GET /api/studies/7"
	Err    error    // Исходная ошибка
}

// Error реализует интерфейс error
func (e *APIError) Error() string {
	if e.Kind == KindServerError {
		return fmt.Sprintf("%s: %s (status %d)", e.Op, e.Kind, e.Status)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Kind)
}

// Unwrap возвращает исходную ошибку
func (e *APIError) Unwrap() error {
	return e.Err
}

// Is позволяет сравнивать APIError с сентинелами через errors.Is
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrNetworkUnavailable:
		return e.Kind == KindNetworkUnavailable
	case ErrServerError:
		return e.Kind == KindServerError
	case ErrDecode:
		return e.Kind == KindDecodeError
	}
	return false
}

// KindOf возвращает класс ошибки API или 0 если ошибка не от API
func KindOf(err error) ErrorKind {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return 0
}

// StatusOf возвращает HTTP статус ответа API или 0
func StatusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// ErrorCode представляет коды ошибок для отображения в интерфейсе
type ErrorCode string

// Коды ошибок
const (
	CodeNetworkUnavailable ErrorCode = "NETWORK_UNAVAILABLE" // API недоступен
	CodeServerError        ErrorCode = "SERVER_ERROR"        // API ответил ошибкой
	CodeDecodeError        ErrorCode = "DECODE_ERROR"        // Некорректный ответ API
	CodeEmptySelection     ErrorCode = "EMPTY_SELECTION"     // Не выбраны респонденты
	CodeNotFound           ErrorCode = "NOT_FOUND"           // Ресурс не найден
	CodeInternal           ErrorCode = "INTERNAL_ERROR"      // Прочие ошибки
)

// MapErrorToCode преобразует ошибки в коды для интерфейса
func MapErrorToCode(err error) ErrorCode {
	switch {
	case errors.Is(err, ErrStudyNotFound):
		return CodeNotFound
	case errors.Is(err, ErrEmptySelection):
		return CodeEmptySelection
	case errors.Is(err, ErrNetworkUnavailable):
		return CodeNetworkUnavailable
	case errors.Is(err, ErrServerError):
		return CodeServerError
	case errors.Is(err, ErrDecode):
		return CodeDecodeError
	default:
		return CodeInternal
	}
}
