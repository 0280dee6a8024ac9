package models

import (
	"errors"
	"fmt"
)

// ErrIndexOutOfRange возвращается при удалении изображения галереи по
// несуществующему индексу.
var ErrIndexOutOfRange = errors.New("gallery index out of range")

// ValidationError — клиентская ошибка предусловий. Сетевой вызов при ней
// не выполняется.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// ServerError — ответ API со статусом вне 2xx и сообщением сервера.
type ServerError struct {
	StatusCode int
	Message    string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("server error %d: %s", e.StatusCode, e.Message)
}

// TransportError — сетевая ошибка, ответ от сервера не получен.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport error: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
