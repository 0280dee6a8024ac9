package sl

import "log/slog"

// Err оборачивает ошибку в slog-атрибут с ключом "error".
func Err(err error) slog.Attr {
	return slog.Attr{
		Key:   "error",
		Value: slog.StringValue(err.Error()),
	}
}
