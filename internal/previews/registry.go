package previews

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	cache "github.com/patrickmn/go-cache"
)

// ErrUnknownHandle возвращается при обращении к освобожденному или
// несуществующему превью. Двойной Release — ошибка, а не no-op.
var ErrUnknownHandle = errors.New("unknown preview handle")

// Preview — байты превью, доступные для отдачи без похода во внешнее API.
type Preview struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Registry — таблица превью с явным жизненным циклом: каждая запись, созданная
// через Acquire, должна быть освобождена через Release ровно один раз.
// Хранилище без TTL: освобождение всегда явное, память возвращается только
// при Release.
type Registry struct {
	log      *slog.Logger
	store    *cache.Cache
	basePath string
}

func NewRegistry(log *slog.Logger, basePath string) *Registry {
	return &Registry{
		log:      log,
		store:    cache.New(cache.NoExpiration, 0),
		basePath: basePath,
	}
}

// Acquire регистрирует превью и возвращает его handle.
func (r *Registry) Acquire(filename, contentType string, data []byte) string {
	handle := uuid.New().String()

	r.store.Set(handle, &Preview{
		Filename:    filename,
		ContentType: contentType,
		Data:        data,
	}, cache.NoExpiration)

	r.log.Debug("preview acquired",
		slog.String("handle", handle),
		slog.String("filename", filename),
		slog.Int("size", len(data)),
	)

	return handle
}

// Get возвращает превью по handle.
func (r *Registry) Get(handle string) (*Preview, bool) {
	v, ok := r.store.Get(handle)
	if !ok {
		return nil, false
	}

	return v.(*Preview), true
}

// Release освобождает превью. Повторное освобождение того же handle
// возвращает ErrUnknownHandle.
func (r *Registry) Release(handle string) error {
	const op = "previews.Registry.Release"

	if _, ok := r.store.Get(handle); !ok {
		return fmt.Errorf("%s: %w", op, ErrUnknownHandle)
	}

	r.store.Delete(handle)

	r.log.Debug("preview released", slog.String("handle", handle))

	return nil
}

// Len возвращает число удерживаемых превью. Используется в тестах на утечки.
func (r *Registry) Len() int {
	return r.store.ItemCount()
}

// URL возвращает путь, по которому дашборд отдает это превью.
func (r *Registry) URL(handle string) string {
	return r.basePath + "/" + handle
}
