package inquiry

import (
	"fmt"
	"log/slog"
	"net/url"
)

// Service собирает WhatsApp-ссылку для формы обратной связи публичной
// страницы. Чистая сборка строки, сетевых вызовов нет.
type Service struct {
	log    *slog.Logger
	number string
}

func New(log *slog.Logger, number string) *Service {
	return &Service{
		log:    log,
		number: number,
	}
}

// Link возвращает deep link вида https://wa.me/<number>?text=...
func (s *Service) Link(name, email, project, message string) string {
	const op = "inquiry.Service.Link"

	text := fmt.Sprintf(
		"*New Inquiry from Website*\n\n*Name:* %s\n*Email:* %s\n*Project:* %s\n*Message:* %s",
		name, email, project, message,
	)

	link := "https://wa.me/" + s.number + "?text=" + url.QueryEscape(text)

	s.log.Debug("inquiry link built",
		slog.String("op", op),
		slog.String("name", name),
		slog.String("project", project),
	)

	return link
}
