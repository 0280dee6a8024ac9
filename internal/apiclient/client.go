package apiclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"portfolio_admin/internal/domain/models"
	"portfolio_admin/internal/lib/logger/sl"
)

// Client — клиент внешнего REST API проектов. Классифицирует ошибки:
// недоступность сети — models.TransportError, не-2xx ответ с телом
// {"error": "..."} — models.ServerError.
type Client struct {
	log     *slog.Logger
	baseURL string
	httpc   *http.Client
}

func New(log *slog.Logger, baseURL string, timeout time.Duration) *Client {
	return &Client{
		log:     log,
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   &http.Client{Timeout: timeout},
	}
}

// ListCategories возвращает каталог категорий.
func (c *Client) ListCategories(ctx context.Context) ([]models.Category, error) {
	const op = "apiclient.Client.ListCategories"

	var payload struct {
		Categories []models.Category `json:"categories"`
	}

	if err := c.getJSON(ctx, c.baseURL+"/categories", &payload); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return payload.Categories, nil
}

// ListProjects возвращает список проектов, опционально отфильтрованный по
// категории.
func (c *Client) ListProjects(ctx context.Context, category string) ([]models.Project, error) {
	const op = "apiclient.Client.ListProjects"

	endpoint := c.baseURL + "/projects"
	if category != "" {
		endpoint += "?category=" + url.QueryEscape(category)
	}

	var payload struct {
		Projects []models.Project `json:"projects"`
	}

	if err := c.getJSON(ctx, endpoint, &payload); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return payload.Projects, nil
}

// GetProject возвращает один проект по id.
func (c *Client) GetProject(ctx context.Context, id string) (*models.Project, error) {
	const op = "apiclient.Client.GetProject"

	var project models.Project
	if err := c.getJSON(ctx, c.baseURL+"/projects/"+url.PathEscape(id), &project); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &project, nil
}

// CreateProject отправляет multipart-тело на POST /projects.
func (c *Client) CreateProject(ctx context.Context, body io.Reader, contentType string) (*models.UploadResult, error) {
	const op = "apiclient.Client.CreateProject"

	result, err := c.sendMultipart(ctx, http.MethodPost, c.baseURL+"/projects", body, contentType)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return result, nil
}

// UpdateProject отправляет multipart-тело на PUT /projects/{id}.
func (c *Client) UpdateProject(ctx context.Context, id string, body io.Reader, contentType string) (*models.UploadResult, error) {
	const op = "apiclient.Client.UpdateProject"

	result, err := c.sendMultipart(ctx, http.MethodPut, c.baseURL+"/projects/"+url.PathEscape(id), body, contentType)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return result, nil
}

// DeleteProject удаляет проект.
func (c *Client) DeleteProject(ctx context.Context, id string) error {
	const op = "apiclient.Client.DeleteProject"

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+"/projects/"+url.PathEscape(id), nil)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	resp, err := c.do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	if err := c.checkStatus(resp); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (c *Client) sendMultipart(ctx context.Context, method, endpoint string, body io.Reader, contentType string) (*models.UploadResult, error) {
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := c.checkStatus(resp); err != nil {
		return nil, err
	}

	var payload struct {
		models.Project
		UploadTime string `json:"uploadTime"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	return &models.UploadResult{
		Project:    payload.Project,
		UploadTime: payload.UploadTime,
	}, nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string, dst any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}

	resp, err := c.do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := c.checkStatus(resp); err != nil {
		return err
	}

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	return nil
}

func (c *Client) do(req *http.Request) (*http.Response, error) {
	resp, err := c.httpc.Do(req)
	if err != nil {
		c.log.Warn("request failed",
			slog.String("method", req.Method),
			slog.String("url", req.URL.String()),
			sl.Err(err),
		)
		return nil, &models.TransportError{Err: err}
	}

	return resp, nil
}

// checkStatus превращает не-2xx ответ в ServerError с сообщением сервера.
func (c *Client) checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	var payload struct {
		Error string `json:"error"`
	}

	message := http.StatusText(resp.StatusCode)
	if err := json.NewDecoder(resp.Body).Decode(&payload); err == nil && payload.Error != "" {
		message = payload.Error
	}

	return &models.ServerError{
		StatusCode: resp.StatusCode,
		Message:    message,
	}
}
