package dto

import "portfolio_admin/internal/domain/models"

// ProjectListResponse — форма ответа списка проектов, совпадающая с формой
// внешнего API, чтобы фронту не требовалось два маппинга.
type ProjectListResponse struct {
	Projects []models.Project `json:"projects"`
}

type CategoriesResponse struct {
	Categories []models.Category `json:"categories"`
}

// SubmitResponse — результат создания/обновления проекта.
type SubmitResponse struct {
	Project    models.Project `json:"project"`
	UploadTime string         `json:"uploadTime,omitempty"`
}

// PreviewResponse — зарегистрированное превью нормализованного изображения.
type PreviewResponse struct {
	Handle string `json:"handle"`
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

type InquiryResponse struct {
	WhatsAppURL string `json:"whatsappUrl"`
}
