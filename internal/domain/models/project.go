package models

// Project — персистентный проект портфолио, владелец данных — внешний API.
// Счетчики views/likes/comments ведутся сервером и для клиента read-only.
type Project struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	Description   string   `json:"description,omitempty"`
	Category      string   `json:"category"`
	CoverImageURL string   `json:"coverImageUrl"`
	ImagesURLs    []string `json:"imagesUrls"`
	Views         int      `json:"views"`
	Likes         int      `json:"likes"`
	Comments      int      `json:"comments"`
}

// Category — элемент каталога категорий {value, label}
type Category struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// UploadResult — ответ API на создание/обновление проекта.
// UploadTime заполняется сервером только при создании.
type UploadResult struct {
	Project    Project
	UploadTime string
}
