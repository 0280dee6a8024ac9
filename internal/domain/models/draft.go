package models

// PreviewRef — ссылка на превью изображения. Для локально сгенерированных
// превью заполнен Handle (ключ в реестре превью), для уже загруженных на
// сервер — только URL.
type PreviewRef struct {
	Handle string `json:"handle,omitempty"`
	URL    string `json:"url"`
}

// Local сообщает, создано ли превью локально и требует ли явного освобождения.
func (p PreviewRef) Local() bool {
	return p.Handle != ""
}

// ImageAsset — нормализованное изображение, готовое к загрузке.
type ImageAsset struct {
	Filename string
	Data     []byte
	Width    int
	Height   int
	Preview  PreviewRef
}

// ImageInput — исходный файл до нормализации.
type ImageInput struct {
	Filename string
	Data     []byte
}

// GalleryEntry — позиция в галерее черновика. Asset == nil означает
// существующее серверное изображение ("не менять"), тогда Preview указывает
// на удаленный URL.
type GalleryEntry struct {
	Asset   *ImageAsset
	Preview PreviewRef
}

// Draft — клиентское, еще не сохраненное состояние проекта.
// Cover == nil при редактировании означает "оставить текущую обложку".
type Draft struct {
	Title          string
	Description    string
	Category       string
	Cover          *ImageAsset
	CoverPreview   PreviewRef
	Gallery        []GalleryEntry
	ReplaceGallery bool
}

// LocalImages возвращает накопленные в этой сессии бинарники галереи,
// сохраняя порядок добавления.
func (d *Draft) LocalImages() []*ImageAsset {
	var assets []*ImageAsset
	for _, entry := range d.Gallery {
		if entry.Asset != nil {
			assets = append(assets, entry.Asset)
		}
	}
	return assets
}
