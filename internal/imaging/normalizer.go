package imaging

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"log/slog"
	"math"

	_ "image/gif"
	_ "image/png"

	_ "golang.org/x/image/webp"

	"golang.org/x/image/draw"
	"golang.org/x/sync/errgroup"

	"portfolio_admin/internal/domain/models"
	"portfolio_admin/internal/lib/logger/sl"
	"portfolio_admin/internal/previews"
)

var (
	ErrDecode = errors.New("cannot decode image")
	ErrEncode = errors.New("image encoding produced no output")
)

// Normalizer приводит изображение к виду, пригодному для загрузки: вписывает
// в квадрат maxDim×maxDim с сохранением пропорций и перекодирует в JPEG
// фиксированного качества независимо от входного формата. Для каждого
// результата регистрируется превью в реестре.
type Normalizer struct {
	log      *slog.Logger
	previews *previews.Registry
	maxDim   int
	quality  int
}

func NewNormalizer(log *slog.Logger, registry *previews.Registry, maxDim, quality int) *Normalizer {
	return &Normalizer{
		log:      log,
		previews: registry,
		maxDim:   maxDim,
		quality:  quality,
	}
}

// Normalize обрабатывает один файл. Входной срез не модифицируется.
func (n *Normalizer) Normalize(ctx context.Context, filename string, data []byte) (*models.ImageAsset, error) {
	const op = "imaging.Normalizer.Normalize"

	log := n.log.With(
		slog.String("op", op),
		slog.String("filename", filename),
	)

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		log.Warn("decode failed", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, ErrDecode)
	}

	bounds := img.Bounds()
	srcW, srcH := bounds.Dx(), bounds.Dy()
	dstW, dstH := fitWithin(srcW, srcH, n.maxDim)

	if dstW != srcW || dstH != srcH {
		scaled := image.NewRGBA(image.Rect(0, 0, dstW, dstH))
		draw.CatmullRom.Scale(scaled, scaled.Bounds(), img, bounds, draw.Src, nil)
		img = scaled
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: n.quality}); err != nil {
		log.Error("encode failed", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, ErrEncode)
	}

	if buf.Len() == 0 {
		return nil, fmt.Errorf("%s: %w", op, ErrEncode)
	}

	handle := n.previews.Acquire(filename, "image/jpeg", buf.Bytes())

	log.Debug("image normalized",
		slog.String("format", format),
		slog.Int("src_width", srcW),
		slog.Int("src_height", srcH),
		slog.Int("width", dstW),
		slog.Int("height", dstH),
		slog.Int("size", buf.Len()),
	)

	return &models.ImageAsset{
		Filename: filename,
		Data:     buf.Bytes(),
		Width:    dstW,
		Height:   dstH,
		Preview: models.PreviewRef{
			Handle: handle,
			URL:    n.previews.URL(handle),
		},
	}, nil
}

// NormalizeBatch обрабатывает пакет файлов конкурентно и возвращает результаты
// строго в порядке входа: results[i] соответствует inputs[i] независимо от
// порядка завершения. При ошибке любого элемента уже зарегистрированные
// превью пакета освобождаются.
func (n *Normalizer) NormalizeBatch(ctx context.Context, inputs []models.ImageInput) ([]*models.ImageAsset, error) {
	const op = "imaging.Normalizer.NormalizeBatch"

	results := make([]*models.ImageAsset, len(inputs))

	g, gctx := errgroup.WithContext(ctx)
	for i, input := range inputs {
		i, input := i, input
		g.Go(func() error {
			asset, err := n.Normalize(gctx, input.Filename, input.Data)
			if err != nil {
				return err
			}
			results[i] = asset
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		for _, asset := range results {
			if asset != nil {
				_ = n.previews.Release(asset.Preview.Handle)
			}
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return results, nil
}

// fitWithin вписывает w×h в квадрат max×max: большая сторона становится ровно
// max, вторая округляется с сохранением пропорций. Изображения, уже
// помещающиеся в квадрат, не трогаются.
func fitWithin(w, h, max int) (int, int) {
	if w <= max && h <= max {
		return w, h
	}

	if w >= h {
		scaled := int(math.Round(float64(h) * float64(max) / float64(w)))
		if scaled < 1 {
			scaled = 1
		}
		return max, scaled
	}

	scaled := int(math.Round(float64(w) * float64(max) / float64(h)))
	if scaled < 1 {
		scaled = 1
	}
	return scaled, max
}
