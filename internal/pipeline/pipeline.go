// Package pipeline связывает чтение двух листов, упорядочивание и запись
// результата в один запуск.
package pipeline

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/ryabkov82/xlsx-reorder/internal/errors"
	"github.com/ryabkov82/xlsx-reorder/internal/reorder"
	"golang.org/x/sync/errgroup"
)

// Decoder разбирает документ в записи первого листа
type Decoder interface {
	Decode(name string, data []byte) ([]reorder.Row, error)
}

// Encoder записывает сетку результата в документ
type Encoder interface {
	Encode(header []string, rows []reorder.OutputRow, merges []reorder.MergeRange) ([]byte, error)
}

// Input входной документ
type Input struct {
	Name string
	Data []byte
}

// Stats сводка запуска
type Stats struct {
	RunID      string        `json:"run_id"`
	Keys       int           `json:"keys"`
	Groups     int           `json:"groups"`
	DataRows   int           `json:"data_rows"`
	Columns    int           `json:"columns"`
	MergeCount int           `json:"merges"`
	Duration   time.Duration `json:"-"`
}

// Output результат запуска: содержимое книги и сводка
type Output struct {
	Data   []byte
	Result *reorder.Result
	Stats  Stats
}

// Processor выполняет один запуск. Общего изменяемого состояния между
// запусками нет, поэтому Process можно вызывать конкурентно.
type Processor struct {
	decoder Decoder
	encoder Encoder
	cfg     reorder.Config
}

func NewProcessor(decoder Decoder, encoder Encoder, cfg reorder.Config) *Processor {
	return &Processor{decoder: decoder, encoder: encoder, cfg: cfg}
}

// Process читает оба документа, упорядочивает строки и формирует книгу.
// Любая ошибка прерывает запуск целиком; частичный результат не возвращается.
func (p *Processor) Process(ctx context.Context, order, data Input) (*Output, error) {
	start := time.Now()
	runID := uuid.NewString()

	if len(order.Data) == 0 || len(data.Data) == 0 {
		return nil, errors.MissingInput("пожалуйста, выберите оба файла")
	}

	var orderRows, dataRows []reorder.Row
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rows, err := p.decode(gctx, order)
		orderRows = rows
		return err
	})
	g.Go(func() error {
		rows, err := p.decode(gctx, data)
		dataRows = rows
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if len(orderRows) == 0 {
		return nil, errors.MissingInput("файл порядка не содержит строк данных")
	}
	if len(dataRows) == 0 {
		return nil, errors.MissingInput("файл данных не содержит строк данных")
	}

	res, err := reorder.Reorder(orderRows, dataRows, p.cfg)
	if err != nil {
		return nil, errors.WithCode(errors.CodeProcessingError, err, "ошибка обработки файлов")
	}

	if err := ctx.Err(); err != nil {
		return nil, errors.WithCode(errors.CodeProcessingError, err, "обработка прервана")
	}

	out, err := p.encoder.Encode(res.Header, res.Rows, res.Merges)
	if err != nil {
		return nil, errors.EncodeError(err)
	}

	stats := Stats{
		RunID:      runID,
		Keys:       len(res.Keys),
		Groups:     len(res.Groups),
		DataRows:   res.DataRows(),
		Columns:    len(res.Header),
		MergeCount: len(res.Merges),
		Duration:   time.Since(start),
	}
	log.Printf("[Pipeline] %s: ключей %d, групп %d, строк %d, объединений %d за %s",
		runID, stats.Keys, stats.Groups, stats.DataRows, stats.MergeCount, stats.Duration)

	return &Output{Data: out, Result: res, Stats: stats}, nil
}

func (p *Processor) decode(ctx context.Context, in Input) ([]reorder.Row, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.WithCode(errors.CodeProcessingError, err, "обработка прервана")
	}
	rows, err := p.decoder.Decode(in.Name, in.Data)
	if err != nil {
		return nil, errors.DecodeError(in.Name, err)
	}
	return rows, nil
}
