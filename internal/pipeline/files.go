package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ryabkov82/xlsx-reorder/internal/config"
	"github.com/ryabkov82/xlsx-reorder/internal/errors"
	"github.com/ryabkov82/xlsx-reorder/internal/sheet"
)

// FileProcessor запуск по путям из конфигурации
type FileProcessor interface {
	ProcessFiles(ctx context.Context, cfg *config.Config) (string, *Output, error)
}

var _ FileProcessor = (*Processor)(nil)

// NewFromConfig собирает Processor со стандартными чтением и записью xlsx
func NewFromConfig(cfg *config.Config) *Processor {
	return NewProcessor(
		sheet.NewReader(),
		sheet.NewWriter(cfg.Layout.SheetName, cfg.Layout.Style),
		cfg.Reorder(),
	)
}

// ProcessFiles читает входные файлы, выполняет запуск и сохраняет книгу
// в cfg.OutputPath. Возвращает путь к сохранённому файлу.
func (p *Processor) ProcessFiles(ctx context.Context, cfg *config.Config) (string, *Output, error) {
	if err := cfg.ValidateFiles(); err != nil {
		return "", nil, err
	}

	order, err := readInput(cfg.OrderPath)
	if err != nil {
		return "", nil, err
	}
	data, err := readInput(cfg.DataPath)
	if err != nil {
		return "", nil, err
	}

	out, err := p.Process(ctx, order, data)
	if err != nil {
		return "", nil, err
	}

	if err := writeFileAtomic(cfg.OutputPath, out.Data); err != nil {
		return "", nil, errors.EncodeError(err)
	}

	return cfg.OutputPath, out, nil
}

func readInput(path string) (Input, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Input{}, errors.MissingInput(fmt.Sprintf("файл не найден: %s", path))
	}
	if err != nil {
		return Input{}, errors.DecodeError(path, err)
	}
	return Input{Name: filepath.Base(path), Data: data}, nil
}

// writeFileAtomic пишет во временный файл рядом с целевым и переименовывает,
// чтобы недописанный результат не оказался на месте файла
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("ошибка создания папки %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".reorder-*.xlsx")
	if err != nil {
		return fmt.Errorf("ошибка создания временного файла: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("ошибка записи файла: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("ошибка записи файла: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("ошибка сохранения файла %s: %w", path, err)
	}
	return nil
}
