package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/ryabkov82/xlsx-reorder/internal/errors"
	"github.com/ryabkov82/xlsx-reorder/internal/reorder"
	"github.com/ryabkov82/xlsx-reorder/internal/sheet"
	"gopkg.in/yaml.v3"
)

const (
	DefaultKeyField    = "کد عرضه"
	DefaultSupplyField = "مقدار عرضه"
	DefaultDemandField = "تقاضا"
	DefaultOutputPath  = "./اکسل_مرتب.xlsx"
	DefaultAddr        = ":8080"
	DefaultMaxUpload   = 32 << 20
)

// Config параметры запуска
type Config struct {
	OrderPath  string
	DataPath   string
	OutputPath string
	LayoutPath string

	Layout Layout
	Server ServerConfig
}

// Layout описывает ключевое поле, каталог колонок и оформление результата
type Layout struct {
	KeyField     string      `yaml:"key_field"`
	SupplyField  string      `yaml:"supply_field"`
	DemandField  string      `yaml:"demand_field"`
	Columns      []string    `yaml:"columns"`
	MergeColumns []string    `yaml:"merge_columns"`
	SheetName    string      `yaml:"sheet_name"`
	Style        sheet.Style `yaml:"style"`
}

// ServerConfig параметры HTTP-сервера
type ServerConfig struct {
	Addr      string
	MaxUpload int64
	GinMode   string
}

// DefaultLayout каталог колонок исходного отчёта
func DefaultLayout() Layout {
	return Layout{
		KeyField:    DefaultKeyField,
		SupplyField: DefaultSupplyField,
		DemandField: DefaultDemandField,
		Columns: []string{
			"کد عرضه",
			"نام کالا",
			"عرضه کننده",
			"نام مشتری",
			"کارگزار",
			"مقدار عرضه",
			"تقاضا",
			"قیمت پایه",
			"قیمت معامله",
			"حجم معامله",
			"ارزش معامله",
			"تاریخ معامله",
		},
		MergeColumns: []string{
			"کد عرضه",
			"نام کالا",
			"عرضه کننده",
			"مقدار عرضه",
			"تقاضا",
			"قیمت پایه",
		},
		SheetName: sheet.DefaultSheetName,
		Style:     sheet.DefaultStyle(),
	}
}

// Default конфигурация без входных файлов
func Default() *Config {
	return &Config{
		OutputPath: DefaultOutputPath,
		Layout:     DefaultLayout(),
		Server: ServerConfig{
			Addr:      DefaultAddr,
			MaxUpload: DefaultMaxUpload,
			GinMode:   "release",
		},
	}
}

// Load собирает конфигурацию: значения по умолчанию, .env и окружение,
// затем файл раскладки. Флаги командной строки применяются поверх.
func Load(layoutPath string) (*Config, error) {
	// .env не обязателен
	_ = godotenv.Load()

	cfg := Default()
	cfg.applyEnv()

	if layoutPath == "" {
		layoutPath = os.Getenv("REORDER_LAYOUT")
	}
	if layoutPath != "" {
		if err := cfg.LoadLayout(layoutPath); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

func (c *Config) applyEnv() {
	c.OrderPath = getEnvOrDefault("REORDER_ORDER_FILE", c.OrderPath)
	c.DataPath = getEnvOrDefault("REORDER_DATA_FILE", c.DataPath)
	c.OutputPath = getEnvOrDefault("REORDER_OUTPUT", c.OutputPath)
	c.Layout.KeyField = getEnvOrDefault("REORDER_KEY_FIELD", c.Layout.KeyField)
	c.Layout.SheetName = getEnvOrDefault("REORDER_SHEET_NAME", c.Layout.SheetName)
	c.Server.Addr = getEnvOrDefault("REORDER_ADDR", c.Server.Addr)
	c.Server.MaxUpload = getEnvInt64OrDefault("REORDER_MAX_UPLOAD", c.Server.MaxUpload)
	c.Server.GinMode = getEnvOrDefault("GIN_MODE", c.Server.GinMode)
}

// LoadLayout читает раскладку из YAML. Незаданные поля сохраняют текущие значения.
func (c *Config) LoadLayout(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.WithCode(errors.CodeConfigInvalid, err, fmt.Sprintf("не удалось прочитать файл раскладки %s", path))
	}
	if err := yaml.Unmarshal(data, &c.Layout); err != nil {
		return errors.WithCode(errors.CodeConfigInvalid, err, fmt.Sprintf("ошибка разбора файла раскладки %s", path))
	}
	c.LayoutPath = filepath.Clean(path)
	return nil
}

// MarshalLayout раскладка в YAML
func (c *Config) MarshalLayout() ([]byte, error) {
	return yaml.Marshal(c.Layout)
}

// Normalize чистит пути и пробелы в именах колонок
func (c *Config) Normalize() {
	if c.OrderPath != "" {
		c.OrderPath = filepath.Clean(c.OrderPath)
	}
	if c.DataPath != "" {
		c.DataPath = filepath.Clean(c.DataPath)
	}
	if c.OutputPath != "" {
		c.OutputPath = filepath.Clean(c.OutputPath)
	}
	c.Layout.KeyField = strings.TrimSpace(c.Layout.KeyField)
	c.Layout.SupplyField = strings.TrimSpace(c.Layout.SupplyField)
	c.Layout.DemandField = strings.TrimSpace(c.Layout.DemandField)
	c.Layout.Columns = trimAll(c.Layout.Columns)
	c.Layout.MergeColumns = trimAll(c.Layout.MergeColumns)
}

// Validate проверяет раскладку
func (c *Config) Validate() error {
	l := c.Layout
	if l.KeyField == "" {
		return errors.ConfigInvalid("не задано ключевое поле")
	}
	if len(l.Columns) == 0 {
		return errors.ConfigInvalid("каталог колонок пуст")
	}

	known := make(map[string]bool, len(l.Columns))
	for _, col := range l.Columns {
		if known[col] {
			return errors.ConfigInvalid(fmt.Sprintf("колонка %q указана в каталоге дважды", col))
		}
		known[col] = true
	}
	for _, f := range []string{l.SupplyField, l.DemandField} {
		if f != "" && !known[f] {
			return errors.ConfigInvalid(fmt.Sprintf("поле замены %q отсутствует в каталоге", f))
		}
	}
	for _, col := range l.MergeColumns {
		if !known[col] {
			return errors.ConfigInvalid(fmt.Sprintf("объединяемая колонка %q отсутствует в каталоге", col))
		}
	}
	if c.Server.MaxUpload <= 0 {
		return errors.ConfigInvalid("лимит загрузки должен быть положительным")
	}
	return nil
}

// ValidateFiles проверяет, что заданы пути входных файлов
func (c *Config) ValidateFiles() error {
	if c.OrderPath == "" {
		return errors.MissingInput("необходимо указать файл порядка через --order")
	}
	if c.DataPath == "" {
		return errors.MissingInput("необходимо указать файл данных через --data")
	}
	return nil
}

// Reorder параметры алгоритма упорядочивания
func (c *Config) Reorder() reorder.Config {
	return reorder.Config{
		KeyField:     c.Layout.KeyField,
		SupplyField:  c.Layout.SupplyField,
		DemandField:  c.Layout.DemandField,
		Catalog:      c.Layout.Columns,
		MergeColumns: c.Layout.MergeColumns,
	}
}

func trimAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt64OrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}
