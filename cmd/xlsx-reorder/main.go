package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ryabkov82/xlsx-reorder/internal/config"
	"github.com/ryabkov82/xlsx-reorder/internal/errors"
	"github.com/ryabkov82/xlsx-reorder/internal/pipeline"
	"github.com/ryabkov82/xlsx-reorder/internal/server"
	"github.com/spf13/cobra"
)

type Output struct {
	Success    bool   `json:"success"`
	RunID      string `json:"run_id,omitempty"`
	OutputFile string `json:"output_file,omitempty"`
	Code       string `json:"code,omitempty"`
	Error      string `json:"error,omitempty"`
	Duration   string `json:"duration"`
	RowCount   int    `json:"row_count,omitempty"`
	GroupCount int    `json:"group_count,omitempty"`
	MergeCount int    `json:"merge_count,omitempty"`
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var layoutPath string

	root := &cobra.Command{
		Use:           "xlsx-reorder",
		Short:         "Упорядочивание строк второй книги по кодам первой",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&layoutPath, "layout", "", "YAML-файл раскладки колонок")

	root.AddCommand(
		newRunCmd(&layoutPath),
		newServeCmd(&layoutPath),
		newLayoutCmd(&layoutPath),
	)
	return root
}

// loadConfig загружает конфигурацию и применяет флаги команды поверх
func loadConfig(layoutPath string, apply func(*config.Config)) (*config.Config, error) {
	cfg, err := config.Load(layoutPath)
	if err != nil {
		return nil, err
	}
	if apply != nil {
		apply(cfg)
	}
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newRunCmd(layoutPath *string) *cobra.Command {
	var orderPath, dataPath, outPath, keyField string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Обработать два файла и сохранить результат",
		Long: `Читает первый лист файла порядка и файла данных, группирует строки
файла данных по кодам в порядке их появления в файле порядка и сохраняет книгу
с объединёнными ячейками групп.

Пример: xlsx-reorder run --order first.xlsx --data second.xlsx --out sorted.xlsx`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			start := time.Now()

			cfg, err := loadConfig(*layoutPath, func(c *config.Config) {
				flags := cmd.Flags()
				if flags.Changed("order") {
					c.OrderPath = orderPath
				}
				if flags.Changed("data") {
					c.DataPath = dataPath
				}
				if flags.Changed("out") {
					c.OutputPath = outPath
				}
				if flags.Changed("key") {
					c.Layout.KeyField = keyField
				}
			})
			if err != nil {
				return fail(start, "Ошибка конфигурации", err)
			}

			path, out, err := pipeline.NewFromConfig(cfg).ProcessFiles(cmd.Context(), cfg)
			if err != nil {
				return fail(start, "Ошибка обработки", err)
			}

			emitJSON(Output{
				Success:    true,
				RunID:      out.Stats.RunID,
				OutputFile: path,
				Duration:   time.Since(start).String(),
				RowCount:   out.Stats.DataRows,
				GroupCount: out.Stats.Groups,
				MergeCount: out.Stats.MergeCount,
			})
			return nil
		},
	}

	cmd.Flags().StringVar(&orderPath, "order", "", "файл порядка (первый файл)")
	cmd.Flags().StringVar(&dataPath, "data", "", "файл данных (второй файл)")
	cmd.Flags().StringVar(&outPath, "out", config.DefaultOutputPath, "результирующий файл")
	cmd.Flags().StringVar(&keyField, "key", config.DefaultKeyField, "ключевое поле группировки")

	return cmd
}

func newServeCmd(layoutPath *string) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Запустить HTTP-сервер загрузки файлов",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*layoutPath, func(c *config.Config) {
				if cmd.Flags().Changed("addr") {
					c.Server.Addr = addr
				}
			})
			if err != nil {
				log.Printf("Ошибка конфигурации: %v", err)
				return err
			}

			srv := server.New(pipeline.NewFromConfig(cfg), cfg.Server)
			if err := srv.Run(cmd.Context()); err != nil {
				log.Printf("Ошибка сервера: %v", err)
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", config.DefaultAddr, "адрес HTTP-сервера")
	return cmd
}

func newLayoutCmd(layoutPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "layout",
		Short: "Показать действующую раскладку колонок в YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*layoutPath, nil)
			if err != nil {
				return err
			}
			out, err := cfg.MarshalLayout()
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
}

func fail(start time.Time, prefix string, err error) error {
	emitJSON(Output{
		Success:  false,
		Code:     errors.GetCode(err),
		Error:    fmt.Sprintf("%s: %v", prefix, err),
		Duration: time.Since(start).String(),
	})
	return err
}

func emitJSON(out Output) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		log.Fatalf("Ошибка вывода JSON: %v", err)
	}
}
