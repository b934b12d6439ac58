package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"taskKeeper/internal/app"
	"taskKeeper/internal/config"
	"taskKeeper/internal/filter"
	"taskKeeper/internal/logger"
	"taskKeeper/internal/models/task"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

var configPath string
var asYAML bool
var statusFilter string

var rootCmd = &cobra.Command{
	Use:           "taskkeeper",
	Short:         "Single-user task tracker with an HTTP API",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a, err := initApp(ctx)
		if err != nil {
			return err
		}
		defer a.Shutdown()

		if err := a.Run(ctx); err != nil {
			logger.Error("Приложение завершилось с ошибкой", err)
			return err
		}
		logger.Info("Приложение остановлено")
		return nil
	},
}

var tasksCmd = &cobra.Command{
	Use:     "tasks",
	Short:   "List stored tasks",
	Aliases: []string{"ls"},
	RunE: func(cmd *cobra.Command, args []string) error {
		status, err := filter.ParseStatus(statusFilter)
		if err != nil {
			return err
		}

		a, err := initApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Shutdown()

		tasks := filter.View(a.Manager().AllTasks(), status, filter.PriorityAll, "")
		if asYAML {
			return printYAML(cmd.OutOrStdout(), tasks)
		}
		printTable(cmd.OutOrStdout(), tasks, task.DateOf(time.Now()))
		return nil
	},
}

func init() {
	// без подкоманды запускается сервер
	rootCmd.RunE = serveCmd.RunE

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config.yml")

	tasksCmd.Flags().BoolVar(&asYAML, "yaml", false, "print tasks as YAML")
	tasksCmd.Flags().StringVarP(&statusFilter, "status", "s", "all", "all, completed or pending")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(tasksCmd)
}

func initApp(ctx context.Context) (*app.App, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	a, err := app.New(cfg).Init(ctx)
	if err != nil {
		return nil, fmt.Errorf("инициализация приложения: %w", err)
	}
	logger.Debug("Конфигурация загружена", zap.String("backend", cfg.Storage.Backend))
	return a, nil
}

func printYAML(w io.Writer, tasks []task.Task) error {
	data, err := yaml.Marshal(tasks)
	if err != nil {
		return fmt.Errorf("сериализация YAML: %w", err)
	}
	_, err = w.Write(data)
	return err
}

func printTable(w io.Writer, tasks []task.Task, today task.Date) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	t.Style().Options.SeparateRows = false
	t.Style().Format.Header = text.FormatDefault
	t.Style().Format.Footer = text.FormatDefault

	t.AppendHeader(table.Row{"ID", "Title", "Priority", "Due", "Tags", "Done"})

	for _, row := range tasks {
		priority := string(row.Priority)
		switch row.Priority {
		case task.PriorityHigh:
			priority = text.FgHiRed.Sprint(priority)
		case task.PriorityLow:
			priority = text.FgHiBlack.Sprint(priority)
		}

		due := ""
		if row.DueDate != nil {
			due = row.DueDate.String()
			if row.IsOverdue(today) {
				due = text.FgRed.Sprint(due)
			}
		}

		done := ""
		if row.Completed {
			done = text.FgGreen.Sprint("✓")
		}

		t.AppendRow(table.Row{row.ID, row.Title, priority, due, strings.Join(row.Tags, ", "), done})
	}

	t.AppendFooter(table.Row{"", fmt.Sprintf("%d tasks", len(tasks))})
	t.Render()
}

func main() {
	// .env необязателен
	_ = godotenv.Load()

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
