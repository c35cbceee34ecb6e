package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"kamen/repo/pollapi"
	ram "kamen/repo/ramStorage"
	svc "kamen/usecases/service"
)

var (
	envFile  string
	pollURL  string
	addr     string
	timeout  time.Duration
	debug    bool
	jsonLogs bool
	logFile  string
)

var rootCmd = &cobra.Command{
	Use:   "kamen",
	Short: "Страница партии «Мнение Камня» с голосованием",
	Long: `Serves the party page and its poll voting section.

Polls are read from and votes are sent to the poll service
at POLL_SERVICE_URL.`,
	SilenceUsage: true,
}

// newLogger собирает логгер так же, как раньше: ConsoleWriter с временем
// в формате RFC822, либо чистый JSON.
func newLogger(out io.Writer) zerolog.Logger {
	if !jsonLogs {
		out = zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: time.RFC822,
		}
	}
	return zerolog.New(out).With().Timestamp().Logger()
}

// setup читает конфигурацию, применяет флаги и собирает вид голосования.
func setup(cmd *cobra.Command, logger zerolog.Logger) (Config, *svc.Service, zerolog.Logger, error) {
	config, err := loadConfig(envFile, logger)
	if err != nil {
		return config, nil, logger, err
	}
	flags := cmd.Flags()
	if flags.Changed("poll-url") {
		config.PollServiceURL = pollURL
	}
	if flags.Changed("addr") {
		config.HTTPAddr = addr
	}
	if flags.Changed("timeout") {
		config.PollTimeout = timeout
	}
	if debug {
		config.LogLevel = zerolog.DebugLevel
	}
	if err := config.validate(); err != nil {
		return config, nil, logger, err
	}

	logger = logger.Level(config.LogLevel)
	logger.Info().
		Str("poll_service", config.PollServiceURL).
		Dur("timeout", config.PollTimeout).
		Msg("Конфигурация загружена")

	client, err := pollapi.NewClient(config.PollServiceURL, pollapi.Opts{Timeout: config.PollTimeout})
	if err != nil {
		return config, nil, logger, err
	}
	return config, svc.NewService(ram.NewRamStorage(), client, logger), logger, nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "ENV.env", "Env file to load before reading the environment")
	rootCmd.PersistentFlags().StringVar(&pollURL, "poll-url", "", "Poll service URL (or set POLL_SERVICE_URL)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 0, "Per-request timeout for the poll service, 0 for none")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&jsonLogs, "json-logs", false, "Write logs as JSON instead of console format")

	serveCmd.Flags().StringVar(&addr, "addr", ":8080", "HTTP listen address (or set HTTP_ADDR)")
	tuiCmd.Flags().StringVar(&logFile, "log-file", "kamen-tui.log", "Where the terminal UI writes its log")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(tuiCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
