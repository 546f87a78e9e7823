package main

import (
	"context"
	"database/sql/driver"
	"io"
	"log/slog"
	"os"
	"slices"
	"strings"

	"github.com/slingdata-io/odbcbind"
	"github.com/slingdata-io/odbcbind/internal/config"
	"github.com/slingdata-io/odbcbind/internal/export"
	"github.com/slingdata-io/odbcbind/internal/logger"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v3"
)

var outputFormats = []string{"table", "xlsx"}

func validateOutputFormat(format string) error {
	if !slices.Contains(outputFormats, strings.ToLower(format)) {
		return errors.Errorf("output format %q is not implemented, use one of %v", format, outputFormats)
	}
	return nil
}

// options holds flag values before they are merged over the config file.
type options struct {
	configPath string
	envFile    string
	dsn        string
	output     string
	format     string
	sheet      string
	timezone   string
	bufferSize int
	limit      int
	debug      bool
}

func newCommand() *cli.Command {
	var opts options

	return &cli.Command{
		Name:      "odbcfetch",
		Usage:     "run a query through ODBC and export the result",
		ArgsUsage: "<query> [params...]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Value:       "./odbcfetch.toml",
				Usage:       "path of the TOML config file",
				Destination: &opts.configPath,
			},
			&cli.StringFlag{
				Name:        "env-file",
				Value:       ".env",
				Usage:       "dotenv file loaded before the config",
				Destination: &opts.envFile,
			},
			&cli.StringFlag{
				Name:        "dsn",
				Usage:       "ODBC connection string, overrides the config",
				Destination: &opts.dsn,
			},
			&cli.StringFlag{
				Name:        "output",
				Aliases:     []string{"o"},
				Usage:       "output file, required for xlsx",
				Destination: &opts.output,
			},
			&cli.StringFlag{
				Name:        "format",
				Aliases:     []string{"f"},
				Usage:       "output format (table or xlsx)",
				Destination: &opts.format,
				Action: func(ctx context.Context, c *cli.Command, s string) error {
					return validateOutputFormat(s)
				},
			},
			&cli.StringFlag{
				Name:        "sheet",
				Usage:       "worksheet name for xlsx output",
				Destination: &opts.sheet,
			},
			&cli.StringFlag{
				Name:        "timezone",
				Usage:       "location dates and timestamps are decoded in",
				Destination: &opts.timezone,
			},
			&cli.IntFlag{
				Name:        "buffer-size",
				Usage:       "initial text and blob column buffer size in bytes",
				Destination: &opts.bufferSize,
			},
			&cli.IntFlag{
				Name:        "limit",
				Usage:       "stop after this many rows (0 fetches all)",
				Destination: &opts.limit,
			},
			&cli.BoolFlag{
				Name:        "debug",
				Usage:       "log binding and fetch diagnostics",
				Destination: &opts.debug,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			if c.NArg() == 0 {
				return errors.New("missing query argument")
			}
			cfg, err := loadConfig(c, &opts)
			if err != nil {
				return err
			}
			return run(ctx, cfg, &opts, c.Args().First(), c.Args().Tail(), c.Root().Writer)
		},
	}
}

// loadConfig reads the config file and applies the flags that were set.
func loadConfig(c *cli.Command, opts *options) (*config.Config, error) {
	cfg, err := config.Load(opts.configPath, opts.envFile)
	if err != nil {
		return nil, err
	}

	if c.IsSet("dsn") {
		cfg.Connection.DSN = opts.dsn
	}
	if c.IsSet("timezone") {
		cfg.Connection.Timezone = opts.timezone
	}
	if c.IsSet("buffer-size") {
		cfg.Connection.BufferSize = opts.bufferSize
	}
	if c.IsSet("format") {
		cfg.Output.Format = opts.format
	}
	if c.IsSet("sheet") {
		cfg.Output.Sheet = opts.sheet
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func run(ctx context.Context, cfg *config.Config, opts *options, query string, params []string, stdout io.Writer) error {
	format := strings.ToLower(cfg.Output.Format)
	if format == "xlsx" && opts.output == "" {
		return errors.New("xlsx output needs --output")
	}

	log, closer, err := logger.Setup(cfg.Logging, opts.debug)
	if err != nil {
		return err
	}
	defer closer.Close()

	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	connector, err := odbcbind.NewConnector(cfg.Connection.DSN,
		odbcbind.WithDefaultTimezone(loc),
		odbcbind.WithBufferSize(cfg.Connection.BufferSize),
		odbcbind.WithLogger(log),
	)
	if err != nil {
		return errors.Wrap(err, "loading ODBC driver manager")
	}

	conn, err := connector.Open(ctx)
	if err != nil {
		return errors.Wrap(err, "connecting")
	}
	defer conn.Close()

	args := make([]driver.Value, len(params))
	for i, p := range params {
		args[i] = p
	}

	log.Info("running query", "params", len(params))
	cursor, err := conn.Query(ctx, query, args...)
	if err != nil {
		return errors.Wrap(err, "running query")
	}
	defer cursor.Close()

	data, err := collect(cursor, opts.limit)
	if err != nil {
		return err
	}
	log.Info("query finished", "rows", data.RowCount())

	switch format {
	case "xlsx":
		return export.Excel(ctx, data, opts.output, cfg.Output.Sheet)
	default:
		if opts.output == "" {
			return export.Table(stdout, data)
		}
		f, err := os.Create(opts.output)
		if err != nil {
			return err
		}
		if err := export.Table(f, data); err != nil {
			f.Close()
			return err
		}
		return f.Close()
	}
}

// rowSource is the part of a cursor collect reads from.
type rowSource interface {
	Columns() []odbcbind.ColumnDesc
	Next(row odbcbind.Row) error
}

// collect fetches up to limit rows (all rows when limit is 0) through a
// single reused Record.
func collect(src rowSource, limit int) (*export.ResultSet, error) {
	descs := src.Columns()
	record := odbcbind.NewRecord(descs)

	data := &export.ResultSet{Columns: make([]export.Column, len(descs))}
	for i, d := range descs {
		data.Columns[i] = export.Column{Name: d.Name, Type: record.Kind(i).String()}
	}

	for limit <= 0 || data.RowCount() < limit {
		if err := src.Next(record); err != nil {
			return nil, err
		}
		if !record.Valid() {
			break
		}
		values := record.Values()
		row := make([]any, len(values))
		for i, v := range values {
			row[i] = v
		}
		data.Rows = append(data.Rows, row)
	}

	slog.Debug("collected rows", "rows", data.RowCount(), "columns", len(descs))
	return data, nil
}
