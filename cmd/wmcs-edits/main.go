package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/wikimedia/wmcs-edits/internal/classify"
	"github.com/wikimedia/wmcs-edits/internal/config"
	"github.com/wikimedia/wmcs-edits/internal/dblist"
	"github.com/wikimedia/wmcs-edits/internal/domain"
	"github.com/wikimedia/wmcs-edits/internal/report"
	"github.com/wikimedia/wmcs-edits/internal/routing"
	"github.com/wikimedia/wmcs-edits/internal/service"
	sqlstore "github.com/wikimedia/wmcs-edits/internal/storage/sql"
	"github.com/wikimedia/wmcs-edits/internal/validation"
)

// app holds the state shared by the commands of one invocation.
type app struct {
	start    dateValue
	end      dateValue
	output   string
	logLevel string

	cfg    *config.Config
	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{
		start: dateValue{name: "start"},
		end:   dateValue{name: "end"},
	}

	rootCmd := &cobra.Command{
		Use:   "wmcs-edits",
		Short: "Tabulate total and Cloud VPS edits per wiki",
		Long: `wmcs-edits counts, for every public open wiki, the edits recorded in the
CheckUser change log during a date range and how many of them came from
Cloud VPS instances. It prints one "dbname,total,cloud" line per wiki,
sorted by database name, followed by a TOTAL line.`,
		Example: `  # Edits made on 1 March 2019
  wmcs-edits --start 2019-03-01

  # A whole month, written to a file
  wmcs-edits -s 2019-03-01 -e 2019-04-01 -o march.csv`,
		Args:              cobra.NoArgs,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
		RunE: a.runReport,
	}
	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return fmt.Errorf("%w: %v", domain.ErrConfigFormat, err)
	})

	rootCmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Log level: debug, info, warn, error (overrides LOG_LEVEL)")

	rootCmd.Flags().VarP(&a.start, "start", "s", "Start date (inclusive)")
	rootCmd.Flags().VarP(&a.end, "end", "e", "End date (exclusive, defaults to start + 1 day)")
	rootCmd.Flags().StringVarP(&a.output, "output", "o", "", "Write the report to a file instead of stdout")
	_ = rootCmd.MarkFlagRequired("start")

	openWikisCmd := &cobra.Command{
		Use:   "open-wikis",
		Short: "List the public open wikis and the section serving each",
		Args:  cobra.NoArgs,
		RunE:  a.runOpenWikis,
	}
	rootCmd.AddCommand(openWikisCmd)

	return rootCmd
}

// setup loads configuration and builds the logger.
func (a *app) setup(cmd *cobra.Command, args []string) error {
	// Argument errors print usage; failures past this point do not.
	cmd.SilenceUsage = true

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger, err := newLogger(cfg.Log, cmd.ErrOrStderr())
	if err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	a.cfg = cfg
	a.logger = logger.With(zap.String("run_id", uuid.NewString()))
	return nil
}

// newLogger builds a logger writing to w, which is stderr outside tests.
func newLogger(cfg config.LogConfig, w io.Writer) (*zap.Logger, error) {
	level, err := cfg.LogLevel()
	if err != nil {
		return nil, err
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	var enc zapcore.Encoder
	if cfg.Format == "json" {
		enc = zapcore.NewJSONEncoder(encCfg)
	} else {
		encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		enc = zapcore.NewConsoleEncoder(encCfg)
	}

	core := zapcore.NewCore(enc, zapcore.Lock(zapcore.AddSync(w)), level)
	return zap.New(core, zap.AddCaller()), nil
}

func (a *app) resolver() *dblist.Resolver {
	return dblist.New(os.DirFS(a.cfg.MediaWiki.ConfigDir))
}

func (a *app) locator() (routing.Locator, error) {
	if a.cfg.UseStaticEndpoints() {
		return routing.NewStaticLocator(a.cfg.Discovery.StaticEndpoints)
	}
	d := a.cfg.Discovery
	return routing.NewSRVLocator(d.Service, d.Domain, d.Nameserver, d.ResolvConf, d.Timeout)
}

func (a *app) credentials() (sqlstore.Credentials, error) {
	path := a.cfg.Database.DefaultsFile
	if a.cfg.Database.Driver != "mysql" {
		// Fixture databases usually run without an option file.
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			return sqlstore.Credentials{}, nil
		}
	}
	return sqlstore.LoadCredentials(path)
}

func (a *app) reportService() (*service.ReportService, error) {
	sets := a.resolver()

	locator, err := a.locator()
	if err != nil {
		return nil, fmt.Errorf("initializing endpoint discovery: %w", err)
	}
	router := routing.NewRouter(sets, routing.WMFLayout(), locator)

	creds, err := a.credentials()
	if err != nil {
		return nil, err
	}
	db := a.cfg.Database
	opener, err := sqlstore.NewOpener(router, sqlstore.Options{
		Driver:         db.Driver,
		DSNTemplate:    db.DSNTemplate,
		Charset:        db.Charset,
		Credentials:    creds,
		ConnectTimeout: db.ConnectTimeout,
		AutoMigrate:    db.AutoMigrate,
	}, a.logger)
	if err != nil {
		return nil, fmt.Errorf("initializing storage: %w", err)
	}

	return service.NewReportService(sets, opener, classify.CloudVPS(), db.QueryTimeout, a.logger), nil
}

func (a *app) runReport(cmd *cobra.Command, args []string) error {
	w := domain.NewWindow(a.start.t, a.end.t)
	if err := validation.ValidateWindow(w); err != nil {
		return err
	}

	svc, err := a.reportService()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	var file *os.File
	if a.output != "" {
		file, err = os.Create(a.output)
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer file.Close()
		out = file
	}

	a.logger.Info("Starting report",
		zap.Stringer("window", w),
		zap.String("mediawiki_config", a.cfg.MediaWiki.ConfigDir),
		zap.String("driver", a.cfg.Database.Driver))

	if _, err := svc.Run(cmd.Context(), w, out); err != nil {
		return err
	}
	if file != nil {
		if err := file.Close(); err != nil {
			return fmt.Errorf("closing output file: %w", err)
		}
	}
	return nil
}

func (a *app) runOpenWikis(cmd *cobra.Command, args []string) error {
	sets := a.resolver()
	sections, err := service.Inventory(sets, routing.NewRouter(sets, routing.WMFLayout(), nil))
	if err != nil {
		return err
	}
	return report.WriteSections(cmd.OutOrStdout(), sections)
}

func exitCode(err error) int {
	if errors.Is(err, domain.ErrConfigFormat) {
		return 2
	}
	return 1
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitCode(err))
	}
}
