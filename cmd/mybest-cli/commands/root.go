package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"mybest-backend/lib/configutil"
	"mybest-backend/lib/cookiestore"
	"mybest-backend/lib/coursestore"
	"mybest-backend/lib/prefstore"
	"mybest-backend/lib/restyutil"
	"mybest-backend/lib/scrapers/elearning"
	"mybest-backend/lib/scrapers/elearning/core"
	"mybest-backend/lib/serviceutil"
	"mybest-backend/lib/sqliteutil"
	syncservice "mybest-backend/services/sync"
)

var rootCmd = &cobra.Command{
	Use:   "mybest-cli",
	Short: "mybest-cli scrapes the BSI e-learning portal from the terminal.",
}

type Config struct {
	BaseUrl  string `json:"base_url"`
	Db       string `json:"db"`
	Username string `json:"username"`
	Password string `json:"password"`
}

var dbPath *string
var dumpHttp *bool

func init() {
	dbPath = rootCmd.PersistentFlags().String("db", "", "Path to the local cache database (overrides config).")
	dumpHttp = rootCmd.PersistentFlags().Bool("dump-http", false, "Write http transcripts to .dev/resty for debugging.")
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func readConfig() Config {
	cfg, err := configutil.ReadConfig[Config]("mybest.json5")
	if err != nil && !os.IsNotExist(err) {
		serviceutil.Fatal("failed to read config", err)
	}
	if cfg.Db == "" {
		cfg.Db = "mybest.db"
	}
	if *dbPath != "" {
		cfg.Db = *dbPath
	}
	return cfg
}

type env struct {
	cfg     Config
	service syncservice.Service
	client  *elearning.Client
	courses coursestore.Store
	prefs   prefstore.Store
}

func setup(ctx context.Context) env {
	cfg := readConfig()

	db, err := sqliteutil.OpenDB(
		cookiestore.Schema+coursestore.Schema+prefstore.Schema,
		cfg.Db,
	)
	if err != nil {
		serviceutil.Fatal("failed to open local database", err)
	}

	if *dumpHttp {
		core.SetRestyInstrumentOutput(restyutil.NewFilesystemOutput(".dev/resty"))
	}
	coreClient, err := core.NewClient(ctx, core.ClientOptions{
		BaseUrl: cfg.BaseUrl,
		Store:   cookiestore.NewStore(db),
	})
	if err != nil {
		serviceutil.Fatal("failed to initialize portal client", err)
	}

	client := elearning.NewClient(coreClient)
	courses := coursestore.NewStore(db)
	prefs := prefstore.NewStore(db)
	return env{
		cfg:     cfg,
		service: syncservice.NewService(client, courses, prefs),
		client:  client,
		courses: courses,
		prefs:   prefs,
	}
}
