package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/ougirez/sidra/internal/api"
	"github.com/ougirez/sidra/internal/pkg/config"
	"github.com/ougirez/sidra/internal/pkg/constants"
	"github.com/ougirez/sidra/internal/pkg/logger"
	"github.com/ougirez/sidra/internal/pkg/sidra"
	"github.com/ougirez/sidra/internal/pkg/store"
	"github.com/ougirez/sidra/internal/pkg/store/xpgx"
	"github.com/ougirez/sidra/internal/service/auth"
	"github.com/ougirez/sidra/internal/service/catalog"
	"github.com/ougirez/sidra/internal/service/harvest"
	flag "github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const usage = `usage:
  sidra serve [flags]
  sidra harvest --tables 1419,6579 [flags]
`

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	if len(args) == 0 || strings.HasPrefix(args[0], "-") {
		fmt.Fprint(os.Stderr, usage)
		return errors.New("command is required")
	}
	command := args[0]

	flags := flag.NewFlagSet(command, flag.ContinueOnError)
	config.Flags(flags)
	tablesFlag := flags.String("tables", "", "comma separated table ids to harvest")
	noStoreFlag := flags.Bool("no-store", false, "do not persist harvested tables")
	retryFailedFlag := flags.Bool("retry-failed", true, "retry failed tables once after the run")
	if err := flags.Parse(args[1:]); err != nil {
		return err
	}

	v := viper.GetViper()
	if err := config.Load(v, flags); err != nil {
		return err
	}

	if err := logger.Init(v.GetString(constants.ViperLogLevelKey), v.GetBool(constants.ViperLogDevKey)); err != nil {
		return fmt.Errorf("logger.Init: %w", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := sidra.NewClient(config.FetchConfig(v))
	compiler := sidra.NewCompiler(v.GetString(constants.ViperValuesURLKey), config.TerritoryMapper(v))

	switch command {
	case "harvest":
		tableIDs, err := parseTableIDs(*tablesFlag)
		if err != nil {
			return err
		}

		var opts []harvest.Option
		if !*noStoreFlag {
			st, closeStore, err := openStore(ctx, v)
			if err != nil {
				return err
			}
			defer closeStore()
			opts = append(opts, harvest.WithSink(st))
		}

		return runHarvest(ctx, harvest.NewHarvestService(config.HarvestConfig(v), client, compiler, opts...), tableIDs, *retryFailedFlag)
	case "serve":
		st, closeStore, err := openStore(ctx, v)
		if err != nil {
			return err
		}
		defer closeStore()

		return serve(ctx, v,
			harvest.NewHarvestService(config.HarvestConfig(v), client, compiler, harvest.WithSink(st)),
			catalog.NewCatalogService(st, client, config.FormatConfig(v)),
			auth.NewService(v.GetString(constants.ViperSecretKey)),
		)
	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", command)
	}
}

func runHarvest(ctx context.Context, svc *harvest.Service, tableIDs []int64, retryFailed bool) error {
	result, err := svc.Run(ctx, tableIDs)
	if err != nil {
		return fmt.Errorf("harvest: %w", err)
	}

	failures := result.FailuresCopy()
	if retryFailed && len(failures) > 0 {
		retried, err := svc.RetryFailed(ctx, failures)
		if err != nil {
			return fmt.Errorf("retry failed: %w", err)
		}
		failures = retried.FailuresCopy()
	}

	for id, retries := range failures {
		logger.Errorf(ctx, "table %d was not harvested after %d attempts", id, retries)
	}
	if len(failures) > 0 {
		return fmt.Errorf("%d of %d tables failed", len(failures), len(tableIDs))
	}

	return nil
}

func serve(ctx context.Context, v *viper.Viper, harvestService *harvest.Service, catalogService *catalog.Service, authService *auth.Service) error {
	svc, err := api.NewAPIService(harvestService, catalogService, authService)
	if err != nil {
		return fmt.Errorf("NewAPIService: %w", err)
	}

	go svc.Serve(v.GetString(constants.ViperHTTPAddrKey))
	logger.Infof(ctx, "listening on %s", v.GetString(constants.ViperHTTPAddrKey))

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return svc.Shutdown(shutdownCtx)
}

func openStore(ctx context.Context, v *viper.Viper) (store.Store, func(), error) {
	dsn := v.GetString(constants.ViperPostgresDSNKey)

	if v.GetBool(constants.ViperMigrateKey) {
		if err := store.Migrate(ctx, dsn); err != nil {
			return nil, nil, fmt.Errorf("migrate: %w", err)
		}
	}

	pool, err := xpgx.NewPool(ctx, dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("NewPool: %w", err)
	}

	return store.NewStore(pool), pool.Close, nil
}

func parseTableIDs(raw string) ([]int64, error) {
	var ids []int64
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("invalid table id %q", part)
		}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return nil, errors.New("--tables is required")
	}
	return ids, nil
}
