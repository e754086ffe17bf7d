// Copyright 2025 Dbmasq
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package run

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/dbmasq/dbmasq/internal/db/postgres"
	"github.com/dbmasq/dbmasq/internal/domains"
	"github.com/dbmasq/dbmasq/internal/generators/transformers"
	"github.com/dbmasq/dbmasq/internal/obfuscate"
	"github.com/dbmasq/dbmasq/internal/obfuscate/checkpoint"
	"github.com/dbmasq/dbmasq/internal/obfuscate/refmap"
	"github.com/dbmasq/dbmasq/internal/obfuscate/valuecache"
	"github.com/dbmasq/dbmasq/internal/storages/builder"
	"github.com/dbmasq/dbmasq/internal/utils/logger"
	stringsUtils "github.com/dbmasq/dbmasq/internal/utils/strings"
)

const failedRowReasonWidth = 60

var (
	Cmd = &cobra.Command{
		Use:   "run",
		Short: "obfuscate the configured tables in place",
		Run: func(cmd *cobra.Command, args []string) {
			if err := logger.SetLogLevel(Config.Log.Level, Config.Log.Format); err != nil {
				log.Fatal().Err(err).Msg("")
			}

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			res, err := execute(ctx)
			if err != nil {
				log.Fatal().Err(err).Msg("obfuscation run aborted")
			}
			printSummary(res)
			if !res.Success {
				os.Exit(1)
			}
		},
	}
	Config = domains.NewConfig()
)

func execute(ctx context.Context) (*obfuscate.RunResult, error) {
	Config.Obfuscation.SetDefaults()
	if err := Config.Obfuscation.Validate(); err != nil {
		return nil, err
	}
	if Config.Database.Host == "" || Config.Database.DBName == "" {
		return nil, fmt.Errorf("database.host and database.dbname must be set")
	}

	st, err := builder.GetStorage(ctx, &Config.Storage, &Config.Log)
	if err != nil {
		return nil, err
	}

	generator, err := transformers.NewValueGenerator(&Config.Obfuscation)
	if err != nil {
		return nil, err
	}

	cache := valuecache.New(Config.Obfuscation.MaxCacheEntries, generator.Policy)
	if Config.Obfuscation.PersistMappings {
		if err := cache.Load(ctx, st, valuecache.DefaultFileName); err != nil {
			return nil, err
		}
	}

	store, err := postgres.NewStore(ctx, &Config.Database, Config.Obfuscation.SQLBatchSize)
	if err != nil {
		return nil, err
	}
	defer store.Close()

	runner := obfuscate.NewRunner(
		Config, store, generator, cache,
		refmap.NewMapper(Config.Obfuscation.Relationships),
		checkpoint.NewStore(st, checkpoint.DefaultFileName),
	)
	res, err := runner.Run(ctx)
	if err != nil {
		return res, err
	}

	if Config.Obfuscation.PersistMappings && !Config.Obfuscation.DryRun {
		if err := cache.Save(ctx, st, valuecache.DefaultFileName); err != nil {
			return res, err
		}
	}
	return res, nil
}

func printSummary(res *obfuscate.RunResult) {
	fmt.Printf("run %s finished in %s\n", res.RunID, res.Duration.Round(time.Millisecond))
	if res.DryRun {
		fmt.Println("dry run: no rows were written")
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"table", "status", "total", "read", "updated", "skipped", "failed"})
	for _, t := range res.Tables {
		table.Append([]string{
			t.Table,
			string(t.Status),
			strconv.FormatInt(t.TotalRows, 10),
			strconv.FormatInt(t.Rows, 10),
			strconv.FormatInt(t.Updated, 10),
			strconv.FormatInt(t.Skipped, 10),
			strconv.Itoa(len(t.Failed)),
		})
	}
	table.Render()

	if failed := res.FailedRows(); len(failed) > 0 {
		fmt.Println("failed rows:")
		ft := tablewriter.NewWriter(os.Stdout)
		ft.SetHeader([]string{"table", "keys", "reason"})
		ft.SetRowLine(true)
		for _, f := range failed {
			ft.Append([]string{
				f.Table,
				strings.Join(f.Keys, ", "),
				stringsUtils.WrapString(f.Reason, failedRowReasonWidth),
			})
		}
		ft.Render()
	}

	for _, e := range res.Errors {
		fmt.Printf("error: %s\n", e)
	}
}

func init() {
	Cmd.Flags().BoolP("dry-run", "", false, "read and transform rows without writing any changes")
	Cmd.Flags().IntP("workers", "j", 0, "number of tables processed in parallel")

	for _, flagName := range []string{"dry-run", "workers"} {
		configName := "obfuscation." + strings.ReplaceAll(flagName, "-", "_")
		if err := viper.BindPFlag(configName, Cmd.Flags().Lookup(flagName)); err != nil {
			log.Fatal().Err(err).Msg("")
		}
	}
}
