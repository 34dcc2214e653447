// Copyright (c) 2025 The Stakeward developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"fmt"
	"log/slog"
	"os"
	"sync/atomic"
	"time"

	cli "gopkg.in/urfave/cli.v1"

	"github.com/stakeward/stakeward/api"
	"github.com/stakeward/stakeward/cmd/stakeward/httpserver"
	"github.com/stakeward/stakeward/eventdb"
	"github.com/stakeward/stakeward/genesis"
	"github.com/stakeward/stakeward/health"
	"github.com/stakeward/stakeward/log"
	"github.com/stakeward/stakeward/lvldb"
	"github.com/stakeward/stakeward/metrics"
	"github.com/stakeward/stakeward/node"
)

var (
	version   string
	gitCommit string
	gitTag    string
)

func fullVersion() string {
	versionMeta := "release"
	if gitTag == "" {
		versionMeta = "dev"
	}
	return fmt.Sprintf("%s-%s-%s", version, gitCommit, versionMeta)
}

func main() {
	app := cli.App{
		Version:   fullVersion(),
		Name:      "Stakeward",
		Usage:     "Node of the Stakeward staking ledger",
		Copyright: "2025 The Stakeward developers",
		Flags: []cli.Flag{
			networkFlag,
			dataDirFlag,
			cacheFlag,
			apiAddrFlag,
			apiCorsFlag,
			apiTimeoutFlag,
			apiLogsLimitFlag,
			enableAPILogsFlag,
			verbosityFlag,
			jsonLogsFlag,
			pprofFlag,
			enableMetricsFlag,
			metricsAddrFlag,
			enableAdminFlag,
			adminAddrFlag,
		},
		Action: defaultAction,
		Commands: []cli.Command{
			{
				Name:  "devnet",
				Usage: "Stakeward client for test & dev",
				Flags: []cli.Flag{
					dataDirFlag,
					cacheFlag,
					apiAddrFlag,
					apiCorsFlag,
					apiTimeoutFlag,
					apiLogsLimitFlag,
					enableAPILogsFlag,
					verbosityFlag,
					jsonLogsFlag,
					pprofFlag,
					enableMetricsFlag,
					metricsAddrFlag,
					enableAdminFlag,
					adminAddrFlag,
					persistFlag,
				},
				Action: devnetAction,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func defaultAction(ctx *cli.Context) error {
	defer func() { log.Info("exited") }()

	logLevel := initLogger(ctx)
	gene := selectGenesis(ctx)
	instanceDir := makeInstanceDir(ctx, gene)

	mainDB := openMainDB(ctx, instanceDir)
	defer func() { log.Info("closing main database..."); mainDB.Close() }()

	eventDB := openEventDB(ctx, instanceDir)
	defer func() { log.Info("closing event database..."); eventDB.Close() }()

	return runNode(ctx, gene, mainDB, eventDB, instanceDir, logLevel, false)
}

func devnetAction(ctx *cli.Context) error {
	defer func() { log.Info("exited") }()

	logLevel := initLogger(ctx)
	gene := genesis.NewDevnet()

	var mainDB *lvldb.LevelDB
	var eventDB *eventdb.EventDB
	var instanceDir string

	if ctx.Bool(persistFlag.Name) {
		instanceDir = makeInstanceDir(ctx, gene)
		mainDB = openMainDB(ctx, instanceDir)
		eventDB = openEventDB(ctx, instanceDir)
	} else {
		instanceDir = "Memory"
		mainDB = openMemMainDB()
		eventDB = openMemEventDB()
	}

	defer func() { log.Info("closing main database..."); mainDB.Close() }()
	defer func() { log.Info("closing event database..."); eventDB.Close() }()

	return runNode(ctx, gene, mainDB, eventDB, instanceDir, logLevel, true)
}

func runNode(
	ctx *cli.Context,
	gene *genesis.Genesis,
	mainDB *lvldb.LevelDB,
	eventDB *eventdb.EventDB,
	instanceDir string,
	logLevel *slog.LevelVar,
	devMode bool,
) error {
	// metrics come up before the node touches any meter
	if ctx.Bool(enableMetricsFlag.Name) {
		metrics.InitializePrometheusMetrics()
		url, closeFunc, err := httpserver.StartMetricsServer(ctx.String(metricsAddrFlag.Name))
		if err != nil {
			fatal(fmt.Sprintf("unable to start metrics server - %v", err))
		}
		log.Info("metrics server started", "url", url)
		defer closeFunc()
	}

	hlth := health.New(0)

	nd, err := node.New(gene, mainDB, eventDB, hlth)
	if err != nil {
		fatal(fmt.Sprintf("initialize node: %v", err))
	}

	apiLogs := new(atomic.Bool)
	apiLogs.Store(ctx.Bool(enableAPILogsFlag.Name))

	if ctx.Bool(enableAdminFlag.Name) {
		url, closeFunc, err := httpserver.StartAdminServer(
			ctx.String(adminAddrFlag.Name),
			logLevel,
			hlth,
			apiLogs,
		)
		if err != nil {
			fatal(fmt.Sprintf("unable to start admin server - %v", err))
		}
		log.Info("admin server started", "url", url)
		defer closeFunc()
	}

	apiHandler, apiCloser := api.New(nd, api.Options{
		AllowedOrigins:     ctx.String(apiCorsFlag.Name),
		PprofOn:            ctx.Bool(pprofFlag.Name),
		EnableMetrics:      ctx.Bool(enableMetricsFlag.Name),
		LogsLimit:          ctx.Uint64(apiLogsLimitFlag.Name),
		APILogs:            apiLogs,
		SlowQueryThreshold: time.Second,
		Log5xxErrors:       true,
	})
	defer func() { log.Info("closing API..."); apiCloser() }()

	apiURL, srvCloser := startAPIServer(ctx, apiHandler, gene.ID())
	defer func() { log.Info("stopping API server..."); srvCloser() }()

	seq, err := nd.MaxSequence()
	if err != nil {
		fatal(fmt.Sprintf("read event database: %v", err))
	}

	if devMode {
		printDevnetStartupMessage(gene, seq, instanceDir, apiURL)
	} else {
		printStartupMessage(gene, seq, instanceDir, apiURL)
	}

	return nd.Run(handleExitSignal())
}
