// Copyright (c) 2025 The Stakeward developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	cli "gopkg.in/urfave/cli.v1"

	"github.com/stakeward/stakeward/log"
)

var (
	networkFlag = cli.StringFlag{
		Name:  "network",
		Usage: "the network to join (devnet) or the path to a genesis profile file",
	}
	dataDirFlag = cli.StringFlag{
		Name:  "data-dir",
		Value: defaultDataDir(),
		Usage: "directory for ledger databases",
	}
	cacheFlag = cli.Uint64Flag{
		Name:  "cache",
		Value: 4096,
		Usage: "megabytes of ram allocated to the main database cache",
	}
	apiAddrFlag = cli.StringFlag{
		Name:  "api-addr",
		Value: "localhost:8669",
		Usage: "API service listening address",
	}
	apiCorsFlag = cli.StringFlag{
		Name:  "api-cors",
		Value: "",
		Usage: "comma separated list of domains from which to accept cross origin requests to API",
	}
	apiTimeoutFlag = cli.Uint64Flag{
		Name:  "api-timeout",
		Value: 10000,
		Usage: "API request timeout value in milliseconds",
	}
	apiLogsLimitFlag = cli.Uint64Flag{
		Name:  "api-logs-limit",
		Value: 1000,
		Usage: "limit the number of events returned by /events API",
	}
	enableAPILogsFlag = cli.BoolFlag{
		Name:  "enable-api-logs",
		Usage: "enables API requests logging",
	}
	verbosityFlag = cli.Uint64Flag{
		Name:  "verbosity",
		Value: log.LegacyLevelInfo,
		Usage: "log verbosity (0-9)",
	}
	jsonLogsFlag = cli.BoolFlag{
		Name:  "json-logs",
		Usage: "output logs in JSON format",
	}
	pprofFlag = cli.BoolFlag{
		Name:  "pprof",
		Usage: "turn on go-pprof",
	}
	enableMetricsFlag = cli.BoolFlag{
		Name:  "enable-metrics",
		Usage: "enables metrics collection",
	}
	metricsAddrFlag = cli.StringFlag{
		Name:  "metrics-addr",
		Value: "localhost:2112",
		Usage: "metrics service listening address",
	}
	enableAdminFlag = cli.BoolFlag{
		Name:  "enable-admin",
		Usage: "enables admin server",
	}
	adminAddrFlag = cli.StringFlag{
		Name:  "admin-addr",
		Value: "localhost:2113",
		Usage: "admin service listening address",
	}

	// devnet mode only flags
	persistFlag = cli.BoolFlag{
		Name:  "persist",
		Usage: "ledger data storage option, if set data will be saved to disk",
	}
)
