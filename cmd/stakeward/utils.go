// Copyright (c) 2025 The Stakeward developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net"
	"net/http"
	"os"
	"os/signal"
	"os/user"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/elastic/gosigar"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/fdlimit"
	"github.com/mattn/go-isatty"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/stakeward/stakeward/co"
	"github.com/stakeward/stakeward/eventdb"
	"github.com/stakeward/stakeward/genesis"
	"github.com/stakeward/stakeward/log"
	"github.com/stakeward/stakeward/lvldb"
	"github.com/stakeward/stakeward/ward"
)

func fatal(args ...interface{}) {
	var w io.Writer
	if runtime.GOOS == "windows" {
		// The SameFile check below doesn't work on Windows.
		// stdout is unlikely to get redirected though, so just print there.
		w = os.Stdout
	} else {
		outf, _ := os.Stdout.Stat()
		errf, _ := os.Stderr.Stat()
		if outf != nil && errf != nil && os.SameFile(outf, errf) {
			w = os.Stderr
		} else {
			w = io.MultiWriter(os.Stdout, os.Stderr)
		}
	}
	fmt.Fprint(w, "Fatal: ")
	fmt.Fprintln(w, args...)
	os.Exit(1)
}

func initLogger(ctx *cli.Context) *slog.LevelVar {
	logLevel := log.FromLegacyLevel(ctx.Int(verbosityFlag.Name))

	var level slog.LevelVar
	level.Set(logLevel)

	var handler slog.Handler
	if ctx.Bool(jsonLogsFlag.Name) {
		handler = log.JSONHandlerWithLevel(os.Stdout, &level)
	} else {
		useColor := isatty.IsTerminal(os.Stdout.Fd()) && os.Getenv("TERM") != "dumb"
		handler = log.NewTerminalHandlerWithLevel(os.Stdout, &level, useColor)
	}
	log.SetDefault(log.NewLogger(handler))

	return &level
}

func selectGenesis(ctx *cli.Context) *genesis.Genesis {
	network := ctx.String(networkFlag.Name)

	if network != "" {
		if network == "devnet" {
			return genesis.NewDevnet()
		}

		file, err := os.Open(network)
		if err != nil {
			fatal(fmt.Sprintf("open genesis profile: %v", err))
		}
		defer file.Close()

		decoder := json.NewDecoder(file)
		decoder.DisallowUnknownFields()

		var profile genesis.Profile
		if err := decoder.Decode(&profile); err != nil {
			fatal(fmt.Sprintf("decode genesis profile: %v", err))
		}

		gene, err := genesis.New(&profile)
		if err != nil {
			fatal(fmt.Sprintf("build genesis: %v", err))
		}
		return gene
	}

	cli.ShowAppHelp(ctx)
	fmt.Println("network flag not specified")
	os.Exit(1)
	return nil
}

func makeDataDir(ctx *cli.Context) string {
	dataDir := ctx.String(dataDirFlag.Name)
	if dataDir == "" {
		fatal(fmt.Sprintf("unable to infer default data dir, use -%s to specify", dataDirFlag.Name))
	}
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		fatal(fmt.Sprintf("create data dir [%v]: %v", dataDir, err))
	}
	return dataDir
}

func makeInstanceDir(ctx *cli.Context, gene *genesis.Genesis) string {
	dataDir := makeDataDir(ctx)

	instanceDir := filepath.Join(dataDir, fmt.Sprintf("instance-%x", gene.ID().Bytes()[24:]))
	if err := os.MkdirAll(instanceDir, 0700); err != nil {
		fatal(fmt.Sprintf("create instance dir [%v]: %v", instanceDir, err))
	}
	return instanceDir
}

func openMainDB(ctx *cli.Context, dataDir string) *lvldb.LevelDB {
	cacheMB := normalizeCacheSize(ctx.Int(cacheFlag.Name))
	log.Debug("cache size(MB)", "size", cacheMB)

	// Ensure Go's GC ignores the database cache for trigger percentage
	gogc := math.Max(20, math.Min(100, 100/(float64(cacheMB)/1024)))

	log.Debug("sanitize Go's GC trigger", "percent", int(gogc))
	debug.SetGCPercent(int(gogc))

	fdCache := suggestFDCache()
	log.Debug("fd cache", "n", fdCache)

	dir := filepath.Join(dataDir, "main.db")
	db, err := lvldb.New(dir, lvldb.Options{
		CacheSize:              cacheMB,
		OpenFilesCacheCapacity: fdCache,
	})
	if err != nil {
		fatal(fmt.Sprintf("open main database [%v]: %v", dir, err))
	}
	return db
}

func normalizeCacheSize(sizeMB int) int {
	if sizeMB < 128 {
		sizeMB = 128
	}

	var mem gosigar.Mem
	if err := mem.Get(); err != nil {
		log.Warn("failed to get total mem:", "err", err)
	} else {
		// limit to 1/2 os physical ram
		limitMB := int(mem.Total / 1024 / 1024 / 2)
		if sizeMB > limitMB {
			sizeMB = limitMB
			log.Warn("cache size(MB) limited", "limit", limitMB)
		}
	}
	return sizeMB
}

func suggestFDCache() int {
	limit, err := fdlimit.Current()
	if err != nil {
		fatal("failed to get fd limit:", err)
	}
	if limit <= 1024 {
		log.Warn("low fd limit, increase it if possible", "limit", limit)
	}

	n := limit / 2
	if n > 5120 {
		return 5120
	}
	return n
}

func openEventDB(_ *cli.Context, dataDir string) *eventdb.EventDB {
	dir := filepath.Join(dataDir, "event.db")
	db, err := eventdb.New(dir)
	if err != nil {
		fatal(fmt.Sprintf("open event database [%v]: %v", dir, err))
	}
	return db
}

func openMemMainDB() *lvldb.LevelDB {
	db, err := lvldb.NewMem()
	if err != nil {
		fatal(fmt.Sprintf("open main database: %v", err))
	}
	return db
}

func openMemEventDB() *eventdb.EventDB {
	db, err := eventdb.NewMem()
	if err != nil {
		fatal(fmt.Sprintf("open event database: %v", err))
	}
	return db
}

func startAPIServer(ctx *cli.Context, handler http.Handler, genesisID ward.Bytes32) (string, func()) {
	addr := ctx.String(apiAddrFlag.Name)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		fatal(fmt.Sprintf("listen API addr [%v]: %v", addr, err))
	}
	timeout := ctx.Int(apiTimeoutFlag.Name)
	if timeout > 0 {
		handler = handleAPITimeout(handler, time.Duration(timeout)*time.Millisecond)
	}
	handler = handleXGenesisID(handler, genesisID)
	handler = handleXStakewardVersion(handler)
	handler = requestBodyLimit(handler)
	srv := &http.Server{Handler: handler}
	var goes co.Goes
	goes.Go(func() {
		srv.Serve(listener)
	})
	return "http://" + listener.Addr().String() + "/", func() {
		srv.Close()
		goes.Wait()
	}
}

// handleAPITimeout puts a deadline on the request context. Subscriptions are
// not affected since the websocket upgrade takes over the connection.
func handleAPITimeout(h http.Handler, timeout time.Duration) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()
		h.ServeHTTP(w, r.WithContext(ctx))
	})
}

// handleXGenesisID checks the "x-genesis-id" header or query value against the
// genesis ID of the served ledger, and rejects requests on mismatch.
func handleXGenesisID(h http.Handler, genesisID ward.Bytes32) http.Handler {
	const headerKey = "x-genesis-id"
	expectedID := genesisID.String()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actualID := r.Header.Get(headerKey)
		if actualID == "" {
			actualID = r.URL.Query().Get(headerKey)
		}
		w.Header().Set(headerKey, expectedID)
		if actualID != "" && actualID != expectedID {
			_, _ = io.Copy(io.Discard, r.Body)
			http.Error(w, "genesis id mismatch", http.StatusForbidden)
			return
		}
		h.ServeHTTP(w, r)
	})
}

// handleXStakewardVersion adds the "x-stakeward-ver" header to responses.
func handleXStakewardVersion(h http.Handler) http.Handler {
	const headerKey = "x-stakeward-ver"
	ver := fullVersion()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(headerKey, ver)
		h.ServeHTTP(w, r)
	})
}

// requestBodyLimit caps the size of request bodies.
func requestBodyLimit(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, 200*1024)
		h.ServeHTTP(w, r)
	})
}

// handleExitSignal returns a context canceled when SIGINT or SIGTERM arrives.
func handleExitSignal() context.Context {
	exitSignalCh := make(chan os.Signal, 1)
	signal.Notify(exitSignalCh, os.Interrupt, syscall.SIGTERM)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		sig := <-exitSignalCh
		log.Info("exit signal received", "signal", sig)
		cancel()
	}()
	return ctx
}

func printStartupMessage(
	gene *genesis.Genesis,
	seq uint64,
	dataDir string,
	apiURL string,
) {
	fmt.Printf(`Starting %v
    Network      [ %v %v ]
    Last event   [ #%v ]
    Instance dir [ %v ]
    API portal   [ %v ]
`,
		common.MakeName("Stakeward", fullVersion()),
		gene.ID(), gene.Name(),
		seq,
		dataDir,
		apiURL)
}

func printDevnetStartupMessage(
	gene *genesis.Genesis,
	seq uint64,
	dataDir string,
	apiURL string,
) {
	tableHead := `
┌────────────────────────────────────────────┐
│                   Address                  │`
	tableContent := `
├────────────────────────────────────────────┤
│ %v │`
	tableEnd := `
└────────────────────────────────────────────┘`

	info := fmt.Sprintf(`Starting %v
    Network     [ %v %v ]
    Last event  [ #%v ]
    Admin       [ %v ]
    Data dir    [ %v ]
    API portal  [ %v ]`,
		common.MakeName("Stakeward devnet", fullVersion()),
		gene.ID(), gene.Name(),
		seq,
		genesis.DevAccounts()[0],
		dataDir,
		apiURL)

	info += tableHead

	for _, a := range genesis.DevAccounts() {
		info += fmt.Sprintf(tableContent, a)
	}
	info += tableEnd + "\r\n"

	fmt.Print(info)
}

// copy from go-ethereum
func defaultDataDir() string {
	// Try to place the data folder in the user's home dir
	if home := homeDir(); home != "" {
		if runtime.GOOS == "darwin" {
			return filepath.Join(home, "Library", "Application Support", "org.stakeward")
		} else if runtime.GOOS == "windows" {
			return filepath.Join(home, "AppData", "Roaming", "org.stakeward")
		} else {
			return filepath.Join(home, ".org.stakeward")
		}
	}
	// As we cannot guess a stable location, return empty and handle later
	return ""
}

func homeDir() string {
	if home := os.Getenv("HOME"); home != "" {
		return home
	}
	if usr, err := user.Current(); err == nil {
		return usr.HomeDir
	}
	return ""
}
