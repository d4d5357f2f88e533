// Command replay feeds a CSV order stream through a fresh engine
// pipeline and prints the resulting book and statistics.
//
// Usage: replay [--log FILE] <orders.csv>
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"vega/domain/market"
	"vega/engine"
	"vega/infra/spsc"
	"vega/logging"
	"vega/replay"
)

const queueCapacity = 1 << 16

func main() {
	os.Exit(run())
}

func run() int {
	logFile := flag.String("log", "", "async log file path")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "usage: %s [--log FILE] <orders.csv>\n", os.Args[0])
		fmt.Fprintln(os.Stderr, "\nCSV format:")
		fmt.Fprintln(os.Stderr, "  type,order_id,trader_id,side,price,qty")
		fmt.Fprintln(os.Stderr, "  L,1,0,B,10000,100    (NewLimit Buy)")
		fmt.Fprintln(os.Stderr, "  N,2,1,S,,50          (NewMarket Sell)")
		fmt.Fprintln(os.Stderr, "  C,1,,,,              (Cancel)")
		fmt.Fprintln(os.Stderr, "  M,2,,,,75            (Modify qty)")
		return 1
	}
	path := flag.Arg(0)

	zl, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer zl.Sync()

	records, err := replay.ParseFile(path)
	if err != nil {
		zl.Error("parse csv", zap.String("path", path), zap.Error(err))
		return 1
	}
	fmt.Printf("Read %d orders from: %s\n", len(records), path)

	var alog *logging.AsyncLogger
	if *logFile != "" {
		alog, err = logging.Open(*logFile)
		if err != nil {
			zl.Error("open log file", zap.Error(err))
			return 1
		}
		defer alog.Close()
	}

	queue := spsc.New[market.OrderEvent](queueCapacity)
	eng := engine.New(queue, engine.DefaultConfig(), alog)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		eng.Run(ctx)
		close(done)
	}()

	start := market.NowNanos()
	replay.Feed(queue, records)
	for queue.SizeApprox() > 0 {
		time.Sleep(10 * time.Millisecond)
	}
	cancel()
	<-done
	elapsed := float64(market.NowNanos()-start) / 1e9

	fmt.Printf("\nReplayed %d events in %.3f seconds\n", eng.EventsProcessed(), elapsed)

	eng.Stats().Capture().Fprint(os.Stdout)

	book := eng.Book()
	fmt.Println("\n=== Final Book State ===")
	fmt.Printf("  Active orders:  %d\n", book.OrderCount())
	fmt.Printf("  Bid levels:     %d\n", book.BidLevels())
	fmt.Printf("  Ask levels:     %d\n", book.AskLevels())
	if bid, ok := book.BestBid(); ok {
		fmt.Printf("  Best bid:       %d\n", bid)
	}
	if ask, ok := book.BestAsk(); ok {
		fmt.Printf("  Best ask:       %d\n", ask)
	}
	if spread, ok := book.Spread(); ok {
		fmt.Printf("  Spread:         %d\n", spread)
	}
	return 0
}
