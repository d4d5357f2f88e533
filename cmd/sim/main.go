// Command sim runs the exchange simulator: one synthetic producer
// feeding the matching engine through the SPSC queue.
//
// Flags:
//
//	--orders N      total orders to generate
//	--traders T     number of synthetic trader accounts
//	--seed S        random seed
//	--pin           pin engine and producer threads to cores
//	--log FILE      async log file path
//	--rate N        producer rate limit in orders/second (0 = unlimited)
//	--kafka LIST    comma-separated brokers; enables trade broadcast
//	--topic NAME    kafka topic for the trade broadcast
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"vega/domain/market"
	"vega/engine"
	"vega/infra/affinity"
	"vega/infra/spsc"
	"vega/jobs/broadcaster"
	"vega/logging"
)

const queueCapacity = 1 << 16

func main() {
	os.Exit(run())
}

func run() int {
	var (
		orders  = flag.Uint64("orders", 10_000, "total orders to generate")
		traders = flag.Uint("traders", 1, "number of synthetic trader accounts")
		seed    = flag.Uint64("seed", 12345, "random seed")
		pin     = flag.Bool("pin", false, "pin engine and producer threads to cores")
		logFile = flag.String("log", "", "async log file path")
		rate    = flag.Uint64("rate", 0, "producer rate limit in orders/second (0 = unlimited)")
		kafka   = flag.String("kafka", "", "comma-separated kafka brokers (enables trade broadcast)")
		topic   = flag.String("topic", "vega.trades", "kafka topic for trade broadcast")
	)
	flag.Parse()

	zl, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer zl.Sync()

	runID := uuid.NewString()

	fmt.Println("=== Vega Exchange Simulator ===")
	fmt.Println()
	fmt.Println("Configuration:")
	fmt.Printf("  Run ID:      %s\n", runID)
	fmt.Printf("  Orders:      %d\n", *orders)
	fmt.Printf("  Traders:     %d\n", *traders)
	fmt.Printf("  Seed:        %d\n", *seed)
	fmt.Printf("  Pinning:     %v\n", *pin)
	fmt.Printf("  Log file:    %s\n", orNone(*logFile))
	fmt.Printf("  Kafka:       %s\n", orNone(*kafka))
	fmt.Printf("  CPU cores:   %d\n", affinity.NumCores())
	fmt.Println()

	var alog *logging.AsyncLogger
	if *logFile != "" {
		alog, err = logging.Open(*logFile)
		if err != nil {
			zl.Error("open log file", zap.Error(err))
			return 1
		}
		defer alog.Close()
		fmt.Printf("Logging enabled: %s\n", *logFile)
	}

	queue := spsc.New[market.OrderEvent](queueCapacity)

	engCfg := engine.DefaultConfig()
	if *pin && affinity.NumCores() > 1 {
		engCfg.PinToCore = 0
	}
	eng := engine.New(queue, engCfg, alog)

	var bc *broadcaster.Broadcaster
	if *kafka != "" {
		bc, err = broadcaster.New(broadcaster.Config{
			Brokers: strings.Split(*kafka, ","),
			Topic:   *topic,
			Key:     runID,
		})
		if err != nil {
			zl.Error("connect kafka", zap.Error(err))
			return 1
		}
		defer bc.Close()
		eng.OnTrade = bc.Publish
	}

	traderCfg := engine.DefaultTraderConfig()
	traderCfg.NumTraders = uint32(*traders)
	traderCfg.Seed = *seed
	traderCfg.Orders = *orders
	traderCfg.OrdersPerSecond = *rate
	if *pin && affinity.NumCores() > 2 {
		traderCfg.PinToCore = 1
	}
	producer := engine.NewTrader(traderCfg, queue, 1)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fmt.Println("Starting matching engine...")
	engineDone := make(chan struct{})
	go func() {
		eng.Run(ctx)
		close(engineDone)
	}()

	fmt.Println("Starting producer...")
	producerDone := make(chan struct{})
	start := market.NowNanos()
	go func() {
		producer.Run(ctx)
		close(producerDone)
	}()

	<-producerDone
	producerEnd := market.NowNanos()
	fmt.Println("Producer completed.")

	fmt.Println("Draining event queue...")
	for queue.SizeApprox() > 0 {
		time.Sleep(10 * time.Millisecond)
	}
	cancel()
	<-engineDone
	end := market.NowNanos()

	totalSecs := float64(end-start) / 1e9
	genSecs := float64(producerEnd-start) / 1e9

	fmt.Println("\n=== Performance Results ===")
	fmt.Printf("Total time:         %.3f seconds\n", totalSecs)
	fmt.Printf("Order gen time:     %.3f seconds\n", genSecs)
	fmt.Printf("Orders processed:   %d\n", eng.EventsProcessed())
	fmt.Printf("Throughput:         %d orders/second\n", uint64(float64(*orders)/totalSecs))

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

	if alog != nil {
		fmt.Println("\n=== Logging Stats ===")
		fmt.Printf("  Messages logged:  %d\n", alog.MessagesLogged())
		fmt.Printf("  Messages dropped: %d\n", alog.MessagesDropped())
	}
	if bc != nil {
		fmt.Println("\n=== Broadcast Stats ===")
		fmt.Printf("  Published:  %d\n", bc.Published())
		fmt.Printf("  Dropped:    %d\n", bc.Dropped())
		fmt.Printf("  Failed:     %d\n", bc.Failed())
	}

	fmt.Println("\nSimulation complete.")
	return 0
}

func orNone(s string) string {
	if s == "" {
		return "none"
	}
	return s
}
