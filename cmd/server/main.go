package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"google.golang.org/grpc"

	"kestrel/api/grpcserver"
	"kestrel/api/pb"
	"kestrel/config"
	"kestrel/domain/perps"
	"kestrel/infra/journal"
	"kestrel/infra/kafka"
	"kestrel/infra/wal"
	"kestrel/jobs/broadcaster"
	"kestrel/logger"
	"kestrel/service"
	"kestrel/snapshot"
)

func main() {
	configPath := flag.String("config", "kestrel.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Logging)

	// ---------------- Durability ----------------

	intents, err := wal.Open(wal.Config{
		Dir:             cfg.Storage.WALDir,
		SegmentSize:     cfg.Storage.WALSegmentSize,
		SegmentDuration: time.Minute,
	})
	if err != nil {
		log.WithError(err).Fatal("wal init failed")
	}
	defer intents.Close()

	trades, err := journal.Open(cfg.Storage.JournalDir)
	if err != nil {
		log.WithError(err).Fatal("trade journal init failed")
	}
	defer trades.Close()

	// ---------------- Engine ----------------

	ex := service.New(service.Params{
		MinPrice:           cfg.Engine.MinPrice,
		MaxPrice:           cfg.Engine.MaxPrice,
		MaxQty:             cfg.Engine.MaxQty,
		EmaAlpha:           cfg.Derivatives.EmaAlpha,
		FundingIntervalSec: cfg.Derivatives.FundingIntervalSec,
		FundingCap:         cfg.Derivatives.FundingCap,
		MaintenanceMargin:  cfg.Derivatives.MaintenanceMargin,
		InitialMargin:      cfg.Derivatives.InitialMargin,
		LiquidationPenalty: cfg.Derivatives.LiquidationPenalty,
		MaxLeverage:        cfg.Derivatives.MaxLeverage,
		MinConfidence:      cfg.Derivatives.MinConfidence,
		InsuranceFund:      cfg.Derivatives.InsuranceFund,
		Fees:               perps.DefaultFees(),
	}, log, intents, trades)

	// Recovery MUST finish before traffic is accepted.
	snap, err := snapshot.Load(cfg.Storage.SnapshotDir)
	if err != nil {
		log.WithError(err).Fatal("snapshot load failed")
	}
	if err := ex.RestoreFromSnapshot(snap); err != nil {
		log.WithError(err).Fatal("snapshot restore failed")
	}
	if err := ex.ReplayFromWAL(cfg.Storage.WALDir); err != nil {
		log.WithError(err).Fatal("wal replay failed")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---------------- Jobs ----------------

	ex.StartSnapshotJob(ctx, cfg.Storage.SnapshotDir, cfg.Storage.SnapshotInterval)

	go func() {
		t := time.NewTicker(time.Second)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				ex.Reclaim()
			}
		}
	}()

	var marketData *kafka.Producer
	if cfg.Kafka.Enabled {
		bc, err := broadcaster.New(log, trades, cfg.Kafka.Brokers, cfg.Kafka.TradeTopic, cfg.Kafka.FlushInterval)
		if err != nil {
			log.WithError(err).Fatal("broadcaster init failed")
		}
		defer bc.Close()
		bc.Start(ctx)

		marketData = kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.MarketDataTopic)
		defer marketData.Close()
	}

	// ---------------- Oracle loop ----------------

	// Mutating calls share one edge mutex with the gRPC server.
	var mu sync.Mutex
	feed := perps.NewRandomWalkFeed(cfg.Server.OracleStart, time.Now().UnixNano())

	go func() {
		t := time.NewTicker(cfg.Server.OracleInterval)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				mu.Lock()
				ev := ex.Tick(feed.Next())
				mu.Unlock()

				if marketData != nil && !ev.Skipped {
					payload, err := json.Marshal(ev)
					if err != nil {
						continue
					}
					key := []byte(strconv.FormatUint(ev.At, 10))
					if err := marketData.Send(ctx, key, payload); err != nil {
						log.WithError(err).Warn("market data publish failed")
					}
				}
			}
		}
	}()

	// ---------------- gRPC ----------------

	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.Server.GRPCPort))
	if err != nil {
		log.WithError(err).Fatal("listen failed")
	}

	grpcServer := grpc.NewServer()
	pb.RegisterEngineServer(grpcServer, grpcserver.New(ex, &mu, cfg.Server.RatePerSecond, cfg.Server.RateBurst))

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig
		log.Info("shutting down")
		cancel()
		grpcServer.GracefulStop()
	}()

	log.WithField("port", cfg.Server.GRPCPort).Info("engine listening")
	if err := grpcServer.Serve(lis); err != nil {
		log.WithError(err).Fatal("grpc serve failed")
	}
}
