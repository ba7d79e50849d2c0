package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/uhyunpark/dexlens/params"
	"github.com/uhyunpark/dexlens/pkg/api"
	"github.com/uhyunpark/dexlens/pkg/chain"
	"github.com/uhyunpark/dexlens/pkg/exchange"
	"github.com/uhyunpark/dexlens/pkg/util"
)

func main() {
	// Load config from .env file and environment variables
	cfg, err := params.LoadFromEnv("") // "" means load from .env in current directory
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.Chain.Exchange == (common.Address{}) {
		log.Fatal("config: EXCHANGE_ADDRESS is required")
	}
	if len(cfg.Markets) == 0 {
		log.Fatal("config: MARKETS is required")
	}

	logger, err := util.NewLoggerWithFile(cfg.LogFile)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()
	sugar := logger.Sugar()
	sugar.Infow("logger_initialized", "log_file", cfg.LogFile)

	// ---- Market registry ----
	registry := exchange.NewRegistry()
	for _, p := range cfg.Markets {
		m := exchange.Market{
			BaseSymbol:  p.BaseSymbol,
			QuoteSymbol: p.QuoteSymbol,
			Base:        p.BaseToken,
			Quote:       p.QuoteToken,
		}
		if err := registry.Register(m); err != nil {
			sugar.Fatalw("market_register_failed", "pair", m.Pair(), "err", err)
		}
		sugar.Infow("market_registered", "pair", m.Pair())
	}

	// ---- Event log + chain feeder ----
	eventLog := exchange.NewEventLog(cfg.Engine.ActivityCap)

	client, err := ethclient.Dial(cfg.Chain.RPCURL)
	if err != nil {
		sugar.Fatalw("rpc_dial_failed", "url", cfg.Chain.RPCURL, "err", err)
	}
	source, err := chain.NewContractSource(client, cfg.Chain.Exchange, sugar)
	if err != nil {
		sugar.Fatalw("source_init_failed", "err", err)
	}
	feeder := chain.NewFeeder(source, eventLog, sugar, util.RealClock{}, cfg.Chain.StartBlock)

	// ---- API server ----
	server := api.NewServer(eventLog, registry, sugar, cfg.API.AllowedOrigins)
	feeder.OnEvent(func(chain.Event) { server.BroadcastViews() })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		if err := feeder.Run(ctx); err != nil && ctx.Err() == nil {
			sugar.Errorw("feeder_stopped", "err", err)
		}
	}()
	go func() {
		if err := server.Start(cfg.API.ListenAddr); err != nil {
			sugar.Fatalw("api_server_failed", "err", err)
		}
	}()

	sugar.Infow("dexlens_started",
		"exchange", cfg.Chain.Exchange.Hex(),
		"markets", registry.Count(),
		"api", cfg.API.ListenAddr,
	)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	sugar.Infow("shutting_down")
}
