package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"forex-trader/config"
	"forex-trader/internal/api/grok"
	"forex-trader/internal/api/oanda"
	"forex-trader/internal/database"
	"forex-trader/internal/notifier"
	"forex-trader/internal/orb"
	"forex-trader/internal/prompt"
	"forex-trader/internal/session"
	"forex-trader/internal/structure"
	"forex-trader/models"
)

const closedTradesInPrompt = 10

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	setupSignalHandling(cancel)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	setupLogging(cfg.LogLevel)
	log.Info().Str("symbol", cfg.Symbol).Str("model", cfg.ModelName).Msg("Starting trading cycle")

	if err := run(ctx, cfg); err != nil {
		log.Fatal().Err(err).Msg("Trading cycle failed")
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	labels := make([]string, 0, len(cfg.Timeframes))
	for _, tf := range cfg.Timeframes {
		labels = append(labels, tf.Label)
	}

	db, err := database.New(cfg.DatabaseURL, labels)
	if err != nil {
		return err
	}
	defer db.Close()

	// A cycle only ever opens one position; with a trade on, the AI
	// has nothing to decide.
	openTrade, err := db.OpenTrade(ctx, cfg.ModelName)
	if err != nil {
		return err
	}
	if openTrade != nil {
		log.Info().Int64("trade_id", openTrade.ID).Msg("Trade already open. Skipping new AI prompt.")
		return nil
	}

	template, err := prompt.LoadTemplate(cfg.PromptPath)
	if err != nil {
		return err
	}

	detector, err := structure.NewDetector(cfg.SwingWindow, cfg.ZoneLookback)
	if err != nil {
		return err
	}

	market := oanda.NewClient(oanda.ClientOptions{
		APIKey:         cfg.OandaAPIKey,
		AccountID:      cfg.OandaAccountID,
		Environment:    cfg.OandaEnv,
		RequestTimeout: time.Duration(cfg.RequestTimeout) * time.Second,
	})

	clock := session.NewClock(cfg.Sessions)
	orbAnalyzer := orb.NewAnalyzer(clock, db)
	mtf := structure.NewMultiTimeframe(market, cfg.Timeframes, detector, cfg.CandleCount)

	// Gather prompt inputs. Partial data degrades the prompt, it does
	// not abort the cycle.
	lastClosed, err := db.LastClosedTrades(ctx, cfg.ModelName, closedTradesInPrompt)
	if err != nil {
		log.Warn().Err(err).Msg("Could not load closed trades")
	}

	news, err := db.TodaysNews(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("Could not load today's news")
	}

	zones := mtf.Report(ctx, cfg.Symbol)
	sessionLines := orbAnalyzer.Run(ctx, cfg.Symbol, cfg.ORBTimeframe, cfg.ORBMinutes, time.Now().UTC())

	var currentPrice, bid, ask float64
	book, err := market.Pricing(ctx, cfg.Symbol)
	if err != nil {
		log.Warn().Err(err).Msg("Could not fetch pricing")
	} else {
		bid, _ = book.BestBid()
		ask, _ = book.BestAsk()
		if bid != 0 && ask != 0 {
			currentPrice = (bid + ask) / 2
		}
	}

	rendered, err := template.Render(prompt.Data{
		CurrentTrade:     nil,
		LastClosedTrades: lastClosed,
		Timeframe:        "1h",
		News:             news,
		CurrentPrice:     currentPrice,
		Zones:            zones,
		ZoneOrder:        cfg.Timeframes,
		SessionLines:     sessionLines,
		Bid:              bid,
		Ask:              ask,
	})
	if err != nil {
		return err
	}
	log.Debug().Str("prompt", rendered).Msg("Assembled prompt")

	llm := grok.NewClient(grok.ClientOptions{
		APIKey:         cfg.GrokAPIKey,
		RequestTimeout: time.Duration(cfg.RequestTimeout) * time.Second,
	})

	decision, err := llm.Decide(ctx, rendered)
	if err != nil {
		return err
	}
	log.Info().
		Str("action", decision.Action).
		Str("confidence", decision.Confidence).
		Str("reason", decision.Reason).
		Msg("AI decision")

	if err := recordDecision(ctx, cfg, db, decision, currentPrice); err != nil {
		return err
	}

	notifyDecision(cfg, decision)
	return nil
}

// recordDecision opens a paper trade when the AI wants in.
func recordDecision(ctx context.Context, cfg *config.Config, db *database.DB, decision *models.TradeDecision, currentPrice float64) error {
	if decision.Action != "BUY" && decision.Action != "SELL" {
		return nil
	}

	entry := decision.EntryPrice
	if entry == 0 {
		entry = currentPrice
	}

	trade := &models.PaperTrade{
		Model:      cfg.ModelName,
		Symbol:     cfg.Symbol,
		Direction:  decision.Action,
		EntryPrice: entry,
		EntryTime:  time.Now().UTC(),
		Status:     models.TradeStatusOpen,
		AIReason:   decision.Reason,
	}
	if err := db.CreateTrade(ctx, trade); err != nil {
		return err
	}

	log.Info().Int64("trade_id", trade.ID).Str("direction", trade.Direction).
		Float64("entry_price", trade.EntryPrice).Msg("Paper trade opened")
	return nil
}

func notifyDecision(cfg *config.Config, decision *models.TradeDecision) {
	if cfg.TelegramToken == "" || cfg.TelegramChatID == 0 {
		return
	}

	tg, err := notifier.NewTelegram(cfg.TelegramToken, cfg.TelegramChatID)
	if err != nil {
		log.Warn().Err(err).Msg("Could not create Telegram notifier")
		return
	}
	if err := tg.NotifyDecision(cfg.Symbol, decision); err != nil {
		log.Warn().Err(err).Msg("Could not send Telegram notification")
	}
}

// setupSignalHandling configures signal handling for graceful shutdown
func setupSignalHandling(cancel context.CancelFunc) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-c
		log.Info().Msg("Shutdown signal received, exiting...")
		cancel()
	}()
}

// setupLogging configures the logger
func setupLogging(logLevel string) {
	output := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	log.Logger = log.Output(output)

	level, err := zerolog.ParseLevel(logLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
}
