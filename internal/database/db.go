// Package database is the persistence collaborator: paper trade
// history, stored news and per-timeframe candle tables in Postgres.
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"forex-trader/models"
)

// DB represents a database connection.
type DB struct {
	*sql.DB

	// candleTables maps a timeframe label to its candle table. Built
	// once from the configured timeframe set; an unknown label is a
	// caller bug and fails immediately.
	candleTables map[string]string
}

// New creates a new database connection and bootstraps the schema.
// timeframes is the fixed set of timeframe labels candle tables exist
// for (e.g. "15m", "1h", "4h").
func New(databaseURL string, timeframes []string) (*DB, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, err
	}

	// Check connection
	if err := db.Ping(); err != nil {
		return nil, err
	}

	tables := make(map[string]string, len(timeframes))
	for _, tf := range timeframes {
		tables[tf] = "forex_candles_" + tf
	}

	d := &DB{DB: db, candleTables: tables}
	if err := d.createTables(); err != nil {
		return nil, err
	}

	return d, nil
}

// createTables creates the necessary tables if they don't exist.
func (db *DB) createTables() error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS paper_trades (
			id SERIAL PRIMARY KEY,
			model TEXT NOT NULL,
			symbol TEXT NOT NULL,
			direction TEXT NOT NULL,
			entry_price DOUBLE PRECISION NOT NULL,
			exit_price DOUBLE PRECISION,
			profit_loss DOUBLE PRECISION,
			entry_time TIMESTAMP NOT NULL,
			exit_time TIMESTAMP,
			status TEXT NOT NULL,
			ai_reason TEXT
		)
	`)
	if err != nil {
		return err
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS forex_news (
			id SERIAL PRIMARY KEY,
			title TEXT NOT NULL,
			published_at TIMESTAMP NOT NULL,
			sentiment TEXT
		)
	`)
	if err != nil {
		return err
	}

	for _, table := range db.candleTables {
		_, err = db.Exec(fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				symbol TEXT NOT NULL,
				timestamp BIGINT NOT NULL,
				open DOUBLE PRECISION NOT NULL,
				high DOUBLE PRECISION NOT NULL,
				low DOUBLE PRECISION NOT NULL,
				close DOUBLE PRECISION NOT NULL,
				volume BIGINT NOT NULL,
				PRIMARY KEY (symbol, timestamp)
			)
		`, table))
		if err != nil {
			return err
		}
	}

	return nil
}

// OpenTrade returns the most recent open paper trade for a model, or
// nil when there is none.
func (db *DB) OpenTrade(ctx context.Context, model string) (*models.PaperTrade, error) {
	var trade models.PaperTrade
	var exitPrice, profitLoss sql.NullFloat64
	var exitTime sql.NullTime
	var aiReason sql.NullString

	err := db.QueryRowContext(ctx, `
		SELECT id, model, symbol, direction, entry_price, exit_price,
			profit_loss, entry_time, exit_time, status, ai_reason
		FROM paper_trades
		WHERE status = $1 AND model = $2
		ORDER BY entry_time DESC
		LIMIT 1
	`, models.TradeStatusOpen, model).Scan(
		&trade.ID, &trade.Model, &trade.Symbol, &trade.Direction, &trade.EntryPrice,
		&exitPrice, &profitLoss, &trade.EntryTime, &exitTime, &trade.Status, &aiReason,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // No open trade
		}
		return nil, err
	}

	if exitPrice.Valid {
		trade.ExitPrice = exitPrice.Float64
	}
	if profitLoss.Valid {
		trade.ProfitLoss = profitLoss.Float64
	}
	if exitTime.Valid {
		trade.ExitTime = exitTime.Time
	}
	if aiReason.Valid {
		trade.AIReason = aiReason.String
	}

	return &trade, nil
}

// LastClosedTrades returns the n most recently closed trades for a
// model, newest first. They feed the prompt so the AI remembers its
// recent performance.
func (db *DB) LastClosedTrades(ctx context.Context, model string, n int) ([]models.PaperTrade, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, model, symbol, direction, entry_price, exit_price,
			profit_loss, entry_time, exit_time, status, ai_reason
		FROM paper_trades
		WHERE status = $1 AND model = $2
		ORDER BY exit_time DESC
		LIMIT $3
	`, models.TradeStatusClosed, model, n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var trades []models.PaperTrade
	for rows.Next() {
		var trade models.PaperTrade
		var exitPrice, profitLoss sql.NullFloat64
		var exitTime sql.NullTime
		var aiReason sql.NullString

		if err := rows.Scan(
			&trade.ID, &trade.Model, &trade.Symbol, &trade.Direction, &trade.EntryPrice,
			&exitPrice, &profitLoss, &trade.EntryTime, &exitTime, &trade.Status, &aiReason,
		); err != nil {
			return nil, err
		}

		if exitPrice.Valid {
			trade.ExitPrice = exitPrice.Float64
		}
		if profitLoss.Valid {
			trade.ProfitLoss = profitLoss.Float64
		}
		if exitTime.Valid {
			trade.ExitTime = exitTime.Time
		}
		if aiReason.Valid {
			trade.AIReason = aiReason.String
		}

		trades = append(trades, trade)
	}

	return trades, rows.Err()
}

// CreateTrade records a new open paper trade taken on an AI decision.
func (db *DB) CreateTrade(ctx context.Context, trade *models.PaperTrade) error {
	return db.QueryRowContext(ctx, `
		INSERT INTO paper_trades (
			model, symbol, direction, entry_price, entry_time, status, ai_reason
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`,
		trade.Model, trade.Symbol, trade.Direction, trade.EntryPrice,
		trade.EntryTime, trade.Status, trade.AIReason,
	).Scan(&trade.ID)
}

// TodaysNews returns the news published today (UTC) with how many hours
// ago each item appeared.
func (db *DB) TodaysNews(ctx context.Context) ([]models.NewsItem, error) {
	now := time.Now().UTC()

	rows, err := db.QueryContext(ctx, `
		SELECT title, published_at, sentiment
		FROM forex_news
		WHERE published_at::date = $1::date
		ORDER BY published_at DESC
	`, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []models.NewsItem
	for rows.Next() {
		var title string
		var publishedAt time.Time
		var sentiment sql.NullString

		if err := rows.Scan(&title, &publishedAt, &sentiment); err != nil {
			return nil, err
		}

		publishedAt = publishedAt.UTC()
		hoursAgo := now.Sub(publishedAt).Hours()

		items = append(items, models.NewsItem{
			Title:     title,
			Date:      publishedAt.Format("2006-01-02 15:04"),
			Sentiment: sentiment.String,
			HoursAgo:  float64(int(hoursAgo*10+0.5)) / 10, // one decimal
		})
	}

	return items, rows.Err()
}

// SessionCandles returns stored candles for a symbol at or after the
// given instant (milliseconds since epoch), ascending by timestamp.
func (db *DB) SessionCandles(ctx context.Context, symbol, timeframe string, since int64) ([]models.Candle, error) {
	table, ok := db.candleTables[timeframe]
	if !ok {
		return nil, fmt.Errorf("no candle table for timeframe %q", timeframe)
	}

	rows, err := db.QueryContext(ctx, fmt.Sprintf(`
		SELECT timestamp, open, high, low, close, volume
		FROM %s
		WHERE symbol = $1 AND timestamp >= $2
		ORDER BY timestamp ASC
	`, table), symbol, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var candles []models.Candle
	for rows.Next() {
		var c models.Candle
		if err := rows.Scan(&c.Timestamp, &c.Open, &c.High, &c.Low, &c.Close, &c.Volume); err != nil {
			return nil, err
		}
		candles = append(candles, c)
	}

	return candles, rows.Err()
}
