// Package prompt loads the trading prompt template and injects the
// gathered market data into it.
package prompt

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"forex-trader/config"
	"forex-trader/models"
)

// Template is a prompt text with {placeholder} markers.
type Template struct {
	text string
}

// promptFile is the on-disk format: {"prompt": "..."}.
type promptFile struct {
	Prompt string `json:"prompt"`
}

// LoadTemplate reads a prompt template from a JSON file.
func LoadTemplate(path string) (*Template, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading prompt file: %w", err)
	}

	var file promptFile
	if err := json.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parsing prompt file: %w", err)
	}
	if file.Prompt == "" {
		return nil, fmt.Errorf("prompt file %s has no prompt", path)
	}

	return &Template{text: file.Prompt}, nil
}

// Data is everything the template can inject.
type Data struct {
	CurrentTrade     *models.PaperTrade
	LastClosedTrades []models.PaperTrade
	Timeframe        string
	News             []models.NewsItem
	CurrentPrice     float64
	Zones            map[string]models.LiquidityZoneReport
	ZoneOrder        []config.Timeframe
	SessionLines     []string
	Bid              float64
	Ask              float64
}

// Render substitutes the data into the template. Trades and news are
// injected as JSON; the multi-timeframe zones as a readable block in
// the configured timeframe order.
func (t *Template) Render(data Data) (string, error) {
	currentTrade := "null"
	if data.CurrentTrade != nil {
		raw, err := json.Marshal(data.CurrentTrade)
		if err != nil {
			return "", fmt.Errorf("encoding current trade: %w", err)
		}
		currentTrade = string(raw)
	}

	lastClosed := "[]"
	if len(data.LastClosedTrades) > 0 {
		raw, err := json.Marshal(data.LastClosedTrades)
		if err != nil {
			return "", fmt.Errorf("encoding closed trades: %w", err)
		}
		lastClosed = string(raw)
	}

	news := "[]"
	if len(data.News) > 0 {
		raw, err := json.Marshal(data.News)
		if err != nil {
			return "", fmt.Errorf("encoding news: %w", err)
		}
		news = string(raw)
	}

	zones, err := renderZones(data.Zones, data.ZoneOrder)
	if err != nil {
		return "", err
	}

	replacer := strings.NewReplacer(
		"{current_trade_json}", currentTrade,
		"{last_closed_trade_json}", lastClosed,
		"{timeframe}", data.Timeframe,
		"{todays_news}", news,
		"{current_price}", formatFloat(data.CurrentPrice),
		"{get_zones}", zones,
		"{session_info}", strings.Join(data.SessionLines, "\n"),
		"{bid}", formatFloat(data.Bid),
		"{ask}", formatFloat(data.Ask),
	)

	return replacer.Replace(t.text), nil
}

// renderZones writes one line per timeframe in the configured order;
// timeframes missing from the report (failed fetches) are skipped.
func renderZones(zones map[string]models.LiquidityZoneReport, order []config.Timeframe) (string, error) {
	var sb strings.Builder
	for _, tf := range order {
		report, ok := zones[tf.Label]
		if !ok {
			continue
		}
		raw, err := json.Marshal(report)
		if err != nil {
			return "", fmt.Errorf("encoding %s zones: %w", tf.Label, err)
		}
		if sb.Len() > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(tf.Label)
		sb.WriteString(": ")
		sb.Write(raw)
	}
	return sb.String(), nil
}

func formatFloat(v float64) string {
	return fmt.Sprintf("%v", v)
}
