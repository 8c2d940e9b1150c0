package notifier

import (
	"strings"
	"testing"

	"forex-trader/models"
)

func TestFormatDecision(t *testing.T) {
	decision := &models.TradeDecision{
		Action:     "BUY",
		Direction:  "UP",
		EntryPrice: 195.42,
		StopLoss:   195.1,
		TakeProfit: 196.0,
		Confidence: "HIGH",
		Reason:     "ORB breakout with bullish FVG support",
	}

	got := FormatDecision("GBP_JPY", decision)
	for _, want := range []string{
		"GBP_JPY decision: BUY (UP)",
		"Entry: 195.42",
		"Stop loss: 195.1",
		"Take profit: 196",
		"Confidence: HIGH",
		"Reason: ORB breakout with bullish FVG support",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("message missing %q:\n%s", want, got)
		}
	}
}

func TestFormatDecisionHold(t *testing.T) {
	got := FormatDecision("GBP_JPY", &models.TradeDecision{Action: "HOLD"})
	if got != "GBP_JPY decision: HOLD" {
		t.Errorf("FormatDecision() = %q", got)
	}
}
