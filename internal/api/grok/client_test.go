package grok

import (
	"testing"
)

func TestParseDecision(t *testing.T) {
	tests := []struct {
		name       string
		content    string
		wantAction string
		wantErr    bool
	}{
		{
			name:       "plain JSON",
			content:    `{"action":"BUY","direction":"UP","entry_price":195.42,"stop_loss":195.10,"take_profit":196.00,"confidence":"HIGH","reason":"ORB breakout with bullish FVG support"}`,
			wantAction: "BUY",
		},
		{
			name: "json code fence",
			content: "```json\n" +
				`{"action":"SELL","reason":"bearish gap below swing high"}` +
				"\n```",
			wantAction: "SELL",
		},
		{
			name: "bare code fence",
			content: "```\n" +
				`{"action":"HOLD"}` +
				"\n```",
			wantAction: "HOLD",
		},
		{
			name:    "prose instead of JSON",
			content: "I think the market will go up.",
			wantErr: true,
		},
		{
			name:    "empty answer",
			content: "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decision, err := ParseDecision(tt.content)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseDecision() = %+v, want error", decision)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseDecision() error: %v", err)
			}
			if decision.Action != tt.wantAction {
				t.Errorf("Action = %q, want %q", decision.Action, tt.wantAction)
			}
		})
	}
}

func TestParseDecisionKeepsFields(t *testing.T) {
	decision, err := ParseDecision(`{"action":"BUY","entry_price":195.42,"stop_loss":195.1,"take_profit":196.0}`)
	if err != nil {
		t.Fatal(err)
	}
	if decision.EntryPrice != 195.42 || decision.StopLoss != 195.1 || decision.TakeProfit != 196.0 {
		t.Errorf("decision = %+v", decision)
	}
}
