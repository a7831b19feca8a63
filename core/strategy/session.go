// Package strategy requests AI trading strategies from the analyze
// backend, racing the long-running generation call against a deadline and
// falling back to bounded re-polling.
package strategy

import "fmt"

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ModelParams struct {
	Model            string  `json:"model,omitempty"`
	APIURL           string  `json:"api_url,omitempty"`
	APIKey           string  `json:"api_key,omitempty"`
	Temperature      float64 `json:"temperature"`
	MaxTokens        int     `json:"max_tokens"`
	TopP             float64 `json:"top_p"`
	FrequencyPenalty float64 `json:"frequency_penalty"`
	PresencePenalty  float64 `json:"presence_penalty"`
}

func DefaultModelParams() ModelParams {
	return ModelParams{
		Temperature: 0.7,
		MaxTokens:   2048,
		TopP:        0.7,
	}
}

// Session is the full generation request: constructed fresh per user
// action, never persisted, and resubmitted verbatim by the fallback
// poller so every attempt asks for the same thing.
type Session struct {
	TokenAddress string
	Messages     []Message
	Params       ModelParams
}

const analystSystemPrompt = "You are a professional cryptocurrency trading analyst. You receive detailed market data from GMGN and DexScreener, including price changes, liquidity and trading volume. Analyze it in depth, paying particular attention to price trends, liquidity shifts and market sentiment, and consider both short-term (5 minutes to 1 hour) and longer-term (6 to 24 hours) price movement."

const strategyPromptTemplate = `Analyze the Solana token %s and provide the following:

1. Trade direction:
   - Is now a good time to buy or to sell?
   - Why?

2. Concrete price levels:
   - Suggested entry range
   - First target (take profit)
   - Second target, if any
   - Stop loss

3. Trading plan:
   - Suggested holding period
   - Suggested position size as a percentage of total capital
   - Whether to scale in or out in tranches

4. Risks:
   - The biggest current risk
   - How to manage it

Give concrete numbers, not vague advice.`

const chatSystemPrompt = "You are a professional cryptocurrency trading assistant with access to live market data from GMGN and DexScreener: price, volume, liquidity and related metrics. Give professional analysis and suggestions grounded in that data, weigh short-term against long-term trends, and always stress risk management."

// NewStrategySession builds the canonical generate-a-strategy request.
func NewStrategySession(tokenAddress string, params ModelParams) *Session {
	return &Session{
		TokenAddress: tokenAddress,
		Params:       params,
		Messages: []Message{
			{Role: "system", Content: analystSystemPrompt},
			{Role: "user", Content: fmt.Sprintf(strategyPromptTemplate, tokenAddress)},
		},
	}
}

// NewChatSession builds a free-form analysis question about the token.
func NewChatSession(tokenAddress, userMessage string, params ModelParams) *Session {
	return &Session{
		TokenAddress: tokenAddress,
		Params:       params,
		Messages: []Message{
			{Role: "system", Content: chatSystemPrompt},
			{Role: "user", Content: userMessage},
		},
	}
}
