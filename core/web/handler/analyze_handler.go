package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/wavetradeapp/wave_trader/config"
	"github.com/wavetradeapp/wave_trader/core/ai"
	"github.com/wavetradeapp/wave_trader/utils/logger"
)

type AnalyzeRequest struct {
	TokenAddress     string       `json:"token_address" binding:"required"`
	Messages         []ai.Message `json:"messages"`
	Model            string       `json:"model"`
	APIURL           string       `json:"api_url"`
	APIKey           string       `json:"api_key"`
	Temperature      float64      `json:"temperature"`
	MaxTokens        int          `json:"max_tokens"`
	TopP             float64      `json:"top_p"`
	FrequencyPenalty float64      `json:"frequency_penalty"`
	PresencePenalty  float64      `json:"presence_penalty"`
	Stream           bool         `json:"stream"`
	N                int          `json:"n"`
}

const analyzeSystemPrompt = `You are a professional cryptocurrency trading analyst focused on concrete, actionable advice. Based on the market data you must state clearly:
1. Whether now is the time to buy or to sell
2. A concrete entry price range
3. Explicit take-profit levels (more than one target is fine)
4. An explicit stop-loss level
5. The expected holding period
6. The suggested position size

Make every suggestion specific and executable, with concrete numbers and percentages.

Market data:
%s`

const analyzeUserPrompt = `Analyze the trading opportunity for the %s token. I need concrete advice:

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

// AnalyzeHandler enriches the session with live market data and forwards
// it to the chat completions API.
func AnalyzeHandler(c *gin.Context) {
	var req AnalyzeRequest
	if err := c.ShouldBind(&req); err != nil {
		Detail(c, http.StatusBadRequest, "invalid input parameters")
		return
	}

	aiCfg := config.GetAIConfig()
	model := req.Model
	if model == "" {
		model = aiCfg.Model
	}
	apiURL := req.APIURL
	if apiURL == "" {
		apiURL = aiCfg.APIURL
	}
	apiKey := req.APIKey
	if apiKey == "" {
		apiKey = aiCfg.APIKey
	}
	if apiKey == "" {
		Detail(c, http.StatusInternalServerError, "API key not configured")
		return
	}

	tokenMarket, err := marketClient.GetTokenMarket(c.Request.Context(), req.TokenAddress)
	if err != nil {
		logger.Logrus.WithFields(logrus.Fields{"ErrMsg": err, "Token": req.TokenAddress}).Error("AnalyzeHandler fetch market data failed")
		Detail(c, http.StatusInternalServerError, fmt.Sprintf("Failed to fetch market data: %v", err))
		return
	}

	messages := req.Messages
	for i := range messages {
		if messages[i].Role == "system" {
			messages[i].Content = fmt.Sprintf(analyzeSystemPrompt, tokenMarket.Context())
			break
		}
	}
	for i := range messages {
		if messages[i].Role == "user" {
			messages[i].Content = fmt.Sprintf(analyzeUserPrompt, tokenMarket.Symbol())
			break
		}
	}

	n := req.N
	if n == 0 {
		n = 1
	}

	strategyText, err := ai.NewClient(apiURL, apiKey).ChatCompletion(c.Request.Context(), ai.ChatRequest{
		Model:            model,
		Messages:         messages,
		Temperature:      req.Temperature,
		MaxTokens:        req.MaxTokens,
		TopP:             req.TopP,
		FrequencyPenalty: req.FrequencyPenalty,
		PresencePenalty:  req.PresencePenalty,
		Stream:           false,
		N:                n,
	})
	if err != nil {
		logger.Logrus.WithFields(logrus.Fields{"ErrMsg": err, "Token": req.TokenAddress}).Error("AnalyzeHandler ai call failed")
		Detail(c, http.StatusInternalServerError, err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "strategy": strategyText})
}
