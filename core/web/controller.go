package web

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/wavetradeapp/wave_trader/config"
	"github.com/wavetradeapp/wave_trader/core/gmgn"
	"github.com/wavetradeapp/wave_trader/core/market"
	"github.com/wavetradeapp/wave_trader/core/orders"
	"github.com/wavetradeapp/wave_trader/core/strategy"
	"github.com/wavetradeapp/wave_trader/core/trade"
	"github.com/wavetradeapp/wave_trader/core/wallet"
	"github.com/wavetradeapp/wave_trader/core/web/handler"
	"github.com/wavetradeapp/wave_trader/utils/logger"
)

// initDeps builds the upstream clients and the orchestration core from
// config and hands them to the handler package.
func initDeps() error {
	serverCfg := config.GetServerConfig()

	signingWallet, err := buildWallet()
	if err != nil {
		return err
	}

	marketCfg := config.GetMarketConfig()
	marketClient := market.NewClient(marketCfg.Host, time.Duration(marketCfg.CacheSeconds)*time.Second)

	// the trade API host defaults to this server's own address so one
	// process serves both the swap backend and the orchestration layer
	tradeAPIHost := config.GetTradeAPIConfig().Host
	if tradeAPIHost == "" {
		tradeAPIHost = fmt.Sprintf("http://127.0.0.1%s", serverCfg.ListenAddr)
	}

	queue := orders.NewQueue()
	executor := trade.NewExecutor(trade.NewClient(tradeAPIHost), signingWallet, queue)
	tradeCfg := config.GetTradeConfig()
	if tradeCfg.StatusIntervalSeconds > 0 && tradeCfg.StatusMaxAttempts > 0 {
		executor.SetStatusPolling(time.Duration(tradeCfg.StatusIntervalSeconds)*time.Second, int(tradeCfg.StatusMaxAttempts))
	}

	requester := strategy.NewRequester(strategy.NewClient(tradeAPIHost))
	strategyCfg := config.GetStrategyConfig()
	if strategyCfg.TimeoutSeconds > 0 && strategyCfg.PollIntervalSeconds > 0 && strategyCfg.PollMaxAttempts > 0 {
		requester.SetTiming(time.Duration(strategyCfg.TimeoutSeconds)*time.Second,
			time.Duration(strategyCfg.PollIntervalSeconds)*time.Second, int(strategyCfg.PollMaxAttempts))
	}

	handler.Init(handler.Deps{
		GMGN:      gmgn.NewClient(config.GetGMGNConfig().Host),
		Market:    marketClient,
		Executor:  executor,
		Requester: requester,
		Queue:     queue,
		Wallet:    signingWallet,
	})

	return nil
}

func buildWallet() (*wallet.LocalWallet, error) {
	key := config.GetWalletConfig().PrivateKey
	if key != "" {
		w, err := wallet.NewLocalWallet(key)
		if err != nil {
			return nil, err
		}
		w.Connect()
		return w, nil
	}

	// no key configured, start disconnected so trades fail validation
	// until a key is supplied
	return wallet.NewRandomWallet()
}

func ServerRoute() *gin.Engine {
	router := gin.New()

	recoverFile, err := os.OpenFile("./log/recover.log", os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil || recoverFile == nil {

		if err != nil {
			logger.Logrus.WithFields(logrus.Fields{"ErrMsg": err.Error()}).Error("open recover log file failed")
		}
		if recoverFile == nil {
			logger.Logrus.Error("open recover log file failed:recoverFile is nil")
		}

		return nil
	}

	visitLogFile := config.GetServerConfig().VisitLogFile
	if visitLogFile == "" {
		visitLogFile = "./log/visit.log"
	}

	router.Use(MiddleLogger(visitLogFile), gin.RecoveryWithWriter(recoverFile))

	// swap backend surface
	router.GET("/api/config", handler.ConfigHandler)
	router.POST("/api/analyze", handler.AnalyzeHandler)
	router.POST("/api/trade", handler.TradeHandler)
	router.POST("/api/confirm_trade", handler.ConfirmTradeHandler)
	router.GET("/api/transaction_status", handler.TransactionStatusHandler)

	// orchestration surface
	router.POST("/api/execute_trade", handler.ExecuteTradeHandler)
	router.POST("/api/strategy", handler.StrategyHandler)
	router.GET("/api/orders", handler.ListOrdersHandler)
	router.DELETE("/api/orders/:id", handler.CancelOrderHandler)
	router.GET("/api/wallet", handler.WalletHandler)
	router.POST("/api/wallet/connect", handler.WalletConnectHandler)
	router.POST("/api/wallet/disconnect", handler.WalletDisconnectHandler)

	return router
}

func Run() {
	if err := initDeps(); err != nil {
		logger.Logrus.WithFields(logrus.Fields{"ErrMsg": err}).Fatal("init server dependencies failed")
		return
	}

	router := ServerRoute()
	if router != nil {
		listenAddr := config.GetServerConfig().ListenAddr
		if listenAddr == "" {
			listenAddr = ":8080"
		}

		// strategy generation can hold a connection through the whole
		// timeout race plus the fallback polling window
		server := &http.Server{
			Addr:         listenAddr,
			Handler:      router,
			ReadTimeout:  120 * time.Second,
			WriteTimeout: 1320 * time.Second,
		}

		go func() {
			err := server.ListenAndServe()
			if err != nil {
				logger.Logrus.WithFields(logrus.Fields{"ErrMsg": err}).Fatal("Server start failed")
			}
		}()

		// Wait for interrupt signal to gracefully shutdown the server with
		// a timeout of 5 seconds.
		quit := make(chan os.Signal, 1)
		// kill (no param) default send syscall.SIGTERM
		// kill -2 is syscall.SIGINT
		// kill -9 is syscall.SIGKILL but can't be caught, so don't need to add it
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit

		// The context is used to inform the server it has 5 seconds to finish
		// the request it is currently handling
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			logger.Logrus.WithFields(logrus.Fields{"ErrMsg": err.Error()}).Error("Server forced to shutdown")
		}

		logger.Logrus.Info("Server shutdown success")
	}
}
