package config

import (
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"github.com/wavetradeapp/wave_trader/utils/logger"
)

type ServerConfig struct {
	ListenAddr   string `mapstructure:"ListenAddr"`
	VisitLogFile string `mapstructure:"VisitLogFile"`
}

type GMGNConfig struct {
	Host string `mapstructure:"Host"`
}

type AIConfig struct {
	Model  string `mapstructure:"Model"`
	APIURL string `mapstructure:"APIURL"`
	APIKey string `mapstructure:"APIKey"`
}

// TradeAPIConfig points the orchestration core at a swap backend API.
// Usually this server's own address, but any compatible deployment works.
type TradeAPIConfig struct {
	Host string `mapstructure:"Host"`
}

type WalletConfig struct {
	PrivateKey string `mapstructure:"PrivateKey"`
}

type MarketConfig struct {
	Host         string `mapstructure:"Host"`
	CacheSeconds int64  `mapstructure:"CacheSeconds"`
}

type RedisConfig struct {
	Host         string `mapstructure:"Host"`
	DB           int64  `mapstructure:"DB"`
	Password     string `mapstructure:"Password"`
	MinIdleConns int64  `mapstructure:"MinIdleConns"`
}

type KafkaConfig struct {
	Host       string `mapstructure:"Host"`
	TradeTopic string `mapstructure:"TradeTopic"`
	Protocol   string `mapstructure:"Protocol"`
	Username   string `mapstructure:"Username"`
	Password   string `mapstructure:"Password"`
	CAPath     string `mapstructure:"CAPath"`
}

// one database one instance
type PostgresqlConfig struct {
	Host       string `mapstructure:"Host"`
	Port       int64  `mapstructure:"Port"`
	Account    string `mapstructure:"Account"`
	Password   string `mapstructure:"Password"`
	DBName     string `mapstructure:"DBName"`
	SchemaName string `mapstructure:"SchemaName"`
}

type StrategyConfig struct {
	TimeoutSeconds      int64 `mapstructure:"TimeoutSeconds"`
	PollIntervalSeconds int64 `mapstructure:"PollIntervalSeconds"`
	PollMaxAttempts     int64 `mapstructure:"PollMaxAttempts"`
}

type TradeConfig struct {
	StatusIntervalSeconds int64 `mapstructure:"StatusIntervalSeconds"`
	StatusMaxAttempts     int64 `mapstructure:"StatusMaxAttempts"`
}

// struct decode must has tag
type Config struct {
	ServerConf     ServerConfig     `mapstructure:"ServerConfig"`
	GMGNConf       GMGNConfig       `mapstructure:"GMGNConfig"`
	AIConf         AIConfig         `mapstructure:"AIConfig"`
	TradeAPIConf   TradeAPIConfig   `mapstructure:"TradeAPIConfig"`
	WalletConf     WalletConfig     `mapstructure:"WalletConfig"`
	MarketConf     MarketConfig     `mapstructure:"MarketConfig"`
	RedisConf      RedisConfig      `mapstructure:"RedisConfig"`
	KafkaConf      KafkaConfig      `mapstructure:"KafkaConfig"`
	PostgresqlConf PostgresqlConfig `mapstructure:"PostgresqlConfig"`
	StrategyConf   StrategyConfig   `mapstructure:"StrategyConfig"`
	TradeConf      TradeConfig      `mapstructure:"TradeConfig"`
}

var (
	configMutex = sync.RWMutex{}
	config      Config

	configViper *viper.Viper
)

func watchConfig(c *viper.Viper) error {
	c.WatchConfig()
	cfn := func(e fsnotify.Event) {
		logger.Logrus.WithFields(logrus.Fields{"change": e.String()}).Info("config change and reload it")
		reloadConfig(c)
	}

	c.OnConfigChange(cfn)
	return nil
}

func LoadConf(configFilePath string) error {
	config = Config{}
	configMutex.Lock()
	defer configMutex.Unlock()

	configViper = viper.New()
	configViper.SetConfigName("config")
	configViper.AddConfigPath(configFilePath) //endwith "/"
	configViper.SetConfigType("yaml")

	if err := configViper.ReadInConfig(); err != nil {
		return err
	}
	if err := configViper.Unmarshal(&config); err != nil {
		return err
	}

	logger.Logrus.Info("Load config success")

	if err := watchConfig(configViper); err != nil {
		return err
	}
	return nil
}

func reloadConfig(c *viper.Viper) {
	configMutex.Lock()
	defer configMutex.Unlock()

	if err := c.ReadInConfig(); err != nil {
		logger.Logrus.WithFields(logrus.Fields{"ErrMsg": err.Error()}).Error("config ReLoad failed")
	}

	if err := configViper.Unmarshal(&config); err != nil {
		logger.Logrus.WithFields(logrus.Fields{"ErrMsg": err.Error()}).Error("unmarshal config failed")
	}

	logger.Logrus.Info("Config ReLoad Success")
}

func GetServerConfig() ServerConfig {
	configMutex.RLock()
	defer configMutex.RUnlock()
	return config.ServerConf
}

func GetGMGNConfig() GMGNConfig {
	configMutex.RLock()
	defer configMutex.RUnlock()
	return config.GMGNConf
}

func GetAIConfig() AIConfig {
	configMutex.RLock()
	defer configMutex.RUnlock()
	return config.AIConf
}

func GetTradeAPIConfig() TradeAPIConfig {
	configMutex.RLock()
	defer configMutex.RUnlock()
	return config.TradeAPIConf
}

func GetWalletConfig() WalletConfig {
	configMutex.RLock()
	defer configMutex.RUnlock()
	return config.WalletConf
}

func GetMarketConfig() MarketConfig {
	configMutex.RLock()
	defer configMutex.RUnlock()
	return config.MarketConf
}

func GetRedisConfig() RedisConfig {
	configMutex.RLock()
	defer configMutex.RUnlock()
	return config.RedisConf
}

func GetKafkaConfig() KafkaConfig {
	configMutex.RLock()
	defer configMutex.RUnlock()
	return config.KafkaConf
}

func GetPostgresqlConfig() PostgresqlConfig {
	configMutex.RLock()
	defer configMutex.RUnlock()
	return config.PostgresqlConf
}

func GetStrategyConfig() StrategyConfig {
	configMutex.RLock()
	defer configMutex.RUnlock()
	return config.StrategyConf
}

func GetTradeConfig() TradeConfig {
	configMutex.RLock()
	defer configMutex.RUnlock()
	return config.TradeConf
}
