// Package event publishes terminal trade states to kafka so downstream
// consumers (alerting, analytics) see every confirmed, expired or
// unresolved execution.
package event

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"github.com/sirupsen/logrus"
	"github.com/wavetradeapp/wave_trader/config"
	"github.com/wavetradeapp/wave_trader/utils/logger"
)

var kafkaClient *kafka.Producer
var once sync.Once

// InitKafka eagerly connects the producer. Publishing is disabled when no
// kafka host is configured.
func InitKafka() {
	GetKafkaInst()
}

func GetKafkaInst() *kafka.Producer {
	once.Do(func() {
		cfg := config.GetKafkaConfig()
		if cfg.Host == "" {
			logger.Logrus.Info("kafka host not configured, trade events disabled")
			return
		}

		var kafkaconf = &kafka.ConfigMap{
			"api.version.request": "true",
			"message.max.bytes":   1000000,
			"linger.ms":           10,
			"retries":             30,
			"retry.backoff.ms":    1000,
			"acks":                "1"}
		kafkaconf.SetKey("bootstrap.servers", cfg.Host)

		switch cfg.Protocol {
		case "plaintext":
			kafkaconf.SetKey("security.protocol", "plaintext")
		case "sasl_ssl":
			kafkaconf.SetKey("security.protocol", "sasl_ssl")
			kafkaconf.SetKey("sasl.username", cfg.Username)
			kafkaconf.SetKey("sasl.password", cfg.Password)
			kafkaconf.SetKey("sasl.mechanism", "PLAIN")
			kafkaconf.SetKey("enable.ssl.certificate.verification", "false")
			kafkaconf.SetKey("ssl.endpoint.identification.algorithm", "None")
			kafkaconf.SetKey("ssl.ca.location", cfg.CAPath)
		case "sasl_plaintext":
			kafkaconf.SetKey("sasl.mechanism", "PLAIN")
			kafkaconf.SetKey("security.protocol", "sasl_plaintext")
			kafkaconf.SetKey("sasl.username", cfg.Username)
			kafkaconf.SetKey("sasl.password", cfg.Password)
		default:
			logger.Logrus.WithFields(logrus.Fields{"Protocol": cfg.Protocol}).Error("unknown kafka protocol, trade events disabled")
			return
		}

		client, err := kafka.NewProducer(kafkaconf)
		if err != nil {
			logger.Logrus.WithFields(logrus.Fields{"ErrMsg": err}).Error("connect kafka failed, trade events disabled")
			return
		}

		go func(p *kafka.Producer) {
			for e := range p.Events() {
				switch ev := e.(type) {
				case *kafka.Message:
					if ev.TopicPartition.Error != nil {
						logger.Logrus.WithFields(logrus.Fields{"Data": ev.TopicPartition}).Error("Delivery message failed")
					}
				}
			}
		}(client)

		kafkaClient = client
	})
	return kafkaClient
}

type TradeEvent struct {
	TxHash       string  `json:"tx_hash"`
	TokenAddress string  `json:"token_address"`
	TokenSymbol  string  `json:"token_symbol"`
	TradeMode    string  `json:"trade_mode"`
	Amount       float64 `json:"amount"`
	Status       string  `json:"status"`
	Timestamp    int64   `json:"timestamp"`
}

// PublishTradeEvent is best effort: a nil producer (kafka disabled) is a
// silent no-op.
func PublishTradeEvent(ev TradeEvent) error {
	client := GetKafkaInst()
	if client == nil {
		return nil
	}

	if ev.Timestamp == 0 {
		ev.Timestamp = time.Now().Unix()
	}

	bydata, err := json.Marshal(&ev)
	if err != nil {
		return err
	}

	topic := config.GetKafkaConfig().TradeTopic
	err = client.Produce(&kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &topic, Partition: kafka.PartitionAny},
		Key:            []byte(ev.TokenAddress),
		Value:          bydata,
	}, nil)
	if err != nil {
		return err
	}

	return nil
}
