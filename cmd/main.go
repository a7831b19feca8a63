package main

import (
	"flag"
	"log"

	"github.com/wavetradeapp/wave_trader/config"
	"github.com/wavetradeapp/wave_trader/core/event"
	"github.com/wavetradeapp/wave_trader/core/web"
	"github.com/wavetradeapp/wave_trader/utils/logger"
)

func main() {
	configPath := flag.String("config_path", "./", "config file")
	logicLogFile := flag.String("logic_log_file", "./log/wave_trader.log", "logic log file")
	flag.Parse()

	//init logic logger
	logger.Init(*logicLogFile)

	//set log level
	logger.SetLogLevel("debug")

	err := config.LoadConf(*configPath)
	if err != nil {
		log.Fatal("load config failed:", err)
	}

	event.InitKafka()

	web.Run()
}
