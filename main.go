package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"git.fiblab.net/sim/syncer/v3"
	easy "git.fiblab.net/utils/logrus-easy-formatter"
	"github.com/sirupsen/logrus"
	"github.com/tsinghua-fib-lab/jptax-sim/task"
	"github.com/tsinghua-fib-lab/jptax-sim/utils/config"
)

var (
	// syncer地址，如果设置为空则激活独立部署模式
	syncerAddr = flag.String("syncer", "", "syncer address (empty means standalone mode), e.g. http://localhost:53001")
	// 任务名，主要用于服务注册
	job = flag.String("job", "job0", "the name of the whole task")
	// 本程序监听的RPC地址，覆盖配置文件中的server.listen
	listenAddr = flag.String("listen", "", "RPC listening address (overrides server.listen)")
	// REST网关地址，覆盖配置文件中的server.gateway
	gatewayAddr = flag.String("gateway", "", "REST gateway listening address (overrides server.gateway)")
	// 配置文件路径
	configPath = flag.String("config", "", "config file path")
	// 配置文件Base64编码后的数据
	configData = flag.String("config-data", "", "config file base64 encoded data")

	// log
	logLevels = map[string]logrus.Level{
		"trace":    logrus.TraceLevel,
		"debug":    logrus.DebugLevel,
		"info":     logrus.InfoLevel,
		"warn":     logrus.WarnLevel,
		"error":    logrus.ErrorLevel,
		"critical": logrus.FatalLevel,
		"off":      logrus.PanicLevel,
	}
	logLevel = flag.String("log.level", "info", "log level (trace debug info warn error critical off)")

	log = logrus.WithField("module", "jptax")
)

func main() {
	flag.Parse()
	logrus.SetFormatter(&easy.Formatter{
		TimestampFormat: "2006-01-02 15:04:05.0000",
		LogFormat:       "[%module%] [%time%] [%lvl%] %msg%\n",
	})
	if level, ok := logLevels[*logLevel]; ok {
		logrus.SetLevel(level)
	} else {
		log.Panicf("log.level must be one of %v", logLevels)
	}

	c, err := config.Load(*configPath, *configData)
	if err != nil {
		log.Panicf("%v", err)
	}
	if *listenAddr != "" {
		c.Server.Listen = *listenAddr
	}
	if *gatewayAddr != "" {
		c.Server.Gateway = *gatewayAddr
	}
	log.Infof("%+v", c)

	var sidecar *syncer.Sidecar
	if *syncerAddr != "" {
		sidecar = syncer.NewSidecar(task.SelfName, c.Server.Listen, *syncerAddr)
	}
	t := task.NewContext(*job, c, sidecar)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := t.Run(ctx); err != nil {
		log.Panicf("run: %v", err)
	}
}
