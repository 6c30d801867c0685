package main

import (
	"encoding/base64"
	"flag"
	"os"

	easy "git.fiblab.net/utils/logrus-easy-formatter"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v2"

	"github.com/nakashivu1/openpilot-lateral-planner/mpcsolver"
	"github.com/nakashivu1/openpilot-lateral-planner/task"
	"github.com/nakashivu1/openpilot-lateral-planner/utils/config"
)

var (
	// job names this planner run, mainly for log correlation.
	job = flag.String("job", "job0", "the name of this planner run")
	// configPath points at the YAML control-parameter file polled by
	// the planner's ConfigSource (spec.md §6/§9).
	configPath = flag.String("config", "", "config file path (empty means no polling)")
	// configData carries the same file base64-encoded, for callers that
	// would rather not manage a path on disk.
	configData = flag.String("config-data", "", "config file base64 encoded data")

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

	log = logrus.WithField("module", "main")
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

	var cfg config.Config
	switch {
	case *configPath != "":
		file, err := os.ReadFile(*configPath)
		if err != nil {
			log.Panicf("config file load err: %v", err)
		}
		if err := yaml.UnmarshalStrict(file, &cfg); err != nil {
			log.Panicf("config file parse err: %v", err)
		}
	case *configData != "":
		file, err := base64.StdEncoding.DecodeString(*configData)
		if err != nil {
			log.Panicf("config data load err: %v", err)
		}
		if err := yaml.UnmarshalStrict(file, &cfg); err != nil {
			log.Panicf("config data parse err: %v", err)
		}
	default:
		log.Info("no config file or config data given, running with defaults")
	}
	log.Infof("%+v", cfg)

	src := config.NewFileSource(*configPath, cfg.Control)
	solver := mpcsolver.New()

	// The shared-memory/socket transport that feeds frames in and plans
	// out is an external collaborator (spec.md §1). processBus (processbus.go) is
	// a minimal stdin/stdout-free stand-in that real deployments replace
	// with their own task.Bus; it exists so this binary runs standalone.
	bus := newProcessBus()

	ctx := task.NewContext(*job, bus, solver, src)
	ctx.Run()
}
