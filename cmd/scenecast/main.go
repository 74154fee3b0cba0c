package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/xiaonanln/goTimer"

	"github.com/scenecast/scenecast/engine/config"
	"github.com/scenecast/scenecast/engine/scene"
	"github.com/scenecast/scenecast/engine/sclog"
	"github.com/scenecast/scenecast/engine/scutils"
	"github.com/scenecast/scenecast/engine/session"
)

var (
	configFile    = ""
	speedExponent = 0
	loop          = false
	recordFile    = ""
	sigChan       = make(chan os.Signal, 1)
)

func parseArgs() {
	flag.StringVar(&configFile, "configfile", "", "set config file path")
	flag.IntVar(&speedExponent, "speed", 0, "playback speed as a power-of-two exponent")
	flag.BoolVar(&loop, "loop", false, "restart playback when the stream ends")
	flag.StringVar(&recordFile, "record", "", "re-record the observed stream to this file")
	flag.Parse()
}

func setupLog(playbackConfig *config.PlaybackConfig) {
	sclog.Infof("Set log level to %s", playbackConfig.LogLevel)
	sclog.SetLevel(sclog.StringToLevel(playbackConfig.LogLevel))
	if err := sclog.SetOutputFile(playbackConfig.LogFile, playbackConfig.LogStderr); err != nil {
		panic(err)
	}
	sclog.SetSource("player")
}

func setupSignals(sess *session.ReplaySession) {
	signal.Notify(sigChan, os.Interrupt)
	go func() {
		<-sigChan
		sclog.Infof("interrupted, ending playback")
		sess.End()
	}()
}

func recordFormat(name string) byte {
	switch name {
	case "none":
		return session.CompressFormatNone
	case "flate":
		return session.CompressFormatFlate
	default:
		return session.CompressFormatSnappy
	}
}

func main() {
	parseArgs()

	if flag.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] <replay-file>\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(1)
	}
	replayFile := flag.Arg(0)

	if configFile != "" {
		config.SetConfigFile(configFile)
	}
	playbackConfig := config.GetPlayback()
	setupLog(playbackConfig)
	fmt.Fprintf(os.Stderr, "Read playback config: \n%s\n", config.DumpPretty(playbackConfig))

	for _, nt := range config.GetScene().NodeTypes {
		scene.RegisterNodeType(nt)
	}

	sess, err := session.NewReplaySession(replayFile, nil)
	if err != nil {
		sclog.Fatalf("cannot open replay: %+v", err)
	}
	if speedExponent == 0 {
		speedExponent = playbackConfig.SpeedExponent
	}
	sess.SetSpeedExponent(speedExponent)
	sess.SetLoop(loop || playbackConfig.Loop)
	setupSignals(sess)

	var recorder *session.Recorder
	if recordFile != "" {
		recorder, err = session.NewRecorder(recordFile, recordFormat(config.GetRecord().CompressFormat))
		if err != nil {
			sclog.Fatalf("cannot open recorder: %+v", err)
		}
		if err := sess.AttachObserver(recorder); err != nil {
			sclog.Fatalf("cannot attach recorder: %+v", err)
		}
	}

	timer.AddTimer(time.Second*5, func() {
		sclog.Infof("playback at base time %dms, %d observers", sess.BaseTime(), sess.ObserverCount())
	})

	tickInterval := time.Millisecond * time.Duration(playbackConfig.TickIntervalMS)
	ticker := time.Tick(tickInterval)
	scutils.RepeatUntilPanicless(func() {
		for range ticker {
			timer.Tick()
			sess.Update(int64(playbackConfig.TickIntervalMS))
			if sess.Ended() {
				return
			}
		}
	})

	if recorder != nil {
		if err := recorder.Close(); err != nil {
			sclog.Errorf("recorder close: %v", err)
		}
	}
	sclog.Infof("playback finished at base time %dms", sess.BaseTime())
}
