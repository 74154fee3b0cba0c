package config

import (
	"strings"

	"encoding/json"

	"sync"

	"path"

	"time"

	"github.com/go-ini/ini"
	"github.com/scenecast/scenecast/engine/consts"
	"github.com/scenecast/scenecast/engine/sclog"
)

const (
	_DEFAULT_CONFIG_FILE      = "scenecast.ini"
	_DEFAULT_LOG_LEVEL        = "debug"
	_DEFAULT_TICK_INTERVAL_MS = int(consts.PLAYBACK_TICK_INTERVAL / time.Millisecond)
	_DEFAULT_COMPRESS_FORMAT  = "snappy"
)

var (
	configFilePath  = _DEFAULT_CONFIG_FILE
	sceneCastConfig *SceneCastConfig
	configLock      sync.Mutex
)

// PlaybackConfig defines fields of playback config
type PlaybackConfig struct {
	TickIntervalMS int
	SpeedExponent  int
	Loop           bool
	LogFile        string
	LogStderr      bool
	LogLevel       string
}

// RecordConfig defines fields of record config
type RecordConfig struct {
	CompressFormat string
}

// SceneConfig defines fields of scene config
type SceneConfig struct {
	NodeTypes []string
}

// SceneCastConfig defines the total SceneCast config file structure
type SceneCastConfig struct {
	Playback PlaybackConfig
	Record   RecordConfig
	Scene    SceneConfig
}

// SetConfigFile sets the config file path (scenecast.ini by default)
func SetConfigFile(f string) {
	configFilePath = f
}

// GetConfigDir returns the directory of scenecast.ini
func GetConfigDir() string {
	dir, _ := path.Split(configFilePath)
	return dir
}

// GetConfigFilePath returns the config file path
func GetConfigFilePath() string {
	return configFilePath
}

// Get returns the total SceneCast config
func Get() *SceneCastConfig {
	configLock.Lock()
	defer configLock.Unlock()
	if sceneCastConfig == nil {
		sceneCastConfig = readSceneCastConfig()
	}
	return sceneCastConfig
}

// Reload forces the whole config to be reloaded
func Reload() *SceneCastConfig {
	configLock.Lock()
	sceneCastConfig = nil
	configLock.Unlock()

	return Get()
}

// GetPlayback returns the playback config
func GetPlayback() *PlaybackConfig {
	return &Get().Playback
}

// GetRecord returns the record config
func GetRecord() *RecordConfig {
	return &Get().Record
}

// GetScene returns the scene config
func GetScene() *SceneConfig {
	return &Get().Scene
}

// DumpPretty format config to string in pretty format
func DumpPretty(cfg interface{}) string {
	s, err := json.MarshalIndent(cfg, "", "    ")
	if err != nil {
		return err.Error()
	}
	return string(s)
}

func readSceneCastConfig() *SceneCastConfig {
	config := SceneCastConfig{}
	setPlaybackDefaults(&config.Playback)
	setRecordDefaults(&config.Record)

	sclog.Infof("Using config file: %s", configFilePath)
	iniFile, err := ini.Load(configFilePath)
	if err != nil {
		// a missing config file just means all defaults
		sclog.Warnf("config file %s not loaded, using defaults: %v", configFilePath, err)
		return &config
	}

	for _, sec := range iniFile.Sections() {
		secName := strings.ToLower(sec.Name())
		if secName == "default" {
			continue
		} else if secName == "playback" {
			readPlaybackConfig(sec, &config.Playback)
		} else if secName == "record" {
			readRecordConfig(sec, &config.Record)
		} else if secName == "scene" {
			readSceneConfig(sec, &config.Scene)
		} else {
			sclog.Errorf("unknown section: %s", secName)
		}
	}

	return &config
}

func setPlaybackDefaults(pc *PlaybackConfig) {
	pc.TickIntervalMS = _DEFAULT_TICK_INTERVAL_MS
	pc.SpeedExponent = 0
	pc.Loop = false
	pc.LogFile = "scenecast.log"
	pc.LogStderr = true
	pc.LogLevel = _DEFAULT_LOG_LEVEL
}

func setRecordDefaults(rc *RecordConfig) {
	rc.CompressFormat = _DEFAULT_COMPRESS_FORMAT
}

func readPlaybackConfig(sec *ini.Section, pc *PlaybackConfig) {
	for _, key := range sec.Keys() {
		name := strings.ToLower(key.Name())
		if name == "tick_interval_ms" {
			pc.TickIntervalMS = key.MustInt(pc.TickIntervalMS)
		} else if name == "speed_exponent" {
			pc.SpeedExponent = key.MustInt(pc.SpeedExponent)
		} else if name == "loop" {
			pc.Loop = key.MustBool(pc.Loop)
		} else if name == "log_file" {
			pc.LogFile = key.MustString(pc.LogFile)
		} else if name == "log_stderr" {
			pc.LogStderr = key.MustBool(pc.LogStderr)
		} else if name == "log_level" {
			pc.LogLevel = key.MustString(pc.LogLevel)
		} else {
			sclog.Panicf("section %s has unknown key: %s", sec.Name(), key.Name())
		}
	}
	if pc.TickIntervalMS <= 0 {
		sclog.Panicf("section playback: tick_interval_ms must be positive")
	}
}

func readRecordConfig(sec *ini.Section, rc *RecordConfig) {
	for _, key := range sec.Keys() {
		name := strings.ToLower(key.Name())
		if name == "compress_format" {
			rc.CompressFormat = key.MustString(rc.CompressFormat)
		} else {
			sclog.Panicf("section %s has unknown key: %s", sec.Name(), key.Name())
		}
	}
	if rc.CompressFormat != "none" && rc.CompressFormat != "snappy" && rc.CompressFormat != "flate" {
		sclog.Panicf("section record: unknown compress_format %s", rc.CompressFormat)
	}
}

func readSceneConfig(sec *ini.Section, sc *SceneConfig) {
	for _, key := range sec.Keys() {
		name := strings.ToLower(key.Name())
		if name == "node_types" {
			for _, nt := range strings.Split(key.MustString(""), ",") {
				nt = strings.TrimSpace(nt)
				if nt != "" {
					sc.NodeTypes = append(sc.NodeTypes, nt)
				}
			}
		} else {
			sclog.Panicf("section %s has unknown key: %s", sec.Name(), key.Name())
		}
	}
}
