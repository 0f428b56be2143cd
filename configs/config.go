package configs

import (
	rlog "github.com/lestrrat-go/file-rotatelogs"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"os"
	"sync"
	"time"
)

var (
	globalConfig GlobalConfig
	once         sync.Once
)

type GlobalConfig struct {
	AppConfig        AppConf        `yaml:"app" mapstructure:"app"`
	LogConfig        LogConf        `yaml:"log" mapstructure:"log"`
	DbConfig         DbConf         `yaml:"db" mapstructure:"db"`
	BrainConfig      BrainConf      `yaml:"brain" mapstructure:"brain"`
	CredentialConfig CredentialConf `yaml:"credential" mapstructure:"credential"`
	LLMConfig        LLMConf        `yaml:"llm" mapstructure:"llm"`
	ResourceConfig   ResourceConf   `yaml:"resource" mapstructure:"resource"`
	SubmitConfig     SubmitConf     `yaml:"submit" mapstructure:"submit"`
}

type AppConf struct {
	AppName string `yaml:"app_name" mapstructure:"app_name"`
	Version string `yaml:"version" mapstructure:"version"`
	Port    int    `yaml:"port" mapstructure:"port"`
	RunMod  string `yaml:"run_mod" mapstructure:"run_mod"`
	Token   string `yaml:"token" mapstructure:"token"`
}

type LogConf struct {
	LogPattern string `yaml:"log_pattern" mapstructure:"log_pattern"`
	LogPath    string `yaml:"log_path" mapstructure:"log_path"`
	SaveDays   uint   `yaml:"save_days" mapstructure:"save_days"`
	Level      string `yaml:"level" mapstructure:"level"`
}

type DbConf struct {
	Enabled     bool   `yaml:"enabled" mapstructure:"enabled"`
	Host        string `yaml:"host" mapstructure:"host"`
	Port        int    `yaml:"port" mapstructure:"port"`
	User        string `yaml:"user" mapstructure:"user"`
	Password    string `yaml:"password" mapstructure:"password"`
	Dbname      string `yaml:"dbname" mapstructure:"db_name"`
	MaxIdleConn int    `yaml:"max_idle_conn" mapstructure:"max_idle_conn"`
	MaxOpenConn int    `yaml:"max_open_conn" mapstructure:"max_open_conn"`
	MaxIdleTime int    `yaml:"max_idle_time" mapstructure:"max_idle_time"`
}

type BrainConf struct {
	BaseUrl       string `yaml:"base_url" mapstructure:"base_url"`
	TimeoutSecond int64  `yaml:"timeout_second" mapstructure:"timeout_second"`
}

type CredentialConf struct {
	UserConfigFile string `yaml:"user_config_file" mapstructure:"user_config_file"`
}

type LLMConf struct {
	Provider      string `yaml:"provider" mapstructure:"provider"`
	Model         string `yaml:"model" mapstructure:"model"`
	ApiKey        string `yaml:"api_key" mapstructure:"api_key"`
	BaseUrl       string `yaml:"base_url" mapstructure:"base_url"`
	TimeoutSecond int64  `yaml:"timeout_second" mapstructure:"timeout_second"`
}

type ResourceConf struct {
	InstrumentType string `yaml:"instrument_type" mapstructure:"instrument_type"`
	Region         string `yaml:"region" mapstructure:"region"`
	Delay          int64  `yaml:"delay" mapstructure:"delay"`
	Universe       string `yaml:"universe" mapstructure:"universe"`
	OperatorsFile  string `yaml:"operators_file" mapstructure:"operators_file"`
	CacheTTLSecond int64  `yaml:"cache_ttl_second" mapstructure:"cache_ttl_second"`
}

type SubmitConf struct {
	PageDelayMs        int64 `yaml:"page_delay_ms" mapstructure:"page_delay_ms"`
	CheckDelayMs       int64 `yaml:"check_delay_ms" mapstructure:"check_delay_ms"`
	PauseSecond        int64 `yaml:"pause_second" mapstructure:"pause_second"`
	CooldownSecond     int64 `yaml:"cooldown_second" mapstructure:"cooldown_second"`
	MaxAttempts        int64 `yaml:"max_attempts" mapstructure:"max_attempts"`
	MaxRelogin         int64 `yaml:"max_relogin" mapstructure:"max_relogin"`
	ListLimit          int64 `yaml:"list_limit" mapstructure:"list_limit"`
	PollIntervalSecond int64 `yaml:"poll_interval_second" mapstructure:"poll_interval_second"`
	PollMaxAttempts    int64 `yaml:"poll_max_attempts" mapstructure:"poll_max_attempts"`
	WorkerNum          int64 `yaml:"worker_num" mapstructure:"worker_num"`
}

func GetGlobalConfig() *GlobalConfig {
	once.Do(readConf)
	return &globalConfig
}

func setDefaults() {
	viper.SetDefault("app.app_name", "alpha_miner")
	viper.SetDefault("app.version", "0.0.1")
	viper.SetDefault("app.port", 8787)
	viper.SetDefault("app.run_mod", "release")
	viper.SetDefault("app.token", "")

	viper.SetDefault("log.log_pattern", "stdout")
	viper.SetDefault("log.log_path", "./log/alpha_miner.log")
	viper.SetDefault("log.save_days", 7)
	viper.SetDefault("log.level", "info")

	viper.SetDefault("db.enabled", false)
	viper.SetDefault("db.host", "127.0.0.1")
	viper.SetDefault("db.port", 3306)
	viper.SetDefault("db.user", "root")
	viper.SetDefault("db.db_name", "alpha_miner")
	viper.SetDefault("db.max_idle_conn", 10)
	viper.SetDefault("db.max_open_conn", 100)
	viper.SetDefault("db.max_idle_time", 3600)

	viper.SetDefault("brain.base_url", "https://api.worldquantbrain.com")
	viper.SetDefault("brain.timeout_second", 30)

	viper.SetDefault("credential.user_config_file", "./user_config.json")

	viper.SetDefault("llm.provider", "ollama")
	viper.SetDefault("llm.model", "qwen2.5:7b")
	viper.SetDefault("llm.base_url", "http://localhost:11434")
	viper.SetDefault("llm.timeout_second", 180)

	viper.SetDefault("resource.instrument_type", "EQUITY")
	viper.SetDefault("resource.region", "USA")
	viper.SetDefault("resource.delay", 1)
	viper.SetDefault("resource.universe", "TOP3000")
	viper.SetDefault("resource.operators_file", "./operators.csv")
	viper.SetDefault("resource.cache_ttl_second", 300)

	viper.SetDefault("submit.page_delay_ms", 500)
	viper.SetDefault("submit.check_delay_ms", 300)
	viper.SetDefault("submit.pause_second", 1)
	viper.SetDefault("submit.cooldown_second", 120)
	viper.SetDefault("submit.max_attempts", 0)
	viper.SetDefault("submit.max_relogin", 3)
	viper.SetDefault("submit.list_limit", 1000)
	viper.SetDefault("submit.poll_interval_second", 10)
	viper.SetDefault("submit.poll_max_attempts", 30)
	viper.SetDefault("submit.worker_num", 5)
}

func readConf() {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	//从程序工作目录开始
	viper.AddConfigPath("./configs")
	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		log.Warnf("read config failed, using defaults: %s", err.Error())
	}
	if err := viper.Unmarshal(&globalConfig); err != nil {
		panic("unmarshal config error " + err.Error())
	}

	// LLM key 也可以放环境变量
	if globalConfig.LLMConfig.ApiKey == "" {
		globalConfig.LLMConfig.ApiKey = os.Getenv("LLM_API_KEY")
	}
}

func InitGlobalConfig() {
	config := GetGlobalConfig()
	level, err := log.ParseLevel(config.LogConfig.Level)
	if err != nil {
		panic("parse log level error " + err.Error())
	}
	log.SetFormatter(&logFormatter{
		TextFormatter: log.TextFormatter{
			DisableColors:   true,
			TimestampFormat: "2006-01-02 15:04:05",
			FullTimestamp:   true,
		},
	})

	log.SetReportCaller(true)
	log.SetLevel(level)
	switch globalConfig.LogConfig.LogPattern {
	case "stdout":
		log.SetOutput(os.Stdout)
	case "stderr":
		log.SetOutput(os.Stderr)
	case "file":
		logger, err := rlog.New(
			config.LogConfig.LogPath+".%Y%m%d",
			rlog.WithRotationTime(time.Hour*24),
			rlog.WithRotationCount(config.LogConfig.SaveDays))
		if err != nil {
			panic("log conf err" + err.Error())
		}
		log.SetOutput(logger)
	default:
		panic("log init err")
	}

}
