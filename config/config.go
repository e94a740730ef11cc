package config

import (
	"errors"

	"github.com/spf13/viper"
)

type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	World       WorldConfig       `mapstructure:"world"`
	Persistence PersistenceConfig `mapstructure:"persistence"`
	Log         LogConfig         `mapstructure:"log"`
}

type ServerConfig struct {
	HTTPAddress    string `mapstructure:"http_address"`
	RPCAddress     string `mapstructure:"rpc_address"`
	MetricsAddress string `mapstructure:"metrics_address"`
}

// WorldConfig holds the authoritative simulation tunables. Rooms copy these
// at creation time; changing them does not affect rooms already running.
type WorldConfig struct {
	Width              float64 `mapstructure:"width"`
	Height             float64 `mapstructure:"height"`
	CellSize           float64 `mapstructure:"cell_size"`
	TickRate           int     `mapstructure:"tick_rate"`
	MoveThrottleMs     int     `mapstructure:"move_throttle_ms"`
	SnapshotIntervalMs int     `mapstructure:"snapshot_interval_ms"`
	MaxSpeed           float64 `mapstructure:"max_speed"`
	SpeedBuffer        float64 `mapstructure:"speed_buffer"`
	SpeedCheck         bool    `mapstructure:"speed_check"`
	PickupRadius       float64 `mapstructure:"pickup_radius"`
	DefaultRoom        string  `mapstructure:"default_room"`
}

type PersistenceConfig struct {
	Backend        string         `mapstructure:"backend"` // file | postgres | gorm
	SaveDebounceMs int            `mapstructure:"save_debounce_ms"`
	File           FileConfig     `mapstructure:"file"`
	Postgres       PostgresConfig `mapstructure:"postgres"`
}

type FileConfig struct {
	Path string `mapstructure:"path"`
}

type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
}

type LogConfig struct {
	File string `mapstructure:"file"` // empty: log to stderr
}

func setDefaults() {
	viper.SetDefault("server.http_address", ":8080")
	viper.SetDefault("server.rpc_address", ":8081")
	viper.SetDefault("server.metrics_address", ":9100")

	viper.SetDefault("world.width", 5000.0)
	viper.SetDefault("world.height", 5000.0)
	viper.SetDefault("world.cell_size", 200.0)
	viper.SetDefault("world.tick_rate", 15)
	viper.SetDefault("world.move_throttle_ms", 50)
	viper.SetDefault("world.snapshot_interval_ms", 3000)
	viper.SetDefault("world.max_speed", 20.0)
	viper.SetDefault("world.speed_buffer", 5.0)
	viper.SetDefault("world.speed_check", true)
	viper.SetDefault("world.pickup_radius", 50.0)
	viper.SetDefault("world.default_room", "poc_world")

	viper.SetDefault("persistence.backend", "file")
	viper.SetDefault("persistence.save_debounce_ms", 1500)
	viper.SetDefault("persistence.file.path", "data/world_state.json")
	viper.SetDefault("persistence.postgres.host", "localhost")
	viper.SetDefault("persistence.postgres.port", 5432)
	viper.SetDefault("persistence.postgres.user", "worldsync")
	viper.SetDefault("persistence.postgres.password", "")
	viper.SetDefault("persistence.postgres.dbname", "worldsync")

	viper.SetDefault("log.file", "")
}

// LoadConfig reads config.yaml from path if present; defaults and environment
// variables cover everything else, so a missing file is not an error.
func LoadConfig(path string) (config *Config, err error) {
	setDefaults()

	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	viper.AutomaticEnv()

	if err = viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	err = viper.Unmarshal(&config)
	return
}
