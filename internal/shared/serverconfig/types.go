package serverconfig

type Config struct {
	MySQL      MySQLConfig      `yaml:"mysql" mapstructure:"mysql"`
	MongoDB    MongoDBConfig    `yaml:"mongodb" mapstructure:"mongodb"`
	GateServer GateServerConfig `yaml:"gateserver" mapstructure:"gateserver"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
	Game       GameConfig       `yaml:"game" mapstructure:"game"`
	JWTSecret  string           `yaml:"jwt_secret" mapstructure:"jwt_secret"`
}

type MySQLConfig struct {
	Host     string `yaml:"host" mapstructure:"host"`
	Port     int    `yaml:"port" mapstructure:"port"`
	User     string `yaml:"user" mapstructure:"user"`
	Password string `yaml:"password" mapstructure:"password"`
	DBName   string `yaml:"dbname" mapstructure:"dbname"`
	MaxIdle  int    `yaml:"max_idle" mapstructure:"max_idle"`
	MaxConn  int    `yaml:"max_conn" mapstructure:"max_conn"`
}

type MongoDBConfig struct {
	URI             string `yaml:"uri" mapstructure:"uri"`
	Database        string `yaml:"database" mapstructure:"database"`
	ConnectTimeoutS int    `yaml:"connect_timeout_s" mapstructure:"connect_timeout_s"`
}

type GateServerConfig struct {
	Host string `yaml:"host" mapstructure:"host"`
	Port int    `yaml:"port" mapstructure:"port"`
}

type LogConfig struct {
	FileDir    string `yaml:"file_dir" mapstructure:"file_dir"`
	MaxSize    int    `yaml:"max_size" mapstructure:"max_size"` // MB
	MaxBackups int    `yaml:"max_backups" mapstructure:"max_backups"`
	MaxAge     int    `yaml:"max_age" mapstructure:"max_age"` // days
	Compress   bool   `yaml:"compress" mapstructure:"compress"`
	Level      string `yaml:"level" mapstructure:"level"` // debug/info/warn/error...
	Dev        bool   `yaml:"dev" mapstructure:"dev"`
}

// GameConfig 是模拟核心的可调参数。
// 零值会在 Normalize 里回填成默认值，保证裸配置也能启动。
type GameConfig struct {
	StartingBalance    int     `yaml:"starting_balance" mapstructure:"starting_balance"`
	ProductionRate     float64 `yaml:"production_rate" mapstructure:"production_rate"`
	ProductionTickS    int     `yaml:"production_tick_s" mapstructure:"production_tick_s"`
	PendingTTLS        int     `yaml:"pending_ttl_s" mapstructure:"pending_ttl_s"`
	LinkCapacity       int     `yaml:"link_capacity" mapstructure:"link_capacity"`
	LinkUpgradeStep    int     `yaml:"link_upgrade_step" mapstructure:"link_upgrade_step"`
	LinkUpgradeCost    int     `yaml:"link_upgrade_cost" mapstructure:"link_upgrade_cost"`
	FlowTickS          int     `yaml:"flow_tick_s" mapstructure:"flow_tick_s"`
	DecayIntervalS     int     `yaml:"decay_interval_s" mapstructure:"decay_interval_s"`
	DecayRate          float64 `yaml:"decay_rate" mapstructure:"decay_rate"`
	TollRate           float64 `yaml:"toll_rate" mapstructure:"toll_rate"`
	PriceHistoryLimit  int     `yaml:"price_history_limit" mapstructure:"price_history_limit"`
	EntityAskTimeoutMS int     `yaml:"entity_ask_timeout_ms" mapstructure:"entity_ask_timeout_ms"`
}

func (g *GameConfig) Normalize() {
	if g.StartingBalance <= 0 {
		g.StartingBalance = 100
	}
	if g.ProductionRate <= 0 {
		g.ProductionRate = 1
	}
	if g.ProductionTickS <= 0 {
		g.ProductionTickS = 10
	}
	if g.PendingTTLS <= 0 {
		g.PendingTTLS = 600
	}
	if g.LinkCapacity <= 0 {
		g.LinkCapacity = 10
	}
	if g.LinkUpgradeStep <= 0 {
		g.LinkUpgradeStep = 10
	}
	if g.LinkUpgradeCost <= 0 {
		g.LinkUpgradeCost = 50
	}
	if g.FlowTickS <= 0 {
		g.FlowTickS = 60
	}
	if g.DecayIntervalS <= 0 {
		g.DecayIntervalS = 300
	}
	if g.DecayRate <= 0 || g.DecayRate >= 1 {
		g.DecayRate = 0.1
	}
	if g.TollRate <= 0 || g.TollRate >= 1 {
		g.TollRate = 0.05
	}
	if g.PriceHistoryLimit <= 0 {
		g.PriceHistoryLimit = 256
	}
	if g.EntityAskTimeoutMS <= 0 {
		g.EntityAskTimeoutMS = 3000
	}
}
