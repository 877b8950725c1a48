package postgres

import "time"

// Config holds everything needed to open the connection pool.
type Config struct {
	Connection        Connection        `yaml:"connection"`
	ConnectionDetails ConnectionDetails `yaml:"connection_details"`
}

// Connection describes where the database lives.
type Connection struct {
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DbName   string `yaml:"db_name"`
	SSLMode  string `yaml:"ssl_mode"`
}

// ConnectionDetails tunes the database/sql pool. Zero values use the defaults
// applied in connectToPostgres.
type ConnectionDetails struct {
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`

	// HealthCheckInterval is how often MonitorConnection pings the server.
	HealthCheckInterval time.Duration `yaml:"health_check_interval"`
}

// DSN renders the keyword/value connection string understood by pgx.
func (c Config) DSN() string {
	sslMode := c.Connection.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return "host=" + c.Connection.Host +
		" port=" + c.Connection.Port +
		" user=" + c.Connection.User +
		" password=" + quoteDSNValue(c.Connection.Password) +
		" dbname=" + c.Connection.DbName +
		" sslmode=" + sslMode
}

// quoteDSNValue quotes values that are empty or contain spaces or quotes.
func quoteDSNValue(v string) string {
	needsQuote := v == ""
	escaped := make([]byte, 0, len(v)+2)
	for i := 0; i < len(v); i++ {
		switch v[i] {
		case ' ':
			needsQuote = true
		case '\'', '\\':
			needsQuote = true
			escaped = append(escaped, '\\')
		}
		escaped = append(escaped, v[i])
	}
	if !needsQuote {
		return v
	}
	return "'" + string(escaped) + "'"
}
