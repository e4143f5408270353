package database

// Config holds configuration for the database connection.
type Config struct {
	// Driver selects the database backend (sqlite or mysql).
	Driver string `mapstructure:"driver" default:"sqlite"`
	// Path is the database file location when the sqlite driver is used.
	Path string `mapstructure:"path" default:"result/runs.db"`
	// Host is the database server host when the mysql driver is used.
	Host string `mapstructure:"host" default:"localhost"`
	// Port is the database server port.
	Port int `mapstructure:"port" default:"3306"`
	// User is the database user name.
	User string `mapstructure:"user" default:"root"`
	// Password is the database user password.
	Password string `mapstructure:"password" default:""`
	// Name is the database schema name.
	Name string `mapstructure:"name" default:"freight"`
}
