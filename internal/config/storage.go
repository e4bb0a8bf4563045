package config

type Storage struct {
	SQLite *SQLLiteStorage `mapstructure:"sqlite,omitempty"`
}

type SQLLiteStorage struct {
	Path string `mapstructure:"path,omitempty"`
}
