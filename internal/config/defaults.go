package config

var defaults = map[string]any{
	"api_base_url":    "",
	"request_timeout": uint(10),
	"log_level":       "info",

	"location":    "Main Gate",
	"listen_addr": ":8471",

	"alert.host":     "",
	"alert.port":     25,
	"alert.username": "",
	"alert.password": "",
	"alert.from":     "noreply@example.edu",
	"alert.to":       []string{},

	"storage.type":        "sqlite",
	"storage.sqlite.path": "./data/gatepass.db",
}

func Defaults() map[string]any {
	values := make(map[string]any)
	for k, v := range defaults {
		values[k] = v
	}
	return values
}
