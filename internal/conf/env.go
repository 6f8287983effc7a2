package conf

import (
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. TKPCAT_DATABASE_PASSWORD.
const EnvPrefix = "TKPCAT"

// envKeys are the keys that may be overridden from the environment.
var envKeys = []string{
	"database.type",
	"database.path",
	"database.host",
	"database.name",
	"database.user",
	"database.password",
	"database.port",
	"source_association.deruiter_radius",
	"logging.default_level",
	"metrics.enabled",
	"metrics.listen",
}

func bindEnvVars(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for _, key := range envKeys {
		// BindEnv only fails without a key argument
		_ = v.BindEnv(key)
	}
}
