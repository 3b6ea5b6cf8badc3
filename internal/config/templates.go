package config

import (
	"fmt"
	"os"
)

func Template() string {
	return defaultTemplate
}

func WriteTemplate(path string, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists: %s", path)
		}
	}
	return os.WriteFile(path, []byte(defaultTemplate), 0o600)
}

const defaultTemplate = `[codec]
# nesting limit for lists and dicts; 0 disables the limit
max_depth = 512
# reject | last_wins
duplicate_keys = "reject"
# reject leading zeros, -0 and unsorted dict keys
strict = false

[frame]
max_payload_bytes = 8388608
max_decoded_bytes = 33554432
compress = false

[log]
level = "info"
`
