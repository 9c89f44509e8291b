package env

import "os"

func IsDebug() bool {
	return GetEnv("PO2ZONE_DEBUG", "false") == "true"
}

func GetEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if len(value) == 0 {
		return defaultValue
	}
	return value
}
