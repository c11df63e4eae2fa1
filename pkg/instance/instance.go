package instance

import "os"

// GetID returns OMS_INSTANCE_ID, then the hostname, then "local".
func GetID() string {
	if id := os.Getenv("OMS_INSTANCE_ID"); id != "" {
		return id
	}
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return "local"
}
