package config

import "path/filepath"

// Sanitize returns a copy of the config that is safe to log.
//
// The TLS key location is reduced to its base name. Snapshot roots are
// copied so the result shares no maps with cfg.
func Sanitize(cfg *ServerConfig) *ServerConfig {
	sanitized := *cfg

	if sanitized.Server.HTTP.TLSKeyFile != "" {
		sanitized.Server.HTTP.TLSKeyFile = maskPath(sanitized.Server.HTTP.TLSKeyFile)
	}

	sanitized.SnapshotRoots = make(map[string]SnapshotRoot, len(cfg.SnapshotRoots))
	for name, root := range cfg.SnapshotRoots {
		sanitized.SnapshotRoots[name] = root
	}
	sanitized.Server.HTTP.CORSAllowedOrigins = append([]string(nil), cfg.Server.HTTP.CORSAllowedOrigins...)

	return &sanitized
}

// maskPath hides the directory part of a path.
func maskPath(p string) string {
	return "****/" + filepath.Base(p)
}
