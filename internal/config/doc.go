// Package config handles configuration loading for schoolsite.
//
// # Overview
//
// Configuration is loaded from YAML or TOML files with environment variable
// expansion. Missing fields keep the values from Default().
//
// # Configuration File
//
// Default locations (in order):
//
//  1. Path from SCHOOLSITE_CONFIG environment variable
//  2. $XDG_CONFIG_HOME/schoolsite/config.yaml
//  3. ~/.config/schoolsite/config.yaml
//
// A path ending in .toml is decoded as TOML.
//
// # Environment Variable Expansion
//
//	admin:
//	  token: "${SCHOOLSITE_ADMIN_TOKEN}"
//
// # Configuration Sections
//
//	server:
//	  http_addr: "127.0.0.1:8080"
//	  database_path: "schoolsite-server.db"
//	  cors_origin: "https://school.example"   # optional
//
//	local:
//	  path: "schoolsite.db"      # editor's durable slot
//	  slot_key: "siteData"
//	  max_bytes: 5242880         # 0 disables the quota
//
//	remote:
//	  base_url: "https://school.example"   # empty means offline
//	  data_path: "/api/site-data"
//	  upload_path: "/api/upload"
//	  token: "${SCHOOLSITE_ADMIN_TOKEN}"
//	  timeout: "15s"
//
//	admin:
//	  username: "admin"
//	  password_hash: "$2a$10$..."   # bcrypt, see `schoolsite hash-password`
//	  token: "${SCHOOLSITE_ADMIN_TOKEN}"
//	  jwt_secret: "${SCHOOLSITE_JWT_SECRET}"
//	  token_ttl: "12h"
//
//	uploads:
//	  dir: "uploads"
//	  public_url: "https://school.example/uploads"
//
//	logging:
//	  level: "info"   # debug, info, warn, error
//	  format: "text"  # text, json
package config
