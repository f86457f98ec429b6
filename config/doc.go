// Package config loads library configuration from a YAML file, a .env file
// and VIMEONET_* environment variables, and validates the result with
// struct tags.
//
//	var cfg vimeonet.Config
//	if err := config.Load("vimeonet", &cfg); err != nil {
//		return err
//	}
//
// VIMEONET_API_CLIENT_ID overrides api.client_id in the file.
package config
