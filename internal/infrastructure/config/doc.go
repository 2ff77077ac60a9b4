// Package config handles loading and validating the device registry configuration.
//
// This package manages:
//   - Loading configuration from YAML files
//   - Loading a local .env file into the process environment
//   - Overriding with DEVREG_* environment variables
//   - Validation of required fields
//
// Security Considerations:
//   - Sensitive values (DSN passwords, broker credentials, tokens) should be
//     set via environment variables, not committed config files
//
// Usage:
//
//	if err := config.LoadDotEnv(".env"); err != nil {
//	    return err
//	}
//	cfg, err := config.Load("configs/config.yaml")
//	if err != nil {
//	    return err
//	}
//	fmt.Println(cfg.API.Address())
package config
