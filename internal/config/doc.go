// Package config provides configuration management for hostsgen.
//
// The package uses a Provider interface to abstract configuration loading,
// with the primary implementation being filesystem-based configuration via
// YAML files.
//
// # Configuration Structure
//
// Configuration is structured as follows:
//
//	resolve:
//	  dns_timeout: 3s          # Per-lookup timeout (0 = auto by batch size)
//	  workers: 50              # Worker pool size (0 = auto by batch size)
//	  similar_fallback: true   # Enable similar-domain / TLD-variant fallbacks
//	  alternate_dns: true      # Enable public recursive resolver fallback
//	output:
//	  input: general.txt       # Domain list to resolve
//	  path: hosts              # Where the generated hosts file is written
//
// # Basic Usage
//
// Load configuration using the default path (~/.hostsgen/config.yaml):
//
//	cfg, err := config.New().Load()
//	if err != nil {
//		log.Fatal(err)
//	}
//
// # Validation and Clamping
//
// Load rejects configurations it cannot repair (negative timeouts, empty
// output path) and clamps the rest: worker counts to 1–200 and timeouts to
// 1–10 seconds. Zero workers or timeout means the engine picks a value from
// the batch size at run time.
package config
