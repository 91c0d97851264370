// Package config holds run configuration for manualmirror.
//
// Configuration flows in one direction: CLI flags and environment variables
// populate a Config, Validate is called once before any network activity,
// and the validated struct is passed down via dependency injection. No
// package reads configuration from ambient global state.
//
// The seed list (starting URLs plus their manual-category labels) is loaded
// from a YAML file; see LoadSeeds.
package config
