// Package config loads stowaway settings and deployment descriptors.
//
// Sources are layered, later ones overriding earlier ones:
//
//  1. built-in defaults (embedded/defaults.toml)
//  2. the user config file, $XDG_CONFIG_HOME/stowaway/config.toml
//  3. the deployment descriptor, TOML or YAML by extension
//  4. STOWAWAY_* environment variables (STOWAWAY_STORE_BACKEND -> store.backend)
//
// The merged result is decoded into Config and Descriptor and validated.
package config
