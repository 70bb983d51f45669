// Package config provides configuration structures and loaders for pressgen.
//
// Configuration is assembled once per process from, in increasing priority:
// built-in defaults, a .env file, environment variables, the YAML file
// (.pressgen.yaml) and command line flags. The resulting Config is passed to
// constructors; nothing reads the environment after startup.
package config
