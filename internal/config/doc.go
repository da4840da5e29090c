// Package config holds all configuration for scidigest.
//
// Configuration is assembled from three sources, in increasing priority:
// documented defaults, an optional YAML file (.scidigest.yaml in the current
// or home directory), and CLI flags. The OpenAI API key may additionally come
// from the OPENAI_API_KEY environment variable, optionally loaded from a
// .env file.
//
// The Config struct is passed through the application via dependency
// injection rather than global state.
package config
