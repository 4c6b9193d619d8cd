// Package config provides the configuration for textcore buffers.
//
// Configuration is layered, with higher layers overriding lower:
//
//  1. Built-in defaults (Default)
//  2. A TOML file (Load)
//  3. A dotenv file, then the process environment (ApplyEnv)
//
// A configuration file looks like:
//
//	[buffer]
//	line_ending = "crlf"
//	search_timeout = "2s"
//	encoding = "UTF-8"
//
//	[search]
//	tokenizer = "segment"
//	extra_word_characters = "-"
//	max_results = 20
//	scorer = "weighted"
//
//	[search.weights]
//	consecutive = 30
//
//	[logging]
//	level = "debug"
//
// Environment variables use the TEXTCORE_ prefix followed by the section
// and key in upper case, for example TEXTCORE_SEARCH_MAX_RESULTS=10.
package config
