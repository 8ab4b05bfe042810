// Package config fills configuration structs from environment variables.
//
// Structs declare their variables with caarlos0/env tags. A .env file in the
// working directory, if present, is loaded once before the first parse;
// variables already set in the process environment win over the file.
//
//	var cfg jwt.Config
//	if err := config.Load(&cfg); err != nil {
//		return err
//	}
package config
