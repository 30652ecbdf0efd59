// Package config loads interlinker configuration from a YAML file with
// environment variable overrides.
//
// Before overrides are applied the loader reads dotenv files: the file named
// by ENV_FILE when set, otherwise .env.local and then .env. Variables already
// present in the environment are never replaced.
//
// Fields opt in to overrides with an `env` struct tag:
//
//	type ServerConfig struct {
//	    Port int `yaml:"port" env:"SERVER_PORT"`
//	}
package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvConfigPath names the variable that overrides the config file path.
const EnvConfigPath = "INTERLINKER_CONFIG"

var durationType = reflect.TypeOf(time.Duration(0))

func loadDotenv() error {
	if name := os.Getenv("ENV_FILE"); name != "" {
		return loadDotenvFile(name)
	}
	for _, name := range []string{".env.local", ".env"} {
		if err := loadDotenvFile(name); err != nil {
			return err
		}
	}
	return nil
}

func loadDotenvFile(name string) error {
	if err := godotenv.Load(name); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("load env file %s: %w", name, err)
	}
	return nil
}

// decodeFile unmarshals the YAML file at path into out. An empty path leaves
// out untouched.
func decodeFile(path string, out any) error {
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file %s: %w", path, err)
	}
	if err = yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// LoadInto fills cfg from path, runs setDefaults and then applies
// environment overrides, so the environment always wins.
func LoadInto[T any](path string, cfg *T, setDefaults func(*T)) error {
	if err := loadDotenv(); err != nil {
		return fmt.Errorf("load environment files: %w", err)
	}
	if err := decodeFile(path, cfg); err != nil {
		return err
	}
	if setDefaults != nil {
		setDefaults(cfg)
	}
	overrideFromEnv(reflect.ValueOf(cfg).Elem())
	return nil
}

// ResolvePath returns the path from EnvConfigPath when set, else fallback.
func ResolvePath(fallback string) string {
	if p := os.Getenv(EnvConfigPath); p != "" {
		return p
	}
	return fallback
}

func overrideFromEnv(v reflect.Value) {
	if v.Kind() != reflect.Struct {
		return
	}
	t := v.Type()
	for i := range v.NumField() {
		field := v.Field(i)
		if !field.CanSet() {
			continue
		}
		switch {
		case field.Kind() == reflect.Struct:
			overrideFromEnv(field)
			continue
		case field.Kind() == reflect.Pointer && field.Type().Elem().Kind() == reflect.Struct:
			if field.IsNil() {
				field.Set(reflect.New(field.Type().Elem()))
			}
			overrideFromEnv(field.Elem())
			continue
		}

		name := t.Field(i).Tag.Get("env")
		if name == "" {
			continue
		}
		if val, ok := os.LookupEnv(name); ok && val != "" {
			assign(field, val)
		}
	}
}

// assign parses val into field. Unparseable values leave the field as is.
func assign(field reflect.Value, val string) {
	switch field.Kind() {
	case reflect.String:
		field.SetString(val)
	case reflect.Bool:
		field.SetBool(truthy(val))
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if field.Type() == durationType {
			if d, err := time.ParseDuration(val); err == nil {
				field.SetInt(int64(d))
			}
			return
		}
		if n, err := strconv.ParseInt(val, 10, 64); err == nil {
			field.SetInt(n)
		}
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if n, err := strconv.ParseUint(val, 10, 64); err == nil {
			field.SetUint(n)
		}
	case reflect.Float32, reflect.Float64:
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			field.SetFloat(f)
		}
	case reflect.Slice:
		if field.Type().Elem().Kind() != reflect.String {
			return
		}
		parts := strings.Split(val, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		field.Set(reflect.ValueOf(parts))
	}
}

func truthy(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}
