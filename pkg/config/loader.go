package config

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

var (
	defaultEnvLoaded sync.Once

	cacheMu sync.RWMutex
	cache   = make(map[string]any)
)

// Load populates the given configuration struct from environment variables.
//
// On first use it attempts to load the default .env file from the working
// directory; a missing file is not an error. Each configuration type is
// parsed once per process lifetime and served from cache afterwards, so
// services can call Load for the same type from independent packages without
// re-reading the environment.
//
// Example:
//
//	type StoreConfig struct {
//		Table  string `env:"DYNAMODB_TABLE,required"`
//		Region string `env:"AWS_REGION" envDefault:"us-east-1"`
//	}
//
//	var cfg StoreConfig
//	if err := config.Load(&cfg); err != nil {
//		// handle error
//	}
func Load[T any](v *T) error {
	defaultEnvLoaded.Do(func() {
		// The .env file is optional, ignore a load failure.
		_ = godotenv.Load()
	})
	if v == nil {
		return ErrNilPointer
	}

	key := typeName[T]()

	cacheMu.RLock()
	if cached, ok := cache[key]; ok {
		*v = cached.(T)
		cacheMu.RUnlock()
		return nil
	}
	cacheMu.RUnlock()

	if err := env.Parse(v); err != nil {
		return errors.Join(ErrParsingConfig, err)
	}

	cacheMu.Lock()
	// Store a copy so callers cannot mutate the cached value.
	cache[key] = *v
	cacheMu.Unlock()

	return nil
}

// MustLoad works like Load but panics on failure. Intended for configuration
// the process cannot start without.
func MustLoad[T any](v *T) {
	if err := Load(v); err != nil {
		panic(fmt.Sprintf("config: failed to load required configuration: %v", err))
	}
}

// Reset clears the configuration cache. Useful in tests that mutate the
// environment between loads.
func Reset() {
	cacheMu.Lock()
	cache = make(map[string]any)
	cacheMu.Unlock()
}

func typeName[T any]() string {
	var zero T
	t := reflect.TypeOf(zero)
	if t == nil {
		return fmt.Sprintf("%T", *new(T))
	}
	return t.String()
}
