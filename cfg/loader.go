// Package cfg holds the application configuration and the loaders that
// produce it. A Loader is chosen once at process start; everything else
// receives the resulting *Config as an explicit dependency.
package cfg

import (
	"sync"
)

var (
	loader     Loader
	loaderOnce sync.Once
)

type Loader interface {
	Load() (*Config, error)
}

func NewLoader(l Loader) (Loader, error) {
	loaderOnce.Do(func() {
		loader = l
	})
	return loader, nil
}
