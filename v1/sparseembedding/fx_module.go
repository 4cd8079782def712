package sparseembedding

import "go.uber.org/fx"

// FXModule provides *Config from the environment and *Embedder.
var FXModule = fx.Module(
	"sparseembedding",

	fx.Provide(
		NewConfig,
		func(cfg *Config) (*Embedder, error) { return NewEmbedder(cfg) },
	),
)
