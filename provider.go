package phrasematch

import "github.com/mindset-labs/phrasematch/types"

// EmbeddingProvider defines the interface all embedding backends must
// satisfy. Alias of types.EmbeddingProvider so callers implementing a
// custom provider only need the root package.
type EmbeddingProvider = types.EmbeddingProvider
