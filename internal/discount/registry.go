package discount

import (
	"context"
	"fmt"
	"sync"

	"kart-pay/internal/model"

	"github.com/rs/zerolog"
)

const (
	// MinCodeLength is the shortest discount code the store issues.
	MinCodeLength = 3
	// MaxCodeLength is the longest discount code the store issues.
	MaxCodeLength = 32
)

// registry implements Registry over one or more loaded code sets.
// Sets are read-only after initialisation so no locking is needed.
type registry struct {
	codeSets []CodeSet
	logger   zerolog.Logger
}

// RegistryConfig holds configuration for the discount registry.
type RegistryConfig struct {
	// FilePaths is the list of code listing paths to load.
	FilePaths []string
}

// DefaultRegistryConfig returns the default registry configuration.
func DefaultRegistryConfig() *RegistryConfig {
	return &RegistryConfig{
		FilePaths: []string{
			"data/discounts/codes.gz",
		},
	}
}

// NewRegistry creates a discount registry, loading every code listing
// concurrently at initialisation time.
func NewRegistry(ctx context.Context, config *RegistryConfig, loader Loader, logger zerolog.Logger) (Registry, error) {
	if config == nil {
		config = DefaultRegistryConfig()
	}

	logger = logger.With().Str("component", "discount-registry").Logger()

	logger.Info().
		Int("file_count", len(config.FilePaths)).
		Msg("initialising discount registry")

	r := &registry{
		codeSets: make([]CodeSet, 0, len(config.FilePaths)),
		logger:   logger,
	}

	type loadResult struct {
		index int
		set   CodeSet
		err   error
	}

	resultChan := make(chan loadResult, len(config.FilePaths))
	var wg sync.WaitGroup

	for i, path := range config.FilePaths {
		wg.Add(1)
		go func(index int, path string) {
			defer wg.Done()

			set, err := loader.Load(ctx, path)
			resultChan <- loadResult{index: index, set: set, err: err}
		}(i, path)
	}

	wg.Wait()
	close(resultChan)

	results := make([]loadResult, len(config.FilePaths))
	for result := range resultChan {
		results[result.index] = result
	}

	for i, result := range results {
		if result.err != nil {
			logger.Error().
				Err(result.err).
				Str("file", config.FilePaths[i]).
				Msg("failed to load discount code file")
			return nil, fmt.Errorf("failed to load discount code file %s: %w", config.FilePaths[i], result.err)
		}
		r.codeSets = append(r.codeSets, result.set)
		logger.Info().
			Str("file", config.FilePaths[i]).
			Int("size", result.set.Size()).
			Msg("discount code file loaded")
	}

	totalCodes := 0
	for _, set := range r.codeSets {
		totalCodes += set.Size()
	}

	logger.Info().
		Int("total_codes", totalCodes).
		Msg("discount registry initialised")

	return r, nil
}

// Validate checks that a discount code has a plausible length and appears
// in at least one loaded code set.
func (r *registry) Validate(ctx context.Context, code string) error {
	if len(code) < MinCodeLength || len(code) > MaxCodeLength {
		r.logger.Debug().
			Str("code", code).
			Int("length", len(code)).
			Msg("discount code length out of range")
		return model.ErrDiscountLength
	}

	if !r.contains(ctx, code) {
		r.logger.Debug().
			Str("code", code).
			Msg("discount code not found in any code set")
		return model.ErrUnknownDiscount
	}

	return nil
}

// contains checks the code sets concurrently and stops at the first match.
func (r *registry) contains(ctx context.Context, code string) bool {
	if len(r.codeSets) == 1 {
		return r.codeSets[0].Contains(code)
	}

	resultChan := make(chan bool, len(r.codeSets))
	doneChan := make(chan struct{})
	defer close(doneChan)

	for _, set := range r.codeSets {
		go func(s CodeSet) {
			select {
			case <-doneChan:
				return
			case <-ctx.Done():
				return
			default:
			}

			select {
			case resultChan <- s.Contains(code):
			case <-doneChan:
			case <-ctx.Done():
			}
		}(set)
	}

	for checked := 0; checked < len(r.codeSets); checked++ {
		select {
		case found := <-resultChan:
			if found {
				return true
			}
		case <-ctx.Done():
			return false
		}
	}

	return false
}

// Close drops the loaded code sets so the memory can be reclaimed.
func (r *registry) Close() error {
	r.codeSets = nil

	r.logger.Info().Msg("discount registry closed")

	return nil
}
