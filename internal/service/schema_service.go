package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"pricedesk/internal/domain"
	"pricedesk/pkg/log"
)

// SchemaService owns the item schema and refreshes the resolver from its source
type SchemaService struct {
	source   domain.SchemaSource
	resolver *ItemResolver
}

// NewSchemaService creates a new SchemaService
func NewSchemaService(source domain.SchemaSource, resolver *ItemResolver) *SchemaService {
	return &SchemaService{
		source:   source,
		resolver: resolver,
	}
}

// Reload fetches the schema and swaps it into the resolver. The previous
// schema stays in place when the fetch fails or returns nothing.
func (s *SchemaService) Reload(ctx context.Context) (int, error) {
	start := time.Now()

	items, err := s.source.FetchItems(ctx)
	if err != nil {
		return s.resolver.Len(), fmt.Errorf("failed to reload item schema: %w", err)
	}
	if len(items) == 0 {
		return s.resolver.Len(), fmt.Errorf("item schema source returned no items")
	}

	s.resolver.Reload(items)

	log.Info("item schema reloaded",
		zap.Int("items", len(items)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return len(items), nil
}

// Resolver returns the resolver fed by this service
func (s *SchemaService) Resolver() *ItemResolver {
	return s.resolver
}
