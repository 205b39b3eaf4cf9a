package container

import (
	"context"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	database "github.com/FACorreiaa/go-travel-planner/app/db"
	"github.com/FACorreiaa/go-travel-planner/config"
	"github.com/FACorreiaa/go-travel-planner/internal/api/aggregator"
	generativeAI "github.com/FACorreiaa/go-travel-planner/internal/api/generative_ai"
	"github.com/FACorreiaa/go-travel-planner/internal/api/itinerary"
	llmChat "github.com/FACorreiaa/go-travel-planner/internal/api/llm_chat"
	"github.com/FACorreiaa/go-travel-planner/internal/api/providers/expedia"
	"github.com/FACorreiaa/go-travel-planner/internal/api/providers/googleplaces"
)

// Container holds all application dependencies
type Container struct {
	Config           *config.Config
	Logger           *slog.Logger
	Pool             *pgxpool.Pool
	ItineraryHandler *itinerary.Handler
	ChatHandler      *llmChat.HandlerImpl
}

// NewContainer initializes and returns a new dependency container
func NewContainer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Container, error) {
	dbConfig, err := database.NewDatabaseConfig(cfg, logger)
	if err != nil {
		logger.Error("Failed to generate database config", slog.Any("error", err))
		return nil, err
	}

	pool, err := database.Init(dbConfig, logger)
	if err != nil {
		logger.Error("Failed to initialize database pool", slog.Any("error", err))
		return nil, err
	}

	generator, err := generativeAI.NewGenerator(ctx, cfg.Generation, logger)
	if err != nil {
		logger.Error("Failed to initialize generator", slog.Any("error", err))
		pool.Close()
		return nil, err
	}

	places, hotels := newProviders(cfg, logger)
	aggregatorService := aggregator.NewServiceImpl(places, hotels, cfg.Aggregator, logger)

	itineraryRepo := itinerary.NewRepository(pool, logger)
	itineraryService := itinerary.NewServiceImpl(aggregatorService, generator, itineraryRepo, logger)
	itineraryHandler := itinerary.NewHandler(itineraryService, itineraryRepo, logger)

	chatService := llmChat.NewServiceImpl(generator, itineraryRepo, logger)
	chatHandler := llmChat.NewHandlerImpl(chatService, logger)

	return &Container{
		Config:           cfg,
		Logger:           logger,
		Pool:             pool,
		ItineraryHandler: itineraryHandler,
		ChatHandler:      chatHandler,
	}, nil
}

// newProviders builds the enabled upstream clients. Expedia comes first in the hotel
// chain so Google Places only fills in when Rapid has nothing for the city.
func newProviders(cfg *config.Config, logger *slog.Logger) (aggregator.PlaceSearcher, []aggregator.HotelSearcher) {
	var places aggregator.PlaceSearcher
	var hotels []aggregator.HotelSearcher

	if e := cfg.Providers.Expedia; e.Enabled {
		opts := []expedia.ClientOption{
			expedia.WithTimeout(e.Timeout),
			expedia.WithCustomerIP(e.CustomerIP),
			expedia.WithLocale(e.Currency, e.Language, e.Country),
		}
		if e.BaseURL != "" {
			opts = append(opts, expedia.WithBaseURL(e.BaseURL))
		}
		hotels = append(hotels, expedia.NewClient(e.APIKey, e.APISecret, logger, opts...))
	}

	if g := cfg.Providers.GooglePlaces; g.Enabled {
		opts := []googleplaces.ClientOption{
			googleplaces.WithTimeout(g.Timeout),
			googleplaces.WithLodgingRadius(g.LodgingRadiusM),
		}
		if g.BaseURL != "" {
			opts = append(opts, googleplaces.WithBaseURL(g.BaseURL))
		}
		client := googleplaces.NewClient(g.APIKey, logger, opts...)
		places = client
		hotels = append(hotels, client)
	}

	logger.Info("Providers configured",
		slog.Bool("places", places != nil),
		slog.Int("hotel_sources", len(hotels)))
	return places, hotels
}

// Close releases all resources held by the container
func (c *Container) Close() {
	if c.Pool != nil {
		c.Pool.Close()
	}
}

// WaitForDB waits for the database to be ready
func (c *Container) WaitForDB(ctx context.Context) bool {
	return database.WaitForDB(ctx, c.Pool, c.Logger)
}
