//go:build wireinject
// +build wireinject

package di

import (
	"context"

	"template-backend/application/ports"
	"template-backend/application/services"
	"template-backend/infrastructure/config"
	"template-backend/infrastructure/eventbus"
	"template-backend/infrastructure/persistence/database"

	"github.com/google/wire"
)

// CoreSet provides every singleton except the database
var CoreSet = wire.NewSet(
	ProvideLogger,
	ProvideApplication,
	ProvideAWSConfig,
	ProvideDynamoDBClient,
	ProvideEventBridgeClient,
	ProvideCloudWatchClient,
	ProvideMetrics,
	ProvideTracer,
	ProvideStartupReporter,
	ProvidePreferences,
	ProvideNotificationManager,
	ProvideAnalytics,
	ProvideEventPublisher,
	ProvideEventBus,
	wire.Bind(new(ports.EventBus), new(*eventbus.Bus)),
	ProvideObjectMapper,
	ProvideConverterFactory,
	ProvideRemoteClient,
	ProvideContextProvider,
	ProvideIndividualDao,
	ProvideHouseholdDao,
	ProvideAnalyticsListener,
	ProvideNotificationListener,
	ProvideSubscribers,
	services.NewIndividualService,
	services.NewHouseholdService,
	ProvideLocker,
	ProvideSyncService,
	wire.Struct(new(Container), "*"),
)

// SuperSet is the main provider set containing all providers
var SuperSet = wire.NewSet(
	CoreSet,
	ProvideMainDatabase,
)

// InitializeContainer creates a fully wired container
func InitializeContainer(ctx context.Context, cfg *config.Config) (*Container, func(), error) {
	wire.Build(SuperSet)
	return nil, nil, nil
}

// InitializeContainerWithDatabase wires a container around an already open
// database
func InitializeContainerWithDatabase(ctx context.Context, cfg *config.Config, db *database.MainDatabase) (*Container, func(), error) {
	wire.Build(CoreSet)
	return nil, nil, nil
}
