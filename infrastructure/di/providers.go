package di

import (
	"context"
	"fmt"
	"strings"
	"time"

	"template-backend/application/listeners"
	"template-backend/application/ports"
	"template-backend/application/services"
	"template-backend/infrastructure/analytics"
	"template-backend/infrastructure/config"
	"template-backend/infrastructure/eventbus"
	"template-backend/infrastructure/locks"
	"template-backend/infrastructure/messaging/eventbridge"
	"template-backend/infrastructure/notifications"
	"template-backend/infrastructure/persistence/database"
	"template-backend/infrastructure/platform"
	"template-backend/infrastructure/preferences"
	"template-backend/infrastructure/webservice"
	"template-backend/pkg/dispatch"
	"template-backend/pkg/jsonmapper"
	"template-backend/pkg/observability"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/apigatewaymanagementapi"
	awscloudwatch "github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awseventbridge "github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ProvideLogger creates a new logger instance. The cleanup flushes buffered
// entries.
func ProvideLogger(cfg *config.Config) (*zap.Logger, func(), error) {
	var zcfg zap.Config
	if cfg.IsDebug() {
		zcfg = zap.NewDevelopmentConfig()
	} else {
		zcfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
	}
	zcfg.Level = zap.NewAtomicLevelAt(level)

	logger, err := zcfg.Build()
	if err != nil {
		return nil, nil, err
	}
	logger = logger.With(zap.String("variant", cfg.BuildVariant))
	return logger, func() {
		_ = logger.Sync()
	}, nil
}

// ProvideApplication creates the application handle
func ProvideApplication(cfg *config.Config) (*platform.Application, error) {
	return platform.NewApplication(cfg)
}

// ProvideAWSConfig creates AWS configuration
func ProvideAWSConfig(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	return awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.AWSRegion),
	)
}

// ProvideDynamoDBClient creates a DynamoDB client
func ProvideDynamoDBClient(awsCfg aws.Config) *awsdynamodb.Client {
	return awsdynamodb.NewFromConfig(awsCfg)
}

// ProvideEventBridgeClient creates an EventBridge client
func ProvideEventBridgeClient(awsCfg aws.Config) *awseventbridge.Client {
	return awseventbridge.NewFromConfig(awsCfg)
}

// ProvideCloudWatchClient creates a CloudWatch client
func ProvideCloudWatchClient(awsCfg aws.Config) *awscloudwatch.Client {
	return awscloudwatch.NewFromConfig(awsCfg)
}

// ProvideMetrics creates the Prometheus collectors
func ProvideMetrics(cfg *config.Config) *observability.Metrics {
	return observability.NewMetrics(metricNamespace(cfg.AppName))
}

// ProvideTracer creates the X-Ray tracer
func ProvideTracer(cfg *config.Config) *observability.Tracer {
	return observability.NewTracer(cfg.AppName, cfg.EnableTracing)
}

// ProvideStartupReporter reports cold starts to CloudWatch when metrics are
// enabled
func ProvideStartupReporter(cfg *config.Config, client *awscloudwatch.Client) *observability.StartupReporter {
	if !cfg.EnableMetrics {
		return observability.NewStartupReporter(cfg.AppName, nil)
	}
	return observability.NewStartupReporter(fmt.Sprintf("%s/%s", cfg.AppName, cfg.BuildVariant), client)
}

// ProvidePreferences opens the preferences store for the application
func ProvidePreferences(
	ctx context.Context,
	app *platform.Application,
	cfg *config.Config,
	client *awsdynamodb.Client,
	logger *zap.Logger,
) (ports.Preferences, func(), error) {
	var (
		store ports.Preferences
		err   error
	)
	switch cfg.PreferencesBackend {
	case config.PreferencesBackendDynamoDB:
		store, err = preferences.NewDynamoDBStore(ctx, client, cfg.PreferencesTable, app.Name, logger)
	default:
		store, err = preferences.NewFileStore(app.PreferencesPath(), logger)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open preferences: %w", err)
	}

	cleanup := func() {
		if err := store.Close(); err != nil {
			logger.Warn("Failed to close preferences", zap.Error(err))
		}
	}
	return store, cleanup, nil
}

// ProvideNotificationManager logs notifications in debug builds and pushes
// them over WebSocket otherwise. The listener channels are registered here.
func ProvideNotificationManager(
	app *platform.Application,
	cfg *config.Config,
	awsCfg aws.Config,
	client *awsdynamodb.Client,
	mapper *jsonmapper.Mapper,
	metrics *observability.Metrics,
	logger *zap.Logger,
) ports.NotificationManager {
	var manager ports.NotificationManager
	if cfg.IsDebug() || cfg.WebSocketEndpoint == "" {
		manager = notifications.NewLogManager(logger)
	} else {
		api := apigatewaymanagementapi.NewFromConfig(awsCfg, func(o *apigatewaymanagementapi.Options) {
			o.BaseEndpoint = aws.String(websocketEndpoint(cfg.WebSocketEndpoint))
		})
		connections := notifications.NewConnectionStore(client, cfg.ConnectionsTable, logger)
		manager = notifications.NewWebSocketManager(api, connections, mapper, metrics, logger)
	}

	for _, channel := range listeners.NotificationChannels() {
		manager.CreateChannel(channel)
	}
	logger.Debug("Notification manager ready", zap.String("app", app.Name), zap.String("type", fmt.Sprintf("%T", manager)))
	return manager
}

// ProvideAnalytics selects the analytics sink by build variant. Debug builds
// only log hits.
func ProvideAnalytics(
	app *platform.Application,
	cfg *config.Config,
	metrics *observability.Metrics,
	logger *zap.Logger,
) (ports.Analytics, error) {
	if cfg.IsDebug() {
		return analytics.NewLogSink(logger), nil
	}

	tracker, err := analytics.NewTracker(analytics.TrackerConfig{
		TrackingID:     cfg.AnalyticsKey,
		Endpoint:       cfg.AnalyticsEndpoint,
		SessionTimeout: cfg.AnalyticsSessionTimeout,
		AppName:        app.Name,
		AppVersion:     app.Version,
	}, metrics, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create analytics tracker: %w", err)
	}
	return analytics.NewTrackerSink(tracker), nil
}

// ProvideEventPublisher forwards bus events to EventBridge when a bus name is
// configured
func ProvideEventPublisher(
	client *awseventbridge.Client,
	cfg *config.Config,
	mapper *jsonmapper.Mapper,
	logger *zap.Logger,
) ports.EventPublisher {
	if cfg.EventBusName == "" {
		return nil
	}
	return eventbridge.NewPublisher(client, cfg.EventBusName, mapper, logger)
}

// ProvideEventBus creates the in-process event bus bound to the listener
// registry
func ProvideEventBus(publisher ports.EventPublisher, metrics *observability.Metrics, logger *zap.Logger) *eventbus.Bus {
	bus := eventbus.NewBuilder().
		WithLogger(logger.Named("EventBus")).
		WithForwarder(publisher).
		WithMetrics(metrics).
		Build()
	bus.SetRegistry(listeners.NewRegistry())
	return bus
}

// ProvideObjectMapper creates the JSON mapper with the date-time module
func ProvideObjectMapper() (*jsonmapper.Mapper, error) {
	mapper := jsonmapper.New()
	if err := mapper.RegisterModule(jsonmapper.NewDateTimeModule(time.UTC)); err != nil {
		return nil, err
	}
	return mapper, nil
}

// ProvideConverterFactory creates the HTTP body converter
func ProvideConverterFactory(mapper *jsonmapper.Mapper) *webservice.ConverterFactory {
	return webservice.NewConverterFactory(mapper)
}

// ProvideRemoteClient creates the remote web service client, or nil when no
// base url is configured
func ProvideRemoteClient(cfg *config.Config, converter *webservice.ConverterFactory, logger *zap.Logger) (services.RemoteClient, error) {
	if cfg.RemoteBaseURL == "" {
		return nil, nil
	}
	client, err := webservice.NewClient(cfg.RemoteBaseURL, converter, logger)
	if err != nil {
		return nil, err
	}
	return client, nil
}

// ProvideContextProvider returns the production executors
func ProvideContextProvider() dispatch.ContextProvider {
	return dispatch.MainContextProvider()
}

// ProvideMainDatabase opens the application database and applies migrations
// when enabled
func ProvideMainDatabase(
	ctx context.Context,
	app *platform.Application,
	cfg *config.Config,
	logger *zap.Logger,
) (*database.MainDatabase, func(), error) {
	logger.Info("Opening database", zap.String("app", app.Name), zap.String("name", database.DatabaseName))

	db, err := database.Open(ctx, cfg.DatabaseURL, logger)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if err := db.Close(); err != nil {
			logger.Warn("Failed to close database", zap.Error(err))
		}
	}

	if cfg.DatabaseAutoMigrate {
		if err := db.Migrate(ctx); err != nil {
			cleanup()
			return nil, nil, err
		}
	}
	return db, cleanup, nil
}

// ProvideIndividualDao derives the individual DAO from the database
func ProvideIndividualDao(db *database.MainDatabase) ports.IndividualDao {
	return db.IndividualDao()
}

// ProvideHouseholdDao derives the household DAO from the database
func ProvideHouseholdDao(db *database.MainDatabase) ports.HouseholdDao {
	return db.HouseholdDao()
}

// ProvideAnalyticsListener creates the analytics subscriber
func ProvideAnalyticsListener(sink ports.Analytics, provider dispatch.ContextProvider, logger *zap.Logger) *listeners.AnalyticsListener {
	return listeners.NewAnalyticsListener(sink, provider, logger)
}

// ProvideNotificationListener creates the notification subscriber
func ProvideNotificationListener(manager ports.NotificationManager, logger *zap.Logger) *listeners.NotificationListener {
	return listeners.NewNotificationListener(manager, logger)
}

// Subscribers are the listeners registered on the bus
type Subscribers struct {
	Analytics     *listeners.AnalyticsListener
	Notifications *listeners.NotificationListener
}

// ProvideSubscribers registers the listeners on bus
func ProvideSubscribers(
	bus *eventbus.Bus,
	analyticsListener *listeners.AnalyticsListener,
	notificationListener *listeners.NotificationListener,
) (*Subscribers, error) {
	for _, l := range []interface{}{analyticsListener, notificationListener} {
		if err := bus.Register(l); err != nil {
			return nil, fmt.Errorf("failed to register %T: %w", l, err)
		}
	}
	return &Subscribers{Analytics: analyticsListener, Notifications: notificationListener}, nil
}

// ProvideLocker returns a DynamoDB locker when LOCKS_TABLE is set and an
// in-process one otherwise
func ProvideLocker(cfg *config.Config, app *platform.Application, client *awsdynamodb.Client, logger *zap.Logger) ports.Locker {
	if cfg.LocksTable == "" {
		return locks.NewLocalLocker()
	}
	owner := fmt.Sprintf("%s-%s", app.Name, uuid.NewString())
	return locks.NewDynamoDBLocker(client, cfg.LocksTable, owner, logger.Named("Locks"))
}

// ProvideSyncService creates the sync service
func ProvideSyncService(
	remote services.RemoteClient,
	households ports.HouseholdDao,
	individuals ports.IndividualDao,
	bus ports.EventBus,
	locker ports.Locker,
	tracer *observability.Tracer,
	logger *zap.Logger,
) *services.SyncService {
	return services.NewSyncService(remote, households, individuals, bus, locker, tracer, logger.Named("Sync"))
}

func metricNamespace(appName string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(appName) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}

func websocketEndpoint(endpoint string) string {
	if strings.HasPrefix(endpoint, "https://") || strings.HasPrefix(endpoint, "http://") {
		return endpoint
	}
	return "https://" + endpoint
}
