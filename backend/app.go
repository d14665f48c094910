/*
 * backend/app.go
 *
 * Composition root for the live-view data layer. Builds the transports,
 * router, stores and metrics client, and drives their lifecycle.
 */

package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/harborview/app/backend/apiclient"
	"github.com/harborview/app/backend/internal/config"
	"github.com/harborview/app/backend/internal/parallel"
	"github.com/harborview/app/backend/liveseries"
	"github.com/harborview/app/backend/overview"
	"github.com/harborview/app/backend/resources"
	"github.com/harborview/app/backend/resources/transform"
	"github.com/harborview/app/backend/resources/types"
	"github.com/harborview/app/backend/streamclient"
	"github.com/harborview/app/backend/viewstore"
)

const startupConcurrency = 4

// AppOptions configure a new App. Every dependency is explicit; nothing is
// read from package-level state.
type AppOptions struct {
	// SettingsPath overrides the settings file location. Optional.
	SettingsPath string
	// Logger receives all backend log entries. Optional.
	Logger *Logger
	// OnChange is invoked with an area name ("pods", "metrics", ...) after
	// that area's visible state changes. The rendering layer re-reads the
	// matching snapshot from it. Optional.
	OnChange func(area string)
}

// App owns the whole data layer: one overview stream feeding typed stores
// through the router, one metrics stream feeding the live-series client, and
// a REST client for snapshots.
type App struct {
	logger       *Logger
	settingsMu   sync.RWMutex
	settings     *Settings
	settingsPath string
	watcher      *settingsWatcher
	onChange     func(area string)

	api            *apiclient.Client
	overviewStream *streamclient.Client
	metricsStream  *streamclient.Client
	router         *overview.Router

	// Metrics buffers live series for charts.
	Metrics *liveseries.Client

	Pods                   *viewstore.Store[types.PodRow]
	Deployments            *viewstore.Store[types.DeploymentRow]
	StatefulSets           *viewstore.Store[types.StatefulSetRow]
	DaemonSets             *viewstore.Store[types.DaemonSetRow]
	Nodes                  *viewstore.Store[types.NodeRow]
	Namespaces             *viewstore.Store[types.NamespaceRow]
	ResourceQuotas         *viewstore.Store[types.ResourceQuotaRow]
	Services               *viewstore.Store[types.ServiceRow]
	Endpoints              *viewstore.Store[types.EndpointsRow]
	Ingresses              *viewstore.Store[types.IngressRow]
	VirtualServices        *viewstore.Store[types.VirtualServiceRow]
	PersistentVolumes      *viewstore.Store[types.PersistentVolumeRow]
	PersistentVolumeClaims *viewstore.Store[types.PersistentVolumeClaimRow]
	ConfigMaps             *viewstore.Store[types.ConfigMapRow]
	Secrets                *viewstore.Store[types.SecretRow]

	cancel context.CancelFunc
}

// NewApp builds the data layer from persisted settings. No connections are
// opened until Startup.
func NewApp(opts AppOptions) (*App, error) {
	a := &App{
		logger:       opts.Logger,
		settingsPath: opts.SettingsPath,
		onChange:     opts.OnChange,
	}
	if a.logger == nil {
		a.logger = NewLogger(config.LoggerMaxEntries)
	}
	if a.settingsPath == "" {
		path, err := DefaultSettingsPath()
		if err != nil {
			return nil, err
		}
		a.settingsPath = path
	}

	settings, err := LoadSettings(a.settingsPath)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	a.settings = settings

	a.api = apiclient.NewClient(apiclient.Config{
		BaseURL: settings.Backend.BaseURL,
		Logger:  a.logger,
	})
	a.overviewStream = streamclient.NewClient(streamclient.Config{
		URL:    streamURL(settings.Backend.BaseURL, config.OverviewStreamPath),
		Name:   "OverviewStream",
		Logger: a.logger,
	})
	a.metricsStream = streamclient.NewClient(streamclient.Config{
		URL:    streamURL(settings.Backend.BaseURL, config.LiveSeriesStreamPath),
		Name:   "MetricsStream",
		Logger: a.logger,
	})
	a.router = overview.NewRouter(a.overviewStream, a.logger)
	a.Metrics = liveseries.NewClient(liveseries.Config{
		Transport: a.metricsStream,
		Logger:    a.logger,
		Retention: time.Duration(settings.Metrics.RetentionMinutes) * time.Minute,
		OnChange:  func() { a.notifyChange("metrics") },
	})

	a.Pods = newStore(a, "pods", transform.Pod, namespacedKey(func(r types.PodRow) (string, string) { return r.Namespace, r.Name }))
	a.Deployments = newStore(a, "deployments", transform.Deployment, namespacedKey(func(r types.DeploymentRow) (string, string) { return r.Namespace, r.Name }))
	a.StatefulSets = newStore(a, "statefulsets", transform.StatefulSet, namespacedKey(func(r types.StatefulSetRow) (string, string) { return r.Namespace, r.Name }))
	a.DaemonSets = newStore(a, "daemonsets", transform.DaemonSet, namespacedKey(func(r types.DaemonSetRow) (string, string) { return r.Namespace, r.Name }))
	a.Nodes = newStore(a, "nodes", transform.Node, func(r types.NodeRow) string { return r.Name })
	a.Namespaces = newStore(a, "namespaces", transform.Namespace, func(r types.NamespaceRow) string { return r.Name })
	a.ResourceQuotas = newStore(a, "resource_quotas", transform.ResourceQuota, namespacedKey(func(r types.ResourceQuotaRow) (string, string) { return r.Namespace, r.Name }))
	a.Services = newStore(a, "services", transform.Service, namespacedKey(func(r types.ServiceRow) (string, string) { return r.Namespace, r.Name }))
	a.Endpoints = newStore(a, "endpoints", transform.Endpoints, namespacedKey(func(r types.EndpointsRow) (string, string) { return r.Namespace, r.Name }))
	a.Ingresses = newStore(a, "ingresses", transform.Ingress, namespacedKey(func(r types.IngressRow) (string, string) { return r.Namespace, r.Name }))
	a.VirtualServices = newStore(a, "virtualservices", transform.VirtualService, namespacedKey(func(r types.VirtualServiceRow) (string, string) { return r.Namespace, r.Name }))
	a.PersistentVolumes = newStore(a, "persistentvolumes", transform.PersistentVolume, func(r types.PersistentVolumeRow) string { return r.Name })
	a.PersistentVolumeClaims = newStore(a, "persistentvolumeclaims", transform.PersistentVolumeClaim, namespacedKey(func(r types.PersistentVolumeClaimRow) (string, string) { return r.Namespace, r.Name }))
	a.ConfigMaps = newStore(a, "configmaps", transform.ConfigMap, namespacedKey(func(r types.ConfigMapRow) (string, string) { return r.Namespace, r.Name }))
	a.Secrets = newStore(a, "secrets", transform.Secret, namespacedKey(func(r types.SecretRow) (string, string) { return r.Namespace, r.Name }))

	return a, nil
}

// Startup connects both streams, loads every snapshot concurrently and
// begins metrics pruning. It blocks until the initial snapshots settle.
func (a *App) Startup(ctx context.Context) error {
	ctx, a.cancel = context.WithCancel(ctx)

	watcher, err := newSettingsWatcher(a.settingsPath, a.logger, a.applySettings)
	if err != nil {
		a.logger.Warn("settings watcher unavailable: "+err.Error(), "App")
	} else {
		a.watcher = watcher
	}

	a.overviewStream.Connect()
	a.metricsStream.Connect()
	a.Metrics.Start(ctx)

	if err := parallel.Run(ctx, startupConcurrency, a.storeInitializers()...); err != nil {
		// Streams stay up; stores that failed keep their error state and
		// can be refetched individually.
		a.logger.Warn("startup finished with snapshot errors: "+err.Error(), "App")
		return err
	}

	a.logger.Info("data layer ready", "App")
	return nil
}

// Shutdown tears the data layer down in reverse construction order.
func (a *App) Shutdown() {
	if a.cancel != nil {
		a.cancel()
	}
	if a.watcher != nil {
		a.watcher.Stop()
		a.watcher = nil
	}
	for _, teardown := range a.storeTeardowns() {
		teardown()
	}
	a.metricsStream.Disconnect()
	a.overviewStream.Disconnect()
	a.logger.Info("data layer stopped", "App")
}

// Logger exposes the in-memory log buffer.
func (a *App) Logger() *Logger {
	return a.logger
}

// SubscribeMetrics opens a live-series group for the given keys using the
// configured resolution and retention window. It returns the group id for
// later Unsubscribe.
func (a *App) SubscribeMetrics(groupID string, keys []string) string {
	settings := a.Settings()
	return a.Metrics.Subscribe(groupID, keys, liveseries.Options{
		Resolution: liveseries.Resolution(settings.Metrics.Resolution),
		Since:      fmt.Sprintf("%dm", settings.Metrics.RetentionMinutes),
	})
}

// Settings returns the active settings.
func (a *App) Settings() *Settings {
	a.settingsMu.RLock()
	defer a.settingsMu.RUnlock()
	return a.settings
}

// applySettings reacts to settings file edits. Stream endpoints are fixed at
// construction, so a base URL change is surfaced but takes effect on the
// next start.
func (a *App) applySettings(settings *Settings) {
	a.settingsMu.Lock()
	previous := a.settings
	a.settings = settings
	a.settingsMu.Unlock()
	if previous != nil && previous.Backend.BaseURL != settings.Backend.BaseURL {
		a.logger.Warn("backend URL changed; restart to apply", "App")
	}
	a.logger.Info("settings reloaded", "App")
	a.notifyChange("settings")
}

func (a *App) notifyChange(area string) {
	if a.onChange != nil {
		a.onChange(area)
	}
}

func (a *App) storeInitializers() []func(context.Context) error {
	return []func(context.Context) error{
		a.Pods.Initialize,
		a.Deployments.Initialize,
		a.StatefulSets.Initialize,
		a.DaemonSets.Initialize,
		a.Nodes.Initialize,
		a.Namespaces.Initialize,
		a.ResourceQuotas.Initialize,
		a.Services.Initialize,
		a.Endpoints.Initialize,
		a.Ingresses.Initialize,
		a.VirtualServices.Initialize,
		a.PersistentVolumes.Initialize,
		a.PersistentVolumeClaims.Initialize,
		a.ConfigMaps.Initialize,
		a.Secrets.Initialize,
	}
}

func (a *App) storeTeardowns() []func() {
	return []func(){
		a.Pods.Teardown,
		a.Deployments.Teardown,
		a.StatefulSets.Teardown,
		a.DaemonSets.Teardown,
		a.Nodes.Teardown,
		a.Namespaces.Teardown,
		a.ResourceQuotas.Teardown,
		a.Services.Teardown,
		a.Endpoints.Teardown,
		a.Ingresses.Teardown,
		a.VirtualServices.Teardown,
		a.PersistentVolumes.Teardown,
		a.PersistentVolumeClaims.Teardown,
		a.ConfigMaps.Teardown,
		a.Secrets.Teardown,
	}
}

// newStore wires one typed store to the shared router, stream and API
// client using the catalog entry for its wire name.
func newStore[T any](
	a *App,
	wireName string,
	transformFn func(json.RawMessage) (T, []string),
	keyFn func(T) string,
) *viewstore.Store[T] {
	descriptor, ok := resources.Lookup(wireName)
	if !ok {
		// Catalog and wiring live side by side; a miss is a programming
		// error caught by the registry tests.
		panic(fmt.Sprintf("resource %q not in catalog", wireName))
	}
	return viewstore.NewStore(viewstore.Config[T]{
		Resource: descriptor.WireName,
		Fetch: func(ctx context.Context) ([]T, error) {
			return apiclient.List[T](ctx, a.api, descriptor.Path)
		},
		Transform: transformFn,
		KeyOf:     keyFn,
		OnChange:  func() { a.notifyChange(descriptor.WireName) },
		Logger:    a.logger,
	}, a.router, a.overviewStream)
}

// namespacedKey adapts a namespace/name pair extractor into a store key
// function.
func namespacedKey[T any](fields func(T) (string, string)) func(T) string {
	return func(row T) string {
		namespace, name := fields(row)
		return resources.NamespacedKey(namespace, name)
	}
}

// streamURL converts the REST base URL into the websocket endpoint at path.
func streamURL(baseURL, path string) string {
	switch {
	case strings.HasPrefix(baseURL, "https://"):
		baseURL = "wss://" + strings.TrimPrefix(baseURL, "https://")
	case strings.HasPrefix(baseURL, "http://"):
		baseURL = "ws://" + strings.TrimPrefix(baseURL, "http://")
	}
	return strings.TrimRight(baseURL, "/") + path
}
