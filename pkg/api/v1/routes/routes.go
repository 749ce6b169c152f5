// Package routes defines the API routes and URL structure
package routes

import (
	"fmt"
	"net/url"
	"strings"
	"sync"

	fiber "github.com/gofiber/fiber/v2"

	"github.com/celestiaorg/echo-agent/pkg/api/v1/handlers"
)

/*

To keep this file organized, routes are registered in the following way:

1. MIP-003 agent routes first, then operational routes, then debug routes.
2. Order routes in GET, POST, DELETE order.
	a. Within this ordering, param urls (ie /:job_id) should go last, otherwise fiber will interpret the route slug as that param.
3. For clarity, naming should match the action (i.e. GetStatus, DeleteJob)

*/

// API base configuration
const (
	// DefaultPort is the default port for the API
	DefaultPort = "8000"
)

// DefaultBaseURL is the default base URL for the API
var DefaultBaseURL = fmt.Sprintf("http://localhost:%s", DefaultPort)

// Route names for lookup
const (
	// Agent routes
	StartJob       = "StartJob"
	StartJobDirect = "StartJobDirect"
	GetStatus      = "GetStatus"
	Availability   = "Availability"
	InputSchema    = "InputSchema"

	// Operational routes
	Root           = "Root"
	HealthCheck    = "HealthCheck"
	HealthDetailed = "HealthDetailed"
	Metrics        = "Metrics"

	// Debug routes
	ListJobs     = "ListJobs"
	ListPayments = "ListPayments"
	DeleteJob    = "DeleteJob"
)

// Options controls which optional routes and middleware are registered
type Options struct {
	// EnableDebug registers the job listing and deletion routes
	EnableDebug bool
	// RateLimit, when set, guards the job creation routes
	RateLimit fiber.Handler
	// MetricsHandler, when set, serves the metrics route
	MetricsHandler fiber.Handler
}

// routeCache stores extracted routes for use prior to compilation
var (
	routeCache     map[string]string
	routeCacheMu   sync.RWMutex
	routeCacheInit sync.Once
)

// RegisterRoutes configures all the agent routes
func RegisterRoutes(
	app *fiber.App,
	jobHandler *handlers.JobHandler,
	agentHandler *handlers.AgentHandler,
	opts Options,
) {
	create := []fiber.Handler{}
	if opts.RateLimit != nil {
		create = append(create, opts.RateLimit)
	}

	// MIP-003 agent endpoints
	app.Get("/availability", agentHandler.Availability).Name(Availability)
	app.Get("/input_schema", agentHandler.InputSchema).Name(InputSchema)
	app.Get("/status", jobHandler.GetStatus).Name(GetStatus)
	app.Post("/start_job", append(create, jobHandler.StartJob)...).Name(StartJob)
	app.Post("/start_job_direct", append(create, jobHandler.StartJobDirect)...).Name(StartJobDirect)

	// Operational endpoints
	app.Get("/", agentHandler.Root).Name(Root)
	app.Get("/health", agentHandler.Health).Name(HealthCheck)
	app.Get("/health/detailed", agentHandler.HealthDetailed).Name(HealthDetailed)
	if opts.MetricsHandler != nil {
		app.Get("/metrics", opts.MetricsHandler).Name(Metrics)
	}

	// Debug endpoints
	if opts.EnableDebug {
		app.Get("/jobs", jobHandler.ListJobs).Name(ListJobs)
		app.Get("/payments", jobHandler.ListPayments).Name(ListPayments)
		app.Delete("/jobs/:job_id", jobHandler.DeleteJob).Name(DeleteJob)
	}
}

// PublicEndpoints lists the paths advertised by the root endpoint
func PublicEndpoints() []string {
	return []string{"/start_job", "/start_job_direct", "/status", "/availability", "/input_schema", "/health"}
}

// initRouteCache initializes the route cache by creating a mock app and extracting routes
func initRouteCache() {
	routeCacheInit.Do(func() {
		cache := make(map[string]string)

		// Create a mock app
		app := fiber.New()

		// Register every route, optional ones included, with empty handlers
		RegisterRoutes(app, &handlers.JobHandler{}, &handlers.AgentHandler{}, Options{
			EnableDebug:    true,
			MetricsHandler: func(c *fiber.Ctx) error { return nil },
		})

		// Extract routes from the app
		for _, route := range app.GetRoutes() {
			if route.Name != "" {
				cache[route.Name] = route.Path
			}
		}

		routeCacheMu.Lock()
		routeCache = cache
		routeCacheMu.Unlock()
	})
}

// GetRoute returns the route pattern for the given route name
func GetRoute(name string) string {
	initRouteCache()

	routeCacheMu.RLock()
	defer routeCacheMu.RUnlock()
	return routeCache[name]
}

// BuildURL builds a URL for the given route name and parameters
func BuildURL(routeName string, params map[string]string, queryParams url.Values) string {
	route := GetRoute(routeName)
	if route == "" {
		return ""
	}

	// Replace parameters in the route
	for param, value := range params {
		route = strings.ReplaceAll(route, ":"+param, url.PathEscape(value))
	}

	// Add query parameters if any
	if len(queryParams) > 0 {
		route = fmt.Sprintf("%s?%s", route, queryParams.Encode())
	}

	return route
}

// Agent route helpers

// StartJobURL returns the URL for starting a paid job
func StartJobURL() string {
	return BuildURL(StartJob, nil, nil)
}

// StartJobDirectURL returns the URL for running a job without payment
func StartJobDirectURL() string {
	return BuildURL(StartJobDirect, nil, nil)
}

// GetStatusURL returns the URL for polling a job
func GetStatusURL(jobID string) string {
	return BuildURL(GetStatus, nil, url.Values{"job_id": []string{jobID}})
}

// AvailabilityURL returns the URL for the availability endpoint
func AvailabilityURL() string {
	return BuildURL(Availability, nil, nil)
}

// InputSchemaURL returns the URL for the input schema endpoint
func InputSchemaURL() string {
	return BuildURL(InputSchema, nil, nil)
}

// Operational route helpers

// HealthCheckURL returns the URL for the health check endpoint
func HealthCheckURL() string {
	return BuildURL(HealthCheck, nil, nil)
}

// HealthDetailedURL returns the URL for the detailed health endpoint
func HealthDetailedURL() string {
	return BuildURL(HealthDetailed, nil, nil)
}

// Debug route helpers

// ListJobsURL returns the URL for listing jobs
func ListJobsURL(queryParams url.Values) string {
	return BuildURL(ListJobs, nil, queryParams)
}

// ListPaymentsURL returns the URL for listing payments
func ListPaymentsURL(queryParams url.Values) string {
	return BuildURL(ListPayments, nil, queryParams)
}

// DeleteJobURL returns the URL for deleting a job
func DeleteJobURL(jobID string) string {
	return BuildURL(DeleteJob, map[string]string{"job_id": jobID}, nil)
}
