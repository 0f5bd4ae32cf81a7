package di

import (
	"github.com/yogaflow/studio-booking/internal/handler"
	"github.com/yogaflow/studio-booking/internal/repository"
	"github.com/yogaflow/studio-booking/internal/service"
	"github.com/yogaflow/studio-booking/internal/store"
	"github.com/yogaflow/studio-booking/pkg/redis"
)

// Container holds all dependencies for the booking service
type Container struct {
	// Infrastructure
	Store store.Store
	Redis *redis.Client

	// Repositories
	BookingRepo  repository.BookingRepository
	InstanceRepo repository.InstanceRepository
	CourseRepo   repository.CourseRepository

	// Publishers
	EventPublisher service.EventPublisher

	// Services
	BookingService   service.BookingService
	DirectoryService service.DirectoryService

	// Handlers
	HealthHandler  *handler.HealthHandler
	BookingHandler *handler.BookingHandler
	AdminHandler   *handler.AdminHandler
}

// ContainerConfig contains configuration for building the container
type ContainerConfig struct {
	Store          store.Store
	Redis          *redis.Client
	EventPublisher service.EventPublisher
	ServiceConfig  *service.BookingServiceConfig
	Version        string
}

// NewContainer creates a new dependency injection container
func NewContainer(cfg *ContainerConfig) *Container {
	c := &Container{
		Store:          cfg.Store,
		Redis:          cfg.Redis,
		EventPublisher: cfg.EventPublisher,
	}

	// Initialize repositories
	c.BookingRepo = repository.NewBookingRepository(c.Store)
	c.InstanceRepo = repository.NewInstanceRepository(c.Store)
	c.CourseRepo = repository.NewCourseRepository(c.Store)

	// Initialize services
	c.BookingService = service.NewBookingService(
		c.Store,
		c.BookingRepo,
		c.InstanceRepo,
		c.CourseRepo,
		c.EventPublisher,
		cfg.ServiceConfig,
	)
	c.DirectoryService = service.NewDirectoryService(
		c.BookingRepo,
		c.InstanceRepo,
		c.CourseRepo,
	)

	// Initialize handlers
	c.HealthHandler = handler.NewHealthHandler(c.Redis, cfg.Version)
	c.BookingHandler = handler.NewBookingHandler(c.BookingService, c.DirectoryService)
	c.AdminHandler = handler.NewAdminHandler(c.BookingService, c.DirectoryService)

	return c
}
