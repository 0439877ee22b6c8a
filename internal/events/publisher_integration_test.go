//go:build integration
// +build integration

package events

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/rabbitmq"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/skillsprint/video-library-go/internal/config"
	"github.com/skillsprint/video-library-go/internal/models"
	"github.com/skillsprint/video-library-go/pkg/logger"
)

var (
	loggerInitOnce sync.Once
	loggerInitErr  error
)

func initTestLogger() error {
	loggerInitOnce.Do(func() {
		loggerInitErr = logger.Init("error", "")
	})
	return loggerInitErr
}

func setupTestRabbitMQ(t *testing.T) (*config.RabbitMQConfig, func()) {
	if err := initTestLogger(); err != nil {
		t.Fatalf("Failed to initialize test logger: %v", err)
	}

	ctx := context.Background()

	rabbitmqContainer, err := rabbitmq.Run(ctx,
		"rabbitmq:3.13-alpine",
		testcontainers.WithWaitStrategy(
			wait.ForLog("Server startup complete").
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		t.Fatalf("Failed to start rabbitmq container: %v", err)
	}

	host, err := rabbitmqContainer.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get host: %v", err)
	}

	port, err := rabbitmqContainer.MappedPort(ctx, "5672/tcp")
	if err != nil {
		t.Fatalf("Failed to get port: %v", err)
	}

	cfg := &config.RabbitMQConfig{
		Host:       host,
		Port:       port.Int(),
		User:       "guest",
		Password:   "guest",
		Exchange:   "test.videos",
		Queue:      "test.videos.events",
		RoutingKey: "library.changed",
	}

	cleanup := func() {
		if err := rabbitmqContainer.Terminate(ctx); err != nil {
			t.Logf("Failed to terminate container: %v", err)
		}
	}

	return cfg, cleanup
}

func TestNewPublisher(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	cfg, cleanup := setupTestRabbitMQ(t)
	defer cleanup()

	// Allow some time for RabbitMQ to be fully ready
	time.Sleep(2 * time.Second)

	p, err := NewPublisher(cfg)
	if err != nil {
		t.Fatalf("NewPublisher() error = %v", err)
	}
	defer p.Close()

	if p == nil {
		t.Fatal("NewPublisher() returned nil")
	}
}

func TestPublisher_Publish(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	cfg, cleanup := setupTestRabbitMQ(t)
	defer cleanup()

	time.Sleep(2 * time.Second)

	p, err := NewPublisher(cfg)
	if err != nil {
		t.Fatalf("NewPublisher() error = %v", err)
	}
	defer p.Close()

	event := NewLibraryEvent(EventVideoAdded, "u1", "c1-m1")
	event.VideoID = "some-id"
	event.EmbedURL = "https://www.youtube.com/embed/dQw4w9WgXcQ"
	event.Origin = models.OriginUser

	if err := p.Publish(context.Background(), event); err != nil {
		t.Errorf("Publish() error = %v", err)
	}
}

func TestPublisher_IsHealthy(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	cfg, cleanup := setupTestRabbitMQ(t)
	defer cleanup()

	time.Sleep(2 * time.Second)

	p, err := NewPublisher(cfg)
	if err != nil {
		t.Fatalf("NewPublisher() error = %v", err)
	}
	defer p.Close()

	if !p.IsHealthy() {
		t.Error("IsHealthy() = false, want true")
	}

	p.Close()
	if p.IsHealthy() {
		t.Error("IsHealthy() after Close() = true, want false")
	}
}

func TestPublisher_PublishAfterConnectionLoss(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	cfg, cleanup := setupTestRabbitMQ(t)
	defer cleanup()

	time.Sleep(2 * time.Second)

	p, err := NewPublisher(cfg)
	if err != nil {
		t.Fatalf("NewPublisher() error = %v", err)
	}
	defer p.Close()

	if p.conn != nil {
		p.conn.Close()
	}

	// Publishing on a dead connection must fail cleanly, not panic.
	_ = p.Publish(context.Background(), NewLibraryEvent(EventVideoRemoved, "u1", "c1-m1"))
}
