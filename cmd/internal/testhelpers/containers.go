package testhelpers

import (
	"context"
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	RedisImage  = "redis:7-alpine"
	QdrantImage = "qdrant/qdrant:v1.14.0"
)

// Endpoint is the host and mapped port of a started container.
type Endpoint struct {
	Host string
	Port int
}

func (e Endpoint) Addr() string {
	return e.Host + ":" + strconv.Itoa(e.Port)
}

// StartRedis runs a throwaway redis server for the calling test.
// The test is skipped in short mode or when Docker is unavailable.
func StartRedis(t *testing.T) Endpoint {
	t.Helper()
	return startContainer(t, testcontainers.ContainerRequest{
		Image:        RedisImage,
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(60 * time.Second),
	})
}

// StartQdrant runs a throwaway qdrant server and returns its gRPC endpoint.
// The test is skipped in short mode or when Docker is unavailable.
func StartQdrant(t *testing.T) Endpoint {
	t.Helper()
	return startContainer(t, testcontainers.ContainerRequest{
		Image:        QdrantImage,
		ExposedPorts: []string{"6334/tcp"},
		WaitingFor:   wait.ForListeningPort("6334/tcp").WithStartupTimeout(60 * time.Second),
	})
}

// startContainer starts req, which must expose exactly one port.
func startContainer(t *testing.T, req testcontainers.ContainerRequest) Endpoint {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping integration test in short mode (requires Docker)")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("Failed to start %s container: %v", req.Image, err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("Failed to terminate %s container: %v", req.Image, err)
		}
	})

	hostPort, err := container.Endpoint(ctx, "")
	if err != nil {
		t.Fatalf("Failed to get container endpoint: %v", err)
	}
	host, rawPort, err := net.SplitHostPort(hostPort)
	if err != nil {
		t.Fatalf("Failed to parse container endpoint %q: %v", hostPort, err)
	}
	port, err := strconv.Atoi(rawPort)
	if err != nil {
		t.Fatalf("Failed to parse container port %q: %v", rawPort, err)
	}
	return Endpoint{Host: host, Port: port}
}
