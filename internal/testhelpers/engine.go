package testhelpers

import (
	"fmt"
	"time"

	"github.com/docker/go-connections/nat"
	_ "github.com/lib/pq"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	dbUser     = "recipes"
	dbPassword = "recipes"
	dbName     = "recipe_management"
	dbPort     = nat.Port("5432/tcp")
)

// DatabaseEngine describes which database image an Environment runs. It is
// picked once per host by SelectDatabaseEngine.
type DatabaseEngine struct {
	Name     string
	Image    string
	Platform string
}

var (
	// PostgresEngine is the default image.
	PostgresEngine = DatabaseEngine{
		Name:  "postgres",
		Image: "postgres:16-alpine",
	}

	// PostgresArm64Engine runs natively on Apple silicon instead of under
	// amd64 emulation.
	PostgresArm64Engine = DatabaseEngine{
		Name:     "postgres-arm64",
		Image:    "arm64v8/postgres:16-alpine",
		Platform: "linux/arm64",
	}
)

// SelectDatabaseEngine resolves the engine for a host OS and architecture.
func SelectDatabaseEngine(goos, goarch string) DatabaseEngine {
	if goos == "darwin" && goarch == "arm64" {
		return PostgresArm64Engine
	}
	return PostgresEngine
}

// DSN builds a libpq keyword connection string for the engine's credentials.
func (e DatabaseEngine) DSN(host string, port nat.Port) string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		host, port.Port(), dbUser, dbPassword, dbName)
}

func (e DatabaseEngine) request() testcontainers.ContainerRequest {
	return testcontainers.ContainerRequest{
		Image:         e.Image,
		ImagePlatform: e.Platform,
		ExposedPorts:  []string{string(dbPort)},
		Env: map[string]string{
			"POSTGRES_USER":     dbUser,
			"POSTGRES_PASSWORD": dbPassword,
			"POSTGRES_DB":       dbName,
		},
		WaitingFor: wait.ForAll(
			wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
			wait.ForSQL(dbPort, "postgres", func(host string, port nat.Port) string {
				return e.DSN(host, port)
			}),
		).WithStartupTimeoutDefault(90 * time.Second),
	}
}
