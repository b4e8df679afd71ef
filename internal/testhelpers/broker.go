package testhelpers

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/go-connections/nat"
	"github.com/go-resty/resty/v2"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/tidwall/gjson"
)

const (
	brokerImage       = "rabbitmq:3.13-management-alpine"
	amqpPort          = nat.Port("5672/tcp")
	managementPort    = nat.Port("15672/tcp")
	brokerUsername    = "guest"
	brokerPassword    = "guest"
	brokerVirtualHost = "/"
)

// BrokerInfo is what a client needs to reach the provisioned broker.
type BrokerInfo struct {
	Host          string
	Port          int
	VirtualHost   string
	Username      string
	Password      string
	ManagementURL string
}

// URL returns the amqp:// URL for the broker.
func (b BrokerInfo) URL() string {
	vhost := b.VirtualHost
	if vhost == "/" {
		vhost = ""
	}
	return fmt.Sprintf("amqp://%s:%s@%s/%s", b.Username, b.Password, net.JoinHostPort(b.Host, strconv.Itoa(b.Port)), vhost)
}

// FreePort asks the kernel for a TCP port that is currently unused.
func FreePort() (int, error) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return 0, fmt.Errorf("failed to reserve a free port: %w", err)
	}
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port, nil
}

func brokerRequest(hostPort int) testcontainers.ContainerRequest {
	return testcontainers.ContainerRequest{
		Image:        brokerImage,
		ExposedPorts: []string{string(amqpPort), string(managementPort)},
		HostConfigModifier: func(hc *container.HostConfig) {
			hc.PortBindings = nat.PortMap{
				amqpPort: []nat.PortBinding{{HostIP: "0.0.0.0", HostPort: strconv.Itoa(hostPort)}},
			}
		},
		WaitingFor: wait.ForAll(
			wait.ForListeningPort(amqpPort),
			wait.ForListeningPort(managementPort),
		).WithStartupTimeoutDefault(120 * time.Second),
	}
}

// waitForBroker polls the management API aliveness check until the default
// virtual host accepts messages.
func waitForBroker(ctx context.Context, managementURL string) error {
	client := resty.New().
		SetBaseURL(managementURL).
		SetBasicAuth(brokerUsername, brokerPassword).
		SetTimeout(5 * time.Second).
		SetRetryCount(30).
		SetRetryWaitTime(time.Second).
		SetRetryMaxWaitTime(2 * time.Second).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return err != nil || !brokerAlive(r.Body())
		})

	resp, err := client.R().SetContext(ctx).Get("/api/aliveness-test/%2F")
	if err != nil {
		return fmt.Errorf("broker aliveness check: %w", err)
	}
	if !brokerAlive(resp.Body()) {
		return fmt.Errorf("broker not alive: status %d: %s", resp.StatusCode(), resp.String())
	}
	return nil
}

func brokerAlive(body []byte) bool {
	return gjson.GetBytes(body, "status").String() == "ok"
}
