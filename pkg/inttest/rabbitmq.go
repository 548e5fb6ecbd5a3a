package inttest

import (
	"context"
	"fmt"
	"testing"

	"github.com/docker/go-connections/nat"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const natAMQPPort = "5672/tcp"

// SetupRabbitMQ creates a RabbitMQ container with an AMQP channel ready to publish messages. We
// are using the management image so you can debug tests using its admin panel. Add a time.Sleep
// and find the exposed management port to log in to the UI.
func SetupRabbitMQ(t *testing.T) *AMQP {
	t.Helper()
	require := require.New(t)
	ctx := context.TODO()

	user := "guest"
	pw := "guest"
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image: "rabbitmq:3.13-management-alpine",
			Env: map[string]string{
				"RABBITMQ_DEFAULT_USER": user,
				"RABBITMQ_DEFAULT_PASS": pw,
			},
			ExposedPorts: []string{natAMQPPort, "15672/tcp"},
			WaitingFor:   wait.ForListeningPort(nat.Port(natAMQPPort)),
		},
		Started: true,
	})
	require.NoError(err, "failed setting up RabbitMQ")
	t.Cleanup(func() {
		require.NoError(container.Terminate(ctx), "failed to terminate RabbitMQ")
	})

	host, err := container.Host(ctx)
	require.NoError(err, "failed to get RabbitMQ host")
	port, err := container.MappedPort(ctx, nat.Port(natAMQPPort))
	require.NoError(err, "failed to get RabbitMQ AMQP port")
	URI := fmt.Sprintf("amqp://%s:%s@%s:%s", user, pw, host, port.Port())

	conn, err := amqp.Dial(URI)
	require.NoError(err, "failed setting up AMQP connection")
	t.Cleanup(func() {
		require.NoError(conn.Close(), "failed to close AMQP connection")
	})
	channel, err := conn.Channel()
	require.NoError(err, "failed setting up AMQP channel")

	return &AMQP{Channel: channel, URI: URI}
}

// AMQP allows making requests to RabbitMQ. It does so by opening a connection and channel to
// RabbitMQ via the low-level github.com/rabbitmq/amqp091-go library.
type AMQP struct {
	Channel *amqp.Channel
	URI     string
}

// Publish sends the body as JSON to the given queue using the default exchange.
func (a *AMQP) Publish(t *testing.T, queue string, body []byte) {
	t.Helper()

	err := a.Channel.PublishWithContext(context.TODO(), "", queue, false, false, amqp.Publishing{
		ContentType: "application/json",
		Body:        body,
	})
	require.NoError(t, err, "failed to publish to queue %q", queue)
}
