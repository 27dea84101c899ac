// Package util provides helpers shared across integration tests.
package util

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/kilianp07/manmonths/core/loader"
)

const (
	MosquittoReadyTimeout = 5 * time.Second

	pollInterval = 50 * time.Millisecond
)

// WriteProjectsCSV writes rows of (period, units) under the default headers
// plus a title column, and returns the file path.
func WriteProjectsCSV(dir, name string, rows [][2]string) (string, error) {
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	w := csv.NewWriter(f)
	records := [][]string{{"ΤΙΤΛΟΣ", loader.PeriodColumn, loader.UnitsColumn}}
	for i, r := range rows {
		records = append(records, []string{fmt.Sprintf("Project %c", 'A'+i), r[0], r[1]})
	}
	if err := w.WriteAll(records); err != nil {
		_ = f.Close()
		return "", err
	}
	return path, f.Close()
}

const mosquittoConf = `listener 1883
allow_anonymous true
persistence false
log_dest stdout
`

// StartMosquitto runs an anonymous Mosquitto broker in a container and
// returns its tcp:// URL once a client can connect. The returned function
// terminates the container.
func StartMosquitto(ctx context.Context) (string, func(), error) {
	cont, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: tc.ContainerRequest{
			Image:        "eclipse-mosquitto:2.0",
			ExposedPorts: []string{"1883/tcp"},
			WaitingFor:   wait.ForListeningPort("1883/tcp"),
			Files: []tc.ContainerFile{{
				Reader:            strings.NewReader(mosquittoConf),
				ContainerFilePath: "/mosquitto/config/mosquitto.conf",
				FileMode:          0o644,
			}},
		},
		Started: true,
	})
	if err != nil {
		return "", nil, err
	}
	stop := func() { _ = cont.Terminate(context.Background()) }

	endpoint, err := cont.PortEndpoint(ctx, "1883/tcp", "tcp")
	if err != nil {
		stop()
		return "", nil, err
	}

	readyCtx, cancel := context.WithTimeout(ctx, MosquittoReadyTimeout)
	defer cancel()
	if err := awaitBroker(readyCtx, endpoint); err != nil {
		stop()
		return "", nil, fmt.Errorf("broker %s not ready: %w", endpoint, err)
	}
	return endpoint, stop, nil
}

func awaitBroker(ctx context.Context, broker string) error {
	tick := time.NewTicker(pollInterval)
	defer tick.Stop()
	opts := paho.NewClientOptions().AddBroker(broker).SetClientID("readiness-probe")
	for {
		cli := paho.NewClient(opts)
		if tok := cli.Connect(); tok.WaitTimeout(time.Second) && tok.Error() == nil {
			cli.Disconnect(50)
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-tick.C:
		}
	}
}
