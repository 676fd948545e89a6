package speedtest

import (
	"context"
	"errors"
	"fmt"

	"github.com/showwin/speedtest-go/speedtest"
	"github.com/skybiz/skybiz/utils"
)

const DEFAULT_SERVER_NAME = "Local Server"

var ErrNoServers = errors.New("no speed test servers available")

// Result is a single measurement. Speeds are in Mbps, latency in milliseconds.
type Result struct {
	Download float64
	Upload   float64
	Ping     float64
	Server   string
	Location string
}

// Meter runs a full measurement against the best available server.
type Meter interface {
	Measure(ctx context.Context) (*Result, error)
}

type SpeedtestNet struct {
	client *speedtest.Speedtest
}

func NewSpeedtestNet() *SpeedtestNet {
	return &SpeedtestNet{client: speedtest.New()}
}

func (m *SpeedtestNet) Measure(ctx context.Context) (*Result, error) {
	servers, err := m.client.FetchServerListContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch servers: %v", err)
	}

	targets, err := servers.FindServer([]int{})
	if err != nil {
		return nil, fmt.Errorf("find server: %v", err)
	}
	if len(targets) == 0 {
		return nil, ErrNoServers
	}

	server := targets[0]
	if err = server.PingTestContext(ctx, nil); err != nil {
		return nil, fmt.Errorf("ping: %v", err)
	}
	if err = server.DownloadTestContext(ctx); err != nil {
		return nil, fmt.Errorf("download: %v", err)
	}
	if err = server.UploadTestContext(ctx); err != nil {
		return nil, fmt.Errorf("upload: %v", err)
	}

	name := server.Sponsor
	if name == "" {
		name = DEFAULT_SERVER_NAME
	}

	return &Result{
		Download: mbps(server.DLSpeed),
		Upload:   mbps(server.ULSpeed),
		Ping:     utils.Round(float64(server.Latency.Microseconds())/1000, 1),
		Server:   name,
		Location: fmt.Sprintf("%v, %v", server.Name, server.Country),
	}, nil
}

// mbps rounds rate to 2 decimals.
func mbps(rate speedtest.ByteRate) float64 {
	return utils.Round(rate.Mbps(), 2)
}
