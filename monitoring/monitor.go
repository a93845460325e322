// Package monitoring turns a running fieldbus server into an HTTP endpoint
// that reports its state and lets an operator peek into the process image or
// trigger a cycle by hand.
package monitoring

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"strconv"

	// Enable profiling
	_ "net/http/pprof"

	"github.com/gorilla/mux"
	"github.com/pkg/browser"
	"github.com/shirou/gopsutil/process"
	"github.com/syifan/goseth"

	"github.com/fieldbuslab/modserve/image"
	"github.com/fieldbuslab/modserve/server"
)

// Monitor can turn a fieldbus server into an HTTP server that allows
// external monitoring and controlling of the device.
type Monitor struct {
	server     *server.Server
	portNumber int
	url        string
}

// NewMonitor creates a new Monitor.
func NewMonitor() *Monitor {
	return &Monitor{}
}

// WithPortNumber sets the port number of the monitor.
func (m *Monitor) WithPortNumber(portNumber int) *Monitor {
	if portNumber < 1000 {
		fmt.Fprintf(os.Stderr,
			"Port number %d is assigned to the monitoring server, "+
				"which is not allowed. Using a random port instead.\n", portNumber)
		portNumber = 0
	}

	m.portNumber = portNumber

	return m
}

// RegisterServer registers the fieldbus server to be monitored.
func (m *Monitor) RegisterServer(s *server.Server) {
	m.server = s
}

// StartServer starts the monitor as a web server.
func (m *Monitor) StartServer() {
	r := mux.NewRouter()
	r.HandleFunc("/api/status", m.status)
	r.HandleFunc("/api/update", m.update)
	r.HandleFunc("/api/region/{kind}", m.region)
	r.HandleFunc("/api/server", m.serverState)
	r.HandleFunc("/api/resource", m.listResources)
	http.Handle("/", r)

	actualPort := ":0"
	if m.portNumber > 1000 {
		actualPort = ":" + strconv.Itoa(m.portNumber)
	}

	listener, err := net.Listen("tcp", actualPort)
	dieOnErr(err)

	m.url = fmt.Sprintf("http://localhost:%d",
		listener.Addr().(*net.TCPAddr).Port)
	fmt.Fprintf(os.Stderr, "Monitoring server with %s\n", m.url)

	go func() {
		err = http.Serve(listener, nil)
		dieOnErr(err)
	}()
}

// OpenDashboard opens the monitor in the default browser. StartServer must
// have been called.
func (m *Monitor) OpenDashboard() {
	if m.url == "" {
		panic("monitor is not started")
	}

	err := browser.OpenURL(m.url)
	dieOnErr(err)
}

func (m *Monitor) status(w http.ResponseWriter, _ *http.Request) {
	fmt.Fprintf(w,
		`{"name":%q,"mode":%q,"cycles":%d,"notifications":%t}`,
		m.server.Name(),
		m.server.Mode(),
		m.server.CycleCount(),
		m.server.ChangeNotificationsEnabled(),
	)
}

func (m *Monitor) update(w http.ResponseWriter, _ *http.Request) {
	m.server.Update()
	w.WriteHeader(http.StatusOK)
}

// region dumps a window of a region as hex. Query parameters offset and
// count select a byte window, defaulting to the first 64 bytes.
func (m *Monitor) region(w http.ResponseWriter, r *http.Request) {
	kind := mux.Vars(r)["kind"]

	data := m.regionBytesOr404(w, kind)
	if data == nil {
		return
	}

	offset, count, err := windowParams(r, len(data))
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprintf(w, "Error: %s", err)

		return
	}

	fmt.Fprintf(w, `{"kind":%q,"offset":%d,"bytes":%q}`,
		kind, offset, hex.EncodeToString(data[offset:offset+count]))
}

func (m *Monitor) regionBytesOr404(
	w http.ResponseWriter,
	kind string,
) []byte {
	img := m.server.Image()

	switch kind {
	case image.DiscreteInputs.String():
		return img.DiscreteInputs().Bytes()
	case image.Coils.String():
		return img.Coils().Bytes()
	case image.InputRegisters.String():
		return img.InputRegisters().Bytes()
	case image.HoldingRegisters.String():
		return img.HoldingRegisters().Bytes()
	default:
		w.WriteHeader(http.StatusNotFound)
		return nil
	}
}

func windowParams(r *http.Request, size int) (offset, count int, err error) {
	offset = 0
	count = 64

	if v := r.URL.Query().Get("offset"); v != "" {
		offset, err = strconv.Atoi(v)
		if err != nil {
			return 0, 0, err
		}
	}

	if v := r.URL.Query().Get("count"); v != "" {
		count, err = strconv.Atoi(v)
		if err != nil {
			return 0, 0, err
		}
	}

	if offset < 0 || count < 0 || offset > size {
		return 0, 0, fmt.Errorf(
			"window [%d, %d) is outside the region", offset, offset+count)
	}

	if offset+count > size {
		count = size - offset
	}

	return offset, count, nil
}

func (m *Monitor) serverState(w http.ResponseWriter, _ *http.Request) {
	serializer := goseth.NewSerializer()
	serializer.SetRoot(m.server)
	serializer.SetMaxDepth(1)

	err := serializer.Serialize(w)
	dieOnErr(err)
}

func (m *Monitor) listResources(w http.ResponseWriter, _ *http.Request) {
	p, err := process.NewProcess(int32(os.Getpid()))
	dieOnErr(err)

	cpuPercent, err := p.CPUPercent()
	dieOnErr(err)

	memInfo, err := p.MemoryInfo()
	dieOnErr(err)

	res := map[string]any{
		"cpu_percent": cpuPercent,
		"memory_rss":  memInfo.RSS,
	}

	err = json.NewEncoder(w).Encode(res)
	dieOnErr(err)
}

func dieOnErr(err error) {
	if err != nil {
		log.Panic(err)
	}
}
