package routes

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"gloves/internal/models"
	"gloves/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeNetwork struct{ status models.NetworkStatus }

func (f fakeNetwork) Status() models.NetworkStatus { return f.status }

type fakeHardware struct {
	info *models.HardwareInfo
	err  error
}

func (f fakeHardware) Get() (*models.HardwareInfo, error) { return f.info, f.err }

type fakeMotion struct {
	sample  models.MotionSample
	err     error
	history []models.MotionSample
}

func (f fakeMotion) Sample(context.Context) (models.MotionSample, error) { return f.sample, f.err }

func (f fakeMotion) Latest() (models.MotionSample, bool) { return f.sample, true }

func (f fakeMotion) History(time.Duration) []models.MotionSample { return f.history }

// The same motion service feeds the handlers and the stream hub.
var _ MotionService = (*services.MotionCollector)(nil)

var connected = models.NetworkStatus{
	NetworkInfo: models.NetworkInfo{
		SSID:    "IoT",
		MAC:     "A4:CF:12:0B:3E:7F",
		IP:      "192.168.1.42",
		Netmask: "255.255.255.0",
		Gateway: "192.168.1.1",
		DNS1:    "8.8.8.8",
	},
	State: models.StationConnected,
}

func testDeps() Dependencies {
	return Dependencies{
		Network: fakeNetwork{status: connected},
		Hardware: fakeHardware{info: &models.HardwareInfo{
			Chip:     "ESP32-C3",
			Cores:    1,
			CPUFreq:  160,
			RAM:      models.RAMInfo{Total: 400, FreeHeap: 250, MinFreeHeap: 200},
			Features: models.Features{WiFi: true, BLE: true},
		}},
		Motion: fakeMotion{
			sample: models.MotionSample{
				MPU1: models.Axes{1, 2, 3},
				MPU2: models.Axes{4, 5, 6},
				MPU3: models.Axes{7, 8, 9},
			},
			history: []models.MotionSample{{MPU1: models.Axes{1, 1, 1}}},
		},
		StartedAt: time.Now(),
	}
}

func newTestRouter(deps Dependencies) *gin.Engine {
	gin.SetMode(gin.TestMode)
	return NewRouter(deps, RouterOptions{RateLimit: 1000, RateBurst: 1000, Logger: zerolog.Nop()})
}

func get(r http.Handler, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestRoot(t *testing.T) {
	w := get(newTestRouter(testDeps()), "/")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "esp gloves", w.Body.String())
	assert.True(t, strings.HasPrefix(w.Header().Get("Content-Type"), "text/plain"))
	assert.Equal(t, "close", w.Header().Get("Connection"))
}

func TestStatus(t *testing.T) {
	w := get(newTestRouter(testDeps()), "/v1/status")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestTeapot(t *testing.T) {
	w := get(newTestRouter(testDeps()), "/teapot")
	assert.Equal(t, http.StatusTeapot, w.Code)
	assert.Equal(t, "I'm a teapot", w.Body.String())
}

func TestMotion(t *testing.T) {
	w := get(newTestRouter(testDeps()), "/v1/mpu")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"mpu1":[1,2,3],"mpu2":[4,5,6],"mpu3":[7,8,9]}`, w.Body.String())
}

func TestMotionSensorError(t *testing.T) {
	deps := testDeps()
	deps.Motion = fakeMotion{err: errors.New("i2c nack")}
	w := get(newTestRouter(deps), "/v1/mpu")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.JSONEq(t, `{"error":"i2c nack"}`, w.Body.String())
}

func TestMotionHistory(t *testing.T) {
	r := newTestRouter(testDeps())

	w := get(r, "/v1/mpu/history?duration=30s")
	assert.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Duration string                `json:"duration"`
		Count    int                   `json:"count"`
		Data     []models.MotionSample `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "30s", body.Duration)
	assert.Equal(t, 1, body.Count)

	w = get(r, "/v1/mpu/history?duration=soon")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestInfo(t *testing.T) {
	w := get(newTestRouter(testDeps()), "/v1/info")
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))

	network := body["network"]
	assert.Equal(t, "A4:CF:12:0B:3E:7F", network["mac"])
	assert.Equal(t, "IoT", network["ssid"])
	assert.Equal(t, "192.168.1.42", network["ip"])
	assert.Equal(t, "255.255.255.0", network["netmask"])
	assert.Equal(t, "192.168.1.1", network["gateway"])
	assert.Equal(t, "8.8.8.8", network["dns1"])
	assert.Equal(t, "", network["dns2"])
	assert.Equal(t, "connected", network["state"])

	assert.Equal(t, "ESP Gloves", body["software"]["name"])
	assert.Equal(t, "1.0.0", body["software"]["version"])
	assert.Contains(t, body["software"]["idf_version"], "go")

	hardware := body["hardware"]
	assert.Equal(t, "ESP32-C3", hardware["chip"])
	assert.EqualValues(t, 160, hardware["cpu_freq"])
	assert.Equal(t, map[string]any{"wifi": true, "bt": false, "ble": true}, hardware["features"])
	assert.Equal(t, map[string]any{"total": 400.0, "free_heap": 250.0, "min_free_heap": 200.0}, hardware["ram"])
}

func TestInfoBeforeConnection(t *testing.T) {
	deps := testDeps()
	deps.Network = fakeNetwork{status: models.NetworkStatus{State: models.StationConnecting}}
	w := get(newTestRouter(deps), "/v1/info")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Network models.NetworkStatus `json:"network"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, models.NetworkInfo{}, body.Network.NetworkInfo)
	assert.Equal(t, models.StationConnecting, body.Network.State)
}

func TestInfoHardwareError(t *testing.T) {
	deps := testDeps()
	deps.Hardware = fakeHardware{err: errors.New("failed to get memory usage")}
	w := get(newTestRouter(deps), "/v1/info")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestWebSocketStream(t *testing.T) {
	deps := testDeps()
	hub := services.NewWebSocketHub(deps.Motion, deps.Network, 10*time.Millisecond, zerolog.Nop())
	defer hub.Stop()
	deps.Hub = hub

	srv := httptest.NewServer(newTestRouter(deps))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/v1/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg struct {
		Type string                 `json:"type"`
		Data services.StreamPayload `json:"data"`
	}
	for msg.Type != "stream" {
		require.NoError(t, conn.ReadJSON(&msg))
	}
	assert.Equal(t, "192.168.1.42", msg.Data.Network.IP)
	require.NotNil(t, msg.Data.Motion)
	assert.Equal(t, models.Axes{4, 5, 6}, msg.Data.Motion.MPU2)

	require.NoError(t, conn.WriteJSON(map[string]string{"type": "ping"}))
	for msg.Type != "pong" {
		require.NoError(t, conn.ReadJSON(&msg))
	}
}
