package main

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	apiweight "weighthub/api/weight"
	weightapp "weighthub/application/weight"
	"weighthub/domain/shared"
	"weighthub/infrastructure/persistence/memory"
	"weighthub/infrastructure/persistence/retry"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startServer(t *testing.T) string {
	t.Helper()
	gin.SetMode(gin.TestMode)
	svc := weightapp.NewApplicationService(
		memory.NewWeightRepository(),
		memory.NewUnitOfWorkFactory(shared.NewEventBus(), retry.DefaultConfig),
		nil,
		100,
	)
	engine := gin.New()
	apiweight.NewController(svc).RegisterRoutes(engine.Group("/api/v1"))
	srv := httptest.NewServer(engine)
	t.Cleanup(srv.Close)
	return srv.URL
}

func runCLI(t *testing.T, server string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	app := newApp()
	app.Writer = &out
	app.ErrWriter = &out
	err := app.Run(append([]string{"weightctl", "--server", server}, args...))
	return out.String(), err
}

func TestWeightctlLifecycle(t *testing.T) {
	server := startServer(t)

	out, err := runCLI(t, server, "create", "--name", "rtdetr", "--local-path", "/m/rtdetr.onnx")
	require.NoError(t, err)
	var created map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &created))
	assert.EqualValues(t, 1, created["id"])

	_, err = runCLI(t, server, "update", "--id", "1", "--name", "rtdetr-l", "--local-path", "/m/rtdetr-l.onnx", "--enable", "0")
	require.NoError(t, err)

	out, err = runCLI(t, server, "get", "--id", "1")
	require.NoError(t, err)
	var record weightapp.WeightRecord
	require.NoError(t, json.Unmarshal([]byte(out), &record))
	assert.Equal(t, weightapp.WeightRecord{ID: 1, Name: "rtdetr-l", LocalPath: "/m/rtdetr-l.onnx", Enable: 0}, record)

	out, err = runCLI(t, server, "list", "--enable", "0", "--weight", "RTDETR")
	require.NoError(t, err)
	var page weightapp.ListWeightResult
	require.NoError(t, json.Unmarshal([]byte(out), &page))
	assert.EqualValues(t, 1, page.Total)

	_, err = runCLI(t, server, "resolve", "--id", "1")
	assert.ErrorContains(t, err, "WEIGHT_DISABLED")

	_, err = runCLI(t, server, "delete", "--id", "1")
	require.NoError(t, err)

	_, err = runCLI(t, server, "get", "--id", "1")
	assert.ErrorContains(t, err, "404")
}

func TestWeightctlRequiresID(t *testing.T) {
	_, err := runCLI(t, "http://127.0.0.1:1", "delete")
	assert.ErrorContains(t, err, "--id")
}

func TestWeightctlUpdateRequiresEnable(t *testing.T) {
	server := startServer(t)

	_, err := runCLI(t, server, "create", "--name", "sam", "--local-path", "/m/sam.onnx", "--enable", "0")
	require.NoError(t, err)

	_, err = runCLI(t, server, "update", "--id", "1", "--name", "sam-b", "--local-path", "/m/sam-b.onnx")
	assert.ErrorContains(t, err, "--enable")

	out, err := runCLI(t, server, "get", "--id", "1")
	require.NoError(t, err)
	var record weightapp.WeightRecord
	require.NoError(t, json.Unmarshal([]byte(out), &record))
	assert.Equal(t, "sam", record.Name)
	assert.Equal(t, 0, record.Enable)
}
