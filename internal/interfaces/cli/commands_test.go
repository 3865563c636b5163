package cli

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/Trilemma-Dashboard/internal/application/dashboard"
	"github.com/turtacn/Trilemma-Dashboard/internal/config"
	"github.com/turtacn/Trilemma-Dashboard/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/Trilemma-Dashboard/internal/infrastructure/monitoring/logging"
	objstore "github.com/turtacn/Trilemma-Dashboard/internal/infrastructure/storage/minio"
	"github.com/turtacn/Trilemma-Dashboard/internal/interfaces/chart"
	httpapi "github.com/turtacn/Trilemma-Dashboard/internal/interfaces/http"
	"github.com/turtacn/Trilemma-Dashboard/internal/interfaces/http/handlers"
	"github.com/turtacn/Trilemma-Dashboard/internal/testutil"
	"github.com/turtacn/Trilemma-Dashboard/pkg/errors"
)

// ---------------------------------------------------------------------------
// view / options
// ---------------------------------------------------------------------------

func TestViewCommand_Text(t *testing.T) {
	out, err := runCLI(t, "--config", writeConfig(t, ""), "--no-color", "view", "--state", "SP", "--year", "2019")
	require.NoError(t, err)

	assert.Contains(t, out, dashboard.ChartTitle("SP"))
	assert.Contains(t, out, "(6.00, 8.00, 2.00)")
	assert.Contains(t, out, "Generic vector with X axis: 53.96°")
	assert.Contains(t, out, "Ideal vector with X axis: 54.74°")
	assert.Contains(t, out, "Dimensions compared among themselves")
}

func TestViewCommand_DefaultSelection(t *testing.T) {
	out, err := runCLI(t, "--config", writeConfig(t, ""), "-o", "json", "view")
	require.NoError(t, err)

	var vm dashboard.ViewModel
	require.NoError(t, json.Unmarshal([]byte(out), &vm))
	assert.Equal(t, "BA", vm.Selection.State)
	assert.Equal(t, "2018", vm.Selection.Year)
	assert.Equal(t, dashboard.Point{X: 0, Y: 4, Z: 4}, vm.Generic)
}

func TestViewCommand_UndefinedAngles(t *testing.T) {
	out, err := runCLI(t, "--config", writeConfig(t, ""), "-o", "table", "view", "--state", "RJ", "--year", "2020")
	require.NoError(t, err)

	assert.Contains(t, out, "KEY")
	for _, key := range []string{dashboard.KeyGenericX, dashboard.KeyGenericIdeal, dashboard.KeySecurityEquity} {
		assert.Regexp(t, key+`\s+.*`+dashboard.Placeholder, out)
	}
	assert.Contains(t, out, "54.74°", "ideal angles stay defined")
}

func TestViewCommand_NoDataForSelection(t *testing.T) {
	_, err := runCLI(t, "--config", writeConfig(t, ""), "view", "--state", "RJ", "--year", "2018")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeNoDataForSelection))
}

func TestViewCommand_DatasetMissing(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "trilemma.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("dataset:\n  location: /nonexistent/trilemma.csv\nlog:\n  level: error\n"), 0o644))

	_, err := runCLI(t, "--config", cfgPath, "view")
	assert.True(t, errors.IsCode(err, errors.ErrCodeDatasetUnavailable))
}

func TestOptionsCommand(t *testing.T) {
	cfgPath := writeConfig(t, "")

	out, err := runCLI(t, "--config", cfgPath, "options")
	require.NoError(t, err)
	assert.Contains(t, out, "States:  BA, RJ, SP")
	assert.Contains(t, out, "Years:   2018, 2019, 2020")

	out, err = runCLI(t, "--config", cfgPath, "-o", "table", "options")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, "BA     2018", lines[2])

	out, err = runCLI(t, "--config", cfgPath, "-o", "json", "options")
	require.NoError(t, err)
	var opts dashboard.Options
	require.NoError(t, json.Unmarshal([]byte(out), &opts))
	assert.Equal(t, []string{"BA", "RJ", "SP"}, opts.States)
}

// ---------------------------------------------------------------------------
// render
// ---------------------------------------------------------------------------

func TestRenderCommand_File(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "sp.html")
	out, err := runCLI(t, "--config", writeConfig(t, ""), "render", "--state", "SP", "--year", "2019", "--out", dest)
	require.NoError(t, err)
	assert.Contains(t, out, "OK: chart written to "+dest)

	page, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Contains(t, string(page), "echarts")
	assert.Contains(t, string(page), dashboard.ChartTitle("SP"))
}

type uploadRecorder struct {
	objstore.ObjectStorageRepository
	mu   sync.Mutex
	reqs []*objstore.UploadRequest
}

func (r *uploadRecorder) Upload(_ context.Context, req *objstore.UploadRequest) (*objstore.UploadResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reqs = append(r.reqs, req)
	return &objstore.UploadResult{Bucket: req.Bucket, ObjectKey: req.ObjectKey, Size: int64(len(req.Data))}, nil
}

func stubObjectStore(t *testing.T, repo objstore.ObjectStorageRepository) {
	t.Helper()
	orig := openObjectStore
	openObjectStore = func(cfg *config.Config, _ logging.Logger) (*objectStore, error) {
		if !cfg.MinIO.Enabled {
			return nil, nil
		}
		return &objectStore{
			repo:         repo,
			exportBucket: "exports",
			health:       func(context.Context) error { return nil },
			close:        func() error { return nil },
		}, nil
	}
	t.Cleanup(func() { openObjectStore = orig })
}

func TestRenderCommand_ExportBucket(t *testing.T) {
	rec := &uploadRecorder{}
	stubObjectStore(t, rec)
	cfgPath := writeConfig(t, "minio:\n  enabled: true\n  endpoint: minio:9000\n")

	out, err := runCLI(t, "--config", cfgPath, "render", "--state", "BA", "--year", "2018", "--out", "minio")
	require.NoError(t, err)
	assert.Contains(t, out, "minio://exports/charts/BA-2018.html")

	require.Len(t, rec.reqs, 1)
	assert.Equal(t, "text/html; charset=utf-8", rec.reqs[0].ContentType)
	assert.Equal(t, "BA", rec.reqs[0].Metadata["state"])
}

func TestRenderCommand_ExplicitObjectKey(t *testing.T) {
	rec := &uploadRecorder{}
	stubObjectStore(t, rec)
	cfgPath := writeConfig(t, "minio:\n  enabled: true\n  endpoint: minio:9000\n")

	_, err := runCLI(t, "--config", cfgPath, "render", "--state", "SP", "--year", "2018", "--out", "minio://reports/2018/sp.html")
	require.NoError(t, err)
	require.Len(t, rec.reqs, 1)
	assert.Equal(t, "reports", rec.reqs[0].Bucket)
	assert.Equal(t, "2018/sp.html", rec.reqs[0].ObjectKey)
}

func TestArtifactName(t *testing.T) {
	cases := map[string]struct{ state, year, want string }{
		"plain":      {"SP", "2019", "SP-2019"},
		"accented":   {"São Paulo", "2019", "São_Paulo-2019"},
		"traversal":  {"../../etc/passwd", "2019", "______etc_passwd-2019"},
		"backslash":  {`..\win`, "2020", "___win-2020"},
		"empty":      {"  ", "", "_-_"},
		"year slash": {"RJ", "20/20", "RJ-20_20"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			got := artifactName(tc.state, tc.year)
			assert.Equal(t, tc.want, got)
			assert.Equal(t, got, filepath.Base(got))
			assert.NotContains(t, got, "..")
		})
	}
}

func TestRenderCommand_ExportKeyStaysUnderCharts(t *testing.T) {
	rec := &uploadRecorder{}
	stubObjectStore(t, rec)
	csv := filepath.Join(t.TempDir(), "unsafe.csv")
	require.NoError(t, os.WriteFile(csv, []byte("Region,State,Equity 2020,Security 2020,Environmental 2020\nX,../../escape,1,2,3\n"), 0o644))
	cfgPath := filepath.Join(t.TempDir(), "trilemma.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("dataset:\n  location: "+strconv.Quote(csv)+"\nlog:\n  level: error\nminio:\n  enabled: true\n  endpoint: minio:9000\n"), 0o644))

	_, err := runCLI(t, "--config", cfgPath, "render", "--state", "../../escape", "--year", "2020", "--out", "minio")
	require.NoError(t, err)
	require.Len(t, rec.reqs, 1)
	assert.Equal(t, "charts/______escape-2020.html", rec.reqs[0].ObjectKey)
	assert.Equal(t, "../../escape", rec.reqs[0].Metadata["state"])
}

func TestRenderCommand_MinIODisabled(t *testing.T) {
	_, err := runCLI(t, "--config", writeConfig(t, ""), "render", "--out", "minio")
	assert.True(t, errors.IsValidation(err))
}

// ---------------------------------------------------------------------------
// remote mode
// ---------------------------------------------------------------------------

func newDashboardServer(t *testing.T) *httptest.Server {
	t.Helper()
	svc := dashboard.NewService(testutil.SampleTable(t), nil, nil, nil)
	srv := httptest.NewServer(httpapi.NewRouter(httpapi.RouterConfig{
		DashboardHandler: handlers.NewDashboardHandler(svc, chart.Options{}, nil),
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestViewCommand_Remote(t *testing.T) {
	srv := newDashboardServer(t)

	out, err := runCLI(t, "--config", writeConfig(t, ""), "--server", srv.URL, "-o", "json", "view", "--state", "SP", "--year", "2019")
	require.NoError(t, err)

	var vm dashboard.ViewModel
	require.NoError(t, json.Unmarshal([]byte(out), &vm))
	assert.Equal(t, dashboard.Point{X: 6, Y: 8, Z: 2}, vm.Generic)
	r, ok := vm.Readout(dashboard.KeyGenericX)
	require.True(t, ok)
	assert.Equal(t, "53.96°", r.Value)
}

func TestViewCommand_RemoteNoData(t *testing.T) {
	srv := newDashboardServer(t)

	_, err := runCLI(t, "--config", writeConfig(t, ""), "--server", srv.URL, "view", "--state", "XX", "--year", "1999")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeNoDataForSelection))
}

func TestOptionsCommand_Remote(t *testing.T) {
	srv := newDashboardServer(t)

	out, err := runCLI(t, "--config", writeConfig(t, ""), "--server", srv.URL, "options")
	require.NoError(t, err)
	assert.Contains(t, out, "Default: state=BA year=2018")
}

// ---------------------------------------------------------------------------
// events tail
// ---------------------------------------------------------------------------

type fakeConsumer struct {
	msgs    []*kafka.Message
	topic   string
	handler kafka.MessageHandler
	closed  bool
}

func (f *fakeConsumer) Subscribe(topic string, h kafka.MessageHandler) {
	f.topic = topic
	f.handler = h
}

func (f *fakeConsumer) Start(ctx context.Context) error {
	go func() {
		for _, m := range f.msgs {
			_ = f.handler(ctx, m)
		}
	}()
	return nil
}

func (f *fakeConsumer) Close() error {
	f.closed = true
	return nil
}

func viewEventMessage(t *testing.T, evt *dashboard.ViewComputedEvent) *kafka.Message {
	t.Helper()
	env, err := kafka.NewEventEnvelope(kafka.EventTypeViewComputed, "test", evt)
	require.NoError(t, err)
	pm, err := env.ToMessage(kafka.TopicViewComputed, evt.State)
	require.NoError(t, err)
	return &kafka.Message{Topic: pm.Topic, Key: pm.Key, Value: pm.Value}
}

func stubConsumer(t *testing.T, fc *fakeConsumer) *kafka.ConsumerConfig {
	t.Helper()
	var got kafka.ConsumerConfig
	orig := newEventConsumer
	newEventConsumer = func(cfg kafka.ConsumerConfig, _ logging.Logger) (eventConsumer, error) {
		got = cfg
		return fc, nil
	}
	t.Cleanup(func() { newEventConsumer = orig })
	return &got
}

func TestEventsTail(t *testing.T) {
	deg := 20.1
	at := time.Date(2026, 10, 17, 9, 30, 0, 0, time.UTC)
	fc := &fakeConsumer{msgs: []*kafka.Message{
		viewEventMessage(t, &dashboard.ViewComputedEvent{State: "SP", Year: "2019", Equity: 6, Security: 8, Environmental: 2, GenericIdealDeg: &deg, ComputedAt: at}),
		viewEventMessage(t, &dashboard.ViewComputedEvent{State: "RJ", Year: "2020", UndefinedAngles: []string{"generic_x", "generic_y"}, ComputedAt: at}),
		viewEventMessage(t, &dashboard.ViewComputedEvent{State: "BA", Year: "2018", ComputedAt: at}),
	}}
	got := stubConsumer(t, fc)

	out, err := runCLI(t, "--config", writeConfig(t, "kafka:\n  brokers: [\"k1:9092\"]\n"), "events", "tail", "--max", "2", "--from-beginning")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "2026-10-17T09:30:00Z  SP 2019  (6.00, 8.00, 2.00)  generic/ideal 20.10°  undefined: -", lines[0])
	assert.Contains(t, lines[1], "generic/ideal n/a  undefined: generic_x,generic_y")

	assert.True(t, fc.closed)
	assert.Equal(t, kafka.TopicViewComputed, fc.topic)
	assert.Equal(t, []string{"k1:9092"}, got.Brokers)
	assert.Equal(t, config.DefaultKafkaGroupID, got.GroupID)
	assert.Equal(t, "earliest", got.AutoOffsetReset)
}

func TestEventsTail_JSON(t *testing.T) {
	fc := &fakeConsumer{msgs: []*kafka.Message{
		viewEventMessage(t, &dashboard.ViewComputedEvent{EventID: "e-1", State: "SP", Year: "2019"}),
	}}
	got := stubConsumer(t, fc)

	out, err := runCLI(t, "--config", writeConfig(t, ""), "-o", "json", "events", "tail", "--max", "1", "--group", "ops")
	require.NoError(t, err)

	var evt dashboard.ViewComputedEvent
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(out)), &evt))
	assert.Equal(t, "e-1", evt.EventID)
	assert.Equal(t, "ops", got.GroupID)
	assert.Equal(t, "latest", got.AutoOffsetReset)
}

func TestEventPrinter_RejectsGarbage(t *testing.T) {
	p := &eventPrinter{cmd: NewRootCommand(), done: func() {}}
	err := p.handle(context.Background(), &kafka.Message{Value: []byte("not json")})
	assert.True(t, errors.IsCode(err, errors.ErrCodeSerialization))
}

//Personal.AI order the ending
