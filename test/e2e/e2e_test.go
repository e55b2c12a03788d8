// test/e2e/e2e_test.go
package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"atio-knowledge-base/internal/catalog"
	"atio-knowledge-base/internal/common/camunda"
	"atio-knowledge-base/internal/common/config"
	"atio-knowledge-base/internal/common/database"
	"atio-knowledge-base/internal/common/errors"
	"atio-knowledge-base/internal/common/logger"
	"atio-knowledge-base/internal/common/observability"
	"atio-knowledge-base/internal/models"
	"atio-knowledge-base/pkg/registry"

	browsetechnologies "atio-knowledge-base/internal/workers/catalog/browse-technologies"
	parsecatalogfilters "atio-knowledge-base/internal/workers/catalog/parse-catalog-filters"
	queryelasticsearch "atio-knowledge-base/internal/workers/data-access/query-elasticsearch"
	esqueries "atio-knowledge-base/internal/workers/data-access/query-elasticsearch/queries"
	querypostgresql "atio-knowledge-base/internal/workers/data-access/query-postgresql"
	matchbycontext "atio-knowledge-base/internal/workers/recommendation/match-by-context"
	rankbyprofile "atio-knowledge-base/internal/workers/recommendation/rank-by-profile"
)

// The suite talks to a real Zeebe gateway and runs only when
// E2E_ZEEBE_ADDRESS is set. Postgres and Elasticsearch scenarios also need
// the stores from configs/config.yaml to be reachable and are skipped
// otherwise.
var (
	zeebeClient zbc.Client
	zapLog      *zap.Logger
	inst        camunda.Instrumentation
	reg         *registry.ActivityRegistry
)

func TestMain(m *testing.M) {
	address := os.Getenv("E2E_ZEEBE_ADDRESS")
	if address == "" {
		fmt.Println("E2E_ZEEBE_ADDRESS not set, skipping end-to-end tests")
		os.Exit(0)
	}

	client, err := camunda.NewClientWithConfig(&camunda.ClientConfig{
		GatewayAddress:         address,
		UsePlaintextConnection: true,
	})
	if err != nil {
		fmt.Printf("failed to connect to Zeebe at %s: %v\n", address, err)
		os.Exit(1)
	}
	zeebeClient = client.GetClient()

	zapLog, _ = zap.NewDevelopment()
	log := logger.NewZapAdapter(zapLog)

	obs, err := observability.New("atio-e2e", prometheus.NewRegistry())
	if err != nil {
		fmt.Printf("observability setup failed: %v\n", err)
		os.Exit(1)
	}
	inst = camunda.Instrumentation{Obs: obs, Failer: errors.NewErrorHandler(log), Logger: log}

	reg, err = registry.LoadRegistry("../../configs/activity-registry.json")
	if err != nil {
		fmt.Printf("failed to load activity registry: %v\n", err)
		os.Exit(1)
	}

	code := m.Run()

	_ = obs.Shutdown(context.Background())
	client.Close()
	os.Exit(code)
}

// ==========================
// Helpers
// ==========================

const serviceTaskProcess = `<?xml version="1.0" encoding="UTF-8"?>
<bpmn:definitions xmlns:bpmn="http://www.omg.org/spec/BPMN/20100524/MODEL"
  xmlns:zeebe="http://camunda.org/schema/zeebe/1.0"
  id="definitions_%[1]s" targetNamespace="http://bpmn.io/schema/bpmn">
  <bpmn:process id="%[1]s" isExecutable="true">
    <bpmn:startEvent id="start"><bpmn:outgoing>to_first</bpmn:outgoing></bpmn:startEvent>
    %[2]s
    <bpmn:endEvent id="end"><bpmn:incoming>%[3]s</bpmn:incoming></bpmn:endEvent>
  </bpmn:process>
</bpmn:definitions>`

// task renders one service task. outputs maps job result variables onto
// process variables so the next task can read them.
func task(id, taskType, incoming, outgoing string, outputs map[string]string) string {
	mapping := ""
	if len(outputs) > 0 {
		mapping = "<zeebe:ioMapping>"
		for source, target := range outputs {
			mapping += fmt.Sprintf(`<zeebe:output source="=%s" target="%s"/>`, source, target)
		}
		mapping += "</zeebe:ioMapping>"
	}
	return fmt.Sprintf(`<bpmn:serviceTask id="%[1]s">
      <bpmn:extensionElements><zeebe:taskDefinition type="%[2]s" retries="3"/>%[5]s</bpmn:extensionElements>
      <bpmn:incoming>%[3]s</bpmn:incoming><bpmn:outgoing>%[4]s</bpmn:outgoing>
    </bpmn:serviceTask>`, id, taskType, incoming, outgoing, mapping)
}

func flow(id, from, to string) string {
	return fmt.Sprintf(`<bpmn:sequenceFlow id="%s" sourceRef="%s" targetRef="%s"/>`, id, from, to)
}

func deploy(t *testing.T, processID, body, last string) {
	t.Helper()
	xml := fmt.Sprintf(serviceTaskProcess, processID, body, last)
	_, err := zeebeClient.NewDeployResourceCommand().
		AddResource([]byte(xml), processID+".bpmn").
		Send(context.Background())
	require.NoError(t, err)
}

// serve opens an instrumented job worker for the duration of the test.
func serve(t *testing.T, taskType string, handle worker.JobHandler) {
	t.Helper()
	w := zeebeClient.NewJobWorker().
		JobType(taskType).
		Handler(camunda.Instrument(taskType, reg.InputSchemaFor(taskType), handle, inst)).
		MaxJobsActive(5).
		Timeout(10 * time.Second).
		PollInterval(100 * time.Millisecond).
		Open()
	t.Cleanup(w.Close)
}

// run starts processID and waits for it to finish, returning its variables.
func run(t *testing.T, processID string, vars map[string]interface{}, out interface{}) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cmd, err := zeebeClient.NewCreateInstanceCommand().
		BPMNProcessId(processID).
		LatestVersion().
		VariablesFromMap(vars)
	require.NoError(t, err)

	res, err := cmd.WithResult().Send(ctx)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(res.GetVariables()), out))
}

func seedSource(t *testing.T) catalog.StaticSource {
	t.Helper()
	records, err := catalog.Seed()
	require.NoError(t, err)
	return catalog.StaticSource(records)
}

func testLogger() logger.Logger {
	return logger.NewZapAdapter(zapLog)
}

// ==========================
// Recommendation Flows
// ==========================

func TestE2E_RankByProfile(t *testing.T) {
	h := rankbyprofile.NewHandler(rankbyprofile.LoadConfig(), seedSource(t), testLogger())
	serve(t, rankbyprofile.TaskType, h.Handle)

	processID := "e2e-rank-by-profile"
	deploy(t, processID,
		task("rank", rankbyprofile.TaskType, "to_first", "to_end", nil)+flow("to_first", "start", "rank")+flow("to_end", "rank", "end"),
		"to_end")

	var result rankbyprofile.Output
	run(t, processID, map[string]interface{}{
		"userProfile": map[string]interface{}{"region": "South Asia", "budget": "Low", "priority": "cost"},
		"limit":       3,
	}, &result)

	require.Equal(t, 3, result.Count)
	assert.Equal(t, "Drought-Resistant Seeds", result.Recommendations[0].Technology.Name)
	assert.NotEmpty(t, result.RequestID)
}

func TestE2E_MatchByContext(t *testing.T) {
	h := matchbycontext.NewHandler(matchbycontext.LoadConfig(), seedSource(t), testLogger())
	serve(t, matchbycontext.TaskType, h.Handle)

	processID := "e2e-match-by-context"
	deploy(t, processID,
		task("match", matchbycontext.TaskType, "to_first", "to_end", nil)+flow("to_first", "start", "match")+flow("to_end", "match", "end"),
		"to_end")

	var result matchbycontext.Output
	run(t, processID, map[string]interface{}{
		"userContext": map[string]interface{}{"region": "South Asia", "incomeLevel": string(models.IncomeLow)},
	}, &result)

	require.NotEmpty(t, result.Matches)
	assert.False(t, result.ContextEmpty)
	for _, m := range result.Matches {
		assert.NotEqual(t, models.CostHigh, m.Technology.Cost, m.Technology.Name)
	}
}

// ==========================
// Catalog Flow
// ==========================

func TestE2E_ParseFiltersThenBrowse(t *testing.T) {
	parse := parsecatalogfilters.NewHandler(parsecatalogfilters.LoadConfig(), testLogger())
	browse := browsetechnologies.NewHandler(browsetechnologies.LoadConfig(), seedSource(t), testLogger())
	serve(t, parsecatalogfilters.TaskType, parse.Handle)
	serve(t, browsetechnologies.TaskType, browse.Handle)

	processID := "e2e-catalog-browse"
	deploy(t, processID,
		task("parse", parsecatalogfilters.TaskType, "to_first", "to_browse", map[string]string{"parsedFilters": "filters"})+
			task("browse", browsetechnologies.TaskType, "to_browse", "to_end", nil)+
			flow("to_first", "start", "parse")+flow("to_browse", "parse", "browse")+flow("to_end", "browse", "end"),
		"to_end")

	var result browsetechnologies.Output
	run(t, processID, map[string]interface{}{
		"rawFilters": map[string]interface{}{"category": "Water Management", "maxCost": "Medium"},
	}, &result)

	require.Len(t, result.Technologies, 2)
	assert.Equal(t, "Drip Irrigation", result.Technologies[0].Name)
	assert.Equal(t, "Rainwater Harvesting", result.Technologies[1].Name)
	assert.Equal(t, 10, result.Stats.Total)
}

// ==========================
// Data Access
// ==========================

func loadConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Load()
	if err != nil {
		t.Skipf("config not loadable: %v", err)
	}
	return cfg
}

func TestE2E_QueryPostgreSQL(t *testing.T) {
	cfg := loadConfig(t)
	ctx := context.Background()

	pg, err := database.NewPostgres(cfg.Database.Postgres)
	require.NoError(t, err)
	defer pg.Close()
	if err := pg.Ping(ctx); err != nil {
		t.Skipf("postgres unreachable: %v", err)
	}
	require.NoError(t, pg.EnsureSchema(ctx))
	for _, rec := range seedSource(t) {
		require.NoError(t, catalog.UpsertTechnology(ctx, pg.DB, rec))
	}

	h := querypostgresql.NewHandler(querypostgresql.LoadConfig(), pg.DB, testLogger())

	out, err := h.Execute(ctx, &querypostgresql.Input{
		QueryType: string(querypostgresql.QueryTypeTechnologyComparison),
		Params:    map[string]interface{}{"ids": "1,3"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, out.RowCount)

	_, err = h.Execute(ctx, &querypostgresql.Input{QueryType: "unknown"})
	assert.Error(t, err)
}

func TestE2E_QueryElasticsearch(t *testing.T) {
	cfg := loadConfig(t)
	ctx := context.Background()
	index := "technologies-e2e"

	es, err := database.NewElasticsearch(cfg.Database.Elasticsearch)
	require.NoError(t, err)
	if err := es.Ping(ctx); err != nil {
		t.Skipf("elasticsearch unreachable: %v", err)
	}
	_, err = es.EnsureIndex(ctx, index)
	require.NoError(t, err)
	t.Cleanup(func() {
		res, err := es.Client.Indices.Delete([]string{index})
		if err == nil {
			res.Body.Close()
		}
	})

	for _, rec := range seedSource(t) {
		body, err := json.Marshal(rec)
		require.NoError(t, err)
		res, err := es.Client.Index(index, bytes.NewReader(body),
			es.Client.Index.WithDocumentID(fmt.Sprint(rec.ID)),
			es.Client.Index.WithRefresh("true"))
		require.NoError(t, err)
		res.Body.Close()
	}

	cfgES := queryelasticsearch.LoadConfig()
	cfgES.IndexName = index
	h := queryelasticsearch.NewHandler(cfgES, es.Client, testLogger())

	out, err := h.Execute(ctx, &queryelasticsearch.Input{
		QueryType: esqueries.QueryTypeTechnologySearch,
		Filters:   esqueries.Filters{Search: "irrigation"},
	})
	require.NoError(t, err)
	require.NotEmpty(t, out.Data)
	assert.Equal(t, "Drip Irrigation", out.Data[0]["name"])

	_, err = h.Execute(ctx, &queryelasticsearch.Input{
		IndexName: "does-not-exist-e2e",
		QueryType: esqueries.QueryTypeTechnologySearch,
	})
	assert.Error(t, err)
}
