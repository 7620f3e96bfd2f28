//go:build e2e

// test/e2e/e2e_test.go
package e2e

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"docugen-workers/internal/common/camunda"
	"docugen-workers/internal/common/config"
	"docugen-workers/internal/common/database"
	"docugen-workers/internal/common/logger"
	"docugen-workers/internal/docugen/audit"
	"docugen-workers/internal/docugen/cache"
	"docugen-workers/internal/docugen/catalog"
	"docugen-workers/internal/docugen/pipeline"
	generatedocument "docugen-workers/internal/workers/docugen/generate-document"
	listtemplates "docugen-workers/internal/workers/docugen/list-templates"
	"docugen-workers/pkg/registry"
)

const processID = "docugen-e2e"

// A two-step process: list the templates for the profile, then generate one.
const processBPMN = `<?xml version="1.0" encoding="UTF-8"?>
<bpmn:definitions xmlns:bpmn="http://www.omg.org/spec/BPMN/20100524/MODEL"
  xmlns:zeebe="http://camunda.org/schema/zeebe/1.0"
  id="docugen-e2e-definitions" targetNamespace="http://bpmn.io/schema/bpmn">
  <bpmn:process id="docugen-e2e" isExecutable="true">
    <bpmn:startEvent id="start" />
    <bpmn:sequenceFlow id="f1" sourceRef="start" targetRef="list" />
    <bpmn:serviceTask id="list" name="List templates">
      <bpmn:extensionElements>
        <zeebe:taskDefinition type="docugen-list-templates" />
        <zeebe:ioMapping>
          <zeebe:input source="=null" target="templateId" />
          <zeebe:input source="=companyProfile.size" target="size" />
          <zeebe:input source="=companyProfile.sector" target="sector" />
          <zeebe:output source="=count" target="applicableTemplates" />
        </zeebe:ioMapping>
      </bpmn:extensionElements>
    </bpmn:serviceTask>
    <bpmn:sequenceFlow id="f2" sourceRef="list" targetRef="generate" />
    <bpmn:serviceTask id="generate" name="Generate document">
      <bpmn:extensionElements>
        <zeebe:taskDefinition type="docugen-generate-document" retries="3" />
      </bpmn:extensionElements>
    </bpmn:serviceTask>
    <bpmn:sequenceFlow id="f3" sourceRef="generate" targetRef="end" />
    <bpmn:endEvent id="end" />
  </bpmn:process>
</bpmn:definitions>
`

var (
	zeebeClient zbc.Client
	zapLog      *zap.Logger
)

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func TestMain(m *testing.M) {
	var err error

	zeebeClient, err = zbc.NewClient(&zbc.ClientConfig{
		GatewayAddress:         getEnv("ZEEBE_ADDRESS", "localhost:26500"),
		UsePlaintextConnection: true,
	})
	if err != nil {
		panic(fmt.Sprintf("failed to connect to Zeebe: %v", err))
	}

	zapLog, _ = zap.NewDevelopment()

	code := m.Run()

	zeebeClient.Close()
	os.Exit(code)
}

type stores struct {
	pg    *database.PostgresClient
	redis *database.RedisClient
}

func TestFullE2E(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	cfg, err := config.Load()
	require.NoError(t, err)

	s := connectStores(ctx, t, cfg)
	defer s.pg.Close()
	defer s.redis.Close()

	log := logger.NewZapAdapter(zapLog)
	workers := startWorkers(ctx, t, cfg, s, log)
	defer workers.Close()

	deployProcess(ctx, t)

	request := map[string]interface{}{
		"templateId": "plan_action_LMRSST_v1",
		"companyProfile": map[string]interface{}{
			"name":   "Boulangerie Dubois",
			"size":   15,
			"sector": "commerce",
		},
		"curatedKnowledgeItems": []string{"Former les employés à la manutention"},
		"additionalData":        map[string]interface{}{"alss_name": "Jean Tremblay"},
		"outputFormat":          "markdown",
	}

	first := runInstance(ctx, t, request)
	assert.Equal(t, float64(3), first["applicableTemplates"])
	assert.Equal(t, false, first["cached"])

	doc := first["document"].(map[string]interface{})
	assert.Equal(t, "plan_action_LMRSST_v1", doc["templateId"])
	assert.Contains(t, doc["content"], "Jean Tremblay")

	trace := doc["traceability"].(map[string]interface{})
	hash := trace["documentHash"].(string)
	require.NotEmpty(t, hash)

	t.Run("audit record persisted", func(t *testing.T) {
		var templateID string
		err := s.pg.DB.QueryRowContext(ctx,
			"SELECT template_id FROM document_audit WHERE document_hash = $1", hash).Scan(&templateID)
		require.NoError(t, err)
		assert.Equal(t, "plan_action_LMRSST_v1", templateID)

		exists, err := s.redis.Client.Exists(ctx, audit.GuardKey(hash)).Result()
		require.NoError(t, err)
		assert.Equal(t, int64(1), exists)
	})

	t.Run("second instance served from cache", func(t *testing.T) {
		second := runInstance(ctx, t, request)
		assert.Equal(t, true, second["cached"])
		assert.Equal(t, doc["id"], second["document"].(map[string]interface{})["id"])
	})

	t.Run("missing required field does not complete", func(t *testing.T) {
		bad := map[string]interface{}{
			"templateId":     "plan_action_LMRSST_v1",
			"companyProfile": map[string]interface{}{"name": "Sans ALSS", "size": 15, "sector": "commerce"},
			"outputFormat":   "markdown",
		}
		cmd, err := zeebeClient.NewCreateInstanceCommand().
			BPMNProcessId(processID).
			LatestVersion().
			VariablesFromObject(bad)
		require.NoError(t, err)

		short, cancel := context.WithTimeout(ctx, 15*time.Second)
		defer cancel()
		_, err = cmd.WithResult().Send(short)
		// No boundary event catches MISSING_REQUIRED_FIELD, so the instance
		// never completes.
		assert.Error(t, err)
	})
}

func connectStores(ctx context.Context, t *testing.T, cfg *config.Config) *stores {
	t.Helper()

	cfg.Database.Postgres.Host = getEnv("POSTGRES_HOST", "localhost")
	cfg.Database.Redis.Address = getEnv("REDIS_ADDRESS", "localhost:6379")

	pg, err := database.NewPostgres(cfg.Database.Postgres)
	require.NoError(t, err, "PostgreSQL connection failed")
	require.NoError(t, pg.Ping(ctx), "PostgreSQL ping failed")

	rdb, err := database.NewRedis(cfg.Database.Redis)
	require.NoError(t, err, "Redis client creation failed")
	require.NoError(t, rdb.Ping(ctx), "Redis ping failed")

	_, err = zeebeClient.NewTopologyCommand().Send(ctx)
	require.NoError(t, err, "Zeebe topology request failed")

	// Each run starts from an empty cache so the first instance generates.
	require.NoError(t, rdb.Client.FlushDB(ctx).Err())

	return &stores{pg: pg, redis: rdb}
}

func startWorkers(ctx context.Context, t *testing.T, cfg *config.Config, s *stores, log logger.Logger) *camunda.Workers {
	t.Helper()

	store := audit.NewPostgresStore(s.pg.DB)
	require.NoError(t, store.EnsureSchema(ctx))

	cat, err := catalog.Default()
	require.NoError(t, err)
	p := pipeline.New(cat, log,
		pipeline.WithAuditStore(audit.NewRedisGuard(s.redis.Client, store, time.Hour, log)))

	reg, err := registry.LoadRegistry("../../configs/activity-registry.json")
	require.NoError(t, err)
	activity, ok := reg.ByTaskType(generatedocument.TaskType)
	require.True(t, ok)

	genCfg := generatedocument.LoadConfig()
	genCfg.CacheEnabled = true
	gen := generatedocument.NewHandler(genCfg, generatedocument.Dependencies{
		Pipeline:    p,
		Cache:       cache.New(s.redis.Client, time.Hour, log),
		InputSchema: activity.InputSchema,
	}, log)
	list := listtemplates.NewHandler(listtemplates.LoadConfig(), p, log)

	workers := camunda.NewWorkers(zeebeClient, log)
	require.True(t, workers.Start(generatedocument.TaskType, config.GetWorkerConfig(cfg, generatedocument.TaskType), gen))
	require.True(t, workers.Start(listtemplates.TaskType, config.GetWorkerConfig(cfg, listtemplates.TaskType), list))
	return workers
}

func deployProcess(ctx context.Context, t *testing.T) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "docugen-e2e.bpmn")
	require.NoError(t, os.WriteFile(path, []byte(processBPMN), 0o644))

	_, err := zeebeClient.NewDeployResourceCommand().AddResourceFile(path).Send(ctx)
	require.NoError(t, err, "BPMN deployment failed")
}

func runInstance(ctx context.Context, t *testing.T, variables interface{}) map[string]interface{} {
	t.Helper()

	cmd, err := zeebeClient.NewCreateInstanceCommand().
		BPMNProcessId(processID).
		LatestVersion().
		VariablesFromObject(variables)
	require.NoError(t, err)

	res, err := cmd.WithResult().Send(ctx)
	require.NoError(t, err)

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(res.GetVariables()), &out))
	return out
}
