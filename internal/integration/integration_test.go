package integration

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"worldquiz/internal/app"
	"worldquiz/internal/dataset"
	"worldquiz/internal/domain"
	infraredis "worldquiz/internal/infra/redis"
	"worldquiz/internal/infra/store"
)

func TestQuizRunEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	st, err := store.Open(ctx, store.DriverPostgres, pgURL)
	if err != nil {
		t.Fatalf("open postgres store: %v", err)
	}
	defer st.Close()
	if err := st.InitializeSchema(ctx); err != nil {
		t.Fatalf("initialize schema: %v", err)
	}

	var notified []bool
	importer := app.NewImporter(st, func(success bool) { notified = append(notified, success) })
	report, err := importer.ImportAsync(ctx, dataset.Bundled()).Wait(ctx)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	count, err := st.CountReferenceEntries(ctx)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != report.Imported || count == 0 {
		t.Fatalf("expected %d rows, got %d", report.Imported, count)
	}
	if len(notified) != 1 || !notified[0] {
		t.Fatalf("expected one success notification, got %v", notified)
	}

	redisClient, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}
	defer redisClient.Close()

	ledger := infraredis.NewRunLedger(redisClient, 5*time.Minute)
	history := infraredis.NewResultHistory(redisClient, st, 5*time.Minute)
	service := app.NewQuizService(st, app.NewQuestionGenerator(st), ledger, history)

	run, err := service.StartRun(ctx)
	if err != nil {
		t.Fatalf("start run: %v", err)
	}
	if run.Total() != app.DefaultQuestionCount {
		t.Fatalf("expected %d questions, got %d", app.DefaultQuestionCount, run.Total())
	}
	for !run.IsComplete() {
		question, _ := run.Current()
		if _, err := run.Answer(question.CorrectIndex); err != nil {
			t.Fatalf("answer: %v", err)
		}
	}

	if _, recorded, err := service.Finish(ctx, run); err != nil || !recorded {
		t.Fatalf("finish: recorded=%v err=%v", recorded, err)
	}
	if _, recorded, err := service.Finish(ctx, run); err != nil || recorded {
		t.Fatalf("expected second finish to be ignored: recorded=%v err=%v", recorded, err)
	}

	results, err := service.Results(ctx)
	if err != nil {
		t.Fatalf("results: %v", err)
	}
	if len(results) != 1 || results[0].Score != app.DefaultQuestionCount {
		t.Fatalf("unexpected results %+v", results)
	}

	if _, err := st.RecordQuizResult(ctx, "manual", 7, 6); !errors.Is(err, domain.ErrInvalidScore) {
		t.Fatalf("expected ErrInvalidScore, got %v", err)
	}

	if err := st.ResetSchema(ctx); err != nil {
		t.Fatalf("reset schema: %v", err)
	}
	if ok, err := st.HasReferenceData(ctx); err != nil || ok {
		t.Fatalf("expected empty store after reset: ok=%v err=%v", ok, err)
	}
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "quiz", "POSTGRES_PASSWORD": "quizpass", "POSTGRES_DB": "quizdb"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForLog("database system is ready to accept connections").WithOccurrence(2).WithStartupTimeout(60 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start postgres: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("port: %v", err)
	}
	dsn := fmt.Sprintf("postgres://quiz:quizpass@%s:%s/quizdb?sslmode=disable", host, port.Port())
	return dsn, func() {
		_ = container.Terminate(ctx)
	}
}

func startRedis(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(30 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start redis: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("redis host: %v", err)
	}
	port, err := container.MappedPort(ctx, "6379/tcp")
	if err != nil {
		t.Fatalf("redis port: %v", err)
	}
	url := fmt.Sprintf("redis://%s:%s", host, port.Port())
	return url, func() {
		_ = container.Terminate(ctx)
	}
}

func redisClientFromURL(url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return goredis.NewClient(opts), nil
}

func requireDocker(t *testing.T) {
	t.Helper()
	if _, err := tc.NewDockerProvider(); err != nil {
		t.Skipf("docker not available: %v", err)
	}
}
