package main

import (
	"context"
	"errors"
	"io"
	"net"
	"os"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	v1 "github.com/PaulBabatuyi/chitChest-gRPC/api/chest/v1"
	"github.com/PaulBabatuyi/chitChest-gRPC/internal/app"
	"github.com/PaulBabatuyi/chitChest-gRPC/internal/auth"
	"github.com/PaulBabatuyi/chitChest-gRPC/internal/config"
	"github.com/PaulBabatuyi/chitChest-gRPC/internal/db"
	"github.com/PaulBabatuyi/chitChest-gRPC/internal/metrics"
	"github.com/PaulBabatuyi/chitChest-gRPC/internal/middleware"
	"github.com/PaulBabatuyi/chitChest-gRPC/internal/service"
)

const bufSize = 1024 * 1024

type e2e struct {
	client v1.ChestServiceClient
	clock  *testClock
}

// startServer serves the full interceptor chain over bufconn.
func startServer(t *testing.T, deps service.Deps, rpm, burst int) *e2e {
	t.Helper()
	clock := &testClock{t: time.Now().UTC()}
	deps.Logger = zerolog.Nop()
	deps.Clock = clock.Now
	mtr := metrics.New(prometheus.NewRegistry())
	deps.Metrics = mtr
	svc := service.New(deps)

	jwtMgr := auth.NewJWTManager("test-secret", time.Hour)
	limiter := middleware.NewLimiterStore(rpm, burst, time.Minute)
	t.Cleanup(limiter.Stop)

	opts, err := grpcServerOptions(&config.Config{}, zerolog.Nop(), mtr, jwtMgr, limiter)
	require.NoError(t, err)

	lis := bufconn.Listen(bufSize)
	s := grpc.NewServer(opts...)
	registerService(s, newServer(svc, jwtMgr, zerolog.Nop()))
	go func() {
		_ = s.Serve(lis)
	}()
	t.Cleanup(s.GracefulStop)

	dialer := func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }
	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(dialer),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return &e2e{client: v1.NewChestServiceClient(conn), clock: clock}
}

func withToken(token string) context.Context {
	return metadata.AppendToOutgoingContext(context.Background(), "authorization", "Bearer "+token)
}

func drain[T any](t *testing.T, stream grpc.ServerStreamingClient[T]) []*T {
	t.Helper()
	var out []*T
	for {
		m, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			return out
		}
		require.NoError(t, err)
		out = append(out, m)
	}
}

func TestEndToEndChestScenario(t *testing.T) {
	env := startServer(t, app.MemoryDeps(), 600, 100)
	ctx := context.Background()
	c := env.client

	aliceReg, err := c.Register(ctx, &v1.RegisterRequest{Username: "alice", Password: testPassword, Gender: "female"})
	require.NoError(t, err)
	_, err = c.Register(ctx, &v1.RegisterRequest{Username: "bob", Password: testPassword, Gender: "male"})
	require.NoError(t, err)
	bobLogin, err := c.Login(ctx, &v1.LoginRequest{Username: "bob", Password: testPassword})
	require.NoError(t, err)

	alice, bob := withToken(aliceReg.GetToken()), withToken(bobLogin.GetToken())

	// no token, no access
	_, err = c.PairingStatus(ctx, &v1.PairingStatusRequest{})
	assert.Equal(t, codes.Unauthenticated, status.Code(err))
	stream, err := c.ChestHistory(ctx, &v1.ChestHistoryRequest{})
	require.NoError(t, err)
	_, err = stream.Recv()
	assert.Equal(t, codes.Unauthenticated, status.Code(err))

	paired, err := c.Pair(bob, &v1.PairRequest{PartnerUsername: "alice"})
	require.NoError(t, err)
	assert.True(t, paired.GetIsPaired())
	assert.Equal(t, aliceReg.GetUserId(), paired.GetPartnerId())

	chest, err := c.CreateChest(alice, &v1.CreateChestRequest{DurationDays: 7})
	require.NoError(t, err)
	ref := &v1.ChestRef{ChestId: chest.GetId()}

	fromAlice, err := c.AddChit(alice, &v1.AddChitRequest{ChestId: chest.Id, Content: "you left the dishes again", Emotion: "angry"})
	require.NoError(t, err)
	fromBob, err := c.AddChit(bob, &v1.AddChitRequest{ChestId: chest.Id, Content: "I loved the picnic", Emotion: "happy"})
	require.NoError(t, err)

	listStream, err := c.ListChitsForReader(bob, ref)
	require.NoError(t, err)
	assert.Empty(t, drain(t, listStream))

	env.clock.Advance(7 * 24 * time.Hour)

	listStream, err = c.ListChitsForReader(bob, ref)
	require.NoError(t, err)
	got := drain(t, listStream)
	require.Len(t, got, 1)
	assert.Equal(t, "you left the dishes again", got[0].Content)
	assert.Equal(t, "angry", got[0].Emotion)

	r1, err := c.MarkChitRead(bob, &v1.MarkChitReadRequest{ChestId: chest.Id, ChitId: fromAlice.Id})
	require.NoError(t, err)
	assert.Equal(t, "opened", r1.ChestStatus)

	// reading your own chit looks like a missing one
	_, err = c.MarkChitRead(bob, &v1.MarkChitReadRequest{ChestId: chest.Id, ChitId: fromBob.Id})
	assert.Equal(t, codes.NotFound, status.Code(err))
	assert.Equal(t, "chit_not_found", reasonOf(err))

	r2, err := c.MarkChitRead(alice, &v1.MarkChitReadRequest{ChestId: chest.Id, ChitId: fromBob.Id})
	require.NoError(t, err)
	assert.Equal(t, "completed", r2.ChestStatus)

	stats, err := c.ChitStats(alice, ref)
	require.NoError(t, err)
	assert.Equal(t, int32(1), stats.TotalChits)
	assert.Equal(t, int32(1), stats.ReadChits)
	assert.InDelta(t, 100.0, stats.Progress, 0.001)
	assert.Equal(t, map[string]int32{"happy": 1}, stats.EmotionCounts)

	historyStream, err := c.ChitHistory(alice, &v1.ChitHistoryRequest{})
	require.NoError(t, err)
	history := drain(t, historyStream)
	require.Len(t, history, 1)
	assert.Equal(t, "completed", history[0].Chest.Status)
	assert.Equal(t, fromBob.Id, history[0].Chits[0].Id)

	active, err := c.GetActiveChest(bob, &v1.GetActiveChestRequest{})
	require.NoError(t, err)
	assert.Nil(t, active.Chest)

	settings, err := c.UpdateSettings(bob, &v1.UpdateSettingsRequest{ChestDurationDays: 14})
	require.NoError(t, err)
	assert.Equal(t, int32(14), settings.ChestDurationDays)
}

func TestRateLimitedLogin(t *testing.T) {
	env := startServer(t, app.MemoryDeps(), 1, 2)
	ctx := context.Background()

	_, err := env.client.Register(ctx, &v1.RegisterRequest{Username: "carol", Password: testPassword, Gender: "female"})
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		_, err = env.client.Login(ctx, &v1.LoginRequest{Username: "carol", Password: "wrong-password"})
		assert.Equal(t, codes.PermissionDenied, status.Code(err))
	}
	_, err = env.client.Login(ctx, &v1.LoginRequest{Username: "carol", Password: testPassword})
	assert.Equal(t, codes.ResourceExhausted, status.Code(err))

	// other usernames have their own budget
	_, err = env.client.Login(ctx, &v1.LoginRequest{Username: "dave", Password: testPassword})
	assert.Equal(t, codes.PermissionDenied, status.Code(err))
}

func TestRegisterAndLoginMongo(t *testing.T) {
	uri := os.Getenv("MONGODB_URI")
	if uri == "" {
		t.Skip("MONGODB_URI not set; skipping integration test")
	}

	ctx := context.Background()
	dbClient, err := db.New(ctx, uri, "chest_api_it")
	require.NoError(t, err)
	defer func() {
		_ = dbClient.Drop(context.Background())
		_ = dbClient.Close(context.Background())
	}()
	require.NoError(t, dbClient.CreateIndexes(ctx))

	env := startServer(t, app.MongoDeps(dbClient), 600, 100)

	username := "it-" + time.Now().UTC().Format("20060102150405")
	reg, err := env.client.Register(ctx, &v1.RegisterRequest{Username: username, Password: testPassword, Gender: "male"})
	require.NoError(t, err)
	require.NotEmpty(t, reg.GetToken())
	require.NotEmpty(t, reg.GetUserId())

	login, err := env.client.Login(ctx, &v1.LoginRequest{Username: username, Password: testPassword})
	require.NoError(t, err)
	assert.Equal(t, reg.GetUserId(), login.GetUserId())

	st, err := env.client.PairingStatus(withToken(login.GetToken()), &v1.PairingStatusRequest{})
	require.NoError(t, err)
	assert.False(t, st.GetIsPaired())
}
