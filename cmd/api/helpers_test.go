package main

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	v1 "github.com/PaulBabatuyi/chitChest-gRPC/api/chest/v1"
	"github.com/PaulBabatuyi/chitChest-gRPC/internal/app"
	"github.com/PaulBabatuyi/chitChest-gRPC/internal/auth"
	"github.com/PaulBabatuyi/chitChest-gRPC/internal/service"
)

const testPassword = "s3cret-pass"

type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type harness struct {
	srv   *Server
	svc   *service.Service
	clock *testClock
	auth  *auth.JWTManager
}

// newHarness builds a Server over in-memory stores with a controllable clock.
func newHarness(t *testing.T) *harness {
	t.Helper()
	clock := &testClock{t: time.Date(2025, 2, 14, 9, 0, 0, 0, time.UTC)}

	deps := app.MemoryDeps()
	deps.Logger = zerolog.Nop()
	deps.Clock = clock.Now
	svc := service.New(deps)

	jwtMgr := auth.NewJWTManager("test-secret", time.Hour)
	return &harness{
		srv:   newServer(svc, jwtMgr, zerolog.Nop()),
		svc:   svc,
		clock: clock,
		auth:  jwtMgr,
	}
}

// register creates an identity through the handler and returns a context
// carrying its claims, as the auth interceptor would.
func (h *harness) register(t *testing.T, username, gender string) (context.Context, *v1.AuthResponse) {
	t.Helper()
	resp, err := h.srv.Register(context.Background(), &v1.RegisterRequest{
		Username: username,
		Password: testPassword,
		Gender:   gender,
	})
	require.NoError(t, err)
	claims, err := h.auth.VerifyToken(resp.GetToken())
	require.NoError(t, err)
	return context.WithValue(context.Background(), authContextKey{}, claims), resp
}

// couple registers and pairs alice and bob.
func (h *harness) couple(t *testing.T) (alice, bob context.Context) {
	t.Helper()
	alice, _ = h.register(t, "alice", "female")
	bob, _ = h.register(t, "bob", "male")
	_, err := h.srv.Pair(alice, &v1.PairRequest{PartnerUsername: "bob"})
	require.NoError(t, err)
	return alice, bob
}

// reasonOf returns the ErrorInfo reason carried by a status error, or "".
func reasonOf(err error) string {
	st, ok := status.FromError(err)
	if !ok {
		return ""
	}
	for _, d := range st.Details() {
		if info, ok := d.(*errdetails.ErrorInfo); ok {
			return info.GetReason()
		}
	}
	return ""
}

// fakeStream captures what a server-streaming handler sends.
type fakeStream[T any] struct {
	ctx  context.Context
	sent []*T
}

func (f *fakeStream[T]) Send(m *T) error {
	f.sent = append(f.sent, m)
	return nil
}

func (f *fakeStream[T]) Context() context.Context { return f.ctx }

// The following methods are part of grpc.ServerStream.
func (f *fakeStream[T]) SetHeader(metadata.MD) error  { return nil }
func (f *fakeStream[T]) SendHeader(metadata.MD) error { return nil }
func (f *fakeStream[T]) SetTrailer(metadata.MD)       {}
func (f *fakeStream[T]) RecvMsg(any) error            { return io.EOF }

func (f *fakeStream[T]) SendMsg(m any) error {
	msg, ok := m.(*T)
	if !ok {
		return errors.New("SendMsg: unexpected type")
	}
	return f.Send(msg)
}
