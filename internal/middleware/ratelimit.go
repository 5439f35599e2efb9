// Package middleware holds gRPC interceptors shared by the servers.
package middleware

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"
)

// idleTTL is how long an unused limiter is kept.
const idleTTL = 10 * time.Minute

// LimiterStore maintains per-key rate limiters and performs periodic cleanup.
type LimiterStore struct {
	mu      sync.Mutex
	limit   rate.Limit
	burst   int
	clients map[string]*clientEntry
	stopCh  chan struct{}
	once    sync.Once
}

type clientEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewLimiterStore creates a new store for per-key rate limiters.
// limitPerMinute controls allowed events per minute; burst is the burst capacity.
func NewLimiterStore(limitPerMinute int, burst int, cleanupInterval time.Duration) *LimiterStore {
	if limitPerMinute <= 0 {
		limitPerMinute = 60
	}
	if burst <= 0 {
		burst = 1
	}
	if cleanupInterval <= 0 {
		cleanupInterval = time.Minute
	}
	s := &LimiterStore{
		limit:   rate.Every(time.Minute / time.Duration(limitPerMinute)),
		burst:   burst,
		clients: map[string]*clientEntry{},
		stopCh:  make(chan struct{}),
	}
	go s.cleanupLoop(cleanupInterval)
	return s
}

func (s *LimiterStore) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.evictIdle(time.Now().Add(-idleTTL))
		case <-s.stopCh:
			return
		}
	}
}

func (s *LimiterStore) evictIdle(cutoff time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, v := range s.clients {
		if v.lastSeen.Before(cutoff) {
			delete(s.clients, k)
		}
	}
}

// Stop stops the cleanup goroutine. Safe to call more than once.
func (s *LimiterStore) Stop() {
	s.once.Do(func() { close(s.stopCh) })
}

// Allow checks whether an event for the given key is permitted.
func (s *LimiterStore) Allow(key string) bool {
	s.mu.Lock()
	e, ok := s.clients[key]
	if !ok {
		e = &clientEntry{limiter: rate.NewLimiter(s.limit, s.burst)}
		s.clients[key] = e
	}
	e.lastSeen = time.Now()
	s.mu.Unlock()
	return e.limiter.Allow()
}

// KeyFunc derives the limiter key of a request.
type KeyFunc func(ctx context.Context, req interface{}) string

// DefaultKey keys sign-in style requests by the username they carry, so
// guessing passwords for one account is throttled regardless of source, and
// everything else by remote address.
func DefaultKey(ctx context.Context, req interface{}) string {
	type usernameGetter interface{ GetUsername() string }
	if ug, ok := req.(usernameGetter); ok {
		if u := ug.GetUsername(); u != "" {
			return "username:" + u
		}
	}
	if p, ok := peer.FromContext(ctx); ok && p.Addr != nil {
		return "peer:" + p.Addr.String()
	}
	return "unknown"
}

// RateLimitUnaryInterceptor applies rate limiting to the supplied methods.
// onReject, when set, is called with the method name of every rejected call.
func RateLimitUnaryInterceptor(store *LimiterStore, limitedMethods map[string]bool, key KeyFunc, onReject func(method string)) grpc.UnaryServerInterceptor {
	if key == nil {
		key = DefaultKey
	}
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		if !limitedMethods[info.FullMethod] {
			return handler(ctx, req)
		}
		if !store.Allow(info.FullMethod + "|" + key(ctx, req)) {
			if onReject != nil {
				onReject(info.FullMethod)
			}
			return nil, status.Errorf(codes.ResourceExhausted, "rate limit exceeded")
		}
		return handler(ctx, req)
	}
}
