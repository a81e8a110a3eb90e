package middleware

import (
	"context"
	"net"
	"sync"
	"time"

	"golang.org/x/time/rate"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"
)

const idleAfter = 3 * time.Minute

// ForwardedForKey carries the browser's address on calls relayed by the
// gRPC-Web bridge. It is honoured only from loopback peers.
const ForwardedForKey = "x-forwarded-for"

type bucket struct {
	*rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps one token bucket per remote host.
type RateLimiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	every   rate.Limit
	burst   int
}

func NewRateLimiter(rps float64, burst int) *RateLimiter {
	return &RateLimiter{
		buckets: make(map[string]*bucket),
		every:   rate.Limit(rps),
		burst:   burst,
	}
}

// Run drops buckets of idle hosts once a minute until ctx is done.
func (rl *RateLimiter) Run(ctx context.Context) {
	t := time.NewTicker(time.Minute)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			rl.sweep(now.Add(-idleAfter))
		}
	}
}

func (rl *RateLimiter) sweep(cutoff time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	for host, b := range rl.buckets {
		if b.lastSeen.Before(cutoff) {
			delete(rl.buckets, host)
		}
	}
}

// Allow spends one token from host's bucket.
func (rl *RateLimiter) Allow(host string) bool {
	now := time.Now()
	rl.mu.Lock()
	b, ok := rl.buckets[host]
	if !ok {
		b = &bucket{Limiter: rate.NewLimiter(rl.every, rl.burst)}
		rl.buckets[host] = b
	}
	b.lastSeen = now
	rl.mu.Unlock()
	return b.AllowN(now, 1)
}

func remoteHost(ctx context.Context) string {
	p, ok := peer.FromContext(ctx)
	if !ok || p.Addr == nil {
		return "unknown"
	}
	host, _, err := net.SplitHostPort(p.Addr.String())
	if err != nil {
		return p.Addr.String()
	}
	if ip := net.ParseIP(host); ip != nil && ip.IsLoopback() {
		if fwd := metadata.ValueFromIncomingContext(ctx, ForwardedForKey); len(fwd) > 0 && fwd[0] != "" {
			return fwd[0]
		}
	}
	return host
}

// RateLimit throttles the unauthenticated methods per remote host.
func RateLimit(rl *RateLimiter) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, next grpc.UnaryHandler) (any, error) {
		if IsOpen(info.FullMethod) && !rl.Allow(remoteHost(ctx)) {
			return nil, status.Error(codes.ResourceExhausted, "too many requests")
		}
		return next(ctx, req)
	}
}
