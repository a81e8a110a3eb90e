// Package grpcweb serves browser gRPC-Web calls over HTTP/1.1 by forwarding
// them, still encoded, to the native gRPC server.
package grpcweb

import (
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	pb "clinic-scheduler/internal/api/v1"
	"clinic-scheduler/internal/middleware"
)

const maxMessage = 4 << 20

// Bridge translates gRPC-Web → native gRPC.
type Bridge struct {
	conn    grpc.ClientConnInterface
	closer  io.Closer
	origins map[string]bool
	log     *zap.Logger
}

type Option func(*Bridge)

// WithOrigins restricts CORS to the given origins. Without it every origin
// is echoed back.
func WithOrigins(origins ...string) Option {
	return func(b *Bridge) {
		for _, o := range origins {
			b.origins[o] = true
		}
	}
}

// Dial connects to the gRPC server at addr (e.g. "localhost:50051").
func Dial(addr string, log *zap.Logger, opts ...Option) (*Bridge, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("grpcweb dial: %w", err)
	}
	b := New(conn, log, opts...)
	b.closer = conn
	return b, nil
}

// New forwards over an existing connection.
func New(conn grpc.ClientConnInterface, log *zap.Logger, opts ...Option) *Bridge {
	b := &Bridge{conn: conn, origins: map[string]bool{}, log: log}
	for _, o := range opts {
		o(b)
	}
	return b
}

func (b *Bridge) Close() error {
	if b.closer == nil {
		return nil
	}
	return b.closer.Close()
}

func (b *Bridge) Handler() http.Handler {
	return cors(b.origins, http.HandlerFunc(b.serve))
}

func (b *Bridge) serve(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.Method != http.MethodPost:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	case !strings.HasPrefix(r.Header.Get("Content-Type"), "application/grpc-web"):
		http.Error(w, "not grpc-web", http.StatusUnsupportedMediaType)
		return
	case !strings.HasPrefix(r.URL.Path, "/"+pb.ServiceName+"/"):
		respond(w, nil, codes.Unimplemented, "unknown service")
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxMessage+headerLen+1))
	if err != nil {
		respond(w, nil, codes.Internal, "read body failed")
		return
	}
	payload, err := readFrame(body, maxMessage)
	if err != nil {
		respond(w, nil, codes.InvalidArgument, err.Error())
		return
	}

	md := metadata.MD{}
	if vals := r.Header.Values("Authorization"); len(vals) > 0 {
		md["authorization"] = vals
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		md.Set(middleware.ForwardedForKey, host)
	}
	ctx := metadata.NewOutgoingContext(r.Context(), md)

	out := &rawFrame{}
	err = b.conn.Invoke(ctx, r.URL.Path, &rawFrame{payload}, out, grpc.ForceCodec(passthrough{}))
	if err != nil {
		st := status.Convert(err)
		b.log.Debug("forwarded call failed",
			zap.String("method", r.URL.Path),
			zap.Stringer("code", st.Code()),
			zap.String("message", st.Message()))
		respond(w, nil, st.Code(), st.Message())
		return
	}
	respond(w, out.b, codes.OK, "")
}

// rawFrame carries an already encoded message.
type rawFrame struct{ b []byte }

// passthrough moves bytes without decoding. Its name matches the server
// codec so calls keep the application/grpc+proto content subtype.
type passthrough struct{}

func (passthrough) Marshal(v any) ([]byte, error) {
	f, ok := v.(*rawFrame)
	if !ok {
		return nil, fmt.Errorf("grpcweb: cannot marshal %T", v)
	}
	return f.b, nil
}

func (passthrough) Unmarshal(data []byte, v any) error {
	f, ok := v.(*rawFrame)
	if !ok {
		return fmt.Errorf("grpcweb: cannot unmarshal into %T", v)
	}
	f.b = append(f.b[:0], data...)
	return nil
}

func (passthrough) Name() string { return "proto" }
