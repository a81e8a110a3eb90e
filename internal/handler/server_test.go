package handler_test

import (
	"bytes"
	"context"
	"encoding/binary"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	pb "clinic-scheduler/internal/api/v1"
	"clinic-scheduler/internal/grpcweb"
	"clinic-scheduler/internal/metrics"
	"clinic-scheduler/internal/middleware"
)

// serve runs the full interceptor chain in front of the handler on an
// in-memory listener and returns a client connection to it.
func serve(t *testing.T) (*grpc.ClientConn, *metrics.Collector) {
	t.Helper()
	h, _, _ := setup(t)
	mc := metrics.NewCollector("test", prometheus.NewRegistry())

	srv := grpc.NewServer(
		grpc.ForceServerCodec(pb.Codec{}),
		grpc.ChainUnaryInterceptor(
			middleware.Observe(zap.NewNop(), mc),
			middleware.RateLimit(middleware.NewRateLimiter(100, 100)),
			middleware.Auth(secret),
		),
	)
	pb.RegisterClinicServiceServer(srv, h)

	lis := bufconn.Listen(1 << 20)
	go srv.Serve(lis) //nolint:errcheck
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn, mc
}

func TestServerRoundTrip(t *testing.T) {
	conn, mc := serve(t)
	ctx := context.Background()

	var reg pb.RegisterResponse
	require.NoError(t, pb.Invoke(ctx, conn, "Register", &pb.RegisterRequest{
		Email: "e2e@test.com", Password: "testpass123", Name: "Dra. E2E",
	}, &reg))
	require.NotEmpty(t, reg.Token)

	var list pb.ListAppointmentsResponse
	err := pb.Invoke(ctx, conn, "ListAppointments", &pb.ListAppointmentsRequest{}, &list)
	assert.Equal(t, codes.Unauthenticated, status.Code(err))

	authed := metadata.AppendToOutgoingContext(ctx, "authorization", "Bearer "+reg.Token)
	var pr pb.PatientResponse
	require.NoError(t, pb.Invoke(authed, conn, "CreatePatient", &pb.CreatePatientRequest{FirstName: "Ana"}, &pr))

	var ar pb.AppointmentResponse
	require.NoError(t, pb.Invoke(authed, conn, "CreateAppointment", &pb.CreateAppointmentRequest{
		PatientId: pr.Patient.Id, Date: "2025-09-09", Time: "10:00", Title: "Control",
	}, &ar))
	assert.Equal(t, "scheduled", ar.Appointment.Status)

	var ur pb.AppointmentResponse
	require.NoError(t, pb.Invoke(authed, conn, "UpdateAppointment", &pb.UpdateAppointmentRequest{
		Id: ar.Appointment.Id, Status: ptr("confirmed"),
	}, &ur))
	assert.Equal(t, "confirmed", ur.Appointment.Status)
	assert.NotEmpty(t, ur.SideEffects)

	err = pb.Invoke(authed, conn, "UpdateAppointment", &pb.UpdateAppointmentRequest{Id: ar.Appointment.Id}, &ur)
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	assert.Equal(t, 1.0, testutil.ToFloat64(mc.RPCTotal.WithLabelValues(pb.FullMethod("ListAppointments"), "Unauthenticated")))
	assert.Equal(t, 1.0, testutil.ToFloat64(mc.RPCTotal.WithLabelValues(pb.FullMethod("UpdateAppointment"), "InvalidArgument")))
}

func TestServerThroughGrpcWeb(t *testing.T) {
	conn, _ := serve(t)
	ctx := context.Background()

	var reg pb.RegisterResponse
	require.NoError(t, pb.Invoke(ctx, conn, "Register", &pb.RegisterRequest{
		Email: "web@test.com", Password: "testpass123", Name: "Dra. Web",
	}, &reg))

	bridge := grpcweb.New(conn, zap.NewNop()).Handler()
	call := func(method, token string, in pb.Message) *httptest.ResponseRecorder {
		payload := pb.Marshal(in)
		body := make([]byte, 5+len(payload))
		binary.BigEndian.PutUint32(body[1:5], uint32(len(payload)))
		copy(body[5:], payload)

		req := httptest.NewRequest(http.MethodPost, pb.FullMethod(method), bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/grpc-web+proto")
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		rec := httptest.NewRecorder()
		bridge.ServeHTTP(rec, req)
		return rec
	}

	rec := call("CreatePatient", reg.Token, &pb.CreatePatientRequest{FirstName: "Luis"})
	require.Equal(t, http.StatusOK, rec.Code)
	b := rec.Body.Bytes()
	require.GreaterOrEqual(t, len(b), 5)
	require.Equal(t, byte(0x00), b[0], "first frame carries the message")
	n := binary.BigEndian.Uint32(b[1:5])
	var pr pb.PatientResponse
	require.NoError(t, pb.Unmarshal(b[5:5+n], &pr))
	assert.Equal(t, "Luis", pr.Patient.FirstName)
	assert.Contains(t, string(b[5+n:]), "grpc-status:0")

	rec = call("CreatePatient", "", &pb.CreatePatientRequest{FirstName: "Eva"})
	assert.Contains(t, rec.Body.String(), "grpc-status:16")
}
