package clinicv1

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/encoding"
	"google.golang.org/grpc/status"
)

const ServiceName = "clinic.v1.ClinicService"

// FullMethod returns the gRPC path of an RPC, e.g. "/clinic.v1.ClinicService/Login".
func FullMethod(name string) string { return "/" + ServiceName + "/" + name }

// Codec marshals clinic.v1 messages. It is registered under "proto" so
// standard gRPC and gRPC-Web clients interoperate without negotiation.
type Codec struct{}

func (Codec) Marshal(v any) ([]byte, error) {
	m, ok := v.(Message)
	if !ok {
		return nil, fmt.Errorf("clinicv1 codec: cannot marshal %T", v)
	}
	return Marshal(m), nil
}

func (Codec) Unmarshal(data []byte, v any) error {
	m, ok := v.(Message)
	if !ok {
		return fmt.Errorf("clinicv1 codec: cannot unmarshal into %T", v)
	}
	return Unmarshal(data, m)
}

func (Codec) Name() string { return "proto" }

var _ encoding.Codec = Codec{}

type ClinicServiceServer interface {
	Register(context.Context, *RegisterRequest) (*RegisterResponse, error)
	Login(context.Context, *LoginRequest) (*LoginResponse, error)

	CreateAppointment(context.Context, *CreateAppointmentRequest) (*AppointmentResponse, error)
	BookAppointment(context.Context, *BookAppointmentRequest) (*AppointmentResponse, error)
	ListAvailableSlots(context.Context, *ListAvailableSlotsRequest) (*ListAvailableSlotsResponse, error)
	ListAppointments(context.Context, *ListAppointmentsRequest) (*ListAppointmentsResponse, error)
	GetAppointment(context.Context, *GetAppointmentRequest) (*AppointmentResponse, error)
	UpdateAppointment(context.Context, *UpdateAppointmentRequest) (*AppointmentResponse, error)
	DeleteAppointment(context.Context, *DeleteAppointmentRequest) (*Empty, error)

	GetCalendar(context.Context, *GetCalendarRequest) (*GetCalendarResponse, error)
	ListUpcoming(context.Context, *ListUpcomingRequest) (*ListUpcomingResponse, error)

	ListPatients(context.Context, *ListPatientsRequest) (*ListPatientsResponse, error)
	CreatePatient(context.Context, *CreatePatientRequest) (*PatientResponse, error)
	UpdatePatient(context.Context, *UpdatePatientRequest) (*PatientResponse, error)

	ListNotifications(context.Context, *ListNotificationsRequest) (*ListNotificationsResponse, error)
	MarkNotificationRead(context.Context, *MarkNotificationReadRequest) (*Empty, error)
}

func RegisterClinicServiceServer(s grpc.ServiceRegistrar, srv ClinicServiceServer) {
	s.RegisterService(&ServiceDesc, srv)
}

var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ClinicServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("Register", ClinicServiceServer.Register),
		unary("Login", ClinicServiceServer.Login),
		unary("CreateAppointment", ClinicServiceServer.CreateAppointment),
		unary("BookAppointment", ClinicServiceServer.BookAppointment),
		unary("ListAvailableSlots", ClinicServiceServer.ListAvailableSlots),
		unary("ListAppointments", ClinicServiceServer.ListAppointments),
		unary("GetAppointment", ClinicServiceServer.GetAppointment),
		unary("UpdateAppointment", ClinicServiceServer.UpdateAppointment),
		unary("DeleteAppointment", ClinicServiceServer.DeleteAppointment),
		unary("GetCalendar", ClinicServiceServer.GetCalendar),
		unary("ListUpcoming", ClinicServiceServer.ListUpcoming),
		unary("ListPatients", ClinicServiceServer.ListPatients),
		unary("CreatePatient", ClinicServiceServer.CreatePatient),
		unary("UpdatePatient", ClinicServiceServer.UpdatePatient),
		unary("ListNotifications", ClinicServiceServer.ListNotifications),
		unary("MarkNotificationRead", ClinicServiceServer.MarkNotificationRead),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "api/clinic/v1/clinic.proto",
}

func unary[Req any, Resp any, PReq interface {
	*Req
	Message
}](name string, call func(ClinicServiceServer, context.Context, PReq) (Resp, error)) grpc.MethodDesc {
	full := FullMethod(name)
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := PReq(new(Req))
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(ClinicServiceServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: full}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(ClinicServiceServer), ctx, req.(PReq))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// UnimplementedClinicServiceServer answers every RPC with Unimplemented.
type UnimplementedClinicServiceServer struct{}

func unimplemented(name string) error {
	return status.Errorf(codes.Unimplemented, "method %s not implemented", name)
}

func (UnimplementedClinicServiceServer) Register(context.Context, *RegisterRequest) (*RegisterResponse, error) {
	return nil, unimplemented("Register")
}
func (UnimplementedClinicServiceServer) Login(context.Context, *LoginRequest) (*LoginResponse, error) {
	return nil, unimplemented("Login")
}
func (UnimplementedClinicServiceServer) CreateAppointment(context.Context, *CreateAppointmentRequest) (*AppointmentResponse, error) {
	return nil, unimplemented("CreateAppointment")
}
func (UnimplementedClinicServiceServer) BookAppointment(context.Context, *BookAppointmentRequest) (*AppointmentResponse, error) {
	return nil, unimplemented("BookAppointment")
}
func (UnimplementedClinicServiceServer) ListAvailableSlots(context.Context, *ListAvailableSlotsRequest) (*ListAvailableSlotsResponse, error) {
	return nil, unimplemented("ListAvailableSlots")
}
func (UnimplementedClinicServiceServer) ListAppointments(context.Context, *ListAppointmentsRequest) (*ListAppointmentsResponse, error) {
	return nil, unimplemented("ListAppointments")
}
func (UnimplementedClinicServiceServer) GetAppointment(context.Context, *GetAppointmentRequest) (*AppointmentResponse, error) {
	return nil, unimplemented("GetAppointment")
}
func (UnimplementedClinicServiceServer) UpdateAppointment(context.Context, *UpdateAppointmentRequest) (*AppointmentResponse, error) {
	return nil, unimplemented("UpdateAppointment")
}
func (UnimplementedClinicServiceServer) DeleteAppointment(context.Context, *DeleteAppointmentRequest) (*Empty, error) {
	return nil, unimplemented("DeleteAppointment")
}
func (UnimplementedClinicServiceServer) GetCalendar(context.Context, *GetCalendarRequest) (*GetCalendarResponse, error) {
	return nil, unimplemented("GetCalendar")
}
func (UnimplementedClinicServiceServer) ListUpcoming(context.Context, *ListUpcomingRequest) (*ListUpcomingResponse, error) {
	return nil, unimplemented("ListUpcoming")
}
func (UnimplementedClinicServiceServer) ListPatients(context.Context, *ListPatientsRequest) (*ListPatientsResponse, error) {
	return nil, unimplemented("ListPatients")
}
func (UnimplementedClinicServiceServer) CreatePatient(context.Context, *CreatePatientRequest) (*PatientResponse, error) {
	return nil, unimplemented("CreatePatient")
}
func (UnimplementedClinicServiceServer) UpdatePatient(context.Context, *UpdatePatientRequest) (*PatientResponse, error) {
	return nil, unimplemented("UpdatePatient")
}
func (UnimplementedClinicServiceServer) ListNotifications(context.Context, *ListNotificationsRequest) (*ListNotificationsResponse, error) {
	return nil, unimplemented("ListNotifications")
}
func (UnimplementedClinicServiceServer) MarkNotificationRead(context.Context, *MarkNotificationReadRequest) (*Empty, error) {
	return nil, unimplemented("MarkNotificationRead")
}

// Invoke calls an RPC on cc with the clinic codec. in and out are the
// request and response messages of method.
func Invoke(ctx context.Context, cc grpc.ClientConnInterface, method string, in, out Message, opts ...grpc.CallOption) error {
	opts = append([]grpc.CallOption{grpc.ForceCodec(Codec{})}, opts...)
	return cc.Invoke(ctx, FullMethod(method), in, out, opts...)
}
