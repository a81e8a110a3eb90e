package clinicv1

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/encoding/protowire"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/timestamppb"
)

func str(s string) *string { return &s }

func TestUpdateRequestKeepsPresence(t *testing.T) {
	in := &UpdateAppointmentRequest{
		Id:           "a1",
		Status:       str("cancelled"),
		NoShowReason: str(""),
		PatientData:  &PatientData{Phone: str("555-0101"), Address: str("")},
	}

	var out UpdateAppointmentRequest
	require.NoError(t, Unmarshal(Marshal(in), &out))

	assert.Equal(t, "a1", out.Id)
	require.NotNil(t, out.Status)
	assert.Equal(t, "cancelled", *out.Status)
	require.NotNil(t, out.NoShowReason, "empty optional string must stay present")
	assert.Equal(t, "", *out.NoShowReason)
	assert.Nil(t, out.Date)
	assert.Nil(t, out.Notes)
	require.NotNil(t, out.PatientData)
	assert.Equal(t, "555-0101", *out.PatientData.Phone)
	require.NotNil(t, out.PatientData.Address)
	assert.Nil(t, out.PatientData.Email)
}

func TestAppointmentResponseRepeatedFields(t *testing.T) {
	created := time.Date(2025, time.September, 8, 14, 30, 0, 500, time.UTC)
	in := &AppointmentResponse{
		Appointment: &Appointment{
			Id: "a1", Date: "2025-09-10", Time: "09:00", DurationMins: 30,
			Status: "scheduled", CreatedAt: timestamppb.New(created),
		},
		Conflicts: []*Appointment{{Id: "b1"}, {Id: "b2"}},
		SideEffects: []*SideEffect{
			{Kind: "persistAppointment"},
			{Kind: "sendEmail", BestEffort: true, Error: "breaker open"},
		},
	}

	var out AppointmentResponse
	require.NoError(t, Unmarshal(Marshal(in), &out))

	require.NotNil(t, out.Appointment)
	assert.Equal(t, int32(30), out.Appointment.DurationMins)
	assert.True(t, out.Appointment.CreatedAt.AsTime().Equal(created))
	assert.Nil(t, out.Appointment.UpdatedAt)
	require.Len(t, out.Conflicts, 2)
	assert.Equal(t, "b2", out.Conflicts[1].Id)
	require.Len(t, out.SideEffects, 2)
	assert.True(t, out.SideEffects[1].BestEffort)
	assert.Equal(t, "breaker open", out.SideEffects[1].Error)
}

func TestNegativeMinutesSurvive(t *testing.T) {
	in := &UpcomingAppointment{Level: "overdue", Minutes: -15}
	var out UpcomingAppointment
	require.NoError(t, Unmarshal(Marshal(in), &out))
	assert.Equal(t, int32(-15), out.Minutes)
}

func TestTimestampMatchesProtobuf(t *testing.T) {
	ts := timestamppb.New(time.Date(2024, time.January, 15, 10, 0, 0, 250, time.UTC))
	want, err := proto.Marshal(ts)
	require.NoError(t, err)

	got := appendTimestamp(nil, 1, ts)
	_, _, n := protowire.ConsumeTag(got)
	inner, m := protowire.ConsumeBytes(got[n:])
	require.Positive(t, m)
	assert.Equal(t, want, inner)
}

func TestUnknownFieldsSkipped(t *testing.T) {
	b := Marshal(&IDRequest{Id: "a1"})
	b = protowire.AppendTag(b, 99, protowire.VarintType)
	b = protowire.AppendVarint(b, 7)
	b = protowire.AppendTag(b, 100, protowire.BytesType)
	b = protowire.AppendString(b, "future")

	var out IDRequest
	require.NoError(t, Unmarshal(b, &out))
	assert.Equal(t, "a1", out.Id)
}

func TestMalformedInput(t *testing.T) {
	tests := []struct {
		name string
		in   []byte
	}{
		{"truncated tag", []byte{0x80}},
		{"truncated length", []byte{0x0a, 0x05, 'a'}},
		{"truncated nested", []byte{0x0a, 0x02, 0x0a, 0x09}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var out AppointmentResponse
			assert.ErrorIs(t, Unmarshal(tc.in, &out), ErrMalformed)
		})
	}
}

func TestCodecRejectsForeignTypes(t *testing.T) {
	c := Codec{}
	assert.Equal(t, "proto", c.Name())

	_, err := c.Marshal("not a message")
	require.Error(t, err)

	b, err := c.Marshal(&LoginRequest{Email: "doc@example.com", Password: "pw"})
	require.NoError(t, err)
	var out LoginRequest
	require.NoError(t, c.Unmarshal(b, &out))
	assert.Equal(t, "doc@example.com", out.Email)
}
