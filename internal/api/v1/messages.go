package clinicv1

import (
	"google.golang.org/protobuf/encoding/protowire"
	"google.golang.org/protobuf/types/known/timestamppb"
)

type Empty struct{}

func (*Empty) AppendWire(b []byte) []byte { return b }
func (*Empty) ConsumeField(protowire.Number, protowire.Type, []byte) (int, error) {
	return 0, nil
}

// ---------- resources ----------

type Appointment struct {
	Id              string
	DoctorId        string
	PatientId       string
	Date            string
	Time            string
	DurationMins    int32
	Title           string
	Description     string
	Status          string
	NoShowReason    string
	ClinicalHistory string
	Notes           string
	ReminderSentAt  *timestamppb.Timestamp
	CreatedAt       *timestamppb.Timestamp
	UpdatedAt       *timestamppb.Timestamp
}

func (m *Appointment) AppendWire(b []byte) []byte {
	b = appendString(b, 1, m.Id)
	b = appendString(b, 2, m.DoctorId)
	b = appendString(b, 3, m.PatientId)
	b = appendString(b, 4, m.Date)
	b = appendString(b, 5, m.Time)
	b = appendInt(b, 6, m.DurationMins)
	b = appendString(b, 7, m.Title)
	b = appendString(b, 8, m.Description)
	b = appendString(b, 9, m.Status)
	b = appendString(b, 10, m.NoShowReason)
	b = appendString(b, 11, m.ClinicalHistory)
	b = appendString(b, 12, m.Notes)
	b = appendTimestamp(b, 13, m.ReminderSentAt)
	b = appendTimestamp(b, 14, m.CreatedAt)
	return appendTimestamp(b, 15, m.UpdatedAt)
}

func (m *Appointment) ConsumeField(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
	switch num {
	case 1:
		return consumeString(typ, b, &m.Id)
	case 2:
		return consumeString(typ, b, &m.DoctorId)
	case 3:
		return consumeString(typ, b, &m.PatientId)
	case 4:
		return consumeString(typ, b, &m.Date)
	case 5:
		return consumeString(typ, b, &m.Time)
	case 6:
		return consumeInt(typ, b, &m.DurationMins)
	case 7:
		return consumeString(typ, b, &m.Title)
	case 8:
		return consumeString(typ, b, &m.Description)
	case 9:
		return consumeString(typ, b, &m.Status)
	case 10:
		return consumeString(typ, b, &m.NoShowReason)
	case 11:
		return consumeString(typ, b, &m.ClinicalHistory)
	case 12:
		return consumeString(typ, b, &m.Notes)
	case 13:
		return consumeTimestamp(typ, b, &m.ReminderSentAt)
	case 14:
		return consumeTimestamp(typ, b, &m.CreatedAt)
	case 15:
		return consumeTimestamp(typ, b, &m.UpdatedAt)
	}
	return 0, nil
}

type Patient struct {
	Id          string
	DoctorId    string
	FirstName   string
	LastName    string
	Phone       string
	Email       string
	DateOfBirth string
	Gender      string
	Address     string
	CreatedAt   *timestamppb.Timestamp
	UpdatedAt   *timestamppb.Timestamp
}

func (m *Patient) AppendWire(b []byte) []byte {
	b = appendString(b, 1, m.Id)
	b = appendString(b, 2, m.DoctorId)
	b = appendString(b, 3, m.FirstName)
	b = appendString(b, 4, m.LastName)
	b = appendString(b, 5, m.Phone)
	b = appendString(b, 6, m.Email)
	b = appendString(b, 7, m.DateOfBirth)
	b = appendString(b, 8, m.Gender)
	b = appendString(b, 9, m.Address)
	b = appendTimestamp(b, 10, m.CreatedAt)
	return appendTimestamp(b, 11, m.UpdatedAt)
}

func (m *Patient) ConsumeField(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
	switch num {
	case 1:
		return consumeString(typ, b, &m.Id)
	case 2:
		return consumeString(typ, b, &m.DoctorId)
	case 3:
		return consumeString(typ, b, &m.FirstName)
	case 4:
		return consumeString(typ, b, &m.LastName)
	case 5:
		return consumeString(typ, b, &m.Phone)
	case 6:
		return consumeString(typ, b, &m.Email)
	case 7:
		return consumeString(typ, b, &m.DateOfBirth)
	case 8:
		return consumeString(typ, b, &m.Gender)
	case 9:
		return consumeString(typ, b, &m.Address)
	case 10:
		return consumeTimestamp(typ, b, &m.CreatedAt)
	case 11:
		return consumeTimestamp(typ, b, &m.UpdatedAt)
	}
	return 0, nil
}

// PatientData carries optional patient fields; nil means untouched.
type PatientData struct {
	FirstName   *string
	LastName    *string
	Phone       *string
	Email       *string
	DateOfBirth *string
	Gender      *string
	Address     *string
}

func (m *PatientData) AppendWire(b []byte) []byte {
	b = appendOptString(b, 1, m.FirstName)
	b = appendOptString(b, 2, m.LastName)
	b = appendOptString(b, 3, m.Phone)
	b = appendOptString(b, 4, m.Email)
	b = appendOptString(b, 5, m.DateOfBirth)
	b = appendOptString(b, 6, m.Gender)
	return appendOptString(b, 7, m.Address)
}

func (m *PatientData) ConsumeField(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
	switch num {
	case 1:
		return consumeOptString(typ, b, &m.FirstName)
	case 2:
		return consumeOptString(typ, b, &m.LastName)
	case 3:
		return consumeOptString(typ, b, &m.Phone)
	case 4:
		return consumeOptString(typ, b, &m.Email)
	case 5:
		return consumeOptString(typ, b, &m.DateOfBirth)
	case 6:
		return consumeOptString(typ, b, &m.Gender)
	case 7:
		return consumeOptString(typ, b, &m.Address)
	}
	return 0, nil
}

type Notification struct {
	Id            string
	RecipientId   string
	RecipientKind string
	Title         string
	Message       string
	Type          string
	Read          bool
	AppointmentId string
	CreatedAt     *timestamppb.Timestamp
}

func (m *Notification) AppendWire(b []byte) []byte {
	b = appendString(b, 1, m.Id)
	b = appendString(b, 2, m.RecipientId)
	b = appendString(b, 3, m.RecipientKind)
	b = appendString(b, 4, m.Title)
	b = appendString(b, 5, m.Message)
	b = appendString(b, 6, m.Type)
	b = appendBool(b, 7, m.Read)
	b = appendString(b, 8, m.AppointmentId)
	return appendTimestamp(b, 9, m.CreatedAt)
}

func (m *Notification) ConsumeField(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
	switch num {
	case 1:
		return consumeString(typ, b, &m.Id)
	case 2:
		return consumeString(typ, b, &m.RecipientId)
	case 3:
		return consumeString(typ, b, &m.RecipientKind)
	case 4:
		return consumeString(typ, b, &m.Title)
	case 5:
		return consumeString(typ, b, &m.Message)
	case 6:
		return consumeString(typ, b, &m.Type)
	case 7:
		return consumeBool(typ, b, &m.Read)
	case 8:
		return consumeString(typ, b, &m.AppointmentId)
	case 9:
		return consumeTimestamp(typ, b, &m.CreatedAt)
	}
	return 0, nil
}

type SideEffect struct {
	Kind       string
	BestEffort bool
	Error      string
}

func (m *SideEffect) AppendWire(b []byte) []byte {
	b = appendString(b, 1, m.Kind)
	b = appendBool(b, 2, m.BestEffort)
	return appendString(b, 3, m.Error)
}

func (m *SideEffect) ConsumeField(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
	switch num {
	case 1:
		return consumeString(typ, b, &m.Kind)
	case 2:
		return consumeBool(typ, b, &m.BestEffort)
	case 3:
		return consumeString(typ, b, &m.Error)
	}
	return 0, nil
}

// ---------- auth ----------

type RegisterRequest struct {
	Email     string
	Password  string
	Name      string
	Specialty string
}

func (m *RegisterRequest) AppendWire(b []byte) []byte {
	b = appendString(b, 1, m.Email)
	b = appendString(b, 2, m.Password)
	b = appendString(b, 3, m.Name)
	return appendString(b, 4, m.Specialty)
}

func (m *RegisterRequest) ConsumeField(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
	switch num {
	case 1:
		return consumeString(typ, b, &m.Email)
	case 2:
		return consumeString(typ, b, &m.Password)
	case 3:
		return consumeString(typ, b, &m.Name)
	case 4:
		return consumeString(typ, b, &m.Specialty)
	}
	return 0, nil
}

type RegisterResponse struct {
	DoctorId string
	Token    string
}

func (m *RegisterResponse) AppendWire(b []byte) []byte {
	b = appendString(b, 1, m.DoctorId)
	return appendString(b, 2, m.Token)
}

func (m *RegisterResponse) ConsumeField(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
	switch num {
	case 1:
		return consumeString(typ, b, &m.DoctorId)
	case 2:
		return consumeString(typ, b, &m.Token)
	}
	return 0, nil
}

type LoginRequest struct {
	Email    string
	Password string
}

func (m *LoginRequest) AppendWire(b []byte) []byte {
	b = appendString(b, 1, m.Email)
	return appendString(b, 2, m.Password)
}

func (m *LoginRequest) ConsumeField(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
	switch num {
	case 1:
		return consumeString(typ, b, &m.Email)
	case 2:
		return consumeString(typ, b, &m.Password)
	}
	return 0, nil
}

type LoginResponse struct {
	Token    string
	DoctorId string
	Name     string
}

func (m *LoginResponse) AppendWire(b []byte) []byte {
	b = appendString(b, 1, m.Token)
	b = appendString(b, 2, m.DoctorId)
	return appendString(b, 3, m.Name)
}

func (m *LoginResponse) ConsumeField(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
	switch num {
	case 1:
		return consumeString(typ, b, &m.Token)
	case 2:
		return consumeString(typ, b, &m.DoctorId)
	case 3:
		return consumeString(typ, b, &m.Name)
	}
	return 0, nil
}

// ---------- appointments ----------

type CreateAppointmentRequest struct {
	PatientId    string
	Date         string
	Time         string
	DurationMins int32
	Title        string
	Description  string
}

func (m *CreateAppointmentRequest) AppendWire(b []byte) []byte {
	b = appendString(b, 1, m.PatientId)
	b = appendString(b, 2, m.Date)
	b = appendString(b, 3, m.Time)
	b = appendInt(b, 4, m.DurationMins)
	b = appendString(b, 5, m.Title)
	return appendString(b, 6, m.Description)
}

func (m *CreateAppointmentRequest) ConsumeField(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
	switch num {
	case 1:
		return consumeString(typ, b, &m.PatientId)
	case 2:
		return consumeString(typ, b, &m.Date)
	case 3:
		return consumeString(typ, b, &m.Time)
	case 4:
		return consumeInt(typ, b, &m.DurationMins)
	case 5:
		return consumeString(typ, b, &m.Title)
	case 6:
		return consumeString(typ, b, &m.Description)
	}
	return 0, nil
}

type BookAppointmentRequest struct {
	DoctorId    string
	FirstName   string
	LastName    string
	Email       string
	Phone       string
	Date        string
	Time        string
	Title       string
	Description string
}

func (m *BookAppointmentRequest) AppendWire(b []byte) []byte {
	b = appendString(b, 1, m.DoctorId)
	b = appendString(b, 2, m.FirstName)
	b = appendString(b, 3, m.LastName)
	b = appendString(b, 4, m.Email)
	b = appendString(b, 5, m.Phone)
	b = appendString(b, 6, m.Date)
	b = appendString(b, 7, m.Time)
	b = appendString(b, 8, m.Title)
	return appendString(b, 9, m.Description)
}

func (m *BookAppointmentRequest) ConsumeField(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
	switch num {
	case 1:
		return consumeString(typ, b, &m.DoctorId)
	case 2:
		return consumeString(typ, b, &m.FirstName)
	case 3:
		return consumeString(typ, b, &m.LastName)
	case 4:
		return consumeString(typ, b, &m.Email)
	case 5:
		return consumeString(typ, b, &m.Phone)
	case 6:
		return consumeString(typ, b, &m.Date)
	case 7:
		return consumeString(typ, b, &m.Time)
	case 8:
		return consumeString(typ, b, &m.Title)
	case 9:
		return consumeString(typ, b, &m.Description)
	}
	return 0, nil
}

type AppointmentResponse struct {
	Appointment *Appointment
	Conflicts   []*Appointment
	SideEffects []*SideEffect
}

func (m *AppointmentResponse) AppendWire(b []byte) []byte {
	if m.Appointment != nil {
		b = appendMessage(b, 1, m.Appointment)
	}
	for _, c := range m.Conflicts {
		b = appendMessage(b, 2, c)
	}
	for _, s := range m.SideEffects {
		b = appendMessage(b, 3, s)
	}
	return b
}

func (m *AppointmentResponse) ConsumeField(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
	switch num {
	case 1:
		m.Appointment = &Appointment{}
		return consumeMessage(typ, b, m.Appointment)
	case 2:
		c := &Appointment{}
		m.Conflicts = append(m.Conflicts, c)
		return consumeMessage(typ, b, c)
	case 3:
		s := &SideEffect{}
		m.SideEffects = append(m.SideEffects, s)
		return consumeMessage(typ, b, s)
	}
	return 0, nil
}

type ListAvailableSlotsRequest struct {
	DoctorId string
	Date     string
}

func (m *ListAvailableSlotsRequest) AppendWire(b []byte) []byte {
	b = appendString(b, 1, m.DoctorId)
	return appendString(b, 2, m.Date)
}

func (m *ListAvailableSlotsRequest) ConsumeField(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
	switch num {
	case 1:
		return consumeString(typ, b, &m.DoctorId)
	case 2:
		return consumeString(typ, b, &m.Date)
	}
	return 0, nil
}

type ListAvailableSlotsResponse struct {
	Times []string
}

func (m *ListAvailableSlotsResponse) AppendWire(b []byte) []byte {
	for _, t := range m.Times {
		b = protowire.AppendTag(b, 1, protowire.BytesType)
		b = protowire.AppendString(b, t)
	}
	return b
}

func (m *ListAvailableSlotsResponse) ConsumeField(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
	if num != 1 {
		return 0, nil
	}
	var t string
	n, err := consumeString(typ, b, &t)
	if n > 0 {
		m.Times = append(m.Times, t)
	}
	return n, err
}

type ListAppointmentsRequest struct {
	PatientId string
	From      string
	To        string
	Status    string
}

func (m *ListAppointmentsRequest) AppendWire(b []byte) []byte {
	b = appendString(b, 1, m.PatientId)
	b = appendString(b, 2, m.From)
	b = appendString(b, 3, m.To)
	return appendString(b, 4, m.Status)
}

func (m *ListAppointmentsRequest) ConsumeField(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
	switch num {
	case 1:
		return consumeString(typ, b, &m.PatientId)
	case 2:
		return consumeString(typ, b, &m.From)
	case 3:
		return consumeString(typ, b, &m.To)
	case 4:
		return consumeString(typ, b, &m.Status)
	}
	return 0, nil
}

type ListAppointmentsResponse struct {
	Appointments []*Appointment
}

func (m *ListAppointmentsResponse) AppendWire(b []byte) []byte {
	for _, a := range m.Appointments {
		b = appendMessage(b, 1, a)
	}
	return b
}

func (m *ListAppointmentsResponse) ConsumeField(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
	if num != 1 {
		return 0, nil
	}
	a := &Appointment{}
	m.Appointments = append(m.Appointments, a)
	return consumeMessage(typ, b, a)
}

// IDRequest is shared by the RPCs that only take an id.
type IDRequest struct {
	Id string
}

func (m *IDRequest) AppendWire(b []byte) []byte { return appendString(b, 1, m.Id) }

func (m *IDRequest) ConsumeField(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
	if num != 1 {
		return 0, nil
	}
	return consumeString(typ, b, &m.Id)
}

type (
	GetAppointmentRequest       = IDRequest
	DeleteAppointmentRequest    = IDRequest
	MarkNotificationReadRequest = IDRequest
)

type UpdateAppointmentRequest struct {
	Id              string
	Status          *string
	Date            *string
	Time            *string
	NoShowReason    *string
	ClinicalHistory *string
	Notes           *string
	PatientData     *PatientData
}

func (m *UpdateAppointmentRequest) AppendWire(b []byte) []byte {
	b = appendString(b, 1, m.Id)
	b = appendOptString(b, 2, m.Status)
	b = appendOptString(b, 3, m.Date)
	b = appendOptString(b, 4, m.Time)
	b = appendOptString(b, 5, m.NoShowReason)
	b = appendOptString(b, 6, m.ClinicalHistory)
	b = appendOptString(b, 7, m.Notes)
	if m.PatientData != nil {
		b = appendMessage(b, 8, m.PatientData)
	}
	return b
}

func (m *UpdateAppointmentRequest) ConsumeField(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
	switch num {
	case 1:
		return consumeString(typ, b, &m.Id)
	case 2:
		return consumeOptString(typ, b, &m.Status)
	case 3:
		return consumeOptString(typ, b, &m.Date)
	case 4:
		return consumeOptString(typ, b, &m.Time)
	case 5:
		return consumeOptString(typ, b, &m.NoShowReason)
	case 6:
		return consumeOptString(typ, b, &m.ClinicalHistory)
	case 7:
		return consumeOptString(typ, b, &m.Notes)
	case 8:
		m.PatientData = &PatientData{}
		return consumeMessage(typ, b, m.PatientData)
	}
	return 0, nil
}

// ---------- views ----------

type GetCalendarRequest struct {
	Date        string
	Granularity string
}

func (m *GetCalendarRequest) AppendWire(b []byte) []byte {
	b = appendString(b, 1, m.Date)
	return appendString(b, 2, m.Granularity)
}

func (m *GetCalendarRequest) ConsumeField(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
	switch num {
	case 1:
		return consumeString(typ, b, &m.Date)
	case 2:
		return consumeString(typ, b, &m.Granularity)
	}
	return 0, nil
}

type CalendarEntry struct {
	Appointment      *Appointment
	PatientFirstName string
	PatientLastName  string
	PatientPhone     string
	PatientEmail     string
	PatientMissing   bool
}

func (m *CalendarEntry) AppendWire(b []byte) []byte {
	if m.Appointment != nil {
		b = appendMessage(b, 1, m.Appointment)
	}
	b = appendString(b, 2, m.PatientFirstName)
	b = appendString(b, 3, m.PatientLastName)
	b = appendString(b, 4, m.PatientPhone)
	b = appendString(b, 5, m.PatientEmail)
	return appendBool(b, 6, m.PatientMissing)
}

func (m *CalendarEntry) ConsumeField(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
	switch num {
	case 1:
		m.Appointment = &Appointment{}
		return consumeMessage(typ, b, m.Appointment)
	case 2:
		return consumeString(typ, b, &m.PatientFirstName)
	case 3:
		return consumeString(typ, b, &m.PatientLastName)
	case 4:
		return consumeString(typ, b, &m.PatientPhone)
	case 5:
		return consumeString(typ, b, &m.PatientEmail)
	case 6:
		return consumeBool(typ, b, &m.PatientMissing)
	}
	return 0, nil
}

type CalendarDay struct {
	Date     string
	InPeriod bool
	IsToday  bool
	Entries  []*CalendarEntry
}

func (m *CalendarDay) AppendWire(b []byte) []byte {
	b = appendString(b, 1, m.Date)
	b = appendBool(b, 2, m.InPeriod)
	b = appendBool(b, 3, m.IsToday)
	for _, e := range m.Entries {
		b = appendMessage(b, 4, e)
	}
	return b
}

func (m *CalendarDay) ConsumeField(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
	switch num {
	case 1:
		return consumeString(typ, b, &m.Date)
	case 2:
		return consumeBool(typ, b, &m.InPeriod)
	case 3:
		return consumeBool(typ, b, &m.IsToday)
	case 4:
		e := &CalendarEntry{}
		m.Entries = append(m.Entries, e)
		return consumeMessage(typ, b, e)
	}
	return 0, nil
}

type GetCalendarResponse struct {
	Granularity string
	From        string
	To          string
	Days        []*CalendarDay
}

func (m *GetCalendarResponse) AppendWire(b []byte) []byte {
	b = appendString(b, 1, m.Granularity)
	b = appendString(b, 2, m.From)
	b = appendString(b, 3, m.To)
	for _, d := range m.Days {
		b = appendMessage(b, 4, d)
	}
	return b
}

func (m *GetCalendarResponse) ConsumeField(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
	switch num {
	case 1:
		return consumeString(typ, b, &m.Granularity)
	case 2:
		return consumeString(typ, b, &m.From)
	case 3:
		return consumeString(typ, b, &m.To)
	case 4:
		d := &CalendarDay{}
		m.Days = append(m.Days, d)
		return consumeMessage(typ, b, d)
	}
	return 0, nil
}

type ListUpcomingRequest struct {
	Limit int32
}

func (m *ListUpcomingRequest) AppendWire(b []byte) []byte { return appendInt(b, 1, m.Limit) }

func (m *ListUpcomingRequest) ConsumeField(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
	if num != 1 {
		return 0, nil
	}
	return consumeInt(typ, b, &m.Limit)
}

type UpcomingAppointment struct {
	Appointment *Appointment
	Level       string
	Message     string
	Minutes     int32
}

func (m *UpcomingAppointment) AppendWire(b []byte) []byte {
	if m.Appointment != nil {
		b = appendMessage(b, 1, m.Appointment)
	}
	b = appendString(b, 2, m.Level)
	b = appendString(b, 3, m.Message)
	return appendSint(b, 4, m.Minutes)
}

func (m *UpcomingAppointment) ConsumeField(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
	switch num {
	case 1:
		m.Appointment = &Appointment{}
		return consumeMessage(typ, b, m.Appointment)
	case 2:
		return consumeString(typ, b, &m.Level)
	case 3:
		return consumeString(typ, b, &m.Message)
	case 4:
		return consumeSint(typ, b, &m.Minutes)
	}
	return 0, nil
}

type ListUpcomingResponse struct {
	Appointments []*UpcomingAppointment
}

func (m *ListUpcomingResponse) AppendWire(b []byte) []byte {
	for _, u := range m.Appointments {
		b = appendMessage(b, 1, u)
	}
	return b
}

func (m *ListUpcomingResponse) ConsumeField(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
	if num != 1 {
		return 0, nil
	}
	u := &UpcomingAppointment{}
	m.Appointments = append(m.Appointments, u)
	return consumeMessage(typ, b, u)
}

// ---------- patients ----------

type ListPatientsRequest = Empty

type ListPatientsResponse struct {
	Patients []*Patient
}

func (m *ListPatientsResponse) AppendWire(b []byte) []byte {
	for _, p := range m.Patients {
		b = appendMessage(b, 1, p)
	}
	return b
}

func (m *ListPatientsResponse) ConsumeField(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
	if num != 1 {
		return 0, nil
	}
	p := &Patient{}
	m.Patients = append(m.Patients, p)
	return consumeMessage(typ, b, p)
}

type CreatePatientRequest struct {
	FirstName   string
	LastName    string
	Phone       string
	Email       string
	DateOfBirth string
	Gender      string
	Address     string
}

func (m *CreatePatientRequest) AppendWire(b []byte) []byte {
	b = appendString(b, 1, m.FirstName)
	b = appendString(b, 2, m.LastName)
	b = appendString(b, 3, m.Phone)
	b = appendString(b, 4, m.Email)
	b = appendString(b, 5, m.DateOfBirth)
	b = appendString(b, 6, m.Gender)
	return appendString(b, 7, m.Address)
}

func (m *CreatePatientRequest) ConsumeField(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
	switch num {
	case 1:
		return consumeString(typ, b, &m.FirstName)
	case 2:
		return consumeString(typ, b, &m.LastName)
	case 3:
		return consumeString(typ, b, &m.Phone)
	case 4:
		return consumeString(typ, b, &m.Email)
	case 5:
		return consumeString(typ, b, &m.DateOfBirth)
	case 6:
		return consumeString(typ, b, &m.Gender)
	case 7:
		return consumeString(typ, b, &m.Address)
	}
	return 0, nil
}

type UpdatePatientRequest struct {
	Id   string
	Data *PatientData
}

func (m *UpdatePatientRequest) AppendWire(b []byte) []byte {
	b = appendString(b, 1, m.Id)
	if m.Data != nil {
		b = appendMessage(b, 2, m.Data)
	}
	return b
}

func (m *UpdatePatientRequest) ConsumeField(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
	switch num {
	case 1:
		return consumeString(typ, b, &m.Id)
	case 2:
		m.Data = &PatientData{}
		return consumeMessage(typ, b, m.Data)
	}
	return 0, nil
}

type PatientResponse struct {
	Patient *Patient
}

func (m *PatientResponse) AppendWire(b []byte) []byte {
	if m.Patient != nil {
		b = appendMessage(b, 1, m.Patient)
	}
	return b
}

func (m *PatientResponse) ConsumeField(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
	if num != 1 {
		return 0, nil
	}
	m.Patient = &Patient{}
	return consumeMessage(typ, b, m.Patient)
}

// ---------- notifications ----------

type ListNotificationsRequest struct {
	UnreadOnly bool
}

func (m *ListNotificationsRequest) AppendWire(b []byte) []byte { return appendBool(b, 1, m.UnreadOnly) }

func (m *ListNotificationsRequest) ConsumeField(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
	if num != 1 {
		return 0, nil
	}
	return consumeBool(typ, b, &m.UnreadOnly)
}

type ListNotificationsResponse struct {
	Notifications []*Notification
}

func (m *ListNotificationsResponse) AppendWire(b []byte) []byte {
	for _, n := range m.Notifications {
		b = appendMessage(b, 1, n)
	}
	return b
}

func (m *ListNotificationsResponse) ConsumeField(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
	if num != 1 {
		return 0, nil
	}
	n := &Notification{}
	m.Notifications = append(m.Notifications, n)
	return consumeMessage(typ, b, n)
}
