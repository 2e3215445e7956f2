package recon

import "testing"

func validMessage() *InboundMessage {
	return &InboundMessage{
		MessageID:   "msg-1",
		LabID:       "quest",
		OrderNumber: "ORD-1",
		Patient:     PatientInfo{MRN: "12345", BirthDate: "1980-04-02"},
	}
}

func TestValidate(t *testing.T) {
	if err := validMessage().Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*InboundMessage)
	}{
		{"missing message id", func(m *InboundMessage) { m.MessageID = "" }},
		{"missing lab id", func(m *InboundMessage) { m.LabID = "" }},
		{"no order number or control id", func(m *InboundMessage) { m.OrderNumber = ""; m.ControlID = "" }},
		{"no patient identity at all", func(m *InboundMessage) { m.Patient = PatientInfo{BirthDate: "1980-04-02"} }},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			m := validMessage()
			c.mutate(m)
			if err := m.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestValidateAcceptsControlIDOnly(t *testing.T) {
	m := validMessage()
	m.OrderNumber = ""
	m.ControlID = "ACC-9"
	if err := m.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestValidateAcceptsLastNameOnly(t *testing.T) {
	m := validMessage()
	m.Patient = PatientInfo{LastName: "Doe", BirthDate: "1980-04-02"}
	if err := m.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestPatientDisplayName(t *testing.T) {
	m := validMessage()
	m.Patient.LastName = "Doe"
	m.Patient.FirstName = "Jane"
	if got := m.PatientDisplayName(); got != "DOE, JANE" {
		t.Errorf("PatientDisplayName() = %q, want %q", got, "DOE, JANE")
	}

	m.Patient.FirstName = ""
	if got := m.PatientDisplayName(); got != "DOE" {
		t.Errorf("PatientDisplayName() = %q, want %q", got, "DOE")
	}

	m.Patient.LastName = ""
	if got := m.PatientDisplayName(); got != "" {
		t.Errorf("PatientDisplayName() = %q, want empty", got)
	}
}
