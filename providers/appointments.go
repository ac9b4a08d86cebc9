package providers

import (
	"context"
	"sync"
	"time"

	"github.com/mfinkle/llm-agents/tools"
)

type coordinates struct {
	Lat  float64 `json:"lat"`
	Long float64 `json:"long"`
}

type appointment struct {
	ID          string
	Date        string
	Time        string
	Specialty   string
	Open        bool
	Address     string
	Coordinates coordinates
}

// AppointmentProvider offers scheduling tools over a mutable in-memory
// appointment table.
type AppointmentProvider struct {
	mu           sync.Mutex
	appointments []*appointment
}

var _ tools.Provider = (*AppointmentProvider)(nil)

// NewAppointmentProvider returns an appointment provider seeded with
// slots for today, tomorrow and next week.
func NewAppointmentProvider() *AppointmentProvider {
	today := time.Now()
	tomorrow := today.AddDate(0, 0, 1)
	nextWeek := today.AddDate(0, 0, 7)

	locations := map[string]struct {
		address string
		coords  coordinates
	}{
		"dentist": {"123 Main St, Springfield, IL 62701", coordinates{39.781, -89.650}},
		"vision":  {"456 Oak Ave, Springfield, IL 62702", coordinates{39.776, -89.645}},
		"hair":    {"789 Elm Blvd, Springfield, IL 62704", coordinates{39.792, -89.655}},
	}

	day := func(t time.Time) string { return t.Format("2006-01-02") }
	slot := func(id string, date time.Time, at, specialty string) *appointment {
		loc := locations[specialty]
		return &appointment{
			ID:          id,
			Date:        day(date),
			Time:        at,
			Specialty:   specialty,
			Open:        true,
			Address:     loc.address,
			Coordinates: loc.coords,
		}
	}

	return &AppointmentProvider{
		appointments: []*appointment{
			slot("1", today, "10:00 AM", "dentist"),
			slot("2", today, "11:00 AM", "dentist"),
			slot("3", tomorrow, "11:00 AM", "dentist"),
			slot("4", tomorrow, "3:00 PM", "dentist"),
			slot("5", nextWeek, "1:00 PM", "dentist"),
			slot("6", nextWeek, "2:00 PM", "dentist"),
			slot("7", tomorrow, "2:00 PM", "vision"),
			slot("8", nextWeek, "2:00 PM", "vision"),
			slot("9", nextWeek, "4:00 PM", "vision"),
			slot("10", today, "10:30 AM", "hair"),
			slot("11", tomorrow, "11:00 AM", "hair"),
			slot("12", tomorrow, "2:00 PM", "hair"),
			slot("13", nextWeek, "11:00 AM", "hair"),
			slot("14", nextWeek, "3:00 PM", "hair"),
		},
	}
}

// Name implements the Provider interface.
func (p *AppointmentProvider) Name() string {
	return "AppointmentToolProvider"
}

// GetTools implements the Provider interface.
func (p *AppointmentProvider) GetTools() []*tools.Descriptor {
	return []*tools.Descriptor{
		{
			Name:        "get_appointment_specialties",
			Description: `Gets the list of available specialties for scheduling appointments. No parameter is needed. Example: { "type": "call_tool", "tool": "get_appointment_specialties" }`,
			Response:    `Returns a list of specialties. Example: ["dentist", "vision"]`,
			Param: &tools.ParamInfo{
				Required:    false,
				Description: "No parameter needed",
			},
			Func: func(_ context.Context, _ any) (any, error) {
				return p.getSpecialties(), nil
			},
		},
		{
			Name:        "get_available_appointments",
			Description: `Gets the available appointments for the given specialty. Parameter should be a string containing the specialty name. Example: { "type": "call_tool", "tool": "get_available_appointments", "param": "dentist" }`,
			Response:    `Returns a list of available appointments. Example: [{"id": "1", "date": "2022-01-01", "time": "10:00 AM"}]`,
			Param: &tools.ParamInfo{
				Required:    true,
				Type:        tools.ParamString,
				Description: `Specialty name as a string (e.g., "dentist")`,
			},
			Func: func(_ context.Context, param any) (any, error) {
				return p.getAvailable(tools.StringParam(param)), nil
			},
		},
		{
			Name:        "get_appointment_details",
			Description: `Gets the details of the appointment with the given ID. Parameter should be a string containing the appointment ID. Example: { "type": "call_tool", "tool": "get_appointment_details", "param": "1" }`,
			Response:    `Returns the details of the appointment. Example: {"id": "1", "date": "2022-01-01", "time": "10:00 AM", "specialty": "dentist", "open": true, "address": "123 Main St, Springfield, IL", "coordinates": {"lat": 39.781, "long": -89.650}}`,
			Param: &tools.ParamInfo{
				Required:    true,
				Type:        tools.ParamString,
				Description: `Appointment ID as a string (e.g., "1")`,
			},
			Func: func(_ context.Context, param any) (any, error) {
				return p.getDetails(tools.StringParam(param)), nil
			},
		},
		{
			Name:        "book_appointment",
			Description: `Books the appointment with the given ID. Parameter should be a string containing the appointment ID. Example: { "type": "call_tool", "tool": "book_appointment", "param": "1" }`,
			Response:    `Returns the status of the booking. Example: {"status": "success", "message": "Appointment booked successfully."}`,
			Param: &tools.ParamInfo{
				Required:    true,
				Type:        tools.ParamString,
				Description: `Appointment ID as a string (e.g., "1")`,
			},
			Func: func(_ context.Context, param any) (any, error) {
				return p.book(tools.StringParam(param)), nil
			},
		},
		{
			Name:        "cancel_appointment",
			Description: `Cancels the appointment with the given ID. Parameter should be a string containing the appointment ID. Example: { "type": "call_tool", "tool": "cancel_appointment", "param": "1" }`,
			Response:    `Returns the status of the cancellation. Example: {"status": "success", "message": "Appointment canceled successfully."}`,
			Param: &tools.ParamInfo{
				Required:    true,
				Type:        tools.ParamString,
				Description: `Appointment ID as a string (e.g., "1")`,
			},
			Func: func(_ context.Context, param any) (any, error) {
				return p.cancel(tools.StringParam(param)), nil
			},
		},
		{
			Name:        "get_my_appointments",
			Description: `Gets the appointments booked by the user. No parameter is needed. Example: { "type": "call_tool", "tool": "get_my_appointments" }`,
			Response:    `Returns a list of booked appointments. Example: [{"id": "1", "date": "2022-01-01", "time": "10:00 AM", "specialty": "dentist"}]`,
			Param: &tools.ParamInfo{
				Required:    false,
				Description: "No parameter needed",
			},
			Func: func(_ context.Context, _ any) (any, error) {
				return p.getMine(), nil
			},
		},
	}
}

func (p *AppointmentProvider) getSpecialties() []string {
	p.mu.Lock()
	defer p.mu.Unlock()

	seen := map[string]bool{}
	var specialties []string
	for _, a := range p.appointments {
		if !seen[a.Specialty] {
			seen[a.Specialty] = true
			specialties = append(specialties, a.Specialty)
		}
	}
	return specialties
}

func (p *AppointmentProvider) getAvailable(specialty string) []map[string]any {
	p.mu.Lock()
	defer p.mu.Unlock()

	open := []map[string]any{}
	for _, a := range p.appointments {
		if a.Specialty == specialty && a.Open {
			open = append(open, map[string]any{
				"id":   a.ID,
				"date": a.Date,
				"time": a.Time,
			})
		}
	}
	return open
}

func (p *AppointmentProvider) getDetails(id string) map[string]any {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, a := range p.appointments {
		if a.ID == id {
			return map[string]any{
				"id":          a.ID,
				"date":        a.Date,
				"time":        a.Time,
				"specialty":   a.Specialty,
				"open":        a.Open,
				"address":     a.Address,
				"coordinates": a.Coordinates,
			}
		}
	}
	return map[string]any{"status": "fail", "message": "Appointment not found."}
}

// book marks an open slot as taken. Booking an unknown or already
// booked slot fails without mutating anything.
func (p *AppointmentProvider) book(id string) map[string]any {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, a := range p.appointments {
		if a.Open && a.ID == id {
			a.Open = false
			return map[string]any{"status": "success", "message": "Appointment booked successfully."}
		}
	}
	return map[string]any{"status": "fail", "message": "Appointment not available."}
}

// cancel reopens a booked slot. Cancelling an unknown or unbooked
// slot fails without side effects.
func (p *AppointmentProvider) cancel(id string) map[string]any {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, a := range p.appointments {
		if !a.Open && a.ID == id {
			a.Open = true
			return map[string]any{"status": "success", "message": "Appointment canceled successfully."}
		}
	}
	return map[string]any{"status": "fail", "message": "Appointment not found."}
}

func (p *AppointmentProvider) getMine() []map[string]any {
	p.mu.Lock()
	defer p.mu.Unlock()

	mine := []map[string]any{}
	for _, a := range p.appointments {
		if !a.Open {
			mine = append(mine, map[string]any{
				"id":        a.ID,
				"date":      a.Date,
				"time":      a.Time,
				"specialty": a.Specialty,
			})
		}
	}
	return mine
}
