package benchmark

// DefaultTestCases covers the mock providers: single-tool lookups,
// appointment booking and multi-step reasoning across providers.
func DefaultTestCases() []*TestCase {
	return []*TestCase{
		{
			ID:                       "weather_lookup",
			Prompt:                   "What is the weather like in 94105?",
			ExpectedTools:            []string{"get_weather"},
			ExpectedResponseContains: []string{"weather", "75 F"},
		},
		{
			ID:                       "datetime_check",
			Prompt:                   "What is today's date and time?",
			ExpectedTools:            []string{"get_datetime"},
			ExpectedResponseContains: []string{"date", "time"},
		},
		{
			ID:                       "basic_calculation",
			Prompt:                   "Calculate 24 * 7 + 365",
			ExpectedTools:            []string{"calculate"},
			ExpectedResponseContains: []string{"533"},
		},
		{
			ID:                       "appointment_listing",
			Prompt:                   "What types of appointments can I schedule?",
			ExpectedTools:            []string{"get_appointment_specialties"},
			ExpectedResponseContains: []string{"dentist", "vision", "hair"},
		},
		{
			ID:                       "dentist_availability",
			Prompt:                   "I want to see a dentist. What appointments are available?",
			ExpectedTools:            []string{"~get_appointment_specialties", "get_available_appointments"},
			ExpectedResponseContains: []string{"dentist", "available", "appointment"},
		},
		{
			ID:                       "book_appointment",
			Prompt:                   "I'd like to book the first available vision appointment",
			ExpectedTools:            []string{"~get_appointment_specialties", "get_available_appointments", "book_appointment"},
			ExpectedResponseContains: []string{"booked", "appointment"},
		},
		{
			ID:                       "store_types",
			Prompt:                   "What types of stores can I search for?",
			ExpectedTools:            []string{"get_store_types"},
			ExpectedResponseContains: []string{"grocery", "furniture", "electronics"},
		},
		{
			ID:                       "grocery_stores",
			Prompt:                   "Show me all grocery stores",
			ExpectedTools:            []string{"get_stores_by_type"},
			ExpectedResponseContains: []string{"grocery", "store"},
		},
		{
			ID:                       "nearest_store_complex",
			Prompt:                   "What's the nearest electronics store to Springfield, IL?",
			ExpectedTools:            []string{"find_nearest_store"},
			ExpectedResponseContains: []string{"electronics", "nearest", "Springfield"},
		},
		{
			ID:     "complex_booking_ambiguous",
			Prompt: "I need a haircut tomorrow afternoon and then I want to go grocery shopping nearby",
			ExpectedTools: []string{
				"get_datetime", "get_appointment_specialties", "get_available_appointments",
				"get_appointment_details", "find_nearest_store", "~get_store_details",
			},
			ExpectedResponseContains: []string{"appointment", "grocery"},
		},
		{
			ID:     "complex_booking_clear",
			Prompt: "I need a haircut tomorrow afternoon and after the appointment I want to go grocery shopping nearby",
			ExpectedTools: []string{
				"get_datetime", "get_appointment_specialties", "get_available_appointments",
				"get_appointment_details", "find_nearest_store", "~get_store_details",
			},
			ExpectedResponseContains: []string{"appointment", "grocery"},
		},
		{
			ID:                       "store_detail_lookup",
			Prompt:                   "Tell me more about the Fresh Market store, including its hours and services",
			ExpectedTools:            []string{"get_stores_by_name", "get_store_details"},
			ExpectedResponseContains: []string{"Fresh Market", "hours", "services"},
		},
	}
}
