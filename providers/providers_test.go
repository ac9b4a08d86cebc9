package providers_test

import (
	"context"
	"testing"

	"github.com/mfinkle/llm-agents/providers"
	"github.com/mfinkle/llm-agents/tools"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dispatch(t *testing.T, p tools.Provider, name string, param any) string {
	t.Helper()
	reg := tools.NewRegistry()
	require.NoError(t, reg.Register(p))
	res, err := reg.Dispatch(context.Background(), name, param)
	require.NoError(t, err)
	return res
}

func TestUtilityProvider_Calculate(t *testing.T) {
	p := providers.NewUtilityProvider()

	res := dispatch(t, p, "calculate", "2 + 2")
	assert.JSONEq(t, `{"result": 4, "status": "success"}`, res)

	res = dispatch(t, p, "calculate", "(1 + 2) * 3.5")
	assert.JSONEq(t, `{"result": 10.5, "status": "success"}`, res)

	// failure reports a status, not an error
	res = dispatch(t, p, "calculate", "2 +")
	assert.JSONEq(t, `{"result": null, "status": "fail"}`, res)

	res = dispatch(t, p, "calculate", "1 / 0")
	assert.JSONEq(t, `{"result": null, "status": "fail"}`, res)
}

func TestUtilityProvider_Tools(t *testing.T) {
	p := providers.NewUtilityProvider()
	assert.Equal(t, "UtilityToolProvider", p.Name())

	res := dispatch(t, p, "get_weather", "90210")
	assert.JSONEq(t, `{"temperature": "75 F", "conditions": "Sunny"}`, res)

	res = dispatch(t, p, "get_zipcode", "Beverly Hills, CA")
	assert.JSONEq(t, `{"zipcode": "90210"}`, res)

	res = dispatch(t, p, "get_datetime", nil)
	assert.Contains(t, res, `"date"`)
	assert.Contains(t, res, `"time"`)
}

func TestAppointmentProvider_Booking(t *testing.T) {
	p := providers.NewAppointmentProvider()
	reg := tools.NewRegistry()
	require.NoError(t, reg.Register(p))
	ctx := context.Background()

	res, err := reg.Dispatch(ctx, "get_appointment_specialties", nil)
	require.NoError(t, err)
	assert.Contains(t, res, "dentist")
	assert.Contains(t, res, "vision")
	assert.Contains(t, res, "hair")

	// book an open slot
	res, err = reg.Dispatch(ctx, "book_appointment", "1")
	require.NoError(t, err)
	assert.Contains(t, res, "success")

	// booking a taken slot fails without mutation
	res, err = reg.Dispatch(ctx, "book_appointment", "1")
	require.NoError(t, err)
	assert.Contains(t, res, "fail")

	// the booked slot no longer shows as available
	res, err = reg.Dispatch(ctx, "get_available_appointments", "dentist")
	require.NoError(t, err)
	assert.NotContains(t, res, `"id":"1"`)

	// it shows in my appointments
	res, err = reg.Dispatch(ctx, "get_my_appointments", nil)
	require.NoError(t, err)
	assert.Contains(t, res, `"id":"1"`)

	// cancel restores availability
	res, err = reg.Dispatch(ctx, "cancel_appointment", "1")
	require.NoError(t, err)
	assert.Contains(t, res, "success")

	// cancelling an unbooked slot fails
	res, err = reg.Dispatch(ctx, "cancel_appointment", "1")
	require.NoError(t, err)
	assert.Contains(t, res, "fail")

	// cancelling an unknown id fails
	res, err = reg.Dispatch(ctx, "cancel_appointment", "999")
	require.NoError(t, err)
	assert.Contains(t, res, "fail")
}

func TestAppointmentProvider_Details(t *testing.T) {
	p := providers.NewAppointmentProvider()

	res := dispatch(t, p, "get_appointment_details", "7")
	assert.Contains(t, res, `"specialty":"vision"`)
	assert.Contains(t, res, "456 Oak Ave")

	res = dispatch(t, p, "get_appointment_details", "999")
	assert.Contains(t, res, "fail")
}

func TestProgramProvider(t *testing.T) {
	p := providers.NewProgramProvider(nil)
	assert.Equal(t, "ProgramToolProvider", p.Name())

	res := dispatch(t, p, "get_program_topics", nil)
	assert.Contains(t, res, "python")
	assert.Contains(t, res, "machine learning")

	res = dispatch(t, p, "get_programs_for_topics", []any{"react"})
	assert.Contains(t, res, "React Development")
	assert.NotContains(t, res, "Python Basics")

	res = dispatch(t, p, "enroll_in_program", "2")
	assert.Contains(t, res, "success")

	res = dispatch(t, p, "enroll_in_program", "999")
	assert.Contains(t, res, "fail")

	// without a model, topic extraction falls back to keyword matching
	res = dispatch(t, p, "get_relevant_program_topics_from_input", "I want to learn python and react")
	assert.Contains(t, res, "python")
	assert.Contains(t, res, "react")
}

func TestStoreLocatorProvider(t *testing.T) {
	p := providers.NewStoreLocatorProvider()
	assert.Equal(t, "StoreLocatorToolProvider", p.Name())

	res := dispatch(t, p, "get_store_types", nil)
	assert.Contains(t, res, "grocery")
	assert.Contains(t, res, "furniture")
	assert.Contains(t, res, "electronics")

	res = dispatch(t, p, "get_stores_by_type", "grocery")
	assert.Contains(t, res, "Super Foods")
	assert.NotContains(t, res, "Tech World")

	res = dispatch(t, p, "get_stores_by_name", "tech world")
	assert.Contains(t, res, `"id":"5"`)

	res = dispatch(t, p, "get_store_details", "1")
	assert.Contains(t, res, "555-123-4567")
	assert.Contains(t, res, "Pharmacy")

	res = dispatch(t, p, "get_store_details", "999")
	assert.Contains(t, res, "not found")
}

func TestStoreLocatorProvider_FindNearest(t *testing.T) {
	p := providers.NewStoreLocatorProvider()

	// Super Foods sits on the simulated origin
	res := dispatch(t, p, "find_nearest_store", map[string]any{"location": "Springfield, IL"})
	assert.Contains(t, res, "Super Foods")
	assert.Contains(t, res, "miles")

	res = dispatch(t, p, "find_nearest_store", map[string]any{
		"location":   "Springfield, IL",
		"store_type": "electronics",
	})
	assert.Contains(t, res, "Tech World")

	// location is required by the tool itself
	res = dispatch(t, p, "find_nearest_store", map[string]any{"store_type": "grocery"})
	assert.Contains(t, res, "Location is required")

	// the object parameter can arrive as a JSON string
	res = dispatch(t, p, "find_nearest_store", `{"location": "Springfield, IL", "store_type": "furniture"}`)
	assert.Contains(t, res, "Home Essentials")
}
