package probe

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theopenlane/spectra/internal/rdap"
)

type fakeRegistration struct {
	result rdap.Result
	err    error
}

func (f fakeRegistration) Lookup(context.Context, string) (rdap.Result, error) {
	return f.result, f.err
}

func TestRegistrationAge(t *testing.T) {
	created := time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC)
	expires := time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC)
	age := 1800

	probe := &Registration{lookup: fakeRegistration{result: rdap.Result{
		Domain:           "example.com",
		RegistrationDate: &created,
		ExpirationDate:   &expires,
		Registrar:        "Example Registrar",
		DomainAgeDays:    &age,
	}}}

	res := probe.Age(context.Background(), "login.example.com")

	require.True(t, res.OK())
	require.NotNil(t, res.Value.AgeDays)
	assert.Equal(t, 1800, *res.Value.AgeDays)
	assert.Equal(t, "Example Registrar", res.Value.Raw.Registrar)
	require.NotNil(t, res.Value.Raw.CreationDate)
	assert.Equal(t, "2020-01-02T03:04:05Z", *res.Value.Raw.CreationDate)
	assert.Equal(t, "2030-01-02T03:04:05Z", res.Value.Raw.ExpirationDate)
}

func TestRegistrationAgeFailure(t *testing.T) {
	probe := &Registration{lookup: fakeRegistration{err: errors.New("rdap: no server")}}

	res := probe.Age(context.Background(), "example.com")

	assert.Equal(t, FailureLookup, res.Failure)
	assert.Equal(t, DefaultWhois(), res.Value)
}
