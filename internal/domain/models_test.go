package domain

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEventType(t *testing.T) {
	cases := map[string]EventType{
		"submitted":           EventSubmitted,
		"in_review":           EventInReview,
		"InReview":            EventInReview,
		"phone screen":        EventPhoneScreen,
		"TECHNICAL_INTERVIEW": EventTechnicalInterview,
		" onsite-interview ":  EventOnsiteInterview,
		"OfferReceived":       EventOfferReceived,
		"offer_accepted":      EventOfferAccepted,
		"offer_declined":      EventOfferDeclined,
		"Rejected":            EventRejected,
		"withdrawn":           EventWithdrawn,
	}

	for input, want := range cases {
		t.Run(input, func(t *testing.T) {
			got, err := ParseEventType(input)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}

func TestParseEventType_Unknown(t *testing.T) {
	_, err := ParseEventType("ghosted")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "event_type", verr.Field)
}

func TestEventType_RoundTripNames(t *testing.T) {
	for _, et := range EventTypes() {
		parsed, err := ParseEventType(et.String())
		require.NoError(t, err)
		assert.Equal(t, et, parsed)
	}
	assert.Len(t, EventTypes(), 10)
}

func TestEventType_Terminal(t *testing.T) {
	terminal := map[EventType]bool{
		EventOfferAccepted: true,
		EventOfferDeclined: true,
		EventRejected:      true,
		EventWithdrawn:     true,
	}
	for _, et := range EventTypes() {
		assert.Equal(t, terminal[et], et.Terminal(), et.String())
	}
}

func TestEventType_Invalid(t *testing.T) {
	bad := EventType(42)
	assert.False(t, bad.Valid())
	assert.Equal(t, "event_type(42)", bad.String())

	_, err := bad.MarshalText()
	assert.Error(t, err)
}

func TestEventType_Text(t *testing.T) {
	b, err := EventOnsiteInterview.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "onsite_interview", string(b))

	var et EventType
	require.NoError(t, et.UnmarshalText([]byte("OfferDeclined")))
	assert.Equal(t, EventOfferDeclined, et)
}

func TestErrors_Is(t *testing.T) {
	verr := &ValidationError{Field: "email", Reason: "is required"}
	assert.ErrorIs(t, verr, ErrInvalidArgument)
	assert.Equal(t, "invalid email: is required", verr.Error())

	oerr := &OwnershipError{Field: "account_id", Expected: uuid.New(), Actual: uuid.New()}
	assert.ErrorIs(t, oerr, ErrOwnershipMismatch)
	assert.ErrorIs(t, oerr, ErrInvalidArgument)

	terr := &TransitionError{From: EventRejected, To: EventInReview, Reason: ReasonTerminalState}
	assert.ErrorIs(t, terr, ErrInvalidTransition)
	assert.False(t, errors.Is(terr, ErrInvalidArgument))
	assert.Contains(t, terr.Error(), "rejected")
	assert.Contains(t, terr.Error(), "in_review")
	assert.Contains(t, terr.Error(), "terminal state")
}
