package capacity

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(n int) *int { return &n }

func TestEvaluate_DecisionOrder(t *testing.T) {
	tests := []struct {
		name     string
		state    State
		quantity int
		want     error
	}{
		{
			name:     "closed wins over everything",
			state:    State{IsClosed: true, EmailTaken: true, GuestCap: intPtr(0), MaxPerSignup: 1},
			quantity: 0,
			want:     ErrClosed,
		},
		{
			name:     "invalid quantity before duplicate",
			state:    State{EmailTaken: true, MaxPerSignup: 10},
			quantity: 0,
			want:     ErrInvalidQuantity,
		},
		{
			name:     "negative quantity",
			state:    State{MaxPerSignup: 10},
			quantity: -3,
			want:     ErrInvalidQuantity,
		},
		{
			name:     "duplicate before max per signup",
			state:    State{EmailTaken: true, MaxPerSignup: 2},
			quantity: 5,
			want:     ErrDuplicateEmail,
		},
		{
			name:     "full before remaining",
			state:    State{GuestCap: intPtr(4), Total: 4, MaxPerSignup: 10},
			quantity: 1,
			want:     ErrFull,
		},
		{
			name:     "overfilled list is full",
			state:    State{GuestCap: intPtr(4), Total: 6, MaxPerSignup: 10},
			quantity: 1,
			want:     ErrFull,
		},
		{
			name:     "unlimited admits",
			state:    State{MaxPerSignup: 10, Total: 1000},
			quantity: 10,
			want:     nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Evaluate(tt.state, tt.quantity)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestEvaluate_MaxPerSignup(t *testing.T) {
	err := Evaluate(State{MaxPerSignup: 4}, 5)

	var maxErr *MaxPerSignupError
	require.True(t, errors.As(err, &maxErr))
	assert.Equal(t, 4, maxErr.Max)
	assert.Equal(t, "maximum 4 guests per signup", err.Error())
}

func TestEvaluate_ScenarioCapTwo(t *testing.T) {
	s := State{GuestCap: intPtr(2), MaxPerSignup: 10}

	require.NoError(t, Evaluate(s, 2))
	s.Total += 2

	assert.ErrorIs(t, Evaluate(s, 1), ErrFull)
}

func TestEvaluate_ScenarioRemaining(t *testing.T) {
	s := State{GuestCap: intPtr(5), Total: 3, MaxPerSignup: 10}

	err := Evaluate(s, 3)
	var remErr *RemainingError
	require.True(t, errors.As(err, &remErr))
	assert.Equal(t, 2, remErr.Remaining)
	assert.Equal(t, "only 2 spots remaining", err.Error())

	require.NoError(t, Evaluate(s, 2))
}

func TestRemainingError_Singular(t *testing.T) {
	assert.Equal(t, "only 1 spot remaining", (&RemainingError{Remaining: 1}).Error())
}

// Admitted iff q <= min(maxPerSignup, cap-total), for an open list and a new email.
func TestEvaluate_AdmissionProperty(t *testing.T) {
	for c := 0; c <= 6; c++ {
		for total := 0; total <= c; total++ {
			for maxPer := 1; maxPer <= 4; maxPer++ {
				for q := 1; q <= 7; q++ {
					s := State{GuestCap: intPtr(c), Total: total, MaxPerSignup: maxPer}
					admitted := Evaluate(s, q) == nil
					want := q <= min(maxPer, c-total)
					assert.Equal(t, want, admitted, "cap=%d total=%d max=%d q=%d", c, total, maxPer, q)
				}
			}
		}
	}
}

func TestRemainingAndEffectiveMax(t *testing.T) {
	assert.Nil(t, Remaining(nil, 12))
	assert.Equal(t, 10, EffectiveMax(10, nil, 12))

	r := Remaining(intPtr(5), 3)
	require.NotNil(t, r)
	assert.Equal(t, 2, *r)
	assert.Equal(t, 2, EffectiveMax(10, intPtr(5), 3))
	assert.Equal(t, 4, EffectiveMax(4, intPtr(50), 3))

	r = Remaining(intPtr(2), 5)
	require.NotNil(t, r)
	assert.Equal(t, 0, *r)
}

func TestCheckCap(t *testing.T) {
	assert.NoError(t, CheckCap(nil, 40))
	assert.NoError(t, CheckCap(intPtr(40), 40))

	err := CheckCap(intPtr(3), 4)
	var capErr *CapBelowTotalError
	require.True(t, errors.As(err, &capErr))
	assert.Equal(t, 4, capErr.Total)
}
