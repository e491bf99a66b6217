package checkout

import "errors"

type State string

const (
	StateFillingDetails       State = "filling-details"
	StateSubmittingPayment    State = "submitting-payment"
	StatePaymentSucceeded     State = "payment-succeeded"
	StateAwaitingVerification State = "awaiting-verification"
	StateOrderCommitted       State = "order-committed"
	StatePaymentFailed        State = "payment-failed"
)

var ErrIllegalTransition = errors.New("illegal checkout transition")

var transitions = map[State][]State{
	StateFillingDetails:       {StateSubmittingPayment, StatePaymentFailed},
	StateSubmittingPayment:    {StateSubmittingPayment, StatePaymentSucceeded, StatePaymentFailed},
	StatePaymentSucceeded:     {StateAwaitingVerification, StateOrderCommitted},
	StateAwaitingVerification: {StateOrderCommitted},
	StateOrderCommitted:       {StateFillingDetails},
	StatePaymentFailed:        {StateFillingDetails},
}

func (s State) CanTransitionTo(next State) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// PaymentTaken reports whether money has moved for the session.
func (s State) PaymentTaken() bool {
	return s == StatePaymentSucceeded || s == StateAwaitingVerification
}

func (s State) String() string {
	return string(s)
}
