package sale

import "errors"

var (
	ErrInvalidStateTransition = errors.New("sale: invalid state transition")
	ErrInvalidQuantity        = errors.New("sale: quantity must be greater than zero")
)

// cartState implements the state pattern for the cart lifecycle:
// open → priced → settling → committed, with voided reachable from any
// pre-commit state.
type cartState interface {
	Status() Status
	OnEdit(c *Cart) (cartState, error)
	OnPriced(c *Cart) (cartState, error)
	OnTender(c *Cart) (cartState, error)
	OnCommit(c *Cart) (cartState, error)
	OnVoid(c *Cart, reason string) (cartState, error)
}

type openState struct{}

func (openState) Status() Status { return StatusOpen }

func (openState) OnEdit(*Cart) (cartState, error) {
	return openState{}, nil
}

func (openState) OnPriced(c *Cart) (cartState, error) {
	return pricedState{}, nil
}

func (openState) OnTender(*Cart) (cartState, error) {
	return nil, ErrInvalidStateTransition
}

func (openState) OnCommit(*Cart) (cartState, error) {
	return nil, ErrInvalidStateTransition
}

func (openState) OnVoid(c *Cart, reason string) (cartState, error) {
	c.VoidReason = reason
	return voidedState{}, nil
}

type pricedState struct{}

func (pricedState) Status() Status { return StatusPriced }

func (pricedState) OnEdit(c *Cart) (cartState, error) {
	c.Quote = nil
	c.Settlement = nil
	return openState{}, nil
}

func (pricedState) OnPriced(*Cart) (cartState, error) {
	return pricedState{}, nil
}

func (pricedState) OnTender(*Cart) (cartState, error) {
	return settlingState{}, nil
}

func (pricedState) OnCommit(*Cart) (cartState, error) {
	return nil, ErrInvalidStateTransition
}

func (pricedState) OnVoid(c *Cart, reason string) (cartState, error) {
	c.VoidReason = reason
	return voidedState{}, nil
}

type settlingState struct{}

func (settlingState) Status() Status { return StatusSettling }

func (settlingState) OnEdit(c *Cart) (cartState, error) {
	c.Quote = nil
	c.Settlement = nil
	return openState{}, nil
}

func (settlingState) OnPriced(*Cart) (cartState, error) {
	return pricedState{}, nil
}

func (settlingState) OnTender(*Cart) (cartState, error) {
	return settlingState{}, nil
}

func (settlingState) OnCommit(*Cart) (cartState, error) {
	return committedState{}, nil
}

func (settlingState) OnVoid(c *Cart, reason string) (cartState, error) {
	c.VoidReason = reason
	return voidedState{}, nil
}

type committedState struct{}

func (committedState) Status() Status { return StatusCommitted }

func (committedState) OnEdit(*Cart) (cartState, error) {
	return nil, ErrInvalidStateTransition
}

func (committedState) OnPriced(*Cart) (cartState, error) {
	return nil, ErrInvalidStateTransition
}

func (committedState) OnTender(*Cart) (cartState, error) {
	return nil, ErrInvalidStateTransition
}

func (committedState) OnCommit(*Cart) (cartState, error) {
	return committedState{}, nil
}

func (committedState) OnVoid(*Cart, string) (cartState, error) {
	return nil, ErrInvalidStateTransition
}

type voidedState struct{}

func (voidedState) Status() Status { return StatusVoided }

func (voidedState) OnEdit(*Cart) (cartState, error) {
	return nil, ErrInvalidStateTransition
}

func (voidedState) OnPriced(*Cart) (cartState, error) {
	return nil, ErrInvalidStateTransition
}

func (voidedState) OnTender(*Cart) (cartState, error) {
	return nil, ErrInvalidStateTransition
}

func (voidedState) OnCommit(*Cart) (cartState, error) {
	return nil, ErrInvalidStateTransition
}

func (voidedState) OnVoid(c *Cart, reason string) (cartState, error) {
	c.VoidReason = reason
	return voidedState{}, nil
}
