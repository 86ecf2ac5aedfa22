package service

import (
	"fmt"
	"sync"

	log "github.com/sirupsen/logrus"
)

// operatorGate restricts privileged operations to a single identity,
// transferable at runtime by that identity.
type operatorGate struct {
	mu       sync.RWMutex
	operator string
}

// NewOperatorGate creates a gate with the deployment-time operator identity
func NewOperatorGate(operator string) OperatorGate {
	return &operatorGate{operator: operator}
}

func (g *operatorGate) RequireOperator(caller string) error {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if caller == "" || caller != g.operator {
		return fmt.Errorf("%w: caller %q is not the operator", ErrUnauthorized, caller)
	}
	return nil
}

func (g *operatorGate) Operator() string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.operator
}

func (g *operatorGate) TransferOperator(caller, newOperator string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if caller == "" || caller != g.operator {
		return fmt.Errorf("%w: caller %q is not the operator", ErrUnauthorized, caller)
	}
	if newOperator == "" {
		return fmt.Errorf("%w: new operator address is empty", ErrInvalidReference)
	}

	log.WithFields(log.Fields{
		"from": g.operator,
		"to":   newOperator,
	}).Info("Operator identity transferred")

	g.operator = newOperator
	return nil
}
