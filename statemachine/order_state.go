package statemachine

import (
	"fmt"
	"strings"

	"food-ordering-api/models"
)

// Actors allowed to drive order transitions.
const (
	ActorRestaurant = "restaurant"
	ActorPayment    = "payment"
)

// Transition defines a valid state change and who can perform it
type Transition struct {
	From  models.OrderStatus `json:"from"`
	To    models.OrderStatus `json:"to"`
	Actor string             `json:"actor"`
}

// validTransitions is the authoritative state machine definition
var validTransitions = []Transition{
	// Only a verified payment confirmation moves an order out of pending
	{From: models.StatusPending, To: models.StatusConfirmed, Actor: ActorPayment},
	{From: models.StatusPending, To: models.StatusCancelled, Actor: ActorRestaurant},
	{From: models.StatusConfirmed, To: models.StatusPreparing, Actor: ActorRestaurant},
	{From: models.StatusConfirmed, To: models.StatusCancelled, Actor: ActorRestaurant},
	{From: models.StatusPreparing, To: models.StatusOutForDelivery, Actor: ActorRestaurant},
	{From: models.StatusOutForDelivery, To: models.StatusDelivered, Actor: ActorRestaurant},
}

type transitionKey struct {
	From  models.OrderStatus
	To    models.OrderStatus
	Actor string
}

var transitionMap = func() map[transitionKey]bool {
	m := make(map[transitionKey]bool)
	for _, t := range validTransitions {
		m[transitionKey{t.From, t.To, t.Actor}] = true
	}
	return m
}()

// ValidTransitionsFrom returns all valid next states from a given state for an actor.
// An empty actor matches every actor.
func ValidTransitionsFrom(status models.OrderStatus, actor string) []models.OrderStatus {
	var nexts []models.OrderStatus
	seen := map[models.OrderStatus]bool{}
	for _, t := range validTransitions {
		if t.From != status || seen[t.To] {
			continue
		}
		if actor != "" && t.Actor != actor {
			continue
		}
		nexts = append(nexts, t.To)
		seen[t.To] = true
	}
	return nexts
}

// CanTransition checks if a given actor can move from one state to another
func CanTransition(from, to models.OrderStatus, actor string) error {
	if transitionMap[transitionKey{From: from, To: to, Actor: actor}] {
		return nil
	}
	return fmt.Errorf("%s → %s is not allowed for actor %q; valid transitions from %s are: %s",
		from, to, actor, from, describeValidFrom(from, actor))
}

// IsTerminal reports whether no actor can move the order out of status.
func IsTerminal(status models.OrderStatus) bool {
	return len(ValidTransitionsFrom(status, "")) == 0
}

func describeValidFrom(status models.OrderStatus, actor string) string {
	nexts := ValidTransitionsFrom(status, actor)
	if len(nexts) == 0 {
		return "none"
	}
	names := make([]string, len(nexts))
	for i, s := range nexts {
		names[i] = string(s)
	}
	return strings.Join(names, ", ")
}

// GetAllTransitions returns the full state machine for documentation
func GetAllTransitions() []Transition {
	return validTransitions
}
