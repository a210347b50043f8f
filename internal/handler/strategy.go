package handler

import "github.com/josh-kwaku/dermapay-backend/internal/auth"

// byActor routes a request to the live or the sandbox implementation of a
// service. The choice is made from the authenticated actor only.
type byActor[T any] struct {
	live T
	demo T
}

func (s byActor[T]) pick(a auth.Actor) T {
	if a.Demo {
		return s.demo
	}
	return s.live
}
