package app

import (
	"chatrelay/internal/core"
	"chatrelay/internal/domain"
)

type BackpressureAction int

const (
	NoAction BackpressureAction = iota
	DropFrame
	KickMember
)

// Policy decides what happens to a member whose outbound sink rejected a
// frame during fan-out.
type Policy interface {
	OnBackPressure(ev domain.Event, slow core.Target) BackpressureAction
}

// DropPolicy skips the slow member for this frame and moves on. This is
// the default: a slow or dead peer must never stall the rest of the room.
type DropPolicy struct{}

func (DropPolicy) OnBackPressure(domain.Event, core.Target) BackpressureAction {
	return DropFrame
}

// KickPolicy disconnects members that cannot keep up.
type KickPolicy struct{}

func (KickPolicy) OnBackPressure(domain.Event, core.Target) BackpressureAction {
	return KickMember
}
