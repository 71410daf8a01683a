package engine

import "time"

// Shuffler randomizes candidate order for the enemy; *math/rand.Rand satisfies it.
type Shuffler interface {
	Shuffle(n int, swap func(i, j int))
}

// EnemyCandidates are the 8 compass directions scaled to the enemy stride.
var EnemyCandidates = []Offset{
	Offset{DRow: -1, DCol: 0}.Scale(EnemyStride),
	Offset{DRow: 1, DCol: 0}.Scale(EnemyStride),
	Offset{DRow: 0, DCol: -1}.Scale(EnemyStride),
	Offset{DRow: 0, DCol: 1}.Scale(EnemyStride),
	Offset{DRow: -1, DCol: -1}.Scale(EnemyStride),
	Offset{DRow: -1, DCol: 1}.Scale(EnemyStride),
	Offset{DRow: 1, DCol: -1}.Scale(EnemyStride),
	Offset{DRow: 1, DCol: 1}.Scale(EnemyStride),
}

// Actor is a grid token with a throttled move and a fading trail.
// The player and the enemy differ only in cooldown and in who drives them.
type Actor struct {
	kind     ActorKind
	pos      Position
	trail    Trail
	movedAt  time.Time
	cooldown time.Duration
	fade     time.Duration
}

// NewActor creates an actor at pos whose cooldown window opens at now
func NewActor(kind ActorKind, pos Position, cooldown, fade time.Duration, now time.Time) *Actor {
	return &Actor{
		kind:     kind,
		pos:      pos,
		movedAt:  now,
		cooldown: cooldown,
		fade:     fade,
	}
}

func (a *Actor) Kind() ActorKind {
	return a.kind
}

func (a *Actor) Position() Position {
	return a.pos
}

func (a *Actor) Cooldown() time.Duration {
	return a.cooldown
}

// LastMove returns the time of the most recent accepted move
func (a *Actor) LastMove() time.Time {
	return a.movedAt
}

// Place teleports the actor without touching its trail or cooldown
func (a *Actor) Place(p Position) {
	a.pos = p
}

func (a *Actor) ClearTrail() {
	a.trail.Clear()
}

// Trail exposes the actor's trail for inspection
func (a *Actor) Trail() *Trail {
	return &a.trail
}

// Ready reports whether the cooldown window has elapsed
func (a *Actor) Ready(now time.Time) bool {
	return now.Sub(a.movedAt) >= a.cooldown
}

// PruneTrail drops trail entries that have fully faded
func (a *Actor) PruneTrail(now time.Time) {
	a.trail.Prune(now, a.fade)
}

// State returns the drawable snapshot of the actor at now
func (a *Actor) State(now time.Time) ActorState {
	return ActorState{Position: a.pos, Trail: a.trail.Samples(now, a.fade)}
}

// AttemptMove steps by off if the cooldown has elapsed and the target is
// in bounds and not a wall. It returns false and changes nothing otherwise.
func (a *Actor) AttemptMove(level *Level, off Offset, now time.Time) bool {
	if !a.Ready(now) {
		return false
	}
	return a.commit(level, off, now)
}

// Wander performs one enemy step: candidates are shuffled and the first legal
// one is taken. When none is legal the move time stays unchanged, so the
// actor retries on the next call instead of waiting out another cooldown.
func (a *Actor) Wander(level *Level, now time.Time, rng Shuffler) bool {
	if !a.Ready(now) {
		return false
	}

	candidates := make([]Offset, len(EnemyCandidates))
	copy(candidates, EnemyCandidates)
	rng.Shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})

	for _, off := range candidates {
		if a.commit(level, off, now) {
			return true
		}
	}
	return false
}

func (a *Actor) commit(level *Level, off Offset, now time.Time) bool {
	target := a.pos.Add(off)
	if !level.Walkable(target) {
		return false
	}
	a.trail.Push(a.pos, now)
	a.pos = target
	a.movedAt = now
	return true
}
