package domain

import (
	"fmt"
	"time"
)

var epoch = time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

type fixedRand int

func (f fixedRand) Intn(n int) int { return int(f) % n }

// newTestRoom builds a lobby with n connected players p1..pn joined one
// second apart; p1 is the host.
func newTestRoom(n int) *Room {
	host := NewPlayer("p1", "t1", "c1", "Player 1", epoch)
	room := NewRoom("abcd", ModeClassic, host, epoch)
	for i := 2; i <= n; i++ {
		p := NewPlayer(
			fmt.Sprintf("p%d", i),
			fmt.Sprintf("t%d", i),
			fmt.Sprintf("c%d", i),
			fmt.Sprintf("Player %d", i),
			epoch.Add(time.Duration(i-1)*time.Second),
		)
		if err := room.AddPlayer(p); err != nil {
			panic(err)
		}
	}
	return room
}

// newVotingRoom deals roles with impostor at index impostorIdx and puts the
// room straight into the voting phase.
func newVotingRoom(n, impostorIdx int) *Room {
	room := newTestRoom(n)
	room.DealRoles("topic", "Topic", fixedRand(impostorIdx))
	if err := room.BeginRound(room.AliveIDs(), true, fixedRand(0)); err != nil {
		panic(err)
	}
	room.Phase = PhaseVoting
	return room
}

func hostIDs(r *Room) []string {
	var ids []string
	for _, p := range r.Players {
		if p.IsHost {
			ids = append(ids, p.ID)
		}
	}
	return ids
}
