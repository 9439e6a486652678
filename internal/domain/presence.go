package domain

import (
	"sort"
	"time"
)

// Reclaim rebinds the player holding token to a new connection.
func (r *Room) Reclaim(token, connID string) (*Player, error) {
	player, err := r.PlayerByToken(token)
	if err != nil {
		return nil, err
	}
	player.Reconnect(connID)
	r.EnsureHost()
	return player, nil
}

// MarkDisconnected finds the player bound to connID and marks them
// disconnected. Host duties move to the longest-standing connected player,
// and during voting the leaver's vote no longer counts.
func (r *Room) MarkDisconnected(connID string, now time.Time) (*Player, error) {
	player, err := r.PlayerByConn(connID)
	if err != nil {
		return nil, err
	}
	player.Disconnect(now)
	r.EnsureHost()
	if r.Phase == PhaseVoting {
		r.PurgeIneligibleVotes()
	}
	return player, nil
}

// EnsureHost promotes the connected player with the earliest join time when
// no connected player holds the host seat. With nobody connected the room
// keeps whatever flag it has until someone comes back.
func (r *Room) EnsureHost() {
	connected := make([]*Player, 0, len(r.Players))
	for _, p := range r.Players {
		if p.Connected {
			if p.IsHost {
				r.clearHostsExcept(p)
				return
			}
			connected = append(connected, p)
		}
	}
	if len(connected) == 0 {
		return
	}

	sort.SliceStable(connected, func(i, j int) bool {
		return connected[i].JoinedAt.Before(connected[j].JoinedAt)
	})
	r.clearHostsExcept(connected[0])
}

func (r *Room) clearHostsExcept(host *Player) {
	for _, p := range r.Players {
		p.IsHost = p == host
	}
}

// PruneAbandoned removes lobby players who have been disconnected for longer
// than grace. After the lobby seats are kept: removing them would shift
// turn order and elimination accounting. Returns the removed player ids.
func (r *Room) PruneAbandoned(grace time.Duration, now time.Time) []string {
	if r.Phase != PhaseLobby {
		r.EnsureHost()
		return nil
	}

	var removed []string
	kept := r.Players[:0]
	for _, p := range r.Players {
		if !p.Connected && p.DisconnectedAt != nil && now.Sub(*p.DisconnectedAt) >= grace {
			removed = append(removed, p.ID)
			continue
		}
		kept = append(kept, p)
	}
	r.Players = kept

	r.EnsureHost()
	return removed
}
