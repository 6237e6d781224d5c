package directory

import (
	"sort"

	"github.com/teamcomm/relaybot/internal/config"
)

// Directory answers role membership questions over static configuration.
// It is built once at startup and never mutated afterwards.
type Directory struct {
	members  map[string][]int64          // role -> member ids, sorted
	roles    map[int64][]string          // member id -> role names, sorted
	display  map[string]string           // role -> display name
	presence map[string]map[int64]struct{}
}

func New(roles map[string]config.RoleConfig) *Directory {
	d := &Directory{
		members:  make(map[string][]int64),
		roles:    make(map[int64][]string),
		display:  make(map[string]string),
		presence: make(map[string]map[int64]struct{}),
	}

	for role, rc := range roles {
		d.display[role] = rc.DisplayName

		seen := make(map[int64]struct{}, len(rc.Members))
		ids := make([]int64, 0, len(rc.Members))
		for _, id := range rc.Members {
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			ids = append(ids, id)
			d.roles[id] = append(d.roles[id], role)
		}
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
		d.members[role] = ids
		d.presence[role] = seen
	}

	for id := range d.roles {
		sort.Strings(d.roles[id])
	}

	return d
}

// RolesOf returns the roles held by a member, sorted by name. The result may
// be empty; holding more than one role triggers disambiguation upstream.
func (d *Directory) RolesOf(memberID int64) []string {
	roles := d.roles[memberID]
	out := make([]string, len(roles))
	copy(out, roles)
	return out
}

// MembersOf returns the member ids holding a role. An unknown role yields an
// empty set, never an error.
func (d *Directory) MembersOf(role string) []int64 {
	ids := d.members[role]
	out := make([]int64, len(ids))
	copy(out, ids)
	return out
}

// HasRole reports whether a member holds a specific role.
func (d *Directory) HasRole(memberID int64, role string) bool {
	set, ok := d.presence[role]
	if !ok {
		return false
	}
	_, ok = set[memberID]
	return ok
}

// DisplayName returns the human-readable name of a role, falling back to the
// role key itself for unknown roles.
func (d *Directory) DisplayName(role string) string {
	if name, ok := d.display[role]; ok && name != "" {
		return name
	}
	return role
}

// Roles returns all configured role names, sorted.
func (d *Directory) Roles() []string {
	out := make([]string, 0, len(d.members))
	for role := range d.members {
		out = append(out, role)
	}
	sort.Strings(out)
	return out
}

// AllMembers returns the union of every role's members, sorted. Used for the
// anonymous-feedback broadcast to all teams.
func (d *Directory) AllMembers() []int64 {
	out := make([]int64, 0, len(d.roles))
	for id := range d.roles {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
